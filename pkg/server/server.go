package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/yurifrl/achu/pkg/config"
	"github.com/yurifrl/achu/pkg/csv"
	"github.com/yurifrl/achu/pkg/executors"
	"github.com/yurifrl/achu/pkg/nacha"
	"github.com/yurifrl/achu/pkg/plan"
	"github.com/yurifrl/achu/pkg/ynab"
)

const (
	maxPlanBytes = 1 << 20

	// maxFiles rendered files are kept for download; older ones are evicted.
	maxFiles = 100
)

// Server renders plans posted over HTTP and keeps the results for download.
type Server struct {
	config   *config.Config
	logger   *log.Logger
	mux      *http.ServeMux
	now      func() time.Time
	maxBody  int64
	maxFiles int

	files sync.Map
	mu    sync.Mutex
	order []string
}

// rendered is a file produced by /api/render.
type rendered struct {
	file *nacha.File
	data []byte
}

// New creates a new HTTP server
func New(config *config.Config, logger *log.Logger) *Server {
	s := &Server{
		config:   config,
		logger:   logger,
		mux:      http.NewServeMux(),
		now:      time.Now,
		maxBody:  maxPlanBytes,
		maxFiles: maxFiles,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/render", s.withLogging(s.handleRender))
	s.mux.HandleFunc("/api/preview", s.withLogging(s.handlePreview))
	s.mux.HandleFunc("/api/files/", s.withLogging(s.handleFiles))
	s.mux.HandleFunc("/api/register/", s.withLogging(s.handleRegister))
	s.mux.HandleFunc("/api/mirror/", s.withLogging(s.handleMirror))
	s.mux.HandleFunc("/api/budgets", s.withLogging(s.handleBudgets))
	s.mux.HandleFunc("/api/budgets/", s.withLogging(s.handleBudgetAccounts))
}

// Summary describes a rendered file in JSON responses.
type Summary struct {
	ID      string `json:"id,omitempty"`
	Batches int    `json:"batches"`
	Entries int    `json:"entries"`
	Lines   int    `json:"lines"`
	Blocks  int    `json:"blocks"`
	Debits  int64  `json:"debits"`
	Credits int64  `json:"credits"`
	Hash    int64  `json:"hash"`
}

// Line is one entry in a preview response.
type Line struct {
	Batch  int     `json:"batch"`
	Trace  string  `json:"trace"`
	Name   string  `json:"name"`
	Kind   string  `json:"kind"`
	Amount float64 `json:"amount"`
	Record string  `json:"record"`
}

func summarize(r *executors.Report) Summary {
	return Summary{
		Batches: len(r.Batches),
		Entries: r.Entries,
		Lines:   r.Lines,
		Blocks:  r.Blocks,
		Debits:  r.Debits,
		Credits: r.Credits,
		Hash:    r.Hash,
	}
}

// buildFromBody decodes the YAML plan in the request body. Batch sources are
// not read: a posted plan must carry its entries inline.
func (s *Server) buildFromBody(w http.ResponseWriter, r *http.Request) (*nacha.File, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	p, err := plan.Parse(data)
	if err != nil {
		return nil, err
	}
	return p.Build(plan.BuildOptions{Now: s.now(), Defaults: s.config.File})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	f, err := s.buildFromBody(w, r)
	if err != nil {
		s.respondBuildError(w, r, err)
		return
	}

	var sb strings.Builder
	if _, err := f.WriteTo(&sb); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to render file", err)
		return
	}

	id := uuid.NewString()
	s.store(id, &rendered{file: f, data: []byte(sb.String())})

	summary := summarize(executors.BuildReport(f))
	summary.ID = id
	s.logger.Info("rendered file", "id", id, "entries", summary.Entries, "blocks", summary.Blocks)

	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"file":   summary,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	f, err := s.buildFromBody(w, r)
	if err != nil {
		s.respondBuildError(w, r, err)
		return
	}

	report := executors.BuildReport(f)
	lines := make([]Line, len(report.Items))
	for i, it := range report.Items {
		lines[i] = Line{Batch: it.Batch(), Trace: it.Trace(), Name: it.Name(), Kind: it.Kind(), Amount: it.Amount(), Record: it.Record()}
	}

	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"file":   summarize(report),
		"lines":  lines,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// store caches a rendered file, evicting the oldest once maxFiles are held.
func (s *Server) store(id string, rf *rendered) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files.Store(id, rf)
	s.order = append(s.order, id)
	for len(s.order) > s.maxFiles {
		s.files.Delete(s.order[0])
		s.logger.Debug("evicted rendered file", "id", s.order[0])
		s.order = s.order[1:]
	}
}

// lookup returns the rendered file whose id follows prefix in the path.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request, prefix string) (string, *rendered, bool) {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" {
		s.respondError(w, r, http.StatusBadRequest, "id required", nil)
		return "", nil, false
	}
	value, ok := s.files.Load(id)
	if !ok {
		s.respondError(w, r, http.StatusNotFound, "file not found", nil)
		return "", nil, false
	}
	return id, value.(*rendered), true
}

// ---------------- file download handlers ----------------

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	id, rf, ok := s.lookup(w, r, "/api/files/")
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.ach\"", id))
	if _, err := w.Write(rf.data); err != nil {
		s.logger.Warn("failed to write file response", "err", err)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	id, rf, ok := s.lookup(w, r, "/api/register/")
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", id))
	if _, err := w.Write(csv.Create(executors.BuildReport(rf.file).Items, nil)); err != nil {
		s.logger.Warn("failed to write csv response", "err", err)
	}
}

// ---------------- ynab handlers ----------------

func (s *Server) handleMirror(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	_, rf, ok := s.lookup(w, r, "/api/mirror/")
	if !ok {
		return
	}

	token := bearerToken(r)
	if token == "" {
		s.respondError(w, r, http.StatusUnauthorized, "token required", nil)
		return
	}
	for _, name := range []string{"budget_id", "account_id"} {
		if r.FormValue(name) == "" {
			s.respondError(w, r, http.StatusBadRequest, name+" required", nil)
			return
		}
	}
	budgetID, accountID := r.FormValue("budget_id"), r.FormValue("account_id")

	date := s.now()
	if d := r.FormValue("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			s.respondError(w, r, http.StatusBadRequest, "invalid date", err)
			return
		}
		date = parsed
	}

	cfg := *s.config
	cfg.YNAB.BudgetID = budgetID
	cfg.YNAB.AccountID = accountID
	exec := executors.New(s.logger, &cfg, ynab.New(token))

	created, err := exec.Mirror(rf.file, date)
	if err != nil {
		s.respondError(w, r, http.StatusBadGateway, "mirror failed", err)
		return
	}

	if err := s.writeJSON(w, http.StatusOK, map[string]any{"status": "mirrored", "created": created}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	token := bearerToken(r)
	if token == "" {
		s.respondError(w, r, http.StatusUnauthorized, "token required", nil)
		return
	}

	budgets, err := ynab.New(token).Budget().GetBudgets()
	if err != nil {
		s.respondError(w, r, http.StatusBadGateway, "failed to fetch budgets", err)
		return
	}
	s.logger.Info("budgets response", "budgets_count", len(budgets))

	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"budgets": budgets,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleBudgetAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	budgetID := strings.TrimPrefix(r.URL.Path, "/api/budgets/")
	if budgetID == "" {
		s.respondError(w, r, http.StatusBadRequest, "budget_id required", nil)
		return
	}

	token := bearerToken(r)
	if token == "" {
		s.respondError(w, r, http.StatusUnauthorized, "token required", nil)
		return
	}

	snapshot, err := ynab.New(token).Account().GetAccounts(budgetID, nil)
	if err != nil {
		s.respondError(w, r, http.StatusBadGateway, "failed to fetch accounts", err)
		return
	}

	var accounts any = []any{}
	if snapshot != nil && snapshot.Accounts != nil {
		accounts = snapshot.Accounts
	}
	s.logger.Info("accounts response", "budget_id", budgetID)

	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"accounts": accounts,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// --- helpers ---

// bearerToken reads the YNAB token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// respondBuildError maps a failed plan build to 413 for oversized bodies and
// 400 for everything else.
func (s *Server) respondBuildError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.respondError(w, r, http.StatusRequestEntityTooLarge, "plan too large", err)
		return
	}
	s.respondError(w, r, http.StatusBadRequest, "failed to build file", err)
}

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	body := map[string]string{
		"status": "error",
		"error":  message,
	}
	if err != nil && status < http.StatusInternalServerError {
		body["detail"] = err.Error()
	}
	_ = s.writeJSON(w, status, body)
}

// withLogging wraps a handler to log request start/end and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
