package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/achu/pkg/config"
)

const payroll = `file:
  destination_id: "091000019"
  origin_id: "1234567890"
batches:
  - company_name: ACME CORP
    entry_description: PAYROLL
    institution_id: "09100001"
    entries:
      - name: JANE DOE
        routing: "12345678"
        amount: "1500.25"
      - name: JOHN ROE
        routing: "12345678"
        amount: 42
        transaction_type: DR
`

func newTestServer() *Server {
	s := New(config.New(""), log.New(&bytes.Buffer{}))
	s.now = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) }
	return s
}

func do(t *testing.T, s *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

type renderResponse struct {
	Status string  `json:"status"`
	File   Summary `json:"file"`
	Lines  []Line  `json:"lines"`
	Error  string  `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) renderResponse {
	t.Helper()
	var out renderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRenderAndDownload(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodPost, "/api/render", payroll)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.File.ID)
	assert.Equal(t, 2, resp.File.Entries)
	assert.Equal(t, 10, resp.File.Lines)
	assert.Equal(t, 1, resp.File.Blocks)
	assert.Equal(t, int64(150025), resp.File.Credits)
	assert.Equal(t, int64(4200), resp.File.Debits)
	assert.Equal(t, int64(24691356), resp.File.Hash)

	rec = do(t, s, http.MethodGet, "/api/files/"+resp.File.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), resp.File.ID+".ach")
	lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 10)
	for _, l := range lines {
		assert.Len(t, l, 94)
	}
	assert.Contains(t, lines[0], "2610180930")

	rec = do(t, s, http.MethodGet, "/api/register/"+resp.File.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Batch,Trace,Name,Kind,Amount\n"+
		"10000,0010001,JANE DOE,credit,-1500.25\n"+
		"10000,0010002,JOHN ROE,debit,42.00\n", rec.Body.String())
}

func TestPreview(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/api/preview", payroll)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode(t, rec)
	assert.Empty(t, resp.File.ID)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, "credit", resp.Lines[0].Kind)
	assert.Equal(t, -1500.25, resp.Lines[0].Amount)
	assert.Equal(t, "0010002", resp.Lines[1].Trace)
	assert.Len(t, resp.Lines[1].Record, 94)
}

func TestErrors(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		err    string
	}{
		{"render wrong method", http.MethodGet, "/api/render", "", http.StatusMethodNotAllowed, "method not allowed"},
		{"render bad yaml", http.MethodPost, "/api/render", "batches: [", http.StatusBadRequest, "failed to build file"},
		{"render no batches", http.MethodPost, "/api/render", "file: {}\n", http.StatusBadRequest, "failed to build file"},
		{"render with source", http.MethodPost, "/api/render", "batches:\n  - source: payments.csv\n", http.StatusBadRequest, "failed to build file"},
		{"unknown file", http.MethodGet, "/api/files/nope", "", http.StatusNotFound, "file not found"},
		{"missing id", http.MethodGet, "/api/files/", "", http.StatusBadRequest, "id required"},
		{"mirror unknown file", http.MethodPost, "/api/mirror/nope", "", http.StatusNotFound, "file not found"},
		{"budgets without token", http.MethodGet, "/api/budgets?token=t", "", http.StatusUnauthorized, "token required"},
		{"accounts without token", http.MethodGet, "/api/budgets/b1", "", http.StatusUnauthorized, "token required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.err, resp.Error)
		})
	}
}

func TestMirrorRequiresCredentials(t *testing.T) {
	s := newTestServer()
	resp := decode(t, do(t, s, http.MethodPost, "/api/render", payroll))

	rec := do(t, s, http.MethodPost, "/api/mirror/"+resp.File.ID+"?token=t&budget_id=b&account_id=a", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token required", decode(t, rec).Error)

	auth := []string{"Authorization", "Bearer t"}
	rec = do(t, s, http.MethodPost, "/api/mirror/"+resp.File.ID+"?budget_id=b", "", auth...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "account_id required", decode(t, rec).Error)

	rec = do(t, s, http.MethodPost, "/api/mirror/"+resp.File.ID+"?budget_id=b&account_id=a&date=18/10", "", auth...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid date", decode(t, rec).Error)
}

func TestRenderRejectsOversizedPlan(t *testing.T) {
	s := newTestServer()
	s.maxBody = int64(len(payroll))

	// a complete plan followed by more entries than the limit allows
	body := payroll + "      - name: LATE ENTRY\n        routing: \"12345678\"\n        amount: 1\n"
	rec := do(t, s, http.MethodPost, "/api/render", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "plan too large", decode(t, rec).Error)

	rec = do(t, s, http.MethodPost, "/api/render", payroll)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRenderEvictsOldestFile(t *testing.T) {
	s := newTestServer()
	s.maxFiles = 2

	var ids []string
	for i := 0; i < 3; i++ {
		rec := do(t, s, http.MethodPost, "/api/render", payroll)
		require.Equal(t, http.StatusOK, rec.Code)
		ids = append(ids, decode(t, rec).File.ID)
	}

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/files/"+ids[0], "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/files/"+ids[1], "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/files/"+ids[2], "").Code)
}
