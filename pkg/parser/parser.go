package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/achu/pkg/models"
)

type FileType string

const (
	PaymentsCSV  FileType = "payments_csv"
	PaymentsXLS  FileType = "payments_xls"
	PaymentsXLSX FileType = "payments_xlsx"
)

// column order used when a sheet has no header row
var defaultColumns = []string{
	"name", "account", "routing", "check_digit", "amount",
	"account_type", "transaction_type", "id", "transaction_code",
}

type Parser struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// ProcessBytes reads payment rows out of a CSV or spreadsheet.
func (p *Parser) ProcessBytes(data []byte, filename string) ([]*models.Payment, error) {
	fileType := DetectType(filename)
	p.logger.Debug("detected file type", "type", fileType, "filename", filename)

	var (
		rows [][]string
		err  error
	)
	switch fileType {
	case PaymentsCSV:
		rows, err = readCSV(data)
	case PaymentsXLS:
		rows, err = readXLS(data)
	case PaymentsXLSX:
		rows, err = readXLSX(data)
	default:
		p.logger.Debug("unknown file type", "filename", filename)
		return nil, fmt.Errorf("unknown file type: %s", filename)
	}
	if err != nil {
		return nil, err
	}
	return p.paymentsFromRows(rows)
}

func DetectType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return PaymentsCSV
	case ".xls":
		return PaymentsXLS
	case ".xlsx":
		return PaymentsXLSX
	}
	return ""
}

// paymentsFromRows converts every non blank row. Rows that cannot become a
// payment are reported together, each with its 1-based line number.
func (p *Parser) paymentsFromRows(rows [][]string) ([]*models.Payment, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	columns := columnIndex(defaultColumns)
	start := 0
	if isHeader(rows[0]) {
		columns = columnIndex(rows[0])
		start = 1
	}

	payments := make([]*models.Payment, 0, len(rows)-start)
	var errs []error
	for i := start; i < len(rows); i++ {
		row := rows[i]
		get := func(col string) string {
			idx, ok := columns[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		if get("name") == "" && get("amount") == "" {
			continue
		}

		id := get("id")
		if id == "" {
			id = generateIndividualID(get("name"), get("account"))
		}

		b := models.NewPayment(get("name")).
			SetID(id).
			SetAccount(get("account")).
			SetRouting(get("routing")).
			SetCheckDigit(get("check_digit")).
			SetAmount(get("amount")).
			SetAccountType(get("account_type")).
			SetTransactionType(get("transaction_type")).
			SetLineNumber(i + 1)
		if code := get("transaction_code"); code != "" {
			n, err := strconv.Atoi(code)
			if err != nil {
				errs = append(errs, fmt.Errorf("line %d: invalid transaction code %q", i+1, code))
				continue
			}
			b.SetTransactionCode(n)
		}

		payment, err := b.Build()
		if err != nil {
			p.logger.Debug("error building payment", "line", i+1, "row", row, "error", err)
			errs = append(errs, fmt.Errorf("line %d: %w", i+1, err))
			continue
		}
		payments = append(payments, payment)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return payments, nil
}

func isHeader(row []string) bool {
	for _, cell := range row {
		if normalizeColumn(cell) == "name" {
			return true
		}
	}
	return false
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if key := normalizeColumn(h); key != "" {
			if _, seen := idx[key]; !seen {
				idx[key] = i
			}
		}
	}
	return idx
}

func normalizeColumn(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	switch h {
	case "routing_number", "aba":
		return "routing"
	case "account_number":
		return "account"
	case "individual_id":
		return "id"
	case "individual_name", "receiver":
		return "name"
	}
	return h
}
