package executors

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/yurifrl/achu/pkg/nacha"
)

// Render writes the NACHA file to w.
func (e *Executor) Render(f *nacha.File, w io.Writer) error {
	n, err := f.WriteTo(w)
	if err != nil {
		return fmt.Errorf("failed to write nacha file: %w", err)
	}
	e.logger.Debug("rendered file", "bytes", n, "entries", f.EntryCount(), "blocks", f.BlockCount())
	return nil
}

// Apply writes the NACHA file to path, creating parent directories.
func (e *Executor) Apply(f *nacha.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer out.Close()

	if err := e.Render(f, out); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("error closing output file: %w", err)
	}
	e.logger.Info("wrote nacha file", "path", path, "batches", len(f.Batches()), "entries", f.EntryCount())
	return nil
}

// Mirror records every live entry of f as a transaction in the configured
// YNAB account, dated date. Entries mirrored by an earlier run are skipped.
// It returns how many transactions were created.
func (e *Executor) Mirror(f *nacha.File, date time.Time) (int, error) {
	if e.ynab == nil {
		return 0, fmt.Errorf("ynab client not configured")
	}
	budgetID, accountID := e.config.YNAB.BudgetID, e.config.YNAB.AccountID
	if budgetID == "" {
		return 0, fmt.Errorf("config error: ynab budget_id missing")
	}
	if accountID == "" {
		return 0, fmt.Errorf("config error: ynab account_id missing")
	}

	remote, err := e.ynab.GetTransactionsByAccount(budgetID, accountID, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	existing := make(map[string]bool, len(remote))
	for _, rt := range remote {
		if id := rt.CustomID(); id != "" {
			existing[id] = true
		}
	}

	report := BuildReport(f)
	payloads, err := report.Payloads(accountID, date, existing)
	if err != nil {
		return 0, err
	}
	e.logger.Info("transactions to create", "count", len(payloads), "remote", len(remote), "account_id", accountID)
	if len(payloads) == 0 {
		return 0, nil
	}

	if err := e.ynab.CreateTransactions(budgetID, payloads); err != nil {
		return 0, fmt.Errorf("failed to create transactions: %w", err)
	}
	e.logger.Info("created transactions", "count", len(payloads), "account_id", accountID)
	return len(payloads), nil
}
