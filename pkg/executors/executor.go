package executors

import (
	"github.com/brunomvsouza/ynab.go/api/transaction"
	"github.com/charmbracelet/log"

	"github.com/yurifrl/achu/pkg/config"
	"github.com/yurifrl/achu/pkg/ynab"
)

// transactionStore is the part of the YNAB transaction service mirroring uses.
type transactionStore interface {
	GetTransactionsByAccount(budgetID, accountID string, filter *transaction.Filter) ([]*ynab.Transaction, error)
	CreateTransactions(budgetID string, payloads []transaction.PayloadTransaction) error
}

type Executor struct {
	logger *log.Logger
	config *config.Config
	ynab   transactionStore
}

// New creates an executor. client may be nil when nothing is mirrored to YNAB.
func New(logger *log.Logger, config *config.Config, client *ynab.YNABClient) *Executor {
	e := &Executor{
		logger: logger,
		config: config,
	}
	if client != nil {
		e.ynab = client.Transaction()
	}
	return e
}
