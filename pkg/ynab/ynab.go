package ynab

import (
	"fmt"
	"strings"
	"time"

	"github.com/brunomvsouza/ynab.go"
	"github.com/brunomvsouza/ynab.go/api"
	"github.com/brunomvsouza/ynab.go/api/account"
	"github.com/brunomvsouza/ynab.go/api/budget"
	"github.com/brunomvsouza/ynab.go/api/transaction"
)

// YNABClient wraps the original YNAB client and adds custom functionality
type YNABClient struct {
	client ynab.ClientServicer
}

// TransactionService wraps the original transaction service
type TransactionService struct {
	client   *YNABClient
	original *transaction.Service
}

// Transaction wraps the core YNAB transaction adding the CustomID stored as
// the first comma separated field of the memo.
type Transaction struct {
	*transaction.Transaction
	customID string
}

// NewTransaction wraps tx and extracts its CustomID.
func NewTransaction(tx *transaction.Transaction) *Transaction {
	return &Transaction{Transaction: tx, customID: extractCustomID(tx)}
}

func extractCustomID(tx *transaction.Transaction) string {
	if tx == nil || tx.Memo == nil {
		return ""
	}
	memo := strings.Trim(*tx.Memo, "\"")
	if idx := strings.Index(memo, ","); idx > 0 {
		return memo[:idx]
	}
	return ""
}

// Memo builds a memo carrying customID so the transaction can be recognised
// on the next run.
func Memo(customID, description string) string {
	return customID + "," + description
}

func New(token string) *YNABClient {
	return &YNABClient{
		client: ynab.NewClient(token),
	}
}

func (c *YNABClient) Transaction() *TransactionService {
	return &TransactionService{
		client:   c,
		original: c.client.Transaction(),
	}
}

func (c *YNABClient) Budget() *budget.Service {
	return c.client.Budget()
}

func (c *YNABClient) Account() *account.Service {
	return c.client.Account()
}

func (ts *TransactionService) GetTransactionsByAccount(budgetID, accountID string, filter *transaction.Filter) ([]*Transaction, error) {
	originalTransactions, err := ts.original.GetTransactionsByAccount(budgetID, accountID, filter)
	if err != nil {
		return nil, err
	}

	transactions := make([]*Transaction, 0, len(originalTransactions))
	for _, tx := range originalTransactions {
		transactions = append(transactions, NewTransaction(tx))
	}
	return transactions, nil
}

// CreateTransactions creates multiple transactions in one API call
func (ts *TransactionService) CreateTransactions(budgetID string, payloads []transaction.PayloadTransaction) error {
	if len(payloads) == 0 {
		return nil
	}
	_, err := ts.original.CreateTransactions(budgetID, payloads)
	return err
}

func (t *Transaction) CustomID() string {
	return t.customID
}

// Payload builds a cleared, approved transaction. milliunits follows YNAB's
// sign convention: negative is an outflow.
func Payload(accountID string, date time.Time, payee, memo string, milliunits int64) (transaction.PayloadTransaction, error) {
	d, err := api.DateFromString(date.Format("2006-01-02"))
	if err != nil {
		return transaction.PayloadTransaction{}, fmt.Errorf("invalid date %s: %w", date, err)
	}
	return transaction.PayloadTransaction{
		AccountID: accountID,
		Date:      d,
		Amount:    milliunits,
		Cleared:   transaction.ClearingStatusCleared,
		Approved:  true,
		PayeeName: &payee,
		Memo:      &memo,
	}, nil
}
