package ynab

import (
	"testing"
	"time"

	"github.com/brunomvsouza/ynab.go/api/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomID(t *testing.T) {
	memo := func(s string) *transaction.Transaction { return &transaction.Transaction{Memo: &s} }

	tests := []struct {
		name string
		tx   *transaction.Transaction
		want string
	}{
		{"nil", nil, ""},
		{"no memo", &transaction.Transaction{}, ""},
		{"tagged", memo(Memo("ach-10000-0010001", "credit")), "ach-10000-0010001"},
		{"quoted", memo(`"ach-1-0000002,debit"`), "ach-1-0000002"},
		{"untagged", memo("lunch"), ""},
		{"leading comma", memo(",lunch"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewTransaction(tt.tx).CustomID())
		})
	}
}

func TestPayload(t *testing.T) {
	p, err := Payload("acc", time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC), "JANE DOE", "ach-1,credit", -1500250)
	require.NoError(t, err)

	assert.Equal(t, "acc", p.AccountID)
	assert.Equal(t, "2026-10-19", p.Date.Format("2006-01-02"))
	assert.Equal(t, int64(-1500250), p.Amount)
	assert.Equal(t, transaction.ClearingStatusCleared, p.Cleared)
	assert.True(t, p.Approved)
	assert.Equal(t, "JANE DOE", *p.PayeeName)
	assert.Equal(t, "ach-1,credit", *p.Memo)
}
