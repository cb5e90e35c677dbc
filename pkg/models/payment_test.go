package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yurifrl/achu/pkg/nacha"
)

func TestParseCents(t *testing.T) {
	tests := map[string]int64{
		"1234":     1234,
		"12.34":    1234,
		"12,3":     1230,
		"$ 0.05":   5,
		"12.":      1200,
		".5":       50,
		"-1.25":    -125,
		"-0.50":    -50,
		" 100.00 ": 10000,
	}
	for in, want := range tests {
		got, err := ParseCents(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "1.234", "1.2.3", "12.-5", "12.+5", "1. 5"} {
		_, err := ParseCents(in)
		assert.Error(t, err, in)
	}
}

func TestPaymentBuilder(t *testing.T) {
	p, err := NewPayment(" JANE DOE ").
		SetID("EMP001").
		SetAccount("000123456789").
		SetRouting("091000019").
		SetAmount("1500.25").
		SetAccountType("sav").
		SetTransactionType("dr").
		SetLineNumber(4).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "JANE DOE", p.Name())
	assert.Equal(t, "091000019", p.Routing())
	assert.Equal(t, 37, p.TransactionCode())
	assert.Equal(t, -1500.25, p.Amount())
	assert.Equal(t, 4, p.LineNumber())

	cfg := p.EntryConfig()
	assert.Equal(t, "09100001", cfg.RoutingID)
	assert.Equal(t, 9, cfg.CheckDigit)
	assert.Equal(t, int64(150025), cfg.Amount)
	assert.Equal(t, nacha.Savings, cfg.AccountType)
	assert.Equal(t, nacha.Debit, cfg.TransactionType)
}

func TestPaymentBuilderSeparateCheckDigit(t *testing.T) {
	p, err := NewPayment("ACME").SetRouting("09100001").SetCheckDigit("9").SetCents(10).Build()
	require.NoError(t, err)
	assert.Equal(t, "091000019", p.Routing())
	assert.Equal(t, 22, p.TransactionCode())
	assert.Equal(t, 0.1, p.Amount())
}

func TestPaymentBuilderErrors(t *testing.T) {
	_, err := NewPayment("X").SetAmount("abc").Build()
	assert.Error(t, err)

	_, err = NewPayment("X").SetCheckDigit("z").Build()
	assert.Error(t, err)

	_, err = NewPayment("X").SetAccountType("LOAN").Build()
	assert.ErrorIs(t, err, nacha.ErrUnsupportedCombination)

	p, err := NewPayment("X").SetAccountType("LOAN").SetTransactionCode(23).Build()
	require.NoError(t, err)
	assert.Equal(t, 23, p.TransactionCode())
}
