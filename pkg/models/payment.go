package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yurifrl/achu/pkg/nacha"
)

// Payment is one payment row read from a manifest or a spreadsheet, before it
// becomes a nacha entry.
type Payment struct {
	name            string
	id              string
	account         string
	routingID       string
	checkDigit      int
	amount          int64
	accountType     nacha.AccountType
	transactionType nacha.TransactionType
	transactionCode int
	lineNumber      int
}

// PaymentBuilder accumulates fields and the first error met while setting them.
type PaymentBuilder struct {
	p   Payment
	err error
}

func NewPayment(name string) *PaymentBuilder {
	return &PaymentBuilder{p: Payment{
		name:            strings.TrimSpace(name),
		accountType:     nacha.Checking,
		transactionType: nacha.Credit,
	}}
}

func (b *PaymentBuilder) SetID(id string) *PaymentBuilder {
	b.p.id = strings.TrimSpace(id)
	return b
}

func (b *PaymentBuilder) SetAccount(account string) *PaymentBuilder {
	b.p.account = strings.TrimSpace(account)
	return b
}

// SetRouting accepts either a full nine digit routing number or the eight
// digit identifier alone, in which case SetCheckDigit supplies the ninth.
func (b *PaymentBuilder) SetRouting(routing string) *PaymentBuilder {
	routing = strings.ReplaceAll(strings.TrimSpace(routing), " ", "")
	if len(routing) == 9 {
		d, err := strconv.Atoi(routing[8:])
		if err != nil {
			b.fail(fmt.Errorf("invalid routing number %q", routing))
			return b
		}
		b.p.routingID, b.p.checkDigit = routing[:8], d
		return b
	}
	b.p.routingID = routing
	return b
}

func (b *PaymentBuilder) SetCheckDigit(digit string) *PaymentBuilder {
	digit = strings.TrimSpace(digit)
	if digit == "" {
		return b
	}
	d, err := strconv.Atoi(digit)
	if err != nil {
		b.fail(fmt.Errorf("invalid check digit %q", digit))
		return b
	}
	b.p.checkDigit = d
	return b
}

// SetAmount parses "1234" as cents and "12.34" (or "12,34") as currency units.
func (b *PaymentBuilder) SetAmount(amount string) *PaymentBuilder {
	cents, err := ParseCents(amount)
	if err != nil {
		b.fail(err)
		return b
	}
	b.p.amount = cents
	return b
}

func (b *PaymentBuilder) SetCents(cents int64) *PaymentBuilder {
	b.p.amount = cents
	return b
}

func (b *PaymentBuilder) SetAccountType(t string) *PaymentBuilder {
	if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
		b.p.accountType = nacha.AccountType(t)
	}
	return b
}

func (b *PaymentBuilder) SetTransactionType(t string) *PaymentBuilder {
	if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
		b.p.transactionType = nacha.TransactionType(t)
	}
	return b
}

func (b *PaymentBuilder) SetTransactionCode(code int) *PaymentBuilder {
	b.p.transactionCode = code
	return b
}

func (b *PaymentBuilder) SetLineNumber(n int) *PaymentBuilder {
	b.p.lineNumber = n
	return b
}

func (b *PaymentBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build checks the payment resolves to a transaction code.
func (b *PaymentBuilder) Build() (*Payment, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.p.transactionCode == 0 {
		if _, err := nacha.DeriveTransactionCode(b.p.accountType, b.p.transactionType); err != nil {
			return nil, err
		}
	}
	p := b.p
	return &p, nil
}

func (p *Payment) Name() string { return p.name }
func (p *Payment) ID() string { return p.id }
func (p *Payment) Account() string { return p.account }
func (p *Payment) Cents() int64 { return p.amount }
func (p *Payment) LineNumber() int { return p.lineNumber }
func (p *Payment) Routing() string { return p.routingID + strconv.Itoa(p.checkDigit) }

func (p *Payment) TransactionCode() int {
	if p.transactionCode != 0 {
		return p.transactionCode
	}
	code, _ := nacha.DeriveTransactionCode(p.accountType, p.transactionType)
	return code
}

// Amount is the payment in currency units, negative for debits to the receiver.
func (p *Payment) Amount() float64 {
	v := float64(p.amount) / 100
	switch p.TransactionCode() {
	case 27, 28, 37, 38:
		return -v
	}
	return v
}

// EntryConfig converts the payment into the input of nacha.Batch.AddEntry.
func (p *Payment) EntryConfig() nacha.EntryConfig {
	return nacha.EntryConfig{
		TransactionCode: p.transactionCode,
		AccountType:     p.accountType,
		TransactionType: p.transactionType,
		Amount:          p.amount,
		RoutingID:       p.routingID,
		CheckDigit:      p.checkDigit,
		AccountNumber:   p.account,
		IndividualID:    p.id,
		IndividualName:  p.name,
	}
}

// ParseCents converts an amount string into cents without going through
// floating point. Values without a decimal separator are already cents.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "$", ""))
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	s = strings.ReplaceAll(s, ",", ".")
	whole, frac, hasFrac := strings.Cut(s, ".")
	if !hasFrac {
		v, err := strconv.ParseInt(whole, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		return v, nil
	}
	if len(frac) > 2 || strings.Trim(frac, "0123456789") != "" {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	frac += strings.Repeat("0", 2-len(frac))
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if units < 0 || strings.HasPrefix(whole, "-") {
		return units*100 - cents, nil
	}
	return units*100 + cents, nil
}
