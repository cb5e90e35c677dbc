package nacha

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrUnsupportedCombination = errors.New("unsupported account/transaction type combination")
	ErrNegativeAmount         = errors.New("amount must not be negative")
	ErrInvalidRoutingID       = errors.New("invalid routing number")
)

// AccountType is the receiver's account category.
type AccountType string

const (
	Checking AccountType = "CHK"
	Savings  AccountType = "SAV"
)

// TransactionType is the direction of money relative to the receiver.
type TransactionType string

const (
	Credit TransactionType = "CR"
	Debit  TransactionType = "DR"
)

// EntryClass says which control total an entry feeds.
type EntryClass int

const (
	Unclassified EntryClass = iota
	CreditEntry
	DebitEntry
)

func (c EntryClass) String() string {
	switch c {
	case CreditEntry:
		return "credit"
	case DebitEntry:
		return "debit"
	default:
		return "unclassified"
	}
}

const (
	entryRecordType = "6"

	// placeholders used when an entry is rendered outside of a batch
	unownedInstitutionID = "99999999"
	unownedTraceBase     = 10000
)

var transactionCodes = map[AccountType]map[TransactionType]int{
	Checking: {Credit: 22, Debit: 27},
	Savings:  {Credit: 32, Debit: 37},
}

// DeriveTransactionCode maps an account category and direction to the live
// dollar PPD transaction code.
func DeriveTransactionCode(account AccountType, txn TransactionType) (int, error) {
	if code, ok := transactionCodes[account][txn]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("%w: %q/%q", ErrUnsupportedCombination, account, txn)
}

// EntryConfig holds the caller supplied values of a PPD entry.
type EntryConfig struct {
	// TransactionCode overrides derivation from AccountType and TransactionType
	// when non-zero. Prenote codes (23, 28, 33, 38) go here.
	TransactionCode int
	// AccountType defaults to Checking.
	AccountType AccountType
	// TransactionType defaults to Credit.
	TransactionType TransactionType

	// Amount in cents.
	Amount int64
	// RoutingID is the first eight digits of the receiving DFI's routing number.
	RoutingID string
	// CheckDigit is the ninth digit of the routing number.
	CheckDigit int

	AccountNumber     string
	IndividualID      string
	IndividualName    string
	DiscretionaryData string
	AddendaIndicator  int
	// TraceNumber defaults to the entry's 1-based position in its batch.
	TraceNumber int
}

// Entry is a single PPD payment instruction.
type Entry struct {
	transactionCode   int
	amount            int64
	routingID         string
	routingValue      int64
	checkDigit        int
	accountNumber     string
	individualID      string
	individualName    string
	discretionaryData string
	addendaIndicator  int
	traceNumber       int
}

// NewEntry validates cfg and builds an Entry.
func NewEntry(cfg EntryConfig) (*Entry, error) {
	code := cfg.TransactionCode
	if code == 0 {
		account, txn := cfg.AccountType, cfg.TransactionType
		if account == "" {
			account = Checking
		}
		if txn == "" {
			txn = Credit
		}
		var err error
		if code, err = DeriveTransactionCode(account, txn); err != nil {
			return nil, err
		}
	}
	if cfg.Amount < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeAmount, cfg.Amount)
	}
	routing, err := parseRoutingID(cfg.RoutingID)
	if err != nil {
		return nil, err
	}
	if cfg.CheckDigit < 0 || cfg.CheckDigit > 9 {
		return nil, fmt.Errorf("%w: check digit %d", ErrInvalidRoutingID, cfg.CheckDigit)
	}
	return &Entry{
		transactionCode:   code,
		amount:            cfg.Amount,
		routingID:         cfg.RoutingID,
		routingValue:      routing,
		checkDigit:        cfg.CheckDigit,
		accountNumber:     cfg.AccountNumber,
		individualID:      cfg.IndividualID,
		individualName:    cfg.IndividualName,
		discretionaryData: cfg.DiscretionaryData,
		addendaIndicator:  cfg.AddendaIndicator,
		traceNumber:       cfg.TraceNumber,
	}, nil
}

func parseRoutingID(id string) (int64, error) {
	if id == "" || len(id) > 8 {
		return 0, fmt.Errorf("%w: %q must be 1 to 8 digits", ErrInvalidRoutingID, id)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q must be 1 to 8 digits", ErrInvalidRoutingID, id)
		}
	}
	return strconv.ParseInt(id, 10, 64)
}

func (e *Entry) TransactionCode() int { return e.transactionCode }
func (e *Entry) Amount() int64 { return e.amount }
func (e *Entry) RoutingID() string { return e.routingID }
func (e *Entry) CheckDigit() int { return e.checkDigit }
func (e *Entry) AccountNumber() string { return e.accountNumber }
func (e *Entry) IndividualID() string { return e.individualID }
func (e *Entry) IndividualName() string { return e.individualName }
func (e *Entry) DiscretionaryData() string { return e.discretionaryData }
func (e *Entry) AddendaIndicator() int { return e.addendaIndicator }
func (e *Entry) TraceNumber() int { return e.traceNumber }

// Class reports whether the entry is a live credit, a live debit, or neither.
func (e *Entry) Class() EntryClass {
	switch e.transactionCode {
	case 22, 32:
		return CreditEntry
	case 27, 37:
		return DebitEntry
	default:
		return Unclassified
	}
}

// hashValue is the numeric routing identifier summed into the entry hash.
func (e *Entry) hashValue() int64 {
	return e.routingValue
}

// Render returns the 94 character entry detail record. A nil ctx renders the
// entry as if it had no batch.
func (e *Entry) Render(ctx *BatchContext) string {
	institution := unownedInstitutionID
	trace := int64(unownedTraceBase + e.traceNumber)
	if ctx != nil {
		institution = ctx.InstitutionID
		trace = int64(ctx.BatchNumber + e.traceNumber)
	}

	return entryRecordType +
		Numeric(int64(e.transactionCode), 2) +
		Alpha(e.routingID+strconv.Itoa(e.checkDigit), 9) +
		Alpha(e.accountNumber, 17) +
		Numeric(e.amount, 10) +
		Alpha(e.individualID, 15) +
		Alpha(e.individualName, 22) +
		Alpha(e.discretionaryData, 2) +
		Alpha(strconv.Itoa(e.addendaIndicator), 1) +
		ZeroRight(institution, 8) +
		Numeric(trace, 7)
}
