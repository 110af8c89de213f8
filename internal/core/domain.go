package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one ledger entry. Amount carries the magnitude only;
	// the sign lives in Type.
	Transaction struct {
		ID          string
		Description string
		Amount      Money
		Type        TransactionType
		Category    string
		Date        Date
		UserID      string
	}

	// TransactionInput is a Transaction before the collection has assigned
	// an identifier.
	TransactionInput struct {
		Description string
		Amount      Money
		Type        TransactionType
		Category    string
		Date        Date
		UserID      string
	}
)

var (
	ErrNotFound         = errors.New("transaction not found")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrInvalidValue     = errors.New("invalid aggregate value")
	ErrUnsupportedField = errors.New("aggregate field not editable")
	ErrUnauthenticated  = errors.New("no authenticated user")
	ErrPersistence      = errors.New("persistence failure")

	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidDate        = errors.New("invalid date")
)

// NormalizeType coerces an arbitrary type tag into the closed income/expense
// set. Anything that is not exactly "income" is an expense; unrecognized
// values are coerced, never dropped from aggregation.
func NormalizeType(v string) TransactionType {
	if v == string(Income) {
		return Income
	}
	return Expense
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses an ISO YYYY-MM-DD ledger date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// AddMonths advances by whole months, clamping to the target month's last
// day so a day-31 anchor lands on Feb 28/29 instead of normalizing into
// March.
func (d Date) AddMonths(months int) Date {
	first := time.Date(d.Year(), d.Month()+time.Month(months), 1, 0, 0, 0, 0, d.Location())
	lastDay := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, first.Location()).Day()
	day := d.Day()
	if day > lastDay {
		day = lastDay
	}
	return Date{Time: time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, first.Location())}
}

// ISO renders the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.UserID) == "" {
		return ErrUnauthenticated
	}
	if len(strings.TrimSpace(in.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(in.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return ErrInvalidType
	}
	return in.Date.Validate()
}

// Normalized applies the boundary coercions once, so everything past the
// collection boundary can assume the data model invariants hold: the type is
// forced into the two-variant set and a missing date defaults to today.
func (in TransactionInput) Normalized(now time.Time) TransactionInput {
	out := in
	out.Description = strings.TrimSpace(in.Description)
	out.Category = strings.TrimSpace(in.Category)
	out.UserID = strings.TrimSpace(in.UserID)
	out.Type = NormalizeType(string(in.Type))
	if out.Date.IsZero() {
		out.Date = NewDate(now.UTC().Year(), int(now.UTC().Month()), now.UTC().Day())
	}
	return out
}

// WithID promotes an input to a full Transaction under a store-assigned id.
func (in TransactionInput) WithID(id string) Transaction {
	return Transaction{
		ID:          id,
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    in.Category,
		Date:        in.Date,
		UserID:      in.UserID,
	}
}

// Input strips the identifier, for whole-record replacement.
func (t Transaction) Input() TransactionInput {
	return TransactionInput{
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
		Category:    t.Category,
		Date:        t.Date,
		UserID:      t.UserID,
	}
}
