package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// UncategorizedLabel is the display label for expenses without a category.
// It is applied only at output boundaries, so a real category literally
// named "Uncategorized" never collides with the sentinel key.
const UncategorizedLabel = "Uncategorized"

type (
	Kind string

	// Transaction is a dated monetary event entered by the user.
	Transaction struct {
		ID          int64
		UserID      int64
		Amount      decimal.Decimal
		Kind        Kind
		Description string
		Category    string // empty = uncategorized
		OccurredAt  time.Time
	}

	// Salary is an income record. Salaries never carry a category.
	Salary struct {
		ID          int64
		UserID      int64
		Amount      decimal.Decimal
		Description string
		ReceivedAt  time.Time
	}

	Category struct {
		ID     int64
		UserID int64
		Name   string
		Color  string
	}

	User struct {
		ID           int64
		Email        string
		Name         string
		PasswordHash string
	}
)

var (
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
)

func (k Kind) Valid() bool {
	switch k {
	case Income, Expense:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if t.OccurredAt.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (s Salary) Validate() error {
	if s.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if s.ReceivedAt.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(s.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(s.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}

// CategoryKey identifies the bucket a transaction's expense belongs to:
// either a named category or the synthetic uncategorized bucket.
type CategoryKey struct {
	named bool
	name  string
}

func NamedCategory(name string) CategoryKey {
	return CategoryKey{named: true, name: name}
}

func Uncategorized() CategoryKey {
	return CategoryKey{}
}

// KeyFor returns the grouping key for a transaction.
func KeyFor(t Transaction) CategoryKey {
	if strings.TrimSpace(t.Category) == "" {
		return Uncategorized()
	}
	return NamedCategory(t.Category)
}

// Label maps the key to its display name.
func (k CategoryKey) Label() string {
	if k.named {
		return k.name
	}
	return UncategorizedLabel
}

// InvalidRecordError signals a data-integrity fault in a stored record.
// Malformed monetary records are surfaced, never silently dropped, since
// skipping one would misstate balances.
type InvalidRecordError struct {
	Entity string // "transaction" or "salary"
	ID     int64
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid %s record %d: %s", e.Entity, e.ID, e.Reason)
}
