package core

import (
	"errors"
	"strings"
)

const (
	MonthlyBilling BillingCycle = "monthly"
	YearlyBilling  BillingCycle = "yearly"
)

type (
	BillingCycle string

	// PlannedExpense is a future expense placed on the planner calendar.
	// RecurringMonths > 1 projects the entry into that many consecutive
	// months starting at Date.
	PlannedExpense struct {
		ID              string
		UserID          string
		Title           string
		Description     string
		Amount          Money
		Date            Date
		RecurringMonths int
	}

	// Subscription is a recurring charge tracked outside the ledger until
	// its billing date arrives, at which point the billing worker turns it
	// into an expense transaction.
	Subscription struct {
		ID              string
		UserID          string
		Name            string
		Amount          Money
		BillingCycle    BillingCycle
		NextBillingDate Date
		Description     string
	}
)

var (
	ErrEmptyTitle           = errors.New("empty title")
	ErrInvalidBillingCycle  = errors.New("invalid billing cycle")
	ErrInvalidRecurringSpan = errors.New("recurring months must be between 1 and 60")
)

func (c BillingCycle) Valid() bool {
	return c == MonthlyBilling || c == YearlyBilling
}

func (p PlannedExpense) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrUnauthenticated
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if err := p.Date.Validate(); err != nil {
		return err
	}
	if p.RecurringMonths < 1 || p.RecurringMonths > 60 {
		return ErrInvalidRecurringSpan
	}
	return nil
}

// Occurrences expands the plan into its projected dates, one per month.
// Each occurrence is anchored to the plan's own day so a Jan 31 plan hits
// [Jan 31, Feb 28, Mar 31], never skipping the short month.
func (p PlannedExpense) Occurrences() []Date {
	out := make([]Date, 0, p.RecurringMonths)
	for i := 0; i < p.RecurringMonths; i++ {
		out = append(out, p.Date.AddMonths(i))
	}
	return out
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return ErrUnauthenticated
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyTitle
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if !s.BillingCycle.Valid() {
		return ErrInvalidBillingCycle
	}
	return s.NextBillingDate.Validate()
}

// NextAfter advances the billing date by one cycle, clamping to the target
// month's last day (Jan 31 bills again Feb 28, not Mar 3).
func (s Subscription) NextAfter(d Date) Date {
	switch s.BillingCycle {
	case YearlyBilling:
		return d.AddMonths(12)
	default:
		return d.AddMonths(1)
	}
}
