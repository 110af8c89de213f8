package http

import (
	"ledgerly/internal/core"
)

type transactionDTO struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category,omitempty"`
	Date        string `json:"date"`
}

type transactionRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

type summaryDTO struct {
	TotalIncome   string `json:"totalIncome"`
	TotalExpenses string `json:"totalExpenses"`
	Savings       string `json:"savings"`
}

type aggregateEditRequest struct {
	Value string `json:"value"`
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type planDTO struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Amount          string `json:"amount"`
	Date            string `json:"date"`
	RecurringMonths int    `json:"recurringMonths"`
}

type planRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Amount          string `json:"amount"`
	Date            string `json:"date"`
	RecurringMonths int    `json:"recurringMonths"`
}

type subscriptionDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Amount          string `json:"amount"`
	BillingCycle    string `json:"billingCycle"`
	NextBillingDate string `json:"nextBillingDate"`
	Description     string `json:"description,omitempty"`
}

type subscriptionRequest struct {
	Name            string `json:"name"`
	Amount          string `json:"amount"`
	BillingCycle    string `json:"billingCycle"`
	NextBillingDate string `json:"nextBillingDate"`
	Description     string `json:"description"`
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount.Decimal(),
		Type:        string(t.Type),
		Category:    t.Category,
		Date:        t.Date.ISO(),
	}
}

func toTransactionDTOs(txns []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, len(txns))
	for i, t := range txns {
		out[i] = toTransactionDTO(t)
	}
	return out
}

func toSummaryDTO(snap core.Snapshot) summaryDTO {
	return summaryDTO{
		TotalIncome:   snap.TotalIncome.Decimal(),
		TotalExpenses: snap.TotalExpenses.Decimal(),
		Savings:       snap.Savings.Decimal(),
	}
}

// toTransactionInput parses the request body into a core input. The type tag
// and a missing date are coerced downstream; only the amount needs parsing
// here.
func (req transactionRequest) toTransactionInput() (core.TransactionInput, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.TransactionInput{}, core.ErrInvalidAmount
	}

	in := core.TransactionInput{
		Description: req.Description,
		Amount:      core.Money{Cents: cents},
		Type:        core.TransactionType(req.Type),
		Category:    req.Category,
	}
	if req.Date != "" {
		date, err := core.ParseDate(req.Date)
		if err != nil {
			return core.TransactionInput{}, err
		}
		in.Date = date
	}
	return in, nil
}

func toPlanDTO(p core.PlannedExpense) planDTO {
	return planDTO{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		Amount:          p.Amount.Decimal(),
		Date:            p.Date.ISO(),
		RecurringMonths: p.RecurringMonths,
	}
}

func toSubscriptionDTO(s core.Subscription) subscriptionDTO {
	return subscriptionDTO{
		ID:              s.ID,
		Name:            s.Name,
		Amount:          s.Amount.Decimal(),
		BillingCycle:    string(s.BillingCycle),
		NextBillingDate: s.NextBillingDate.ISO(),
		Description:     s.Description,
	}
}
