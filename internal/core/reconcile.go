package core

const (
	FieldIncome   AggregateField = "income"
	FieldExpenses AggregateField = "expenses"
	FieldSavings  AggregateField = "savings"
)

// AggregateField names one derived total on the dashboard.
type AggregateField string

const (
	incomeAdjustmentDesc      = "Manual Income Adjustment"
	incomeAdjustmentCategory  = "Adjustment"
	savingsAdjustmentDesc     = "Manual Savings Adjustment"
	savingsAdjustmentCategory = "Savings Adjustment"
)

// Reconcile translates a direct edit of a derived aggregate into a synthetic
// ledger entry. Totals are never stored, so "setting" income or savings means
// inserting an offsetting transaction whose re-aggregation lands on the
// requested value.
//
// A nil, nil return means the target already equals the current value and no
// transaction is needed. The expenses total is not editable; asking for it
// fails with ErrUnsupportedField so callers cannot mistake silence for
// success.
func Reconcile(field AggregateField, target Money, snap Snapshot, userID string, today Date) (*TransactionInput, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	var current Money
	var desc, category string
	switch field {
	case FieldIncome:
		current = snap.TotalIncome
		desc, category = incomeAdjustmentDesc, incomeAdjustmentCategory
	case FieldSavings:
		current = snap.Savings
		desc, category = savingsAdjustmentDesc, savingsAdjustmentCategory
	default:
		return nil, ErrUnsupportedField
	}

	diff := target.Sub(current)
	if diff.Cents == 0 {
		return nil, nil
	}

	kind := Expense
	if diff.Cents > 0 {
		kind = Income
	}
	return &TransactionInput{
		Description: desc,
		Amount:      diff.Abs(),
		Type:        kind,
		Category:    category,
		Date:        today,
		UserID:      userID,
	}, nil
}
