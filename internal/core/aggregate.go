package core

// Snapshot is the derived view of a ledger: totals are always recomputed from
// the full transaction set, never stored, so they cannot drift from the
// underlying records.
type Snapshot struct {
	TotalIncome   Money
	TotalExpenses Money
	Savings       Money
}

// Aggregate reduces a transaction list to its Snapshot. The reduction walks
// the list in ledger order and sums int64 cents, so the result is exact and
// order effects cannot appear. Transactions with an unrecognized type count
// as expenses (the documented coercion default), not as dropped records.
func Aggregate(txns []Transaction) Snapshot {
	var income, expenses int64
	for _, t := range txns {
		if t.Type == Income {
			income += t.Amount.Cents
		} else {
			expenses += t.Amount.Cents
		}
	}
	return Snapshot{
		TotalIncome:   Money{Cents: income},
		TotalExpenses: Money{Cents: expenses},
		Savings:       Money{Cents: income - expenses},
	}
}
