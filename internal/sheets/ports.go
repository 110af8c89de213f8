package sheets

import (
	"context"

	"ledgerly/internal/core"
)

// TransactionWriter mirrors one ledger entry to an external sheet. The row
// reference it returns identifies where the entry landed.
type TransactionWriter interface {
	Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
}
