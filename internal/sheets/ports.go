package sheets

import (
	"context"

	"pesatrack/internal/core"
)

// Ports for outbound export adapters.
type (
	// RowAppender appends one transaction as a row to the export target.
	RowAppender interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// RowLister reads back every exported transaction id, used by the worker
	// for its startup catch-up pass.
	RowLister interface {
		ListExportedIDs(ctx context.Context) ([]string, error)
	}
)
