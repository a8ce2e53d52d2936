// Package records defines the ports between the pipeline and the backing
// stores. Adapters live in the subpackages; callers only see these
// interfaces.
package records

import (
	"context"
	"errors"

	"financas/internal/core"
)

// ErrPeriodNotFound signals that the requested period has no corresponding
// table or worksheet, or that the backend is unreachable. It is an explicit
// condition, never partial data: callers render an empty state.
var ErrPeriodNotFound = errors.New("period not found")

type (
	// RowSource fetches all raw rows for a period, in store order.
	RowSource interface {
		Rows(ctx context.Context, p core.Period) ([]core.RawRow, error)
	}

	// RowAppender appends one validated transaction as a new row. There
	// are no batch or transaction semantics; the store is append-only
	// from this system's perspective.
	RowAppender interface {
		Append(ctx context.Context, p core.Period, tx core.Transaction) (ref string, err error)
	}

	// PeriodLister enumerates the periods a store knows about, for the
	// period selector.
	PeriodLister interface {
		Periods(ctx context.Context) ([]core.Period, error)
	}
)
