// Package backend selects and wires a record store from configuration.
package backend

import (
	"context"

	"financas/internal/records"
)

// Backend is the full set of record operations the dashboard needs.
type Backend interface {
	records.RowSource
	records.RowAppender
	records.PeriodLister
}

// CleanupFunc releases whatever resources a backend holds open.
type CleanupFunc func() error

// Result pairs a backend with its cleanup.
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, cfg Config) (*Result, error)
}

// Type names a record store implementation.
type Type string

const (
	MemoryBackend Type = "memory"
	XLSXBackend   Type = "xlsx"
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
)

func (t Type) String() string { return string(t) }

// IsValid reports whether the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, XLSXBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
