// Package memory is an in-process record store, used as the default dev
// backend and as a fake in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"financas/internal/core"
	"financas/internal/records"
)

type Store struct {
	mu   sync.Mutex
	rows map[core.Period][]core.RawRow
}

var (
	_ records.RowSource    = (*Store)(nil)
	_ records.RowAppender  = (*Store)(nil)
	_ records.PeriodLister = (*Store)(nil)
)

func New() *Store {
	return &Store{rows: make(map[core.Period][]core.RawRow)}
}

// Seed registers a period with the given raw rows, replacing anything
// already there. Seeding with nil rows creates an empty period, which is
// distinct from an absent one.
func (s *Store) Seed(p core.Period, rows []core.RawRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]core.RawRow, len(rows))
	copy(copied, rows)
	s.rows[p] = copied
}

// Rows implements records.RowSource.
func (s *Store) Rows(_ context.Context, p core.Period) ([]core.RawRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.rows[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", records.ErrPeriodNotFound, p.Label())
	}
	out := make([]core.RawRow, len(rows))
	copy(out, rows)
	return out, nil
}

// Append implements records.RowAppender. Appending creates the period if it
// does not exist yet, mirroring how a new worksheet appears on first write.
func (s *Store) Append(_ context.Context, p core.Period, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[p] = append(s.rows[p], tx.Row())
	return fmt.Sprintf("mem:%s:%d", p.Label(), len(s.rows[p])), nil
}

// Periods implements records.PeriodLister, newest first.
func (s *Store) Periods(_ context.Context) ([]core.Period, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Period, 0, len(s.rows))
	for p := range s.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}
