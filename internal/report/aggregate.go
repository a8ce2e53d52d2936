// Package report computes the derived views over a normalized record set:
// totals, category breakdown and rankings. Everything here is a pure
// function of its input.
package report

import (
	"sort"

	"financas/internal/core"
)

// Options tunes the aggregation.
type Options struct {
	// ExcludeFromBreakdown drops a category label from the outflow
	// breakdown. Used to keep a misclassified income label ("Salário")
	// out of the spending chart; totals are unaffected.
	ExcludeFromBreakdown string
}

// DefaultOptions excludes the income category from the spending breakdown.
func DefaultOptions() Options {
	return Options{ExcludeFromBreakdown: "Salário"}
}

// Summarize computes totals, balance and the outflow-by-category breakdown.
// Unrecognized kinds contribute to neither total. The breakdown preserves
// first-encountered category order. Empty input yields an all-zero summary.
func Summarize(txs []core.Transaction, opts Options) core.Summary {
	var s core.Summary
	sums := make(map[string]int64)
	order := make([]string, 0)

	for _, tx := range txs {
		switch tx.Kind {
		case core.KindInflow:
			s.TotalInflow = s.TotalInflow.Add(tx.Amount)
		case core.KindOutflow:
			s.TotalOutflow = s.TotalOutflow.Add(tx.Amount)
			if opts.ExcludeFromBreakdown != "" && tx.Category == opts.ExcludeFromBreakdown {
				continue
			}
			if _, seen := sums[tx.Category]; !seen {
				order = append(order, tx.Category)
			}
			sums[tx.Category] += tx.Amount.Cents
		}
	}

	s.Balance = s.TotalInflow.Sub(s.TotalOutflow)
	for _, name := range order {
		s.Breakdown = append(s.Breakdown, core.CategoryAmount{
			Name:   name,
			Amount: core.Money{Cents: sums[name]},
		})
	}
	return s
}

// TopCategories returns the n largest breakdown entries by amount,
// descending. The sort is stable, so ties keep first-encountered order.
// The input slice is not modified.
func TopCategories(breakdown []core.CategoryAmount, n int) []core.CategoryAmount {
	if n <= 0 || len(breakdown) == 0 {
		return nil
	}
	ranked := append([]core.CategoryAmount(nil), breakdown...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount.Cents > ranked[j].Amount.Cents
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
