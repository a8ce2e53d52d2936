// Package normalize turns heterogeneous raw spreadsheet rows into a clean,
// typed, aggregate-ready record set.
//
// The pipeline is a pure function of its input: no state survives between
// runs, and normalizing already-normalized output yields an identical
// sequence. Every anomaly short of a missing backend is recovered locally, a
// personal dataset with the odd malformed row must still render a usable
// dashboard.
package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"financas/internal/core"
)

// Options configures the pipeline. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// HeaderLabel is the literal date-field value that marks a stray
	// re-imported header row.
	HeaderLabel string
	// CategoryAliases maps legacy or misspelled labels to their canonical
	// names. Unmapped labels pass through unchanged. Applied before any
	// aggregation so historical and current labels never split a bucket.
	CategoryAliases map[string]string
}

// DefaultOptions returns the mapping the dashboard has accumulated over its
// revisions.
func DefaultOptions() Options {
	return Options{
		HeaderLabel: core.HeaderLabel,
		CategoryAliases: map[string]string{
			"Laser":    "Lazer",
			"Valentia": "Venda",
		},
	}
}

// Report counts the anomalies a run recovered from. Rows are only ever
// dropped for the header-echo case; everything else is kept and counted.
type Report struct {
	// HeaderEchoes is the number of rows dropped as re-imported headers.
	HeaderEchoes int
	// ZeroedAmounts is the number of kept rows whose amount failed to
	// parse and was normalized to zero.
	ZeroedAmounts int
	// UnknownKinds is the number of kept rows whose kind token is
	// unrecognized and will contribute to neither total.
	UnknownKinds int
}

// Rejected is the total of rows dropped by the run.
func (r Report) Rejected() int { return r.HeaderEchoes }

// Result is the outcome of one pipeline run.
type Result struct {
	Transactions []core.Transaction
	Report       Report
}

// Pipeline normalizes raw rows. Safe for concurrent use; it holds no
// mutable state.
type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

// New builds a pipeline. A nil logger falls back to slog.Default.
func New(opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.HeaderLabel == "" {
		opts.HeaderLabel = core.HeaderLabel
	}
	return &Pipeline{opts: opts, logger: logger}
}

// Run applies the normalization steps, in order, to every row:
//
//  1. header-echo filter: drop rows whose date field equals the header label;
//  2. category canonicalization via the alias table;
//  3. amount parsing: any accepted source form, unparsable becomes zero;
//  4. kind check: unrecognized tokens are preserved but counted.
//
// Cardinality is preserved for everything but header echoes.
func (p *Pipeline) Run(ctx context.Context, rows []core.RawRow) Result {
	res := Result{Transactions: make([]core.Transaction, 0, len(rows))}

	for i, row := range rows {
		date := stringField(row, core.FieldDate)
		if date == p.opts.HeaderLabel {
			res.Report.HeaderEchoes++
			continue
		}

		category := stringField(row, core.FieldCategory)
		if canonical, ok := p.opts.CategoryAliases[category]; ok {
			category = canonical
		}

		amount, ok := core.ParseAmount(row[core.FieldAmount])
		if !ok {
			amount = core.Money{}
			res.Report.ZeroedAmounts++
			p.logger.WarnContext(ctx, "Unparsable amount normalized to zero",
				"row", i,
				"value", fmt.Sprint(row[core.FieldAmount]))
		}

		kind := core.Kind(stringField(row, core.FieldKind))
		if !kind.Recognized() {
			res.Report.UnknownKinds++
			p.logger.WarnContext(ctx, "Unrecognized kind token, row excluded from totals",
				"row", i,
				"kind", string(kind))
		}

		res.Transactions = append(res.Transactions, core.Transaction{
			Date:        date,
			Category:    category,
			Description: stringField(row, core.FieldDescription),
			Amount:      amount,
			Kind:        kind,
		})
	}

	return res
}

// stringField reads a row field as trimmed text, whatever the source typed
// it as.
func stringField(row core.RawRow, field string) string {
	v, ok := row[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
