// Package service runs the request-scoped read → normalize → aggregate
// cycle behind the dashboard. There is no cache in this path on purpose:
// every cycle re-reads the period from the source of truth, so a row
// appended elsewhere shows up on the next reload.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"financas/internal/core"
	"financas/internal/normalize"
	"financas/internal/records"
	"financas/internal/report"
)

// DefaultTopN is how many categories the ranking panel shows.
const DefaultTopN = 5

// View is the payload the presentation layer renders.
type View struct {
	Period core.Period
	// Found is false when the period has no table or worksheet; the
	// caller shows an empty state, never an error page.
	Found   bool
	Summary core.Summary
	Top     []core.CategoryAmount
	Records []core.Transaction
	Report  normalize.Report
	// Periods feeds the period selector; empty when the backend cannot
	// enumerate them.
	Periods []core.Period
}

type Dashboard struct {
	source     records.RowSource
	lister     records.PeriodLister
	pipeline   *normalize.Pipeline
	reportOpts report.Options
	topN       int
}

// NewDashboard wires the cycle. lister may be nil when the backend cannot
// enumerate periods.
func NewDashboard(source records.RowSource, lister records.PeriodLister, pipeline *normalize.Pipeline, reportOpts report.Options, topN int) *Dashboard {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Dashboard{
		source:     source,
		lister:     lister,
		pipeline:   pipeline,
		reportOpts: reportOpts,
		topN:       topN,
	}
}

// Load runs one full cycle for the period.
func (d *Dashboard) Load(ctx context.Context, p core.Period) (View, error) {
	view := View{Period: p}

	if d.lister != nil {
		periods, err := d.lister.Periods(ctx)
		if err != nil {
			// The selector is a convenience; the dashboard still renders.
			slog.WarnContext(ctx, "Could not list periods", "error", err)
		} else {
			view.Periods = periods
		}
	}

	rows, err := d.source.Rows(ctx, p)
	if err != nil {
		if errors.Is(err, records.ErrPeriodNotFound) {
			slog.InfoContext(ctx, "Period absent, rendering empty state", "period", p.Label())
			return view, nil
		}
		return View{}, fmt.Errorf("load period %s: %w", p.Label(), err)
	}
	view.Found = true

	result := d.pipeline.Run(ctx, rows)
	view.Records = result.Transactions
	view.Report = result.Report

	view.Summary = report.Summarize(result.Transactions, d.reportOpts)
	view.Top = report.TopCategories(view.Summary.Breakdown, d.topN)

	if result.Report != (normalize.Report{}) {
		slog.InfoContext(ctx, "Pipeline recovered from anomalies",
			"period", p.Label(),
			"header_echoes", result.Report.HeaderEchoes,
			"zeroed_amounts", result.Report.ZeroedAmounts,
			"unknown_kinds", result.Report.UnknownKinds)
	}

	return view, nil
}
