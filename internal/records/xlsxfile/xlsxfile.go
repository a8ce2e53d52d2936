// Package xlsxfile reads and appends records in a local spreadsheet
// workbook, one sheet per period. This is the offline counterpart of the
// cloud sheet backend: same row shape, same header, same append-only
// discipline.
package xlsxfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/xuri/excelize/v2"

	"financas/internal/core"
	"financas/internal/records"
)

// header occupies the first row of every sheet and is skipped on read.
var header = []string{
	core.FieldDate,
	core.FieldCategory,
	core.FieldDescription,
	core.FieldAmount,
	core.FieldKind,
}

// Workbook is a file-backed record store. Reads take the first five columns
// only; anything to the right of column E is ignored.
type Workbook struct {
	path string
	mu   sync.Mutex
}

var (
	_ records.RowSource    = (*Workbook)(nil)
	_ records.RowAppender  = (*Workbook)(nil)
	_ records.PeriodLister = (*Workbook)(nil)
)

func New(path string) *Workbook {
	return &Workbook{path: path}
}

// Rows implements records.RowSource. A missing file and a missing sheet are
// the same condition for the caller: the period is not there.
func (w *Workbook) Rows(ctx context.Context, p core.Period) ([]core.RawRow, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		slog.WarnContext(ctx, "Workbook unreadable", "path", w.path, "error", err)
		return nil, fmt.Errorf("%w: %s", records.ErrPeriodNotFound, p.Label())
	}
	defer f.Close()

	label := p.Label()
	if idx, _ := f.GetSheetIndex(label); idx == -1 {
		return nil, fmt.Errorf("%w: %s", records.ErrPeriodNotFound, label)
	}

	cells, err := f.GetRows(label)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", label, err)
	}

	var out []core.RawRow
	for i, row := range cells {
		if i == 0 {
			// Header row.
			continue
		}
		out = append(out, core.RawRow{
			core.FieldDate:        cell(row, 0),
			core.FieldCategory:    cell(row, 1),
			core.FieldDescription: cell(row, 2),
			core.FieldAmount:      cell(row, 3),
			core.FieldKind:        cell(row, 4),
		})
	}
	return out, nil
}

// Append implements records.RowAppender. The workbook, and the period's
// sheet with its header row, are created on first write.
func (w *Workbook) Append(ctx context.Context, p core.Period, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, created, err := w.open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	label := p.Label()
	if idx, _ := f.GetSheetIndex(label); idx == -1 {
		if _, err := f.NewSheet(label); err != nil {
			return "", fmt.Errorf("create sheet %s: %w", label, err)
		}
		for col, name := range header {
			c, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(label, c, name); err != nil {
				return "", fmt.Errorf("write header: %w", err)
			}
		}
	}

	existing, err := f.GetRows(label)
	if err != nil {
		return "", fmt.Errorf("read sheet %s: %w", label, err)
	}
	rowNum := len(existing) + 1

	values := []any{tx.Date, tx.Category, tx.Description, tx.Amount.Float(), string(tx.Kind)}
	for col, v := range values {
		c, _ := excelize.CoordinatesToCellName(col+1, rowNum)
		if err := f.SetCellValue(label, c, v); err != nil {
			return "", fmt.Errorf("write cell %s: %w", c, err)
		}
	}

	if created {
		err = f.SaveAs(w.path)
	} else {
		err = f.Save()
	}
	if err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	ref := fmt.Sprintf("%s!A%d:E%d", label, rowNum, rowNum)
	slog.InfoContext(ctx, "Record appended to workbook", "path", w.path, "ref", ref)
	return ref, nil
}

// Periods implements records.PeriodLister. Sheets whose names are not
// period labels are ignored.
func (w *Workbook) Periods(_ context.Context) ([]core.Period, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var out []core.Period
	for _, name := range f.GetSheetList() {
		p, err := core.ParsePeriodLabel(name)
		if err != nil {
			continue
		}
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

func (w *Workbook) open() (f *excelize.File, created bool, err error) {
	f, err = excelize.OpenFile(w.path)
	if err == nil {
		return f, false, nil
	}
	if os.IsNotExist(err) {
		return excelize.NewFile(), true, nil
	}
	return nil, false, fmt.Errorf("open workbook: %w", err)
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
