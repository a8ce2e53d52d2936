package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// Recognized kind tokens, as written in the backing store.
	KindInflow  Kind = "Entrada"
	KindOutflow Kind = "Saída"
)

// Raw row field names, matching the spreadsheet header.
const (
	FieldDate        = "Data"
	FieldCategory    = "Categoria"
	FieldDescription = "Descrição"
	FieldAmount      = "Valor"
	FieldKind        = "Tipo"
)

// HeaderLabel is the literal value a stray re-imported header row carries
// in its date field.
const HeaderLabel = FieldDate

type (
	// Kind is the transaction direction. Only KindInflow and KindOutflow
	// are recognized; any other value is preserved but contributes to
	// neither total.
	Kind string

	// Transaction is the sole entity of the system. Date is kept as the
	// locale text found in the store (DD/MM/YYYY); it is not validated for
	// calendar correctness. Amount is always non-negative in storage, the
	// sign of its effect comes from Kind.
	Transaction struct {
		Date        string
		Category    string
		Description string
		Amount      Money
		Kind        Kind
	}

	// RawRow is one untyped row from a record source: field name to
	// string, number or empty value.
	RawRow map[string]any

	// Period identifies one worksheet/table partition of records.
	Period struct {
		Year  int
		Month time.Month
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidKind   = errors.New("invalid kind")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidPeriod = errors.New("invalid period")
)

// Recognized reports whether the kind is one of the two known tokens.
func (k Kind) Recognized() bool {
	return k == KindInflow || k == KindOutflow
}

// Validate checks a user-submitted transaction before write-back. Rows read
// from the store are never validated this strictly; the normalization
// pipeline recovers from anything.
func (t Transaction) Validate() error {
	if _, err := time.Parse("02/01/2006", strings.TrimSpace(t.Date)); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !t.Kind.Recognized() {
		return ErrInvalidKind
	}
	return nil
}

// Row converts the transaction back to the untyped row shape used by the
// record sources. Amount is emitted as a plain number.
func (t Transaction) Row() RawRow {
	return RawRow{
		FieldDate:        t.Date,
		FieldCategory:    t.Category,
		FieldDescription: t.Description,
		FieldAmount:      t.Amount.Float(),
		FieldKind:        string(t.Kind),
	}
}

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// CurrentPeriod returns the period for the current month.
func CurrentPeriod() Period {
	now := time.Now()
	return Period{Year: now.Year(), Month: now.Month()}
}

// NewPeriod builds a period from a year and month.
func NewPeriod(year int, month time.Month) (Period, error) {
	if month < time.January || month > time.December {
		return Period{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	if year < 1900 || year > 3000 {
		return Period{}, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return Period{Year: year, Month: month}, nil
}

// Label returns the human-readable period label used to name the backing
// worksheet or table, e.g. "Março 2025".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", monthNames[p.Month-1], p.Year)
}

// MonthName returns the Portuguese month name on its own.
func (p Period) MonthName() string {
	return monthNames[p.Month-1]
}

func (p Period) String() string { return p.Label() }

// ParsePeriodLabel resolves a label produced by Period.Label back into a
// Period. The month name comparison is case-insensitive.
func ParsePeriodLabel(label string) (Period, error) {
	parts := strings.Fields(strings.TrimSpace(label))
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, label)
	}
	var year int
	if _, err := fmt.Sscanf(parts[1], "%d", &year); err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, label)
	}
	for i, name := range monthNames {
		if strings.EqualFold(name, parts[0]) {
			return NewPeriod(year, time.Month(i+1))
		}
	}
	return Period{}, fmt.Errorf("%w: unknown month in %q", ErrInvalidPeriod, label)
}
