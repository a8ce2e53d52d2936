package normalize

import (
	"context"
	"reflect"
	"testing"

	"financas/internal/core"
)

func run(t *testing.T, rows []core.RawRow) Result {
	t.Helper()
	p := New(DefaultOptions(), nil)
	return p.Run(context.Background(), rows)
}

func TestHeaderEchoDropped(t *testing.T) {
	rows := []core.RawRow{
		{core.FieldDate: "Data", core.FieldCategory: "x", core.FieldAmount: "", core.FieldKind: ""},
		{core.FieldDate: "01/03/2025", core.FieldCategory: "Contas", core.FieldAmount: "10,00", core.FieldKind: "Saída"},
		{core.FieldDate: "Data", core.FieldCategory: "Categoria", core.FieldAmount: "Valor", core.FieldKind: "Tipo"},
	}
	res := run(t, rows)
	if len(res.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(res.Transactions))
	}
	if res.Report.HeaderEchoes != 2 || res.Report.Rejected() != 2 {
		t.Fatalf("report = %+v", res.Report)
	}
}

func TestCardinalityPreserved(t *testing.T) {
	// Beyond header echoes, no row is silently duplicated or dropped,
	// whatever its content.
	rows := []core.RawRow{
		{core.FieldDate: "01/03/2025", core.FieldCategory: "Contas", core.FieldAmount: "nonsense", core.FieldKind: "Saída"},
		{core.FieldDate: "02/03/2025", core.FieldCategory: "", core.FieldAmount: nil, core.FieldKind: "???"},
		{core.FieldDate: "", core.FieldCategory: "Lazer", core.FieldAmount: 12.5, core.FieldKind: "Entrada"},
	}
	res := run(t, rows)
	if len(res.Transactions) != len(rows) {
		t.Fatalf("got %d transactions, want %d", len(res.Transactions), len(rows))
	}
}

func TestCategoryCanonicalization(t *testing.T) {
	rows := []core.RawRow{
		{core.FieldDate: "01/03/2025", core.FieldCategory: "Laser", core.FieldAmount: "1,00", core.FieldKind: "Saída"},
		{core.FieldDate: "01/03/2025", core.FieldCategory: "Valentia", core.FieldAmount: "1,00", core.FieldKind: "Entrada"},
		{core.FieldDate: "01/03/2025", core.FieldCategory: "Lazer", core.FieldAmount: "1,00", core.FieldKind: "Saída"},
		{core.FieldDate: "01/03/2025", core.FieldCategory: "Mercado", core.FieldAmount: "1,00", core.FieldKind: "Saída"},
	}
	res := run(t, rows)
	want := []string{"Lazer", "Venda", "Lazer", "Mercado"}
	for i, tx := range res.Transactions {
		if tx.Category != want[i] {
			t.Errorf("row %d: category %q, want %q", i, tx.Category, want[i])
		}
	}
}

func TestAmountParsing(t *testing.T) {
	rows := []core.RawRow{
		{core.FieldDate: "01/03/2025", core.FieldCategory: "a", core.FieldAmount: "R$ 1.234,56", core.FieldKind: "Saída"},
		{core.FieldDate: "01/03/2025", core.FieldCategory: "b", core.FieldAmount: 99.9, core.FieldKind: "Saída"},
		{core.FieldDate: "01/03/2025", core.FieldCategory: "c", core.FieldAmount: "10.50", core.FieldKind: "Saída"},
		{core.FieldDate: "01/03/2025", core.FieldCategory: "d", core.FieldAmount: "not a number", core.FieldKind: "Saída"},
	}
	res := run(t, rows)
	wantCents := []int64{123456, 9990, 1050, 0}
	for i, tx := range res.Transactions {
		if tx.Amount.Cents != wantCents[i] {
			t.Errorf("row %d: %d cents, want %d", i, tx.Amount.Cents, wantCents[i])
		}
	}
	if res.Report.ZeroedAmounts != 1 {
		t.Fatalf("ZeroedAmounts = %d, want 1", res.Report.ZeroedAmounts)
	}
}

func TestUnknownKindKeptButCounted(t *testing.T) {
	rows := []core.RawRow{
		{core.FieldDate: "01/03/2025", core.FieldCategory: "a", core.FieldAmount: "1,00", core.FieldKind: "Transferência"},
	}
	res := run(t, rows)
	if len(res.Transactions) != 1 {
		t.Fatalf("row with unknown kind dropped")
	}
	if got := res.Transactions[0].Kind; got != "Transferência" {
		t.Fatalf("kind rewritten to %q", got)
	}
	if res.Report.UnknownKinds != 1 {
		t.Fatalf("UnknownKinds = %d", res.Report.UnknownKinds)
	}
}

// Feeding the normalized output back through the pipeline must reproduce it
// exactly: no hidden accumulation of state between runs.
func TestIdempotence(t *testing.T) {
	rows := []core.RawRow{
		{core.FieldDate: "01/03/2025", core.FieldCategory: "Laser", core.FieldDescription: "boliche", core.FieldAmount: "R$ 50,00", core.FieldKind: "Saída"},
		{core.FieldDate: "05/03/2025", core.FieldCategory: "Salário", core.FieldDescription: "", core.FieldAmount: "R$ 3.500,00", core.FieldKind: "Entrada"},
		{core.FieldDate: "07/03/2025", core.FieldCategory: "Contas", core.FieldDescription: "luz", core.FieldAmount: "quebrado", core.FieldKind: "Saída"},
	}
	first := run(t, rows)

	again := make([]core.RawRow, len(first.Transactions))
	for i, tx := range first.Transactions {
		again[i] = tx.Row()
	}
	second := run(t, again)

	if !reflect.DeepEqual(first.Transactions, second.Transactions) {
		t.Fatalf("pipeline not idempotent:\nfirst:  %+v\nsecond: %+v", first.Transactions, second.Transactions)
	}
}

// End-to-end scenario from the dashboard's history: a misspelled category,
// a locale amount string and a stray header row.
func TestEndToEndScenario(t *testing.T) {
	rows := []core.RawRow{
		{core.FieldDate: "01/03/2025", core.FieldCategory: "Laser", core.FieldAmount: "R$ 50,00", core.FieldKind: "Saída"},
		{core.FieldDate: "Data", core.FieldCategory: "x", core.FieldAmount: "", core.FieldKind: ""},
	}
	res := run(t, rows)
	if len(res.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(res.Transactions))
	}
	tx := res.Transactions[0]
	if tx.Category != "Lazer" {
		t.Errorf("category = %q, want Lazer", tx.Category)
	}
	if tx.Amount.Cents != 5000 {
		t.Errorf("amount = %d cents, want 5000", tx.Amount.Cents)
	}
	if tx.Kind != core.KindOutflow {
		t.Errorf("kind = %q", tx.Kind)
	}
}

func TestEmptyInput(t *testing.T) {
	res := run(t, nil)
	if len(res.Transactions) != 0 || res.Report != (Report{}) {
		t.Fatalf("empty input: %+v", res)
	}
}
