package google

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/api/googleapi"

	"financas/internal/core"
)

func TestRowsToRaw(t *testing.T) {
	values := [][]any{
		{"Data", "Categoria", "Descrição", "Valor", "Tipo"},
		{"01/03/2025", "Lazer", "cinema", "R$ 50,00", "Saída"},
		{"02/03/2025", "Salário", "", 3500.0, "Entrada"},
	}
	rows := rowsToRaw(values)
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0][core.FieldDate] != "01/03/2025" || rows[0][core.FieldAmount] != "R$ 50,00" {
		t.Fatalf("row 0 = %v", rows[0])
	}
	if rows[1][core.FieldAmount] != 3500.0 {
		t.Fatalf("numeric cell mangled: %v", rows[1][core.FieldAmount])
	}
}

func TestRowsToRawShortRows(t *testing.T) {
	values := [][]any{
		{"Data", "Categoria", "Descrição", "Valor", "Tipo"},
		{"01/03/2025", "Contas"},
	}
	rows := rowsToRaw(values)
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0][core.FieldAmount] != "" || rows[0][core.FieldKind] != "" {
		t.Fatalf("missing cells not padded: %v", rows[0])
	}
}

func TestRowsToRawHeaderOnly(t *testing.T) {
	values := [][]any{{"Data", "Categoria", "Descrição", "Valor", "Tipo"}}
	if rows := rowsToRaw(values); len(rows) != 0 {
		t.Fatalf("rows = %v", rows)
	}
	if rows := rowsToRaw(nil); len(rows) != 0 {
		t.Fatalf("rows = %v", rows)
	}
}

func TestIsMissingSheet(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&googleapi.Error{Code: 404}, true},
		{&googleapi.Error{Code: 400, Message: "Unable to parse range: Março 2026!A:E"}, true},
		{&googleapi.Error{Code: 400, Message: "Invalid value"}, false},
		{&googleapi.Error{Code: 500}, false},
		{errors.New("plain"), false},
	}
	for _, tt := range tests {
		if got := isMissingSheet(tt.err); got != tt.want {
			t.Errorf("isMissingSheet(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.DeadlineExceeded, true},
		{&googleapi.Error{Code: 503}, true},
		{&googleapi.Error{Code: 429}, true},
		{&googleapi.Error{Code: 404}, false},
		{errors.New("plain"), false},
	}
	for _, tt := range tests {
		if got := isTransient(tt.err); got != tt.want {
			t.Errorf("isTransient(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("missing spreadsheet ID accepted")
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(context.Background(), Config{SpreadsheetID: "sheet-id"}); err == nil {
		t.Fatal("missing credentials accepted")
	}
}
