package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"financas/internal/core"
	"financas/internal/records"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "financas.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sample() core.Transaction {
	return core.Transaction{
		Date:        "01/03/2025",
		Category:    "Lazer",
		Description: "cinema",
		Amount:      core.Money{Cents: 5000},
		Kind:        core.KindOutflow,
	}
}

func TestRowsUnknownPeriod(t *testing.T) {
	repo := testRepo(t)
	p, _ := core.NewPeriod(2025, 3)
	if _, err := repo.Rows(context.Background(), p); !errors.Is(err, records.ErrPeriodNotFound) {
		t.Fatalf("got %v, want ErrPeriodNotFound", err)
	}
}

func TestAppendRegistersPeriodAndStoresRow(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	p, _ := core.NewPeriod(2025, 3)

	id, err := repo.Append(ctx, p, sample())
	if err != nil {
		t.Fatal(err)
	}
	if id != "1" {
		t.Fatalf("id = %q", id)
	}

	rows, err := repo.Rows(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][core.FieldAmount] != 50.0 {
		t.Fatalf("amount = %v", rows[0][core.FieldAmount])
	}
	if rows[0][core.FieldKind] != "Saída" {
		t.Fatalf("kind = %v", rows[0][core.FieldKind])
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	repo := testRepo(t)
	p, _ := core.NewPeriod(2025, 3)
	bad := sample()
	bad.Kind = "Transferência"
	if _, err := repo.Append(context.Background(), p, bad); err == nil {
		t.Fatal("invalid transaction accepted")
	}
}

func TestPeriodsOrdering(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	feb, _ := core.NewPeriod(2025, 2)
	mar, _ := core.NewPeriod(2025, 3)

	for _, p := range []core.Period{feb, mar} {
		if _, err := repo.Append(ctx, p, sample()); err != nil {
			t.Fatal(err)
		}
	}
	got, err := repo.Periods(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != mar || got[1] != feb {
		t.Fatalf("periods = %v", got)
	}
}

func TestSyncLifecycle(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	p, _ := core.NewPeriod(2025, 3)

	if _, err := repo.Append(ctx, p, sample()); err != nil {
		t.Fatal(err)
	}

	pending, err := repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %v", pending)
	}

	tx, gotPeriod, err := repo.GetTransaction(ctx, pending[0])
	if err != nil {
		t.Fatal(err)
	}
	if gotPeriod != p || tx.Category != "Lazer" || tx.Amount.Cents != 5000 {
		t.Fatalf("tx = %+v period = %v", tx, gotPeriod)
	}

	if err := repo.MarkSynced(ctx, pending[0]); err != nil {
		t.Fatal(err)
	}
	pending, err = repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after sync = %v", pending)
	}
}

func TestMarkSyncErrorStopsRetries(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	p, _ := core.NewPeriod(2025, 3)

	if _, err := repo.Append(ctx, p, sample()); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkSyncError(ctx, 1); err != nil {
		t.Fatal(err)
	}
	pending, err := repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("errored row still pending: %v", pending)
	}
}
