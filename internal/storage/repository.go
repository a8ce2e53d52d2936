// Package storage keeps records in a local SQLite database. It doubles as
// the source of truth for the sync worker: rows appended here are marked
// pending until they land in the cloud sheet.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	_ "modernc.org/sqlite"

	"financas/internal/core"
	"financas/internal/records"
)

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ records.RowSource    = (*SQLiteRepository)(nil)
	_ records.RowAppender  = (*SQLiteRepository)(nil)
	_ records.PeriodLister = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Rows implements records.RowSource. A period nobody ever wrote to is
// absent, which is distinct from a registered period with no rows.
func (r *SQLiteRepository) Rows(ctx context.Context, p core.Period) ([]core.RawRow, error) {
	label := p.Label()

	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM periods WHERE label = ?`, label).Scan(&one)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", records.ErrPeriodNotFound, label)
	}
	if err != nil {
		return nil, fmt.Errorf("check period: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT date, category, description, amount_cents, kind
		FROM transactions
		WHERE period_label = ?
		ORDER BY id`, label)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.RawRow, 0)
	for rows.Next() {
		var (
			date, category, description, kind string
			cents                             int64
		)
		if err := rows.Scan(&date, &category, &description, &cents, &kind); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, core.RawRow{
			core.FieldDate:        date,
			core.FieldCategory:    category,
			core.FieldDescription: description,
			core.FieldAmount:      core.Money{Cents: cents}.Float(),
			core.FieldKind:        kind,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Append implements records.RowAppender, registering the period on first
// write and leaving the row pending for the sync worker.
func (r *SQLiteRepository) Append(ctx context.Context, p core.Period, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	label := p.Label()

	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO periods (label) VALUES (?)`, label); err != nil {
		return "", fmt.Errorf("register period: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (period_label, date, category, description, amount_cents, kind)
		VALUES (?, ?, ?, ?, ?, ?)`,
		label, tx.Date, tx.Category, tx.Description, tx.Amount.Cents, string(tx.Kind))
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", id,
		"period", label,
		"category", tx.Category,
		"amount_cents", tx.Amount.Cents)

	return strconv.FormatInt(id, 10), nil
}

// Periods implements records.PeriodLister, newest first.
func (r *SQLiteRepository) Periods(ctx context.Context) ([]core.Period, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT label FROM periods`)
	if err != nil {
		return nil, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	var out []core.Period
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		p, err := core.ParsePeriodLabel(label)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unparsable period label", "label", label)
			continue
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods: %w", err)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

// GetPendingSync returns the IDs of unsynced transactions, oldest first.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM transactions
		WHERE synced = 0 AND sync_error = 0
		ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending sync: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GetTransaction fetches one stored transaction with its period.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, core.Period, error) {
	var (
		tx    core.Transaction
		label string
		cents int64
		kind  string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT period_label, date, category, description, amount_cents, kind
		FROM transactions WHERE id = ?`, id).
		Scan(&label, &tx.Date, &tx.Category, &tx.Description, &cents, &kind)
	if err != nil {
		return core.Transaction{}, core.Period{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	tx.Amount = core.Money{Cents: cents}
	tx.Kind = core.Kind(kind)

	p, err := core.ParsePeriodLabel(label)
	if err != nil {
		return core.Transaction{}, core.Period{}, fmt.Errorf("transaction %d has bad period label %q: %w", id, label, err)
	}
	return tx, p, nil
}

// MarkSynced records that a transaction landed in the cloud sheet.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE transactions SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	slog.InfoContext(ctx, "Record marked as synced", "id", id)
	return nil
}

// MarkSyncError flags a transaction whose sync keeps failing so the queue
// stops retrying it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE transactions SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	slog.WarnContext(ctx, "Record marked with sync error", "id", id)
	return nil
}
