// Package worker mirrors records appended to the local database into the
// cloud sheet, so both spreadsheets converge on the same history.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/records"
	"financas/internal/storage"
)

type SyncWorker struct {
	repo     *storage.SQLiteRepository
	appender records.RowAppender
}

func NewSyncWorker(repo *storage.SQLiteRepository, appender records.RowAppender) *SyncWorker {
	return &SyncWorker{repo: repo, appender: appender}
}

// HandleSyncMessage pushes one record to the cloud sheet. A record the
// sheet will never accept is marked errored and the message is consumed;
// anything else fails the message so it gets requeued.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	return w.syncRecord(ctx, msg.RecordID)
}

// SyncPending scans the database for unsynced records and pushes them,
// covering messages lost while the worker was down. Returns how many
// records were synced.
func (w *SyncWorker) SyncPending(ctx context.Context, limit int) (int, error) {
	pending, err := w.repo.GetPendingSync(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list pending records: %w", err)
	}

	synced := 0
	for _, id := range pending {
		if err := w.syncRecord(ctx, id); err != nil {
			return synced, err
		}
		synced++
	}
	if synced > 0 {
		slog.InfoContext(ctx, "Pending scan complete", "synced", synced)
	}
	return synced, nil
}

func (w *SyncWorker) syncRecord(ctx context.Context, id int64) error {
	tx, period, err := w.repo.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("load record %d: %w", id, err)
	}

	ref, err := w.appender.Append(ctx, period, tx)
	if err != nil {
		if isPermanent(err) {
			slog.ErrorContext(ctx, "Record rejected by sheet, giving up",
				"id", id, "error", err)
			return w.repo.MarkSyncError(ctx, id)
		}
		return fmt.Errorf("append record %d to sheet: %w", id, err)
	}

	if err := w.repo.MarkSynced(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Record synced to sheet", "id", id, "ref", ref)
	return nil
}

// isPermanent matches failures that retrying cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidKind) ||
		errors.Is(err, core.ErrEmptyCategory)
}
