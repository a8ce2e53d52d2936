package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/records/google"
	"financas/internal/records/memory"
	"financas/internal/records/xlsxfile"
	"financas/internal/storage"
)

// DefaultFactory builds backends from configuration.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewDefaultFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate backend config: %w", err)
	}

	switch cfg.Type {
	case MemoryBackend:
		return f.createMemory()
	case XLSXBackend:
		return f.createXLSX(cfg)
	case SQLiteBackend:
		return f.createSQLite(ctx, cfg)
	case SheetsBackend:
		return f.createSheets(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

func (f *DefaultFactory) createMemory() (*Result, error) {
	f.logger.Info("Using in-memory record store")
	return &Result{
		Backend: memory.New(),
		Cleanup: func() error { return nil },
	}, nil
}

func (f *DefaultFactory) createXLSX(cfg Config) (*Result, error) {
	f.logger.Info("Using xlsx workbook record store", "path", cfg.XLSXPath)
	return &Result{
		Backend: xlsxfile.New(cfg.XLSXPath),
		Cleanup: func() error { return nil },
	}, nil
}

func (f *DefaultFactory) createSQLite(ctx context.Context, cfg Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("create sqlite repository: %w", err)
	}

	if cfg.AMQPURL == "" {
		f.logger.Info("Using sqlite record store without sync publishing", "path", cfg.SQLiteDBPath)
		return &Result{
			Backend: repo,
			Cleanup: repo.Close,
		}, nil
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("create AMQP client: %w", err)
	}

	f.logger.Info("Using sqlite record store with sync publishing",
		"path", cfg.SQLiteDBPath,
		"queue", cfg.AMQPQueue)

	return &Result{
		Backend: &syncingStore{repo: repo, publisher: client, logger: f.logger},
		Cleanup: func() error {
			clientErr := client.Close()
			repoErr := repo.Close()
			if clientErr != nil {
				return clientErr
			}
			return repoErr
		},
	}, nil
}

func (f *DefaultFactory) createSheets(ctx context.Context, cfg Config) (*Result, error) {
	client, err := google.New(ctx, google.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		Timeout:            cfg.SheetsTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	f.logger.Info("Using Google Sheets record store", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return &Result{
		Backend: client,
		Cleanup: func() error { return nil },
	}, nil
}

// syncingStore wraps the sqlite repository and announces each append on the
// sync queue. A failed publish is logged, not returned: the local write
// already happened and the periodic sweep will pick the row up anyway.
type syncingStore struct {
	repo      *storage.SQLiteRepository
	publisher *amqp.Client
	logger    *slog.Logger
}

var _ Backend = (*syncingStore)(nil)

func (s *syncingStore) Rows(ctx context.Context, p core.Period) ([]core.RawRow, error) {
	return s.repo.Rows(ctx, p)
}

func (s *syncingStore) Periods(ctx context.Context) ([]core.Period, error) {
	return s.repo.Periods(ctx)
}

func (s *syncingStore) Append(ctx context.Context, p core.Period, tx core.Transaction) (string, error) {
	ref, err := s.repo.Append(ctx, p, tx)
	if err != nil {
		return "", err
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		s.logger.ErrorContext(ctx, "Unexpected record reference, skipping sync publish", "ref", ref)
		return ref, nil
	}

	if err := s.publisher.PublishRecordSync(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish record sync message",
			"error", err,
			"record_id", id)
	}
	return ref, nil
}
