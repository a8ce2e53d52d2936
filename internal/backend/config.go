package backend

import (
	"fmt"
	"time"

	appconfig "financas/internal/config"
)

// Config holds what the factory needs to build a backend.
type Config struct {
	Type Type

	// xlsx
	XLSXPath string

	// sqlite
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	SheetsTimeout            time.Duration
}

// FromAppConfig maps the application config onto backend config.
func FromAppConfig(cfg *appconfig.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := Type(cfg.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", cfg.DataBackend)
	}

	return Config{
		Type: backendType,

		XLSXPath: cfg.XLSXPath,

		SQLiteDBPath: cfg.SQLiteDBPath,
		AMQPURL:      cfg.AMQPURL,
		AMQPExchange: cfg.AMQPExchange,
		AMQPQueue:    cfg.AMQPQueue,

		GoogleSpreadsheetID:      cfg.GoogleSpreadsheetID,
		GoogleServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: cfg.GoogleServiceAccountFile,
		SheetsTimeout:            cfg.SheetsTimeout,
	}, nil
}

// Validate checks the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case XLSXBackend:
		if c.XLSXPath == "" {
			return fmt.Errorf("workbook path is required for the xlsx backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("database path is required for the sqlite backend")
		}
		// AMQP is optional; without it local writes simply stay local.
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("spreadsheet ID is required for the sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return fmt.Errorf("service account credentials are required for the sheets backend")
		}
	}
	return nil
}
