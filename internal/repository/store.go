package repository

import (
	"context"
	"fmt"
	"log/slog"

	"pair-tasks/internal/config"
	"pair-tasks/internal/model"
)

// DocumentStore loads and saves the whole document. Save replaces the stored
// state entirely or not at all.
type DocumentStore interface {
	Load(ctx context.Context) (*model.Document, error)
	Save(ctx context.Context, doc *model.Document) error
}

// Open builds the store selected by cfg.StoreDriver. The returned close
// function releases any underlying handle.
func Open(cfg config.Config, logger *slog.Logger) (DocumentStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.StoreDriver {
	case config.DriverJSON:
		return NewFileStore(cfg.DataPath), noop, nil
	case config.DriverMemory:
		return NewMemoryStore(), noop, nil
	case config.DriverSQLite:
		db, err := NewDB(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := noop
		if sqlDB, err := db.DB(); err == nil {
			closeFn = sqlDB.Close
		}
		return NewSQLStore(db), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
