package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pair-tasks/internal/metrics"
	"pair-tasks/internal/model"
	"pair-tasks/internal/repository"
)

// Documents serialises read-modify-write cycles on one store inside this
// process. Two processes sharing a file still race; last writer wins.
type Documents struct {
	store  repository.DocumentStore
	logger *slog.Logger
	mu     sync.Mutex
}

func NewDocuments(store repository.DocumentStore, logger *slog.Logger) *Documents {
	if logger == nil {
		logger = slog.Default()
	}
	return &Documents{store: store, logger: logger}
}

// Read returns the current document. When the store cannot be read it logs
// the failure and returns an empty document.
func (d *Documents) Read(ctx context.Context) *model.Document {
	doc, err := d.store.Load(ctx)
	if err != nil {
		metrics.StorageErrors.WithLabelValues("load").Inc()
		d.logger.Warn("document unreadable, using empty document", "error", err)
		return model.NewDocument()
	}
	return doc
}

// Update loads the document, applies fn and saves the result. Nothing is
// saved when fn fails. A load failure aborts the update so that unreadable
// data is never replaced by an empty document.
func (d *Documents) Update(ctx context.Context, fn func(doc *model.Document) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, err := d.store.Load(ctx)
	if err != nil {
		metrics.StorageErrors.WithLabelValues("load").Inc()
		return fmt.Errorf("load document: %w", err)
	}
	if err := fn(doc); err != nil {
		return err
	}
	if err := d.store.Save(ctx, doc); err != nil {
		metrics.StorageErrors.WithLabelValues("save").Inc()
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Export returns the stored document without falling back, for dumps.
func (d *Documents) Export(ctx context.Context) (*model.Document, error) {
	return d.store.Load(ctx)
}

// Clock supplies "now" and the calendar used to decide what "today" is.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// SystemClock uses the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{Now: time.Now, Location: loc}
}

// Today returns midnight of the current day.
func (c Clock) Today() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return model.StartOfDay(c.now().In(loc))
}

func (c Clock) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
