package repository

import (
	"context"
	"sync"

	"pair-tasks/internal/model"
)

// MemoryStore keeps the document in process memory. Load and Save copy, so
// callers never share state with the store.
type MemoryStore struct {
	mu  sync.RWMutex
	doc *model.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{doc: model.NewDocument()}
}

func (s *MemoryStore) Load(_ context.Context) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	return nil
}
