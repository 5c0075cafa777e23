package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"pair-tasks/internal/apperr"
	"pair-tasks/internal/model"
)

// FileStore keeps the document as one pretty-printed JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string { return s.path }

// Load reads the document. A missing file is an empty document.
func (s *FileStore) Load(ctx context.Context) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &apperr.StorageError{Op: "load", Err: err}
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.NewDocument(), nil
		}
		return nil, &apperr.StorageError{Op: "load", Err: fmt.Errorf("read %s: %w", s.path, err)}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return model.NewDocument(), nil
	}
	var doc model.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, &apperr.StorageError{Op: "load", Err: fmt.Errorf("decode %s: %w", s.path, err)}
	}
	return &doc, nil
}

// Save writes the document to a temp file next to the target and renames it
// into place, so the previous file stays valid until the new one is complete.
func (s *FileStore) Save(ctx context.Context, doc *model.Document) error {
	if err := ctx.Err(); err != nil {
		return &apperr.StorageError{Op: "save", Err: err}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return &apperr.StorageError{Op: "save", Err: fmt.Errorf("encode document: %w", err)}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &apperr.StorageError{Op: "save", Err: fmt.Errorf("create dir %q: %w", dir, err)}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &apperr.StorageError{Op: "save", Err: fmt.Errorf("create temp file: %w", err)}
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &apperr.StorageError{Op: "save", Err: err}
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		return cleanup(fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &apperr.StorageError{Op: "save", Err: fmt.Errorf("close temp file: %w", err)}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &apperr.StorageError{Op: "save", Err: fmt.Errorf("replace %s: %w", s.path, err)}
	}
	return nil
}
