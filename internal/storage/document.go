// Package storage keeps the relay's durable collections in JSON documents.
//
// Every write reads the whole document, appends in memory and rewrites the
// whole document through a temp file and rename. A mutex per document
// serializes the read-modify-rewrite cycle inside one process. Nothing
// coordinates separate processes sharing a file, so only one server may
// point at a given path.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

type document[T any] struct {
	path string
	mu   sync.Mutex
}

func newDocument[T any](path string) (*document[T], error) {
	if path == "" {
		return nil, errors.New("storage path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	return &document[T]{path: path}, nil
}

func (d *document[T]) load() ([]T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadUnlocked()
}

func (d *document[T]) append(item T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	items, err := d.loadUnlocked()
	if err != nil {
		return err
	}
	items = append(items, item)
	return d.saveUnlocked(items)
}

// loadUnlocked treats a missing, empty or undecodable document as empty.
// Failing to open or read an existing document is an error.
func (d *document[T]) loadUnlocked() ([]T, error) {
	f, err := os.Open(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("open %s: %w", d.path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.path, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		// empty or malformed -> start fresh
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (d *document[T]) saveUnlocked(items []T) error {
	tmp, err := os.CreateTemp(filepath.Dir(d.path), "."+filepath.Base(d.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", d.path, err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", d.path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, d.path); err != nil {
		return fmt.Errorf("replace %s: %w", d.path, err)
	}

	success = true
	return nil
}
