// Package storage persists named processing results. Two backends are
// provided: a directory of JSON files and a Postgres table, selected by
// configuration at startup.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"clipstream/config"
	"clipstream/core"
)

// ErrNotFound is returned when no result exists under the given name.
var ErrNotFound = errors.New("result not found")

// Open picks the backend: Postgres when a connection URL is configured,
// otherwise the results folder on disk.
func Open(ctx context.Context, cfg *config.Config) (ResultStore, error) {
	if cfg.PostgresURL != "" {
		return NewPostgresResultStore(ctx, cfg.PostgresURL)
	}
	return NewFileResultStore(cfg.SavedResultsFolder)
}

// ResultStore saves and retrieves processing results by user-chosen
// name. Names are sanitized by the store; documents are opaque JSON.
type ResultStore interface {
	Save(ctx context.Context, name string, doc json.RawMessage) error
	Load(ctx context.Context, name string) (json.RawMessage, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// FileResultStore keeps one <name>.json file per result under a
// directory.
type FileResultStore struct {
	dir string
}

func NewFileResultStore(dir string) (*FileResultStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	return &FileResultStore{dir: dir}, nil
}

func (s *FileResultStore) path(name string) string {
	return filepath.Join(s.dir, core.SanitizeName(name)+".json")
}

func (s *FileResultStore) Save(_ context.Context, name string, doc json.RawMessage) error {
	var pretty any
	if err := json.Unmarshal(doc, &pretty); err != nil {
		return fmt.Errorf("invalid result document: %w", err)
	}
	return core.SaveJSON(s.path(name), pretty)
}

func (s *FileResultStore) Load(_ context.Context, name string) (json.RawMessage, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *FileResultStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileResultStore) Delete(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
