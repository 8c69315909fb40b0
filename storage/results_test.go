package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func newFileStore(t *testing.T) *FileResultStore {
	t.Helper()
	s, err := NewFileResultStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()
	doc := json.RawMessage(`{"clips": 3, "summary": {"key_phrases": ["weather"]}}`)

	if err := s.Save(ctx, "monday run", doc); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, "monday run")
	if err != nil {
		t.Fatal(err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(got, &parsed); err != nil {
		t.Fatalf("stored document is not valid JSON: %v", err)
	}
	if parsed["clips"].(float64) != 3 {
		t.Errorf("clips = %v, want 3", parsed["clips"])
	}
}

func TestFileStoreSanitizesNames(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()
	doc := json.RawMessage(`{"ok": true}`)

	if err := s.Save(ctx, "../../../etc/passwd", doc); err != nil {
		t.Fatal(err)
	}
	names, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 {
		t.Fatalf("names = %v, want exactly one", names)
	}
	for _, r := range names[0] {
		if r == '/' {
			t.Fatalf("unsanitized name stored: %q", names[0])
		}
	}
}

func TestFileStoreListSorted(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()
	doc := json.RawMessage(`{}`)
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		if err := s.Save(ctx, name, doc); err != nil {
			t.Fatal(err)
		}
	}
	names, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"alpha", "bravo", "charlie"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names = %v, want %v", names, want)
		}
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "run", json.RawMessage(`{"v": 1}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "run", json.RawMessage(`{"v": 2}`)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, "run")
	if err != nil {
		t.Fatal(err)
	}
	var parsed map[string]float64
	if err := json.Unmarshal(got, &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed["v"] != 2 {
		t.Errorf("v = %v, want 2 after overwrite", parsed["v"])
	}
}

func TestFileStoreDelete(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "gone", json.RawMessage(`{}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "gone"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after delete: %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: %v, want ErrNotFound", err)
	}
}

func TestFileStoreRejectsInvalidJSON(t *testing.T) {
	s := newFileStore(t)
	if err := s.Save(context.Background(), "bad", json.RawMessage(`{not json`)); err == nil {
		t.Error("want error for invalid document")
	}
}
