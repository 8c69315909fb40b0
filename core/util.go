package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// NewRunID returns the identifier used for a run's output folder.
func NewRunID() string { return uuid.NewString() }

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// SanitizeName reduces an arbitrary result name to a filesystem-safe
// identifier. Empty or fully unsafe input yields "result".
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = unsafeName.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "result"
	}
	return name
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "write json error: %v\n", err)
	}
}

// SaveJSON writes v to path as indented JSON.
func SaveJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
