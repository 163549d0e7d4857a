// Package backup serializes the full domain snapshot to a textual format
// and restores it. Import validates the entire payload first and replaces
// the live collections wholesale only when it is clean.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pillarlog/pillarlog/internal/storage"
	"github.com/pillarlog/pillarlog/internal/validation"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat resolves an explicit format flag or, when empty, infers the
// format from the file extension. Defaults to JSON.
func ParseFormat(flag, path string) (Format, error) {
	switch strings.ToLower(flag) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "":
	default:
		return "", fmt.Errorf("unknown format %q (expected json or yaml)", flag)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return FormatJSON, nil
	}
}

// Export writes the store's snapshot to w.
func Export(store storage.Provider, w io.Writer, format Format) error {
	snap, err := store.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot store: %w", err)
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return nil
	}
}

// ExportFile writes the snapshot to path, creating parent directories.
func ExportFile(store storage.Provider, path string, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()
	return Export(store, f, format)
}

// Import parses, validates, and applies a snapshot read from r. Malformed
// or inconsistent payloads are rejected before any live state changes.
func Import(store storage.Provider, r io.Reader, format Format) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read import payload: %w", err)
	}

	var snap storage.Snapshot
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("malformed yaml payload: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("malformed json payload: %w", err)
		}
	}

	result := validation.New().ValidateSnapshot(snap)
	if result.HasIssues() {
		return fmt.Errorf("import rejected:\n%s", result.FormatReport())
	}

	if err := store.ReplaceAll(snap); err != nil {
		return fmt.Errorf("failed to apply snapshot: %w", err)
	}
	return nil
}

// ImportFile reads and applies a snapshot from path.
func ImportFile(store storage.Provider, path string, format Format) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()
	return Import(store, f, format)
}
