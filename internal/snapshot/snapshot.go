// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snapshot persists GraphDocuments as flat files: indented JSON
// (the primary artifact), YAML, or a single SQLite file. Every write
// replaces the previous snapshot; nothing is updated in place.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-graph/pkg/types"
)

// TopBaseName returns the file stem for a one-shot build of id.
func TopBaseName(id string) string {
	return "top_citations_kg_" + safeID(id)
}

// RecursiveBaseName returns the file stem for a recursive build of id.
func RecursiveBaseName(id string, topK, depth int) string {
	return fmt.Sprintf("recursive_kg_%s_k%d_d%d", safeID(id), topK, depth)
}

// safeID makes old-style arXiv ids such as "hep-th/9901001" usable in a
// file name.
func safeID(id string) string {
	return strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(strings.TrimSpace(id))
}

// Extension returns the file extension used for format.
func Extension(format types.SnapshotFormat) string {
	switch format {
	case types.FormatYAML:
		return ".yaml"
	case types.FormatSQLite:
		return ".db"
	default:
		return ".json"
	}
}

// Write stores doc under dir/base in each requested format and returns the
// written paths in the same order. An empty format list writes JSON.
func Write(ctx context.Context, dir, base string, formats []types.SnapshotFormat, doc *types.GraphDocument) ([]string, error) {
	if len(formats) == 0 {
		formats = []types.SnapshotFormat{types.FormatJSON}
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var paths []string
	for _, f := range formats {
		path := filepath.Join(dir, base+Extension(f))
		var err error
		switch f {
		case types.FormatJSON:
			err = WriteJSON(path, doc)
		case types.FormatYAML:
			err = WriteYAML(path, doc)
		case types.FormatSQLite:
			err = WriteSQLite(ctx, path, doc)
		default:
			err = fmt.Errorf("unknown snapshot format %q", f)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// MarshalJSON encodes doc as two-space indented JSON without HTML escaping,
// so titles keep their original characters.
func MarshalJSON(doc *types.GraphDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteJSON writes doc to path as indented JSON.
func WriteJSON(path string, doc *types.GraphDocument) error {
	data, err := MarshalJSON(doc)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// WriteYAML writes doc to path as YAML.
func WriteYAML(path string, doc *types.GraphDocument) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeFileAtomic(path, data)
}

// Load reads a snapshot written by Write, picking the decoder from the
// file extension.
func Load(ctx context.Context, path string) (*types.GraphDocument, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(ctx, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	var doc types.GraphDocument
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing YAML %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing JSON %s: %w", path, err)
		}
	}
	return &doc, nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming snapshot into place: %w", err)
	}
	return nil
}

func optInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func parseOptInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
