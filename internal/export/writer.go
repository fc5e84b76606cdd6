// Package export persists table documents as per-database JSON artifacts.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/snowmapper/snowmapper/internal/schema"
)

// OutputError reports a filesystem failure while writing an artifact.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("failed to write output %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// Writer writes one pretty-printed JSON file per database under a fixed
// output directory, overwriting any previous artifact.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Path returns the artifact path for a database.
func (w *Writer) Path(database string) string {
	return filepath.Join(w.dir, database+".json")
}

// Write serializes the table documents and replaces the database's artifact.
// The document is written to a temporary file in the output directory and
// renamed into place, so a crash mid-write never leaves a truncated
// artifact at the final path.
func (w *Writer) Write(database string, tables []schema.TableInfo) error {
	path := w.Path(database)

	if tables == nil {
		tables = []schema.TableInfo{}
	}
	data, err := json.MarshalIndent(tables, "", "  ")
	if err != nil {
		return &OutputError{Path: path, Err: err}
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return &OutputError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(w.dir, database+"-*.json.tmp")
	if err != nil {
		return &OutputError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &OutputError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &OutputError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return &OutputError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &OutputError{Path: path, Err: err}
	}
	return nil
}
