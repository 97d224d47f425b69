package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotExist is returned by Writer.Read when no manifest exists for a tag
var ErrNotExist = errors.New("manifest does not exist")

// Writer persists manifests as <dir>/<tag>.json
type Writer struct {
	dir    string
	indent bool
}

// NewWriter creates a writer for the output directory dir.
// The directory must already exist.
func NewWriter(dir string, indent bool) *Writer {
	return &Writer{dir: dir, indent: indent}
}

// Path returns the manifest file path for tag
func (w *Writer) Path(tag string) string {
	return filepath.Join(w.dir, tag+".json")
}

// Write encodes m and atomically replaces the manifest file for tag
func (w *Writer) Write(tag string, m *Manifest) (string, error) {
	data, err := Encode(m, w.indent)
	if err != nil {
		return "", err
	}

	dst := w.Path(tag)
	if err := writeAtomic(dst, data); err != nil {
		return "", fmt.Errorf("failed to write manifest %s: %w", dst, err)
	}
	return dst, nil
}

// Read loads the existing manifest for tag
func (w *Writer) Read(tag string) (*Manifest, error) {
	data, err := os.ReadFile(w.Path(tag))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return Decode(data)
}

// writeAtomic writes data to a temp file in the destination directory and
// renames it over dst
func writeAtomic(dst string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(dst), ".manifestgen-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}() // cleanup on error

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Chmod(0644); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, dst)
}
