// Package filesystem writes rendered pages to disk.
package filesystem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
	"github.com/custodia-labs/pagegen/internal/logger"
)

// Ensure DocumentWriter implements the interface.
var _ driven.DocumentWriter = (*DocumentWriter)(nil)

// DocumentWriter writes documents as indented JSON files.
//
// Writes happen in two phases. Every document is first staged to a
// temporary file in the target directory; only when all are staged are
// they renamed into place. Files they replace are moved aside and restored
// if any rename fails, so a failed run leaves the directory as it was.
type DocumentWriter struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// NewDocumentWriter creates a filesystem document writer.
func NewDocumentWriter() *DocumentWriter {
	return &DocumentWriter{dirPerm: 0755, filePerm: 0644}
}

// staged is one document between the staging and commit phases.
type staged struct {
	tmp    string
	target string
	backup string
}

// WriteAll writes docs into dir and returns the written paths in order.
func (w *DocumentWriter) WriteAll(ctx context.Context, dir string, docs []driven.OutputDocument) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: output directory is required", domain.ErrOutput)
	}
	if err := validateNames(docs); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, w.dirPerm); err != nil {
		return nil, fmt.Errorf("%w: create output directory: %w", domain.ErrOutput, err)
	}

	files := make([]staged, 0, len(docs))
	cleanup := func() {
		for _, f := range files {
			_ = os.Remove(f.tmp)
		}
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			cleanup()
			return nil, err
		}
		data, err := Encode(doc.Document)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("%w: encode %s: %w", domain.ErrOutput, doc.Name, err)
		}
		tmp, err := w.stage(dir, doc.Name, data)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("%w: stage %s: %w", domain.ErrOutput, doc.Name, err)
		}
		files = append(files, staged{tmp: tmp, target: filepath.Join(dir, doc.Name)})
	}

	if err := ctx.Err(); err != nil {
		cleanup()
		return nil, err
	}
	if err := commit(files); err != nil {
		cleanup()
		return nil, fmt.Errorf("%w: %w", domain.ErrOutput, err)
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.target
		logger.Debug("Wrote %s", f.target)
	}
	return paths, nil
}

func (w *DocumentWriter) stage(dir, name string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, "."+name+"-*.tmp")
	if err != nil {
		return "", err
	}
	path := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(path, w.filePerm)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// commit moves existing targets aside, renames the staged files into place
// and drops the backups. On failure every step is undone.
func commit(files []staged) error {
	for i := range files {
		f := &files[i]
		if _, err := os.Lstat(f.target); err == nil {
			f.backup = f.tmp + ".bak"
			if err := os.Rename(f.target, f.backup); err != nil {
				f.backup = ""
				rollback(files[:i])
				return fmt.Errorf("move aside %s: %w", f.target, err)
			}
		}
	}

	for i := range files {
		if err := os.Rename(files[i].tmp, files[i].target); err != nil {
			rollback(files)
			return fmt.Errorf("write %s: %w", files[i].target, err)
		}
	}

	for _, f := range files {
		if f.backup != "" {
			_ = os.Remove(f.backup)
		}
	}
	return nil
}

// rollback removes committed targets and restores backups.
func rollback(files []staged) {
	for _, f := range files {
		if _, err := os.Stat(f.tmp); errors.Is(err, os.ErrNotExist) {
			// Already renamed into place
			_ = os.Remove(f.target)
		}
		if f.backup != "" {
			if err := os.Rename(f.backup, f.target); err != nil {
				logger.Warn("Could not restore %s: %v", f.target, err)
			}
		}
	}
}

func validateNames(docs []driven.OutputDocument) error {
	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		name := doc.Name
		if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
			return fmt.Errorf("%w: invalid output file name %q", domain.ErrOutput, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate output file name %q", domain.ErrOutput, name)
		}
		if doc.Document == nil {
			return fmt.Errorf("%w: %s has no document", domain.ErrOutput, name)
		}
		seen[name] = true
	}
	return nil
}

// Encode renders a document as 2-space indented UTF-8 JSON with a trailing
// newline. HTML characters and non-ASCII text are written unescaped.
func Encode(doc *domain.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
