// Package file implements the local filesystem source and sink helpers used
// by every stage: opening inputs, reporting missing upstream artifacts, and
// creating output files with their parent directories.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"dataco/internal/datasource"
	"dataco/internal/errs"
)

// Local is a filesystem data source bound to one path.
type Local struct {
	path  string
	stage string
}

var _ datasource.Source = (*Local)(nil)

// NewLocal returns a Local for path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Intermediate returns a Local for a file produced by an earlier stage. A
// missing file is reported as *errs.MissingIntermediateFileError naming stage.
func Intermediate(path, stage string) *Local { return &Local{path: path, stage: stage} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Open opens the configured path for reading.
//
// A context that is already done short-circuits without touching the
// filesystem. Filesystem errors are wrapped with the path; errors.Is works
// against the underlying cause (e.g. os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, l.wrap(err)
	}
	return f, nil
}

// ReadAll returns the whole file content.
func (l *Local) ReadAll(ctx context.Context) ([]byte, error) {
	rc, err := l.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}
	return b, nil
}

// Require checks that the file exists without opening it.
func (l *Local) Require() error {
	if _, err := os.Stat(l.path); err != nil {
		return l.wrap(err)
	}
	return nil
}

func (l *Local) wrap(err error) error {
	if l.stage != "" && errors.Is(err, fs.ErrNotExist) {
		return &errs.MissingIntermediateFileError{Path: l.path, Stage: l.stage, Err: err}
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return fmt.Errorf("open %s: %w", l.path, pe.Err)
	}
	return fmt.Errorf("open %s: %w", l.path, err)
}

// Create creates (or truncates) path for writing, creating parent
// directories as needed.
func Create(path string) (*os.File, error) {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// CopyFile copies src to dst unchanged, creating dst's parent directories.
// A missing src is reported as a missing intermediate file for stage.
func CopyFile(ctx context.Context, src, dst, stage string) error {
	in, err := Intermediate(src, stage).Open(ctx)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s -> %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}
