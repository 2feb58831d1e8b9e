// Package csvout writes frames as comma-delimited text with a header row and
// reads them back. Nulls are written as empty cells.
package csvout

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"dataco/internal/datasource/file"
	"dataco/internal/frame"
)

// Write encodes f to w: header row first, then one record per row.
func Write(w io.Writer, f *frame.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Columns); err != nil {
		return fmt.Errorf("csvout: write header: %w", err)
	}
	rec := make([]string, f.Width())
	for r, row := range f.Rows {
		for i, v := range row {
			rec[i] = frame.Format(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("csvout: write row %d: %w", r, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csvout: flush: %w", err)
	}
	return nil
}

// WriteFile writes f to path, creating parent directories.
func WriteFile(path string, f *frame.Frame) error {
	out, err := file.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(out, 1<<16)
	if err := Write(bw, f); err != nil {
		out.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("csvout: flush %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("csvout: close %s: %w", path, err)
	}
	return nil
}

// Read decodes CSV text with a header row into a frame. When types is
// non-nil it must have one entry per column and cells are converted
// accordingly; otherwise column types are detected. Empty cells are nil.
func Read(r io.Reader, types []frame.Type) (*frame.Frame, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("csvout: read header: %w", err)
	}
	f := frame.New(header)
	var pins map[string]frame.Type
	if types != nil {
		if len(types) != len(header) {
			return nil, fmt.Errorf("csvout: %d types for %d columns", len(types), len(header))
		}
		pins = make(map[string]frame.Type, len(types))
		for i, t := range types {
			pins[header[i]] = t
		}
	}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvout: line %d: %w", line, err)
		}
		row := make([]any, len(rec))
		for i, s := range rec {
			if s != "" {
				row[i] = s
			}
		}
		f.Rows = append(f.Rows, row)
	}
	if err := frame.Detect(f, pins, nil); err != nil {
		return nil, fmt.Errorf("csvout: %w", err)
	}
	return f, nil
}

// ReadFile reads path as written by WriteFile. A missing file is reported as
// a missing intermediate for stage.
func ReadFile(ctx context.Context, path, stage string, types []frame.Type) (*frame.Frame, error) {
	rc, err := file.Intermediate(path, stage).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	f, err := Read(bufio.NewReader(rc), types)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
