// Package parquet writes frames as Snappy-compressed Parquet files through
// Arrow record batches and reads them back into frames.
package parquet

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	pq "github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"dataco/internal/datasource/file"
	"dataco/internal/frame"
)

// Pool is the Go memory allocator used for Arrow buffers.
var Pool = memory.NewGoAllocator()

// batchRows bounds the rows held in one Arrow record (and row group).
const batchRows = 64 * 1024

// Schema maps frame column types to a nullable Arrow schema.
func Schema(f *frame.Frame) *arrow.Schema {
	fields := make([]arrow.Field, f.Width())
	for i, name := range f.Columns {
		fields[i] = arrow.Field{Name: name, Type: arrowType(f.Types[i]), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(t frame.Type) arrow.DataType {
	switch t {
	case frame.Int:
		return arrow.PrimitiveTypes.Int64
	case frame.Float:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

// WriteFile writes f to path, creating parent directories.
func WriteFile(path string, f *frame.Frame) error {
	out, err := file.Create(path)
	if err != nil {
		return err
	}
	// pqarrow closes its sink when it is an io.Closer; keep the file handle
	// ours by writing through a buffer.
	bw := bufio.NewWriterSize(out, 1<<16)
	if err := write(bw, f); err != nil {
		out.Close()
		return fmt.Errorf("parquet: write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("parquet: flush %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("parquet: close %s: %w", path, err)
	}
	return nil
}

func write(w *bufio.Writer, f *frame.Frame) error {
	schema := Schema(f)
	props := pq.NewWriterProperties(
		pq.WithCompression(compress.Codecs.Snappy),
		pq.WithAllocator(Pool),
	)
	fw, err := pqarrow.NewFileWriter(schema, w, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return err
	}

	b := array.NewRecordBuilder(Pool, schema)
	defer b.Release()

	// An empty frame still writes one empty batch so the schema is recorded.
	for start := 0; ; start += batchRows {
		end := min(start+batchRows, f.Len())
		for _, row := range f.Rows[start:end] {
			for i, v := range row {
				if err := appendCell(b.Field(i), f.Types[i], v); err != nil {
					fw.Close()
					return fmt.Errorf("column %q: %w", f.Columns[i], err)
				}
			}
		}
		rec := b.NewRecord()
		err := fw.Write(rec)
		rec.Release()
		if err != nil {
			fw.Close()
			return err
		}
		if end == f.Len() {
			break
		}
	}
	return fw.Close()
}

func appendCell(fb array.Builder, t frame.Type, v any) error {
	if v == nil {
		fb.AppendNull()
		return nil
	}
	switch t {
	case frame.Int:
		i, ok := frame.AsInt(v)
		if !ok {
			return fmt.Errorf("value %v is not an integer", v)
		}
		fb.(*array.Int64Builder).Append(i)
	case frame.Float:
		x, ok := frame.AsFloat(v)
		if !ok {
			fb.AppendNull()
			return nil
		}
		fb.(*array.Float64Builder).Append(x)
	default:
		fb.(*array.StringBuilder).Append(frame.Format(v))
	}
	return nil
}

// ReadFile loads a Parquet file into a frame. A missing file is reported as a
// missing intermediate for stage.
func ReadFile(ctx context.Context, path, stage string) (*frame.Frame, error) {
	if err := file.Intermediate(path, stage).Require(); err != nil {
		return nil, err
	}
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parquet: open %s: %w", path, err)
	}
	defer in.Close()

	tbl, err := pqarrow.ReadTable(ctx, in, pq.NewReaderProperties(Pool), pqarrow.ArrowReadProperties{}, Pool)
	if err != nil {
		return nil, fmt.Errorf("parquet: read %s: %w", path, err)
	}
	defer tbl.Release()

	return fromTable(tbl)
}

func fromTable(tbl arrow.Table) (*frame.Frame, error) {
	schema := tbl.Schema()
	cols := make([]string, schema.NumFields())
	for i, fd := range schema.Fields() {
		cols[i] = fd.Name
	}
	f := frame.New(cols)
	n := int(tbl.NumRows())
	f.Rows = make([][]any, n)
	for r := range f.Rows {
		f.Rows[r] = make([]any, len(cols))
	}

	for c := 0; c < len(cols); c++ {
		switch schema.Field(c).Type.ID() {
		case arrow.INT64, arrow.INT32, arrow.INT16, arrow.INT8:
			f.Types[c] = frame.Int
		case arrow.FLOAT64, arrow.FLOAT32:
			f.Types[c] = frame.Float
		default:
			f.Types[c] = frame.String
		}
		r := 0
		for _, chunk := range tbl.Column(c).Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				f.Rows[r][c] = cellAt(chunk, i)
				r++
			}
		}
		if r != n {
			return nil, fmt.Errorf("parquet: column %q has %d values, want %d", cols[c], r, n)
		}
	}
	return f, nil
}

func cellAt(a arrow.Array, i int) any {
	if a.IsNull(i) {
		return nil
	}
	switch x := a.(type) {
	case *array.Int64:
		return x.Value(i)
	case *array.Int32:
		return int64(x.Value(i))
	case *array.Int16:
		return int64(x.Value(i))
	case *array.Int8:
		return int64(x.Value(i))
	case *array.Float64:
		return x.Value(i)
	case *array.Float32:
		return float64(x.Value(i))
	case *array.String:
		return x.Value(i)
	case *array.LargeString:
		return x.Value(i)
	}
	return a.ValueStr(i)
}
