package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dataco/internal/errs"
)

// TestLocalOpen covers success, missing file, intermediate files, and a
// pre-canceled context.
func TestLocalOpen(t *testing.T) {
	t.Parallel()

	type tc struct {
		name            string
		prepare         func(t *testing.T) string
		stage           string
		makeCtx         func(t *testing.T) context.Context
		wantErrIs       error
		wantMissing     bool
		wantErrContains string
		wantContent     string
	}

	writeFile := func(t *testing.T, payload string) string {
		t.Helper()
		p := filepath.Join(t.TempDir(), "data.txt")
		if err := os.WriteFile(p, []byte(payload), 0o644); err != nil {
			t.Fatalf("write test file: %v", err)
		}
		return p
	}

	cases := []tc{
		{
			name:        "success_reads_content",
			prepare:     func(t *testing.T) string { return writeFile(t, "hello\nworld") },
			makeCtx:     func(t *testing.T) context.Context { return context.Background() },
			wantContent: "hello\nworld",
		},
		{
			name: "missing_file_errors_with_wrapping",
			prepare: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.txt")
			},
			makeCtx:         func(t *testing.T) context.Context { return context.Background() },
			wantErrIs:       os.ErrNotExist,
			wantErrContains: "open ",
		},
		{
			name: "missing_intermediate_is_typed",
			prepare: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "kpi_summary.csv")
			},
			stage:       "charts",
			makeCtx:     func(t *testing.T) context.Context { return context.Background() },
			wantErrIs:   os.ErrNotExist,
			wantMissing: true,
		},
		{
			name:    "pre_canceled_context_short_circuits",
			prepare: func(t *testing.T) string { return writeFile(t, "ignored") },
			makeCtx: func(t *testing.T) context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantErrIs: context.Canceled,
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			path := c.prepare(t)
			src := NewLocal(path)
			if c.stage != "" {
				src = Intermediate(path, c.stage)
			}
			rc, err := src.Open(c.makeCtx(t))

			if c.wantErrIs != nil {
				if err == nil {
					t.Fatalf("expected error %v, got nil", c.wantErrIs)
				}
				if !errors.Is(err, c.wantErrIs) {
					t.Fatalf("errors.Is(%v, %v) = false", err, c.wantErrIs)
				}
				var mf *errs.MissingIntermediateFileError
				if got := errors.As(err, &mf); got != c.wantMissing {
					t.Fatalf("errors.As(MissingIntermediateFileError) = %v; want %v", got, c.wantMissing)
				}
				if c.wantErrContains != "" && !strings.Contains(err.Error(), c.wantErrContains) {
					t.Fatalf("error %q does not contain substring %q", err, c.wantErrContains)
				}
				if rc != nil {
					_ = rc.Close()
					t.Fatalf("got non-nil ReadCloser on error: %T", rc)
				}
				return
			}

			if err != nil {
				t.Fatalf("Open() unexpected error: %v", err)
			}
			defer rc.Close()

			got, rerr := io.ReadAll(rc)
			if rerr != nil {
				t.Fatalf("reading: %v", rerr)
			}
			if string(got) != c.wantContent {
				t.Fatalf("content mismatch: got %q, want %q", string(got), c.wantContent)
			}
		})
	}
}

func TestCreateMakesParents(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "a", "b", "out.csv")
	f, err := Create(p)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.WriteString("x"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("stat: %v", err)
	}
}

func TestCopyFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	src := filepath.Join(dir, "in.csv")
	if err := os.WriteFile(src, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dst := filepath.Join(dir, "reports", "out.csv")
	if err := CopyFile(ctx, src, dst, "charts"); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(got) != "a,b\n1,2\n" {
		t.Fatalf("copied content = %q", got)
	}

	err = CopyFile(ctx, filepath.Join(dir, "nope.csv"), dst, "charts")
	var mf *errs.MissingIntermediateFileError
	if !errors.As(err, &mf) {
		t.Fatalf("CopyFile missing src: got %v; want MissingIntermediateFileError", err)
	}
}

func BenchmarkLocalOpen_Success(b *testing.B) {
	p := filepath.Join(b.TempDir(), "data.txt")
	if err := os.WriteFile(p, []byte("payload"), 0o644); err != nil {
		b.Fatalf("write test file: %v", err)
	}

	src := NewLocal(p)
	ctx := context.Background()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rc, err := src.Open(ctx)
		if err != nil {
			b.Fatal(err)
		}
		if err := rc.Close(); err != nil {
			b.Fatal(err)
		}
	}
}
