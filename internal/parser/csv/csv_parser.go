// Package csv reads raw CSV exports whose text encoding is not known in
// advance. Candidate encodings are tried in order; the first one whose clean
// non-ASCII characters outnumber its substitutions wins, and the last
// candidate decodes leniently so a readable file never fails on a handful of
// stray bytes. Substituted bytes become U+FFFD and are counted.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"dataco/internal/datasource/file"
	"dataco/internal/errs"
	"dataco/internal/frame"
	"dataco/internal/parser"
)

// Options configures the CSV parser. Zero values select defaults.
type Options struct {
	// Encodings is the ordered candidate list. Defaults to DefaultEncodings.
	Encodings []string

	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each cell.
	TrimSpace bool

	// Logger receives per-row diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Parser reads CSV files according to Options. It is not concurrency-safe.
type Parser struct {
	opt Options
	log *zap.Logger
}

var _ parser.Parser = (*Parser)(nil)

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	if len(opt.Encodings) == 0 {
		opt.Encodings = DefaultEncodings
	}
	lg := opt.Logger
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Parser{opt: opt, log: lg}
}

// logLimit caps per-row skip diagnostics; the total is still counted.
const logLimit = 400

// ParseFile reads path and decodes it with the first workable encoding.
//
// Every failure (unopenable file, no candidate decodes, no header row) is
// returned as *errs.UnreadableInputError.
func (p *Parser) ParseFile(ctx context.Context, path string) (*parser.Result, error) {
	raw, err := file.NewLocal(path).ReadAll(ctx)
	if err != nil {
		return nil, &errs.UnreadableInputError{Path: path, Encodings: p.opt.Encodings, Err: err}
	}
	res, err := p.Parse(raw)
	if err != nil {
		return nil, &errs.UnreadableInputError{Path: path, Encodings: p.opt.Encodings, Err: err}
	}
	return res, nil
}

// Parse decodes raw bytes, trying each candidate encoding in order.
func (p *Parser) Parse(raw []byte) (*parser.Result, error) {
	var lastErr error
	for i, name := range p.opt.Encodings {
		enc, err := LookupEncoding(name)
		if err != nil {
			lastErr = err
			continue
		}
		strict := i < len(p.opt.Encodings)-1
		text, replaced, err := decode(raw, enc, strict)
		if err != nil {
			p.log.Debug("encoding rejected", zap.String("encoding", name), zap.Error(err))
			lastErr = fmt.Errorf("%s: %w", name, err)
			continue
		}
		f, skipped, err := p.parseText(text)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", name, err)
			continue
		}
		if replaced > 0 {
			p.log.Warn("undecodable bytes replaced",
				zap.String("encoding", name),
				zap.Int("replaced", replaced))
		}
		return &parser.Result{Frame: f, Encoding: name, Skipped: skipped, Replaced: replaced}, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no candidate encodings configured")
	}
	return nil, lastErr
}

// parseText parses decoded UTF-8 CSV text into a string frame. Empty cells
// become nil. Rows shorter than the header are padded with nil; longer rows
// are skipped and counted.
func (p *Parser) parseText(text []byte) (*frame.Frame, int, error) {
	cr := csv.NewReader(bytes.NewReader(text))
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, 0, errors.New("read csv header: empty input")
		}
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := StripHeaderBOM(append([]string(nil), h...))
	f := frame.New(headers)

	skipped := 0
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < logLimit {
				p.log.Warn("skipping row", zap.Int("line", line), zap.Error(err))
			}
			skipped++
			continue
		}
		if len(rec) > len(headers) {
			if skipped < logLimit {
				p.log.Warn("skipping row: too many fields",
					zap.Int("line", line), zap.Int("expected", len(headers)), zap.Int("got", len(rec)))
			}
			skipped++
			continue
		}

		row := make([]any, len(headers))
		for i, v := range rec {
			if p.opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			row[i] = emptyToNil(v)
		}
		f.Rows = append(f.Rows, row)
	}
	return f, skipped, nil
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
