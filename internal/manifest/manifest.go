// Package manifest records what one build run read and wrote.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"dataco/internal/datasource/file"
)

// Shape is a row/column count.
type Shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// Input describes the raw file that was read.
type Input struct {
	Path        string `json:"path"`
	Encoding    string `json:"encoding"`
	Bytes       int64  `json:"bytes"`
	Fingerprint string `json:"fingerprint"` // xxh3-64, hex
}

// Manifest is the JSON document written at the end of a build.
type Manifest struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Engine        string    `json:"engine"`
	Input         Input     `json:"input"`
	Raw           Shape     `json:"raw"`
	SkippedRows   int       `json:"skipped_rows"`
	ReplacedBytes int       `json:"replaced_bytes"`
	Clean         Shape     `json:"clean"`
	LoadedRows    int64     `json:"loaded_rows"`
	Outputs       []string  `json:"outputs"`
}

// New starts a manifest with a fresh run id.
func New(engine string, now time.Time) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		StartedAt: now.UTC(),
		Engine:    engine,
	}
}

// Fingerprint streams path through xxh3 and returns the hex digest and the
// byte count.
func Fingerprint(ctx context.Context, path string) (string, int64, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return "", 0, err
	}
	defer rc.Close()

	h := xxh3.New()
	n, err := io.Copy(h, rc)
	if err != nil {
		return "", 0, fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), n, nil
}

// WriteFile stamps FinishedAt and writes m as indented JSON, replacing any
// previous manifest.
func (m *Manifest) WriteFile(path string, now time.Time) error {
	m.FinishedAt = now.UTC()
	out, err := file.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		out.Close()
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a manifest written by WriteFile.
func ReadFile(ctx context.Context, path string) (*Manifest, error) {
	b, err := file.NewLocal(path).ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return &m, nil
}
