// Package datasource defines the minimal contract for opening pipeline
// inputs. Concrete sources live in subpackages (file).
package datasource

import (
	"context"
	"io"
)

// Source opens one input stream. Callers close the returned reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
