// Package transformer defines the frame-to-frame transformation contract and
// an ordered Chain of transformers. Concrete steps live in builtin.
package transformer

import (
	"fmt"

	"dataco/internal/frame"
)

// Transformer rewrites a frame. Implementations may mutate the input in place
// and return it, or return a new frame.
type Transformer interface {
	Name() string
	Apply(f *frame.Frame) (*frame.Frame, error)
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every step in order, feeding each output into the next step.
// The first failing step aborts the chain.
func (c Chain) Apply(in *frame.Frame) (*frame.Frame, error) {
	out := in
	for _, t := range c {
		next, err := t.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("transform %s: %w", t.Name(), err)
		}
		out = next
	}
	return out, nil
}
