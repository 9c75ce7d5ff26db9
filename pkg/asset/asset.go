// Package asset resolves part identifiers into immutable templates.
//
// Three stores are provided: KernelStore builds the built-in templates
// procedurally with a geometry kernel, FileStore loads OBJ geometry and MTL
// materials from a filesystem, and Cache puts an LRU in front of either.
package asset

import (
	"context"
	"errors"

	"github.com/chazu/timberframe/pkg/part"
)

// ErrNotFound is returned when a store has nothing under an identifier.
var ErrNotFound = errors.New("asset not found")

// Store resolves an identifier to a template. Resolve may block on I/O and
// must honor ctx cancellation. Every call for the same identifier must
// yield a template with identical bounds.
type Store interface {
	Resolve(ctx context.Context, id part.Identifier) (*part.Template, error)
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(ctx context.Context, id part.Identifier) (*part.Template, error)

// Resolve calls f.
func (f StoreFunc) Resolve(ctx context.Context, id part.Identifier) (*part.Template, error) {
	return f(ctx, id)
}
