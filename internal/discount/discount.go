package discount

import (
	"context"
)

// Registry answers whether a discount code is known to the store.
type Registry interface {
	// Validate checks that a discount code is well formed and present in
	// at least one loaded code set.
	Validate(ctx context.Context, code string) error

	// Close releases memory held by the loaded code sets.
	Close() error
}

// CodeSet is an immutable collection of discount codes.
type CodeSet interface {
	// Contains reports whether the code exists in the set.
	Contains(code string) bool

	// Size returns the number of codes in the set.
	Size() int
}

// Loader reads a gzipped code listing and materialises it as a CodeSet.
type Loader interface {
	Load(ctx context.Context, path string) (CodeSet, error)
}
