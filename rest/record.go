package rest

import "context"

// Mapper converts a value into a string-keyed map of JSON-compatible values.
type Mapper interface {
	ToMap() map[string]any
}

// Record is an entity the controller can create, read, edit and delete.
// Implementations dispatch SetField by name, usually through a per-type
// field table.
type Record interface {
	Mapper

	SetField(name string, value any) error
	IsValid() bool
	Errors() map[string][]string
	Save() error
	Destroy() error
}

// Factory returns a fresh, unsaved record. ctx is the request context.
type Factory func(ctx context.Context) (Record, error)

// Lookup resolves a record from the path captures, passed in the order
// they appear in the route pattern. A nil record, or an error matching
// core.ErrNotFound, is a miss. ctx is the request context.
type Lookup func(ctx context.Context, args ...string) (Record, error)
