// Package books is a small record type backed by memory, SQLite or
// PostgreSQL, served through the rest package.
package books

import (
	"context"
	"fmt"

	"github.com/go-barry/backbone/core"
)

// Data is the stored form of a book.
type Data struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Store persists books. Load returns an error matching core.ErrNotFound
// for unknown ids.
type Store interface {
	// Save inserts d, assigning d.ID when it is zero, or replaces the
	// book with the same id.
	Save(ctx context.Context, d *Data) error
	Load(ctx context.Context, id int64) (*Data, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Data, error)
	Close() error
}

func notFound(id int64) error {
	return fmt.Errorf("book %d: %w", id, core.ErrNotFound)
}

// Open returns the store named by config.Type: memory (the default),
// sqlite or postgres. ctx bounds connecting and creating the table.
func Open(ctx context.Context, config core.StorageConfig) (Store, error) {
	switch config.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite", "sqlite3":
		path := config.Path
		if path == "" {
			path = core.DefaultConfig().Storage.Path
		}
		return NewSQLiteStore(ctx, path)
	case "postgres", "postgresql":
		if config.URL == "" {
			return nil, fmt.Errorf("books: postgres storage needs a url")
		}
		return NewPostgresStore(ctx, config.URL)
	default:
		return nil, fmt.Errorf("books: unknown storage type %q", config.Type)
	}
}
