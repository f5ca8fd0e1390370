package books

import (
	"context"

	"github.com/spf13/cast"

	"github.com/go-barry/backbone/core"
	"github.com/go-barry/backbone/rest"
)

// Routes installs POST /book and the /book/:id resource on api. Records
// use the request context for store calls.
func Routes(api *rest.API, store Store) {
	api.Create("/book", func(ctx context.Context) (rest.Record, error) {
		return NewBook(ctx, store), nil
	})

	api.Resource("/book/:id", func(ctx context.Context, args ...string) (rest.Record, error) {
		id, err := cast.ToInt64E(args[0])
		if err != nil {
			return nil, core.ErrNotFound
		}
		d, err := store.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		return wrapBook(ctx, store, d), nil
	})
}
