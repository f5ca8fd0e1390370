package books

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Book is the rest.Record for a stored book.
type Book struct {
	Data

	ctx    context.Context
	store  Store
	errors map[string][]string
}

func NewBook(ctx context.Context, store Store) *Book {
	return &Book{ctx: ctx, store: store}
}

func wrapBook(ctx context.Context, store Store, d *Data) *Book {
	return &Book{Data: *d, ctx: ctx, store: store}
}

var bookFields = map[string]func(b *Book, v any) error{
	"id": func(b *Book, v any) error {
		id, err := cast.ToInt64E(v)
		if err != nil {
			return err
		}
		b.ID = id
		return nil
	},
	"title": func(b *Book, v any) error {
		s, err := cast.ToStringE(v)
		b.Title = s
		return err
	},
	"author": func(b *Book, v any) error {
		s, err := cast.ToStringE(v)
		b.Author = s
		return err
	},
}

func (b *Book) SetField(name string, value any) error {
	set, ok := bookFields[name]
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	return set(b, value)
}

func (b *Book) validate() {
	b.errors = map[string][]string{}
	if strings.TrimSpace(b.Author) == "" {
		b.errors["author"] = append(b.errors["author"], "can't be empty")
	}
}

func (b *Book) IsValid() bool {
	b.validate()
	return len(b.errors) == 0
}

func (b *Book) Errors() map[string][]string {
	if b.errors == nil {
		b.validate()
	}
	return b.errors
}

func (b *Book) Save() error {
	return b.store.Save(b.ctx, &b.Data)
}

func (b *Book) Destroy() error {
	return b.store.Delete(b.ctx, b.ID)
}

func (b *Book) ToMap() map[string]any {
	return map[string]any{
		"id":     b.ID,
		"title":  b.Title,
		"author": b.Author,
	}
}
