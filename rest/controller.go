// Package rest installs create, read, edit and delete routes for records on
// a core.Router. Clients such as Backbone.js models talk to these routes
// directly:
//
//	api := rest.New(router)
//	api.Create("/book", func(ctx context.Context) (rest.Record, error) {
//		return NewBook(ctx), nil
//	})
//	api.Resource("/book/:id", func(ctx context.Context, args ...string) (rest.Record, error) {
//		return FindBook(ctx, args[0])
//	})
package rest

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"github.com/go-barry/backbone/core"
)

type API struct {
	router       *core.Router
	logger       *zap.SugaredLogger
	maxBodyBytes int64
}

type Option func(*API)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMaxBodyBytes bounds JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(a *API) {
		if n > 0 {
			a.maxBodyBytes = n
		}
	}
}

func New(router *core.Router, opts ...Option) *API {
	a := &API{
		router:       router,
		logger:       zap.NewNop().Sugar(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

func (a *API) Router() *core.Router {
	return a.router
}

// Create installs POST path. Every field of the request, id included, is
// applied to a record from factory; the record is saved only when valid.
func (a *API) Create(path string, factory Factory) {
	a.router.Post(path, func(w http.ResponseWriter, req *http.Request, params core.Params) error {
		record, err := factory(req.Context())
		if err != nil {
			return fmt.Errorf("rest: create %s: %w", path, err)
		}
		if record == nil {
			return fmt.Errorf("rest: create %s: factory returned no record", path)
		}

		if done, err := a.update(w, req, record, false); done || err != nil {
			return err
		}
		return Respond(w, req, record.ToMap())
	})
}

// Get installs GET path. A lookup miss falls through to the next route.
func (a *API) Get(path string, lookup Lookup) {
	a.router.Get(path, func(w http.ResponseWriter, req *http.Request, params core.Params) error {
		record, err := resolve(req, lookup, params)
		if err != nil {
			return err
		}
		return Respond(w, req, record)
	})
}

// Edit installs PUT and POST path. The id field is never applied.
func (a *API) Edit(path string, lookup Lookup) {
	edit := func(w http.ResponseWriter, req *http.Request, params core.Params) error {
		record, err := resolve(req, lookup, params)
		if err != nil {
			return err
		}

		if done, err := a.update(w, req, record, true); done || err != nil {
			return err
		}
		return Respond(w, req, record)
	}

	a.router.Put(path, edit)
	a.router.Post(path, edit)
}

func (a *API) Delete(path string, lookup Lookup) {
	a.router.Delete(path, func(w http.ResponseWriter, req *http.Request, params core.Params) error {
		record, err := resolve(req, lookup, params)
		if err != nil {
			return err
		}
		if err := record.Destroy(); err != nil {
			return fmt.Errorf("rest: destroy: %w", err)
		}
		a.logger.Debugw("record destroyed", "path", req.URL.Path)
		return Respond(w, req, map[string]any{"result": "success"})
	})
}

// Resource installs Get, Edit and Delete on path.
func (a *API) Resource(path string, lookup Lookup) {
	a.Get(path, lookup)
	a.Edit(path, lookup)
	a.Delete(path, lookup)
}

func resolve(req *http.Request, lookup Lookup, params core.Params) (Record, error) {
	record, err := lookup(req.Context(), params.Values()...)
	if core.IsNotFoundError(err) {
		return nil, core.ErrPass
	}
	if err != nil {
		return nil, fmt.Errorf("rest: lookup: %w", err)
	}
	if record == nil {
		return nil, core.ErrPass
	}
	return record, nil
}

// update applies the request fields to record, then validates and saves
// it. done is true when a validation failure has already been written.
func (a *API) update(w http.ResponseWriter, req *http.Request, record Record, skipID bool) (done bool, err error) {
	fields, err := extractParams(req, a.maxBodyBytes)
	if err != nil {
		return false, err
	}
	if err := applyFields(record, fields, skipID); err != nil {
		return false, err
	}

	if !record.IsValid() {
		body, err := json.Marshal(record.Errors())
		if err != nil {
			return false, fmt.Errorf("rest: encode errors: %w", err)
		}
		a.logger.Debugw("record invalid", "path", req.URL.Path, "errors", record.Errors())
		writeJSON(w, http.StatusBadRequest, body)
		return true, nil
	}

	if err := record.Save(); err != nil {
		return false, fmt.Errorf("rest: save: %w", err)
	}
	a.logger.Debugw("record saved", "path", req.URL.Path)
	return false, nil
}

func applyFields(record Record, fields map[string]any, skipID bool) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if skipID && k == "id" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := record.SetField(k, fields[k]); err != nil {
			return &FieldError{Field: k, Err: err}
		}
	}
	return nil
}
