package jst

import (
	"bytes"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"go.uber.org/zap"

	"github.com/go-barry/backbone/core"
)

// Template describes one template file found under a views root.
type Template struct {
	Name   string
	File   string
	Ext    string
	Engine Engine
}

type Compiler struct {
	registry *Registry
	logger   *zap.SugaredLogger

	minify       bool
	reloadScript bool
	cache        *core.Config
	cacheControl string

	// mu serializes cache reads, fills and clears.
	mu sync.Mutex
}

type Option func(*Compiler)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMinify minifies served bundles.
func WithMinify(enabled bool) Option {
	return func(c *Compiler) { c.minify = enabled }
}

// WithReloadScript appends the live-reload client to served bundles.
func WithReloadScript(enabled bool) Option {
	return func(c *Compiler) { c.reloadScript = enabled }
}

// WithCache keeps served bundles under config.OutputDir until cleared.
func WithCache(config core.Config) Option {
	return func(c *Compiler) { c.cache = &config }
}

func WithCacheControl(value string) Option {
	return func(c *Compiler) { c.cacheControl = value }
}

// NewCompiler returns a compiler resolving engines through registry, or
// through DefaultRegistry when registry is nil.
func NewCompiler(registry *Registry, opts ...Option) *Compiler {
	if registry == nil {
		registry = DefaultRegistry()
	}
	c := &Compiler{
		registry:     registry,
		logger:       zap.NewNop().Sugar(),
		cacheControl: "no-cache",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Compiler) Registry() *Registry {
	return c.registry
}

// Describe splits a slash-separated path relative to the views root into
// the template name (everything before the last ".jst") and the engine
// extension (everything after the last dot).
func Describe(rel string) (name, ext string, ok bool) {
	i := strings.LastIndex(rel, ".jst")
	if i < 0 {
		return "", "", false
	}
	return rel[:i], rel[strings.LastIndex(rel, ".")+1:], true
}

// Templates lists the template files under root that have a registered
// engine, sorted by name. Files with an unknown extension are skipped.
func (c *Compiler) Templates(root string) ([]Template, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &IOError{File: root, Err: err}
	}

	var templates []Template
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != abs {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.Contains(d.Name(), ".jst") {
			return nil
		}

		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return err
		}
		name, ext, ok := Describe(filepath.ToSlash(rel))
		if !ok {
			return nil
		}

		ctor, found := c.registry.Lookup(ext)
		if !found {
			c.logger.Debugw("no engine for template, skipping", "file", path, "ext", ext)
			return nil
		}

		templates = append(templates, Template{
			Name:   name,
			File:   path,
			Ext:    ext,
			Engine: ctor(name, path),
		})
		return nil
	})
	if err != nil {
		return nil, &IOError{File: root, Err: err}
	}

	sort.SliceStable(templates, func(i, j int) bool {
		if templates[i].Name != templates[j].Name {
			return templates[i].Name < templates[j].Name
		}
		return templates[i].File < templates[j].File
	})
	return templates, nil
}

var bundleTemplate = template.Must(template.New("bundle").Parse(`(function(){
  var c = {};
  if (!window.JST) window.JST = {};
{{- range . }}
  {{ . }}
{{- end }}
})();
`))

// Bundle wraps compiled entries in one closure sharing the cache c.
func Bundle(fragments []string) (string, error) {
	var buf bytes.Buffer
	if err := bundleTemplate.Execute(&buf, fragments); err != nil {
		return "", fmt.Errorf("jst: render bundle: %w", err)
	}
	return buf.String(), nil
}

// Compile builds the bundle for every template under root. A template
// that cannot be read fails the whole bundle.
func (c *Compiler) Compile(root string) (string, error) {
	templates, err := c.Templates(root)
	if err != nil {
		return "", err
	}

	fragments := make([]string, 0, len(templates))
	for _, t := range templates {
		js, err := t.Engine.Compile()
		if err != nil {
			return "", fmt.Errorf("jst: compile %s: %w", t.Name, err)
		}
		fragments = append(fragments, js)
	}

	c.logger.Debugw("compiled jst bundle", "root", root, "templates", len(fragments))
	return Bundle(fragments)
}

// Build compiles the bundle for root and applies the configured reload
// client, minification and cache. name keys the cache entry.
func (c *Compiler) Build(name, root string) ([]byte, error) {
	body, _, err := c.build(name, root, false)
	return body, err
}

// build is Build that can also return the cached gzip sibling. With the
// cache on, one caller at a time compiles and stores, so concurrent
// requests reuse the first result.
func (c *Compiler) build(name, root string, withGzip bool) (body, gzipped []byte, err error) {
	if c.cache == nil {
		body, err = c.render(root)
		return body, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := core.GetCachedBundle(*c.cache, name); ok {
		body = cached
	} else {
		if body, err = c.render(root); err != nil {
			return nil, nil, err
		}
		if err := core.SaveCachedBundle(*c.cache, name, body); err != nil {
			c.logger.Warnw("cannot cache jst bundle", "name", name, "error", err)
			return body, nil, nil
		}
	}

	if withGzip {
		gzipped, _ = core.GetCachedGzip(*c.cache, name)
	}
	return body, gzipped, nil
}

func (c *Compiler) render(root string) ([]byte, error) {
	js, err := c.Compile(root)
	if err != nil {
		return nil, err
	}

	out := []byte(js)
	if c.reloadScript {
		out = append(out, '\n')
		out = append(out, core.ReloadClientScript()...)
		out = append(out, '\n')
	}
	if c.minify {
		if out, err = core.MinifyJS(out); err != nil {
			return nil, fmt.Errorf("jst: minify bundle: %w", err)
		}
	}
	return out, nil
}

// ClearCache drops the cached bundle for name, if caching is enabled.
func (c *Compiler) ClearCache(name string) error {
	if c.cache == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return core.ClearCachedBundle(*c.cache, name)
}

func (c *Compiler) Handler(path, root string) core.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request, params core.Params) error {
		body, gzipped, err := c.build(path, root, core.AcceptsGzip(req))
		if err != nil {
			return err
		}
		core.ServeAsset(w, req, core.JavaScriptType, body, gzipped, c.cacheControl)
		return nil
	}
}

// Serve installs GET path on router, answering with the bundle for root.
func (c *Compiler) Serve(router *core.Router, path, root string) {
	router.Get(path, c.Handler(path, root))
}
