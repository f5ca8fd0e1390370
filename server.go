package backbone

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/go-barry/backbone/books"
	"github.com/go-barry/backbone/core"
	"github.com/go-barry/backbone/jst"
	"github.com/go-barry/backbone/rest"
)

const DefaultConfigFile = "backbone.config.yml"

type RuntimeConfig struct {
	Env         string
	EnableCache bool
	Port        int
	ConfigFile  string
}

// App is a configured server: JST bundle, book API and public files.
type App struct {
	Config   core.Config
	Logger   *zap.SugaredLogger
	Router   *core.Router
	Compiler *jst.Compiler
	Store    books.Store
	Reloader core.LiveReloaderInterface
	Watcher  *core.Watcher
	Handler  http.Handler
}

var ListenAndServe = http.ListenAndServe

func Start(cfg RuntimeConfig) error {
	fmt.Println("Starting Backbone in", cfg.Env, "mode...")

	addr, app, err := BuildServer(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Printf("✅ Backbone running at http://localhost:%d\n", cfg.Port)
	return ListenAndServe(addr, app.Handler)
}

func BuildServer(cfg RuntimeConfig) (string, *App, error) {
	app, err := NewApp(context.Background(), cfg)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf(":%d", cfg.Port), app, nil
}

// NewApp wires the router for cfg. In dev the bundle carries the reload
// client and the views directory is watched; otherwise it is minified.
func NewApp(ctx context.Context, cfg RuntimeConfig) (*App, error) {
	configFile := cfg.ConfigFile
	if configFile == "" {
		configFile = DefaultConfigFile
	}
	config := core.LoadConfig(configFile)
	config.CacheEnabled = cfg.EnableCache

	dev := cfg.Env == "dev"

	logger, err := core.NewLogger(cfg.Env, config.DebugLogs)
	if err != nil {
		return nil, err
	}

	app := &App{Config: config, Logger: logger}
	app.Router = core.NewRouter(config, logger)

	registry := jst.DefaultRegistry()
	if loaded, err := jst.LoadPlugins(config.EnginesDir, registry); err != nil {
		return nil, err
	} else if len(loaded) > 0 {
		logger.Infow("loaded template engines", "engines", loaded)
	}

	opts := []jst.Option{
		jst.WithLogger(logger),
		jst.WithMinify(config.Minify || !dev),
		jst.WithReloadScript(dev),
	}
	if config.CacheEnabled {
		opts = append(opts, jst.WithCache(config))
	}
	if dev {
		opts = append(opts, jst.WithCacheControl("no-store"))
	}
	app.Compiler = jst.NewCompiler(registry, opts...)
	app.Compiler.Serve(app.Router, config.JSTPath, config.ViewsDir)

	app.Store, err = books.Open(ctx, config.Storage)
	if err != nil {
		return nil, err
	}
	api := rest.New(app.Router,
		rest.WithLogger(logger),
		rest.WithMaxBodyBytes(config.MaxBodyBytes),
	)
	books.Routes(api, app.Store)

	cacheControl := "public, max-age=3600"
	if dev {
		cacheControl = "no-store"
	}
	app.Router.NotFound = makeStaticHandler(config.PublicDir, cacheControl)

	mux := http.NewServeMux()
	if dev {
		app.Reloader = core.NewLiveReloader()
		mux.HandleFunc(core.ReloadPath, app.Reloader.Handler)

		if err := app.watchViews(); err != nil {
			logger.Warnw("cannot watch views", "dir", config.ViewsDir, "error", err)
		}
	}
	mux.Handle("/", app.Router)
	app.Handler = mux

	return app, nil
}

func (a *App) watchViews() error {
	if _, err := os.Stat(a.Config.ViewsDir); err != nil {
		return err
	}

	w, err := core.NewWatcher(a.Config.ViewsDir, a.Logger, a.templateChanged)
	if err != nil {
		return err
	}
	w.Filter = func(path string) bool {
		_, _, ok := jst.Describe(filepath.ToSlash(path))
		return ok
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return err
	}
	a.Watcher = w
	return nil
}

// templateChanged drops the cached bundle and tells dev clients to load it
// again.
func (a *App) templateChanged(path string) {
	if err := a.Compiler.ClearCache(a.Config.JSTPath); err != nil {
		a.Logger.Warnw("cannot clear jst cache", "error", err)
	}

	file := path
	if rel, err := filepath.Rel(a.Config.ViewsDir, path); err == nil {
		file = filepath.ToSlash(rel)
	}
	a.Logger.Infow("template changed", "file", file)

	if a.Reloader != nil {
		a.Reloader.Broadcast(core.ChangeEvent{
			Kind: core.TemplatesChanged,
			Path: a.Config.JSTPath,
			File: file,
		})
	}
}

func (a *App) Close() error {
	if a.Watcher != nil {
		a.Watcher.Stop()
	}
	a.Logger.Sync()
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func makeStaticHandler(publicDir, cacheControl string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uri := r.URL.Path
		if i := strings.Index(uri, "?"); i != -1 {
			uri = uri[:i]
		}
		if strings.Contains(uri, "..") {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		trimmed := strings.TrimPrefix(uri, "/")
		if trimmed == "" || strings.HasSuffix(trimmed, "/") {
			trimmed += "index.html"
		}

		file := filepath.Join(publicDir, filepath.FromSlash(trimmed))
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		serveFileWithHeaders(w, r, file, cacheControl)
	})
}

func serveFileWithHeaders(w http.ResponseWriter, r *http.Request, path, cacheControl string) {
	w.Header().Set("Content-Type", detectMimeType(path))
	w.Header().Set("Cache-Control", cacheControl)
	http.ServeFile(w, r, path)
}

func detectMimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".json":
		return "application/json"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".ico":
		return "image/x-icon"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}
