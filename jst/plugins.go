package jst

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidPlugin is returned for engine plugins that do not export Expr.
var ErrInvalidPlugin = errors.New("invalid engine plugin: missing Expr")

var pluginCache sync.Map

type pluginWithLookup interface {
	Lookup(string) (plugin.Symbol, error)
}

var pluginOpen = plugin.Open

var loadPluginFunc = func(path string) (pluginWithLookup, error) {
	return pluginOpen(path)
}

// LoadPlugins registers an engine for every <ext>.so in dir. Each plugin
// exports Expr, a func(src string) string building the compile
// expression, and serves templates named *.jst.<ext>. A missing dir is
// not an error. It returns the registered extensions.
func LoadPlugins(dir string, registry *Registry) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var loaded []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".so" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		expr, err := loadExpr(path)
		if err != nil {
			return loaded, fmt.Errorf("jst: plugin %s: %w", path, err)
		}

		ext := strings.TrimSuffix(entry.Name(), ".so")
		registry.Register(ext, NewEngine(expr))
		loaded = append(loaded, ext)
	}

	sort.Strings(loaded)
	return loaded, nil
}

func loadExpr(path string) (ExprFunc, error) {
	val, ok := pluginCache.Load(path)
	var p pluginWithLookup
	var err error

	if ok {
		p = val.(pluginWithLookup)
	} else {
		p, err = loadPluginFunc(path)
		if err != nil {
			return nil, err
		}
		pluginCache.Store(path, p)
	}

	sym, err := p.Lookup("Expr")
	if err != nil {
		return nil, ErrInvalidPlugin
	}

	switch fn := sym.(type) {
	case func(string) string:
		return fn, nil
	case *func(string) string:
		if fn != nil && *fn != nil {
			return *fn, nil
		}
	}
	return nil, ErrInvalidPlugin
}
