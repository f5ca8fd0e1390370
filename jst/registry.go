package jst

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps file extensions to engine constructors.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[string]Constructor),
	}
}

// DefaultRegistry returns a registry with the built-in engines:
// tpl and jst (underscore), jade, haml and eco.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("tpl", Underscore)
	r.Register("jst", Underscore)
	r.Register("jade", Jade)
	r.Register("haml", Haml)
	r.Register("eco", Eco)
	return r
}

// Register maps ext to ctor, replacing any earlier mapping.
func (r *Registry) Register(ext string, ctor Constructor) {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" || ctor == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[ext] = ctor
}

func (r *Registry) Lookup(ext string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ctor, ok := r.engines[ext]
	return ctor, ok
}

func (r *Registry) Has(ext string) bool {
	_, ok := r.Lookup(ext)
	return ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.engines))
	for ext := range r.engines {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
