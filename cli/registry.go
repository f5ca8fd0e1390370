package cli

import (
	"fmt"

	"github.com/go-barry/backbone/core"
	"github.com/go-barry/backbone/jst"
)

var loadConfig = core.LoadConfig

// registryFor returns the built-in engines plus any plugins in the
// project's engines directory.
func registryFor(config core.Config) (*jst.Registry, error) {
	registry := jst.DefaultRegistry()
	if _, err := jst.LoadPlugins(config.EnginesDir, registry); err != nil {
		return nil, fmt.Errorf("failed to load template engines: %w", err)
	}
	return registry, nil
}
