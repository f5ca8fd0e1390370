package core

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type StorageConfig struct {
	Type string `yaml:"type" toml:"type"` // memory, sqlite, postgres
	Path string `yaml:"path" toml:"path"`
	URL  string `yaml:"url" toml:"url"`
}

type Config struct {
	OutputDir    string        `yaml:"outputDir" toml:"outputDir"`
	CacheEnabled bool          `yaml:"cache" toml:"cache"`
	DebugHeaders bool          `yaml:"debugHeaders" toml:"debugHeaders"`
	DebugLogs    bool          `yaml:"debugLogs" toml:"debugLogs"`
	ViewsDir     string        `yaml:"views" toml:"views"`
	PublicDir    string        `yaml:"public" toml:"public"`
	EnginesDir   string        `yaml:"engines" toml:"engines"`
	JSTPath      string        `yaml:"jstPath" toml:"jstPath"`
	Minify       bool          `yaml:"minify" toml:"minify"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes" toml:"maxBodyBytes"`
	Storage      StorageConfig `yaml:"storage" toml:"storage"`
}

func DefaultConfig() Config {
	return Config{
		OutputDir:    "./cache",
		CacheEnabled: false,
		DebugHeaders: false,
		DebugLogs:    false,
		ViewsDir:     "./views",
		PublicDir:    "./public",
		EnginesDir:   "./engines",
		JSTPath:      "/jst.js",
		MaxBodyBytes: 1 << 20,
		Storage: StorageConfig{
			Type: "memory",
			Path: "backbone.db",
		},
	}
}

// LoadConfig reads a YAML (or, by extension, TOML) config file. A missing
// or unreadable file yields the defaults.
func LoadConfig(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig()
	}

	var cfg Config
	if strings.HasSuffix(path, ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return DefaultConfig()
		}
	} else {
		yaml.Unmarshal(data, &cfg)
	}

	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.ViewsDir == "" {
		c.ViewsDir = def.ViewsDir
	}
	if c.PublicDir == "" {
		c.PublicDir = def.PublicDir
	}
	if c.EnginesDir == "" {
		c.EnginesDir = def.EnginesDir
	}
	if c.JSTPath == "" {
		c.JSTPath = def.JSTPath
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = def.MaxBodyBytes
	}
	if c.Storage.Type == "" {
		c.Storage.Type = def.Storage.Type
	}
	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
}
