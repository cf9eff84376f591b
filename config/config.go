// Package config loads the `ratesfmt.toml` configuration of the CLI and
// builds the codec it describes
package config

import (
	"io/fs"
	"os"

	"github.com/ComedicChimera/ratesfmt/codec"
	"github.com/ComedicChimera/ratesfmt/common"
	"github.com/ComedicChimera/ratesfmt/conversion"
	"github.com/ComedicChimera/ratesfmt/grammars"
	"github.com/ComedicChimera/ratesfmt/syntax"
)

// tomlConfigFile represents the configuration file as it is encoded in TOML
type tomlConfigFile struct {
	Config *tomlConfig `toml:"ratesfmt"`
}

// tomlConfig represents the settings as they are encoded in TOML
type tomlConfig struct {
	GrammarPath      string `toml:"grammar-path,omitempty"`
	LogLevel         string `toml:"log-level"`
	CacheSize        int    `toml:"cache-size"`
	StrictConverters bool   `toml:"strict-converters"`
	Version          string `toml:"ratesfmt-version"`
}

// Config holds the settings of a ratesfmt run
type Config struct {
	// GrammarPath is the directory grammar files are read from.  The
	// grammars built into the binary are used when it is empty.
	GrammarPath string

	LogLevel string

	// CacheSize bounds each of the codec's grammar caches
	CacheSize int

	// StrictConverters only applies converters to terminals declared in the
	// converter's grammar
	StrictConverters bool
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		LogLevel:  "warning",
		CacheSize: common.DefaultCacheSize,
	}
}

// Grammars returns the file system grammars are loaded from
func (c *Config) Grammars() fs.FS {
	if c.GrammarPath == "" {
		return grammars.FS
	}

	return os.DirFS(c.GrammarPath)
}

// NewCodec builds the codec the configuration describes
func (c *Config) NewCodec() (*codec.Codec, error) {
	registry := conversion.Default()
	if c.StrictConverters {
		registry = registry.Strict()
	}

	return codec.New(c.Grammars(), registry, c.CacheSize)
}

// ProductTypes lists the product types with a grammar in an asset class
func (c *Config) ProductTypes(assetClass string) ([]string, error) {
	return syntax.ProductTypes(c.Grammars(), assetClass)
}
