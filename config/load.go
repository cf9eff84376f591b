package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/ComedicChimera/ratesfmt/common"
	"github.com/ComedicChimera/ratesfmt/logging"
	"github.com/pelletier/go-toml"
)

var logLevels = map[string]bool{
	"silent":  true,
	"error":   true,
	"warn":    true,
	"warning": true,
	"verbose": true,
}

// Load reads the configuration file of a directory.  A directory without one
// yields the default configuration.
func Load(dir string) (*Config, error) {
	f, err := os.Open(filepath.Join(dir, common.ConfigFileName))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	// unmarshal the contents
	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	tcf := &tomlConfigFile{}
	if err := toml.Unmarshal(buff, tcf); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", common.ConfigFileName, err)
	}

	cfg := Default()
	if tcf.Config == nil {
		return cfg, nil
	}

	if err := validateConfig(dir, tcf.Config); err != nil {
		return nil, err
	}

	// move the settings that were given over to the defaults
	if tcf.Config.GrammarPath != "" {
		cfg.GrammarPath = tcf.Config.GrammarPath
		if !filepath.IsAbs(cfg.GrammarPath) {
			cfg.GrammarPath = filepath.Join(dir, cfg.GrammarPath)
		}
	}

	if tcf.Config.LogLevel != "" {
		cfg.LogLevel = tcf.Config.LogLevel
	}

	if tcf.Config.CacheSize != 0 {
		cfg.CacheSize = tcf.Config.CacheSize
	}

	cfg.StrictConverters = tcf.Config.StrictConverters
	return cfg, nil
}

// validateConfig checks the settings of a configuration file
func validateConfig(dir string, tc *tomlConfig) error {
	if tc.LogLevel != "" && !logLevels[tc.LogLevel] {
		return fmt.Errorf("unknown log level `%s`", tc.LogLevel)
	}

	if tc.CacheSize < 0 {
		return fmt.Errorf("cache size must be positive, not %d", tc.CacheSize)
	}

	if tc.GrammarPath != "" {
		path := tc.GrammarPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}

		finfo, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("error loading grammar path: %w", err)
		}

		if !finfo.IsDir() {
			return errors.New("error loading grammar path: must point to a directory")
		}
	}

	if tc.Version != "" && tc.Version != common.RatesfmtVersion {
		logging.LogWarning(
			"Config",
			fmt.Sprintf("configuration version (v%s) does not match current ratesfmt version (v%s)", tc.Version, common.RatesfmtVersion),
		)
	}

	return nil
}
