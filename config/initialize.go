package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ComedicChimera/ratesfmt/common"
	"github.com/pelletier/go-toml"
)

// Init writes a configuration file holding the default settings into a
// directory
func Init(dir string) error {
	path := filepath.Join(dir, common.ConfigFileName)

	// check to see if a configuration already exists
	_, err := os.Stat(path)
	if err == nil {
		return errors.New("configuration file already exists")
	}

	if !os.IsNotExist(err) {
		return fmt.Errorf("configuration file error: %s", err.Error())
	}

	def := Default()
	tc := &tomlConfig{
		LogLevel:  def.LogLevel,
		CacheSize: def.CacheSize,
		Version:   common.RatesfmtVersion,
	}

	// encode and save configuration to file
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating configuration file: %s", err.Error())
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(&tomlConfigFile{Config: tc}); err != nil {
		return fmt.Errorf("error encoding TOML %s", err.Error())
	}

	return nil
}
