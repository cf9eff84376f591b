package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ComedicChimera/ratesfmt/common"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, common.ConfigFileName), []byte(content), 0o644))
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "grammars"), 0o755))
	writeConfig(t, dir, `
[ratesfmt]
grammar-path = "grammars"
log-level = "verbose"
cache-size = 4
strict-converters = true
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, &Config{
		GrammarPath:      filepath.Join(dir, "grammars"),
		LogLevel:         "verbose",
		CacheSize:        4,
		StrictConverters: true,
	}, cfg)
}

func TestLoadPartial(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[ratesfmt]\nstrict-converters = true\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, common.DefaultCacheSize, cfg.CacheSize)
	require.Equal(t, "warning", cfg.LogLevel)
	require.True(t, cfg.StrictConverters)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "[ratesfmt\n"},
		{"unknown log level", "[ratesfmt]\nlog-level = \"loud\"\n"},
		{"negative cache", "[ratesfmt]\ncache-size = -1\n"},
		{"missing grammar path", "[ratesfmt]\ngrammar-path = \"nowhere\"\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tc.content)

			_, err := Load(dir)
			require.Error(t, err)
		})
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	require.Error(t, Init(dir))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestNewCodec(t *testing.T) {
	cfg := Default()
	cfg.StrictConverters = true

	c, err := cfg.NewCodec()
	require.NoError(t, err)

	product, attrs, err := c.Parse(common.LinearRate, "3X6 100M")
	require.NoError(t, err)
	require.Equal(t, "fra", product)
	require.Equal(t, "6M", attrs["end_time"])
}

func TestProductTypes(t *testing.T) {
	products, err := Default().ProductTypes(common.RatesVolatility)
	require.NoError(t, err)
	require.Equal(t, []string{"cap_floor", "cap_floor_strategy", "swaption", "swaption_strategy"}, products)
}
