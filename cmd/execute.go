package cmd

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/ComedicChimera/olive"
	"github.com/ComedicChimera/ratesfmt/codec"
	"github.com/ComedicChimera/ratesfmt/common"
	"github.com/ComedicChimera/ratesfmt/config"
	"github.com/ComedicChimera/ratesfmt/logging"
	"github.com/ComedicChimera/ratesfmt/processing"
)

var assetClasses = []string{common.LinearRate, common.RatesVolatility}

// Execute runs the main `ratesfmt` application and exits with status 1 if any
// error was logged
func Execute() {
	run()
	os.Exit(exitCode())
}

// exitCode is the process status implied by the errors logged so far
func exitCode() int {
	if logging.ErrorCount() > 0 {
		return 1
	}

	return 0
}

func run() {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("ratesfmt", "ratesfmt converts between trader shorthand and trade attributes", true)
	cli.AddSelectorArg("loglevel", "ll", "the log level", false, []string{"silent", "error", "warn", "verbose"})
	cli.AddStringArg("config", "c", "the directory holding ratesfmt.toml", false)

	parseCmd := cli.AddSubcommand("parse", "parse a shorthand into its attributes", true)
	parseCmd.AddPrimaryArg("shorthand", "the shorthand to parse", true)
	parseCmd.AddSelectorArg("asset-class", "ac", "the asset class of the shorthand", false, assetClasses).SetDefaultValue(common.LinearRate)

	formatCmd := cli.AddSubcommand("format", "format attributes as a shorthand", true)
	formatCmd.AddPrimaryArg("product", "the product type of the trade", true)
	formatCmd.AddSelectorArg("asset-class", "ac", "the asset class of the product", false, assetClasses).SetDefaultValue(common.LinearRate)
	formatCmd.AddStringArg("attrs", "a", "the attributes as `name=value` pairs separated by commas", true)

	productsCmd := cli.AddSubcommand("products", "list the product types of an asset class", false)
	productsCmd.AddSelectorArg("asset-class", "ac", "the asset class to list", false, assetClasses).SetDefaultValue(common.LinearRate)

	configCmd := cli.AddSubcommand("config", "manage the configuration file", true)
	configCmd.AddSubcommand("init", "write a default ratesfmt.toml in the working directory", false)

	cli.AddSubcommand("version", "print the ratesfmt version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		logging.LogError("CLI Usage", err)
		return
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "parse", "format", "products":
		conf, ok := loadConfig(result)
		if !ok {
			return
		}

		switch subcmdName {
		case "parse":
			execParseCommand(subResult, conf)
		case "format":
			execFormatCommand(subResult, conf)
		case "products":
			execProductsCommand(subResult, conf)
		}
	case "config":
		execConfigCommand(subResult)
	case "version":
		logging.PrintInfoMessage("Ratesfmt Version", common.RatesfmtVersion)
	}
}

// loadConfig loads the configuration and initializes the logger.  The log
// level given on the command line overrides the configured one.
func loadConfig(result *olive.ArgParseResult) (*config.Config, bool) {
	dir, ok := result.Arguments["config"].(string)
	if !ok {
		wd, err := os.Getwd()
		if err != nil {
			logging.LogError("Path", err)
			return nil, false
		}

		dir = wd
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		logging.LogError("Path", err)
		return nil, false
	}

	conf, err := config.Load(dir)
	if err != nil {
		logging.LogError("Config", err)
		return nil, false
	}

	if loglevel, ok := result.Arguments["loglevel"].(string); ok {
		conf.LogLevel = loglevel
	}

	logging.Initialize(conf.LogLevel)
	return conf, true
}

// newCodec builds the configured codec and reports any failure
func newCodec(conf *config.Config) (*codec.Codec, bool) {
	c, err := conf.NewCodec()
	if err != nil {
		logging.LogError("Config", err)
		return nil, false
	}

	return c, true
}

// execParseCommand executes the `parse` subcommand and prints the attributes
// in the order the product declares them
func execParseCommand(result *olive.ArgParseResult, conf *config.Config) {
	text, _ := result.PrimaryArg()
	assetClass := result.Arguments["asset-class"].(string)

	c, ok := newCodec(conf)
	if !ok {
		return
	}

	productType, attrs, err := c.Parse(assetClass, text)
	if err != nil {
		logging.LogError("Parse", err)
		return
	}

	proc, err := processing.Lookup(assetClass, productType)
	if err != nil {
		logging.LogError("Parse", err)
		return
	}

	var rows [][]string
	for _, name := range proc.Attributes {
		if v, ok := attrs[name]; ok {
			rows = append(rows, []string{name, displayValue(v)})
		}
	}

	if err := logging.DisplayAttributes(productType, rows); err != nil {
		logging.LogError("Display", err)
	}
}

// execFormatCommand executes the `format` subcommand
func execFormatCommand(result *olive.ArgParseResult, conf *config.Config) {
	productType, _ := result.PrimaryArg()
	assetClass := result.Arguments["asset-class"].(string)

	pairs, ok := result.Arguments["attrs"].(string)
	if !ok {
		logging.LogError("CLI Usage", errors.New("missing `--attrs`"))
		return
	}

	attrs, err := ParseAttributes(productType, pairs)
	if err != nil {
		logging.LogError("CLI Usage", err)
		return
	}

	c, ok := newCodec(conf)
	if !ok {
		return
	}

	shorthand, err := c.Format(assetClass, productType, attrs)
	if err != nil {
		logging.LogError("Format", err)
		return
	}

	logging.PrintInfoMessage("Shorthand", shorthand)
}

// execProductsCommand executes the `products` subcommand
func execProductsCommand(result *olive.ArgParseResult, conf *config.Config) {
	assetClass := result.Arguments["asset-class"].(string)
	logging.DisplayHeader()

	productTypes, err := conf.ProductTypes(assetClass)
	if err != nil {
		logging.LogError("Grammar", err)
		return
	}

	var rows [][]string
	for _, productType := range productTypes {
		proc, err := processing.Lookup(assetClass, productType)
		if err != nil {
			logging.LogWarning("Grammar", err.Error())
			continue
		}

		rows = append(rows, []string{productType, displayValue(toAny(proc.Attributes))})
	}

	if err := logging.DisplayProducts(assetClass, rows); err != nil {
		logging.LogError("Display", err)
	}
}

func toAny(names []string) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}

	return out
}

// execConfigCommand executes the `config` subcommand and its subcommands
func execConfigCommand(result *olive.ArgParseResult) {
	subcmdName, _, _ := result.Subcommand()

	workDir, err := os.Getwd()
	if err != nil {
		logging.LogError("Path", err)
		return
	}

	switch subcmdName {
	case "init":
		if err := config.Init(workDir); err != nil {
			logging.LogError("Config Init", err)
			return
		}

		logging.PrintInfoMessage("Config", "wrote "+filepath.Join(workDir, common.ConfigFileName))
	}
}
