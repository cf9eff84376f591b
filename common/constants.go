package common

const (
	GrammarFileExtension = ".ebnf"
	ConfigFileName       = "ratesfmt.toml"
	RatesfmtVersion      = "0.1.0"

	// PathDelimiter joins a grammar name and a local symbol name into a
	// qualified name.  It can never appear inside a bare name.
	PathDelimiter = "__"

	DefaultCacheSize = 32
)

// Asset classes with shipped grammars
const (
	LinearRate      = "linear_rate"
	RatesVolatility = "rates_volatility"
)
