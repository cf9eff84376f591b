// Package codec converts trader shorthand into attribute records and back.
// Parsing runs the text through the combined grammar of an asset class;
// formatting rebuilds a tree out of the attributes of one product and
// writes it back out.
package codec

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/ComedicChimera/ratesfmt/analysis"
	"github.com/ComedicChimera/ratesfmt/common"
	"github.com/ComedicChimera/ratesfmt/conversion"
	"github.com/ComedicChimera/ratesfmt/earley"
	"github.com/ComedicChimera/ratesfmt/grammars"
	"github.com/ComedicChimera/ratesfmt/logging"
	"github.com/ComedicChimera/ratesfmt/processing"
	"github.com/ComedicChimera/ratesfmt/syntax"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrMalformedInput is returned when text is not the shorthand of
	// exactly one product
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnformattable is returned when attributes cannot be written as
	// shorthand
	ErrUnformattable = errors.New("unformattable attributes")
)

// Attributes is the structured record of a trade: attribute name to value.
// Multi-leg attributes hold one value per leg.
type Attributes map[string]any

// Codec parses and formats the shorthand of the grammars in a file system.
// Grammars are loaded lazily and kept in bounded caches; a Codec is safe for
// concurrent use.
type Codec struct {
	fsys     fs.FS
	registry *conversion.Registry

	parsers    *lru.Cache[string, *classParser]
	formatters *lru.Cache[string, *productFormatter]
}

// classParser reads the shorthand of every product of an asset class
type classParser struct {
	assetClass string
	grammar    *syntax.Grammar
	parser     *earley.Parser
}

// productFormatter writes the shorthand of one product
type productFormatter struct {
	grammar   *syntax.Grammar
	analyzer  *analysis.Analyzer
	processor *processing.Processor
	registry  *conversion.Registry
}

// New creates a codec over the grammar files of fsys.  Each of its two caches
// holds at most cacheSize entries.
func New(fsys fs.FS, registry *conversion.Registry, cacheSize int) (*Codec, error) {
	parsers, err := lru.New[string, *classParser](cacheSize)
	if err != nil {
		return nil, err
	}

	formatters, err := lru.New[string, *productFormatter](cacheSize)
	if err != nil {
		return nil, err
	}

	return &Codec{
		fsys:       fsys,
		registry:   registry,
		parsers:    parsers,
		formatters: formatters,
	}, nil
}

var (
	defaultOnce  sync.Once
	defaultCodec *Codec
)

// Default returns the codec of the embedded grammars and the default
// converters
func Default() *Codec {
	defaultOnce.Do(func() {
		c, err := New(grammars.FS, conversion.Default(), common.DefaultCacheSize)
		if err != nil {
			// only a non-positive cache size can fail
			panic(err)
		}

		defaultCodec = c
	})

	return defaultCodec
}

// Parse parses text with the default codec
func Parse(assetClass, text string) (string, Attributes, error) {
	return Default().Parse(assetClass, text)
}

// Format formats attributes with the default codec
func Format(assetClass, productType string, attrs Attributes) (string, error) {
	return Default().Format(assetClass, productType, attrs)
}

// classParser returns the cached parser of an asset class, loading it on a
// miss
func (c *Codec) classParser(assetClass string) (*classParser, error) {
	if cp, ok := c.parsers.Get(assetClass); ok {
		return cp, nil
	}

	g, err := syntax.LoadAssetClass(c.fsys, assetClass)
	if err != nil {
		return nil, fmt.Errorf("loading grammar of asset class `%s`: %w", assetClass, err)
	}

	cp := &classParser{
		assetClass: assetClass,
		grammar:    g,
		parser:     earley.New(g.Rules, g.Start, earley.WithDiscarded(g.IsDiscarded)),
	}

	c.parsers.Add(assetClass, cp)
	logging.LogInfo("Grammar", fmt.Sprintf("loaded asset class `%s` (%d rules)", assetClass, len(g.Rules)))
	return cp, nil
}

// formatter returns the cached formatter of a product, loading it on a miss
func (c *Codec) formatter(assetClass, productType string) (*productFormatter, error) {
	key := processing.Key(assetClass, productType)
	if pf, ok := c.formatters.Get(key); ok {
		return pf, nil
	}

	proc, err := processing.Lookup(assetClass, productType)
	if err != nil {
		return nil, err
	}

	g, err := syntax.LoadProduct(c.fsys, assetClass, productType)
	if err != nil {
		return nil, fmt.Errorf("loading grammar of `%s`: %w", key, err)
	}

	an, err := analysis.NewFromGrammar(g)
	if err != nil {
		return nil, fmt.Errorf("analyzing grammar of `%s`: %w", key, err)
	}

	pf := &productFormatter{
		grammar:   g,
		analyzer:  an,
		processor: proc,
		registry:  c.registry,
	}

	c.formatters.Add(key, pf)
	logging.LogInfo("Grammar", fmt.Sprintf("loaded product `%s` (%d rules)", key, len(an.Rules())))
	return pf, nil
}
