// Package conversion turns the text of shorthand tokens into typed attribute
// values and back.  Converters are keyed by the local name of the terminal
// they handle.
package conversion

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ComedicChimera/ratesfmt/common"
	"github.com/ComedicChimera/ratesfmt/syntax"
)

var (
	// ErrUnregistered is returned when no converter handles a terminal
	ErrUnregistered = errors.New("unregistered converter")

	// ErrConversion is returned when a token or a value cannot be converted
	ErrConversion = errors.New("conversion error")
)

// Converter converts the tokens of one terminal
type Converter interface {
	// Grammar is the grammar the terminal is declared in
	Grammar() string

	// Name is the local name of the terminal
	Name() string

	// Decode converts the text of a token into a value
	Decode(tok *syntax.Token) (any, error)

	// Encode converts a value into a token of the given terminal
	Encode(name string, v any) (*syntax.Token, error)
}

// Builder collects converters before they are frozen into a Registry
type Builder struct {
	converters map[string]Converter
	closed     bool
}

func NewBuilder() *Builder {
	return &Builder{converters: make(map[string]Converter)}
}

// Register adds a converter.  Two converters cannot share a name and nothing
// can be registered once the builder is closed.
func (b *Builder) Register(cs ...Converter) error {
	if b.closed {
		return errors.New("cannot register converters: registry already closed")
	}

	for _, c := range cs {
		if prev, ok := b.converters[c.Name()]; ok {
			return fmt.Errorf("converter `%s` of grammar `%s` is already registered by grammar `%s`", c.Name(), c.Grammar(), prev.Grammar())
		}

		b.converters[c.Name()] = c
	}

	return nil
}

// Close freezes the builder into a registry
func (b *Builder) Close() *Registry {
	b.closed = true
	return &Registry{converters: b.converters}
}

// Registry is an immutable converter table: it is safe for concurrent use
type Registry struct {
	converters map[string]Converter

	// strict registries also check the qualified name of the terminal
	strict bool
}

// Strict returns a view of the registry that only hands out a converter if
// the qualified name looked up is the converter's bare name or is qualified
// by the converter's grammar
func (r *Registry) Strict() *Registry {
	return &Registry{converters: r.converters, strict: true}
}

// Get returns the converter of a (possibly qualified) terminal name
func (r *Registry) Get(name string) (Converter, error) {
	c, ok := r.converters[common.ToPathRoot(name)]
	if !ok {
		return nil, fmt.Errorf("%w: `%s`", ErrUnregistered, name)
	}

	if r.strict && !matchesQualified(c, name) {
		return nil, fmt.Errorf("%w: `%s` is not declared in grammar `%s`", ErrUnregistered, name, c.Grammar())
	}

	return c, nil
}

func matchesQualified(c Converter, name string) bool {
	if name == c.Name() {
		return true
	}

	if c.Grammar() == "" {
		return false
	}

	qualified := c.Grammar() + common.PathDelimiter + c.Name()
	return name == qualified || strings.HasSuffix(name, common.PathDelimiter+qualified)
}

// Decode converts a token with the converter of its type
func (r *Registry) Decode(tok *syntax.Token) (any, error) {
	c, err := r.Get(tok.Type)
	if err != nil {
		return nil, err
	}

	return c.Decode(tok)
}

// Encode converts a value into a token of the terminal name
func (r *Registry) Encode(name string, v any) (*syntax.Token, error) {
	c, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	return c.Encode(name, v)
}

// Names lists the terminal names of every registered converter
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.converters))
	for name := range r.converters {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry of every converter this package defines
func Default() *Registry {
	defaultOnce.Do(func() {
		b := NewBuilder()
		if err := b.Register(All()...); err != nil {
			// the converter table is static: a clash is a programming error
			panic(err)
		}

		defaultRegistry = b.Close()
	})

	return defaultRegistry
}
