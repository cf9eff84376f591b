package conversion

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ComedicChimera/ratesfmt/syntax"
)

// base carries the identity every converter shares
type base struct {
	grammar, name string
}

func (b base) Grammar() string {
	return b.grammar
}

func (b base) Name() string {
	return b.name
}

func (b base) text(tok *syntax.Token) (string, error) {
	s, ok := tok.Value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s can only decode text, got %T", ErrConversion, b.name, tok.Value)
	}

	return s, nil
}

func (b base) invalidValue(what string, v any) error {
	return fmt.Errorf("%w: %s can only format %s, got %T", ErrConversion, b.name, what, v)
}

// toFloat accepts every Go numeric type
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}

	return 0, false
}

// Enumerated converts the members of a string enumeration: the token text is
// the member's name
type Enumerated[E ~string] struct {
	base
	members []E
}

func NewEnumerated[E ~string](grammar, name string, members []E) *Enumerated[E] {
	return &Enumerated[E]{base: base{grammar, name}, members: members}
}

func (c *Enumerated[E]) Decode(tok *syntax.Token) (any, error) {
	s, err := c.text(tok)
	if err != nil {
		return nil, err
	}

	for _, m := range c.members {
		if string(m) == s {
			return m, nil
		}
	}

	return nil, fmt.Errorf("%w: unknown %s `%s`, possible values: %v", ErrConversion, c.name, s, c.members)
}

func (c *Enumerated[E]) Encode(name string, v any) (*syntax.Token, error) {
	m, ok := v.(E)
	if !ok {
		return nil, c.invalidValue(fmt.Sprintf("%T values", m), v)
	}

	for _, member := range c.members {
		if member == m {
			return &syntax.Token{Type: name, Value: string(m)}, nil
		}
	}

	return nil, fmt.Errorf("%w: unknown %s value `%s`, possible values: %v", ErrConversion, c.name, m, c.members)
}

// Flag converts a marker whose presence means true
type Flag struct {
	base
	flag string
}

func NewFlag(grammar, name, flag string) *Flag {
	return &Flag{base: base{grammar, name}, flag: flag}
}

func (c *Flag) Decode(*syntax.Token) (any, error) {
	return true, nil
}

// Encode writes the flag for true and nothing for false
func (c *Flag) Encode(name string, v any) (*syntax.Token, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, c.invalidValue("booleans", v)
	}

	if b {
		return &syntax.Token{Type: name, Value: c.flag}, nil
	}

	return &syntax.Token{Type: name, Value: ""}, nil
}

// Scaled converts numbers quoted in another unit: the value is the text
// divided by the scale.  Values are written in printf `g` form with the given
// number of significant digits.
type Scaled struct {
	base
	scale     float64
	precision int
}

func NewScaled(grammar, name string, scale float64, precision int) *Scaled {
	return &Scaled{base: base{grammar, name}, scale: scale, precision: precision}
}

func (c *Scaled) Decode(tok *syntax.Token) (any, error) {
	s, err := c.text(tok)
	if err != nil {
		return nil, err
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrConversion, c.name, err)
	}

	return f / c.scale, nil
}

func (c *Scaled) Encode(name string, v any) (*syntax.Token, error) {
	f, ok := toFloat(v)
	if !ok {
		return nil, c.invalidValue("numbers", v)
	}

	return &syntax.Token{Type: name, Value: strconv.FormatFloat(f*c.scale, 'g', c.precision, 64)}, nil
}

// Table converts through a fixed one-to-one mapping between token texts and
// values
type Table[V comparable] struct {
	base
	keys   []string
	values []V
}

// NewTable creates a table converter.  keys[i] is the text of values[i].
func NewTable[V comparable](grammar, name string, keys []string, values []V) *Table[V] {
	if len(keys) != len(values) {
		panic(fmt.Sprintf("table converter %s: %d keys for %d values", name, len(keys), len(values)))
	}

	return &Table[V]{base: base{grammar, name}, keys: keys, values: values}
}

func (c *Table[V]) Decode(tok *syntax.Token) (any, error) {
	s, err := c.text(tok)
	if err != nil {
		return nil, err
	}

	for i, k := range c.keys {
		if k == s {
			return c.values[i], nil
		}
	}

	return nil, fmt.Errorf("%w: unknown token `%s`, possible values: %v", ErrConversion, s, c.keys)
}

func (c *Table[V]) Encode(name string, v any) (*syntax.Token, error) {
	val, ok := v.(V)
	if !ok {
		return nil, c.invalidValue(fmt.Sprintf("%T values", val), v)
	}

	for i, tv := range c.values {
		if tv == val {
			return &syntax.Token{Type: name, Value: c.keys[i]}, nil
		}
	}

	return nil, fmt.Errorf("%w: unknown value `%v`, possible values: %v", ErrConversion, v, c.values)
}

// Tenor converts bare integers into tenors of a fixed unit: `3` reads as `3M`
type Tenor struct {
	base
	unit string
}

func NewTenor(grammar, name, unit string) *Tenor {
	return &Tenor{base: base{grammar, name}, unit: unit}
}

func (c *Tenor) Decode(tok *syntax.Token) (any, error) {
	s, err := c.text(tok)
	if err != nil {
		return nil, err
	}

	return s + c.unit, nil
}

func (c *Tenor) Encode(name string, v any) (*syntax.Token, error) {
	s, ok := v.(string)
	if !ok {
		return nil, c.invalidValue("strings", v)
	}

	if !strings.HasSuffix(s, c.unit) || len(s) == len(c.unit) {
		return nil, fmt.Errorf("%w: %s can only format tenors in `%s`, got `%s`", ErrConversion, c.name, c.unit, s)
	}

	return &syntax.Token{Type: name, Value: strings.TrimSuffix(s, c.unit)}, nil
}

// Date converts calendar dates written with a time layout.  Decoded dates are
// midnight UTC.
type Date struct {
	base
	layout string
}

func NewDate(grammar, name, layout string) *Date {
	return &Date{base: base{grammar, name}, layout: layout}
}

func (c *Date) Decode(tok *syntax.Token) (any, error) {
	s, err := c.text(tok)
	if err != nil {
		return nil, err
	}

	t, err := time.Parse(c.layout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrConversion, c.name, err)
	}

	return t, nil
}

func (c *Date) Encode(name string, v any) (*syntax.Token, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, c.invalidValue("dates", v)
	}

	return &syntax.Token{Type: name, Value: strings.ToUpper(t.Format(c.layout))}, nil
}

// Replace swaps one substring for another: the token says `from` where the
// value says `to`
type Replace struct {
	base
	from, to string
}

func NewReplace(grammar, name, from, to string) *Replace {
	return &Replace{base: base{grammar, name}, from: from, to: to}
}

func (c *Replace) Decode(tok *syntax.Token) (any, error) {
	s, err := c.text(tok)
	if err != nil {
		return nil, err
	}

	return strings.ReplaceAll(s, c.from, c.to), nil
}

func (c *Replace) Encode(name string, v any) (*syntax.Token, error) {
	s, ok := v.(string)
	if !ok {
		return nil, c.invalidValue("strings", v)
	}

	return &syntax.Token{Type: name, Value: strings.ReplaceAll(s, c.to, c.from)}, nil
}

// notionalDecimals are the fractional parts a notional can be written with
var notionalDecimals = []float64{0, .1, .2, .3, .4, .5, .6, .7, .8, .9, .25, .75}

// Notional converts notional amounts.  Encoding snaps the fractional part to
// the closest of notionalDecimals.
type Notional struct {
	base
}

func NewNotional(grammar, name string) *Notional {
	return &Notional{base: base{grammar, name}}
}

func (c *Notional) Decode(tok *syntax.Token) (any, error) {
	s, err := c.text(tok)
	if err != nil {
		return nil, err
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrConversion, c.name, err)
	}

	return f, nil
}

func (c *Notional) Encode(name string, v any) (*syntax.Token, error) {
	f, ok := toFloat(v)
	if !ok {
		return nil, c.invalidValue("numbers", v)
	}

	integer := math.Trunc(f)
	frac := math.Abs(f - integer)

	best := notionalDecimals[0]
	for _, d := range notionalDecimals[1:] {
		if math.Abs(frac-d) < math.Abs(frac-best) {
			best = d
		}
	}

	snapped := integer + math.Copysign(best, f)
	if snapped == 0 {
		// no negative zero
		snapped = 0
	}

	return &syntax.Token{Type: name, Value: strconv.FormatFloat(snapped, 'f', -1, 64)}, nil
}
