package earley

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ComedicChimera/ratesfmt/syntax"
)

// ErrNoParse is returned when the input is not in the language of the grammar
var ErrNoParse = errors.New("no parse")

// ParseError describes where parsing stopped
type ParseError struct {
	// Pos is the furthest position the parser reached
	Pos int

	// Near describes the input at Pos
	Near string

	// Expected lists the terminals that could have been read at Pos
	Expected []string
}

func (e *ParseError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("unexpected %s", e.Near)
	}

	return fmt.Sprintf("unexpected %s, expected one of: %s", e.Near, strings.Join(e.Expected, ", "))
}

func (e *ParseError) Unwrap() error {
	return ErrNoParse
}

// item is a dotted rule together with the position its recognition started at
type item struct {
	rule   int
	dot    int
	origin int
}

type itemSet struct {
	items []item
	index map[item]struct{}
}

func newItemSet() *itemSet {
	return &itemSet{index: make(map[item]struct{})}
}

func (s *itemSet) add(it item) {
	if _, ok := s.index[it]; !ok {
		s.index[it] = struct{}{}
		s.items = append(s.items, it)
	}
}

func (s *itemSet) has(it item) bool {
	_, ok := s.index[it]
	return ok
}

// Chart is the result of recognizing an input: one item set per position
type Chart struct {
	p    *Parser
	in   Input
	sets []*itemSet
}

// Recognize fills the chart of an input.  It fails with a *ParseError if the
// start symbol does not derive the whole input.
func (p *Parser) Recognize(in Input) (*Chart, error) {
	n := in.Len()

	c := &Chart{p: p, in: in, sets: make([]*itemSet, n+1)}
	for i := range c.sets {
		c.sets[i] = newItemSet()
	}

	for _, ri := range p.byOrigin[p.start] {
		c.sets[0].add(item{rule: ri})
	}

	for k := 0; k <= n; k++ {
		set := c.sets[k]

		for x := 0; x < len(set.items); x++ {
			it := set.items[x]
			r := p.rules[it.rule]

			// completer
			if it.dot == len(r.Expansion) {
				parents := c.sets[it.origin]
				for y := 0; y < len(parents.items); y++ {
					pit := parents.items[y]
					pr := p.rules[pit.rule]

					if pit.dot < len(pr.Expansion) {
						if next := pr.Expansion[pit.dot]; !next.Terminal && next.Name == r.Origin.Name {
							set.add(item{pit.rule, pit.dot + 1, pit.origin})
						}
					}
				}

				continue
			}

			sym := r.Expansion[it.dot]

			// scanner
			if sym.Terminal {
				if _, end, ok := in.scan(p, sym, k); ok && end > k && end <= n {
					c.sets[end].add(item{it.rule, it.dot + 1, it.origin})
				}

				continue
			}

			// predictor
			for _, ri := range p.byOrigin[sym.Name] {
				set.add(item{rule: ri, origin: k})
			}

			if p.nullable[sym.Name] {
				set.add(item{it.rule, it.dot + 1, it.origin})
			}
		}
	}

	if len(c.StartRules()) == 0 {
		return nil, c.failure()
	}

	return c, nil
}

// StartRules returns the rules of the start symbol that derive the whole
// input, in rule order
func (c *Chart) StartRules() []*syntax.Rule {
	var rules []*syntax.Rule

	n := c.in.Len()
	for _, ri := range c.p.byOrigin[c.p.start] {
		r := c.p.rules[ri]
		if c.sets[n].has(item{ri, len(r.Expansion), 0}) {
			rules = append(rules, r)
		}
	}

	return rules
}

// failure builds the error describing the furthest position reached
func (c *Chart) failure() error {
	pos := 0
	for k, set := range c.sets {
		if len(set.items) > 0 {
			pos = k
		}
	}

	expected := make(map[string]struct{})
	for _, it := range c.sets[pos].items {
		r := c.p.rules[it.rule]
		if it.dot < len(r.Expansion) && r.Expansion[it.dot].Terminal {
			expected[r.Expansion[it.dot].Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)

	return &ParseError{Pos: pos, Near: c.in.Describe(pos), Expected: names}
}
