// Package earley implements a general context-free chart parser.  It accepts
// any rule set (ambiguous, left recursive or with empty rules) and parses
// either raw text or a sequence of pre-built nodes.
package earley

import (
	"github.com/ComedicChimera/ratesfmt/syntax"
)

// Matcher decides whether an input item stands for a terminal
type Matcher func(term syntax.Symbol, item syntax.Node) bool

// Callback builds the node of a completed rule out of the nodes of its
// children (one per symbol of the rule's expansion)
type Callback func(rule *syntax.Rule, children []syntax.Node) (syntax.Node, error)

// Parser is a chart parser for a fixed rule set.  Parsers are immutable and
// can be shared between goroutines.
type Parser struct {
	rules    []*syntax.Rule
	byOrigin map[string][]int
	nullable map[string]bool
	start    string

	match     Matcher
	callback  Callback
	discarded func(syntax.Symbol) bool
}

// Option configures a Parser
type Option func(*Parser)

// WithMatcher sets how node items are matched against terminals.  The default
// compares the terminal's name with the item's node name.
func WithMatcher(m Matcher) Option {
	return func(p *Parser) {
		p.match = m
	}
}

// WithCallback replaces the default tree builder
func WithCallback(cb Callback) Option {
	return func(p *Parser) {
		p.callback = cb
	}
}

// WithDiscarded tells the default tree builder which terminals to leave out
// of trees
func WithDiscarded(pred func(syntax.Symbol) bool) Option {
	return func(p *Parser) {
		p.discarded = pred
	}
}

// New creates a parser over rules accepting the nonterminal start
func New(rules []*syntax.Rule, start string, opts ...Option) *Parser {
	p := &Parser{
		rules:    rules,
		byOrigin: make(map[string][]int),
		start:    start,
		match: func(term syntax.Symbol, item syntax.Node) bool {
			return item.NodeName() == term.Name
		},
		discarded: func(syntax.Symbol) bool { return false },
	}
	p.callback = p.buildTree

	for _, opt := range opts {
		opt(p)
	}

	for i, r := range rules {
		p.byOrigin[r.Origin.Name] = append(p.byOrigin[r.Origin.Name], i)
	}

	p.computeNullable()
	return p
}

// computeNullable finds every origin that can derive the empty string
func (p *Parser) computeNullable() {
	p.nullable = make(map[string]bool)

	for changed := true; changed; {
		changed = false

	outer:
		for _, r := range p.rules {
			if p.nullable[r.Origin.Name] {
				continue
			}

			for _, sym := range r.Expansion {
				if sym.Terminal || !p.nullable[sym.Name] {
					continue outer
				}
			}

			p.nullable[r.Origin.Name] = true
			changed = true
		}
	}
}

// Parse parses the input and returns the tree built by the parser's callback.
// When the input has several derivations, the earliest rules of each origin
// are preferred and then the longest leftmost children.
func (p *Parser) Parse(in Input) (syntax.Node, error) {
	c, err := p.Recognize(in)
	if err != nil {
		return nil, err
	}

	return c.Tree()
}

// buildTree is the default callback: discarded terminals are dropped, the
// children of inline rules are spliced into their parent and rules expanding
// single children are replaced by their only child
func (p *Parser) buildTree(rule *syntax.Rule, children []syntax.Node) (syntax.Node, error) {
	kept := make([]syntax.Node, 0, len(children))

	for i, child := range children {
		sym := rule.Expansion[i]
		if sym.Terminal && p.discarded(sym) {
			continue
		}

		if sub, ok := child.(*syntax.Tree); ok && !sym.Terminal && sub.Rule != nil && sub.Rule.Options.Inline {
			kept = append(kept, sub.Children...)
			continue
		}

		kept = append(kept, child)
	}

	if rule.Options.ExpandSingleChild && len(kept) == 1 {
		return kept[0], nil
	}

	label := rule.Origin.Name
	if rule.Alias != "" {
		label = rule.Alias
	}

	return &syntax.Tree{Label: label, Children: kept, Rule: rule}, nil
}
