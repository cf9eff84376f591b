// Package analysis transforms and traverses BNF rule sets: inline rule
// expansion, discarding of punctuation terminals, reachability, ordering and
// trimming.
package analysis

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ComedicChimera/ratesfmt/syntax"
)

// ErrGrammarConsistency is returned for rule sets that cannot be analyzed:
// inconsistent inline flags, recursive inline rules or trimming the start
// symbol
var ErrGrammarConsistency = errors.New("grammar consistency error")

// Analyzer holds a rule set grouped by origin.  Analyzers are never mutated
// once built: every transformation returns a new one.
type Analyzer struct {
	rules         []*syntax.Rule
	rulesByOrigin map[string][]*syntax.Rule

	// origins are in order of first declaration
	origins []string

	start       string
	isDiscarded func(syntax.Symbol) bool
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithDiscarded sets the predicate telling which terminals are silently
// discarded
func WithDiscarded(pred func(syntax.Symbol) bool) Option {
	return func(a *Analyzer) {
		a.isDiscarded = pred
	}
}

// New creates an analyzer over rules.  An empty start defaults to the origin of
// the first rule.
func New(rules []*syntax.Rule, start string, opts ...Option) *Analyzer {
	a := &Analyzer{
		rules:         rules,
		rulesByOrigin: make(map[string][]*syntax.Rule),
		start:         start,
		isDiscarded:   func(syntax.Symbol) bool { return false },
	}

	for _, opt := range opts {
		opt(a)
	}

	for _, r := range rules {
		name := r.Origin.Name
		if _, ok := a.rulesByOrigin[name]; !ok {
			a.origins = append(a.origins, name)
		}

		a.rulesByOrigin[name] = append(a.rulesByOrigin[name], r)
	}

	if a.start == "" && len(rules) > 0 {
		a.start = rules[0].Origin.Name
	}

	return a
}

// NewFromGrammar builds the analyzer formatting works with: inline rules
// expanded, then discarded terminals removed
func NewFromGrammar(g *syntax.Grammar) (*Analyzer, error) {
	a := New(g.Rules, g.Start, WithDiscarded(g.IsDiscarded))

	expanded, err := a.ExpandInlineRules()
	if err != nil {
		return nil, err
	}

	discarded := make([]*syntax.Rule, len(expanded.rules))
	for i, r := range expanded.rules {
		discarded[i] = a.DiscardTerminals(r)
	}

	return a.derive(discarded, a.start), nil
}

// derive creates an analyzer sharing this analyzer's configuration
func (a *Analyzer) derive(rules []*syntax.Rule, start string) *Analyzer {
	return New(rules, start, WithDiscarded(a.isDiscarded))
}

// Rules returns the rule set in origin order
func (a *Analyzer) Rules() []*syntax.Rule {
	return a.rules
}

// Start returns the start symbol name
func (a *Analyzer) Start() string {
	return a.start
}

// HasOrigin reports whether name is the origin of at least one rule
func (a *Analyzer) HasOrigin(name string) bool {
	_, ok := a.rulesByOrigin[name]
	return ok
}

// RulesOf returns the rules of an origin
func (a *Analyzer) RulesOf(origin string) []*syntax.Rule {
	return a.rulesByOrigin[origin]
}

// DiscardTerminals returns a copy of rule without its discarded terminals.
// The original expansion is kept as the rule's layout.
func (a *Analyzer) DiscardTerminals(rule *syntax.Rule) *syntax.Rule {
	nr := rule.Copy()
	nr.Layout = append([]syntax.Symbol(nil), rule.LayoutOrExpansion()...)
	nr.Expansion = nr.Expansion[:0]

	for _, sym := range rule.Expansion {
		if !a.isDiscarded(sym) {
			nr.Expansion = append(nr.Expansion, sym)
		}
	}

	return nr
}

// ExpandInlineRules substitutes every inline origin into the rules that refer
// to it.  Origins are processed in reverse declaration order; a parent rule
// referring to an inline origin several times yields one rule per combination
// of the origin's alternatives.
func (a *Analyzer) ExpandInlineRules() (*Analyzer, error) {
	byOrigin := make(map[string][]*syntax.Rule, len(a.rulesByOrigin))
	for origin, rules := range a.rulesByOrigin {
		byOrigin[origin] = rules
	}

	remaining := append([]string(nil), a.origins...)

	for i := len(a.origins) - 1; i >= 0; i-- {
		origin := a.origins[i]
		rules := byOrigin[origin]

		inline := syntax.IsInlineRule(rules[0])
		for _, r := range rules[1:] {
			if syntax.IsInlineRule(r) != inline {
				return nil, fmt.Errorf("%w: inconsistent set of inline rules for origin `%s`", ErrGrammarConsistency, origin)
			}
		}

		if !inline {
			continue
		}

		if origin == a.start {
			return nil, fmt.Errorf("%w: start symbol `%s` cannot be inline", ErrGrammarConsistency, origin)
		}

		for _, r := range rules {
			if refersTo(r, origin) {
				return nil, fmt.Errorf("%w: inline origin `%s` is recursive", ErrGrammarConsistency, origin)
			}
		}

		delete(byOrigin, origin)
		remaining = removeName(remaining, origin)

		for _, parent := range remaining {
			var expanded []*syntax.Rule
			changed := false

			for _, pr := range byOrigin[parent] {
				if !refersTo(pr, origin) {
					expanded = append(expanded, pr)
					continue
				}

				changed = true
				expanded = append(expanded, substitute(pr, origin, rules)...)
			}

			if changed {
				byOrigin[parent] = dedupe(expanded)
			}
		}
	}

	var result []*syntax.Rule
	for _, origin := range remaining {
		result = append(result, byOrigin[origin]...)
	}

	return a.derive(result, a.start), nil
}

// refersTo reports whether a rule's expansion mentions a nonterminal
func refersTo(r *syntax.Rule, origin string) bool {
	for _, sym := range r.Expansion {
		if !sym.Terminal && sym.Name == origin {
			return true
		}
	}

	return false
}

// substitute replaces every occurrence of origin in parent by each
// combination of the bodies of rules.  Discarded terminals only live in
// layouts and never in between nonterminals' positions, so expansion and
// layout are substituted with the same choice per occurrence.
func substitute(parent *syntax.Rule, origin string, rules []*syntax.Rule) []*syntax.Rule {
	occurrences := 0
	for _, sym := range parent.Expansion {
		if !sym.Terminal && sym.Name == origin {
			occurrences++
		}
	}

	hasLayout := parent.Layout != nil
	for _, r := range rules {
		hasLayout = hasLayout || r.Layout != nil
	}

	// choices enumerates one alternative index per occurrence, the first
	// occurrence varying slowest
	choices := [][]int{nil}
	for i := 0; i < occurrences; i++ {
		next := make([][]int, 0, len(choices)*len(rules))
		for _, c := range choices {
			for j := range rules {
				next = append(next, append(c[:len(c):len(c)], j))
			}
		}
		choices = next
	}

	result := make([]*syntax.Rule, len(choices))
	for i, choice := range choices {
		nr := &syntax.Rule{
			Origin:    parent.Origin,
			Expansion: splice(parent.Expansion, origin, rules, choice, expansionOf),
			Order:     parent.Order,
			Alias:     parent.Alias,
			Options:   parent.Options,
		}

		if hasLayout {
			nr.Layout = splice(parent.LayoutOrExpansion(), origin, rules, choice, (*syntax.Rule).LayoutOrExpansion)
		}

		result[i] = nr
	}

	return result
}

func expansionOf(r *syntax.Rule) []syntax.Symbol {
	return r.Expansion
}

// splice substitutes the n-th occurrence of origin in syms by the body of
// rules[choice[n]]
func splice(syms []syntax.Symbol, origin string, rules []*syntax.Rule, choice []int, body func(*syntax.Rule) []syntax.Symbol) []syntax.Symbol {
	out := make([]syntax.Symbol, 0, len(syms))

	n := 0
	for _, sym := range syms {
		if !sym.Terminal && sym.Name == origin {
			out = append(out, body(rules[choice[n]])...)
			n++
		} else {
			out = append(out, sym)
		}
	}

	return out
}

func removeName(names []string, name string) []string {
	out := names[:0:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}

	return out
}

// dedupe removes structurally identical rules keeping the first occurrence
func dedupe(rules []*syntax.Rule) []*syntax.Rule {
	seen := make(map[string]bool, len(rules))
	out := rules[:0:0]
	for _, r := range rules {
		if key := r.Key(); !seen[key] {
			seen[key] = true
			out = append(out, r)
		}
	}

	return out
}

// visitOnce returns the shared traversal predicate: true the first time a rule
// is seen, false afterwards
func visitOnce() func(*syntax.Rule) bool {
	visited := make(map[string]bool)

	return func(r *syntax.Rule) bool {
		key := r.Key()
		if visited[key] {
			return false
		}

		visited[key] = true
		return true
	}
}

// children returns the rules reachable in one step from a rule
func (a *Analyzer) children(r *syntax.Rule) []*syntax.Rule {
	var next []*syntax.Rule
	for _, sym := range r.Expansion {
		if !sym.Terminal {
			next = append(next, a.rulesByOrigin[sym.Name]...)
		}
	}

	return next
}

// breadthFirst visits the rules reachable from start level by level
func (a *Analyzer) breadthFirst(start string, pred func(*syntax.Rule) bool) []*syntax.Rule {
	var result []*syntax.Rule

	queue := append([]*syntax.Rule(nil), a.rulesByOrigin[start]...)
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]

		if pred(r) {
			result = append(result, r)
			queue = append(queue, a.children(r)...)
		}
	}

	return result
}

// depthFirst visits the rules reachable from start, descending into each
// rule's children before moving on to its siblings
func (a *Analyzer) depthFirst(start string, pred func(*syntax.Rule) bool) []*syntax.Rule {
	var result []*syntax.Rule

	var visit func(r *syntax.Rule)
	visit = func(r *syntax.Rule) {
		if !pred(r) {
			return
		}

		result = append(result, r)
		for _, c := range a.children(r) {
			visit(c)
		}
	}

	for _, r := range a.rulesByOrigin[start] {
		visit(r)
	}

	return result
}

// GetRules returns the sub-grammar reachable from start (the grammar's start
// symbol when empty), breadth first
func (a *Analyzer) GetRules(start string) []*syntax.Rule {
	if start == "" {
		start = a.start
	}

	return a.breadthFirst(start, visitOnce())
}

// Sort orders names by their first appearance in a depth first walk of the
// grammar.  Duplicates collapse; names that never appear keep their relative
// order at the end.
func (a *Analyzer) Sort(names []string) []string {
	position := make(map[string]int)
	record := func(name string) {
		if _, ok := position[name]; !ok {
			position[name] = len(position)
		}
	}

	for _, r := range a.depthFirst(a.start, visitOnce()) {
		record(r.Origin.Name)
		for _, sym := range r.Expansion {
			if sym.Terminal {
				record(sym.Name)
			}
		}
	}

	seen := make(map[string]bool, len(names))
	sorted := make([]string, 0, len(names))
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			sorted = append(sorted, name)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		pi, iok := position[sorted[i]]
		pj, jok := position[sorted[j]]

		switch {
		case iok && jok:
			return pi < pj
		case iok:
			return true
		default:
			return false
		}
	})

	return sorted
}

// Trim cuts the grammar at the given names: rules whose origin is named are
// dropped (and not descended into) and references to named nonterminals in
// the kept rules become terminal placeholders of the same name
func (a *Analyzer) Trim(names []string) (*Analyzer, error) {
	trimmed := make(map[string]bool, len(names))
	for _, n := range names {
		trimmed[n] = true
	}

	if trimmed[a.start] {
		return nil, fmt.Errorf("%w: start symbol `%s` cannot be trimmed", ErrGrammarConsistency, a.start)
	}

	once := visitOnce()
	pred := func(r *syntax.Rule) bool {
		return !trimmed[r.Origin.Name] && once(r)
	}

	placeholder := func(syms []syntax.Symbol) []syntax.Symbol {
		if syms == nil {
			return nil
		}

		out := make([]syntax.Symbol, len(syms))
		for i, sym := range syms {
			if !sym.Terminal && trimmed[sym.Name] {
				out[i] = syntax.Term(sym.Name)
			} else {
				out[i] = sym
			}
		}

		return out
	}

	var rules []*syntax.Rule
	for _, r := range a.breadthFirst(a.start, pred) {
		nr := r.Copy()
		nr.Expansion = placeholder(r.Expansion)
		nr.Layout = placeholder(r.Layout)
		rules = append(rules, nr)
	}

	return a.derive(rules, a.start), nil
}
