package syntax

import (
	"regexp"
	"strconv"
	"strings"
)

// Symbol is a grammar symbol: either a terminal or a nonterminal.  Two symbols
// are the same only if both their name and their kind agree.
type Symbol struct {
	Name     string
	Terminal bool
}

// Term creates a terminal symbol
func Term(name string) Symbol {
	return Symbol{Name: name, Terminal: true}
}

// NonTerm creates a nonterminal symbol
func NonTerm(name string) Symbol {
	return Symbol{Name: name}
}

func (s Symbol) String() string {
	return s.Name
}

// RuleOptions are the flags a rule carries over from its production
type RuleOptions struct {
	// Inline rules never appear as tree nodes: their children are spliced
	// into the parent
	Inline bool

	// ExpandSingleChild rules are replaced by their child when they have
	// exactly one
	ExpandSingleChild bool
}

// Rule is a single BNF rule: one alternative of a production
type Rule struct {
	Origin    Symbol
	Expansion []Symbol

	// Order is the index of this alternative within its origin
	Order int

	Alias   string
	Options RuleOptions

	// Layout is the expansion before discarded terminals were removed.  It is
	// nil while nothing has been discarded.  Reconstruction walks the layout
	// to put punctuation back.
	Layout []Symbol
}

// Key is the structural identity of a rule
func (r *Rule) Key() string {
	sb := strings.Builder{}
	sb.WriteString(r.Origin.Name)
	sb.WriteString(" :")
	for _, sym := range r.Expansion {
		sb.WriteRune(' ')
		if sym.Terminal {
			sb.WriteRune('$')
		}
		sb.WriteString(sym.Name)
	}
	sb.WriteString(" #")
	sb.WriteString(strconv.Itoa(r.Order))
	if r.Alias != "" {
		sb.WriteString(" -> ")
		sb.WriteString(r.Alias)
	}

	return sb.String()
}

// String prints the rule in the `<origin : a b C>` form
func (r *Rule) String() string {
	names := make([]string, len(r.Expansion))
	for i, sym := range r.Expansion {
		names[i] = sym.Name
	}

	return "<" + r.Origin.Name + " : " + strings.Join(names, " ") + ">"
}

// LayoutOrExpansion returns the symbols a reconstruction of this rule must
// emit in order
func (r *Rule) LayoutOrExpansion() []Symbol {
	if r.Layout != nil {
		return r.Layout
	}

	return r.Expansion
}

// Copy returns a shallow copy of the rule with its own expansion slices
func (r *Rule) Copy() *Rule {
	nr := *r
	nr.Expansion = append([]Symbol(nil), r.Expansion...)
	if r.Layout != nil {
		nr.Layout = append([]Symbol(nil), r.Layout...)
	}

	return &nr
}

// IsInlineRule reports whether a rule is purely structural: its origin starts
// with an underscore, it expands single children or it is aliased
func IsInlineRule(r *Rule) bool {
	return strings.HasPrefix(r.Origin.Name, "_") || r.Options.ExpandSingleChild || r.Alias != ""
}

// TerminalDef is the compiled pattern of a terminal
type TerminalDef struct {
	Name string

	// Pattern is the unanchored regular expression source of the terminal
	Pattern string

	// Literal is the text of the terminal when it is a plain string
	Literal string

	// Discard marks terminals that never appear in trees (anonymous literals
	// and terminals whose name begins with an underscore)
	Discard bool

	prefix *regexp.Regexp
	full   *regexp.Regexp
}

func newTerminalDef(name, pattern, literal string, discard bool) (*TerminalDef, error) {
	prefix, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, err
	}
	prefix.Longest()

	full, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, err
	}

	return &TerminalDef{
		Name:    name,
		Pattern: pattern,
		Literal: literal,
		Discard: discard,
		prefix:  prefix,
		full:    full,
	}, nil
}

// MatchPrefix returns the length of the longest match of the terminal at the
// start of s, or -1 if it does not match.  Empty matches never count.
func (td *TerminalDef) MatchPrefix(s string) int {
	loc := td.prefix.FindStringIndex(s)
	if loc == nil || loc[1] == 0 {
		return -1
	}

	return loc[1]
}

// MatchString reports whether all of s matches the terminal
func (td *TerminalDef) MatchString(s string) bool {
	return td.full.MatchString(s)
}

// Grammar is a loaded rule set together with its terminal table
type Grammar struct {
	// Name is the file (or asset class) the grammar was loaded from
	Name string

	Rules     []*Rule
	Terminals map[string]*TerminalDef

	// Start is the name of the start nonterminal
	Start string
}

// RulesOf returns the rules of a given origin in declaration order
func (g *Grammar) RulesOf(origin string) []*Rule {
	var rules []*Rule
	for _, r := range g.Rules {
		if r.Origin.Name == origin {
			rules = append(rules, r)
		}
	}

	return rules
}

// IsDiscarded reports whether a symbol is a terminal that is silently
// dropped from trees
func (g *Grammar) IsDiscarded(sym Symbol) bool {
	if !sym.Terminal {
		return false
	}

	if td, ok := g.Terminals[sym.Name]; ok {
		return td.Discard
	}

	return false
}
