package syntax

import "github.com/ComedicChimera/ratesfmt/common"

// sourceGrammar is the content of one grammar file as it is read in: its
// productions in declaration order and the imports it declares
type sourceGrammar struct {
	name        string
	productions map[string]*production
	order       []string
	imports     []*importDecl
}

// production is a single named EBNF production.  Terminal productions have
// upper-case names.
type production struct {
	name string
	body []GrammaticalElement

	// expandSingle is set by a leading `?` on the production name
	expandSingle bool

	line uint
}

// importDecl is a single `%import file (a, B, ...) ;` statement
type importDecl struct {
	file  string
	names []string
	line  uint
}

// Used to designate the different kinds of grammatical constructs
const (
	GKindAlternator = iota
	GKindGroup
	GKindOptional
	GKindLiteral
	GKindRegex
	GKindName
)

// GrammaticalElement represents a piece of the grammar once it is serialized
// into an object
type GrammaticalElement interface {
	Kind() int
}

// Literal is a quoted string in the grammar
type Literal string

// Regex is a `/.../` pattern in the grammar
type Regex string

// Name is a reference to another production (terminal or rule)
type Name string

// GroupingElement represents groups and optionals
type GroupingElement struct {
	kind     int
	elements []GrammaticalElement
}

// NewGroupingElement creates a new grouping element
func NewGroupingElement(kind int, elems []GrammaticalElement) *GroupingElement {
	return &GroupingElement{kind: kind, elements: elems}
}

func (Literal) Kind() int {
	return GKindLiteral
}

func (Regex) Kind() int {
	return GKindRegex
}

func (Name) Kind() int {
	return GKindName
}

// Kind returns the kind of grouping elements based on the stored kind member
// variable
func (g *GroupingElement) Kind() int {
	return g.kind
}

// AlternatorElement represents a grammatical alternator storing a slice of the
// subgroups it alternates between
type AlternatorElement struct {
	groups [][]GrammaticalElement
}

// NewAlternatorElement create a new alternator element from some number of
// groups efficiently
func NewAlternatorElement(groups ...[]GrammaticalElement) *AlternatorElement {
	return &AlternatorElement{groups: groups}
}

// Kind of alternator is GKindAlternator
func (AlternatorElement) Kind() int {
	return GKindAlternator
}

// PushFront pushes a group onto the front of alternator element
func (ae *AlternatorElement) PushFront(group []GrammaticalElement) {
	ae.groups = append([][]GrammaticalElement{group}, ae.groups...)
}

// isTerminalName reports whether a production name denotes a terminal:
// terminals are written in upper case (a leading underscore is allowed)
func isTerminalName(name string) bool {
	hasLetter := false
	for _, r := range common.ToPathRoot(name) {
		if r >= 'a' && r <= 'z' {
			return false
		}

		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}

	return hasLetter
}
