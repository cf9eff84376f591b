package syntax

import (
	"fmt"
	"reflect"
	"strings"
)

// Node is a node of a parse tree: either a *Token or a *Tree
type Node interface {
	// NodeName is the token type of a leaf or the label of a branch
	NodeName() string
}

// Token is a leaf of the tree.  Its value is the matched text straight out of
// the parser and the decoded domain value once the tree has been converted.
type Token struct {
	Type  string
	Value any
}

// NodeName of a token is its type
func (t *Token) NodeName() string {
	return t.Type
}

func (t *Token) String() string {
	return fmt.Sprintf("%s(%v)", t.Type, t.Value)
}

// Tree is a labelled branch of the tree
type Tree struct {
	Label    string
	Children []Node

	// Rule is the rule the branch was built from.  It is metadata used to
	// reconstruct text and is ignored by Equal.
	Rule *Rule
}

// NodeName of a branch is its label
func (t *Tree) NodeName() string {
	return t.Label
}

func (t *Tree) String() string {
	parts := make([]string, len(t.Children))
	for i, c := range t.Children {
		parts[i] = fmt.Sprint(c)
	}

	return t.Label + "[" + strings.Join(parts, ", ") + "]"
}

// ScanValues returns the values of every token below the tree from left to
// right
func (t *Tree) ScanValues() []any {
	var values []any
	for _, c := range t.Children {
		switch v := c.(type) {
		case *Token:
			values = append(values, v.Value)
		case *Tree:
			values = append(values, v.ScanValues()...)
		}
	}

	return values
}

// Subtrees returns every branch of the tree bottom-up: children always come
// before their parents
func (t *Tree) Subtrees() []*Tree {
	var trees []*Tree
	for _, c := range t.Children {
		if sub, ok := c.(*Tree); ok {
			trees = append(trees, sub.Subtrees()...)
		}
	}

	return append(trees, t)
}

// Equal compares two nodes structurally
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Token:
		y, ok := b.(*Token)
		return ok && x.Type == y.Type && reflect.DeepEqual(x.Value, y.Value)
	case *Tree:
		y, ok := b.(*Tree)
		if !ok || x.Label != y.Label || len(x.Children) != len(y.Children) {
			return false
		}

		for i := range x.Children {
			if !Equal(x.Children[i], y.Children[i]) {
				return false
			}
		}

		return true
	}

	return a == nil && b == nil
}
