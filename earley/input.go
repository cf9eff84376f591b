package earley

import (
	"fmt"

	"github.com/ComedicChimera/ratesfmt/syntax"
)

// Input is what a parser reads: positions run from 0 to Len()
type Input interface {
	// Len is the position of the end of the input
	Len() int

	// Describe returns a short description of the input at a position for
	// use in error messages
	Describe(pos int) string

	// scan reads the terminal at a position and returns the leaf standing for
	// it together with the position just past it
	scan(p *Parser, term syntax.Symbol, pos int) (syntax.Node, int, bool)
}

// Items is an input made of already built nodes: each item occupies one
// position and is matched against terminals by the parser's matcher
type Items []syntax.Node

func (it Items) Len() int {
	return len(it)
}

func (it Items) Describe(pos int) string {
	if pos >= len(it) {
		return "end of input"
	}

	return fmt.Sprintf("item %d (`%s`)", pos+1, it[pos].NodeName())
}

func (it Items) scan(p *Parser, term syntax.Symbol, pos int) (syntax.Node, int, bool) {
	if pos >= len(it) || !p.match(term, it[pos]) {
		return nil, pos, false
	}

	return it[pos], pos + 1, true
}

// textInput reads terminals straight out of text: positions are byte offsets
type textInput struct {
	sc *syntax.Scanner
}

// Text creates an input reading the text of a scanner
func Text(sc *syntax.Scanner) Input {
	return textInput{sc: sc}
}

func (ti textInput) Len() int {
	return ti.sc.Len()
}

func (ti textInput) Describe(pos int) string {
	return ti.sc.Describe(pos)
}

func (ti textInput) scan(_ *Parser, term syntax.Symbol, pos int) (syntax.Node, int, bool) {
	tok, end := ti.sc.Scan(term, pos)
	if tok == nil {
		return nil, pos, false
	}

	return tok, end, true
}
