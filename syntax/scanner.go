package syntax

import "fmt"

// IsLetter tests if a rune is an ASCII character
func IsLetter(r rune) bool {
	return r > '`' && r < '{' || r > '@' && r < '[' // avoid using <= and >= by checking characters on boundaries (same for IsDigit)
}

// IsDigit tests if a rune is an ASCII digit
func IsDigit(r rune) bool {
	return r > '/' && r < ':'
}

// Scanner reads tokens out of shorthand text on demand: there is no separate
// lexing pass, the parser asks for the terminal it expects at an offset and
// the terminal's pattern is matched there (longest match wins)
type Scanner struct {
	text      string
	terminals map[string]*TerminalDef
}

// NewScanner creates a scanner over text for the terminals of a grammar
func NewScanner(text string, g *Grammar) *Scanner {
	return &Scanner{text: text, terminals: g.Terminals}
}

// Len is the length of the scanned text in bytes
func (s *Scanner) Len() int {
	return len(s.text)
}

// Text returns the scanned text
func (s *Scanner) Text() string {
	return s.text
}

// Scan matches the terminal at the given offset and returns the token read and
// the offset just past it.  No token is returned if the terminal does not
// match.
func (s *Scanner) Scan(sym Symbol, offset int) (*Token, int) {
	td, ok := s.terminals[sym.Name]
	if !ok || offset >= len(s.text) {
		return nil, offset
	}

	n := td.MatchPrefix(s.text[offset:])
	if n < 0 {
		return nil, offset
	}

	return &Token{Type: sym.Name, Value: s.text[offset : offset+n]}, offset + n
}

// Describe returns a short description of the text at an offset for use in
// error messages
func (s *Scanner) Describe(offset int) string {
	if offset >= len(s.text) {
		return "end of input"
	}

	return fmt.Sprintf("%q at column %d", s.text[offset:], offset+1)
}
