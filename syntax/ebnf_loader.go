package syntax

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// simple scanner/parser to read in one grammar file
type gramLoader struct {
	file    *bufio.Reader
	grammar *sourceGrammar
	curr    rune
	line    uint
}

// readGrammar reads a single grammar source and returns whether or not loading
// was successful (fails if grammar is syntactically invalid)
func readGrammar(name string, r io.Reader) (*sourceGrammar, error) {
	gl := &gramLoader{
		file: bufio.NewReader(r),
		grammar: &sourceGrammar{
			name:        name,
			productions: make(map[string]*production),
		},
		line: 1,
	}

	if err := gl.load(); err != nil {
		return nil, fmt.Errorf("grammar `%s`: %w", name, err)
	}

	return gl.grammar, nil
}

// load the grammar into a grammar struct
func (gl *gramLoader) load() error {
	for {
		ok, err := gl.next()
		if err != nil {
			return err
		} else if !ok {
			return nil
		}

		switch gl.curr {
		// skip whitespace and byte order marks, lines counted in next()
		case ' ', '\t', '\n', '\r', 65279:
			// break
		// read comments (starting with `(*`)
		case '(':
			if b, berr := gl.peek(); berr == nil && b == '*' {
				if err := gl.skipComment(); err != nil {
					return err
				}
				break
			}

			return gl.unexpectedToken()
		case '%':
			if err := gl.readImport(); err != nil {
				return err
			}
		case '?':
			if _, err := gl.next(); err != nil {
				return err
			}

			if !IsLetter(gl.curr) && gl.curr != '_' {
				return gl.unexpectedToken()
			}

			if err := gl.readProduction(true); err != nil {
				return err
			}
		// outer loading algorithm only expects whitespace, comments, imports
		// and productions
		default:
			if IsLetter(gl.curr) || gl.curr == '_' {
				if err := gl.readProduction(false); err != nil {
					return err
				}
			} else {
				return gl.unexpectedToken()
			}
		}
	}
}

// read a rune from the stream and store it
func (gl *gramLoader) next() (bool, error) {
	r, _, err := gl.file.ReadRune()

	if err != nil {
		if err == io.EOF {
			return false, nil
		}

		return false, err
	}

	if r == '\n' {
		gl.line++
	}

	gl.curr = r
	return true, nil
}

// advance is next() for positions where EOF is an error
func (gl *gramLoader) advance() error {
	ok, err := gl.next()
	if err != nil {
		return err
	} else if !ok {
		return errors.New("unexpected EOF")
	}

	return nil
}

// peek and convert to rune if successful, return error if not (rune is 0 then)
func (gl *gramLoader) peek() (rune, error) {
	b, berr := gl.file.Peek(1)

	if berr != nil {
		return 0, berr
	}

	return rune(b[0]), nil
}

// read a comment to conclusion
func (gl *gramLoader) skipComment() error {
	// skip opening '*'
	if err := gl.advance(); err != nil {
		return err
	}

	for {
		if err := gl.advance(); err != nil {
			return errors.New("comment not closed before EOF")
		}

		if gl.curr == '*' {
			ahead, err := gl.peek()

			if err == nil && ahead == ')' {
				return gl.advance()
			}
		}
	}
}

// returns an unexpected token error
func (gl *gramLoader) unexpectedToken() error {
	return fmt.Errorf("unexpected token `%c` on line %d", gl.curr, gl.line)
}

// skipSpace advances past whitespace and returns the first other rune
func (gl *gramLoader) skipSpace() error {
	for {
		if err := gl.advance(); err != nil {
			return err
		}

		switch gl.curr {
		case ' ', '\t', '\n', '\r':
			continue
		}

		return nil
	}
}

// readImport reads an `%import file (a, b) ;` statement; the leading `%` is
// the current rune
func (gl *gramLoader) readImport() error {
	if err := gl.advance(); err != nil {
		return err
	}

	if keyword := gl.readName(); keyword != "import" {
		return fmt.Errorf("unknown directive `%%%s` on line %d", keyword, gl.line)
	}

	decl := &importDecl{line: gl.line}

	if err := gl.skipSpace(); err != nil {
		return err
	}
	if !IsLetter(gl.curr) {
		return gl.unexpectedToken()
	}
	decl.file = gl.readName()

	if err := gl.skipSpace(); err != nil {
		return err
	} else if gl.curr != '(' {
		return gl.unexpectedToken()
	}

	for {
		if err := gl.skipSpace(); err != nil {
			return err
		}

		switch {
		case IsLetter(gl.curr) || gl.curr == '_':
			decl.names = append(decl.names, gl.readName())
		case gl.curr == ',':
			continue
		case gl.curr == ')':
			if len(decl.names) == 0 {
				return fmt.Errorf("empty import on line %d", gl.line)
			}

			if err := gl.skipSpace(); err != nil {
				return err
			} else if gl.curr != ';' {
				return gl.unexpectedToken()
			}

			gl.grammar.imports = append(gl.grammar.imports, decl)
			return nil
		default:
			return gl.unexpectedToken()
		}
	}
}

// load and parse a production
func (gl *gramLoader) readProduction(expandSingle bool) error {
	line := gl.line
	name := gl.readName()

	if _, ok := gl.grammar.productions[name]; ok {
		return fmt.Errorf("production `%s` redefined on line %d", name, line)
	}

	if err := gl.skipSpace(); err != nil {
		return err
	} else if gl.curr != '=' {
		return gl.unexpectedToken()
	}

	// production is just group ending in ';'
	gelems, err := gl.parseGroupContent(';')
	if err != nil {
		return err
	}

	if expandSingle && isTerminalName(name) {
		return fmt.Errorf("terminal `%s` cannot expand single children (line %d)", name, line)
	}

	gl.grammar.productions[name] = &production{
		name:         name,
		body:         gelems,
		expandSingle: expandSingle,
		line:         line,
	}
	gl.grammar.order = append(gl.grammar.order, name)
	return nil
}

// parse a group or production to a closer
func (gl *gramLoader) parseGroupContent(expectedCloser rune) ([]GrammaticalElement, error) {
	var groupContent []GrammaticalElement

	for {
		if err := gl.advance(); err != nil {
			return nil, errors.New("grammatical group not closed before EOF")
		}

		switch gl.curr {
		case ' ', '\t', '\n', '\r':
			// ignore whitespace
			continue
		case '(':
			gelems, err := gl.parseGroupContent(')')

			if err != nil {
				return nil, err
			}

			groupContent = append(groupContent, NewGroupingElement(GKindGroup, gelems))
		case '[':
			gelems, err := gl.parseGroupContent(']')

			if err != nil {
				return nil, err
			}

			groupContent = append(groupContent, NewGroupingElement(GKindOptional, gelems))
		case '{':
			return nil, fmt.Errorf("repetition is not supported (line %d)", gl.line)
		// alternators interrupt the current parsing group and create a new one
		// to the same closer so that they can combine the tailing elements with
		// the elements before them.  alternators will only ever return as the
		// only element in their group so if a group starts with an alternator,
		// we know that is all it is
		case '|':
			if len(groupContent) == 0 {
				return nil, fmt.Errorf("unable to allow empty alternator branch on line %d", gl.line)
			}

			tailContent, err := gl.parseGroupContent(expectedCloser)

			if err != nil {
				return nil, err
			}

			if tailContent[0].Kind() == GKindAlternator {
				alternator := tailContent[0].(*AlternatorElement)
				alternator.PushFront(groupContent)

				return []GrammaticalElement{alternator}, nil
			}

			return []GrammaticalElement{NewAlternatorElement(groupContent, tailContent)}, nil
		case '"':
			lit, err := gl.readDelimited('"')

			if err != nil {
				return nil, err
			} else if lit == "" {
				return nil, fmt.Errorf("empty literal on line %d", gl.line)
			}

			groupContent = append(groupContent, Literal(lit))
		case '/':
			pattern, err := gl.readDelimited('/')

			if err != nil {
				return nil, err
			} else if pattern == "" {
				return nil, fmt.Errorf("empty pattern on line %d", gl.line)
			}

			groupContent = append(groupContent, Regex(pattern))
		case expectedCloser:
			// if we encounter an empty production or group than we cannot close
			// on it
			if len(groupContent) == 0 {
				return nil, fmt.Errorf("unable to allow empty grammatical group on line %d", gl.line)
			}

			return groupContent, nil
		default:
			if IsLetter(gl.curr) || gl.curr == '_' {
				groupContent = append(groupContent, Name(gl.readName()))
			} else {
				return nil, gl.unexpectedToken()
			}
		}
	}
}

// readDelimited reads a literal or a regex up to its closing delimiter.  A
// backslash escapes the delimiter; inside literals it also escapes itself.
func (gl *gramLoader) readDelimited(delim rune) (string, error) {
	sb := strings.Builder{}

	for {
		if err := gl.advance(); err != nil {
			return "", err
		}

		switch gl.curr {
		case delim:
			return sb.String(), nil
		case '\n':
			return "", fmt.Errorf("unterminated `%c` on line %d", delim, gl.line-1)
		case '\\':
			if err := gl.advance(); err != nil {
				return "", err
			}

			if gl.curr != delim && (delim == '/' || gl.curr != '\\') {
				sb.WriteRune('\\')
			}
		}

		sb.WriteRune(gl.curr)
	}
}

// readName reads a name starting at the current rune.  The current rune is
// assumed to be valid; runes are peeked so the rune after the name is not
// consumed.
func (gl *gramLoader) readName() string {
	nameBuilder := strings.Builder{}

	for {
		nameBuilder.WriteRune(gl.curr)

		c, err := gl.peek()
		if err == nil && (IsLetter(c) || IsDigit(c) || c == '_') {
			gl.next()
		} else {
			break
		}
	}

	return nameBuilder.String()
}
