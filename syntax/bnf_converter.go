package syntax

import (
	"fmt"
	"regexp"
	"strings"
)

// expandAlternatives flattens an EBNF group into the list of plain symbol
// sequences it can stand for.  Groups and alternators are cross-producted
// into their surroundings and optionals contribute a variant with and a
// variant without their content (in that order).  Nothing is lowered into
// anonymous productions so every alternative becomes one rule of its origin.
func expandAlternatives(group []GrammaticalElement) [][]GrammaticalElement {
	variants := [][]GrammaticalElement{nil}

	for _, item := range group {
		switch item.Kind() {
		case GKindAlternator:
			var alts [][]GrammaticalElement
			for _, g := range item.(*AlternatorElement).groups {
				alts = append(alts, expandAlternatives(g)...)
			}

			variants = crossProduct(variants, alts)
		case GKindGroup:
			variants = crossProduct(variants, expandAlternatives(item.(*GroupingElement).elements))
		case GKindOptional:
			alts := expandAlternatives(item.(*GroupingElement).elements)
			variants = crossProduct(variants, append(alts, nil))
		default:
			for i, v := range variants {
				variants[i] = append(v[:len(v):len(v)], item)
			}
		}
	}

	return variants
}

// crossProduct appends every suffix to every prefix, prefixes varying slowest
func crossProduct(prefixes, suffixes [][]GrammaticalElement) [][]GrammaticalElement {
	result := make([][]GrammaticalElement, 0, len(prefixes)*len(suffixes))
	for _, p := range prefixes {
		for _, s := range suffixes {
			v := make([]GrammaticalElement, 0, len(p)+len(s))
			v = append(v, p...)
			result = append(result, append(v, s...))
		}
	}

	return result
}

// literalTerminalName is the name given to an anonymous literal used inside a
// rule.  It is never qualified so the same literal is one terminal everywhere.
func literalTerminalName(lit string) string {
	return `"` + lit + `"`
}

// terminalPattern converts the body of a terminal production into a regular
// expression.  References to other terminals are resolved through `lookup`.
func terminalPattern(group []GrammaticalElement, lookup func(string) (string, error)) (string, error) {
	sb := strings.Builder{}

	for _, item := range group {
		switch v := item.(type) {
		case Literal:
			sb.WriteString(regexp.QuoteMeta(string(v)))
		case Regex:
			sb.WriteString("(?:" + string(v) + ")")
		case Name:
			pattern, err := lookup(string(v))
			if err != nil {
				return "", err
			}

			sb.WriteString("(?:" + pattern + ")")
		case *GroupingElement:
			inner, err := terminalPattern(v.elements, lookup)
			if err != nil {
				return "", err
			}

			sb.WriteString("(?:" + inner + ")")
			if v.kind == GKindOptional {
				sb.WriteRune('?')
			}
		case *AlternatorElement:
			alts := make([]string, len(v.groups))
			for i, g := range v.groups {
				inner, err := terminalPattern(g, lookup)
				if err != nil {
					return "", err
				}

				alts[i] = inner
			}

			sb.WriteString("(?:" + strings.Join(alts, "|") + ")")
		default:
			return "", fmt.Errorf("unsupported element in terminal: %v", item)
		}
	}

	return sb.String(), nil
}

// plainLiteral returns the text of a terminal body made of exactly one literal
func plainLiteral(group []GrammaticalElement) (string, bool) {
	if len(group) == 1 {
		if lit, ok := group[0].(Literal); ok {
			return string(lit), true
		}
	}

	return "", false
}
