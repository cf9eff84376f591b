package syntax

import (
	"fmt"
	"strings"
)

// Reconstruct turns a tree built from the rules of g back into text.  Each
// branch must carry the rule it was built from: the rule's layout is walked,
// discarded literals are written out again and every other symbol consumes
// the next child.  Nothing is inserted between tokens.
func Reconstruct(tree *Tree, g *Grammar) (string, error) {
	sb := strings.Builder{}
	if err := reconstructInto(&sb, tree, g); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func reconstructInto(sb *strings.Builder, tree *Tree, g *Grammar) error {
	if tree.Rule == nil {
		return fmt.Errorf("cannot reconstruct `%s`: branch has no rule", tree.Label)
	}

	next := 0
	for _, sym := range tree.Rule.LayoutOrExpansion() {
		if g.IsDiscarded(sym) {
			td := g.Terminals[sym.Name]
			if td.Literal == "" {
				return fmt.Errorf("cannot reconstruct discarded terminal `%s`: it is not a literal", sym.Name)
			}

			sb.WriteString(td.Literal)
			continue
		}

		if next >= len(tree.Children) {
			return fmt.Errorf("cannot reconstruct `%s`: missing child for `%s`", tree.Label, sym.Name)
		}

		switch v := tree.Children[next].(type) {
		case *Token:
			s, ok := v.Value.(string)
			if !ok {
				return fmt.Errorf("cannot reconstruct `%s`: token `%s` holds %T, not text", tree.Label, v.Type, v.Value)
			}

			sb.WriteString(s)
		case *Tree:
			if err := reconstructInto(sb, v, g); err != nil {
				return err
			}
		}

		next++
	}

	if next != len(tree.Children) {
		return fmt.Errorf("cannot reconstruct `%s`: %d unexpected children", tree.Label, len(tree.Children)-next)
	}

	return nil
}
