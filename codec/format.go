package codec

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/ComedicChimera/ratesfmt/common"
	"github.com/ComedicChimera/ratesfmt/conversion"
	"github.com/ComedicChimera/ratesfmt/earley"
	"github.com/ComedicChimera/ratesfmt/processing"
	"github.com/ComedicChimera/ratesfmt/syntax"
)

// Format writes the attributes of a product as shorthand.  Flags set to
// false are left out.
func (c *Codec) Format(assetClass, productType string, attrs Attributes) (string, error) {
	pf, err := c.formatter(assetClass, productType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnformattable, err)
	}

	text, err := pf.format(attrs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrUnformattable, processing.Key(assetClass, productType), err)
	}

	return text, nil
}

func (pf *productFormatter) format(attrs Attributes) (string, error) {
	nodes, err := pf.processor.Expand(pf.attributeNodes(attrs))
	if err != nil {
		return "", err
	}

	resolved := make([]syntax.Node, len(nodes))
	names := make([]string, len(nodes))
	for i, n := range nodes {
		switch v := n.(type) {
		case *syntax.Tree:
			resolved[i], err = pf.resolveTree(v)
		case *syntax.Token:
			resolved[i], err = pf.resolveToken(v)
		}

		if err != nil {
			return "", err
		}

		names[i] = n.NodeName()
	}

	names = pf.analyzer.Sort(names)

	trimmed, err := pf.analyzer.Trim(names)
	if err != nil {
		return "", err
	}

	p := earley.New(trimmed.Rules(), trimmed.Start(), earley.WithCallback(pf.buildTree))
	root, err := p.Parse(earley.Items(resolved))
	if err != nil {
		return "", fmt.Errorf("attributes %s: %w", strings.Join(names, ", "), err)
	}

	return syntax.Reconstruct(root.(*syntax.Tree), pf.grammar)
}

// attributeNodes turns each attribute into a token named after the terminal
// it stands for or, if the attribute is a rule of the grammar, into a branch
// holding one untyped leaf per value
func (pf *productFormatter) attributeNodes(attrs Attributes) []syntax.Node {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	nodes := make([]syntax.Node, 0, len(names))
	for _, name := range names {
		v := attrs[name]
		if b, ok := v.(bool); (ok && !b) || v == nil {
			continue
		}

		if !pf.analyzer.HasOrigin(name) {
			nodes = append(nodes, &syntax.Token{Type: common.ToTerminalName(name), Value: v})
			continue
		}

		values := elements(v)
		leaves := make([]syntax.Node, len(values))
		for i, e := range values {
			leaves[i] = &syntax.Token{Value: e}
		}

		nodes = append(nodes, &syntax.Tree{Label: name, Children: leaves})
	}

	return nodes
}

// elements returns the values of a slice or the value itself
func elements(v any) []any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []any{v}
	}

	values := make([]any, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}

	return values
}

// resolveTree parses the leaves of an attribute branch with the rules of the
// attribute.  If no derivation exists, the first conversion error met while
// matching leaves is reported along with the parse error.
func (pf *productFormatter) resolveTree(t *syntax.Tree) (syntax.Node, error) {
	var convErr error
	match := func(term syntax.Symbol, item syntax.Node) bool {
		ok, err := pf.matchLeaf(term, item)
		if err != nil && convErr == nil {
			convErr = err
		}

		return ok
	}

	p := earley.New(
		pf.analyzer.GetRules(t.Label),
		t.Label,
		earley.WithMatcher(match),
		earley.WithCallback(pf.buildLeafTree),
	)

	node, err := p.Parse(earley.Items(t.Children))
	if err == nil {
		return node, nil
	} else if convErr != nil {
		return nil, fmt.Errorf("attribute `%s` with values %v: %w: %w", t.Label, t.ScanValues(), convErr, err)
	}

	return nil, fmt.Errorf("attribute `%s` with values %v: %w", t.Label, t.ScanValues(), err)
}

// resolveToken encodes an attribute standing for a terminal: it must have a
// converter
func (pf *productFormatter) resolveToken(tok *syntax.Token) (syntax.Node, error) {
	encoded, err := pf.registry.Encode(tok.Type, tok.Value)
	if err != nil {
		return nil, fmt.Errorf("attribute `%s`: %w", common.ToAttributeName(tok.Type), err)
	}

	return encoded, nil
}

// leafText is the text a value takes as a terminal: its encoding if the
// terminal has a converter and the value as a string otherwise
func (pf *productFormatter) leafText(term string, v any) (string, error) {
	tok, err := pf.registry.Encode(term, v)
	if err == nil {
		return fmt.Sprint(tok.Value), nil
	} else if !errors.Is(err, conversion.ErrUnregistered) {
		return "", err
	}

	if s, ok := v.(string); ok {
		return strings.ToUpper(s), nil
	}

	return fmt.Sprint(v), nil
}

// matchLeaf accepts a leaf for a terminal if the text of its value matches
// the terminal's pattern.  Leaves typed by a processor step only stand for
// the terminal of that name.
func (pf *productFormatter) matchLeaf(term syntax.Symbol, item syntax.Node) (bool, error) {
	leaf, ok := item.(*syntax.Token)
	if !ok {
		return false, nil
	}

	if leaf.Type != "" && leaf.Type != common.ToPathRoot(term.Name) {
		return false, nil
	}

	td, ok := pf.grammar.Terminals[term.Name]
	if !ok {
		return false, nil
	}

	text, err := pf.leafText(term.Name, leaf.Value)
	if err != nil {
		return false, err
	}

	return td.MatchString(text), nil
}

// buildLeafTree builds the branch of a rule matched over leaves, turning
// each leaf into a token of the terminal it matched
func (pf *productFormatter) buildLeafTree(rule *syntax.Rule, children []syntax.Node) (syntax.Node, error) {
	converted := make([]syntax.Node, len(children))
	for i, child := range children {
		sym := rule.Expansion[i]

		leaf, ok := child.(*syntax.Token)
		if !ok || !sym.Terminal {
			converted[i] = child
			continue
		}

		text, err := pf.leafText(sym.Name, leaf.Value)
		if err != nil {
			return nil, err
		}

		converted[i] = &syntax.Token{Type: sym.Name, Value: text}
	}

	return pf.buildTree(rule, converted)
}

// buildTree keeps every child: the rules formatting works with have no
// discarded terminals left and no inline rules
func (pf *productFormatter) buildTree(rule *syntax.Rule, children []syntax.Node) (syntax.Node, error) {
	label := rule.Origin.Name
	if rule.Alias != "" {
		label = rule.Alias
	}

	return &syntax.Tree{Label: label, Children: append([]syntax.Node(nil), children...), Rule: rule}, nil
}
