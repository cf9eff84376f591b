package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ComedicChimera/ratesfmt/common"
	"github.com/ComedicChimera/ratesfmt/conversion"
	"github.com/ComedicChimera/ratesfmt/earley"
	"github.com/ComedicChimera/ratesfmt/processing"
	"github.com/ComedicChimera/ratesfmt/syntax"
)

// Parse reads the shorthand of a trade of an asset class and returns its
// product type and attributes.  Text is case-insensitive.
func (c *Codec) Parse(assetClass, text string) (string, Attributes, error) {
	cp, err := c.classParser(assetClass)
	if err != nil {
		return "", nil, err
	}

	text = strings.ToUpper(text)
	chart, err := cp.parser.Recognize(earley.Text(syntax.NewScanner(text, cp.grammar)))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q: %w", ErrMalformedInput, text, err)
	}

	starts := chart.StartRules()
	if len(starts) > 1 {
		products := make([]string, len(starts))
		for i, r := range starts {
			products[i] = r.Expansion[0].Name
		}

		return "", nil, fmt.Errorf("%w: %q reads as more than one product: %s", ErrMalformedInput, text, strings.Join(products, ", "))
	}

	productType := starts[0].Expansion[0].Name

	root, err := chart.Tree()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q: %w", ErrMalformedInput, text, err)
	}

	product, ok := productTree(root)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q: no product branch in parse tree", ErrMalformedInput, text)
	}

	proc, err := processing.Lookup(assetClass, productType)
	if err != nil {
		return "", nil, err
	}

	decoded, err := decodeTokens(product, common.Qualify(assetClass, productType)+common.PathDelimiter, c.registry)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q: %w", ErrMalformedInput, text, err)
	}

	reduced, err := proc.Reduce(rename(decoded))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q: %w", ErrMalformedInput, text, err)
	}

	return productType, collect(reduced, proc), nil
}

// productTree returns the branch of the product below the start branch
func productTree(root syntax.Node) (*syntax.Tree, bool) {
	start, ok := root.(*syntax.Tree)
	if !ok || len(start.Children) != 1 {
		return nil, false
	}

	product, ok := start.Children[0].(*syntax.Tree)
	return product, ok
}

// decodeTokens replaces the text of every token by its decoded value.  Names
// are looked up relative to the product file; tokens without a converter keep
// their text.
func decodeTokens(node syntax.Node, prefix string, registry *conversion.Registry) (syntax.Node, error) {
	switch v := node.(type) {
	case *syntax.Token:
		value, err := registry.Decode(&syntax.Token{Type: strings.TrimPrefix(v.Type, prefix), Value: v.Value})
		if errors.Is(err, conversion.ErrUnregistered) {
			return v, nil
		} else if err != nil {
			return nil, err
		}

		return &syntax.Token{Type: v.Type, Value: value}, nil
	case *syntax.Tree:
		children := make([]syntax.Node, len(v.Children))
		for i, c := range v.Children {
			dc, err := decodeTokens(c, prefix, registry)
			if err != nil {
				return nil, err
			}

			children[i] = dc
		}

		return &syntax.Tree{Label: v.Label, Children: children, Rule: v.Rule}, nil
	}

	return node, nil
}

// rename gives every node its attribute name
func rename(node syntax.Node) syntax.Node {
	switch v := node.(type) {
	case *syntax.Token:
		return &syntax.Token{Type: common.ToAttributeName(v.Type), Value: v.Value}
	case *syntax.Tree:
		children := make([]syntax.Node, len(v.Children))
		for i, c := range v.Children {
			children[i] = rename(c)
		}

		return &syntax.Tree{Label: common.ToAttributeName(v.Label), Children: children, Rule: v.Rule}
	}

	return node
}

// collect walks the tree bottom-up and records the value of every node named
// after an attribute of the product.  A branch holding several values records
// all of them; the last node visited wins.
func collect(node syntax.Node, proc *processing.Processor) Attributes {
	attrs := make(Attributes)

	t, ok := node.(*syntax.Tree)
	if !ok {
		return attrs
	}

	for _, sub := range t.Subtrees() {
		for _, child := range sub.Children {
			name := child.NodeName()
			if !proc.Has(name) {
				continue
			}

			switch v := child.(type) {
			case *syntax.Token:
				attrs[name] = v.Value
			case *syntax.Tree:
				values := v.ScanValues()
				switch len(values) {
				case 0:
				case 1:
					attrs[name] = values[0]
				default:
					attrs[name] = values
				}
			}
		}
	}

	return attrs
}
