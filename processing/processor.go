// Package processing bridges the shape of parse trees and the shape of
// attribute records.  Each product type has a processor made of steps: on
// parse a step reduces branches of the tree (e.g. a number and a unit into a
// notional), on format it expands attribute nodes back into what the grammar
// reads.
package processing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ComedicChimera/ratesfmt/common"
	"github.com/ComedicChimera/ratesfmt/syntax"
)

var (
	// ErrOrdering is returned when attribute nodes are not laid out the way
	// a step needs them
	ErrOrdering = errors.New("attribute ordering error")

	// ErrUnknownAttribute is returned when formatting an attribute the
	// product does not have
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrUnknownProduct is returned when no processor exists for a product
	ErrUnknownProduct = errors.New("unknown product")
)

// Step is one structural transformation of a processor
type Step interface {
	// Reduce rewrites a branch whose children are already reduced.  It
	// returns false if the branch is none of its business.
	Reduce(t *syntax.Tree) (syntax.Node, bool, error)

	// Expand rewrites a sequence of attribute nodes in canonical order
	Expand(nodes []syntax.Node) ([]syntax.Node, error)
}

// Processor holds the attribute layout of a product type
type Processor struct {
	AssetClass  string
	ProductType string

	// Attributes are the attribute names of the product in the order the
	// grammar reads them
	Attributes []string

	Steps []Step
}

// Key identifies the processor of a product
func (p *Processor) Key() string {
	return Key(p.AssetClass, p.ProductType)
}

// Key is the processor key of a product type of an asset class
func Key(assetClass, productType string) string {
	return common.Qualify(assetClass, productType)
}

// Has reports whether the product has an attribute
func (p *Processor) Has(attr string) bool {
	return p.index(attr) != -1
}

func (p *Processor) index(attr string) int {
	for i, a := range p.Attributes {
		if a == attr {
			return i
		}
	}

	return -1
}

// Reduce rewrites a parse tree bottom-up
func (p *Processor) Reduce(node syntax.Node) (syntax.Node, error) {
	t, ok := node.(*syntax.Tree)
	if !ok {
		return node, nil
	}

	children := make([]syntax.Node, len(t.Children))
	for i, c := range t.Children {
		rc, err := p.Reduce(c)
		if err != nil {
			return nil, err
		}

		children[i] = rc
	}

	var reduced syntax.Node = &syntax.Tree{Label: t.Label, Children: children, Rule: t.Rule}
	for _, step := range p.Steps {
		rt, ok := reduced.(*syntax.Tree)
		if !ok {
			break
		}

		next, applied, err := step.Reduce(rt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Key(), err)
		} else if applied {
			reduced = next
		}
	}

	return reduced, nil
}

// Expand sorts attribute nodes into the product's attribute order and runs
// every step over them
func (p *Processor) Expand(nodes []syntax.Node) ([]syntax.Node, error) {
	sorted := make([]syntax.Node, len(nodes))
	copy(sorted, nodes)

	for _, n := range sorted {
		if !p.Has(common.ToAttributeName(n.NodeName())) {
			return nil, fmt.Errorf("%w `%s`", ErrUnknownAttribute, common.ToAttributeName(n.NodeName()))
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return p.index(common.ToAttributeName(sorted[i].NodeName())) < p.index(common.ToAttributeName(sorted[j].NodeName()))
	})

	var err error
	for _, step := range p.Steps {
		if sorted, err = step.Expand(sorted); err != nil {
			return nil, err
		}
	}

	return sorted, nil
}
