package earley

import (
	"fmt"

	"github.com/ComedicChimera/ratesfmt/syntax"
)

type span struct {
	name       string
	start, end int
}

type seqKey struct {
	rule, dot, pos, start, end int
}

// extractor picks one derivation out of a chart
type extractor struct {
	c *Chart

	nodes    map[span]syntax.Node
	active   map[span]bool
	deadEnds map[seqKey]bool
}

// Tree builds the node of the preferred derivation of the whole input
func (c *Chart) Tree() (syntax.Node, error) {
	ex := &extractor{
		c:        c,
		nodes:    make(map[span]syntax.Node),
		active:   make(map[span]bool),
		deadEnds: make(map[seqKey]bool),
	}

	node, ok, err := ex.node(c.p.start, 0, c.in.Len())
	if err != nil {
		return nil, err
	} else if !ok {
		return nil, c.failure()
	}

	return node, nil
}

// node builds the node of a nonterminal spanning start..end trying the rules
// of the nonterminal in order
func (ex *extractor) node(name string, start, end int) (syntax.Node, bool, error) {
	key := span{name, start, end}
	if n, ok := ex.nodes[key]; ok {
		return n, n != nil, nil
	}

	// a nonterminal deriving itself over the same span is a cycle
	if ex.active[key] {
		return nil, false, nil
	}
	ex.active[key] = true
	defer delete(ex.active, key)

	for _, ri := range ex.c.p.byOrigin[name] {
		r := ex.c.p.rules[ri]
		if !ex.c.sets[end].has(item{ri, len(r.Expansion), start}) {
			continue
		}

		children, ok, err := ex.sequence(ri, 0, start, start, end)
		if err != nil {
			return nil, false, err
		} else if !ok {
			continue
		}

		n, err := ex.c.p.callback(r, children)
		if err != nil {
			return nil, false, fmt.Errorf("building `%s`: %w", name, err)
		}

		ex.nodes[key] = n
		return n, true, nil
	}

	ex.nodes[key] = nil
	return nil, false, nil
}

// sequence builds the children of rule ri from symbol dot onwards, the symbols
// before it having covered start..pos.  Longer children are tried first.
func (ex *extractor) sequence(ri, dot, pos, start, end int) ([]syntax.Node, bool, error) {
	r := ex.c.p.rules[ri]
	if dot == len(r.Expansion) {
		return nil, pos == end, nil
	}

	key := seqKey{ri, dot, pos, start, end}
	if ex.deadEnds[key] {
		return nil, false, nil
	}

	sym := r.Expansion[dot]

	if sym.Terminal {
		leaf, next, ok := ex.c.in.scan(ex.c.p, sym, pos)
		if ok && next <= end && ex.c.sets[next].has(item{ri, dot + 1, start}) {
			rest, ok, err := ex.sequence(ri, dot+1, next, start, end)
			if err != nil {
				return nil, false, err
			} else if ok {
				return append([]syntax.Node{leaf}, rest...), true, nil
			}
		}

		ex.deadEnds[key] = true
		return nil, false, nil
	}

	for next := end; next >= pos; next-- {
		if !ex.c.sets[next].has(item{ri, dot + 1, start}) {
			continue
		}

		child, ok, err := ex.node(sym.Name, pos, next)
		if err != nil {
			return nil, false, err
		} else if !ok {
			continue
		}

		rest, ok, err := ex.sequence(ri, dot+1, next, start, end)
		if err != nil {
			return nil, false, err
		} else if ok {
			return append([]syntax.Node{child}, rest...), true, nil
		}
	}

	ex.deadEnds[key] = true
	return nil, false, nil
}
