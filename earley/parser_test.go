package earley

import (
	"testing"
	"testing/fstest"

	"github.com/ComedicChimera/ratesfmt/syntax"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

var ignoreRules = cmpopts.IgnoreFields(syntax.Tree{}, "Rule")

func tok(typ string, v any) *syntax.Token {
	return &syntax.Token{Type: typ, Value: v}
}

func tree(label string, children ...syntax.Node) *syntax.Tree {
	if children == nil {
		children = []syntax.Node{}
	}

	return &syntax.Tree{Label: label, Children: children}
}

func rule(origin string, order int, syms ...syntax.Symbol) *syntax.Rule {
	return &syntax.Rule{Origin: syntax.NonTerm(origin), Expansion: syms, Order: order}
}

func items(types ...string) Items {
	in := make(Items, len(types))
	for i, typ := range types {
		in[i] = tok(typ, typ)
	}

	return in
}

func requireTree(t *testing.T, expected, actual syntax.Node) {
	t.Helper()

	if diff := cmp.Diff(expected, actual, ignoreRules); diff != "" {
		t.Fatalf("tree mismatch (-expected +actual):\n%s", diff)
	}
}

func TestParseText(t *testing.T) {
	fsys := fstest.MapFS{
		"test__sum.ebnf": {Data: []byte(`
(* a sum of numbers *)
start = NUM _rest ;
_rest = "+" NUM | "+" NUM _rest ;
NUM = /[0-9]+/ ;
`)},
	}

	g, err := syntax.LoadProduct(fsys, "test", "sum")
	require.NoError(t, err)

	p := New(g.Rules, g.Start, WithDiscarded(g.IsDiscarded))

	node, err := p.Parse(Text(syntax.NewScanner("1+22+3", g)))
	require.NoError(t, err)
	requireTree(t, tree("start", tok("NUM", "1"), tok("NUM", "22"), tok("NUM", "3")), node)

	_, err = p.Parse(Text(syntax.NewScanner("1+22+", g)))
	require.ErrorIs(t, err, ErrNoParse)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 5, perr.Pos)
	require.Equal(t, []string{"NUM"}, perr.Expected)
}

func TestParseItems(t *testing.T) {
	p := New([]*syntax.Rule{
		rule("start", 0, syntax.Term("A"), syntax.NonTerm("b")),
		rule("b", 0, syntax.Term("B")),
	}, "start")

	node, err := p.Parse(items("A", "B"))
	require.NoError(t, err)
	requireTree(t, tree("start", tok("A", "A"), tree("b", tok("B", "B"))), node)
}

func TestParseNullable(t *testing.T) {
	p := New([]*syntax.Rule{
		rule("start", 0, syntax.NonTerm("a"), syntax.Term("B")),
		rule("a", 0),
		rule("a", 1, syntax.Term("A")),
	}, "start")

	node, err := p.Parse(items("B"))
	require.NoError(t, err)
	requireTree(t, tree("start", tree("a"), tok("B", "B")), node)

	node, err = p.Parse(items("A", "B"))
	require.NoError(t, err)
	requireTree(t, tree("start", tree("a", tok("A", "A")), tok("B", "B")), node)
}

func TestParseAmbiguity(t *testing.T) {
	t.Run("earlier rule first", func(t *testing.T) {
		p := New([]*syntax.Rule{
			rule("start", 0, syntax.NonTerm("x")),
			rule("start", 1, syntax.NonTerm("y")),
			rule("x", 0, syntax.Term("A")),
			rule("y", 0, syntax.Term("A")),
		}, "start")

		c, err := p.Recognize(items("A"))
		require.NoError(t, err)
		require.Len(t, c.StartRules(), 2)

		node, err := c.Tree()
		require.NoError(t, err)
		requireTree(t, tree("start", tree("x", tok("A", "A"))), node)
	})

	t.Run("longest leftmost child", func(t *testing.T) {
		p := New([]*syntax.Rule{
			rule("start", 0, syntax.NonTerm("a"), syntax.NonTerm("a")),
			rule("a", 0, syntax.Term("A")),
			rule("a", 1, syntax.Term("A"), syntax.Term("A")),
		}, "start")

		node, err := p.Parse(items("A", "A", "A"))
		require.NoError(t, err)
		requireTree(t, tree("start",
			tree("a", tok("A", "A"), tok("A", "A")),
			tree("a", tok("A", "A")),
		), node)
	})
}

func TestParseTreeShaping(t *testing.T) {
	inline := rule("_pair", 0, syntax.Term("A"), syntax.Term("SEP"), syntax.Term("B"))
	inline.Options.Inline = true

	single := rule("value", 0, syntax.Term("C"))
	single.Options.ExpandSingleChild = true

	p := New([]*syntax.Rule{
		rule("start", 0, syntax.NonTerm("_pair"), syntax.NonTerm("value")),
		inline,
		single,
	}, "start", WithDiscarded(func(sym syntax.Symbol) bool {
		return sym.Name == "SEP"
	}))

	node, err := p.Parse(items("A", "SEP", "B", "C"))
	require.NoError(t, err)
	requireTree(t, tree("start", tok("A", "A"), tok("B", "B"), tok("C", "C")), node)
}

func TestParseMatcherAndCallback(t *testing.T) {
	var reduced []string

	p := New([]*syntax.Rule{
		rule("start", 0, syntax.Term("NUMBER"), syntax.Term("NUMBER")),
	}, "start",
		WithMatcher(func(term syntax.Symbol, item syntax.Node) bool {
			v, ok := item.(*syntax.Token).Value.(int)
			return ok && term.Name == "NUMBER" && v > 0
		}),
		WithCallback(func(r *syntax.Rule, children []syntax.Node) (syntax.Node, error) {
			reduced = append(reduced, r.Origin.Name)
			return tok("SUM", children[0].(*syntax.Token).Value.(int)+children[1].(*syntax.Token).Value.(int)), nil
		}),
	)

	node, err := p.Parse(Items{tok("", 1), tok("", 2)})
	require.NoError(t, err)
	requireTree(t, tok("SUM", 3), node)
	require.Equal(t, []string{"start"}, reduced)

	_, err = p.Parse(Items{tok("", 1), tok("", -2)})
	require.ErrorIs(t, err, ErrNoParse)
}

func TestParseError(t *testing.T) {
	p := New([]*syntax.Rule{
		rule("start", 0, syntax.Term("A"), syntax.Term("B")),
		rule("start", 1, syntax.Term("A"), syntax.Term("D")),
	}, "start")

	_, err := p.Parse(items("A", "C"))

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 1, perr.Pos)
	require.Equal(t, []string{"B", "D"}, perr.Expected)
	require.Contains(t, perr.Error(), "item 2 (`C`)")
}
