package processing

import (
	"testing"

	"github.com/ComedicChimera/ratesfmt/common"
	"github.com/ComedicChimera/ratesfmt/syntax"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func tok(typ string, v any) *syntax.Token {
	return &syntax.Token{Type: typ, Value: v}
}

func tree(label string, children ...syntax.Node) *syntax.Tree {
	return &syntax.Tree{Label: label, Children: children}
}

func requireNodes(t *testing.T, expected, actual any) {
	t.Helper()

	if diff := cmp.Diff(expected, actual, cmpopts.IgnoreFields(syntax.Tree{}, "Rule"), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("nodes mismatch (-expected +actual):\n%s", diff)
	}
}

func lookup(t *testing.T, assetClass, productType string) *Processor {
	t.Helper()

	p, err := Lookup(assetClass, productType)
	require.NoError(t, err)
	return p
}

func TestReduceSize(t *testing.T) {
	p := lookup(t, common.LinearRate, "fra")

	reduced, err := p.Reduce(tree("fra",
		tok("currency", "EUR"),
		tree("size", tok("notional_number", 100.0), tok("notional_unit", 1e6)),
	))
	require.NoError(t, err)
	requireNodes(t, tree("fra",
		tok("currency", "EUR"),
		tree("size", tok("notional", 1e8)),
	), reduced)

	// a bare number is left alone
	reduced, err = p.Reduce(tree("size", tok("notional_number", 65.5)))
	require.NoError(t, err)
	requireNodes(t, tree("size", tok("notional_number", 65.5)), reduced)
}

func TestReduceMultiLegSize(t *testing.T) {
	p := lookup(t, common.LinearRate, "swap_curve")

	reduced, err := p.Reduce(tree("size",
		tree("swap_size", tok("notional_number", -193.4), tok("notional_unit", 1e6)),
		tree("swap_size", tok("notional_number", 100.0), tok("notional_unit", 1e6)),
	))
	require.NoError(t, err)

	values := reduced.(*syntax.Tree).ScanValues()
	require.Len(t, values, 2)
	require.InDelta(t, -1.934e8, values[0], 1e-6)
	require.InDelta(t, 1e8, values[1], 1e-6)
}

func TestReduceRelativeStrike(t *testing.T) {
	p := lookup(t, common.RatesVolatility, "swaption")

	reduced, err := p.Reduce(tree("swaption",
		tree("strike", tok("is_relative", true), tok("full_strike_bp", 0.001)),
	))
	require.NoError(t, err)
	requireNodes(t, tree("swaption",
		tree("strike_info",
			tree("is_relative", tok("is_relative", true)),
			tree("strike", tok("full_strike_bp", 0.001)),
		),
	), reduced)

	// absolute strikes are left alone
	reduced, err = p.Reduce(tree("strike", tok("strike_pct", 0.02)))
	require.NoError(t, err)
	requireNodes(t, tree("strike", tok("strike_pct", 0.02)), reduced)
}

func TestReduceSchedule(t *testing.T) {
	p := lookup(t, common.LinearRate, "leverage_swap_curve")

	reduced, err := p.Reduce(tree("schedule",
		tree("start_time", tok("float_tenor", "5Y")),
		tree("end_time", tok("float_tenor", "2Y")),
		tree("start_time", tok("float_tenor", "7Y")),
		tree("end_time", tok("float_tenor", "2Y")),
	))
	require.NoError(t, err)
	requireNodes(t, tree("schedule",
		tree("start_time", tok("float_tenor", "5Y"), tok("float_tenor", "7Y")),
		tree("end_time", tok("float_tenor", "2Y"), tok("float_tenor", "2Y")),
	), reduced)

	_, err = p.Reduce(tree("schedule", tree("strike", tok("strike_bp", 0.001))))
	require.ErrorIs(t, err, ErrOrdering)
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		product  [2]string
		nodes    []syntax.Node
		expected []syntax.Node
	}{
		{
			name:    "sorts and splits sizes",
			product: [2]string{common.LinearRate, "fix_float_swap"},
			nodes: []syntax.Node{
				tree("size", tok("", 1e8)),
				tok("IS_RISK", true),
				tree("end_time", tok("", "10Y")),
				tok("CURRENCY", "EUR"),
			},
			expected: []syntax.Node{
				tok("CURRENCY", "EUR"),
				tree("end_time", tok("", "10Y")),
				tree("size", tok("NOTIONAL_NUMBER", 100.0), tok("NOTIONAL_UNIT", 1e6)),
				tok("IS_RISK", true),
			},
		},
		{
			name:    "small sizes have no unit",
			product: [2]string{common.LinearRate, "fix_float_swap"},
			nodes:   []syntax.Node{tree("size", tok("", 1))},
			expected: []syntax.Node{
				tree("size", tok("NOTIONAL_NUMBER", 1.0)),
			},
		},
		{
			name:    "multi-leg sizes",
			product: [2]string{common.LinearRate, "swap_curve"},
			nodes:   []syntax.Node{tree("size", tok("", 2e9), tok("", 5e5))},
			expected: []syntax.Node{
				tree("size",
					tok("NOTIONAL_NUMBER", 2.0), tok("NOTIONAL_UNIT", 1e9),
					tok("NOTIONAL_NUMBER", 500.0), tok("NOTIONAL_UNIT", 1e3),
				),
			},
		},
		{
			name:    "relative strike",
			product: [2]string{common.RatesVolatility, "swaption"},
			nodes: []syntax.Node{
				tree("contract_type", tok("", "PAYER")),
				tree("strike", tok("", 0.001)),
				tok("IS_RELATIVE", true),
			},
			expected: []syntax.Node{
				tree("strike", tok("IS_RELATIVE", true), tok("FULL_STRIKE_BP", 0.001)),
				tree("contract_type", tok("", "PAYER")),
			},
		},
		{
			name:    "schedule",
			product: [2]string{common.LinearRate, "leverage_swap_fly"},
			nodes: []syntax.Node{
				tree("end_time", tok("", "2Y"), tok("", "3Y")),
				tree("start_time", tok("", "5Y"), tok("", "7Y")),
			},
			expected: []syntax.Node{
				tree("start_time", tok("", "5Y")),
				tree("end_time", tok("", "2Y")),
				tree("start_time", tok("", "7Y")),
				tree("end_time", tok("", "3Y")),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expanded, err := lookup(t, tc.product[0], tc.product[1]).Expand(tc.nodes)
			require.NoError(t, err)
			requireNodes(t, tc.expected, expanded)
		})
	}
}

func TestExpandErrors(t *testing.T) {
	_, err := lookup(t, common.LinearRate, "fra").Expand([]syntax.Node{tree("width", tok("", 0.001))})
	require.ErrorIs(t, err, ErrUnknownAttribute)

	_, err = lookup(t, common.RatesVolatility, "cap_floor").Expand([]syntax.Node{tok("IS_RELATIVE", true)})
	require.ErrorIs(t, err, ErrOrdering)

	_, err = lookup(t, common.LinearRate, "leverage_swap_curve").Expand([]syntax.Node{
		tree("start_time", tok("", "5Y"), tok("", "7Y")),
		tree("end_time", tok("", "2Y")),
	})
	require.ErrorIs(t, err, ErrOrdering)

	_, err = lookup(t, common.LinearRate, "leverage_swap_curve").Expand([]syntax.Node{
		tree("start_time", tok("", "5Y")),
	})
	require.ErrorIs(t, err, ErrOrdering)
	// single-leg products take one size only
	_, err = lookup(t, common.LinearRate, "fix_float_swap").Expand([]syntax.Node{
		tree("size", tok("", 1e8), tok("", 2e8)),
	})
	require.ErrorIs(t, err, ErrOrdering)
}

func TestLookup(t *testing.T) {
	_, err := Lookup(common.LinearRate, "swaption")
	require.ErrorIs(t, err, ErrUnknownProduct)

	require.Equal(t, []string{"cap_floor", "cap_floor_strategy", "swaption", "swaption_strategy"}, Products(common.RatesVolatility))
	require.Equal(t,
		[]string{"currency", "start_time", "end_time", "is_relative", "strike", "width", "contract_type", "float_freq", "size"},
		lookup(t, common.RatesVolatility, "cap_floor_strategy").Attributes,
	)
}
