package codec

import (
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ComedicChimera/ratesfmt/common"
	"github.com/ComedicChimera/ratesfmt/conversion"
	"github.com/ComedicChimera/ratesfmt/earley"
	"github.com/ComedicChimera/ratesfmt/grammars"
	"github.com/ComedicChimera/ratesfmt/processing"
	"github.com/ComedicChimera/ratesfmt/trade"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

type shorthandCase struct {
	name       string
	assetClass string
	text       string
	product    string
	attrs      Attributes
}

var shorthandCases = []shorthandCase{
	{
		name:       "fra",
		assetClass: common.LinearRate,
		text:       "3X6 100M",
		product:    "fra",
		attrs:      Attributes{"start_time": "3M", "end_time": "6M", "size": 1e8},
	},
	{
		name:       "imm fra with strike",
		assetClass: common.LinearRate,
		text:       "6X9I 2.5",
		product:    "fra",
		attrs:      Attributes{"start_time": "6M", "end_time": "9M", "is_imm": true, "strike": 0.025},
	},
	{
		name:       "risk size",
		assetClass: common.LinearRate,
		text:       "EUR 10Y 97.25KR",
		product:    "fix_float_swap",
		attrs:      Attributes{"currency": trade.EUR, "end_time": "10Y", "size": 97250.0, "is_risk": true},
	},
	{
		name:       "bare size",
		assetClass: common.LinearRate,
		text:       "10Y 1",
		product:    "fix_float_swap",
		attrs:      Attributes{"end_time": "10Y", "size": 1.0},
	},
	{
		name:       "every swap detail",
		assetClass: common.LinearRate,
		text:       "EUR 5Y10Y 0.1 1S ACT365 100KR",
		product:    "fix_float_swap",
		attrs: Attributes{
			"currency":       trade.EUR,
			"start_time":     "5Y",
			"end_time":       "10Y",
			"strike":         0.001,
			"float_freq":     "1M",
			"fixed_daycount": trade.ACT365,
			"size":           1e5,
			"is_risk":        true,
		},
	},
	{
		name:       "imm dates",
		assetClass: common.LinearRate,
		text:       "M8U8 1D 100M",
		product:    "fix_float_swap",
		attrs:      Attributes{"start_time": "M8", "end_time": "U8", "float_freq": "1D", "size": 1e8},
	},
	{
		name:       "start date",
		assetClass: common.LinearRate,
		text:       "15SEP3725Y 2 2",
		product:    "fix_float_swap",
		attrs: Attributes{
			"start_time": time.Date(2037, time.September, 15, 0, 0, 0, 0, time.UTC),
			"end_time":   "25Y",
			"strike":     0.02,
			"size":       2.0,
		},
	},
	{
		name:       "tenor basis",
		assetClass: common.LinearRate,
		text:       "1Y 3S6S",
		product:    "tenor_basis_swap",
		attrs:      Attributes{"end_time": "1Y", "float_freq": []any{"3M", "6M"}},
	},
	{
		name:       "cross currency",
		assetClass: common.LinearRate,
		text:       "EURUSD MTM 5Y 1S 100M",
		product:    "cross_currency_swap",
		attrs: Attributes{
			"currencies": []any{trade.EUR, trade.USD},
			"is_mtm":     true,
			"end_time":   "5Y",
			"float_freq": "1M",
			"size":       1e8,
		},
	},
	{
		name:       "curve",
		assetClass: common.LinearRate,
		text:       "5S10S 65.5",
		product:    "swap_curve",
		attrs:      Attributes{"end_time": []any{"5Y", "10Y"}, "size": 65.5},
	},
	{
		name:       "curve leg sizes",
		assetClass: common.LinearRate,
		text:       "5S10S -193.4M/100M",
		product:    "swap_curve",
		attrs:      Attributes{"end_time": []any{"5Y", "10Y"}, "size": []any{-1.934e8, 1e8}},
	},
	{
		name:       "leverage curve",
		assetClass: common.LinearRate,
		text:       "2Y2YS4Y2YS 0.426/61.5",
		product:    "leverage_swap_curve",
		attrs: Attributes{
			"start_time": []any{"2Y", "4Y"},
			"end_time":   []any{"2Y", "2Y"},
			"strike":     []any{0.00426, 0.00615},
		},
	},
	{
		name:       "leverage fly",
		assetClass: common.LinearRate,
		text:       "5Y2YS7Y2YS10Y2YS",
		product:    "leverage_swap_fly",
		attrs: Attributes{
			"start_time": []any{"5Y", "7Y", "10Y"},
			"end_time":   []any{"2Y", "2Y", "2Y"},
		},
	},
	{
		name:       "relative strike",
		assetClass: common.RatesVolatility,
		text:       "2Y5Y A10 P",
		product:    "swaption",
		attrs: Attributes{
			"start_time":    "2Y",
			"end_time":      "5Y",
			"is_relative":   true,
			"strike":        0.001,
			"contract_type": trade.Payer,
		},
	},
	{
		name:       "settlement",
		assetClass: common.RatesVolatility,
		text:       "10Y10Y P CASH 100M",
		product:    "swaption",
		attrs: Attributes{
			"start_time":        "10Y",
			"end_time":          "10Y",
			"contract_type":     trade.Payer,
			"settlement_method": trade.CashSettledISDA,
			"size":              1e8,
		},
	},
	{
		name:       "swaption collar",
		assetClass: common.RatesVolatility,
		text:       "5Y5Y 100WC 100M",
		product:    "swaption_strategy",
		attrs: Attributes{
			"start_time":    "5Y",
			"end_time":      "5Y",
			"width":         0.01,
			"contract_type": trade.SwaptionCollar,
			"size":          1e8,
		},
	},
	{
		name:       "forward cap",
		assetClass: common.RatesVolatility,
		text:       "7YX12Y C 3S",
		product:    "cap_floor",
		attrs: Attributes{
			"start_time":    "7Y",
			"end_time":      "12Y",
			"contract_type": trade.Cap,
			"float_freq":    "3M",
		},
	},
	{
		name:       "cap floor straddle",
		assetClass: common.RatesVolatility,
		text:       "5Y 25S",
		product:    "cap_floor_strategy",
		attrs: Attributes{
			"end_time":      "5Y",
			"width":         0.0025,
			"contract_type": trade.CapFloorStraddle,
		},
	},
}

func requireAttributes(t *testing.T, expected, actual Attributes) {
	t.Helper()

	if diff := cmp.Diff(expected, actual, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("attributes mismatch (-expected +actual):\n%s", diff)
	}
}

func codecs(t *testing.T) map[string]*Codec {
	t.Helper()

	strict, err := New(grammars.FS, conversion.Default().Strict(), 4)
	require.NoError(t, err)

	return map[string]*Codec{"default": Default(), "strict": strict}
}

func TestParse(t *testing.T) {
	for name, c := range codecs(t) {
		for _, tc := range shorthandCases {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				product, attrs, err := c.Parse(tc.assetClass, tc.text)
				require.NoError(t, err)
				require.Equal(t, tc.product, product)
				requireAttributes(t, tc.attrs, attrs)
			})
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for name, c := range codecs(t) {
		for _, tc := range shorthandCases {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				product, attrs, err := c.Parse(tc.assetClass, tc.text)
				require.NoError(t, err)

				text, err := c.Format(tc.assetClass, product, attrs)
				require.NoError(t, err)
				require.Equal(t, tc.text, text)
			})
		}
	}
}

func TestFormatThenParse(t *testing.T) {
	for _, tc := range shorthandCases {
		t.Run(tc.name, func(t *testing.T) {
			text, err := Format(tc.assetClass, tc.product, tc.attrs)
			require.NoError(t, err)

			product, attrs, err := Parse(tc.assetClass, text)
			require.NoError(t, err)
			require.Equal(t, tc.product, product)
			requireAttributes(t, tc.attrs, attrs)
		})
	}
}

func TestParseIsCaseInsensitive(t *testing.T) {
	product, attrs, err := Parse(common.LinearRate, "eur 10y 97.25kr")
	require.NoError(t, err)
	require.Equal(t, "fix_float_swap", product)
	require.Equal(t, true, attrs["is_risk"])

	text, err := Format(common.LinearRate, product, attrs)
	require.NoError(t, err)
	require.Equal(t, "EUR 10Y 97.25KR", text)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		product  [2]string
		attrs    Attributes
		expected string
	}{
		{
			name:     "false flags are left out",
			product:  [2]string{common.LinearRate, "fix_float_swap"},
			attrs:    Attributes{"end_time": "10Y", "size": 5e7, "is_risk": false},
			expected: "10Y 50M",
		},
		{
			name:     "lower-case tenors",
			product:  [2]string{common.LinearRate, "fix_float_swap"},
			attrs:    Attributes{"currency": trade.GBP, "end_time": "30y"},
			expected: "GBP 30Y",
		},
		{
			name:     "typed slices",
			product:  [2]string{common.LinearRate, "swap_fly"},
			attrs:    Attributes{"end_time": []string{"2Y", "5Y", "10Y"}, "strike": 0.0012},
			expected: "2S5S10S 12",
		},
		{
			name:     "fractional notional snaps",
			product:  [2]string{common.LinearRate, "fra"},
			attrs:    Attributes{"start_time": "1M", "end_time": "4M", "size": 1.2345e9},
			expected: "1X4 1.25B",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, err := Format(tc.product[0], tc.product[1], tc.attrs)
			require.NoError(t, err)
			require.Equal(t, tc.expected, text)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, assetClass := range []string{common.LinearRate, common.RatesVolatility} {
		_, _, err := Parse(assetClass, "99Y99Y XX")
		require.ErrorIs(t, err, ErrMalformedInput)
		require.ErrorIs(t, err, earley.ErrNoParse)
	}

	_, _, err := Parse("commodity", "3X6")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrMalformedInput)
}

func TestParseAmbiguous(t *testing.T) {
	fsys := fstest.MapFS{
		"test__a.ebnf": {Data: []byte("start = NUM ;\nNUM = /[0-9]+/ ;\n")},
		"test__b.ebnf": {Data: []byte("start = NUM [\"!\"] ;\nNUM = /[0-9]+/ ;\n")},
	}

	c, err := New(fsys, conversion.Default(), 2)
	require.NoError(t, err)

	_, _, err = c.Parse("test", "12")
	require.ErrorIs(t, err, ErrMalformedInput)
	require.ErrorContains(t, err, "a, b")
}

func TestFormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		product [2]string
		attrs   Attributes
		is      []error
		text    string
		once    string
	}{
		{
			name:    "value outside a table",
			product: [2]string{common.RatesVolatility, "swaption"},
			attrs: Attributes{
				"start_time":        "1Y",
				"end_time":          "1Y",
				"contract_type":     trade.Receiver,
				"settlement_method": trade.SettlementMethod("NETTED"),
			},
			is:   []error{ErrUnformattable, conversion.ErrConversion},
			text: "CASH_SETTLED_ISDA",
		},
		{
			name:    "unknown enumerant",
			product: [2]string{common.LinearRate, "fix_float_swap"},
			attrs:   Attributes{"currency": trade.Currency("XXX"), "end_time": "1Y"},
			is:      []error{ErrUnformattable, conversion.ErrConversion},
		},
		{
			name:    "attribute of another product",
			product: [2]string{common.LinearRate, "fra"},
			attrs:   Attributes{"width": 0.001},
			is:      []error{ErrUnformattable, processing.ErrUnknownAttribute},
		},
		{
			name:    "fra size without unit",
			product: [2]string{common.LinearRate, "fra"},
			attrs:   Attributes{"start_time": "1M", "end_time": "4M", "size": 500.0},
			is:      []error{ErrUnformattable, earley.ErrNoParse},
			text:    "size",
		},
		{
			name:    "missing end time",
			product: [2]string{common.LinearRate, "fix_float_swap"},
			attrs:   Attributes{"currency": trade.EUR},
			is:      []error{ErrUnformattable, earley.ErrNoParse},
		},
		{
			name:    "unknown product",
			product: [2]string{common.LinearRate, "bond"},
			attrs:   Attributes{"end_time": "1Y"},
			is:      []error{ErrUnformattable, processing.ErrUnknownProduct},
		},
		{
			name:    "relative flag without strike",
			product: [2]string{common.RatesVolatility, "swaption"},
			attrs: Attributes{
				"start_time":    "1Y",
				"end_time":      "1Y",
				"contract_type": trade.Payer,
				"is_relative":   true,
			},
			is:   []error{ErrUnformattable, processing.ErrOrdering},
			once: "rates_volatility__swaption",
		},
		{
			name:    "unknown attribute names the product once",
			product: [2]string{common.LinearRate, "fra"},
			attrs:   Attributes{"width": 0.001},
			is:      []error{ErrUnformattable, processing.ErrUnknownAttribute},
			text:    "`width`",
			once:    "linear_rate__fra",
		},
		{
			name:    "two sizes on a single leg swap",
			product: [2]string{common.LinearRate, "fix_float_swap"},
			attrs:   Attributes{"end_time": "10Y", "size": []any{1e8, 2e8}},
			is:      []error{ErrUnformattable, processing.ErrOrdering},
		},
		{
			name:    "risk flag without size",
			product: [2]string{common.LinearRate, "leverage_swap_curve"},
			attrs: Attributes{
				"start_time": []any{"5Y", "7Y"},
				"end_time":   []any{"2Y", "2Y"},
				"is_risk":    true,
			},
			is:   []error{ErrUnformattable, earley.ErrNoParse},
			text: "attributes start_time, end_time",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Format(tc.product[0], tc.product[1], tc.attrs)
			for _, target := range tc.is {
				require.ErrorIs(t, err, target)
			}

			if tc.text != "" {
				require.ErrorContains(t, err, tc.text)
			}

			if tc.once != "" {
				require.Equal(t, 1, strings.Count(err.Error(), tc.once), err.Error())
			}
		})
	}
}

func TestNew(t *testing.T) {
	_, err := New(grammars.FS, conversion.Default(), 0)
	require.Error(t, err)
}

func TestConcurrentUse(t *testing.T) {
	c, err := New(grammars.FS, conversion.Default(), 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, len(shorthandCases))
	for i, tc := range shorthandCases {
		wg.Add(1)
		go func(i int, tc shorthandCase) {
			defer wg.Done()

			product, attrs, err := c.Parse(tc.assetClass, tc.text)
			if err == nil {
				_, err = c.Format(tc.assetClass, product, attrs)
			}
			errs[i] = err
		}(i, tc)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, shorthandCases[i].text)
	}
}
