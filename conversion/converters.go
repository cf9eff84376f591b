package conversion

import (
	"github.com/ComedicChimera/ratesfmt/trade"
)

// Grammars declaring converted terminals
const (
	datesGrammar  = "dates"
	tenorsGrammar = "tenors"
	sharedGrammar = "shared"
	customGrammar = "custom"
)

// DateLayout is how dates are written in shorthand: `15SEP37`
const DateLayout = "2Jan06"

// NotionalUnits are the magnitudes a notional can be quoted in, largest first
var NotionalUnits = []float64{1e12, 1e9, 1e6, 1e3}

// All returns every converter of the shorthand grammars
func All() []Converter {
	return []Converter{
		NewDate(datesGrammar, "DATE", DateLayout),
		NewTenor(tenorsGrammar, "MONTH_INT", "M"),
		NewTenor(tenorsGrammar, "YEAR_INT", "Y"),

		NewTable(sharedGrammar, "NOTIONAL_UNIT", []string{"T", "B", "M", "K"}, NotionalUnits),
		NewFlag(sharedGrammar, "IS_RISK", "R"),
		NewReplace(sharedGrammar, "TENOR_FREQ", "S", "M"),
		NewScaled(sharedGrammar, "STRIKE_BP", 1e4, 4),
		NewScaled(sharedGrammar, "FULL_STRIKE_BP", 1e4, 4),
		NewScaled(sharedGrammar, "STRIKE_PCT", 100, 6),
		NewScaled(sharedGrammar, "FULL_STRIKE_PCT", 100, 6),
		NewFlag(sharedGrammar, "IS_RELATIVE", "A"),
		NewNotional(sharedGrammar, "NOTIONAL_NUMBER"),

		NewEnumerated(customGrammar, "CURRENCY", trade.Currencies),
		NewEnumerated(customGrammar, "DAYCOUNT", trade.DayCounts),
		NewTable(customGrammar, "SWAPTION_TYPE", swaptionKeys, swaptionValues),
		NewTable(customGrammar, "SWAPTION_STRATEGY_TYPE", swaptionKeys, swaptionValues),
		NewTable(customGrammar, "CAP_FLOOR_TYPE", capFloorKeys, capFloorValues),
		NewTable(customGrammar, "CAP_FLOOR_STRATEGY_TYPE", capFloorKeys, capFloorValues),
		NewTable(customGrammar, "SETTLEMENT_METHOD",
			[]string{"CASH", "CCP", "PHYS", "PHYSC", "CASHASPHYS"},
			[]trade.SettlementMethod{
				trade.CashSettledISDA,
				trade.CollateralisedCashPrice,
				trade.PhysicallySettled,
				trade.PhysicallyClearedSettled,
				trade.CashSettledPricedAsPhysical,
			},
		),

		NewFlag("fra", "IS_IMM", "I"),
		NewFlag("cross_currency_swap", "IS_MTM", "MTM"),
	}
}

var (
	swaptionKeys   = []string{"R", "P", "S", "WC", "WS"}
	swaptionValues = []trade.SwaptionStrategy{
		trade.Receiver,
		trade.Payer,
		trade.SwaptionStraddle,
		trade.SwaptionCollar,
		trade.SwaptionStrangle,
	}

	capFloorKeys   = []string{"C", "F", "S", "WC", "WS"}
	capFloorValues = []trade.CapFloorStrategy{
		trade.Cap,
		trade.Floor,
		trade.CapFloorStraddle,
		trade.CapFloorCollar,
		trade.CapFloorStrangle,
	}
)
