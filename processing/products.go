package processing

import (
	"fmt"
	"sort"

	"github.com/ComedicChimera/ratesfmt/common"
)

// attribute layouts shared by several products
var (
	swapAttributes = []string{
		"currency", "start_time", "end_time", "strike",
		"float_freq", "fixed_daycount", "size", "is_risk",
	}

	capFloorAttributes = []string{
		"currency", "start_time", "end_time", "is_relative", "strike",
		"contract_type", "float_freq", "size",
	}

	swaptionAttributes = []string{
		"currency", "start_time", "end_time", "is_relative", "strike",
		"contract_type", "float_freq", "settlement_method", "size",
	}
)

// withWidth inserts the strategy width right after the strike
func withWidth(attrs []string) []string {
	out := make([]string, 0, len(attrs)+1)
	for _, a := range attrs {
		out = append(out, a)
		if a == "strike" {
			out = append(out, "width")
		}
	}

	return out
}

var processors = map[string]*Processor{}

func register(p *Processor) {
	processors[p.Key()] = p
}

func init() {
	volatilitySteps := []Step{RelativeStrikeStep{}, SizeStep{}}

	register(&Processor{
		AssetClass:  common.LinearRate,
		ProductType: "fra",
		Attributes:  []string{"currency", "start_time", "end_time", "is_imm", "strike", "size"},
		Steps:       []Step{SizeStep{}},
	})
	register(&Processor{
		AssetClass:  common.LinearRate,
		ProductType: "fix_float_swap",
		Attributes:  swapAttributes,
		Steps:       []Step{SizeStep{}},
	})
	register(&Processor{
		AssetClass:  common.LinearRate,
		ProductType: "tenor_basis_swap",
		Attributes:  swapAttributes,
		Steps:       []Step{SizeStep{}},
	})
	register(&Processor{
		AssetClass:  common.LinearRate,
		ProductType: "cross_currency_swap",
		Attributes: []string{
			"currencies", "is_mtm", "start_time", "end_time",
			"strike", "float_freq", "size", "is_risk",
		},
		Steps: []Step{SizeStep{}},
	})
	register(&Processor{
		AssetClass:  common.LinearRate,
		ProductType: "swap_curve",
		Attributes:  swapAttributes,
		Steps:       []Step{SizeStep{MultiLeg: true}},
	})
	register(&Processor{
		AssetClass:  common.LinearRate,
		ProductType: "swap_fly",
		Attributes:  swapAttributes,
		Steps:       []Step{SizeStep{MultiLeg: true}},
	})
	register(&Processor{
		AssetClass:  common.LinearRate,
		ProductType: "leverage_swap_curve",
		Attributes:  swapAttributes,
		Steps:       []Step{ScheduleStep{}, SizeStep{MultiLeg: true}},
	})
	register(&Processor{
		AssetClass:  common.LinearRate,
		ProductType: "leverage_swap_fly",
		Attributes:  swapAttributes,
		Steps:       []Step{ScheduleStep{}, SizeStep{MultiLeg: true}},
	})

	register(&Processor{
		AssetClass:  common.RatesVolatility,
		ProductType: "cap_floor",
		Attributes:  capFloorAttributes,
		Steps:       volatilitySteps,
	})
	register(&Processor{
		AssetClass:  common.RatesVolatility,
		ProductType: "cap_floor_strategy",
		Attributes:  withWidth(capFloorAttributes),
		Steps:       volatilitySteps,
	})
	register(&Processor{
		AssetClass:  common.RatesVolatility,
		ProductType: "swaption",
		Attributes:  swaptionAttributes,
		Steps:       volatilitySteps,
	})
	register(&Processor{
		AssetClass:  common.RatesVolatility,
		ProductType: "swaption_strategy",
		Attributes:  withWidth(swaptionAttributes),
		Steps:       volatilitySteps,
	})
}

// Lookup returns the processor of a product type
func Lookup(assetClass, productType string) (*Processor, error) {
	p, ok := processors[Key(assetClass, productType)]
	if !ok {
		return nil, fmt.Errorf("%w: no processor for `%s` of asset class `%s`", ErrUnknownProduct, productType, assetClass)
	}

	return p, nil
}

// Products lists the product types of an asset class that have a processor
func Products(assetClass string) []string {
	var products []string
	for _, p := range processors {
		if p.AssetClass == assetClass {
			products = append(products, p.ProductType)
		}
	}

	sort.Strings(products)
	return products
}
