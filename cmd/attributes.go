package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ComedicChimera/ratesfmt/codec"
	"github.com/ComedicChimera/ratesfmt/trade"
)

// DateLayout is how dates are written on the command line
const DateLayout = "2006-01-02"

// legSeparator separates the values of a multi-leg attribute
const legSeparator = "/"

// ParseAttributes reads comma separated `name=value` pairs into typed
// attributes of a product type
func ParseAttributes(productType, pairs string) (codec.Attributes, error) {
	attrs := make(codec.Attributes)

	for _, pair := range strings.Split(pairs, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("attribute `%s` has no value", pair)
		}

		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := attrs[name]; ok {
			return nil, fmt.Errorf("attribute `%s` given twice", name)
		}

		legs := strings.Split(strings.TrimSpace(raw), legSeparator)
		values := make([]any, len(legs))
		for i, leg := range legs {
			v, err := attributeValue(productType, name, strings.TrimSpace(leg))
			if err != nil {
				return nil, fmt.Errorf("attribute `%s`: %w", name, err)
			}

			values[i] = v
		}

		if len(values) == 1 && name != "currencies" {
			attrs[name] = values[0]
		} else {
			attrs[name] = values
		}
	}

	return attrs, nil
}

// attributeValue converts the text of one value into the type the
// attribute's converter expects
func attributeValue(productType, name, raw string) (any, error) {
	upper := strings.ToUpper(raw)

	switch name {
	case "currency", "currencies":
		return trade.Currency(upper), nil
	case "fixed_daycount":
		return trade.DayCount(upper), nil
	case "settlement_method":
		return trade.SettlementMethod(upper), nil
	case "contract_type":
		if strings.HasPrefix(productType, "cap_floor") {
			return trade.CapFloorStrategy(upper), nil
		}

		return trade.SwaptionStrategy(upper), nil
	case "size", "strike", "width":
		return strconv.ParseFloat(raw, 64)
	case "start_time", "end_time":
		if t, err := time.Parse(DateLayout, raw); err == nil {
			return t, nil
		}

		return upper, nil
	}

	if strings.HasPrefix(name, "is_") {
		return strconv.ParseBool(raw)
	}

	return upper, nil
}

// displayValue writes an attribute value the way ParseAttributes reads it
func displayValue(v any) string {
	switch x := v.(type) {
	case time.Time:
		return x.Format(DateLayout)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = displayValue(e)
		}

		return strings.Join(parts, legSeparator)
	}

	return fmt.Sprint(v)
}
