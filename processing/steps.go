package processing

import (
	"fmt"
	"math"

	"github.com/ComedicChimera/ratesfmt/common"
	"github.com/ComedicChimera/ratesfmt/conversion"
	"github.com/ComedicChimera/ratesfmt/syntax"
)

// names of the terminals and branches steps work with
const (
	notionalNumber = "NOTIONAL_NUMBER"
	notionalUnit   = "NOTIONAL_UNIT"
	isRelative     = "IS_RELATIVE"
	fullStrikeBp   = "FULL_STRIKE_BP"

	sizeLabel       = "size"
	legSizeLabel    = "swap_size"
	notionalLabel   = "notional"
	strikeLabel     = "strike"
	strikeInfoLabel = "strike_info"
	scheduleLabel   = "schedule"
	startTimeLabel  = "start_time"
	endTimeLabel    = "end_time"
)

func nameOf(n syntax.Node) string {
	return common.ToAttributeName(n.NodeName())
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	}

	return 0, false
}

// SizeStep folds a number and its unit into one notional.  Multi-leg sizes
// are made of one `swap_size` branch per leg.
type SizeStep struct {
	MultiLeg bool
}

func (s SizeStep) Reduce(t *syntax.Tree) (syntax.Node, bool, error) {
	if t.Label != sizeLabel && t.Label != legSizeLabel {
		return nil, false, nil
	}

	hasUnit := false
	for _, c := range t.Children {
		if nameOf(c) == "notional_unit" {
			hasUnit = true
		}
	}

	if !hasUnit {
		return t, false, nil
	}

	notional := 1.0
	for _, c := range t.ScanValues() {
		f, ok := toFloat(c)
		if !ok {
			return nil, false, fmt.Errorf("size component %v is not a number", c)
		}

		notional *= f
	}

	return &syntax.Tree{
		Label:    t.Label,
		Children: []syntax.Node{&syntax.Token{Type: notionalLabel, Value: notional}},
		Rule:     t.Rule,
	}, true, nil
}

func (s SizeStep) Expand(nodes []syntax.Node) ([]syntax.Node, error) {
	for i, n := range nodes {
		size, ok := n.(*syntax.Tree)
		if !ok || nameOf(n) != sizeLabel {
			continue
		}

		if !s.MultiLeg && len(size.Children) > 1 {
			return nil, fmt.Errorf("%w: size has %d legs, the product takes one", ErrOrdering, len(size.Children))
		}

		var children []syntax.Node
		for _, leg := range size.Children {
			tok, ok := leg.(*syntax.Token)
			if !ok {
				return nil, fmt.Errorf("%w: size must hold values, found branch `%s`", ErrOrdering, leg.NodeName())
			}

			formatted, err := formatSize(tok.Value)
			if err != nil {
				return nil, err
			}

			children = append(children, formatted...)
		}

		nodes[i] = &syntax.Tree{Label: size.Label, Children: children}
	}

	return nodes, nil
}

// formatSize splits a notional into a number and the largest unit it holds
// at least once
func formatSize(v any) ([]syntax.Node, error) {
	f, ok := toFloat(v)
	if !ok {
		return nil, fmt.Errorf("size %v is not a number", v)
	}

	for _, unit := range conversion.NotionalUnits {
		if math.Abs(math.Trunc(f)/unit) >= 1 {
			return []syntax.Node{
				&syntax.Token{Type: notionalNumber, Value: f / unit},
				&syntax.Token{Type: notionalUnit, Value: unit},
			}, nil
		}
	}

	return []syntax.Node{&syntax.Token{Type: notionalNumber, Value: f}}, nil
}

// RelativeStrikeStep splits strikes quoted relative to the forward (`A10`)
// into an `is_relative` flag and the strike itself
type RelativeStrikeStep struct{}

func (RelativeStrikeStep) Reduce(t *syntax.Tree) (syntax.Node, bool, error) {
	if t.Label != strikeLabel || len(t.Children) == 0 || nameOf(t.Children[0]) != "is_relative" {
		return nil, false, nil
	}

	return &syntax.Tree{
		Label: strikeInfoLabel,
		Children: []syntax.Node{
			&syntax.Tree{Label: "is_relative", Children: t.Children[:1]},
			&syntax.Tree{Label: strikeLabel, Children: t.Children[1:], Rule: t.Rule},
		},
	}, true, nil
}

func (RelativeStrikeStep) Expand(nodes []syntax.Node) ([]syntax.Node, error) {
	out := make([]syntax.Node, 0, len(nodes))

	for i := 0; i < len(nodes); i++ {
		flag, ok := nodes[i].(*syntax.Token)
		if !ok || nameOf(flag) != "is_relative" {
			out = append(out, nodes[i])
			continue
		}

		if i+1 == len(nodes) || nameOf(nodes[i+1]) != strikeLabel {
			return nil, fmt.Errorf("%w: `is_relative` must be immediately followed by `strike`", ErrOrdering)
		}

		strike, ok := nodes[i+1].(*syntax.Tree)
		if !ok || len(strike.Children) == 0 {
			return nil, fmt.Errorf("%w: `strike` holds no value", ErrOrdering)
		}

		value, ok := strike.Children[0].(*syntax.Token)
		if !ok {
			return nil, fmt.Errorf("%w: `strike` must hold a value", ErrOrdering)
		}

		out = append(out, &syntax.Tree{
			Label: strikeLabel,
			Children: []syntax.Node{
				&syntax.Token{Type: isRelative, Value: flag.Value},
				&syntax.Token{Type: fullStrikeBp, Value: value.Value},
			},
		})
		i++
	}

	return out, nil
}

// ScheduleStep gathers the legs of a leverage schedule into one list of
// start times and one list of end times
type ScheduleStep struct{}

func (ScheduleStep) Reduce(t *syntax.Tree) (syntax.Node, bool, error) {
	if t.Label != scheduleLabel {
		return nil, false, nil
	}

	var starts, ends []syntax.Node
	for _, c := range t.Children {
		leg, ok := c.(*syntax.Tree)
		if !ok {
			return nil, false, fmt.Errorf("%w: unexpected `%s` in schedule", ErrOrdering, c.NodeName())
		}

		switch leg.Label {
		case startTimeLabel:
			starts = append(starts, leg.Children...)
		case endTimeLabel:
			ends = append(ends, leg.Children...)
		default:
			return nil, false, fmt.Errorf("%w: unexpected `%s` in schedule", ErrOrdering, leg.Label)
		}
	}

	return &syntax.Tree{
		Label: scheduleLabel,
		Children: []syntax.Node{
			&syntax.Tree{Label: startTimeLabel, Children: starts},
			&syntax.Tree{Label: endTimeLabel, Children: ends},
		},
		Rule: t.Rule,
	}, true, nil
}

func (ScheduleStep) Expand(nodes []syntax.Node) ([]syntax.Node, error) {
	out := make([]syntax.Node, 0, len(nodes))

	for i := 0; i < len(nodes); i++ {
		starts, ok := nodes[i].(*syntax.Tree)
		if !ok || nameOf(starts) != startTimeLabel {
			out = append(out, nodes[i])
			continue
		}

		var ends *syntax.Tree
		if i+1 < len(nodes) {
			ends, _ = nodes[i+1].(*syntax.Tree)
		}

		if ends == nil || nameOf(ends) != endTimeLabel {
			return nil, fmt.Errorf("%w: `start_time` must be immediately followed by `end_time`", ErrOrdering)
		}

		if len(starts.Children) != len(ends.Children) {
			return nil, fmt.Errorf("%w: %d start times for %d end times", ErrOrdering, len(starts.Children), len(ends.Children))
		}

		for j := range starts.Children {
			out = append(out,
				&syntax.Tree{Label: starts.Label, Children: starts.Children[j : j+1]},
				&syntax.Tree{Label: ends.Label, Children: ends.Children[j : j+1]},
			)
		}
		i++
	}

	return out, nil
}
