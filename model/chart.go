package model

import "strings"

// Chart identifies one of the overview charts.
type Chart string

// Chart constants.
const (
	ChartContainer Chart = "container"
	ChartTest      Chart = "test"
	ChartStep      Chart = "step"
)

// DefaultChartOrder is the order charts are shown in unless configured.
var DefaultChartOrder = []Chart{ChartContainer, ChartTest, ChartStep}

// ParseChart parses a chart name, case insensitive.
func ParseChart(in string) (Chart, error) {
	c := Chart(strings.ToLower(strings.TrimSpace(in)))
	switch c {
	case ChartContainer, ChartTest, ChartStep:
		return c, nil
	}
	return "", Errorf(ErrCodeConfig, "unknown chart %q", in)
}

// ValidateChartOrder rejects unknown and duplicate charts.
func ValidateChartOrder(order []Chart) error {
	if len(order) == 0 {
		return NewError(ErrCodeConfig, "chart order must name at least one chart")
	}
	seen := make(map[Chart]bool, len(order))
	for _, c := range order {
		if _, err := ParseChart(string(c)); err != nil {
			return err
		}
		if seen[c] {
			return Errorf(ErrCodeConfig, "duplicate chart %q in chart order", c)
		}
		seen[c] = true
	}
	return nil
}
