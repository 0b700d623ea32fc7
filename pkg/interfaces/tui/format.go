package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/retailerkit/planner/pkg/domain/entities"
)

// formatMoney renders a money amount with a fixed two-decimal scale
func formatMoney(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

// formatScore renders a strategic score with one decimal place
func formatScore(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1)
}

// formatNumber renders a numeric field the way it round-trips through the
// form parser, without trailing zeros
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// productNames maps product ids to display names. The production plan keys
// solutions by id, so charts translate back before rendering.
func productNames(products []entities.Product) map[string]string {
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[string(p.ID)] = p.Name
	}
	return names
}

// planBar is one labeled quantity in the production plan chart
type planBar struct {
	Label    string
	Quantity float64
}

// planBars flattens a solution's production plan into label-sorted bars.
// Ids without a matching product fall back to the raw id.
func planBars(solution entities.Solution, names map[string]string) []planBar {
	bars := make([]planBar, 0, len(solution.ProductionPlan))
	for id, qty := range solution.ProductionPlan {
		label := id
		if name, ok := names[id]; ok {
			label = name
		}
		bars = append(bars, planBar{Label: label, Quantity: qty})
	}
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Label < bars[j].Label
	})
	return bars
}

// renderBars draws a horizontal unicode bar chart, scaling the longest bar
// to width cells
func renderBars(bars []planBar, width int) string {
	if len(bars) == 0 {
		return dimStyle.Render("(empty production plan)")
	}
	if width < 1 {
		width = 1
	}

	labelWidth := 0
	maxQty := 0.0
	for _, bar := range bars {
		if len(bar.Label) > labelWidth {
			labelWidth = len(bar.Label)
		}
		if bar.Quantity > maxQty {
			maxQty = bar.Quantity
		}
	}

	var b strings.Builder
	for i, bar := range bars {
		if i > 0 {
			b.WriteString("\n")
		}
		cells := 0
		if maxQty > 0 {
			cells = int(bar.Quantity / maxQty * float64(width))
		}
		if bar.Quantity > 0 && cells == 0 {
			cells = 1
		}
		b.WriteString(fmt.Sprintf("%-*s ", labelWidth, bar.Label))
		b.WriteString(barStyle.Render(strings.Repeat("█", cells)))
		b.WriteString(fmt.Sprintf(" %s", formatNumber(bar.Quantity)))
	}
	return b.String()
}

// solutionRow is the selectable one-line summary of a candidate solution:
// profit against total value score, the two axes of the scatter view
func solutionRow(index int, solution entities.Solution) string {
	return fmt.Sprintf("Plan %d  profit %s  value %s",
		index+1,
		formatMoney(solution.FinancialSummary.GrossProfit),
		formatScore(solution.StrategicSummary.TotalValueScore))
}

// financialLines renders the money summary of a solution
func financialLines(s entities.FinancialSummary) string {
	return fmt.Sprintf("revenue %s  cogs %s  profit %s",
		formatMoney(s.TotalRevenue),
		formatMoney(s.TotalCOGS),
		formatMoney(s.GrossProfit))
}

// strategicLines renders the scoring summary of a solution
func strategicLines(s entities.StrategicSummary) string {
	return fmt.Sprintf("rating %s  focus %s  velocity %s  value %s",
		formatScore(s.TotalRatingScore),
		formatScore(s.TotalFocusScore),
		formatScore(s.TotalVelocityScore),
		formatScore(s.TotalValueScore))
}
