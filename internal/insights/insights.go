// Package insights turns a computed report into the human-readable
// findings, recommended actions and export-ready narrative shown on the
// dashboards.
package insights

import (
	"fmt"
	"math"

	"sales-dashboard/internal/models"
)

type Insights struct {
	Findings        []string `json:"findings"`
	Recommendations []string `json:"recommendations"`
	Narrative       string   `json:"narrative"`
}

// Build derives insights from a report. An empty report yields empty
// insights rather than an error.
func Build(rep *models.Report) Insights {
	var ins Insights
	if rep == nil || rep.Summary.Rows == 0 {
		return ins
	}

	if top, ok := topSalesCategory(rep.Categories); ok {
		ins.Findings = append(ins.Findings, fmt.Sprintf("Biggest sales driver: %s.", top))
	}
	if worst, ok := worstProfitCategory(rep.Categories); ok {
		ins.Findings = append(ins.Findings, fmt.Sprintf("Largest profit drag: %s.", worst))
	}

	lossPct := float64(rep.Summary.LossOrderCount) / float64(rep.Summary.Rows) * 100
	ins.Findings = append(ins.Findings,
		fmt.Sprintf("High discounts (>=30%%) account for %.1f%% of orders with losses.", lossPct))

	ins.Recommendations = []string{
		"Cap discounts at 20% or less for low-margin categories.",
		"Protect high-margin categories from blanket promotions.",
		"Prioritize intervention in loss-heavy regions before expanding sales.",
		"Track sales and profit together: sales growth with falling profit signals discount leakage.",
	}

	ins.Narrative = fmt.Sprintf(
		"During the review period, total sales reached %s with overall profit of %s. "+
			"Analysis shows that aggressive discounting beyond 30%% is a primary driver of "+
			"losses, accounting for %d unprofitable orders. Profit leakage is concentrated "+
			"in specific product categories and regions, indicating targeted intervention "+
			"opportunities. Reducing high-risk discounting and prioritizing high-margin "+
			"products is expected to stabilize profitability without sacrificing core "+
			"revenue streams.",
		FormatMoney(rep.Summary.TotalSales),
		FormatMoney(rep.Summary.TotalProfit),
		rep.Summary.LossOrderCount,
	)

	return ins
}

func topSalesCategory(categories []models.CategoryProfit) (string, bool) {
	best, ok := "", false
	var bestSales float64
	for _, c := range categories {
		if !ok || c.Sales > bestSales {
			best, bestSales, ok = c.Category, c.Sales, true
		}
	}
	return best, ok
}

func worstProfitCategory(categories []models.CategoryProfit) (string, bool) {
	worst, ok := "", false
	var worstProfit float64
	for _, c := range categories {
		if !ok || c.Profit < worstProfit {
			worst, worstProfit, ok = c.Category, c.Profit, true
		}
	}
	return worst, ok
}

// FormatMoney renders a currency KPI the way the dashboards do: millions
// with two decimals, thousands with one, anything smaller as whole
// dollars.
func FormatMoney(x float64) string {
	switch {
	case math.Abs(x) >= 1_000_000:
		return fmt.Sprintf("$%.2fM", x/1_000_000)
	case math.Abs(x) >= 1_000:
		return fmt.Sprintf("$%.1fK", x/1_000)
	default:
		return fmt.Sprintf("$%.0f", x)
	}
}
