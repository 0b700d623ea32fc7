package entities

// FinancialSummary summarizes the money outcome of one candidate solution
type FinancialSummary struct {
	GrossProfit  float64 `json:"gross_profit"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalCOGS    float64 `json:"total_cogs"`
}

// StrategicSummary summarizes the scoring outcome of one candidate solution
type StrategicSummary struct {
	TotalRatingScore   float64 `json:"total_rating_score"`
	TotalFocusScore    float64 `json:"total_focus_score"`
	TotalVelocityScore float64 `json:"total_velocity_score"`
	TotalValueScore    float64 `json:"total_value_score"`
}

// Solution is one candidate production plan returned by the solver.
// The production plan is keyed by product id (the solver-facing name).
type Solution struct {
	ProductionPlan   map[string]float64 `json:"production_plan"`
	FinancialSummary FinancialSummary   `json:"financial_summary"`
	StrategicSummary StrategicSummary   `json:"strategic_summary"`
}

// SolutionSet holds the solver's candidate solutions alongside the product
// list captured when the response was applied. It lives only in memory for
// the current session and is discarded on restart.
type SolutionSet struct {
	Solutions []Solution `json:"solutions"`
	Products  []Product  `json:"products"`
}

// Empty reports whether there is anything to visualize
func (s SolutionSet) Empty() bool {
	return len(s.Solutions) == 0
}
