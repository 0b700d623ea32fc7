package entities

// ModelTypeAdvanced is the solver model the planner always requests
const ModelTypeAdvanced = "production_planning_adv"

// GeneralParameters holds the global planning weights and bounds.
// The block is edited and persisted as a single unit.
type GeneralParameters struct {
	MaxProduction             float64 `json:"max_production"`
	EnforceSalesMix           bool    `json:"enforce_sales_mix"`
	ModelType                 string  `json:"model_type"`
	WeightProfit              float64 `json:"w_profit"`
	WeightRating              float64 `json:"w_rating"`
	WeightFocus               float64 `json:"w_focus"`
	WeightVelocity            float64 `json:"w_velocity"`
	LowerboundScoreMultiplier float64 `json:"lowerbound_score_multiplier"`
	LowerboundProfitMult      float64 `json:"lowerbound_profit_multiplier"`
}
