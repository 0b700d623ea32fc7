package store

import "github.com/retailerkit/planner/pkg/domain/entities"

// Built-in cafe dataset used when a persisted section is missing or corrupt.
// Each section falls back independently, so ids are generated per load.

// DefaultGeneralParameters returns the default planning weights
func DefaultGeneralParameters() entities.GeneralParameters {
	return entities.GeneralParameters{
		MaxProduction:             100,
		EnforceSalesMix:           false,
		ModelType:                 entities.ModelTypeAdvanced,
		WeightProfit:              1,
		WeightRating:              2,
		WeightFocus:               0.8,
		WeightVelocity:            5,
		LowerboundScoreMultiplier: 0.95,
		LowerboundProfitMult:      0.8,
	}
}

// DefaultComponents returns the default raw-material components
func DefaultComponents() []entities.Component {
	return []entities.Component{
		{ID: entities.NewComponentID(), Name: "Coffee_Inv", Cost: 0.5, Stock: 100},
		{ID: entities.NewComponentID(), Name: "Cake_Slice_Inv", Cost: 1.0, Stock: 50},
	}
}

// DefaultProducts returns the default finished products
func DefaultProducts() []entities.Product {
	return []entities.Product{
		{
			ID:              entities.NewProductID(),
			Name:            "Coffee",
			SellingPrice:    3.0,
			SalesMixRatio:   1,
			BillOfMaterials: entities.BillOfMaterials{"Coffee_Inv": 1, "Cake_Slice_Inv": 0},
			ProductRating:   8,
			IsFocusItem:     false,
			SalesVelocity:   3,
		},
		{
			ID:              entities.NewProductID(),
			Name:            "Cake_Slice",
			SellingPrice:    4.0,
			SalesMixRatio:   1,
			BillOfMaterials: entities.BillOfMaterials{"Coffee_Inv": 0, "Cake_Slice_Inv": 1},
			ProductRating:   7,
			IsFocusItem:     false,
			SalesVelocity:   3,
		},
		{
			ID:              entities.NewProductID(),
			Name:            "Morning_Deal",
			SellingPrice:    6.5,
			SalesMixRatio:   1,
			BillOfMaterials: entities.BillOfMaterials{"Coffee_Inv": 1, "Cake_Slice_Inv": 1},
			ProductRating:   10,
			IsFocusItem:     true,
			SalesVelocity:   10,
		},
	}
}

// PlaceholderSolutions returns the canned candidate set shown in the
// solution panel before the first solve. Plans are keyed by display name,
// so no product list is needed for labeling.
func PlaceholderSolutions() entities.SolutionSet {
	return entities.SolutionSet{
		Solutions: []entities.Solution{
			{
				ProductionPlan:   map[string]float64{"Coffee": 54, "Cake_Slice": 4, "Morning_Deal": 46},
				FinancialSummary: entities.FinancialSummary{GrossProfit: 377, TotalRevenue: 477, TotalCOGS: 100},
				StrategicSummary: entities.StrategicSummary{TotalRatingScore: 920, TotalFocusScore: 46, TotalVelocityScore: 634, TotalValueScore: 5423.8},
			},
			{
				ProductionPlan:   map[string]float64{"Coffee": 53, "Cake_Slice": 3, "Morning_Deal": 47},
				FinancialSummary: entities.FinancialSummary{GrossProfit: 376.5, TotalRevenue: 476.5, TotalCOGS: 100},
				StrategicSummary: entities.StrategicSummary{TotalRatingScore: 915, TotalFocusScore: 47, TotalVelocityScore: 638, TotalValueScore: 5434.1},
			},
			{
				ProductionPlan:   map[string]float64{"Coffee": 52, "Cake_Slice": 2, "Morning_Deal": 48},
				FinancialSummary: entities.FinancialSummary{GrossProfit: 376, TotalRevenue: 476, TotalCOGS: 100},
				StrategicSummary: entities.StrategicSummary{TotalRatingScore: 910, TotalFocusScore: 48, TotalVelocityScore: 642, TotalValueScore: 5444.4},
			},
			{
				ProductionPlan:   map[string]float64{"Coffee": 51, "Cake_Slice": 1, "Morning_Deal": 49},
				FinancialSummary: entities.FinancialSummary{GrossProfit: 375.5, TotalRevenue: 475.5, TotalCOGS: 100},
				StrategicSummary: entities.StrategicSummary{TotalRatingScore: 905, TotalFocusScore: 49, TotalVelocityScore: 646, TotalValueScore: 5454.7},
			},
			{
				ProductionPlan:   map[string]float64{"Coffee": 50, "Cake_Slice": 0, "Morning_Deal": 50},
				FinancialSummary: entities.FinancialSummary{GrossProfit: 375, TotalRevenue: 475, TotalCOGS: 100},
				StrategicSummary: entities.StrategicSummary{TotalRatingScore: 900, TotalFocusScore: 50, TotalVelocityScore: 650, TotalValueScore: 5465},
			},
		},
	}
}

// DefaultState returns the complete default dataset
func DefaultState() entities.PlanningState {
	return entities.PlanningState{
		GeneralParameters: DefaultGeneralParameters(),
		Products:          DefaultProducts(),
		Components:        DefaultComponents(),
	}
}
