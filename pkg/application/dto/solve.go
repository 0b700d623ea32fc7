// Package dto defines the wire shapes exchanged with the external solver.
package dto

import "github.com/retailerkit/planner/pkg/domain/entities"

// SolveRequest is the JSON body POSTed to the solver. Products and
// components are re-keyed so the solver-facing name is the internal id.
type SolveRequest struct {
	Data SolveRequestData `json:"data"`
}

// SolveRequestData carries the full planning dataset for one solve
type SolveRequestData struct {
	GeneralParameters entities.GeneralParameters `json:"general_parameters"`
	Products          []RequestProduct           `json:"products"`
	Components        []RequestComponent         `json:"components"`
}

// RequestProduct is a product as the solver sees it: name is the internal
// product id and the BOM is keyed by component id
type RequestProduct struct {
	Name            string             `json:"name"`
	SellingPrice    float64            `json:"selling_price"`
	SalesMixRatio   float64            `json:"sales_mix_ratio"`
	ProductRating   float64            `json:"product_rating"`
	IsFocusItem     bool               `json:"is_focus_item"`
	SalesVelocity   float64            `json:"sales_velocity"`
	BillOfMaterials map[string]float64 `json:"bill_of_materials"`
}

// RequestComponent is a component as the solver sees it: name is the
// internal component id and available is the current stock
type RequestComponent struct {
	Name      string  `json:"name"`
	Available float64 `json:"available"`
	Cost      float64 `json:"cost"`
}

// SolveResponse is the solver's reply: ranked candidate solutions
type SolveResponse struct {
	Solutions []entities.Solution `json:"solutions"`
}
