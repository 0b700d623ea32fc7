package services

import (
	"github.com/retailerkit/planner/pkg/application/dto"
	"github.com/retailerkit/planner/pkg/domain/entities"
)

// BuildSolveRequest serializes the planning state into the solver's request
// shape. Products and components are re-keyed so the solver-facing name is
// the internal id, and each product BOM is translated from component names
// to component ids. A BOM entry whose component name no longer resolves is
// dropped silently; stale references are tolerated here, not rejected.
func BuildSolveRequest(state entities.PlanningState) *dto.SolveRequest {
	nameToID := make(map[string]string, len(state.Components))
	for _, c := range state.Components {
		nameToID[c.Name] = string(c.ID)
	}

	products := make([]dto.RequestProduct, 0, len(state.Products))
	for _, p := range state.Products {
		bom := make(map[string]float64, len(p.BillOfMaterials))
		for componentName, qty := range p.BillOfMaterials {
			if componentID, ok := nameToID[componentName]; ok {
				bom[componentID] = qty
			}
		}
		products = append(products, dto.RequestProduct{
			Name:            string(p.ID),
			SellingPrice:    p.SellingPrice,
			SalesMixRatio:   p.SalesMixRatio,
			ProductRating:   p.ProductRating,
			IsFocusItem:     p.IsFocusItem,
			SalesVelocity:   p.SalesVelocity,
			BillOfMaterials: bom,
		})
	}

	components := make([]dto.RequestComponent, 0, len(state.Components))
	for _, c := range state.Components {
		components = append(components, dto.RequestComponent{
			Name:      string(c.ID),
			Available: c.Stock,
			Cost:      c.Cost,
		})
	}

	params := state.GeneralParameters
	params.ModelType = entities.ModelTypeAdvanced

	return &dto.SolveRequest{
		Data: dto.SolveRequestData{
			GeneralParameters: params,
			Products:          products,
			Components:        components,
		},
	}
}
