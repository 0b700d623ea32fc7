package entities

// PlanningState is the aggregate root: the single unit of truth every view
// and every outbound solve request derives from
type PlanningState struct {
	GeneralParameters GeneralParameters `json:"general_parameters"`
	Products          []Product         `json:"products"`
	Components        []Component       `json:"components"`
}

// Clone returns a deep copy of the state, including every product's BOM
func (s PlanningState) Clone() PlanningState {
	out := PlanningState{
		GeneralParameters: s.GeneralParameters,
		Products:          make([]Product, len(s.Products)),
		Components:        make([]Component, len(s.Components)),
	}
	for i, p := range s.Products {
		p.BillOfMaterials = p.BillOfMaterials.Clone()
		out.Products[i] = p
	}
	copy(out.Components, s.Components)
	return out
}

// FindComponent returns the component with the given id, or nil
func (s PlanningState) FindComponent(id ComponentID) *Component {
	for i := range s.Components {
		if s.Components[i].ID == id {
			return &s.Components[i]
		}
	}
	return nil
}

// FindProduct returns the product with the given id, or nil
func (s PlanningState) FindProduct(id ProductID) *Product {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return &s.Products[i]
		}
	}
	return nil
}

// ComponentNames returns the set of component names currently in the state
func (s PlanningState) ComponentNames() map[string]bool {
	names := make(map[string]bool, len(s.Components))
	for _, c := range s.Components {
		names[c.Name] = true
	}
	return names
}
