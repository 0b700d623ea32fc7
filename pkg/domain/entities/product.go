package entities

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ProductID uniquely identifies a finished product
type ProductID string

// BillOfMaterials maps component name to the quantity required per unit.
// A zero quantity is valid and means "no requirement".
type BillOfMaterials map[string]float64

// Clone returns an independent copy of the BOM
func (b BillOfMaterials) Clone() BillOfMaterials {
	if b == nil {
		return BillOfMaterials{}
	}
	out := make(BillOfMaterials, len(b))
	for name, qty := range b {
		out[name] = qty
	}
	return out
}

// Product represents a finished product with its bill of materials
type Product struct {
	ID              ProductID       `json:"id"`
	Name            string          `json:"name"`
	SellingPrice    float64         `json:"selling_price"`
	SalesMixRatio   float64         `json:"sales_mix_ratio"`
	BillOfMaterials BillOfMaterials `json:"bill_of_materials"`
	ProductRating   float64         `json:"product_rating"`
	IsFocusItem     bool            `json:"is_focus_item"`
	SalesVelocity   float64         `json:"sales_velocity"`
}

// NewProduct creates a validated Product, generating an ID when absent.
// The BOM defaults to an empty mapping; quantities must be non-negative.
func NewProduct(
	id ProductID,
	name string,
	sellingPrice float64,
	salesMixRatio float64,
	bom BillOfMaterials,
	productRating float64,
	isFocusItem bool,
	salesVelocity float64,
) (*Product, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, &ValidationError{Field: "name", Reason: "name cannot be empty"}
	}

	for component, qty := range bom {
		if qty < 0 {
			return nil, &ValidationError{
				Field:  "bill_of_materials",
				Reason: fmt.Sprintf("quantity for %s must be non-negative, got %v", component, qty),
			}
		}
	}

	if id == "" {
		id = NewProductID()
	}

	return &Product{
		ID:              id,
		Name:            normalized,
		SellingPrice:    sellingPrice,
		SalesMixRatio:   salesMixRatio,
		BillOfMaterials: bom.Clone(),
		ProductRating:   productRating,
		IsFocusItem:     isFocusItem,
		SalesVelocity:   salesVelocity,
	}, nil
}

// NewProductID generates a fresh globally-unique product identifier
func NewProductID() ProductID {
	return ProductID(productIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", ""))
}
