package entities

import (
	"errors"
	"strings"
	"testing"
)

func TestNewProduct_Defaults(t *testing.T) {
	p, err := NewProduct("", "Coffee", 3.0, 1, nil, 8, false, 3)
	if err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	if !strings.HasPrefix(string(p.ID), "product_") {
		t.Errorf("Expected product_ prefix, got %s", p.ID)
	}
	if p.BillOfMaterials == nil {
		t.Error("Expected BOM to default to an empty mapping, got nil")
	}
	if len(p.BillOfMaterials) != 0 {
		t.Errorf("Expected empty BOM, got %v", p.BillOfMaterials)
	}
}

func TestNewProduct_ZeroQuantityIsValid(t *testing.T) {
	p, err := NewProduct("", "Coffee", 3.0, 1,
		BillOfMaterials{"Coffee_Inv": 1, "Cake_Slice_Inv": 0}, 8, false, 3)
	if err != nil {
		t.Fatalf("Failed to create product with zero-quantity BOM entry: %v", err)
	}
	if p.BillOfMaterials["Cake_Slice_Inv"] != 0 {
		t.Errorf("Expected zero quantity to be preserved, got %v", p.BillOfMaterials["Cake_Slice_Inv"])
	}
}

func TestNewProduct_NegativeQuantity(t *testing.T) {
	_, err := NewProduct("", "Coffee", 3.0, 1,
		BillOfMaterials{"Coffee_Inv": -1}, 8, false, 3)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError for negative quantity, got %v", err)
	}
	if validationErr.Field != "bill_of_materials" {
		t.Errorf("Expected field bill_of_materials, got %s", validationErr.Field)
	}
}

func TestNewProduct_EmptyName(t *testing.T) {
	_, err := NewProduct("", "  ", 3.0, 1, nil, 8, false, 3)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError for empty name, got %v", err)
	}
}

func TestNewProduct_ClonesBOM(t *testing.T) {
	bom := BillOfMaterials{"Coffee_Inv": 1}
	p, err := NewProduct("", "Coffee", 3.0, 1, bom, 8, false, 3)
	if err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	bom["Coffee_Inv"] = 99
	if p.BillOfMaterials["Coffee_Inv"] != 1 {
		t.Error("Product BOM shares storage with the input mapping")
	}
}
