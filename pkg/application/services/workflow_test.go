package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/retailerkit/planner/pkg/application/store"
	"github.com/retailerkit/planner/pkg/domain/entities"
	"github.com/retailerkit/planner/pkg/infrastructure/repositories/memory"
)

func newTestWorkflow(t *testing.T) (*Workflow, *store.Store) {
	t.Helper()
	s := store.New(context.Background(), memory.NewSectionRepository(), nil)
	return NewWorkflow(s, nil), s
}

func TestOpenEdit_OnlyOneSession(t *testing.T) {
	wf, _ := newTestWorkflow(t)

	session, err := wf.OpenEdit(EntityComponent, "")
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}

	if _, err := wf.OpenEdit(EntityProduct, ""); !errors.Is(err, ErrSessionOpen) {
		t.Errorf("Expected ErrSessionOpen for second session, got %v", err)
	}

	session.Cancel()
	if _, err := wf.OpenEdit(EntityProduct, ""); err != nil {
		t.Errorf("Expected open to succeed after cancel, got %v", err)
	}
}

func TestCancel_HasNoEffectOnStore(t *testing.T) {
	wf, s := newTestWorkflow(t)
	productID := string(s.GetState().Products[0].ID)
	before := s.GetState()

	session, err := wf.OpenEdit(EntityProduct, productID)
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}

	// Mutate the draft: remove a line, re-add another
	if err := session.RemoveBOMLine("Cake_Slice_Inv"); err != nil {
		t.Fatalf("Failed to remove BOM line: %v", err)
	}
	if err := session.RemoveBOMLine("Coffee_Inv"); err != nil {
		t.Fatalf("Failed to remove BOM line: %v", err)
	}
	if err := session.AddBOMLine("Cake_Slice_Inv"); err != nil {
		t.Fatalf("Failed to add BOM line: %v", err)
	}
	session.Cancel()

	after := s.GetState()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Cancelled session changed persisted state.\nbefore: %+v\nafter: %+v", before, after)
	}
}

func TestBOMAddThenRemove_Idempotent(t *testing.T) {
	wf, s := newTestWorkflow(t)
	productID := string(s.GetState().Products[0].ID)

	session, err := wf.OpenEdit(EntityProduct, productID)
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}

	// Clear an entry so it becomes addable again
	if err := session.RemoveBOMLine("Cake_Slice_Inv"); err != nil {
		t.Fatalf("Failed to remove BOM line: %v", err)
	}
	before := session.ProductDraft().BillOfMaterials

	if err := session.AddBOMLine("Cake_Slice_Inv"); err != nil {
		t.Fatalf("Failed to add BOM line: %v", err)
	}
	if err := session.RemoveBOMLine("Cake_Slice_Inv"); err != nil {
		t.Fatalf("Failed to remove BOM line: %v", err)
	}

	after := session.ProductDraft().BillOfMaterials
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Add then remove changed the draft BOM.\nbefore: %v\nafter: %v", before, after)
	}
}

func TestAddBOMLine_DefaultQuantityOne(t *testing.T) {
	wf, s := newTestWorkflow(t)
	productID := string(s.GetState().Products[0].ID)

	session, _ := wf.OpenEdit(EntityProduct, productID)
	if err := session.RemoveBOMLine("Cake_Slice_Inv"); err != nil {
		t.Fatalf("Failed to remove BOM line: %v", err)
	}
	if err := session.AddBOMLine("Cake_Slice_Inv"); err != nil {
		t.Fatalf("Failed to add BOM line: %v", err)
	}
	if qty := session.ProductDraft().BillOfMaterials["Cake_Slice_Inv"]; qty != 1 {
		t.Errorf("Expected default quantity 1, got %v", qty)
	}
}

func TestAddBOMLine_RejectsDuplicateAndUnknown(t *testing.T) {
	wf, s := newTestWorkflow(t)
	productID := string(s.GetState().Products[0].ID)

	session, _ := wf.OpenEdit(EntityProduct, productID)

	var validationErr *entities.ValidationError
	if err := session.AddBOMLine("Coffee_Inv"); !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError adding a duplicate line, got %v", err)
	}
	if err := session.AddBOMLine("No_Such_Inv"); !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError adding an unknown component, got %v", err)
	}
}

func TestEligibleComponents_ReadLiveFromStore(t *testing.T) {
	wf, s := newTestWorkflow(t)
	ctx := context.Background()
	state := s.GetState()
	productID := string(state.Products[0].ID)
	cakeSliceID := string(state.Components[1].ID)

	session, _ := wf.OpenEdit(EntityProduct, productID)
	if err := session.RemoveBOMLine("Cake_Slice_Inv"); err != nil {
		t.Fatalf("Failed to remove BOM line: %v", err)
	}

	// Cake_Slice_Inv is addable while it still exists
	found := false
	for _, c := range session.EligibleComponents() {
		if c.Name == "Cake_Slice_Inv" {
			found = true
		}
	}
	if !found {
		t.Fatal("Expected Cake_Slice_Inv to be eligible before deletion")
	}

	// Delete it from the store while the session is open
	if _, err := wf.RequestDelete(EntityComponent, cakeSliceID); err != nil {
		t.Fatalf("Failed to request delete: %v", err)
	}
	if _, err := wf.ConfirmDelete(ctx); err != nil {
		t.Fatalf("Failed to confirm delete: %v", err)
	}

	for _, c := range session.EligibleComponents() {
		if c.Name == "Cake_Slice_Inv" {
			t.Error("Deleted component must not be eligible for adding")
		}
	}
	if err := session.AddBOMLine("Cake_Slice_Inv"); err == nil {
		t.Error("Expected adding a deleted component to fail")
	}
}

func TestSubmitComponent_Create(t *testing.T) {
	wf, s := newTestWorkflow(t)
	ctx := context.Background()

	session, _ := wf.OpenEdit(EntityComponent, "")
	err := session.SubmitComponent(ctx, ComponentForm{Name: "Milk Inv", Cost: "0.3", Stock: "40"})
	if err != nil {
		t.Fatalf("Failed to submit component: %v", err)
	}

	state := s.GetState()
	if len(state.Components) != 3 {
		t.Fatalf("Expected 3 components after create, got %d", len(state.Components))
	}
	created := state.Components[2]
	if created.Name != "Milk_Inv" {
		t.Errorf("Expected normalized name Milk_Inv, got %s", created.Name)
	}
	if created.Cost != 0.3 || created.Stock != 40 {
		t.Errorf("Unexpected field values: %+v", created)
	}
	if wf.Session() != nil {
		t.Error("Expected session to close after submit")
	}
}

func TestSubmitComponent_ReplaceKeepsID(t *testing.T) {
	wf, s := newTestWorkflow(t)
	ctx := context.Background()
	original := s.GetState().Components[0]

	session, _ := wf.OpenEdit(EntityComponent, string(original.ID))
	err := session.SubmitComponent(ctx, ComponentForm{Name: original.Name, Cost: "0.6", Stock: "120"})
	if err != nil {
		t.Fatalf("Failed to submit component: %v", err)
	}

	state := s.GetState()
	if len(state.Components) != 2 {
		t.Fatalf("Expected component count unchanged, got %d", len(state.Components))
	}
	updated := state.Components[0]
	if updated.ID != original.ID {
		t.Errorf("Expected id %s to survive the edit, got %s", original.ID, updated.ID)
	}
	if updated.Cost != 0.6 || updated.Stock != 120 {
		t.Errorf("Expected full-record replace, got %+v", updated)
	}
}

func TestSubmitComponent_ValidationKeepsSessionOpen(t *testing.T) {
	wf, s := newTestWorkflow(t)
	ctx := context.Background()
	before := s.GetState()

	session, _ := wf.OpenEdit(EntityComponent, "")

	var validationErr *entities.ValidationError

	// Empty name must fail, never silently default
	err := session.SubmitComponent(ctx, ComponentForm{Name: "", Cost: "1", Stock: "1"})
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError for empty name, got %v", err)
	}

	// Unparseable numbers must fail, never be coerced to zero
	err = session.SubmitComponent(ctx, ComponentForm{Name: "Milk_Inv", Cost: "abc", Stock: "1"})
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError for bad cost, got %v", err)
	}

	if wf.Session() == nil {
		t.Error("Expected session to stay open after validation failure")
	}
	if !reflect.DeepEqual(before, s.GetState()) {
		t.Error("Failed submission must not change persisted state")
	}
}

func TestSubmitComponent_DuplicateName(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	ctx := context.Background()

	session, _ := wf.OpenEdit(EntityComponent, "")
	err := session.SubmitComponent(ctx, ComponentForm{Name: "Coffee Inv", Cost: "1", Stock: "1"})

	var validationErr *entities.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError for duplicate name, got %v", err)
	}
}

func TestSubmitProduct_RebuildsBOMFromForm(t *testing.T) {
	wf, s := newTestWorkflow(t)
	ctx := context.Background()
	productID := string(s.GetState().Products[0].ID)

	session, _ := wf.OpenEdit(EntityProduct, productID)
	err := session.SubmitProduct(ctx, ProductForm{
		Name:          "Coffee",
		SellingPrice:  "3.5",
		SalesMixRatio: "1",
		ProductRating: "9",
		SalesVelocity: "4",
		IsFocusItem:   true,
		BOMLines: []BOMLineForm{
			{ComponentName: "Coffee_Inv", Quantity: "2"},
		},
	})
	if err != nil {
		t.Fatalf("Failed to submit product: %v", err)
	}

	updated := *s.GetState().FindProduct(entities.ProductID(productID))
	want := entities.BillOfMaterials{"Coffee_Inv": 2}
	if !reflect.DeepEqual(updated.BillOfMaterials, want) {
		t.Errorf("Expected BOM rebuilt from form lines %v, got %v", want, updated.BillOfMaterials)
	}
	if updated.SellingPrice != 3.5 || !updated.IsFocusItem {
		t.Errorf("Unexpected product fields: %+v", updated)
	}
}

func TestSubmitProduct_BadBOMQuantity(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	ctx := context.Background()

	session, _ := wf.OpenEdit(EntityProduct, "")
	var validationErr *entities.ValidationError

	err := session.SubmitProduct(ctx, ProductForm{
		Name: "Latte", SellingPrice: "4", SalesMixRatio: "1",
		ProductRating: "5", SalesVelocity: "2",
		BOMLines: []BOMLineForm{{ComponentName: "Coffee_Inv", Quantity: "two"}},
	})
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError for unparseable quantity, got %v", err)
	}

	err = session.SubmitProduct(ctx, ProductForm{
		Name: "Latte", SellingPrice: "4", SalesMixRatio: "1",
		ProductRating: "5", SalesVelocity: "2",
		BOMLines: []BOMLineForm{{ComponentName: "Coffee_Inv", Quantity: "-1"}},
	})
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError for negative quantity, got %v", err)
	}

	if wf.Session() == nil {
		t.Error("Expected session to stay open after validation failure")
	}
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	wf, s := newTestWorkflow(t)
	ctx := context.Background()
	before := s.GetState()
	productID := string(before.Products[0].ID)

	if _, err := wf.RequestDelete(EntityProduct, productID); err != nil {
		t.Fatalf("Failed to request delete: %v", err)
	}
	if !reflect.DeepEqual(before, s.GetState()) {
		t.Fatal("RequestDelete must not change persisted state")
	}

	wf.CancelDelete()
	if !reflect.DeepEqual(before, s.GetState()) {
		t.Fatal("CancelDelete must not change persisted state")
	}
	if wf.PendingDelete() != nil {
		t.Error("Expected no pending delete after cancel")
	}

	if _, err := wf.RequestDelete(EntityProduct, productID); err != nil {
		t.Fatalf("Failed to request delete: %v", err)
	}
	if _, err := wf.ConfirmDelete(ctx); err != nil {
		t.Fatalf("Failed to confirm delete: %v", err)
	}

	after := s.GetState()
	if len(after.Products) != len(before.Products)-1 {
		t.Fatalf("Expected %d products after delete, got %d", len(before.Products)-1, len(after.Products))
	}
	if after.FindProduct(entities.ProductID(productID)) != nil {
		t.Error("Deleted product still present")
	}
}

func TestDelete_ComponentWarnsWhenReferenced(t *testing.T) {
	wf, s := newTestWorkflow(t)
	ctx := context.Background()
	// Coffee_Inv appears in every default product BOM
	coffeeInvID := string(s.GetState().Components[0].ID)

	if _, err := wf.RequestDelete(EntityComponent, coffeeInvID); err != nil {
		t.Fatalf("Failed to request delete: %v", err)
	}
	warning, err := wf.ConfirmDelete(ctx)
	if err != nil {
		t.Fatalf("Failed to confirm delete: %v", err)
	}
	if warning == nil {
		t.Fatal("Expected a referential integrity warning")
	}
	if warning.ComponentName != "Coffee_Inv" {
		t.Errorf("Expected warning for Coffee_Inv, got %s", warning.ComponentName)
	}
	if len(warning.Products) != 3 {
		t.Errorf("Expected all 3 default products flagged, got %v", warning.Products)
	}

	// The delete itself proceeds; stale BOM entries are kept
	state := s.GetState()
	if len(state.Components) != 1 {
		t.Errorf("Expected 1 component after delete, got %d", len(state.Components))
	}
	if _, present := state.Products[0].BillOfMaterials["Coffee_Inv"]; !present {
		t.Error("Stale BOM references should be kept at delete time")
	}
}

func TestUpdateGeneralParameters(t *testing.T) {
	wf, s := newTestWorkflow(t)
	ctx := context.Background()

	err := wf.UpdateGeneralParameters(ctx, ParametersForm{
		MaxProduction:              "250",
		EnforceSalesMix:            true,
		WeightProfit:               "1.5",
		WeightRating:               "2",
		WeightFocus:                "0.8",
		WeightVelocity:             "5",
		LowerboundScoreMultiplier:  "0.9",
		LowerboundProfitMultiplier: "0.7",
	})
	if err != nil {
		t.Fatalf("Failed to update parameters: %v", err)
	}

	params := s.GetState().GeneralParameters
	if params.MaxProduction != 250 || !params.EnforceSalesMix || params.WeightProfit != 1.5 {
		t.Errorf("Unexpected parameters: %+v", params)
	}
	if params.ModelType != entities.ModelTypeAdvanced {
		t.Errorf("Expected pinned model type, got %s", params.ModelType)
	}

	var validationErr *entities.ValidationError
	err = wf.UpdateGeneralParameters(ctx, ParametersForm{MaxProduction: "lots"})
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError for bad max_production, got %v", err)
	}
}

func TestHandleCommand(t *testing.T) {
	wf, s := newTestWorkflow(t)
	productID := string(s.GetState().Products[0].ID)

	if err := wf.HandleCommand(Command{Kind: CommandEdit, EntityType: EntityProduct, ID: productID}); err != nil {
		t.Fatalf("Failed to handle edit command: %v", err)
	}
	if wf.Session() == nil || wf.Session().IsNew() {
		t.Error("Expected an edit session for an existing product")
	}
	wf.Session().Cancel()

	if err := wf.HandleCommand(Command{Kind: CommandDelete, EntityType: EntityProduct, ID: productID}); err != nil {
		t.Fatalf("Failed to handle delete command: %v", err)
	}
	if wf.PendingDelete() == nil {
		t.Error("Expected a pending delete")
	}

	if err := wf.HandleCommand(Command{Kind: "rename"}); err == nil {
		t.Error("Expected error for unknown command kind")
	}
}

func TestSubmitAfterCancel_Rejected(t *testing.T) {
	wf, s := newTestWorkflow(t)
	ctx := context.Background()
	before := s.GetState()

	session, err := wf.OpenEdit(EntityComponent, "")
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}
	session.Cancel()

	err = session.SubmitComponent(ctx, ComponentForm{Name: "Ghost_Inv", Cost: "1", Stock: "1"})
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("Expected ErrNoSession for a cancelled session, got %v", err)
	}

	// A session replaced by a newer one must not submit either
	stale, err := wf.OpenEdit(EntityProduct, "")
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}
	stale.Cancel()
	if _, err := wf.OpenEdit(EntityProduct, ""); err != nil {
		t.Fatalf("Failed to open replacement session: %v", err)
	}
	err = stale.SubmitProduct(ctx, ProductForm{
		Name: "Ghost", SellingPrice: "1", SalesMixRatio: "1",
		ProductRating: "1", SalesVelocity: "1",
	})
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("Expected ErrNoSession for a stale session, got %v", err)
	}

	wf.Session().Cancel()
	if !reflect.DeepEqual(before, s.GetState()) {
		t.Error("Closed sessions wrote through the store")
	}
}
