package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/retailerkit/planner/pkg/application/services"
	"github.com/retailerkit/planner/pkg/application/store"
	badgerrepo "github.com/retailerkit/planner/pkg/infrastructure/repositories/badger"
)

// Demonstrates driving the planning workflow programmatically: edit the
// dataset through draft sessions, then build the request the solver would
// receive.
func main() {
	ctx := context.Background()

	repo, err := badgerrepo.OpenInMemory()
	if err != nil {
		fmt.Printf("Failed to open repository: %v\n", err)
		return
	}
	defer repo.Close()

	planningStore := store.New(ctx, repo, nil)
	workflow := services.NewWorkflow(planningStore, nil)

	unsubscribe := planningStore.Subscribe(func() {
		state := planningStore.GetState()
		fmt.Printf("  state changed: %d components, %d products\n",
			len(state.Components), len(state.Products))
	})
	defer unsubscribe()

	fmt.Println("Adding a component...")
	session, err := workflow.OpenEdit(services.EntityComponent, "")
	if err != nil {
		fmt.Printf("Failed to open edit session: %v\n", err)
		return
	}
	if err := session.SubmitComponent(ctx, services.ComponentForm{
		Name:  "Milk Inv",
		Cost:  "0.25",
		Stock: "200",
	}); err != nil {
		fmt.Printf("Failed to submit component: %v\n", err)
		return
	}

	fmt.Println("Adding a product that uses it...")
	session, err = workflow.OpenEdit(services.EntityProduct, "")
	if err != nil {
		fmt.Printf("Failed to open edit session: %v\n", err)
		return
	}
	if err := session.AddBOMLine("Milk_Inv"); err != nil {
		fmt.Printf("Failed to add BOM line: %v\n", err)
		return
	}
	if err := session.SubmitProduct(ctx, services.ProductForm{
		Name:          "Latte",
		SellingPrice:  "4.50",
		SalesMixRatio: "1",
		ProductRating: "9",
		SalesVelocity: "5",
		IsFocusItem:   true,
		BOMLines: []services.BOMLineForm{
			{ComponentName: "Milk_Inv", Quantity: "2"},
		},
	}); err != nil {
		fmt.Printf("Failed to submit product: %v\n", err)
		return
	}

	fmt.Println("Deleting a component that is still referenced...")
	state := planningStore.GetState()
	for _, c := range state.Components {
		if c.Name != "Coffee_Inv" {
			continue
		}
		if _, err := workflow.RequestDelete(services.EntityComponent, string(c.ID)); err != nil {
			fmt.Printf("Failed to request delete: %v\n", err)
			return
		}
		warning, err := workflow.ConfirmDelete(ctx)
		if err != nil {
			fmt.Printf("Failed to confirm delete: %v\n", err)
			return
		}
		if warning != nil {
			fmt.Printf("  warning: %v\n", warning)
		}
	}

	fmt.Println("\nSolver request for the current state:")
	request := services.BuildSolveRequest(planningStore.GetState())
	encoded, err := json.MarshalIndent(request, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode request: %v\n", err)
		return
	}
	fmt.Println(string(encoded))
}
