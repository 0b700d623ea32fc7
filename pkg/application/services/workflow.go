// Package services contains the planning workflow controller and the solve
// service. The controller mediates every create/edit/delete through a
// draft-based edit session; the store is only written on submission.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/retailerkit/planner/pkg/application/store"
	"github.com/retailerkit/planner/pkg/domain/entities"
)

// EntityType selects which collection an edit or delete targets
type EntityType string

const (
	EntityComponent EntityType = "component"
	EntityProduct   EntityType = "product"
)

// CommandKind discriminates the typed commands the view layer emits
type CommandKind string

const (
	CommandEdit   CommandKind = "edit"
	CommandDelete CommandKind = "delete"
)

// Command is a typed request from the view layer. An empty ID on an edit
// command means "create new".
type Command struct {
	Kind       CommandKind
	EntityType EntityType
	ID         string
}

var (
	// ErrSessionOpen is returned when an edit session is already open;
	// only one may exist at a time.
	ErrSessionOpen = errors.New("an edit session is already open")

	// ErrNoSession is returned by session operations after Close
	ErrNoSession = errors.New("no open edit session")
)

// Workflow orchestrates entity edit/create/delete against the store
type Workflow struct {
	store   *store.Store
	logger  *slog.Logger
	session *EditSession
	pending *DeleteRequest
}

// NewWorkflow creates a workflow controller bound to the given store
func NewWorkflow(s *store.Store, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{store: s, logger: logger}
}

// HandleCommand dispatches a typed view command
func (w *Workflow) HandleCommand(cmd Command) error {
	switch cmd.Kind {
	case CommandEdit:
		_, err := w.OpenEdit(cmd.EntityType, cmd.ID)
		return err
	case CommandDelete:
		_, err := w.RequestDelete(cmd.EntityType, cmd.ID)
		return err
	default:
		return fmt.Errorf("unknown command kind: %s", cmd.Kind)
	}
}

// Session returns the open edit session, or nil
func (w *Workflow) Session() *EditSession {
	return w.session
}

// OpenEdit opens an edit session for the entity with the given id, or a
// create session when id is empty. The draft is a deep copy; the store is
// untouched until submission.
func (w *Workflow) OpenEdit(entityType EntityType, id string) (*EditSession, error) {
	if w.session != nil {
		return nil, ErrSessionOpen
	}

	session := &EditSession{
		workflow:   w,
		entityType: entityType,
		isNew:      id == "",
	}

	state := w.store.GetState()
	switch entityType {
	case EntityComponent:
		if session.isNew {
			session.componentDraft = &entities.Component{}
		} else {
			existing := state.FindComponent(entities.ComponentID(id))
			if existing == nil {
				return nil, fmt.Errorf("component not found: %s", id)
			}
			draft := *existing
			session.componentDraft = &draft
		}
	case EntityProduct:
		if session.isNew {
			session.productDraft = &entities.Product{
				SalesMixRatio:   1,
				BillOfMaterials: entities.BillOfMaterials{},
			}
		} else {
			existing := state.FindProduct(entities.ProductID(id))
			if existing == nil {
				return nil, fmt.Errorf("product not found: %s", id)
			}
			draft := *existing
			draft.BillOfMaterials = existing.BillOfMaterials.Clone()
			session.productDraft = &draft
		}
	default:
		return nil, fmt.Errorf("unknown entity type: %s", entityType)
	}

	w.session = session
	return session, nil
}

// EditSession is one open modal edit: Closed → Editing → Submitted or
// Cancelled. Cancel has zero effect on persisted state.
type EditSession struct {
	workflow   *Workflow
	entityType EntityType
	isNew      bool

	componentDraft *entities.Component
	productDraft   *entities.Product
}

// EntityType returns what kind of entity this session edits
func (s *EditSession) EntityType() EntityType {
	return s.entityType
}

// IsNew reports whether this session creates a fresh entity
func (s *EditSession) IsNew() bool {
	return s.isNew
}

// Title returns the modal heading for this session
func (s *EditSession) Title() string {
	if s.isNew {
		if s.entityType == EntityComponent {
			return "Add New Component"
		}
		return "Add New Product"
	}
	if s.entityType == EntityComponent {
		return "Edit " + s.componentDraft.Name
	}
	return "Edit " + s.productDraft.Name
}

// ComponentDraft returns a copy of the component draft for rendering
func (s *EditSession) ComponentDraft() entities.Component {
	if s.componentDraft == nil {
		return entities.Component{}
	}
	return *s.componentDraft
}

// ProductDraft returns a copy of the product draft for rendering
func (s *EditSession) ProductDraft() entities.Product {
	if s.productDraft == nil {
		return entities.Product{}
	}
	draft := *s.productDraft
	draft.BillOfMaterials = s.productDraft.BillOfMaterials.Clone()
	return draft
}

// BOMLine is one rendered row of the draft's bill of materials
type BOMLine struct {
	ComponentName string
	Quantity      float64
}

// BOMLines returns the draft BOM as a stable, name-sorted list
func (s *EditSession) BOMLines() []BOMLine {
	if s.productDraft == nil {
		return nil
	}
	lines := make([]BOMLine, 0, len(s.productDraft.BillOfMaterials))
	for name, qty := range s.productDraft.BillOfMaterials {
		lines = append(lines, BOMLine{ComponentName: name, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ComponentName < lines[j].ComponentName
	})
	return lines
}

// EligibleComponents lists components that can still be added to the draft
// BOM. It reads the component list live from the store, so components
// deleted since the session opened never become addable.
func (s *EditSession) EligibleComponents() []entities.Component {
	if s.productDraft == nil {
		return nil
	}
	var eligible []entities.Component
	for _, c := range s.workflow.store.GetState().Components {
		if _, present := s.productDraft.BillOfMaterials[c.Name]; !present {
			eligible = append(eligible, c)
		}
	}
	return eligible
}

// AddBOMLine inserts a component into the draft BOM with a default quantity
// of 1. Only draft state changes; the session stays open.
func (s *EditSession) AddBOMLine(componentName string) error {
	if s.productDraft == nil {
		return ErrNoSession
	}
	if _, present := s.productDraft.BillOfMaterials[componentName]; present {
		return &entities.ValidationError{
			Field:  "bill_of_materials",
			Reason: fmt.Sprintf("%s is already in the bill of materials", componentName),
		}
	}
	if !s.workflow.store.GetState().ComponentNames()[componentName] {
		return &entities.ValidationError{
			Field:  "bill_of_materials",
			Reason: fmt.Sprintf("no component named %s", componentName),
		}
	}
	s.productDraft.BillOfMaterials[componentName] = 1
	return nil
}

// RemoveBOMLine deletes a component from the draft BOM
func (s *EditSession) RemoveBOMLine(componentName string) error {
	if s.productDraft == nil {
		return ErrNoSession
	}
	delete(s.productDraft.BillOfMaterials, componentName)
	return nil
}

// Cancel closes the session, discarding the draft
func (s *EditSession) Cancel() {
	if s.workflow.session == s {
		s.workflow.session = nil
	}
}

// ComponentForm carries the raw string values of a submitted component form
type ComponentForm struct {
	Name  string
	Cost  string
	Stock string
}

// BOMLineForm is one submitted BOM row
type BOMLineForm struct {
	ComponentName string
	Quantity      string
}

// ProductForm carries the raw string values of a submitted product form
type ProductForm struct {
	Name          string
	SellingPrice  string
	SalesMixRatio string
	ProductRating string
	SalesVelocity string
	IsFocusItem   bool
	BOMLines      []BOMLineForm
}

// SubmitComponent validates the form, replaces or appends the component and
// writes the collection through the store. On validation failure the session
// stays open.
func (s *EditSession) SubmitComponent(ctx context.Context, form ComponentForm) error {
	if s.workflow.session != s || s.componentDraft == nil {
		return ErrNoSession
	}

	cost, err := parseNumber("cost", form.Cost)
	if err != nil {
		return err
	}
	stock, err := parseNumber("stock", form.Stock)
	if err != nil {
		return err
	}

	var id entities.ComponentID
	if !s.isNew {
		id = s.componentDraft.ID
	}
	component, err := entities.NewComponent(id, form.Name, cost, stock)
	if err != nil {
		return err
	}

	state := s.workflow.store.GetState()
	for _, existing := range state.Components {
		if existing.Name == component.Name && existing.ID != component.ID {
			return &entities.ValidationError{
				Field:  "name",
				Reason: fmt.Sprintf("a component named %s already exists", component.Name),
			}
		}
	}

	components := replaceOrAppendComponent(state.Components, *component, s.isNew)
	s.workflow.store.SetState(ctx, store.Partial{Components: &components})
	s.workflow.session = nil
	return nil
}

// SubmitProduct validates the form, rebuilds the BOM from the submitted line
// items and writes the collection through the store
func (s *EditSession) SubmitProduct(ctx context.Context, form ProductForm) error {
	if s.workflow.session != s || s.productDraft == nil {
		return ErrNoSession
	}

	sellingPrice, err := parseNumber("selling_price", form.SellingPrice)
	if err != nil {
		return err
	}
	salesMixRatio, err := parseNumber("sales_mix_ratio", form.SalesMixRatio)
	if err != nil {
		return err
	}
	productRating, err := parseNumber("product_rating", form.ProductRating)
	if err != nil {
		return err
	}
	salesVelocity, err := parseNumber("sales_velocity", form.SalesVelocity)
	if err != nil {
		return err
	}

	bom := entities.BillOfMaterials{}
	for _, line := range form.BOMLines {
		qty, err := parseNumber("bill_of_materials."+line.ComponentName, line.Quantity)
		if err != nil {
			return err
		}
		bom[line.ComponentName] = qty
	}

	var id entities.ProductID
	if !s.isNew {
		id = s.productDraft.ID
	}
	product, err := entities.NewProduct(id, form.Name, sellingPrice, salesMixRatio,
		bom, productRating, form.IsFocusItem, salesVelocity)
	if err != nil {
		return err
	}

	state := s.workflow.store.GetState()
	products := replaceOrAppendProduct(state.Products, *product, s.isNew)
	s.workflow.store.SetState(ctx, store.Partial{Products: &products})
	s.workflow.session = nil
	return nil
}

// DeleteRequest is a pending destructive action awaiting confirmation
type DeleteRequest struct {
	entityType EntityType
	id         string
	name       string
}

// EntityType returns what kind of entity would be deleted
func (d *DeleteRequest) EntityType() EntityType {
	return d.entityType
}

// Name returns the display name for the confirmation prompt
func (d *DeleteRequest) Name() string {
	return d.name
}

// PendingDelete returns the delete awaiting confirmation, or nil
func (w *Workflow) PendingDelete() *DeleteRequest {
	return w.pending
}

// RequestDelete records a delete that must be confirmed before any state
// change happens
func (w *Workflow) RequestDelete(entityType EntityType, id string) (*DeleteRequest, error) {
	state := w.store.GetState()

	var name string
	switch entityType {
	case EntityComponent:
		c := state.FindComponent(entities.ComponentID(id))
		if c == nil {
			return nil, fmt.Errorf("component not found: %s", id)
		}
		name = c.Name
	case EntityProduct:
		p := state.FindProduct(entities.ProductID(id))
		if p == nil {
			return nil, fmt.Errorf("product not found: %s", id)
		}
		name = p.Name
	default:
		return nil, fmt.Errorf("unknown entity type: %s", entityType)
	}

	w.pending = &DeleteRequest{entityType: entityType, id: id, name: name}
	return w.pending, nil
}

// CancelDelete discards the pending delete without touching the store
func (w *Workflow) CancelDelete() {
	w.pending = nil
}

// ConfirmDelete removes the pending entity and writes the new collection.
// Deleting a component returns a ReferentialIntegrityWarning when product
// BOMs still reference it; the stale entries are kept and later dropped at
// request-mapping time.
func (w *Workflow) ConfirmDelete(ctx context.Context) (*entities.ReferentialIntegrityWarning, error) {
	if w.pending == nil {
		return nil, errors.New("no delete pending confirmation")
	}
	pending := w.pending
	w.pending = nil

	state := w.store.GetState()
	switch pending.entityType {
	case EntityProduct:
		products := make([]entities.Product, 0, len(state.Products))
		for _, p := range state.Products {
			if string(p.ID) != pending.id {
				products = append(products, p)
			}
		}
		w.store.SetState(ctx, store.Partial{Products: &products})
		return nil, nil

	case EntityComponent:
		components := make([]entities.Component, 0, len(state.Components))
		for _, c := range state.Components {
			if string(c.ID) != pending.id {
				components = append(components, c)
			}
		}
		w.store.SetState(ctx, store.Partial{Components: &components})

		var referencing []string
		for _, p := range state.Products {
			if _, present := p.BillOfMaterials[pending.name]; present {
				referencing = append(referencing, p.Name)
			}
		}
		if len(referencing) > 0 {
			warning := &entities.ReferentialIntegrityWarning{
				ComponentName: pending.name,
				Products:      referencing,
			}
			w.logger.Warn("deleted component still referenced",
				"component", pending.name, "products", referencing)
			return warning, nil
		}
		return nil, nil
	}
	return nil, fmt.Errorf("unknown entity type: %s", pending.entityType)
}

// ParametersForm carries the raw string values of the general parameters
// panel. The block is saved as a single unit.
type ParametersForm struct {
	MaxProduction              string
	EnforceSalesMix            bool
	WeightProfit               string
	WeightRating               string
	WeightFocus                string
	WeightVelocity             string
	LowerboundScoreMultiplier  string
	LowerboundProfitMultiplier string
}

// UpdateGeneralParameters validates and saves the whole parameter block
func (w *Workflow) UpdateGeneralParameters(ctx context.Context, form ParametersForm) error {
	maxProduction, err := parseNumber("max_production", form.MaxProduction)
	if err != nil {
		return err
	}
	weightProfit, err := parseNumber("w_profit", form.WeightProfit)
	if err != nil {
		return err
	}
	weightRating, err := parseNumber("w_rating", form.WeightRating)
	if err != nil {
		return err
	}
	weightFocus, err := parseNumber("w_focus", form.WeightFocus)
	if err != nil {
		return err
	}
	weightVelocity, err := parseNumber("w_velocity", form.WeightVelocity)
	if err != nil {
		return err
	}
	scoreMult, err := parseNumber("lowerbound_score_multiplier", form.LowerboundScoreMultiplier)
	if err != nil {
		return err
	}
	profitMult, err := parseNumber("lowerbound_profit_multiplier", form.LowerboundProfitMultiplier)
	if err != nil {
		return err
	}

	params := entities.GeneralParameters{
		MaxProduction:             maxProduction,
		EnforceSalesMix:           form.EnforceSalesMix,
		ModelType:                 entities.ModelTypeAdvanced,
		WeightProfit:              weightProfit,
		WeightRating:              weightRating,
		WeightFocus:               weightFocus,
		WeightVelocity:            weightVelocity,
		LowerboundScoreMultiplier: scoreMult,
		LowerboundProfitMult:      profitMult,
	}
	w.store.SetState(ctx, store.Partial{GeneralParameters: &params})
	return nil
}

// parseNumber parses a numeric form field strictly. A value that fails to
// parse is a ValidationError, never silently coerced.
func parseNumber(field, value string) (float64, error) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &entities.ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("%q is not a number", value),
		}
	}
	return parsed, nil
}

func replaceOrAppendComponent(components []entities.Component, updated entities.Component, isNew bool) []entities.Component {
	if isNew {
		return append(append([]entities.Component(nil), components...), updated)
	}
	out := make([]entities.Component, len(components))
	for i, c := range components {
		if c.ID == updated.ID {
			out[i] = updated
		} else {
			out[i] = c
		}
	}
	return out
}

func replaceOrAppendProduct(products []entities.Product, updated entities.Product, isNew bool) []entities.Product {
	if isNew {
		return append(append([]entities.Product(nil), products...), updated)
	}
	out := make([]entities.Product, len(products))
	for i, p := range products {
		if p.ID == updated.ID {
			out[i] = updated
		} else {
			out[i] = p
		}
	}
	return out
}
