package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/retailerkit/planner/pkg/application/services"
	"github.com/retailerkit/planner/pkg/domain/entities"
)

type formKind int

const (
	formComponent formKind = iota
	formProduct
	formParameters
)

// bomRow is one editable line of the draft bill of materials
type bomRow struct {
	componentName string
	quantity      textinput.Model
}

// formModel is the modal overlay for component, product and parameter edits.
// Entity forms are driven by a workflow edit session; the store is untouched
// until submission succeeds.
type formModel struct {
	kind     formKind
	workflow *services.Workflow
	session  *services.EditSession

	title  string
	labels []string
	inputs []textinput.Model
	focus  int

	// product only
	isFocusItem bool
	bomRows     []bomRow
	picking     bool
	pickIndex   int
	eligible    []entities.Component

	// parameters only
	enforceSalesMix bool

	errText string
}

func newInput(value string) textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 24
	ti.SetValue(value)
	return ti
}

func newComponentForm(session *services.EditSession) *formModel {
	draft := session.ComponentDraft()
	f := &formModel{
		kind:    formComponent,
		session: session,
		title:   session.Title(),
		labels:  []string{"Name", "Cost", "Stock"},
		inputs: []textinput.Model{
			newInput(draft.Name),
			newInput(formatNumber(draft.Cost)),
			newInput(formatNumber(draft.Stock)),
		},
	}
	f.setFocus(0)
	return f
}

func newProductForm(session *services.EditSession) *formModel {
	draft := session.ProductDraft()
	f := &formModel{
		kind:        formProduct,
		session:     session,
		title:       session.Title(),
		isFocusItem: draft.IsFocusItem,
		labels: []string{
			"Name", "Selling Price", "Sales Mix Ratio",
			"Product Rating", "Sales Velocity",
		},
		inputs: []textinput.Model{
			newInput(draft.Name),
			newInput(formatNumber(draft.SellingPrice)),
			newInput(formatNumber(draft.SalesMixRatio)),
			newInput(formatNumber(draft.ProductRating)),
			newInput(formatNumber(draft.SalesVelocity)),
		},
	}
	f.rebuildBOMRows()
	f.setFocus(0)
	return f
}

func newParametersForm(workflow *services.Workflow, params entities.GeneralParameters) *formModel {
	f := &formModel{
		kind:            formParameters,
		workflow:        workflow,
		title:           "General Parameters",
		enforceSalesMix: params.EnforceSalesMix,
		labels: []string{
			"Max Production", "Profit Weight", "Rating Weight",
			"Focus Weight", "Velocity Weight",
			"Lowerbound Score Multiplier", "Lowerbound Profit Multiplier",
		},
		inputs: []textinput.Model{
			newInput(formatNumber(params.MaxProduction)),
			newInput(formatNumber(params.WeightProfit)),
			newInput(formatNumber(params.WeightRating)),
			newInput(formatNumber(params.WeightFocus)),
			newInput(formatNumber(params.WeightVelocity)),
			newInput(formatNumber(params.LowerboundScoreMultiplier)),
			newInput(formatNumber(params.LowerboundProfitMult)),
		},
	}
	f.setFocus(0)
	return f
}

// rebuildBOMRows syncs the editable rows with the draft BOM, preserving any
// quantity edits already typed into surviving rows
func (f *formModel) rebuildBOMRows() {
	previous := make(map[string]string, len(f.bomRows))
	for _, row := range f.bomRows {
		previous[row.componentName] = row.quantity.Value()
	}

	lines := f.session.BOMLines()
	rows := make([]bomRow, 0, len(lines))
	for _, line := range lines {
		value := formatNumber(line.Quantity)
		if typed, ok := previous[line.ComponentName]; ok {
			value = typed
		}
		qty := newInput(value)
		qty.Width = 8
		rows = append(rows, bomRow{componentName: line.ComponentName, quantity: qty})
	}
	f.bomRows = rows
}

// focusable counts the navigable fields: inputs, then the toggle (product
// and parameter forms), then the BOM quantity rows
func (f *formModel) focusable() int {
	n := len(f.inputs)
	if f.kind == formProduct || f.kind == formParameters {
		n++
	}
	if f.kind == formProduct {
		n += len(f.bomRows)
	}
	return n
}

func (f *formModel) toggleIndex() int {
	return len(f.inputs)
}

func (f *formModel) bomRowIndex(focus int) (int, bool) {
	if f.kind != formProduct {
		return 0, false
	}
	first := len(f.inputs) + 1
	if focus >= first && focus < first+len(f.bomRows) {
		return focus - first, true
	}
	return 0, false
}

func (f *formModel) setFocus(focus int) {
	n := f.focusable()
	if n == 0 {
		return
	}
	f.focus = ((focus % n) + n) % n

	for i := range f.inputs {
		if i == f.focus {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	for i := range f.bomRows {
		if row, ok := f.bomRowIndex(f.focus); ok && row == i {
			f.bomRows[i].quantity.Focus()
		} else {
			f.bomRows[i].quantity.Blur()
		}
	}
}

// update handles one key event. It reports closed=true when the modal is
// finished, whether by submission or cancellation.
func (f *formModel) update(msg tea.KeyMsg) (closed bool, cmd tea.Cmd) {
	if f.picking {
		f.updatePicker(msg)
		return false, nil
	}

	switch msg.String() {
	case "esc":
		if f.session != nil {
			f.session.Cancel()
		}
		return true, nil

	case "tab", "down":
		f.setFocus(f.focus + 1)
		return false, nil

	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return false, nil

	case "enter":
		return f.submit()

	case " ":
		if f.focus == f.toggleIndex() && f.kind != formComponent {
			if f.kind == formProduct {
				f.isFocusItem = !f.isFocusItem
			} else {
				f.enforceSalesMix = !f.enforceSalesMix
			}
			return false, nil
		}

	case "ctrl+n":
		if f.kind == formProduct {
			f.openPicker()
			return false, nil
		}

	case "ctrl+x":
		if row, ok := f.bomRowIndex(f.focus); ok {
			if err := f.session.RemoveBOMLine(f.bomRows[row].componentName); err != nil {
				f.errText = err.Error()
				return false, nil
			}
			f.rebuildBOMRows()
			f.setFocus(f.focus)
			return false, nil
		}
	}

	// Everything else edits the focused field
	var c tea.Cmd
	if f.focus < len(f.inputs) {
		f.inputs[f.focus], c = f.inputs[f.focus].Update(msg)
	} else if row, ok := f.bomRowIndex(f.focus); ok {
		f.bomRows[row].quantity, c = f.bomRows[row].quantity.Update(msg)
	}
	return false, c
}

func (f *formModel) openPicker() {
	f.eligible = f.session.EligibleComponents()
	if len(f.eligible) == 0 {
		f.errText = "every component is already in the bill of materials"
		return
	}
	f.errText = ""
	f.picking = true
	f.pickIndex = 0
}

func (f *formModel) updatePicker(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc":
		f.picking = false

	case "up", "k":
		if f.pickIndex > 0 {
			f.pickIndex--
		}

	case "down", "j":
		if f.pickIndex < len(f.eligible)-1 {
			f.pickIndex++
		}

	case "enter":
		name := f.eligible[f.pickIndex].Name
		if err := f.session.AddBOMLine(name); err != nil {
			f.errText = err.Error()
		} else {
			f.rebuildBOMRows()
		}
		f.picking = false
	}
}

// submit collects the raw field values and hands them to the workflow.
// Validation failures keep the modal open with the reason displayed.
func (f *formModel) submit() (closed bool, cmd tea.Cmd) {
	ctx := context.Background()

	var err error
	switch f.kind {
	case formComponent:
		err = f.session.SubmitComponent(ctx, services.ComponentForm{
			Name:  f.inputs[0].Value(),
			Cost:  f.inputs[1].Value(),
			Stock: f.inputs[2].Value(),
		})

	case formProduct:
		lines := make([]services.BOMLineForm, len(f.bomRows))
		for i, row := range f.bomRows {
			lines[i] = services.BOMLineForm{
				ComponentName: row.componentName,
				Quantity:      row.quantity.Value(),
			}
		}
		err = f.session.SubmitProduct(ctx, services.ProductForm{
			Name:          f.inputs[0].Value(),
			SellingPrice:  f.inputs[1].Value(),
			SalesMixRatio: f.inputs[2].Value(),
			ProductRating: f.inputs[3].Value(),
			SalesVelocity: f.inputs[4].Value(),
			IsFocusItem:   f.isFocusItem,
			BOMLines:      lines,
		})

	case formParameters:
		err = f.workflow.UpdateGeneralParameters(ctx, services.ParametersForm{
			MaxProduction:              f.inputs[0].Value(),
			EnforceSalesMix:            f.enforceSalesMix,
			WeightProfit:               f.inputs[1].Value(),
			WeightRating:               f.inputs[2].Value(),
			WeightFocus:                f.inputs[3].Value(),
			WeightVelocity:             f.inputs[4].Value(),
			LowerboundScoreMultiplier:  f.inputs[5].Value(),
			LowerboundProfitMultiplier: f.inputs[6].Value(),
		})
	}

	if err != nil {
		var validationErr *entities.ValidationError
		if errors.As(err, &validationErr) {
			f.errText = validationErr.Error()
			return false, nil
		}
		f.errText = err.Error()
		return false, nil
	}
	return true, nil
}

func (f *formModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.title))
	b.WriteString("\n\n")

	for i, label := range f.labels {
		cursor := "  "
		if f.focus == i {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-28s %s\n", cursor, label, f.inputs[i].View()))
	}

	if f.kind == formProduct || f.kind == formParameters {
		cursor := "  "
		if f.focus == f.toggleIndex() {
			cursor = "> "
		}
		label, checked := "Enforce Sales Mix", f.enforceSalesMix
		if f.kind == formProduct {
			label, checked = "Focus Item", f.isFocusItem
		}
		box := "[ ]"
		if checked {
			box = "[x]"
		}
		b.WriteString(fmt.Sprintf("%s%-28s %s\n", cursor, label, box))
	}

	if f.kind == formProduct {
		b.WriteString("\n")
		b.WriteString(panelTitleStyle.Render("Bill of Materials"))
		b.WriteString("\n")
		if len(f.bomRows) == 0 {
			b.WriteString(dimStyle.Render("  (no components)"))
			b.WriteString("\n")
		}
		for i, row := range f.bomRows {
			cursor := "  "
			if r, ok := f.bomRowIndex(f.focus); ok && r == i {
				cursor = "> "
			}
			b.WriteString(fmt.Sprintf("%s%-28s %s\n", cursor, row.componentName, row.quantity.View()))
		}

		if f.picking {
			b.WriteString("\n")
			b.WriteString(panelTitleStyle.Render("Add Component"))
			b.WriteString("\n")
			for i, c := range f.eligible {
				line := "  " + c.Name
				if i == f.pickIndex {
					line = selectedRowStyle.Render("> " + c.Name)
				}
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}

	if f.errText != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(f.errText))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formHelp(f.kind, f.picking))
	return b.String()
}

func formHelp(kind formKind, picking bool) string {
	if picking {
		return helpLine("↑/↓", "select", "enter", "add", "esc", "back")
	}
	switch kind {
	case formProduct:
		return helpLine("tab", "next field", "space", "toggle", "ctrl+n", "add line",
			"ctrl+x", "remove line", "enter", "save", "esc", "cancel")
	case formParameters:
		return helpLine("tab", "next field", "space", "toggle", "enter", "save", "esc", "cancel")
	default:
		return helpLine("tab", "next field", "enter", "save", "esc", "cancel")
	}
}

func helpLine(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpKeyStyle.Render(pairs[i])+" "+helpDescStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, dimStyle.Render("  ·  "))
}
