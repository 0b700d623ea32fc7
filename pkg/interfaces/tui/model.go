// Package tui is the terminal view layer: entity lists, the modal edit
// overlay and the candidate-solution charts, re-rendered from the store on
// every change notification.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/retailerkit/planner/pkg/application/services"
	"github.com/retailerkit/planner/pkg/application/store"
	"github.com/retailerkit/planner/pkg/domain/entities"
)

type panel int

const (
	panelComponents panel = iota
	panelProducts
	panelSolutions
)

// stateChangedMsg reports that the store notified a subscriber
type stateChangedMsg struct{}

// solveResultMsg carries the outcome of a background solve
type solveResultMsg struct {
	results entities.SolutionSet
	err     error
}

// Model is the root bubbletea model. It renders from a state snapshot that
// is refreshed whenever the store notifies; all mutations go through the
// workflow controller.
type Model struct {
	store    *store.Store
	workflow *services.Workflow
	solver   *services.SolveService
	logger   *slog.Logger

	state   entities.PlanningState
	results entities.SolutionSet

	focus        panel
	componentIdx int
	productIdx   int
	solutionIdx  int

	form      *formModel
	confirm   bool
	computing bool
	status    string
	statusErr bool

	changes     chan struct{}
	unsubscribe func()

	width    int
	height   int
	quitting bool
}

// New wires the view to the store, workflow and solve service. The store
// subscription stays live until the program exits.
func New(s *store.Store, workflow *services.Workflow, solver *services.SolveService, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Model{
		store:    s,
		workflow: workflow,
		solver:   solver,
		logger:   logger,
		state:    s.GetState(),
		results:  store.PlaceholderSolutions(),
		changes:  make(chan struct{}, 1),
	}
	m.unsubscribe = s.Subscribe(func() {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

// waitForChange blocks on the subscription channel and re-arms itself after
// every notification
func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return stateChangedMsg{}
	}
}

// compute dispatches a solve in the background. The busy indicator is
// cleared when the result message arrives, on every exit path.
func (m *Model) compute() tea.Cmd {
	return func() tea.Msg {
		results, err := m.solver.Solve(context.Background())
		return solveResultMsg{results: results, err: err}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case stateChangedMsg:
		m.state = m.store.GetState()
		m.clampSelection()
		return m, m.waitForChange()

	case solveResultMsg:
		m.computing = false
		switch {
		case errors.Is(msg.err, services.ErrSolveSuperseded):
			// a newer solve owns the panel; nothing to show
		case msg.err != nil:
			var remoteErr *entities.RemoteCallError
			if errors.As(msg.err, &remoteErr) {
				m.setStatus(fmt.Sprintf("solver unavailable: %v", remoteErr), true)
			} else {
				m.setStatus(msg.err.Error(), true)
			}
		default:
			m.results = msg.results
			m.solutionIdx = 0
			m.setStatus(fmt.Sprintf("%d candidate solutions", len(msg.results.Solutions)), false)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		m.unsubscribe()
		return m, tea.Quit
	}

	if m.form != nil {
		closed, cmd := m.form.update(msg)
		if closed {
			m.form = nil
		}
		return m, cmd
	}

	if m.confirm {
		return m.handleConfirmKey(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		m.unsubscribe()
		return m, tea.Quit

	case "tab":
		m.focus = (m.focus + 1) % 3
		return m, nil

	case "up", "k":
		m.moveSelection(-1)
		return m, nil

	case "down", "j":
		m.moveSelection(1)
		return m, nil

	case "a":
		return m, m.openEditor("")

	case "e", "enter":
		if id := m.selectedID(); id != "" {
			return m, m.openEditor(id)
		}
		return m, nil

	case "d":
		m.requestDelete()
		return m, nil

	case "p":
		m.form = newParametersForm(m.workflow, m.state.GeneralParameters)
		m.setStatus("", false)
		return m, nil

	case "c":
		if m.computing {
			return m, nil
		}
		m.computing = true
		m.setStatus("", false)
		return m, m.compute()
	}
	return m, nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirm = false
		warning, err := m.workflow.ConfirmDelete(context.Background())
		if err != nil {
			m.setStatus(err.Error(), true)
		} else if warning != nil {
			m.setStatus(warning.Error(), true)
		} else {
			m.setStatus("deleted", false)
		}
	case "n", "N", "esc":
		m.confirm = false
		m.workflow.CancelDelete()
	}
	return m, nil
}

// openEditor emits a typed edit command; an empty id creates a new entity
func (m *Model) openEditor(id string) tea.Cmd {
	entityType, ok := m.focusedEntityType()
	if !ok {
		return nil
	}
	err := m.workflow.HandleCommand(services.Command{
		Kind:       services.CommandEdit,
		EntityType: entityType,
		ID:         id,
	})
	if err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}

	session := m.workflow.Session()
	if entityType == services.EntityComponent {
		m.form = newComponentForm(session)
	} else {
		m.form = newProductForm(session)
	}
	m.setStatus("", false)
	return nil
}

// requestDelete emits a typed delete command and opens the confirm dialog
func (m *Model) requestDelete() {
	entityType, ok := m.focusedEntityType()
	if !ok {
		return
	}
	id := m.selectedID()
	if id == "" {
		return
	}
	err := m.workflow.HandleCommand(services.Command{
		Kind:       services.CommandDelete,
		EntityType: entityType,
		ID:         id,
	})
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.confirm = true
	m.setStatus("", false)
}

func (m *Model) focusedEntityType() (services.EntityType, bool) {
	switch m.focus {
	case panelComponents:
		return services.EntityComponent, true
	case panelProducts:
		return services.EntityProduct, true
	}
	return "", false
}

func (m *Model) selectedID() string {
	switch m.focus {
	case panelComponents:
		if m.componentIdx < len(m.state.Components) {
			return string(m.state.Components[m.componentIdx].ID)
		}
	case panelProducts:
		if m.productIdx < len(m.state.Products) {
			return string(m.state.Products[m.productIdx].ID)
		}
	}
	return ""
}

func (m *Model) moveSelection(delta int) {
	switch m.focus {
	case panelComponents:
		m.componentIdx = clamp(m.componentIdx+delta, len(m.state.Components))
	case panelProducts:
		m.productIdx = clamp(m.productIdx+delta, len(m.state.Products))
	case panelSolutions:
		m.solutionIdx = clamp(m.solutionIdx+delta, len(m.results.Solutions))
	}
}

func (m *Model) clampSelection() {
	m.componentIdx = clamp(m.componentIdx, len(m.state.Components))
	m.productIdx = clamp(m.productIdx, len(m.state.Products))
	m.solutionIdx = clamp(m.solutionIdx, len(m.results.Solutions))
}

func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.statusErr = isError
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if m.form != nil {
		return m.form.view()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("RetailerKit Planner"))
	if m.computing {
		b.WriteString("  ")
		b.WriteString(busyStyle.Render("solving…"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.viewParameters())
	b.WriteString("\n")

	lists := lipgloss.JoinHorizontal(lipgloss.Top,
		m.viewComponents(),
		" ",
		m.viewProducts(),
	)
	b.WriteString(lists)
	b.WriteString("\n")
	b.WriteString(m.viewSolutions())
	b.WriteString("\n")

	if m.confirm {
		if pending := m.workflow.PendingDelete(); pending != nil {
			b.WriteString(warningStyle.Render(
				fmt.Sprintf("Delete %s %q? (y/n)", pending.EntityType(), pending.Name())))
			b.WriteString("\n")
		}
	}

	if m.status != "" {
		style := dimStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(helpLine(
		"tab", "switch panel", "a", "add", "e", "edit", "d", "delete",
		"p", "parameters", "c", "compute", "q", "quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) viewParameters() string {
	p := m.state.GeneralParameters
	enforce := "off"
	if p.EnforceSalesMix {
		enforce = "on"
	}
	line := fmt.Sprintf(
		"max production %s  sales mix %s  weights p/r/f/v %s/%s/%s/%s",
		formatNumber(p.MaxProduction), enforce,
		formatNumber(p.WeightProfit), formatNumber(p.WeightRating),
		formatNumber(p.WeightFocus), formatNumber(p.WeightVelocity))
	return panelTitleStyle.Render("Parameters") + "  " + dimStyle.Render(line) + "\n"
}

func (m *Model) viewComponents() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Components"))
	b.WriteString("\n")
	if len(m.state.Components) == 0 {
		b.WriteString(dimStyle.Render("(none)"))
	}
	for i, c := range m.state.Components {
		line := fmt.Sprintf("%s  cost %s  stock %s",
			c.Name, formatMoney(c.Cost), formatNumber(c.Stock))
		b.WriteString(m.renderRow(line, m.focus == panelComponents && i == m.componentIdx))
		b.WriteString("\n")
	}
	return m.panelFrame(b.String(), m.focus == panelComponents)
}

func (m *Model) viewProducts() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Products"))
	b.WriteString("\n")
	if len(m.state.Products) == 0 {
		b.WriteString(dimStyle.Render("(none)"))
	}
	for i, p := range m.state.Products {
		focus := ""
		if p.IsFocusItem {
			focus = " ★"
		}
		line := fmt.Sprintf("%s%s  price %s  bom ×%d",
			p.Name, focus, formatMoney(p.SellingPrice), len(p.BillOfMaterials))
		b.WriteString(m.renderRow(line, m.focus == panelProducts && i == m.productIdx))
		b.WriteString("\n")
	}
	return m.panelFrame(b.String(), m.focus == panelProducts)
}

func (m *Model) viewSolutions() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Solutions"))
	b.WriteString("\n")

	if m.results.Empty() {
		b.WriteString(dimStyle.Render("(press c to compute)"))
		return m.panelFrame(b.String(), m.focus == panelSolutions)
	}

	for i, solution := range m.results.Solutions {
		b.WriteString(m.renderRow(solutionRow(i, solution),
			m.focus == panelSolutions && i == m.solutionIdx))
		b.WriteString("\n")
	}

	selected := m.results.Solutions[m.solutionIdx]
	names := productNames(m.results.Products)
	b.WriteString("\n")
	b.WriteString(renderBars(planBars(selected, names), 30))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(financialLines(selected.FinancialSummary)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strategicLines(selected.StrategicSummary)))
	return m.panelFrame(b.String(), m.focus == panelSolutions)
}

func (m *Model) renderRow(line string, selected bool) string {
	if selected {
		return selectedRowStyle.Render("> " + line)
	}
	return "  " + line
}

func (m *Model) panelFrame(content string, focused bool) string {
	if focused {
		return focusedPanelStyle.Render(content)
	}
	return panelStyle.Render(content)
}
