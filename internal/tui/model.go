package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"quoteboard/internal/coordinator"
	"quoteboard/internal/dashboard"
	"quoteboard/internal/ratelimit"
)

// Styles.
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	bannerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#B91C1C")).Background(lipgloss.Color("#FEE2E2")).Padding(0, 1)
	bannerHeading  = lipgloss.NewStyle().Bold(true)
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	barStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8884d8"))
	tableBorder    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	statusOKStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Refresher requests an out-of-band refresh round.
type Refresher interface {
	Refresh(trigger ratelimit.Trigger) error
}

// Messages.
type stateMsg dashboard.State
type closedMsg struct{}

// Model is the terminal dashboard. It writes the search term to the dashboard
// and redraws whenever the dashboard publishes a new state.
type Model struct {
	board     *dashboard.Dashboard
	refresher Refresher
	updates   <-chan dashboard.State

	input  textinput.Model
	state  dashboard.State
	status string
	width  int
}

// New creates the model. updates must be a subscription to board's broker.
func New(board *dashboard.Dashboard, refresher Refresher, updates <-chan dashboard.State) Model {
	input := textinput.New()
	input.Placeholder = "Search stocks..."
	input.Prompt = "Search: "
	input.CharLimit = 32
	input.Width = 30
	input.Focus()

	return Model{
		board:     board,
		refresher: refresher,
		updates:   updates,
		input:     input,
		state:     board.State(),
		width:     80,
	}
}

func waitForState(updates <-chan dashboard.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return stateMsg(state)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForState(m.updates))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case stateMsg:
		m.state = dashboard.State(msg)
		return m, waitForState(m.updates)

	case closedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.status = m.requestRefresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if term := m.input.Value(); term != m.state.Term {
		m.board.SetSearchTerm(term)
		m.state.Term = term
	}
	return m, cmd
}

func (m Model) requestRefresh() string {
	if m.refresher == nil {
		return "refresh unavailable"
	}
	err := m.refresher.Refresh(ratelimit.TriggerTerminal)
	switch {
	case err == nil:
		return "refresh requested"
	case errors.Is(err, coordinator.ErrThrottled):
		return "refresh requested too soon, try again shortly"
	case errors.Is(err, coordinator.ErrRoundInProgress):
		return "refresh already in progress"
	default:
		return "refresh failed: " + err.Error()
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Real-Time Stock Market Dashboard"))
	b.WriteString("\n")

	if m.state.Error != "" {
		b.WriteString(bannerStyle.Render(bannerHeading.Render("Error") + "  " + m.state.Error))
		b.WriteString("\n\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	view := m.state.View()
	b.WriteString(renderTable(view.Rows))
	b.WriteString("\n\n")
	b.WriteString(renderChart(view.Chart, m.width))
	b.WriteString("\n")
	b.WriteString(m.footer(view.UpdatedAt))

	return b.String()
}

func (m Model) footer(updated time.Time) string {
	var parts []string
	if updated.IsZero() {
		parts = append(parts, dimStyle.Render("waiting for first refresh"))
	} else {
		parts = append(parts, dimStyle.Render("updated "+updated.Local().Format("15:04:05")))
	}
	if m.status != "" {
		style := statusOKStyle
		if m.status != "refresh requested" {
			style = statusErrStyle
		}
		parts = append(parts, style.Render(m.status))
	}
	parts = append(parts, dimStyle.Render("ctrl+r refresh • esc quit"))
	return strings.Join(parts, dimStyle.Render(" • "))
}

func renderTable(rows []dashboard.Row) string {
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{r.Symbol, "$" + r.Price, r.Change, r.ChangePercent + "%"}
		if r.Error != "" {
			data[i] = append(data[i], r.Error)
		} else {
			data[i] = append(data[i], "")
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorder).
		Headers("Symbol", "Price", "Change", "Change %", "").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if row < 0 || row >= len(rows) {
				return cellStyle
			}
			switch col {
			case 2, 3:
				if rows[row].Gain {
					return gainStyle.Padding(0, 1)
				}
				return lossStyle.Padding(0, 1)
			case 4:
				return dimStyle.Padding(0, 1)
			}
			return cellStyle
		})

	return t.String()
}

// renderChart draws the price of every symbol as a horizontal bar scaled to
// the widest price.
func renderChart(points []dashboard.Point, width int) string {
	if len(points) == 0 {
		return dimStyle.Render("no data")
	}

	labelWidth, maxPrice := 0, 0.0
	for _, p := range points {
		labelWidth = max(labelWidth, len(p.Symbol))
		if plottable(p.Price) {
			maxPrice = max(maxPrice, p.Price)
		}
	}

	// symbol, space, bar, space, price
	barWidth := width - labelWidth - 14
	if barWidth < 10 {
		barWidth = 10
	}

	var b strings.Builder
	for i, p := range points {
		n := 0
		if maxPrice > 0 && plottable(p.Price) {
			n = int(p.Price / maxPrice * float64(barWidth))
		}
		v := p.Price
		fmt.Fprintf(&b, "%-*s %s %s", labelWidth, p.Symbol, barStyle.Render(strings.Repeat("█", n)), dashboard.FormatNumber(&v))
		if i < len(points)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// plottable reports whether price can be drawn as a bar.
func plottable(price float64) bool {
	return price > 0 && !math.IsInf(price, 0)
}
