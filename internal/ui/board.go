package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dairyDispatch/internal/api"
	"dairyDispatch/internal/dispatch"
	"dairyDispatch/models"
)

// BoardData is the cache surface the board reads.
type BoardData interface {
	Refresh(ctx context.Context) error
	PendingOrders() []models.Order
	AvailableDrivers() []models.Driver
}

type pane int

const (
	ordersPane pane = iota
	driversPane
)

type loadedMsg struct{ err error }

type submittedMsg struct {
	res dispatch.Result
	err error
}

// Board is the interactive assignment screen: pick pending orders, pick one
// available driver, submit.
type Board struct {
	ctx    context.Context
	data   BoardData
	engine *dispatch.Engine

	spinner spinner.Model
	loading bool
	focus   pane
	cursor  [2]int

	orders  []models.Order
	drivers []models.Driver

	notice string
	err    string
}

func NewBoard(ctx context.Context, data BoardData, engine *dispatch.Engine) Board {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Board{ctx: ctx, data: data, engine: engine, spinner: s, loading: true}
}

func (b Board) Init() tea.Cmd {
	return tea.Batch(b.spinner.Tick, b.load())
}

func (b Board) load() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: b.data.Refresh(b.ctx)}
	}
}

func (b Board) submit() tea.Cmd {
	return func() tea.Msg {
		res, err := b.engine.Submit(b.ctx)
		return submittedMsg{res: res, err: err}
	}
}

func (b *Board) sync() {
	b.orders = b.data.PendingOrders()
	b.drivers = b.data.AvailableDrivers()
	for i, n := range []int{len(b.orders), len(b.drivers)} {
		if b.cursor[i] >= n {
			b.cursor[i] = max(n-1, 0)
		}
	}
}

func (b Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		b.loading = false
		if msg.err != nil {
			b.err = "refresh failed: " + errorText(msg.err)
		}
		b.sync()
		return b, nil

	case submittedMsg:
		b.loading = false
		if msg.err != nil {
			b.notice = ""
			b.err = errorText(msg.err)
			return b, nil
		}
		b.err = ""
		b.notice = msg.res.Message
		if msg.res.RefreshErr != nil {
			b.err = "refresh failed: " + errorText(msg.res.RefreshErr)
		}
		b.sync()
		return b, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return b, cmd

	case tea.KeyMsg:
		if b.loading && msg.String() != "ctrl+c" && msg.String() != "q" {
			return b, nil
		}
		return b.handleKey(msg)
	}
	return b, nil
}

func (b Board) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := b.engine.Selection()
	switch msg.String() {
	case "ctrl+c", "q":
		return b, tea.Quit
	case "tab", "left", "right", "h", "l":
		b.focus = 1 - b.focus
	case "up", "k":
		if b.cursor[b.focus] > 0 {
			b.cursor[b.focus]--
		}
	case "down", "j":
		if b.cursor[b.focus] < b.paneLen(b.focus)-1 {
			b.cursor[b.focus]++
		}
	case " ", "enter":
		if msg.Type == tea.KeyEnter && b.focus == ordersPane {
			return b.trySubmit()
		}
		b.pick()
	case "s":
		return b.trySubmit()
	case "c", "esc":
		sel.Clear()
		b.notice, b.err = "", ""
	case "r":
		b.loading = true
		b.err = ""
		return b, tea.Batch(b.spinner.Tick, b.load())
	}
	return b, nil
}

func (b *Board) pick() {
	sel := b.engine.Selection()
	i := b.cursor[b.focus]
	switch b.focus {
	case ordersPane:
		if i < len(b.orders) {
			sel.Toggle(b.orders[i].ID)
		}
	case driversPane:
		if i < len(b.drivers) {
			id := b.drivers[i].ID
			if sel.Driver() == id {
				id = 0
			}
			sel.SetDriver(id)
		}
	}
}

func (b Board) trySubmit() (tea.Model, tea.Cmd) {
	if err := b.engine.Validate(); err != nil {
		b.notice = ""
		b.err = errorText(err)
		return b, nil
	}
	b.loading = true
	b.err = ""
	return b, tea.Batch(b.spinner.Tick, b.submit())
}

func (b Board) paneLen(p pane) int {
	if p == ordersPane {
		return len(b.orders)
	}
	return len(b.drivers)
}

func (b Board) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Route assignment"))
	sb.WriteString("\n\n")

	sel := b.engine.Selection()
	var left, right strings.Builder
	left.WriteString(fmt.Sprintf("Pending orders (%d selected)\n", sel.Len()))
	if len(b.orders) == 0 {
		left.WriteString(mutedStyle.Render("no pending orders"))
	}
	for i, o := range b.orders {
		mark := "[ ]"
		if sel.Contains(o.ID) {
			mark = selectedStyle.Render("[x]")
		}
		geo := ""
		if !o.HasLocation() {
			geo = mutedStyle.Render(" (no location)")
		}
		line := fmt.Sprintf("%s #%d %s  %.2f%s", mark, o.ID, o.ClientLabel(), o.Total(), geo)
		left.WriteString(b.row(ordersPane, i, line))
	}

	right.WriteString("Available drivers\n")
	if len(b.drivers) == 0 {
		right.WriteString(mutedStyle.Render("no drivers available"))
	}
	for i, d := range b.drivers {
		mark := "( )"
		if sel.Driver() == d.ID {
			mark = selectedStyle.Render("(•)")
		}
		line := fmt.Sprintf("%s #%d %s  %s", mark, d.ID, d.Name, d.VehiclePlate)
		right.WriteString(b.row(driversPane, i, line))
	}

	lp, rp := paneStyle, paneStyle
	if b.focus == ordersPane {
		lp = activePaneStyle
	} else {
		rp = activePaneStyle
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lp.Render(left.String()), " ", rp.Render(right.String())))
	sb.WriteString("\n\n")

	switch {
	case b.loading:
		sb.WriteString(b.spinner.View() + " working...")
	case b.err != "":
		sb.WriteString(errorStyle.Render(b.err))
	case b.notice != "":
		sb.WriteString(successStyle.Render(b.notice))
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("tab switch • space toggle • s submit • c clear • r refresh • q quit"))
	return docStyle.Render(sb.String())
}

func (b Board) row(p pane, i int, line string) string {
	if b.focus == p && b.cursor[p] == i {
		return cursorStyle.Render("> ") + line + "\n"
	}
	return "  " + line + "\n"
}

func errorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if m := apiErr.Message(); m != "" {
			return m
		}
	}
	return err.Error()
}
