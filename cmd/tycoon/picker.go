package main

import (
	"errors"
	"fmt"
	"strings"

	"tycoon/internal/game"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errPickCancelled = errors.New("bill selection cancelled")

type pickerKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	None    key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

var pickerKeys = pickerKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space", "toggle")),
	All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
	None:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "none")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pay")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
}

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	overStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// billPicker lets the player choose which pending bills to pay.
type billPicker struct {
	bills     []game.Bill
	cash      float64
	cursor    int
	chosen    []bool
	done      bool
	cancelled bool
}

func newBillPicker(bills []game.Bill, cash float64) billPicker {
	m := billPicker{bills: bills, cash: cash, chosen: make([]bool, len(bills))}
	for _, id := range game.AffordableBills(bills, cash) {
		for i, b := range bills {
			if b.ID == id {
				m.chosen[i] = true
			}
		}
	}
	return m
}

func (m billPicker) total() float64 {
	t := 0.0
	for i, b := range m.bills {
		if m.chosen[i] {
			t += b.Amount
		}
	}
	return t
}

func (m billPicker) selected() []string {
	ids := make([]string, 0, len(m.bills))
	for i, b := range m.bills {
		if m.chosen[i] {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

func (m billPicker) Init() tea.Cmd {
	return nil
}

func (m billPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, pickerKeys.Quit):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(km, pickerKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, pickerKeys.Down):
		if m.cursor < len(m.bills)-1 {
			m.cursor++
		}
	case key.Matches(km, pickerKeys.Toggle):
		if len(m.chosen) > 0 {
			m.chosen[m.cursor] = !m.chosen[m.cursor]
		}
	case key.Matches(km, pickerKeys.All):
		for i := range m.chosen {
			m.chosen[i] = true
		}
	case key.Matches(km, pickerKeys.None):
		for i := range m.chosen {
			m.chosen[i] = false
		}
	case key.Matches(km, pickerKeys.Confirm):
		if m.total() > m.cash {
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m billPicker) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(panelTitle.Render("Choose bills to pay") + "\n\n")
	for i, bill := range m.bills {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		check := "[ ]"
		if m.chosen[i] {
			check = "[x]"
		}
		overdue := ""
		if bill.MonthsOverdue > 0 {
			overdue = overStyle.Render(fmt.Sprintf(" %dm overdue", bill.MonthsOverdue))
		}
		fmt.Fprintf(&b, "%s%s %-28s %10s%s\n", cursor, check, truncate(bill.Name, 28), formatMoney(bill.Amount), overdue)
	}

	total := m.total()
	totalLine := fmt.Sprintf("Selected %s of %s cash", formatMoney(total), formatMoney(m.cash))
	if total > m.cash {
		b.WriteString("\n" + overStyle.Render(totalLine+", not enough cash") + "\n")
	} else {
		b.WriteString("\n" + okStyle.Render(totalLine) + "\n")
	}

	help := make([]string, 0, 7)
	for _, k := range []key.Binding{pickerKeys.Up, pickerKeys.Down, pickerKeys.Toggle, pickerKeys.All, pickerKeys.None, pickerKeys.Confirm, pickerKeys.Quit} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(dim.Render(strings.Join(help, " • ")) + "\n")
	return panel.Render(b.String())
}

// pickBills runs the picker and returns the chosen bill ids.
func pickBills(bills []game.Bill, cash float64) ([]string, error) {
	final, err := tea.NewProgram(newBillPicker(bills, cash)).Run()
	if err != nil {
		return nil, fmt.Errorf("bill picker: %w", err)
	}
	m, ok := final.(billPicker)
	if !ok || m.cancelled {
		return nil, errPickCancelled
	}
	return m.selected(), nil
}
