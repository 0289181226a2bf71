// Package tui holds the interactive pickers used when flags are omitted
// on a terminal session.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glhours/glhours/internal/timeutil"
)

type monthPickerModel struct {
	year     int
	month    time.Month
	done     bool
	canceled bool
}

// MonthPickerResult holds the month the user selected.
type MonthPickerResult struct {
	Selected time.Time
	Canceled bool
}

// MonthPickerApp wraps monthPickerModel for standalone use with tea.NewProgram.
type MonthPickerApp struct {
	picker monthPickerModel
	result *MonthPickerResult
}

func NewMonthPickerApp(initial time.Time) *MonthPickerApp {
	return &MonthPickerApp{
		picker: monthPickerModel{year: initial.Year(), month: initial.Month()},
	}
}

func (a *MonthPickerApp) Init() tea.Cmd {
	return nil
}

func (a *MonthPickerApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := a.picker.update(msg)
	a.picker = m

	if a.picker.done || a.picker.canceled {
		a.result = a.picker.result()
		return a, tea.Quit
	}
	return a, cmd
}

func (a *MonthPickerApp) View() string {
	return a.picker.view()
}

func (a *MonthPickerApp) GetResult() *MonthPickerResult {
	return a.result
}

func (m monthPickerModel) update(msg tea.Msg) (monthPickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.canceled = true
		case "enter":
			m.done = true
		case "left", "h":
			m.month--
			if m.month < time.January {
				m.month = time.December
				m.year--
			}
		case "right", "l":
			m.month++
			if m.month > time.December {
				m.month = time.January
				m.year++
			}
		case "up", "k":
			m.year++
		case "down", "j":
			m.year--
		}
	}
	return m, nil
}

func (m monthPickerModel) view() string {
	label := fmt.Sprintf("◀  %s %d  ▶", timeutil.MonthNamePT(m.month), m.year)
	return titleStyle.Render("Selecione o mês do relatório") + "\n" +
		selectedStyle.Render(label) + "\n" +
		helpStyle.Render("←/→ mês · ↑/↓ ano · enter confirma · esc cancela") + "\n"
}

func (m monthPickerModel) result() *MonthPickerResult {
	if m.canceled {
		return &MonthPickerResult{Canceled: true}
	}
	return &MonthPickerResult{
		Selected: time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.Local),
	}
}

// PickMonth runs the picker and returns the chosen month, or ok=false
// when the user canceled.
func PickMonth(initial time.Time) (time.Time, bool, error) {
	app := NewMonthPickerApp(initial)
	p := tea.NewProgram(app)

	if _, err := p.Run(); err != nil {
		return time.Time{}, false, fmt.Errorf("running month picker: %w", err)
	}

	result := app.GetResult()
	if result == nil || result.Canceled {
		return time.Time{}, false, nil
	}
	return result.Selected, true, nil
}
