package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type tokenInputModel struct {
	input    textinput.Model
	done     bool
	canceled bool
}

// TokenInputResult holds the access token the user typed.
type TokenInputResult struct {
	Token    string
	Canceled bool
}

// TokenInputApp wraps tokenInputModel for standalone use with tea.NewProgram.
type TokenInputApp struct {
	model  tokenInputModel
	result *TokenInputResult
}

func NewTokenInputApp() *TokenInputApp {
	ti := textinput.New()
	ti.Placeholder = "glpat-..."
	ti.EchoMode = textinput.EchoPassword
	ti.Focus()

	return &TokenInputApp{model: tokenInputModel{input: ti}}
}

func (a *TokenInputApp) Init() tea.Cmd {
	return textinput.Blink
}

func (a *TokenInputApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := a.model.update(msg)
	a.model = m

	if a.model.done || a.model.canceled {
		a.result = a.model.result()
		return a, tea.Quit
	}
	return a, cmd
}

func (a *TokenInputApp) View() string {
	return titleStyle.Render("Informe seu token de acesso do GitLab") + "\n" +
		a.model.input.View() + "\n" +
		helpStyle.Render("enter confirma · esc cancela") + "\n"
}

func (a *TokenInputApp) GetResult() *TokenInputResult {
	return a.result
}

func (m tokenInputModel) update(msg tea.Msg) (tokenInputModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			return m, nil
		case "enter":
			if strings.TrimSpace(m.input.Value()) != "" {
				m.done = true
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m tokenInputModel) result() *TokenInputResult {
	if m.canceled {
		return &TokenInputResult{Canceled: true}
	}
	return &TokenInputResult{Token: strings.TrimSpace(m.input.Value())}
}

// PromptToken runs the token input and returns the typed token, or
// ok=false when the user canceled.
func PromptToken() (string, bool, error) {
	app := NewTokenInputApp()
	p := tea.NewProgram(app)

	if _, err := p.Run(); err != nil {
		return "", false, fmt.Errorf("running token prompt: %w", err)
	}

	result := app.GetResult()
	if result == nil || result.Canceled {
		return "", false, nil
	}
	return result.Token, true, nil
}
