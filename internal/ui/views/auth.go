package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/johanforsgren/repodeck/internal/domain"
)

const (
	authFieldEmail = iota
	authFieldPassword
	authFieldCount
)

// AuthViewModel is the email/password form shared by login and registration.
type AuthViewModel struct {
	emailInput    textinput.Model
	passwordInput textinput.Model
	inputFocus    int
	mode          domain.AuthMode
	width         int
	height        int
}

func NewAuthView() *AuthViewModel {
	emailInput := textinput.New()
	emailInput.Placeholder = "you@example.com"
	emailInput.CharLimit = 254
	emailInput.Width = 40

	passwordInput := textinput.New()
	passwordInput.Placeholder = "Password"
	passwordInput.CharLimit = 128
	passwordInput.Width = 40
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '•'

	m := &AuthViewModel{
		emailInput:    emailInput,
		passwordInput: passwordInput,
		mode:          domain.AuthModeLogin,
	}
	m.focusCurrent()
	return m
}

func (m *AuthViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *AuthViewModel) SetMode(mode domain.AuthMode) {
	m.mode = mode
}

func (m *AuthViewModel) Mode() domain.AuthMode {
	return m.mode
}

func (m *AuthViewModel) Email() string {
	return strings.TrimSpace(m.emailInput.Value())
}

func (m *AuthViewModel) Password() string {
	return m.passwordInput.Value()
}

// ClearPassword empties the password field and puts the cursor back in it.
func (m *AuthViewModel) ClearPassword() {
	m.passwordInput.SetValue("")
}

// Reset empties both fields and focuses the email input.
func (m *AuthViewModel) Reset() {
	m.emailInput.SetValue("")
	m.passwordInput.SetValue("")
	m.blurAll()
	m.inputFocus = authFieldEmail
	m.focusCurrent()
}

func (m *AuthViewModel) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			m.nextInput()
			return nil
		case "shift+tab", "up":
			m.prevInput()
			return nil
		}
	}

	var cmd tea.Cmd
	switch m.inputFocus {
	case authFieldEmail:
		m.emailInput, cmd = m.emailInput.Update(msg)
	case authFieldPassword:
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return cmd
}

func (m *AuthViewModel) nextInput() {
	m.blurAll()
	m.inputFocus = (m.inputFocus + 1) % authFieldCount
	m.focusCurrent()
}

func (m *AuthViewModel) prevInput() {
	m.blurAll()
	m.inputFocus = (m.inputFocus - 1 + authFieldCount) % authFieldCount
	m.focusCurrent()
}

func (m *AuthViewModel) blurAll() {
	m.emailInput.Blur()
	m.passwordInput.Blur()
}

func (m *AuthViewModel) focusCurrent() {
	switch m.inputFocus {
	case authFieldEmail:
		m.emailInput.Focus()
	case authFieldPassword:
		m.passwordInput.Focus()
	}
}

func (m *AuthViewModel) View() string {
	var b strings.Builder

	heading, other := "Sign in", "register"
	if m.mode == domain.AuthModeRegister {
		heading, other = "Create account", "log in"
	}

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true).
		Render(heading)

	b.WriteString(title + "\n\n")
	b.WriteString("Email:\n")
	b.WriteString(m.emailInput.View() + "\n\n")
	b.WriteString("Password:\n")
	b.WriteString(m.passwordInput.View() + "\n\n")

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true).
		Render("Tab: Next field | Enter: Submit | Ctrl+R: Switch to " + other + " | Ctrl+C: Quit")
	b.WriteString(help)

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
