package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type MFAViewModel struct {
	codeInput textinput.Model
	email     string
	width     int
	height    int
}

func NewMFAView() *MFAViewModel {
	codeInput := textinput.New()
	codeInput.Placeholder = "123456"
	codeInput.CharLimit = 10
	codeInput.Width = 12
	codeInput.Focus()

	return &MFAViewModel{codeInput: codeInput}
}

func (m *MFAViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *MFAViewModel) SetEmail(email string) {
	m.email = email
}

func (m *MFAViewModel) Email() string {
	return m.email
}

func (m *MFAViewModel) Code() string {
	return strings.TrimSpace(m.codeInput.Value())
}

func (m *MFAViewModel) Reset() {
	m.codeInput.SetValue("")
	m.email = ""
	m.codeInput.Focus()
}

// ClearCode empties the input after a rejected code.
func (m *MFAViewModel) ClearCode() {
	m.codeInput.SetValue("")
}

// Update ignores typed characters other than digits.
func (m *MFAViewModel) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyRunes {
		for _, r := range key.Runes {
			if r < '0' || r > '9' {
				return nil
			}
		}
	}

	var cmd tea.Cmd
	m.codeInput, cmd = m.codeInput.Update(msg)
	return cmd
}

func (m *MFAViewModel) View() string {
	var b strings.Builder

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true).
		Render("Verification")

	b.WriteString(title + "\n\n")
	if m.email != "" {
		b.WriteString("Enter the code sent to " + m.email + "\n\n")
	} else {
		b.WriteString("Enter your verification code\n\n")
	}
	b.WriteString(m.codeInput.View() + "\n\n")

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true).
		Render("Enter: Verify | Esc: Back to sign in")
	b.WriteString(help)

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
