package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type TopBarModel struct {
	width      int
	phase      string
	email      string
	page       int
	pageCount  int
	totalCount int
	focused    string
	activity   string
	shortcuts  []string
}

var (
	titleStyle        = lipgloss.NewStyle().Padding(1, 2)
	titleOrangeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	valueWhiteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	shortcutBlueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
	descGrayStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
)

func NewTopBar() *TopBarModel {
	return &TopBarModel{}
}

func (m *TopBarModel) SetWidth(width int) {
	m.width = width
}

func (m *TopBarModel) SetPhase(phase string) {
	m.phase = phase
}

func (m *TopBarModel) SetEmail(email string) {
	m.email = email
}

// SetPage takes a zero-based page index.
func (m *TopBarModel) SetPage(page, pageCount, totalCount int) {
	m.page = page
	m.pageCount = pageCount
	m.totalCount = totalCount
}

func (m *TopBarModel) SetFocused(fullName string) {
	m.focused = fullName
}

// SetActivity shows a short busy indicator next to the title, such as a spinner frame.
func (m *TopBarModel) SetActivity(activity string) {
	m.activity = activity
}

// SetShortcuts takes entries formatted as "<key> description".
func (m *TopBarModel) SetShortcuts(shortcuts []string) {
	m.shortcuts = shortcuts
}

func (m *TopBarModel) View() string {
	titleLine := titleOrangeStyle.Render("repodeck")
	if m.activity != "" {
		titleLine += " " + m.activity
	}

	contextLines := m.buildContextInfo()
	shortcutCol1, shortcutCol2, col1Width := m.buildShortcutsDisplay(len(contextLines))

	topSection := []string{titleLine, ""}

	const fixedRows = 4
	const contextColWidth = 40
	const colMargin = 4

	for i := 0; i < fixedRows; i++ {
		var contextCol, sc1, sc2 string
		if i < len(contextLines) {
			contextCol = contextLines[i]
		}
		if i < len(shortcutCol1) {
			sc1 = shortcutCol1[i]
		}
		if i < len(shortcutCol2) {
			sc2 = shortcutCol2[i]
		}

		padding1 := contextColWidth - lipgloss.Width(contextCol)
		if padding1 < 0 {
			padding1 = 1
		}
		line := contextCol + strings.Repeat(" ", padding1) + sc1

		if sc2 != "" {
			padding2 := col1Width - lipgloss.Width(sc1) + colMargin
			if padding2 < colMargin {
				padding2 = colMargin
			}
			line += strings.Repeat(" ", padding2) + sc2
		}

		topSection = append(topSection, line)
	}

	return titleStyle.Width(m.width).Render(strings.Join(topSection, "\n"))
}

func (m *TopBarModel) buildContextInfo() []string {
	var lines []string

	view := m.phase
	if view == "" {
		view = "auth"
	}
	lines = append(lines, titleOrangeStyle.Render("View: ")+valueWhiteStyle.Render(view))

	if m.email != "" {
		email := m.email
		if len(email) > 30 {
			email = email[:27] + "..."
		}
		lines = append(lines, titleOrangeStyle.Render("User: ")+valueWhiteStyle.Render(email))
	}

	if m.phase == "repos" {
		page := fmt.Sprintf("%d/%d", m.page+1, max(m.pageCount, 1))
		lines = append(lines,
			titleOrangeStyle.Render("Page: ")+valueWhiteStyle.Render(page)+
				descGrayStyle.Render(fmt.Sprintf(" (%d repos)", m.totalCount)))

		if m.focused != "" {
			focused := m.focused
			if len(focused) > 30 {
				focused = focused[:27] + "..."
			}
			lines = append(lines, titleOrangeStyle.Render("Focus: ")+valueWhiteStyle.Render(focused))
		}
	}

	return lines
}

func (m *TopBarModel) buildShortcutsDisplay(contextHeight int) ([]string, []string, int) {
	var formatted []string
	maxWidth := 0

	for _, shortcut := range m.shortcuts {
		parts := strings.SplitN(shortcut, ">", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimPrefix(parts[0], "<")
		desc := strings.TrimSpace(parts[1])

		entry := shortcutBlueStyle.Render("<"+key+">") + " " + descGrayStyle.Render(desc)
		formatted = append(formatted, entry)
		if width := lipgloss.Width(entry); width > maxWidth {
			maxWidth = width
		}
	}

	rows := max(4, contextHeight)
	if len(formatted) <= rows {
		return formatted, nil, maxWidth
	}
	return formatted[:rows], formatted[rows:], maxWidth
}
