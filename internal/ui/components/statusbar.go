package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/johanforsgren/repodeck/internal/notify"
)

// StatusBarModel is the bottom line. It shows the current notice, or a hint
// when there is none.
type StatusBarModel struct {
	width  int
	hint   string
	notice *notify.Notice
}

func NewStatusBar() *StatusBarModel {
	return &StatusBarModel{}
}

func (m *StatusBarModel) SetWidth(width int) {
	m.width = width
}

func (m *StatusBarModel) SetHint(hint string) {
	m.hint = hint
}

func (m *StatusBarModel) SetNotice(n notify.Notice) {
	m.notice = &n
}

func (m *StatusBarModel) ClearNotice() {
	m.notice = nil
}

func (m *StatusBarModel) Notice() (notify.Notice, bool) {
	if m.notice == nil {
		return notify.Notice{}, false
	}
	return *m.notice, true
}

func (m *StatusBarModel) View() string {
	bgColor := lipgloss.Color("#374151")
	fgColor := lipgloss.Color("#9CA3AF")
	text := m.hint

	if m.notice != nil {
		text = m.notice.Text
		fgColor = lipgloss.Color("#F9FAFB")
		if m.notice.IsError() {
			bgColor = lipgloss.Color("#991B1B")
		} else {
			bgColor = lipgloss.Color("#1E40AF")
		}
	}

	content := " " + text
	if m.width > 0 {
		if lipgloss.Width(content) > m.width {
			content = truncate.StringWithTail(content, uint(max(m.width-1, 0)), "…")
		}
		if pad := m.width - lipgloss.Width(content); pad > 0 {
			content += strings.Repeat(" ", pad)
		}
	}

	style := lipgloss.NewStyle().
		Foreground(fgColor).
		Background(bgColor)

	return style.Render(content)
}
