package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/johanforsgren/repodeck/internal/logger"
)

type LogsViewModel struct {
	width  int
	height int
	offset int
	active bool
	logs   []logger.LogEntry
}

func NewLogsView() *LogsViewModel {
	return &LogsViewModel{}
}

func (m *LogsViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *LogsViewModel) Activate() {
	m.active = true
	m.logs = logger.GetLogs()
	m.offset = m.maxOffset()
}

func (m *LogsViewModel) Deactivate() {
	m.active = false
	m.offset = 0
}

func (m *LogsViewModel) IsActive() bool {
	return m.active
}

func (m *LogsViewModel) getVisibleLines() int {
	return max(m.height-8, 1)
}

func (m *LogsViewModel) maxOffset() int {
	return max(len(m.logs)-m.getVisibleLines(), 0)
}

func (m *LogsViewModel) Update(msg tea.Msg) tea.Cmd {
	if !m.active {
		return nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch key.String() {
	case "up", "k":
		if m.offset > 0 {
			m.offset--
		}
	case "down", "j":
		if m.offset < m.maxOffset() {
			m.offset++
		}
	case "pgup":
		m.offset = max(m.offset-m.getVisibleLines(), 0)
	case "pgdown":
		m.offset = min(m.offset+m.getVisibleLines(), m.maxOffset())
	case "g", "home":
		m.offset = 0
	case "G", "end":
		m.offset = m.maxOffset()
	case "R":
		m.logs = logger.GetLogs()
		m.offset = m.maxOffset()
	case "C":
		logger.Reset()
		m.logs = nil
		m.offset = 0
	}
	return nil
}

func levelColor(level logger.Level) string {
	switch level {
	case logger.LevelError:
		return "#EF4444"
	case logger.LevelHTTP:
		return "#60A5FA"
	case logger.LevelFile:
		return "#F59E0B"
	default:
		return "#E5E7EB"
	}
}

func (m *LogsViewModel) View() string {
	if !m.active {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true).
		Padding(1, 0)

	b.WriteString(titleStyle.Render(fmt.Sprintf("Session Logs (%d entries)", len(m.logs))))
	b.WriteString("\n\n")

	lineWidth := uint(max(m.width-10, 20))

	if len(m.logs) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)
		b.WriteString(emptyStyle.Render("No logs yet"))
	} else {
		end := min(m.offset+m.getVisibleLines(), len(m.logs))
		for _, entry := range m.logs[m.offset:end] {
			line := fmt.Sprintf("[%s] %s", entry.Timestamp.Format("15:04:05.000"), entry.String())
			lineStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(levelColor(entry.Level)))
			b.WriteString(lineStyle.Render(truncate.StringWithTail(line, lineWidth, "…")))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true)

	scrollInfo := ""
	if len(m.logs) > m.getVisibleLines() {
		scrollInfo = fmt.Sprintf(" | Showing %d-%d of %d", m.offset+1, min(m.offset+m.getVisibleLines(), len(m.logs)), len(m.logs))
	}

	b.WriteString(helpStyle.Render("j/k: Scroll | PgUp/PgDn: Page | g/G: Top/Bottom | R: Refresh | C: Clear | Esc: Close" + scrollInfo))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7C3AED")).
		Padding(1, 2).
		Width(max(m.width-4, 0))

	return boxStyle.Render(b.String())
}
