package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/johanforsgren/repodeck/internal/domain"
	"github.com/johanforsgren/repodeck/internal/repolist"
)

var (
	pageButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	activePageButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F9FAFB")).
				Background(lipgloss.Color("#7C3AED")).
				Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)
)

// ReposViewModel renders one page of repositories, the page buttons and the
// card of the focused repository.
type ReposViewModel struct {
	table     table.Model
	paginator paginator.Model

	records []domain.RepositoryRecord
	focused string
	details *domain.RepoDetails
	loading bool

	width  int
	height int
}

func NewReposView() *ReposViewModel {
	t := table.New(
		table.WithColumns(repoColumns(80)),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(domain.PageSize),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.HiddenBorder()).
		Bold(false).
		Foreground(lipgloss.Color("#6B7280"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#F59E0B")).
		Background(lipgloss.Color("#1F2937")).
		Bold(true)
	t.SetStyles(s)

	p := paginator.New()
	p.PerPage = domain.PageSize
	p.Type = paginator.Arabic

	return &ReposViewModel{
		table:     t,
		paginator: p,
	}
}

func repoColumns(width int) []table.Column {
	const (
		markerWidth   = 2
		starsWidth    = 8
		nameWidth     = 32
		languageWidth = 12
		minDescWidth  = 10
		maxDescWidth  = 80
	)

	fixed := markerWidth + starsWidth + nameWidth + languageWidth + 8
	descWidth := clamp(width-fixed, minDescWidth, maxDescWidth)

	return []table.Column{
		{Title: "", Width: markerWidth},
		{Title: "Stars", Width: starsWidth},
		{Title: "Repository", Width: nameWidth},
		{Title: "Language", Width: languageWidth},
		{Title: "Description", Width: descWidth},
	}
}

func (m *ReposViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(repoColumns(width))
	m.table.SetRows(m.rows())
}

// SetState copies a fetcher snapshot into the view.
func (m *ReposViewModel) SetState(state repolist.State) {
	m.records = state.Records
	m.focused = state.Focused
	m.loading = state.Loading
	if m.details != nil && m.details.FullName != state.Focused {
		m.details = nil
	}

	m.paginator.TotalPages = domain.PageCount(state.TotalCount, domain.PageSize)
	m.paginator.Page = state.Page

	m.table.SetRows(m.rows())
	if m.table.Cursor() >= len(m.records) {
		m.table.SetCursor(max(len(m.records)-1, 0))
	}
}

func (m *ReposViewModel) SetDetails(details *domain.RepoDetails) {
	m.details = details
}

// Clear drops everything shown, used on logout.
func (m *ReposViewModel) Clear() {
	m.SetState(repolist.State{})
	m.details = nil
	m.table.SetCursor(0)
}

func (m *ReposViewModel) rows() []table.Row {
	columns := m.table.Columns()
	descWidth := columns[len(columns)-1].Width

	rows := make([]table.Row, len(m.records))
	for i, record := range m.records {
		marker := ""
		if record.FullName == m.focused && m.focused != "" {
			marker = "▶"
		}
		rows[i] = table.Row{
			marker,
			formatStars(record.Stars),
			record.FullName,
			record.Language,
			truncate.StringWithTail(firstLine(record.Description), uint(descWidth), "…"),
		}
	}
	return rows
}

// SelectedName is the full name under the table cursor.
func (m *ReposViewModel) SelectedName() string {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.records) {
		return ""
	}
	return m.records[idx].FullName
}

func (m *ReposViewModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

func (m *ReposViewModel) View() string {
	var b strings.Builder

	if len(m.records) == 0 {
		if m.loading {
			b.WriteString(mutedStyle.Render("Loading repositories..."))
		} else {
			b.WriteString(mutedStyle.Render("No repositories to show"))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	if buttons := m.pageButtons(); buttons != "" {
		b.WriteString("\n" + buttons + "\n")
	}

	if card := m.focusedCard(); card != "" {
		b.WriteString("\n" + card + "\n")
	}

	b.WriteString("\n" + mutedStyle.Render("←/→: Page | 1-9: Jump | Enter: Focus | r: Reload | L: Logout | :: Command"))
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

// pageButtons renders one button per page, [1] [2] ..., with the current page highlighted.
func (m *ReposViewModel) pageButtons() string {
	total := m.paginator.TotalPages
	if total <= 0 {
		return ""
	}

	buttons := make([]string, total)
	for i := 0; i < total; i++ {
		label := "[" + strconv.Itoa(i+1) + "]"
		if i == m.paginator.Page {
			buttons[i] = activePageButtonStyle.Render(label)
		} else {
			buttons[i] = pageButtonStyle.Render(label)
		}
	}

	line := strings.Join(buttons, " ")
	if m.width > 0 && lipgloss.Width(line) > m.width-4 {
		return pageButtonStyle.Render("Page ") + m.paginator.View()
	}
	return line
}

// PageButtonCount is the number of page buttons on display.
func (m *ReposViewModel) PageButtonCount() int {
	return m.paginator.TotalPages
}

func (m *ReposViewModel) focusedCard() string {
	if m.focused == "" {
		return ""
	}

	var record *domain.RepositoryRecord
	for i := range m.records {
		if m.records[i].FullName == m.focused {
			record = &m.records[i]
			break
		}
	}
	if record == nil {
		return ""
	}

	wrapWidth := 72
	if m.width > 0 {
		wrapWidth = clamp(m.width-8, 20, 100)
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(record.FullName) + "\n")
	b.WriteString(mutedStyle.Render(record.URL) + "\n\n")
	if record.Description != "" {
		b.WriteString(wordwrap.String(record.Description, wrapWidth) + "\n\n")
	}
	fmt.Fprintf(&b, "%s %d   %s %s", labelStyle.Render("★"), record.Stars, labelStyle.Render("Language:"), orDash(record.Language))

	if d := m.details; d != nil && d.FullName == record.FullName {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s %d   %s %d   %s %d\n",
			labelStyle.Render("Forks:"), d.Forks,
			labelStyle.Render("Issues:"), d.OpenIssues,
			labelStyle.Render("Watchers:"), d.Watchers)
		fmt.Fprintf(&b, "%s %s   %s %s",
			labelStyle.Render("Branch:"), orDash(d.DefaultBranch),
			labelStyle.Render("License:"), orDash(d.License))
		if !d.PushedAt.IsZero() {
			fmt.Fprintf(&b, "   %s %s", labelStyle.Render("Pushed:"), formatAge(d.PushedAt))
		}
		if len(d.Topics) > 0 {
			b.WriteString("\n" + labelStyle.Render("Topics:") + " " + wordwrap.String(strings.Join(d.Topics, ", "), wrapWidth))
		}
		if d.Homepage != "" {
			b.WriteString("\n" + labelStyle.Render("Homepage:") + " " + d.Homepage)
		}
	}

	return cardStyle.Render(b.String())
}

func formatStars(stars int) string {
	if stars >= 10000 {
		return fmt.Sprintf("%.1fk", float64(stars)/1000)
	}
	return strconv.Itoa(stars)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
