package views

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/johanforsgren/repodeck/internal/domain"
	"github.com/johanforsgren/repodeck/internal/logger"
	"github.com/johanforsgren/repodeck/internal/repolist"
)

func typeText(update func(tea.Msg) tea.Cmd, text string) {
	for _, r := range text {
		update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func records(n int) []domain.RepositoryRecord {
	out := make([]domain.RepositoryRecord, n)
	for i := range out {
		out[i] = domain.RepositoryRecord{
			FullName:    fmt.Sprintf("owner/repo-%d", i),
			URL:         fmt.Sprintf("https://github.com/owner/repo-%d", i),
			Stars:       100 - i,
			Description: "A fairly long description that goes on and on so it has to be truncated in the table",
			Language:    "Go",
		}
	}
	return out
}

func TestAuthViewTabCyclesFields(t *testing.T) {
	v := NewAuthView()

	typeText(v.Update, "sam@example.com")
	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(v.Update, "secret")

	if v.Email() != "sam@example.com" {
		t.Errorf("Email() = %q", v.Email())
	}
	if v.Password() != "secret" {
		t.Errorf("Password() = %q", v.Password())
	}

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(v.Update, "x")
	if v.Email() != "sam@example.comx" {
		t.Errorf("tab should wrap back to email, Email() = %q", v.Email())
	}
}

func TestAuthViewResetAndMode(t *testing.T) {
	v := NewAuthView()
	typeText(v.Update, "a@b.c")
	v.Reset()

	if v.Email() != "" || v.Password() != "" {
		t.Error("Reset should clear both fields")
	}

	if !strings.Contains(v.View(), "Sign in") {
		t.Error("login mode should render the sign in heading")
	}
	v.SetMode(domain.AuthModeRegister)
	if !strings.Contains(v.View(), "Create account") {
		t.Error("register mode should render the create account heading")
	}
}

func TestAuthViewMasksPassword(t *testing.T) {
	v := NewAuthView()
	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(v.Update, "hunter2")

	if strings.Contains(v.View(), "hunter2") {
		t.Error("password must not be rendered in clear text")
	}
}

func TestMFAViewAcceptsDigitsOnly(t *testing.T) {
	v := NewMFAView()
	typeText(v.Update, "12a3b4")

	if v.Code() != "1234" {
		t.Errorf("Code() = %q, want 1234", v.Code())
	}

	v.SetEmail("sam@example.com")
	if !strings.Contains(v.View(), "sam@example.com") {
		t.Error("expected email in view")
	}

	v.Reset()
	if v.Code() != "" || v.Email() != "" {
		t.Error("Reset should clear code and email")
	}
}

func TestReposViewPageButtons(t *testing.T) {
	v := NewReposView()
	v.SetSize(120, 40)
	v.SetState(repolist.State{Page: 1, Records: records(10), TotalCount: 25})

	if v.PageButtonCount() != 3 {
		t.Errorf("PageButtonCount() = %d, want 3", v.PageButtonCount())
	}

	view := v.View()
	for _, want := range []string{"[1]", "[2]", "[3]", "owner/repo-0"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}
	if strings.Contains(view, "[4]") {
		t.Error("unexpected fourth page button")
	}
}

func TestReposViewNoButtonsWhenEmpty(t *testing.T) {
	v := NewReposView()
	v.SetSize(120, 40)
	v.SetState(repolist.State{})

	if v.PageButtonCount() != 0 {
		t.Errorf("PageButtonCount() = %d, want 0", v.PageButtonCount())
	}
	if !strings.Contains(v.View(), "No repositories") {
		t.Error("expected empty placeholder")
	}
}

func TestReposViewSelectionAndFocusCard(t *testing.T) {
	v := NewReposView()
	v.SetSize(120, 40)
	v.SetState(repolist.State{Records: records(3), TotalCount: 3})

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := v.SelectedName(); got != "owner/repo-1" {
		t.Fatalf("SelectedName() = %q, want owner/repo-1", got)
	}

	v.SetState(repolist.State{Records: records(3), TotalCount: 3, Focused: "owner/repo-1"})
	v.SetDetails(&domain.RepoDetails{
		FullName:      "owner/repo-1",
		Forks:         7,
		DefaultBranch: "main",
		License:       "MIT",
		PushedAt:      time.Now().Add(-2 * time.Hour),
		Topics:        []string{"cli"},
	})

	view := v.View()
	for _, want := range []string{"https://github.com/owner/repo-1", "Forks:", "MIT", "2 hours ago", "cli"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in focused card", want)
		}
	}
}

func TestReposViewDropsDetailsOfOtherRepo(t *testing.T) {
	v := NewReposView()
	v.SetDetails(&domain.RepoDetails{FullName: "owner/repo-0"})
	v.SetState(repolist.State{Records: records(2), Focused: "owner/repo-1"})

	if v.details != nil {
		t.Error("details for a different repository should be dropped")
	}
}

func TestReposViewClear(t *testing.T) {
	v := NewReposView()
	v.SetState(repolist.State{Page: 2, Records: records(5), TotalCount: 25})
	v.Clear()

	if v.SelectedName() != "" || v.PageButtonCount() != 0 {
		t.Error("Clear should drop records and pages")
	}
}

func TestFormatStars(t *testing.T) {
	tests := map[int]string{
		0:      "0",
		999:    "999",
		12345:  "12.3k",
		100000: "100.0k",
	}
	for in, want := range tests {
		if got := formatStars(in); got != want {
			t.Errorf("formatStars(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestLogsViewScrolling(t *testing.T) {
	logger.Reset()
	for i := 0; i < 50; i++ {
		logger.Log("entry %d", i)
	}

	v := NewLogsView()
	v.SetSize(100, 20)
	v.Activate()

	if v.offset != 50-v.getVisibleLines() {
		t.Errorf("expected view to start at the bottom, offset=%d", v.offset)
	}

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if v.offset != 0 {
		t.Errorf("g should jump to top, offset=%d", v.offset)
	}
	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	if v.offset != 0 {
		t.Error("offset must not go negative")
	}

	if !strings.Contains(v.View(), "entry 0") {
		t.Error("expected first entry in view after jumping to top")
	}

	v.Deactivate()
	if v.IsActive() || v.View() != "" {
		t.Error("inactive view should render nothing")
	}
}

func TestLogsViewClear(t *testing.T) {
	logger.Reset()
	for i := 0; i < 30; i++ {
		logger.Log("entry %d", i)
	}

	v := NewLogsView()
	v.SetSize(100, 20)
	v.Activate()

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("C")})
	if v.offset != 0 || len(v.logs) != 0 {
		t.Errorf("C should empty the view, offset=%d logs=%d", v.offset, len(v.logs))
	}
	if n := len(logger.GetLogs()); n != 0 {
		t.Errorf("buffer still holds %d entries", n)
	}
	if !strings.Contains(v.View(), "No logs yet") {
		t.Error("expected empty placeholder after clearing")
	}

	logger.Log("after clear")
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("R")})
	if len(v.logs) != 1 {
		t.Errorf("refresh after clear: got %d entries, want 1", len(v.logs))
	}
}
