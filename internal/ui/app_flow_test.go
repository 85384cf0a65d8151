package ui

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/johanforsgren/repodeck/internal/auth"
	"github.com/johanforsgren/repodeck/internal/domain"
	"github.com/johanforsgren/repodeck/internal/notify"
	"github.com/johanforsgren/repodeck/internal/provider/backend"
	"github.com/johanforsgren/repodeck/internal/provider/backend/backendtest"
	"github.com/johanforsgren/repodeck/internal/repolist"
	"github.com/johanforsgren/repodeck/internal/session"
	"github.com/johanforsgren/repodeck/internal/storage"
)

type flow struct {
	server  *backendtest.Server
	store   *storage.MemoryStore
	sess    *session.Context
	fetcher *repolist.Fetcher
	tm      *teatest.TestModel
}

func startFlow(t *testing.T, seed func(*backendtest.Server) domain.Session) *flow {
	t.Helper()

	server := backendtest.New()
	t.Cleanup(server.Close)
	server.SetRepos(25)

	store := storage.NewMemoryStore(seed(server))
	sess, err := session.New(store)
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}

	queue := notify.NewQueue(16)
	client, err := backend.NewClient(server.URL, sess, backend.WithNotifier(queue))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	fetcher := repolist.NewFetcher(client, queue)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := NewModel(ctx, Deps{
		Session: sess,
		Auth:    auth.NewController(client, sess, queue),
		Repos:   fetcher,
		Notices: queue,
	})
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 50))

	return &flow{server: server, store: store, sess: sess, fetcher: fetcher, tm: tm}
}

func (f *flow) typeText(s string) {
	f.tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (f *flow) waitForOutput(t *testing.T, texts ...string) {
	t.Helper()
	teatest.WaitFor(
		t, f.tm.Output(),
		func(bts []byte) bool {
			for _, text := range texts {
				if !bytes.Contains(bts, []byte(text)) {
					return false
				}
			}
			return true
		},
		teatest.WithCheckInterval(50*time.Millisecond),
		teatest.WithDuration(3*time.Second),
	)
}

func (f *flow) quit(t *testing.T) Model {
	t.Helper()
	f.tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	f.tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	m, ok := f.tm.FinalModel(t).(Model)
	if !ok {
		t.Fatal("final model is not Model")
	}
	return m
}

func (f *flow) tokens(t *testing.T) domain.Session {
	t.Helper()
	tokens, err := f.store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return tokens
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestLoginBrowseLogoutFlow(t *testing.T) {
	f := startFlow(t, func(s *backendtest.Server) domain.Session {
		s.AddUser("sam@example.com", "secret")
		return domain.Session{}
	})

	f.waitForOutput(t, "Sign in")
	f.typeText("sam@example.com")
	f.tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	f.typeText("secret")
	f.tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	f.waitForOutput(t, "sam@example.com", "Verification")
	f.typeText(backendtest.DefaultMFACode)
	f.tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	f.waitForOutput(t, "owner/repo-0")
	if got := f.tokens(t); got.AccessToken != "A1" || got.RefreshToken != "R1" {
		t.Fatalf("stored tokens = %+v, want A1/R1", got)
	}

	f.typeText("3")
	f.waitForOutput(t, "owner/repo-20")
	waitUntil(t, "page 3 to load", func() bool {
		state := f.fetcher.Snapshot()
		return state.Page == 2 && !state.Loading && len(state.Records) == 5
	})

	f.typeText("L")
	f.waitForOutput(t, "Sign in")
	waitUntil(t, "logout", func() bool { return f.sess.Phase() == domain.PhaseAuth })
	if got := f.tokens(t); got.IsAuthenticated() {
		t.Errorf("tokens should be cleared after logout, got %+v", got)
	}
	if f.server.LogoutCalls() != 1 {
		t.Errorf("LogoutCalls = %d, want 1", f.server.LogoutCalls())
	}

	m := f.quit(t)
	if m.phase != domain.PhaseAuth || m.email != "" {
		t.Errorf("final model phase=%s email=%q", m.phase, m.email)
	}
	if len(f.fetcher.Snapshot().Records) != 0 {
		t.Error("listing should be empty after logout")
	}
}

func TestExpiredSessionRefreshesOnStartup(t *testing.T) {
	f := startFlow(t, func(s *backendtest.Server) domain.Session {
		tokens := s.Issue()
		s.ExpireAccessTokens()
		return tokens
	})

	f.waitForOutput(t, "owner/repo-0")
	if got := f.tokens(t); got.AccessToken != "A2" || got.RefreshToken != "R2" {
		t.Errorf("stored tokens = %+v, want A2/R2", got)
	}
	if f.server.RefreshCalls() != 1 {
		t.Errorf("RefreshCalls = %d, want 1", f.server.RefreshCalls())
	}

	f.quit(t)
}

func TestRejectedRefreshReturnsToLogin(t *testing.T) {
	f := startFlow(t, func(s *backendtest.Server) domain.Session {
		tokens := s.Issue()
		s.ExpireAccessTokens()
		s.SetRejectRefresh(true)
		return tokens
	})

	f.waitForOutput(t, "Session timed out")
	waitUntil(t, "forced logout", func() bool { return f.sess.Phase() == domain.PhaseAuth })
	if got := f.tokens(t); got.IsAuthenticated() {
		t.Errorf("tokens should be cleared, got %+v", got)
	}
	if f.server.LogoutCalls() != 0 {
		t.Errorf("forced logout should not call the API, LogoutCalls = %d", f.server.LogoutCalls())
	}

	m := f.quit(t)
	if m.phase != domain.PhaseAuth {
		t.Errorf("final phase = %s, want auth", m.phase)
	}
}

func TestWrongCodeStaysOnVerification(t *testing.T) {
	f := startFlow(t, func(s *backendtest.Server) domain.Session {
		s.AddUser("sam@example.com", "secret")
		return domain.Session{}
	})

	f.waitForOutput(t, "Sign in")
	f.typeText("sam@example.com")
	f.tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	f.typeText("secret")
	f.tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	f.waitForOutput(t, "Verification")

	f.typeText("000000")
	f.tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	f.waitForOutput(t, auth.MsgInvalidCode)

	if f.sess.Phase() != domain.PhaseMFA {
		t.Errorf("phase = %s, want mfa", f.sess.Phase())
	}
	m := f.quit(t)
	if m.mfaView.Code() != "" {
		t.Errorf("code should be cleared after a failed attempt, got %q", m.mfaView.Code())
	}
}
