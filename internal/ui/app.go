package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/johanforsgren/repodeck/internal/auth"
	"github.com/johanforsgren/repodeck/internal/domain"
	"github.com/johanforsgren/repodeck/internal/logger"
	"github.com/johanforsgren/repodeck/internal/notify"
	"github.com/johanforsgren/repodeck/internal/repolist"
	"github.com/johanforsgren/repodeck/internal/session"
	"github.com/johanforsgren/repodeck/internal/ui/components"
	"github.com/johanforsgren/repodeck/internal/ui/views"
)

const msgDetailsUnavailable = "GitHub details unavailable"

// Deps are the services the UI drives. Details may be nil to disable the
// GitHub lookup.
type Deps struct {
	Session *session.Context
	Auth    *auth.Controller
	Repos   *repolist.Fetcher
	Details domain.DetailsSource
	Notices *notify.Queue
}

type Model struct {
	ctx      context.Context
	width    int
	height   int
	phase    domain.Phase
	email    string
	busy     bool
	quitting bool

	session *session.Context
	auth    *auth.Controller
	repos   *repolist.Fetcher
	details domain.DetailsSource
	notices *notify.Queue
	phaseCh chan domain.Phase
	board   *notify.Board

	topBar     *components.TopBarModel
	statusBar  *components.StatusBarModel
	commandBar *components.CommandBarModel
	authView   *views.AuthViewModel
	mfaView    *views.MFAViewModel
	reposView  *views.ReposViewModel
	logsView   *views.LogsViewModel
	spinner    spinner.Model
	keys       *KeyRegistry
}

func NewModel(ctx context.Context, deps Deps) Model {
	if deps.Notices == nil {
		deps.Notices = notify.NewQueue(0)
	}

	phaseCh := make(chan domain.Phase, 8)
	deps.Session.Subscribe(func(p domain.Phase) {
		select {
		case phaseCh <- p:
		default:
		}
	})

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := Model{
		ctx:        ctx,
		phase:      deps.Session.Phase(),
		session:    deps.Session,
		auth:       deps.Auth,
		repos:      deps.Repos,
		details:    deps.Details,
		notices:    deps.Notices,
		phaseCh:    phaseCh,
		board:      &notify.Board{},
		topBar:     components.NewTopBar(),
		statusBar:  components.NewStatusBar(),
		commandBar: components.NewCommandBar(),
		authView:   views.NewAuthView(),
		mfaView:    views.NewMFAView(),
		reposView:  views.NewReposView(),
		logsView:   views.NewLogsView(),
		spinner:    s,
		keys:       NewKeyRegistry(),
	}
	m.authView.SetMode(m.auth.Mode())
	m.refreshChrome()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForNotice(), m.waitForPhase()}
	if m.phase == domain.PhaseRepos {
		cmds = append(cmds, m.loadPage(0))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.topBar.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.commandBar.SetWidth(msg.Width)
		m.authView.SetSize(msg.Width, msg.Height)
		m.mfaView.SetSize(msg.Width, msg.Height)
		m.reposView.SetSize(msg.Width, msg.Height)
		m.logsView.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshChrome()
		return m, cmd

	case NoticeMsg:
		shown := m.board.Show(msg.notice)
		m.refreshChrome()
		return m, tea.Batch(m.waitForNotice(), expireNotice(shown))

	case NoticeExpiredMsg:
		if m.board.Expire(msg.id) {
			m.refreshChrome()
		}
		return m, nil

	case PhaseChangedMsg:
		cmd := m.syncPhase()
		return m, tea.Batch(m.waitForPhase(), cmd)

	case AuthResultMsg:
		m.busy = false
		if msg.err != nil {
			m.authView.ClearPassword()
		} else if msg.mode == domain.AuthModeRegister {
			m.authView.SetMode(m.auth.Mode())
			m.authView.ClearPassword()
		}
		cmd := m.syncPhase()
		return m, cmd

	case VerifyResultMsg:
		m.busy = false
		if msg.err != nil {
			m.mfaView.ClearCode()
		}
		cmd := m.syncPhase()
		return m, cmd

	case LogoutResultMsg:
		m.busy = false
		if msg.err != nil {
			logger.LogError("LOGOUT", "ui", msg.err)
		}
		cmd := m.syncPhase()
		return m, cmd

	case ReposLoadedMsg:
		outcome := m.repos.Apply(msg.result)
		logger.Log("UI: page %d %s", msg.result.Ticket.Page, outcome)
		if outcome != repolist.OutcomeStale {
			m.reposView.SetState(m.repos.Snapshot())
		}
		cmd := m.syncPhase()
		m.refreshChrome()
		return m, cmd

	case DetailsLoadedMsg:
		if m.phase != domain.PhaseRepos || m.repos.Snapshot().Focused != msg.fullName {
			return m, nil
		}
		if msg.err != nil {
			m.notices.Notify(notify.LevelInfo, msgDetailsUnavailable)
			return m, nil
		}
		m.reposView.SetDetails(msg.details)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.commandBar.IsActive() {
		switch key {
		case "enter":
			cmd := m.runCommand(m.commandBar.Submit())
			return m, cmd
		case "esc":
			m.commandBar.Deactivate()
			return m, nil
		default:
			return m, m.commandBar.Update(msg)
		}
	}

	if m.logsView.IsActive() {
		switch key {
		case "esc", "q", "ctrl+l":
			m.logsView.Deactivate()
			return m, nil
		default:
			return m, m.logsView.Update(msg)
		}
	}

	if key == "ctrl+l" {
		m.logsView.Activate()
		return m, nil
	}

	if newModel, cmd, handled := m.keys.HandleKey(m, m.phase, key); handled {
		return newModel, cmd
	}

	switch m.phase {
	case domain.PhaseAuth:
		return m, m.authView.Update(msg)
	case domain.PhaseMFA:
		return m, m.mfaView.Update(msg)
	case domain.PhaseRepos:
		return m, m.reposView.Update(msg)
	}
	return m, nil
}

func (m *Model) runCommand(input string) tea.Cmd {
	command := ParseCommand(input)
	logger.Log("UI: executing command %q", input)

	switch command.Type {
	case CommandQuit:
		m.quitting = true
		return tea.Quit
	case CommandLogout:
		return m.logout()
	case CommandLogs:
		m.logsView.Activate()
		return nil
	case CommandReload:
		return m.loadPage(m.repos.Snapshot().Page)
	case CommandPage:
		page, ok := command.PageArg()
		if !ok {
			m.notices.Notify(notify.LevelError, "Usage: :page N")
			return nil
		}
		return m.jumpToPage(page)
	}

	if command.Name != "" {
		m.notices.Notify(notify.LevelError, fmt.Sprintf("Unknown command: %s", command.Name))
	}
	return nil
}

func (m *Model) submitCredentials() tea.Cmd {
	if m.busy {
		return nil
	}
	m.busy = true
	m.email = m.authView.Email()

	ctx, controller := m.ctx, m.auth
	email, password, mode := m.authView.Email(), m.authView.Password(), m.auth.Mode()
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return AuthResultMsg{mode: mode, err: controller.Submit(ctx, email, password)}
	})
}

func (m *Model) submitCode() tea.Cmd {
	if m.busy {
		return nil
	}
	m.busy = true

	ctx, controller := m.ctx, m.auth
	email, code := m.mfaView.Email(), m.mfaView.Code()
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return VerifyResultMsg{err: controller.VerifyMFA(ctx, email, code)}
	})
}

func (m *Model) logout() tea.Cmd {
	if m.busy {
		return nil
	}
	m.busy = true

	ctx, controller := m.ctx, m.auth
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return LogoutResultMsg{err: controller.Logout(ctx)}
	})
}

// syncPhase brings the views in line with the session phase. Phase changes
// can originate outside the UI, such as a forced logout during a fetch.
func (m *Model) syncPhase() tea.Cmd {
	current := m.session.Phase()
	if current == m.phase {
		return nil
	}

	previous := m.phase
	m.phase = current
	logger.Log("UI: phase %s -> %s", previous, current)

	var cmd tea.Cmd
	switch current {
	case domain.PhaseAuth:
		m.mfaView.Reset()
		m.repos.Reset()
		m.reposView.Clear()
		m.commandBar.Deactivate()
		if previous == domain.PhaseRepos {
			m.authView.Reset()
			m.email = ""
		}
		m.authView.SetMode(m.auth.Mode())
	case domain.PhaseMFA:
		m.mfaView.Reset()
		m.mfaView.SetEmail(m.auth.PendingEmail())
		m.authView.ClearPassword()
	case domain.PhaseRepos:
		m.authView.Reset()
		m.mfaView.Reset()
		cmd = m.loadPage(0)
	}

	m.refreshChrome()
	return cmd
}

func (m Model) loadPage(page int) tea.Cmd {
	ticket := m.repos.Begin(page)
	m.reposView.SetState(m.repos.Snapshot())

	ctx, fetcher := m.ctx, m.repos
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return ReposLoadedMsg{result: fetcher.Fetch(ctx, ticket)}
	})
}

func (m Model) changePage(delta int) tea.Cmd {
	return m.jumpToPage(m.repos.Snapshot().Page + delta)
}

// jumpToPage loads a zero-based page if it exists.
func (m Model) jumpToPage(page int) tea.Cmd {
	if page < 0 || page >= m.repos.PageCount() {
		return nil
	}
	return m.loadPage(page)
}

func (m Model) toggleFocus() tea.Cmd {
	name := m.reposView.SelectedName()
	if name == "" {
		return nil
	}

	focused := m.repos.ToggleFocus(name)
	m.reposView.SetState(m.repos.Snapshot())
	if focused == "" || m.details == nil {
		return nil
	}

	ctx, source := m.ctx, m.details
	return func() tea.Msg {
		details, err := source.GetDetails(ctx, focused)
		return DetailsLoadedMsg{fullName: focused, details: details, err: err}
	}
}

func (m Model) loading() bool {
	if m.busy {
		return true
	}
	return m.phase == domain.PhaseRepos && m.repos.Snapshot().Loading
}

func (m Model) refreshChrome() {
	m.topBar.SetPhase(string(m.phase))
	m.topBar.SetEmail(m.email)
	m.topBar.SetShortcuts(m.keys.Shortcuts(m.phase))

	state := m.repos.Snapshot()
	m.topBar.SetPage(state.Page, m.repos.PageCount(), state.TotalCount)
	m.topBar.SetFocused(state.Focused)

	if m.loading() {
		m.topBar.SetActivity(m.spinner.View())
	} else {
		m.topBar.SetActivity("")
	}

	if n, ok := m.board.Current(time.Now()); ok {
		m.statusBar.SetNotice(n)
	} else {
		m.statusBar.ClearNotice()
	}

	switch m.phase {
	case domain.PhaseAuth:
		m.statusBar.SetHint("Enter your email and password")
	case domain.PhaseMFA:
		m.statusBar.SetHint("Enter the verification code")
	case domain.PhaseRepos:
		m.statusBar.SetHint("Press : for commands, ctrl+l for logs")
	}
}

func (m Model) View() string {
	if m.width == 0 {
		return HelpStyle.Render("Loading...")
	}

	m.refreshChrome()

	var content string
	switch {
	case m.logsView.IsActive():
		content = m.logsView.View()
	case m.phase == domain.PhaseAuth:
		content = m.authView.View()
	case m.phase == domain.PhaseMFA:
		content = m.mfaView.View()
	default:
		content = m.reposView.View()
	}

	topBar := m.topBar.View()
	if commandBar := m.commandBar.View(); commandBar != "" {
		return topBar + "\n" + content + "\n" + commandBar
	}
	return topBar + "\n" + content + "\n" + m.statusBar.View()
}

func (m Model) waitForNotice() tea.Cmd {
	ctx, ch := m.ctx, m.notices.C()
	return func() tea.Msg {
		select {
		case n := <-ch:
			return NoticeMsg{notice: n}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) waitForPhase() tea.Cmd {
	ctx, ch := m.ctx, m.phaseCh
	return func() tea.Msg {
		select {
		case p := <-ch:
			return PhaseChangedMsg{phase: p}
		case <-ctx.Done():
			return nil
		}
	}
}

func expireNotice(n notify.Notice) tea.Cmd {
	return tea.Tick(n.TTL, func(time.Time) tea.Msg {
		return NoticeExpiredMsg{id: n.ID}
	})
}

type NoticeMsg struct {
	notice notify.Notice
}

type NoticeExpiredMsg struct {
	id uuid.UUID
}

type PhaseChangedMsg struct {
	phase domain.Phase
}

type AuthResultMsg struct {
	mode domain.AuthMode
	err  error
}

type VerifyResultMsg struct {
	err error
}

type LogoutResultMsg struct {
	err error
}

type ReposLoadedMsg struct {
	result repolist.Result
}

type DetailsLoadedMsg struct {
	fullName string
	details  *domain.RepoDetails
	err      error
}
