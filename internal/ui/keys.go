package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/johanforsgren/repodeck/internal/domain"
)

type KeyHandler func(m Model, key string) (Model, tea.Cmd)

type KeyBinding struct {
	Keys    []string
	Help    string
	Handler KeyHandler
}

// KeyRegistry maps keys to handlers per phase. Keys not bound in the
// current phase fall through to the phase's view.
type KeyRegistry struct {
	bindings map[domain.Phase][]KeyBinding
}

func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{bindings: make(map[domain.Phase][]KeyBinding)}

	r.Register(domain.PhaseAuth, KeyBinding{Keys: []string{"enter"}, Help: "submit", Handler: handleSubmitKey})
	r.Register(domain.PhaseAuth, KeyBinding{Keys: []string{"ctrl+r"}, Help: "login/register", Handler: handleToggleModeKey})

	r.Register(domain.PhaseMFA, KeyBinding{Keys: []string{"enter"}, Help: "verify", Handler: handleVerifyKey})
	r.Register(domain.PhaseMFA, KeyBinding{Keys: []string{"esc"}, Help: "back", Handler: handleCancelMFAKey})

	r.Register(domain.PhaseRepos, KeyBinding{Keys: []string{"left", "h"}, Help: "prev page", Handler: handlePrevPageKey})
	r.Register(domain.PhaseRepos, KeyBinding{Keys: []string{"right", "l"}, Help: "next page", Handler: handleNextPageKey})
	r.Register(domain.PhaseRepos, KeyBinding{
		Keys:    []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
		Help:    "jump to page",
		Handler: handleJumpPageKey,
	})
	r.Register(domain.PhaseRepos, KeyBinding{Keys: []string{"enter"}, Help: "focus", Handler: handleFocusKey})
	r.Register(domain.PhaseRepos, KeyBinding{Keys: []string{"r"}, Help: "reload", Handler: handleReloadKey})
	r.Register(domain.PhaseRepos, KeyBinding{Keys: []string{"L"}, Help: "logout", Handler: handleLogoutKey})
	r.Register(domain.PhaseRepos, KeyBinding{Keys: []string{":"}, Help: "command", Handler: handleCommandKey})
	r.Register(domain.PhaseRepos, KeyBinding{Keys: []string{"q"}, Help: "quit", Handler: handleQuitKey})

	return r
}

func (r *KeyRegistry) Register(phase domain.Phase, binding KeyBinding) {
	r.bindings[phase] = append(r.bindings[phase], binding)
}

func (r *KeyRegistry) HandleKey(m Model, phase domain.Phase, key string) (Model, tea.Cmd, bool) {
	for _, binding := range r.bindings[phase] {
		for _, k := range binding.Keys {
			if k == key {
				newModel, cmd := binding.Handler(m, key)
				return newModel, cmd, true
			}
		}
	}
	return m, nil, false
}

// Shortcuts lists the bindings of phase as "<key> help" for the top bar.
func (r *KeyRegistry) Shortcuts(phase domain.Phase) []string {
	shortcuts := make([]string, 0, len(r.bindings[phase])+1)
	for _, binding := range r.bindings[phase] {
		key := binding.Keys[0]
		if len(binding.Keys) > 2 {
			key = binding.Keys[0] + "-" + binding.Keys[len(binding.Keys)-1]
		}
		shortcuts = append(shortcuts, "<"+key+"> "+binding.Help)
	}
	shortcuts = append(shortcuts, "<ctrl+l> logs")
	return shortcuts
}

func handleSubmitKey(m Model, _ string) (Model, tea.Cmd) {
	cmd := m.submitCredentials()
	return m, cmd
}

func handleToggleModeKey(m Model, _ string) (Model, tea.Cmd) {
	m.authView.SetMode(m.auth.ToggleMode())
	return m, nil
}

func handleVerifyKey(m Model, _ string) (Model, tea.Cmd) {
	cmd := m.submitCode()
	return m, cmd
}

func handleCancelMFAKey(m Model, _ string) (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if err := m.auth.CancelMFA(); err != nil {
		return m, nil
	}
	cmd := m.syncPhase()
	return m, cmd
}

func handlePrevPageKey(m Model, _ string) (Model, tea.Cmd) {
	cmd := m.changePage(-1)
	return m, cmd
}

func handleNextPageKey(m Model, _ string) (Model, tea.Cmd) {
	cmd := m.changePage(1)
	return m, cmd
}

func handleJumpPageKey(m Model, key string) (Model, tea.Cmd) {
	cmd := m.jumpToPage(int(key[0]-'1'))
	return m, cmd
}

func handleFocusKey(m Model, _ string) (Model, tea.Cmd) {
	cmd := m.toggleFocus()
	return m, cmd
}

func handleReloadKey(m Model, _ string) (Model, tea.Cmd) {
	cmd := m.loadPage(m.repos.Snapshot().Page)
	return m, cmd
}

func handleLogoutKey(m Model, _ string) (Model, tea.Cmd) {
	cmd := m.logout()
	return m, cmd
}

func handleCommandKey(m Model, _ string) (Model, tea.Cmd) {
	m.commandBar.Activate()
	return m, nil
}

func handleQuitKey(m Model, _ string) (Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}
