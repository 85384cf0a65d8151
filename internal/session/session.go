// Package session owns the token pair and the current application phase.
// All token and phase mutations go through a Context so the phase invariants
// hold no matter which component triggers the change.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/johanforsgren/repodeck/internal/domain"
	"github.com/johanforsgren/repodeck/internal/logger"
)

var (
	ErrNotAuthenticated  = errors.New("access token required")
	ErrInvalidTransition = errors.New("invalid phase transition")
)

type Context struct {
	mu        sync.RWMutex
	store     domain.SessionStore
	tokens    domain.Session
	phase     domain.Phase
	observers []func(domain.Phase)
}

// New loads the stored tokens. A stored access token starts the context in
// the repos phase, anything else in auth.
func New(store domain.SessionStore) (*Context, error) {
	tokens, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	phase := domain.PhaseAuth
	if tokens.IsAuthenticated() {
		phase = domain.PhaseRepos
	}

	logger.Log("Session: starting in phase %s", phase)
	return &Context{
		store:  store,
		tokens: tokens,
		phase:  phase,
	}, nil
}

func (c *Context) Tokens() domain.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

func (c *Context) Phase() domain.Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

func (c *Context) IsAuthenticated() bool {
	return c.Tokens().IsAuthenticated()
}

// Subscribe registers fn to be called after every phase change.
func (c *Context) Subscribe(fn func(domain.Phase)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Advance moves to the given phase. Leaving repos is only possible through Logout.
func (c *Context) Advance(to domain.Phase) error {
	c.mu.Lock()
	if err := c.checkTransition(to); err != nil {
		c.mu.Unlock()
		return err
	}
	changed := c.phase != to
	c.phase = to
	observers := c.snapshotObservers()
	c.mu.Unlock()

	if changed {
		logger.Log("Session: phase -> %s", to)
		notify(observers, to)
	}
	return nil
}

func (c *Context) checkTransition(to domain.Phase) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidTransition, to)
	}
	if to == c.phase {
		return nil
	}
	if to == domain.PhaseRepos && !c.tokens.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	switch {
	case c.phase == domain.PhaseAuth && to == domain.PhaseMFA,
		c.phase == domain.PhaseMFA && to == domain.PhaseRepos,
		c.phase == domain.PhaseMFA && to == domain.PhaseAuth:
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.phase, to)
}

// Establish persists a freshly issued token pair and enters repos.
func (c *Context) Establish(tokens domain.Session) error {
	if !tokens.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	c.mu.Lock()
	if c.phase != domain.PhaseMFA && c.phase != domain.PhaseRepos {
		current := c.phase
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot establish session from %s", ErrInvalidTransition, current)
	}
	if err := c.store.Save(tokens); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to persist session: %w", err)
	}
	c.tokens = tokens
	changed := c.phase != domain.PhaseRepos
	c.phase = domain.PhaseRepos
	observers := c.snapshotObservers()
	c.mu.Unlock()

	if changed {
		logger.Log("Session: established, phase -> %s", domain.PhaseRepos)
		notify(observers, domain.PhaseRepos)
	}
	return nil
}

// Rotate replaces both tokens after a successful refresh. The phase is
// unchanged. A refresh that completes after a logout is discarded.
func (c *Context) Rotate(tokens domain.Session) error {
	if !tokens.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokens == (domain.Session{}) {
		return ErrNotAuthenticated
	}

	if err := c.store.Save(tokens); err != nil {
		return fmt.Errorf("failed to persist refreshed session: %w", err)
	}
	c.tokens = tokens
	logger.Log("Session: tokens rotated")
	return nil
}

// Logout clears the tokens and returns to auth. The in-memory state is
// cleared even when the store fails; that error is returned for logging.
func (c *Context) Logout() error {
	c.mu.Lock()
	storeErr := c.store.Clear()
	c.tokens = domain.Session{}
	changed := c.phase != domain.PhaseAuth
	c.phase = domain.PhaseAuth
	observers := c.snapshotObservers()
	c.mu.Unlock()

	if storeErr != nil {
		logger.LogError("SESSION_CLEAR", "store", storeErr)
	}
	if changed {
		logger.Log("Session: logged out, phase -> %s", domain.PhaseAuth)
		notify(observers, domain.PhaseAuth)
	}
	return storeErr
}

func (c *Context) snapshotObservers() []func(domain.Phase) {
	out := make([]func(domain.Phase), len(c.observers))
	copy(out, c.observers)
	return out
}

func notify(observers []func(domain.Phase), phase domain.Phase) {
	for _, fn := range observers {
		fn(phase)
	}
}
