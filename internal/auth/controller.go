// Package auth drives the login, registration and MFA steps against the
// remote API and moves the session between phases.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/johanforsgren/repodeck/internal/domain"
	"github.com/johanforsgren/repodeck/internal/logger"
	"github.com/johanforsgren/repodeck/internal/notify"
	"github.com/johanforsgren/repodeck/internal/session"
)

const (
	MsgRegistered         = "Registration successful, please log in"
	MsgRegistrationFailed = "Registration failed"
	MsgLoginFailed        = "Login failed"
	MsgInvalidCode        = "Invalid verification code"
)

var ErrMissingFields = errors.New("email and password are required")

type Backend interface {
	Register(ctx context.Context, creds domain.Credentials) error
	Login(ctx context.Context, creds domain.Credentials) error
	VerifyMFA(ctx context.Context, challenge domain.MFAChallenge) (domain.Session, error)
	Logout(ctx context.Context) error
}

type Controller struct {
	backend  Backend
	session  *session.Context
	notifier notify.Notifier

	mu           sync.Mutex
	mode         domain.AuthMode
	pendingEmail string
}

func NewController(backend Backend, sess *session.Context, notifier notify.Notifier) *Controller {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Controller{
		backend:  backend,
		session:  sess,
		notifier: notifier,
		mode:     domain.AuthModeLogin,
	}
}

func (c *Controller) Mode() domain.AuthMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) SetMode(mode domain.AuthMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
}

func (c *Controller) ToggleMode() domain.AuthMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == domain.AuthModeLogin {
		c.mode = domain.AuthModeRegister
	} else {
		c.mode = domain.AuthModeLogin
	}
	return c.mode
}

// PendingEmail is the address that passed the password step and awaits MFA.
func (c *Controller) PendingEmail() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingEmail
}

// Submit runs Login or Register depending on the current mode.
func (c *Controller) Submit(ctx context.Context, email, password string) error {
	if c.Mode() == domain.AuthModeRegister {
		return c.Register(ctx, email, password)
	}
	return c.Login(ctx, email, password)
}

func (c *Controller) Register(ctx context.Context, email, password string) error {
	creds, err := credentials(email, password)
	if err != nil {
		c.notifier.Notify(notify.LevelError, MsgRegistrationFailed)
		return err
	}

	if err := c.backend.Register(ctx, creds); err != nil {
		logger.LogError("REGISTER", creds.Email, err)
		c.notifier.Notify(notify.LevelError, MsgRegistrationFailed)
		return err
	}

	logger.Log("Auth: registered %s", creds.Email)
	c.SetMode(domain.AuthModeLogin)
	c.notifier.Notify(notify.LevelInfo, MsgRegistered)
	return nil
}

// Login checks the password. On success the session moves to the MFA step;
// no tokens are issued yet.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	creds, err := credentials(email, password)
	if err != nil {
		c.notifier.Notify(notify.LevelError, MsgLoginFailed)
		return err
	}

	if err := c.backend.Login(ctx, creds); err != nil {
		logger.LogError("LOGIN", creds.Email, err)
		c.notifier.Notify(notify.LevelError, MsgLoginFailed)
		return err
	}

	if err := c.session.Advance(domain.PhaseMFA); err != nil {
		logger.LogError("LOGIN", creds.Email, err)
		return err
	}

	c.mu.Lock()
	c.pendingEmail = creds.Email
	c.mu.Unlock()

	logger.Log("Auth: password accepted for %s, awaiting MFA", creds.Email)
	return nil
}

// VerifyMFA exchanges the one-time code for a token pair and enters repos.
func (c *Controller) VerifyMFA(ctx context.Context, email, code string) error {
	challenge := domain.MFAChallenge{
		Email:   strings.TrimSpace(email),
		MFACode: strings.TrimSpace(code),
	}

	tokens, err := c.backend.VerifyMFA(ctx, challenge)
	if err != nil {
		logger.LogError("VERIFY_MFA", challenge.Email, err)
		c.notifier.Notify(notify.LevelError, MsgInvalidCode)
		return err
	}

	if err := c.session.Establish(tokens); err != nil {
		logger.LogError("VERIFY_MFA", challenge.Email, err)
		c.notifier.Notify(notify.LevelError, MsgInvalidCode)
		return err
	}

	c.mu.Lock()
	c.pendingEmail = ""
	c.mu.Unlock()

	logger.Log("Auth: %s signed in", challenge.Email)
	return nil
}

// CancelMFA abandons the code step and returns to the credentials form.
func (c *Controller) CancelMFA() error {
	if err := c.session.Advance(domain.PhaseAuth); err != nil {
		return err
	}
	c.mu.Lock()
	c.pendingEmail = ""
	c.mu.Unlock()
	return nil
}

// Logout tells the API about the logout and then clears the session no
// matter how the call went. The returned error only reports local failures.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.backend.Logout(ctx); err != nil {
		logger.LogError("LOGOUT", "api", err)
	}

	c.mu.Lock()
	c.pendingEmail = ""
	c.mode = domain.AuthModeLogin
	c.mu.Unlock()

	if err := c.session.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func credentials(email, password string) (domain.Credentials, error) {
	creds := domain.Credentials{Email: strings.TrimSpace(email), Password: password}
	if creds.Email == "" || creds.Password == "" {
		return domain.Credentials{}, ErrMissingFields
	}
	return creds, nil
}
