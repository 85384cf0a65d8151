package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/johanforsgren/repodeck/internal/domain"
	"github.com/johanforsgren/repodeck/internal/logger"
	"github.com/johanforsgren/repodeck/internal/provider/common"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (c *Client) Register(ctx context.Context, creds domain.Credentials) error {
	return c.expectOK(ctx, "register", pathRegister, creds)
}

// Login checks the credentials. Tokens are only issued by VerifyMFA.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) error {
	return c.expectOK(ctx, "login", pathLogin, creds)
}

func (c *Client) VerifyMFA(ctx context.Context, challenge domain.MFAChallenge) (domain.Session, error) {
	resp, err := c.postJSON(ctx, pathVerifyMFA, challenge, uuid.NewString())
	if err != nil {
		return domain.Session{}, fmt.Errorf("verify-mfa: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return domain.Session{}, common.NewStatusError("verify-mfa", resp.StatusCode)
	}

	var tokens domain.Session
	if err := decodeJSON(resp, &tokens); err != nil {
		return domain.Session{}, fmt.Errorf("verify-mfa: %w", err)
	}
	if !tokens.IsAuthenticated() {
		return domain.Session{}, fmt.Errorf("verify-mfa: response carried no access token")
	}
	return tokens, nil
}

// Refresh exchanges refreshToken for a new pair. Any answer other than a 200
// with an access token wraps common.ErrRefreshRejected; transport failures do not.
func (c *Client) Refresh(ctx context.Context, refreshToken, requestID string) (domain.Session, error) {
	resp, err := c.postJSON(ctx, pathRefresh, refreshRequest{RefreshToken: refreshToken}, requestID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("refresh: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return domain.Session{}, fmt.Errorf("%w: %w", common.ErrRefreshRejected, common.NewStatusError("refresh", resp.StatusCode))
	}

	var tokens domain.Session
	if err := decodeJSON(resp, &tokens); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %w", common.ErrRefreshRejected, err)
	}
	if !tokens.IsAuthenticated() {
		return domain.Session{}, fmt.Errorf("%w: response carried no access token", common.ErrRefreshRejected)
	}
	return tokens, nil
}

// Logout notifies the API through the authenticated wrapper. Only transport
// failures are reported; any status is accepted.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: pathLogout})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	logger.Log("API: logout answered %d", resp.StatusCode)
	drain(resp)
	return nil
}

func (c *Client) expectOK(ctx context.Context, op, path string, payload any) error {
	resp, err := c.postJSON(ctx, path, payload, uuid.NewString())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return common.NewStatusError(op, resp.StatusCode)
	}
	return nil
}
