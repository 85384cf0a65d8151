package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/johanforsgren/repodeck/internal/domain"
	"github.com/johanforsgren/repodeck/internal/logger"
	"github.com/johanforsgren/repodeck/internal/notify"
	"github.com/johanforsgren/repodeck/internal/provider/common"
)

const sessionExpiredMessage = "Session timed out, please log in again"

// Do is AuthFetch with the retry allowed.
func (c *Client) Do(ctx context.Context, req Request) (*http.Response, error) {
	return c.AuthFetch(ctx, req, true)
}

// AuthFetch sends req with the current access token as a bearer credential.
// On a 401, when allowRetry is set and a refresh token is stored, it
// refreshes the token pair once and replays req exactly once more without
// further retries. A rejected refresh logs the session out and the original
// 401 response is returned.
func (c *Client) AuthFetch(ctx context.Context, req Request, allowRetry bool) (*http.Response, error) {
	return c.authFetch(ctx, req, allowRetry, uuid.NewString())
}

func (c *Client) authFetch(ctx context.Context, req Request, allowRetry bool, requestID string) (*http.Response, error) {
	sent := c.session.Tokens()

	resp, err := c.sendWithToken(ctx, req, sent.AccessToken, requestID)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || !allowRetry {
		return resp, nil
	}

	current := c.session.Tokens()
	if !current.HasRefreshToken() {
		return resp, nil
	}

	// Another call already rotated the pair while this one was in flight.
	if current.IsAuthenticated() && current.AccessToken != sent.AccessToken {
		logger.Log("AuthFetch: token rotated concurrently, replaying %s %s [%s]", req.Method, req.Path, requestID)
		drain(resp)
		return c.authFetch(ctx, req, false, requestID)
	}

	logger.Log("AuthFetch: 401 on %s %s, refreshing [%s]", req.Method, req.Path, requestID)
	if _, err := c.refreshShared(ctx, current.RefreshToken, requestID); err != nil {
		if errors.Is(err, common.ErrRefreshRejected) {
			return resp, nil
		}
		drain(resp)
		return nil, err
	}

	drain(resp)
	return c.authFetch(ctx, req, false, requestID)
}

func (c *Client) sendWithToken(ctx context.Context, req Request, accessToken, requestID string) (*http.Response, error) {
	httpReq, err := c.newHTTPRequest(ctx, req, requestID)
	if err != nil {
		return nil, err
	}
	if accessToken != "" {
		token := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
		token.SetAuthHeader(httpReq)
	}
	return c.httpClient.Do(httpReq)
}

// refreshShared runs one refresh per refresh token no matter how many callers
// hit a 401 at the same time. The winner applies the outcome to the session.
// The refresh itself is detached from ctx: a caller that gives up returns
// ctx.Err() while the others still receive the result.
func (c *Client) refreshShared(ctx context.Context, refreshToken, requestID string) (domain.Session, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.refreshes.DoChan(refreshToken, func() (any, error) {
		return c.refresh(detached, refreshToken, requestID)
	})

	select {
	case res := <-ch:
		if res.Shared {
			logger.Log("AuthFetch: joined in-flight refresh [%s]", requestID)
		}
		if res.Err != nil {
			return domain.Session{}, res.Err
		}
		return res.Val.(domain.Session), nil
	case <-ctx.Done():
		logger.Log("AuthFetch: caller cancelled while refreshing [%s]", requestID)
		return domain.Session{}, ctx.Err()
	}
}

func (c *Client) refresh(ctx context.Context, refreshToken, requestID string) (domain.Session, error) {
	if current := c.session.Tokens(); current.RefreshToken != refreshToken {
		if current.IsAuthenticated() {
			return current, nil
		}
		return domain.Session{}, common.ErrRefreshRejected
	}

	tokens, err := c.Refresh(ctx, refreshToken, requestID)
	if err != nil {
		if errors.Is(err, common.ErrRefreshRejected) {
			c.forceLogout(err)
		}
		return domain.Session{}, err
	}

	if err := c.session.Rotate(tokens); err != nil {
		logger.LogError("ROTATE", requestID, err)
		if !c.session.IsAuthenticated() {
			// Logged out while the refresh was in flight.
			return domain.Session{}, common.ErrRefreshRejected
		}
		// The server has spent refreshToken, so the stored pair is unusable.
		c.forceLogout(err)
		return domain.Session{}, errors.Join(common.ErrRefreshRejected, err)
	}
	return tokens, nil
}

func (c *Client) forceLogout(cause error) {
	logger.LogError("REFRESH", "session", cause)
	if err := c.session.Logout(); err != nil {
		logger.LogError("FORCED_LOGOUT", "session", err)
	}
	c.notifier.Notify(notify.LevelError, sessionExpiredMessage)
}
