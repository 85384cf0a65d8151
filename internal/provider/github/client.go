package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/johanforsgren/repodeck/internal/provider/common"
)

type Client struct {
	client *github.Client
}

// NewClient builds a GitHub REST client. An empty token gives anonymous
// access with the lower rate limit.
func NewClient(token string) *Client {
	transport := http.RoundTripper(common.NewLoggingTransport(nil))
	if token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   transport,
		}
	}

	return &Client{
		client: github.NewClient(&http.Client{Transport: transport}),
	}
}

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise instance.
func (c *Client) WithBaseURL(baseURL string) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub base URL: %w", err)
	}
	c.client.BaseURL = parsed
	return c, nil
}

func (c *Client) GetRepository(ctx context.Context, owner, name string) (*github.Repository, error) {
	repo, _, err := c.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	return repo, nil
}
