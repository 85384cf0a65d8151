package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/johanforsgren/repodeck/internal/domain"
	"github.com/johanforsgren/repodeck/internal/logger"
	"github.com/johanforsgren/repodeck/internal/provider/common"
)

// ListRepositories fetches one page of trending repositories. A 401 that
// survives the refresh-and-retry is reported as common.ErrUnauthorized.
func (c *Client) ListRepositories(ctx context.Context, page domain.PageRequest) (*domain.RepoPage, error) {
	size := page.Size
	if size <= 0 {
		size = domain.PageSize
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page.Index))
	query.Set("size", strconv.Itoa(size))

	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: pathRepos, Query: query})
	if err != nil {
		logger.LogError("LIST_REPOS", fmt.Sprintf("page=%d", page.Index), err)
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, common.ErrUnauthorized
	default:
		return nil, common.NewStatusError("list repositories", resp.StatusCode)
	}

	var result domain.RepoPage
	if err := decodeJSON(resp, &result); err != nil {
		logger.LogError("LIST_REPOS", fmt.Sprintf("page=%d", page.Index), err)
		return nil, err
	}
	if result.Content == nil {
		result.Content = []domain.RepositoryRecord{}
	}

	logger.Log("API: page %d returned %d repositories (total %d)", page.Index, len(result.Content), result.TotalCount)
	return &result, nil
}
