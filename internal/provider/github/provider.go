// Package github looks up extra details for a repository on GitHub.
package github

import (
	"context"
	"sync"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/johanforsgren/repodeck/internal/domain"
	"github.com/johanforsgren/repodeck/internal/logger"
	"github.com/johanforsgren/repodeck/internal/provider/common"
)

const DefaultCacheTTL = 5 * time.Minute

type cachedDetails struct {
	details  domain.RepoDetails
	cachedAt time.Time
}

type Provider struct {
	client   *Client
	cacheTTL time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]*cachedDetails
}

func NewProvider(client *Client) *Provider {
	return &Provider{
		client:   client,
		cacheTTL: DefaultCacheTTL,
		now:      time.Now,
		cache:    make(map[string]*cachedDetails),
	}
}

// GetDetails returns the GitHub view of fullName ("owner/name"). Answers are
// cached per name for the cache TTL.
func (p *Provider) GetDetails(ctx context.Context, fullName string) (*domain.RepoDetails, error) {
	if details, ok := p.cached(fullName); ok {
		return &details, nil
	}

	owner, name, err := common.ParseRepositoryName(fullName)
	if err != nil {
		logger.LogError("GITHUB_DETAILS", fullName, err)
		return nil, err
	}

	logger.Log("GitHub: fetching details for %s", fullName)
	repo, err := p.client.GetRepository(ctx, owner, name)
	if err != nil {
		logger.LogError("GITHUB_DETAILS", fullName, err)
		return nil, err
	}

	details := convertRepository(fullName, repo)

	p.mu.Lock()
	p.cache[fullName] = &cachedDetails{details: details, cachedAt: p.now()}
	p.mu.Unlock()

	return &details, nil
}

func (p *Provider) cached(fullName string) (domain.RepoDetails, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.cache[fullName]
	if !ok {
		return domain.RepoDetails{}, false
	}
	if p.now().Sub(entry.cachedAt) >= p.cacheTTL {
		delete(p.cache, fullName)
		return domain.RepoDetails{}, false
	}
	return entry.details, true
}

func convertRepository(fullName string, repo *github.Repository) domain.RepoDetails {
	details := domain.RepoDetails{
		FullName:      fullName,
		Forks:         repo.GetForksCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
		Watchers:      repo.GetSubscribersCount(),
		Topics:        repo.Topics,
		DefaultBranch: repo.GetDefaultBranch(),
		Homepage:      repo.GetHomepage(),
		PushedAt:      repo.GetPushedAt().Time,
	}
	if repo.GetFullName() != "" {
		details.FullName = repo.GetFullName()
	}
	if repo.License != nil {
		details.License = common.Deref(repo.License.SPDXID)
		if details.License == "" {
			details.License = repo.License.GetName()
		}
	}
	return details
}
