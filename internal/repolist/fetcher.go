// Package repolist holds the paginated repository listing shown after login.
package repolist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/johanforsgren/repodeck/internal/domain"
	"github.com/johanforsgren/repodeck/internal/logger"
	"github.com/johanforsgren/repodeck/internal/notify"
	"github.com/johanforsgren/repodeck/internal/provider/common"
)

const MsgFetchFailed = "Failed to fetch data"

type Outcome int

const (
	OutcomeLoaded Outcome = iota
	OutcomeFailed
	OutcomeUnauthorized
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoaded:
		return "loaded"
	case OutcomeFailed:
		return "failed"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeStale:
		return "stale"
	}
	return "unknown"
}

// Ticket identifies one page request. Only the result of the latest ticket is applied.
type Ticket struct {
	Page int
	seq  uint64
}

type Result struct {
	Ticket Ticket
	Page   *domain.RepoPage
	Err    error
}

type State struct {
	Page       int
	Records    []domain.RepositoryRecord
	TotalCount int
	Loading    bool
	Focused    string
}

type Fetcher struct {
	source   domain.RepoSource
	notifier notify.Notifier

	mu         sync.RWMutex
	seq        uint64
	page       int
	records    []domain.RepositoryRecord
	totalCount int
	loading    bool
	focused    string
}

func NewFetcher(source domain.RepoSource, notifier notify.Notifier) *Fetcher {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Fetcher{source: source, notifier: notifier}
}

// Begin records page as the selected page and issues a ticket for it.
// Any ticket issued earlier becomes stale.
func (f *Fetcher) Begin(page int) Ticket {
	if page < 0 {
		page = 0
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.page = page
	f.loading = true
	f.focused = ""
	return Ticket{Page: page, seq: f.seq}
}

func (f *Fetcher) Fetch(ctx context.Context, ticket Ticket) Result {
	page, err := f.source.ListRepositories(ctx, domain.PageRequest{Index: ticket.Page, Size: domain.PageSize})
	return Result{Ticket: ticket, Page: page, Err: err}
}

// Load is Begin followed by Fetch and Apply.
func (f *Fetcher) Load(ctx context.Context, page int) Outcome {
	return f.Apply(f.Fetch(ctx, f.Begin(page)))
}

// Apply folds a fetch result into the state. Records and total count are
// replaced together; failures leave the previous listing in place.
func (f *Fetcher) Apply(result Result) Outcome {
	f.mu.Lock()
	if result.Ticket.seq != f.seq {
		f.mu.Unlock()
		logger.Log("Repos: discarding stale result for page %d", result.Ticket.Page)
		return OutcomeStale
	}
	f.loading = false

	switch {
	case errors.Is(result.Err, common.ErrUnauthorized):
		f.mu.Unlock()
		logger.Log("Repos: page %d unauthorized", result.Ticket.Page)
		return OutcomeUnauthorized
	case result.Err != nil:
		f.mu.Unlock()
		target := fmt.Sprintf("page=%d", result.Ticket.Page)
		if code := common.StatusCode(result.Err); code != 0 {
			target += fmt.Sprintf(" status=%d", code)
		}
		logger.LogError("FETCH_REPOS", target, result.Err)
		f.notifier.Notify(notify.LevelError, MsgFetchFailed)
		return OutcomeFailed
	case result.Page == nil:
		f.mu.Unlock()
		f.notifier.Notify(notify.LevelError, MsgFetchFailed)
		return OutcomeFailed
	}

	records := make([]domain.RepositoryRecord, len(result.Page.Content))
	copy(records, result.Page.Content)
	f.records = records
	f.totalCount = result.Page.TotalCount
	f.mu.Unlock()
	return OutcomeLoaded
}

func (f *Fetcher) Snapshot() State {
	f.mu.RLock()
	defer f.mu.RUnlock()

	records := make([]domain.RepositoryRecord, len(f.records))
	copy(records, f.records)
	return State{
		Page:       f.page,
		Records:    records,
		TotalCount: f.totalCount,
		Loading:    f.loading,
		Focused:    f.focused,
	}
}

func (f *Fetcher) PageCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return domain.PageCount(f.totalCount, domain.PageSize)
}

// ToggleFocus focuses fullName, or clears the focus when it is already focused.
// It returns the name now focused.
func (f *Fetcher) ToggleFocus(fullName string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.focused == fullName {
		f.focused = ""
	} else {
		f.focused = fullName
	}
	return f.focused
}

// Reset drops the listing and invalidates any fetch still in flight.
func (f *Fetcher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.page = 0
	f.records = nil
	f.totalCount = 0
	f.loading = false
	f.focused = ""
}
