package repolist

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/johanforsgren/repodeck/internal/domain"
	"github.com/johanforsgren/repodeck/internal/logger"
	"github.com/johanforsgren/repodeck/internal/notify"
	"github.com/johanforsgren/repodeck/internal/provider/common"
)

type mockSource struct {
	pages    map[int]*domain.RepoPage
	err      error
	requests []domain.PageRequest
}

func (m *mockSource) ListRepositories(_ context.Context, req domain.PageRequest) (*domain.RepoPage, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.pages[req.Index], nil
}

func makePage(page, count, total int) *domain.RepoPage {
	content := make([]domain.RepositoryRecord, count)
	for i := range content {
		content[i] = domain.RepositoryRecord{FullName: fmt.Sprintf("owner/p%d-r%d", page, i)}
	}
	return &domain.RepoPage{Content: content, TotalCount: total}
}

func recordNotices(texts *[]string) notify.Notifier {
	return notify.Func(func(_ notify.Level, text string) {
		*texts = append(*texts, text)
	})
}

func TestLoadReplacesRecordsAndTotal(t *testing.T) {
	source := &mockSource{pages: map[int]*domain.RepoPage{2: makePage(2, 5, 25)}}
	f := NewFetcher(source, nil)

	if got := f.Load(context.Background(), 2); got != OutcomeLoaded {
		t.Fatalf("Load() = %s, want loaded", got)
	}

	if len(source.requests) != 1 || source.requests[0] != (domain.PageRequest{Index: 2, Size: 10}) {
		t.Errorf("unexpected requests %+v", source.requests)
	}

	state := f.Snapshot()
	if state.Page != 2 || state.TotalCount != 25 || len(state.Records) != 5 || state.Loading {
		t.Errorf("unexpected state %+v", state)
	}
	if f.PageCount() != 3 {
		t.Errorf("PageCount() = %d, want 3", f.PageCount())
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{0, 0},
		{1, 1},
		{10, 1},
		{11, 2},
		{25, 3},
	}

	for _, tt := range tests {
		source := &mockSource{pages: map[int]*domain.RepoPage{0: makePage(0, 0, tt.total)}}
		f := NewFetcher(source, nil)
		f.Load(context.Background(), 0)
		if got := f.PageCount(); got != tt.want {
			t.Errorf("PageCount() with total %d = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestFailureKeepsPreviousListing(t *testing.T) {
	source := &mockSource{pages: map[int]*domain.RepoPage{0: makePage(0, 10, 25)}}
	var notices []string
	f := NewFetcher(source, recordNotices(&notices))
	f.Load(context.Background(), 0)

	source.err = common.NewStatusError("list repositories", 500)
	if got := f.Load(context.Background(), 1); got != OutcomeFailed {
		t.Fatalf("Load() = %s, want failed", got)
	}

	state := f.Snapshot()
	if len(state.Records) != 10 || state.Records[0].FullName != "owner/p0-r0" || state.TotalCount != 25 {
		t.Errorf("previous listing lost: %+v", state)
	}
	if state.Loading {
		t.Error("loading should be cleared after a failure")
	}
	if len(notices) != 1 || notices[0] != MsgFetchFailed {
		t.Errorf("unexpected notices %v", notices)
	}
}

func TestFailureLogsPageAndStatus(t *testing.T) {
	logger.Reset()
	source := &mockSource{err: common.NewStatusError("list repositories", 503)}
	f := NewFetcher(source, nil)
	f.Load(context.Background(), 4)

	for _, entry := range logger.GetLogs() {
		line := entry.String()
		if strings.Contains(line, "FETCH_REPOS") {
			if !strings.Contains(line, "page=4 status=503") {
				t.Errorf("log entry %q lacks page and status", line)
			}
			return
		}
	}
	t.Errorf("no FETCH_REPOS entry in %v", logger.GetLogs())
}

func TestUnauthorizedSkipsFailureNotice(t *testing.T) {
	source := &mockSource{err: fmt.Errorf("wrapped: %w", common.ErrUnauthorized)}
	var notices []string
	f := NewFetcher(source, recordNotices(&notices))

	if got := f.Load(context.Background(), 0); got != OutcomeUnauthorized {
		t.Fatalf("Load() = %s, want unauthorized", got)
	}
	if len(notices) != 0 {
		t.Errorf("unexpected notices %v", notices)
	}
}

func TestStaleResultIsDiscarded(t *testing.T) {
	source := &mockSource{pages: map[int]*domain.RepoPage{
		0: makePage(0, 10, 30),
		1: makePage(1, 10, 30),
	}}
	f := NewFetcher(source, nil)
	ctx := context.Background()

	first := f.Begin(0)
	second := f.Begin(1)

	slow := f.Fetch(ctx, first)
	fast := f.Fetch(ctx, second)

	if got := f.Apply(fast); got != OutcomeLoaded {
		t.Fatalf("Apply(fast) = %s, want loaded", got)
	}
	if got := f.Apply(slow); got != OutcomeStale {
		t.Fatalf("Apply(slow) = %s, want stale", got)
	}

	state := f.Snapshot()
	if state.Page != 1 || state.Records[0].FullName != "owner/p1-r0" {
		t.Errorf("stale result overwrote the listing: %+v", state)
	}
}

func TestBeginClearsFocusAndMarksLoading(t *testing.T) {
	f := NewFetcher(&mockSource{}, nil)
	f.ToggleFocus("owner/repo")

	f.Begin(3)
	state := f.Snapshot()
	if !state.Loading || state.Focused != "" || state.Page != 3 {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestToggleFocus(t *testing.T) {
	f := NewFetcher(&mockSource{}, nil)

	if got := f.ToggleFocus("a/b"); got != "a/b" {
		t.Errorf("ToggleFocus() = %q, want a/b", got)
	}
	if got := f.ToggleFocus("c/d"); got != "c/d" {
		t.Errorf("ToggleFocus() = %q, want c/d", got)
	}
	if got := f.ToggleFocus("c/d"); got != "" {
		t.Errorf("ToggleFocus() = %q, want empty", got)
	}
}

func TestResetInvalidatesInFlightFetch(t *testing.T) {
	source := &mockSource{pages: map[int]*domain.RepoPage{2: makePage(2, 10, 40)}}
	f := NewFetcher(source, nil)

	ticket := f.Begin(2)
	result := f.Fetch(context.Background(), ticket)
	f.Reset()

	if got := f.Apply(result); got != OutcomeStale {
		t.Errorf("Apply() after Reset = %s, want stale", got)
	}
	state := f.Snapshot()
	if state.Page != 0 || len(state.Records) != 0 || state.TotalCount != 0 || state.Loading {
		t.Errorf("unexpected state after reset %+v", state)
	}
}

func TestNilPageIsFailure(t *testing.T) {
	var notices []string
	f := NewFetcher(&mockSource{pages: map[int]*domain.RepoPage{}}, recordNotices(&notices))

	if got := f.Load(context.Background(), 4); got != OutcomeFailed {
		t.Errorf("Load() = %s, want failed", got)
	}
	if len(notices) != 1 {
		t.Errorf("expected one failure notice, got %v", notices)
	}
}
