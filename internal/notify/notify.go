// Package notify models transient user-facing messages with an explicit expiry.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a notice stays on screen.
const DefaultTTL = 3 * time.Second

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "info"
}

type Notice struct {
	ID       uuid.UUID
	Level    Level
	Text     string
	PostedAt time.Time
	TTL      time.Duration
}

func New(level Level, text string) Notice {
	return Notice{
		ID:       uuid.New(),
		Level:    level,
		Text:     text,
		PostedAt: time.Now(),
		TTL:      DefaultTTL,
	}
}

func (n Notice) ExpiresAt() time.Time {
	return n.PostedAt.Add(n.TTL)
}

func (n Notice) Expired(now time.Time) bool {
	return !now.Before(n.ExpiresAt())
}

func (n Notice) IsError() bool {
	return n.Level == LevelError
}

type Notifier interface {
	Notify(level Level, text string)
}

// Func adapts a plain function to Notifier.
type Func func(level Level, text string)

func (f Func) Notify(level Level, text string) {
	f(level, text)
}

// Discard drops every notice.
var Discard Notifier = Func(func(Level, string) {})

// Queue hands notices from background work to the UI loop. Notify never
// blocks; when the buffer is full the notice is dropped.
type Queue struct {
	ch chan Notice
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 16
	}
	return &Queue{ch: make(chan Notice, size)}
}

func (q *Queue) Notify(level Level, text string) {
	q.Post(New(level, text))
}

func (q *Queue) Post(n Notice) {
	select {
	case q.ch <- n:
	default:
	}
}

func (q *Queue) C() <-chan Notice {
	return q.ch
}

// Board holds the notice currently on display.
type Board struct {
	mu      sync.Mutex
	current *Notice
}

// Show puts n on display. PostedAt is reset to now so the TTL counts from
// display rather than from when the notice was queued.
func (b *Board) Show(n Notice) Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	n.PostedAt = time.Now()
	b.current = &n
	return n
}

// Expire clears the displayed notice only if it is still the one identified by id.
func (b *Board) Expire(id uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil || b.current.ID != id {
		return false
	}
	b.current = nil
	return true
}

func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
}

// Current returns the displayed notice unless it has expired at now.
func (b *Board) Current(now time.Time) (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil || b.current.Expired(now) {
		return Notice{}, false
	}
	return *b.current, true
}
