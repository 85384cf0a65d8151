package notify

import (
	"testing"
	"time"
)

func TestNoticeExpiresAfterTTL(t *testing.T) {
	n := New(LevelError, "Login failed")

	if n.TTL != 3000*time.Millisecond {
		t.Fatalf("expected 3000ms TTL, got %v", n.TTL)
	}
	if n.Expired(n.PostedAt.Add(2999 * time.Millisecond)) {
		t.Error("notice expired too early")
	}
	if !n.Expired(n.PostedAt.Add(3000 * time.Millisecond)) {
		t.Error("notice should expire at exactly 3000ms")
	}
}

func TestBoardExpireOnlyMatchingNotice(t *testing.T) {
	var b Board

	first := New(LevelError, "first")
	second := New(LevelError, "second")

	b.Show(first)
	shown := b.Show(second)

	if b.Expire(first.ID) {
		t.Error("stale timer must not clear a newer notice")
	}
	if got, ok := b.Current(shown.PostedAt); !ok || got.Text != "second" {
		t.Errorf("expected second notice on display, got %+v (ok=%v)", got, ok)
	}
	if !b.Expire(second.ID) {
		t.Error("expected matching expiry to clear the notice")
	}
	if _, ok := b.Current(time.Now()); ok {
		t.Error("board should be empty")
	}
}

func TestBoardCurrentHidesExpired(t *testing.T) {
	var b Board
	n := b.Show(New(LevelInfo, "hello"))

	if _, ok := b.Current(n.PostedAt.Add(time.Second)); !ok {
		t.Error("expected notice to be visible")
	}
	if _, ok := b.Current(n.ExpiresAt()); ok {
		t.Error("expected notice to be hidden after expiry")
	}
}

func TestBoardShowCountsFromDisplay(t *testing.T) {
	var b Board
	queued := New(LevelInfo, "waited in the queue")
	queued.PostedAt = time.Now().Add(-10 * time.Second)

	shown := b.Show(queued)
	if !shown.PostedAt.After(queued.PostedAt) {
		t.Fatalf("PostedAt not reset on display: %v", shown.PostedAt)
	}
	if shown.ID != queued.ID || shown.TTL != queued.TTL {
		t.Errorf("Show changed identity or TTL: %+v", shown)
	}
	if _, ok := b.Current(time.Now()); !ok {
		t.Error("a notice that sat in the queue must still be visible once shown")
	}
}

func TestQueueNeverBlocks(t *testing.T) {
	q := NewQueue(1)
	q.Notify(LevelInfo, "one")
	q.Notify(LevelInfo, "two")

	select {
	case n := <-q.C():
		if n.Text != "one" {
			t.Errorf("expected first notice, got %q", n.Text)
		}
	default:
		t.Fatal("expected a queued notice")
	}

	select {
	case n := <-q.C():
		t.Errorf("expected overflow to be dropped, got %q", n.Text)
	default:
	}
}

func TestFuncAdapter(t *testing.T) {
	var got string
	var n Notifier = Func(func(_ Level, text string) { got = text })
	n.Notify(LevelError, "boom")
	if got != "boom" {
		t.Errorf("expected adapter to forward text, got %q", got)
	}
}
