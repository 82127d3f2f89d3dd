package dispatch

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
)

// recordingConn captures envelopes written to a session.
type recordingConn struct {
	mu     sync.Mutex
	sent   []Envelope
	err    error
	closed bool
}

func (c *recordingConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, v.(Envelope))
	return nil
}

func (c *recordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingConn) envelopes() []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Envelope(nil), c.sent...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHub_SendReachesEverySessionOfUser(t *testing.T) {
	t.Parallel()

	hub := NewHub(discardLogger())
	phone := &recordingConn{}
	laptop := &recordingConn{}
	hub.Add("user-1", phone)
	hub.Add("user-1", laptop)
	hub.Add("user-2", &recordingConn{})

	delivered := hub.Send("user-1", Envelope{Event: "receive-bid"})
	if delivered != 2 {
		t.Fatalf("expected 2 deliveries, got %d", delivered)
	}
	if len(phone.envelopes()) != 1 || len(laptop.envelopes()) != 1 {
		t.Error("expected both sessions to receive the envelope")
	}
}

func TestHub_SendToUnknownUserDeliversNothing(t *testing.T) {
	t.Parallel()

	hub := NewHub(discardLogger())
	if delivered := hub.Send("nobody", Envelope{Event: "receive-bid"}); delivered != 0 {
		t.Fatalf("expected 0 deliveries, got %d", delivered)
	}
}

func TestHub_FailedWriteDropsOnlyThatSession(t *testing.T) {
	t.Parallel()

	hub := NewHub(discardLogger())
	broken := &recordingConn{err: errors.New("broken pipe")}
	healthy := &recordingConn{}
	hub.Add("user-1", broken)
	hub.Add("user-1", healthy)

	delivered := hub.Send("user-1", Envelope{Event: "ride-started"})
	if delivered != 1 {
		t.Fatalf("expected 1 delivery, got %d", delivered)
	}
	if !broken.closed {
		t.Error("expected the failed session to be closed")
	}
	if hub.SessionCount() != 1 {
		t.Errorf("expected 1 remaining session, got %d", hub.SessionCount())
	}
}

func TestHub_RemoveIsIdempotent(t *testing.T) {
	t.Parallel()

	hub := NewHub(discardLogger())
	s := hub.Add("user-1", &recordingConn{})
	hub.Remove(s)
	hub.Remove(s)

	if hub.Connected("user-1") {
		t.Error("expected user disconnected")
	}
	if hub.SessionCount() != 0 {
		t.Errorf("expected 0 sessions, got %d", hub.SessionCount())
	}
}
