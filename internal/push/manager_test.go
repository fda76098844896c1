package push

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type fakeSession struct {
	mu     sync.Mutex
	subs   map[string]chan Frame
	closed bool
}

func (s *fakeSession) Subscribe(dest string) (<-chan Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Frame, 4)
	s.subs[dest] = ch
	return ch, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) send(dest string, f Frame) {
	s.mu.Lock()
	ch := s.subs[dest]
	s.mu.Unlock()
	ch <- f
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSession) destinations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for d := range s.subs {
		out = append(out, d)
	}
	return out
}

type fakeTransport struct {
	mu       sync.Mutex
	failures int // connect attempts to fail before succeeding
	attempts int
	sessions chan *fakeSession
}

func newFakeTransport(failures int) *fakeTransport {
	return &fakeTransport{failures: failures, sessions: make(chan *fakeSession, 8)}
}

func (t *fakeTransport) Connect(ctx context.Context) (Session, error) {
	t.mu.Lock()
	t.attempts++
	fail := t.attempts <= t.failures
	t.mu.Unlock()
	if fail {
		return nil, errors.New("connection refused")
	}
	s := &fakeSession{subs: map[string]chan Frame{}}
	t.sessions <- s
	return s, nil
}

func (t *fakeTransport) attemptCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}

func waitSession(t *testing.T, tr *fakeTransport) *fakeSession {
	t.Helper()
	select {
	case s := <-tr.sessions:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session")
		return nil
	}
}

func waitEvent(t *testing.T, m *Manager) Event {
	t.Helper()
	select {
	case ev := <-m.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func waitState(t *testing.T, m *Manager, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %s, want %s", m.State(), want)
}

func TestTopicKey(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"Kim.Dev+jobs@Example.com", "kim_dev_jobs_example_com"},
		{"abc123", "abc123"},
		{"", ""},
		{"한글@x.io", "___x_io"},
	}
	for _, tt := range tests {
		if got := TopicKey(tt.email); got != tt.want {
			t.Errorf("TopicKey(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}

func TestDestinations(t *testing.T) {
	if got := Destinations(""); !reflect.DeepEqual(got, []string{UserQueue}) {
		t.Fatalf("Destinations(\"\") = %v, want user queue only", got)
	}
	want := []string{UserQueue, "/topic/notifications/a_b_c"}
	if got := Destinations("a@b.c"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Destinations = %v, want %v", got, want)
	}
}

func TestManager_DeliversFramesFromBothDestinations(t *testing.T) {
	tr := newFakeTransport(0)
	m := Start(Options{Transport: tr, Email: "kim@example.com", ReconnectDelay: 10 * time.Millisecond})
	t.Cleanup(m.Close)

	sess := waitSession(t, tr)
	waitState(t, m, StateConnected)
	if got := len(sess.destinations()); got != 2 {
		t.Fatalf("subscriptions = %v, want 2", sess.destinations())
	}

	topic := "/topic/notifications/kim_example_com"
	sess.send(UserQueue, Frame{Destination: UserQueue, Body: []byte(`{"title":"a"}`)})
	sess.send(topic, Frame{Destination: topic, Body: []byte(`{"title":"b"}`)})

	first := waitEvent(t, m)
	second := waitEvent(t, m)
	if first.ConnectionID == "" || first.ConnectionID != second.ConnectionID {
		t.Fatalf("connection ids = %q, %q; want equal and non-empty", first.ConnectionID, second.ConnectionID)
	}
	got := map[string]string{first.Destination: string(first.Body), second.Destination: string(second.Body)}
	want := map[string]string{UserQueue: `{"title":"a"}`, topic: `{"title":"b"}`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if first.ReceivedAt.IsZero() {
		t.Fatal("ReceivedAt not set")
	}
}

func TestManager_ReconnectsAfterDrop(t *testing.T) {
	tr := newFakeTransport(0)
	m := Start(Options{Transport: tr, ReconnectDelay: 10 * time.Millisecond})
	t.Cleanup(m.Close)

	first := waitSession(t, tr)
	waitState(t, m, StateConnected)
	first.send(UserQueue, Frame{Err: errors.New("connection reset")})

	second := waitSession(t, tr)
	if !first.isClosed() {
		t.Fatal("dropped session was not closed")
	}
	waitState(t, m, StateConnected)

	second.send(UserQueue, Frame{Destination: UserQueue, Body: []byte("x")})
	ev := waitEvent(t, m)
	if string(ev.Body) != "x" {
		t.Fatalf("event body = %q, want x", ev.Body)
	}
}

func TestManager_RetriesFailedDials(t *testing.T) {
	tr := newFakeTransport(2)
	m := Start(Options{Transport: tr, ReconnectDelay: 10 * time.Millisecond})
	t.Cleanup(m.Close)

	waitSession(t, tr)
	if got := tr.attemptCount(); got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
}

func TestManager_CloseIsSynchronousAndIdempotent(t *testing.T) {
	tr := newFakeTransport(0)
	m := Start(Options{Transport: tr, ReconnectDelay: 10 * time.Millisecond})

	sess := waitSession(t, tr)
	waitState(t, m, StateConnected)

	m.Close()
	m.Close()

	if !sess.isClosed() {
		t.Fatal("session still open after Close")
	}
	if m.State() != StateDisconnected {
		t.Fatalf("state = %s, want disconnected", m.State())
	}
	if _, ok := <-m.Events(); ok {
		t.Fatal("events channel still open after Close")
	}
}

func TestManager_CloseDuringBackoff(t *testing.T) {
	tr := newFakeTransport(1000)
	m := Start(Options{Transport: tr, ReconnectDelay: time.Hour})

	deadline := time.Now().Add(2 * time.Second)
	for tr.attemptCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		m.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked during reconnect delay")
	}
	if got := tr.attemptCount(); got != 1 {
		t.Fatalf("attempts = %d, want 1", got)
	}
}
