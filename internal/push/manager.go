// Package push keeps a live notification subscription open for the current
// identity and turns inbound frames into events.
package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the connection state of a Manager.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

const (
	// DefaultReconnectDelay is the fixed wait between connection attempts.
	DefaultReconnectDelay = 3 * time.Second

	UserQueue   = "/user/queue/notifications"
	topicPrefix = "/topic/notifications/"

	eventBuffer = 16
)

var nonTopicChars = regexp.MustCompile(`[^a-z0-9]`)

// TopicKey derives the per-identity topic suffix from an email.
func TopicKey(email string) string {
	return nonTopicChars.ReplaceAllString(strings.ToLower(email), "_")
}

// Destinations lists the channels subscribed for an identity. The topic is
// omitted when the email is empty.
func Destinations(email string) []string {
	dests := []string{UserQueue}
	if email = strings.TrimSpace(email); email != "" {
		dests = append(dests, topicPrefix+TopicKey(email))
	}
	return dests
}

// Frame is one inbound message from a subscription. A non-nil Err ends the
// session.
type Frame struct {
	Destination string
	Body        []byte
	Err         error
}

// Session is a live connection able to subscribe to destinations.
type Session interface {
	Subscribe(destination string) (<-chan Frame, error)
	Close() error
}

// Transport opens sessions.
type Transport interface {
	Connect(ctx context.Context) (Session, error)
}

// Event is a push frame delivered to the engine.
type Event struct {
	Destination  string
	Body         []byte
	ConnectionID string
	ReceivedAt   time.Time
}

// Options configure a Manager.
type Options struct {
	Transport      Transport
	Email          string
	ReconnectDelay time.Duration
	Logger         *slog.Logger
}

// Manager owns one subscription lifecycle. It reconnects on its own until
// Close is called.
type Manager struct {
	transport Transport
	dests     []string
	delay     time.Duration
	logger    *slog.Logger

	events chan Event
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu    sync.RWMutex
	state State
}

// Start launches the connection loop and returns immediately.
func Start(opts Options) *Manager {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		transport: opts.Transport,
		dests:     Destinations(opts.Email),
		delay:     opts.ReconnectDelay,
		logger:    opts.Logger.With(slog.String("component", "push")),
		events:    make(chan Event, eventBuffer),
		cancel:    cancel,
		done:      make(chan struct{}),
		state:     StateDisconnected,
	}
	go m.run(ctx)
	return m
}

// Events delivers inbound frames. It is closed after Close returns.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Close tears the subscription down and waits for the loop to exit.
func (m *Manager) Close() {
	m.once.Do(m.cancel)
	<-m.done
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)
	defer close(m.events)

	for {
		m.setState(StateConnecting)
		err := m.serve(ctx)
		m.setState(StateDisconnected)
		if ctx.Err() != nil {
			return
		}
		m.logger.Warn("push connection lost",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", m.delay),
		)

		timer := time.NewTimer(m.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

var errSubscriptionClosed = errors.New("subscription closed")

// serve runs one session until it fails or ctx is cancelled. The returned
// error is nil only on cancellation.
func (m *Manager) serve(ctx context.Context) error {
	sess, err := m.transport.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			m.logger.Debug("push session close failed", slog.String("error", err.Error()))
		}
	}()

	// At most two destinations: the user queue and the identity topic.
	var primary, topic <-chan Frame
	for i, dest := range m.dests {
		ch, err := sess.Subscribe(dest)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", dest, err)
		}
		if i == 0 {
			primary = ch
		} else {
			topic = ch
		}
	}

	connID := uuid.NewString()
	m.setState(StateConnected)
	m.logger.Info("push connected",
		slog.String("connection_id", connID),
		slog.Any("destinations", m.dests),
	)

	for {
		var (
			frame Frame
			ok    bool
		)
		select {
		case <-ctx.Done():
			return nil
		case frame, ok = <-primary:
		case frame, ok = <-topic:
		}
		if !ok {
			return errSubscriptionClosed
		}
		if frame.Err != nil {
			return frame.Err
		}
		ev := Event{
			Destination:  frame.Destination,
			Body:         frame.Body,
			ConnectionID: connID,
			ReceivedAt:   time.Now(),
		}
		select {
		case m.events <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}
