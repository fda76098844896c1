// Package notify shows at most one transient notice at a time.
package notify

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/five82/offerwatch/internal/reconcile"
)

const (
	// DefaultDuration is how long a notice stays visible.
	DefaultDuration = 2200 * time.Millisecond

	// MsgAdminRead announces that staff opened one of the viewer's offers.
	MsgAdminRead = "관리자가 오퍼를 확인했습니다."
	// MsgPushFallback is shown for push payloads without usable text.
	MsgPushFallback = "새 알림이 도착했습니다."
)

// Notice is the currently visible message.
type Notice struct {
	Message   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Timer is the subset of *time.Timer the emitter needs.
type Timer interface {
	Stop() bool
}

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Options configure an Emitter. Zero values use defaults.
type Options struct {
	Duration time.Duration
	Clock    Clock
	// Sink receives every notice as it is shown.
	Sink func(Notice)
}

// Emitter owns the single notice slot and its expiry timer.
type Emitter struct {
	clock    Clock
	duration time.Duration
	sink     func(Notice)

	mu      sync.Mutex
	current Notice
	visible bool
	gen     uint64
	timer   Timer
	closed  bool
}

// New builds an Emitter.
func New(opts Options) *Emitter {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	return &Emitter{clock: opts.Clock, duration: opts.Duration, sink: opts.Sink}
}

// Notify replaces any visible notice and restarts the expiry timer.
func (e *Emitter) Notify(message string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	gen := e.gen
	now := e.clock.Now()
	n := Notice{Message: message, IssuedAt: now, ExpiresAt: now.Add(e.duration)}
	e.current = n
	e.visible = true
	e.timer = e.clock.AfterFunc(e.duration, func() { e.expire(gen) })
	sink := e.sink
	e.mu.Unlock()

	if sink != nil {
		sink(n)
	}
}

// expire hides the notice only if no newer one replaced it since the timer
// was armed.
func (e *Emitter) expire(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return
	}
	e.visible = false
	e.current = Notice{}
	e.timer = nil
}

// Current returns the visible notice, if any.
func (e *Emitter) Current() (Notice, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current, e.visible
}

// OnTransitions shows one notice for a reconciliation pass that found at
// least one edge, however many offers flipped.
func (e *Emitter) OnTransitions(ts []reconcile.Transition) {
	if len(ts) == 0 {
		return
	}
	e.Notify(MsgAdminRead)
}

// OnPushEvent shows the text carried by a push payload and returns it.
// Unparseable or empty payloads fall back to a generic message.
func (e *Emitter) OnPushEvent(payload []byte) string {
	text := PushText(payload)
	e.Notify(text)
	return text
}

// PushText extracts the display text from a push payload.
func PushText(payload []byte) string {
	var body struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return MsgPushFallback
	}
	if title := strings.TrimSpace(body.Title); title != "" {
		return title
	}
	if message := strings.TrimSpace(body.Message); message != "" {
		return message
	}
	return MsgPushFallback
}

// Close cancels the timer and drops further notices. Safe to call twice.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.visible = false
	e.current = Notice{}
}
