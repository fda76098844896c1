package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/offerwatch/internal/notify"
	"github.com/five82/offerwatch/internal/offerapi"
	"github.com/five82/offerwatch/internal/push"
	"github.com/five82/offerwatch/internal/reconcile"
	"github.com/five82/offerwatch/internal/session"
	"github.com/five82/offerwatch/internal/state"
	"github.com/five82/offerwatch/internal/unread"
)

// Subscription is a live push subscription. *push.Manager implements it.
type Subscription interface {
	Events() <-chan push.Event
	State() push.State
	Close()
}

// PushFactory opens a subscription for an identity.
type PushFactory func(email string) Subscription

// Options configure an Engine.
type Options struct {
	API            offerapi.API
	Push           PushFactory // nil disables push
	PollInterval   time.Duration
	NoticeDuration time.Duration
	Clock          notify.Clock
	Sink           func(notify.Notice)
	Filter         offerapi.Filter // initial list filter
	Logger         *slog.Logger
}

// View is a consistent read of everything the UI renders.
type View struct {
	Session   session.State
	Snapshot  state.Snapshot
	Notice    notify.Notice
	HasNotice bool
	Unread    int
	Push      push.State
}

type origin int

const (
	originUser origin = iota
	originBackground
)

func (o origin) String() string {
	if o == originUser {
		return "user"
	}
	return "background"
}

type (
	sessionMsg struct {
		seq    uint64
		state  session.State
		logout bool
	}
	fetchMsg struct {
		epoch  uint64
		seq    uint64
		filter offerapi.Filter
		offers []offerapi.Offer
		err    error
		origin origin
	}
	unreadMsg struct {
		epoch uint64
		seq   uint64
		count int
		err   error
	}
	pollTick struct {
		epoch uint64
	}
	mutationMsg struct {
		epoch   uint64
		err     error
		okMsg   string
		failMsg string
		apply   func(*state.Store)
	}
	offerMsg struct {
		epoch uint64
		offer offerapi.Offer
		err   error
	}
	command func(*Engine)
)

const eventBuffer = 64

// Engine serializes every state change through one goroutine. Network calls
// run elsewhere and report back as events tagged with the session epoch and a
// request sequence number. A result that outlives its session, or that is
// older than one already applied for the same request kind, is dropped.
type Engine struct {
	api      offerapi.API
	newPush  PushFactory
	interval time.Duration
	logger   *slog.Logger

	session *session.Manager
	store   *state.Store
	unread  *unread.Counter
	emitter *notify.Emitter

	events   chan any
	changed  chan struct{}
	stopping chan struct{}
	running  atomic.Bool
	wg       sync.WaitGroup
	ioCtx    context.Context

	// Owned by the loop goroutine.
	sess       session.State
	applied    bool
	epoch      uint64
	seq        uint64
	sessionSeq uint64            // newest session result applied
	unreadSeq  uint64            // newest unread result applied
	fetchSeq   map[string]uint64 // newest list result applied, per filter
	stopPoll   context.CancelFunc
	pushEvents <-chan push.Event

	viewMu sync.RWMutex
	view   session.State
	sub    Subscription
}

// New builds an Engine. Nothing happens until Run is called.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	logger := opts.Logger.With(slog.String("component", "engine"))
	e := &Engine{
		api:      opts.API,
		newPush:  opts.Push,
		interval: opts.PollInterval,
		logger:   logger,
		session:  session.NewManager(opts.API, opts.Logger),
		store:    &state.Store{},
		unread:   &unread.Counter{},
		emitter: notify.New(notify.Options{
			Duration: opts.NoticeDuration,
			Clock:    opts.Clock,
			Sink:     opts.Sink,
		}),
		events:   make(chan any, eventBuffer),
		changed:  make(chan struct{}, 1),
		stopping: make(chan struct{}),
		fetchSeq: map[string]uint64{},
	}
	e.store.SetFilter(opts.Filter)
	return e
}

// Run processes events until ctx is cancelled. Every poller, subscription
// and timer the engine started is released before it returns.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return errors.New("engine already running")
	}
	ioCtx, cancelIO := context.WithCancel(ctx)
	e.ioCtx = ioCtx
	defer func() {
		e.teardown()
		e.emitter.Close()
		close(e.stopping)
		cancelIO()
		e.wg.Wait()
		e.touch()
	}()

	e.refreshSession()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-e.events:
			e.handle(ev)
		case pev, ok := <-e.pushEvents:
			if !ok {
				e.pushEvents = nil
				continue
			}
			e.onPush(pev)
		}
		e.touch()
	}
}

// Changed is signalled after the loop processes an event. It is coalescing:
// one pending signal stands for any number of changes.
func (e *Engine) Changed() <-chan struct{} {
	return e.changed
}

// View returns the current state for rendering.
func (e *Engine) View() View {
	e.viewMu.RLock()
	sess := e.view
	sub := e.sub
	e.viewMu.RUnlock()

	v := View{
		Session:  sess,
		Snapshot: e.store.Snapshot(),
		Unread:   e.unread.Count(),
		Push:     push.StateDisconnected,
	}
	v.Notice, v.HasNotice = e.emitter.Current()
	if sub != nil {
		v.Push = sub.State()
	}
	return v
}

// RefreshSession re-checks identity with the server.
func (e *Engine) RefreshSession() {
	e.post(command(func(e *Engine) { e.refreshSession() }))
}

// Logout ends the server session and re-checks identity.
func (e *Engine) Logout() {
	e.post(command(func(e *Engine) {
		seq := e.nextSeq()
		e.goIO(func(ctx context.Context) {
			st := e.session.Logout(ctx)
			e.post(sessionMsg{seq: seq, state: st, logout: true})
		})
	}))
}

// SetFilter changes the visible list's filter and fetches it.
func (e *Engine) SetFilter(filter offerapi.Filter) {
	e.post(command(func(e *Engine) {
		e.store.SetFilter(filter)
		e.reload(originUser)
	}))
}

// Reload fetches the list for the active filter and the unread count.
func (e *Engine) Reload() {
	e.post(command(func(e *Engine) {
		if !e.sess.Authenticated {
			e.emitter.Notify(MsgLoginRequired)
			return
		}
		e.reload(originUser)
		e.refreshUnread()
	}))
}

// RefreshOffer re-reads one offer and patches it into the visible list.
func (e *Engine) RefreshOffer(id int64) {
	e.post(command(func(e *Engine) {
		if !e.sess.Authenticated {
			return
		}
		epoch := e.epoch
		e.goIO(func(ctx context.Context) {
			offer, err := e.api.GetOffer(ctx, id)
			e.post(offerMsg{epoch: epoch, offer: offer, err: err})
		})
	}))
}

// MarkRead sets the staff-facing read flag. Administrators only.
func (e *Engine) MarkRead(id int64, read bool) {
	e.post(command(func(e *Engine) {
		if !e.allow(true) {
			return
		}
		e.mutate(MsgReadToggled, MsgReadToggleFailed,
			func(ctx context.Context) error { return e.api.MarkRead(ctx, id, read) },
			func(s *state.Store) { s.Update(id, func(o *offerapi.Offer) { o.Read = read }) },
		)
	}))
}

// UpdateStatus moves an offer to a new status. Administrators only.
func (e *Engine) UpdateStatus(id int64, status offerapi.Status) {
	e.post(command(func(e *Engine) {
		if !e.allow(true) {
			return
		}
		e.mutate(MsgStatusChanged, MsgStatusChangeFailed,
			func(ctx context.Context) error { return e.api.UpdateStatus(ctx, id, status) },
			func(s *state.Store) { s.Update(id, func(o *offerapi.Offer) { o.Status = status }) },
		)
	}))
}

// Confirm marks one offer as seen by its submitter. Non-administrators only.
func (e *Engine) Confirm(id int64) {
	e.post(command(func(e *Engine) {
		if !e.allow(false) {
			return
		}
		e.mutate(MsgConfirmed, MsgConfirmFailed,
			func(ctx context.Context) error { return e.api.Confirm(ctx, id) },
			func(s *state.Store) { s.Update(id, func(o *offerapi.Offer) { o.Read = true }) },
		)
	}))
}

// ConfirmAll marks every offer of the submitter as seen. Non-administrators only.
func (e *Engine) ConfirmAll() {
	e.post(command(func(e *Engine) {
		if !e.allow(false) {
			return
		}
		e.mutate(MsgConfirmed, MsgConfirmFailed,
			func(ctx context.Context) error {
				n, err := e.api.ConfirmAll(ctx)
				if err == nil {
					e.logger.Info("offers confirmed", slog.Int("count", n))
				}
				return err
			},
			nil,
		)
	}))
}

// CreateOffer submits a new offer. Administrators are refused locally.
func (e *Engine) CreateOffer(req offerapi.CreateRequest) {
	e.post(command(func(e *Engine) {
		if !e.sess.Authenticated {
			e.emitter.Notify(MsgLoginRequired)
			return
		}
		if e.sess.IsAdmin() {
			e.emitter.Notify(MsgAdminCannotCreate)
			return
		}
		e.mutate(MsgCreated, MsgCreateFailed,
			func(ctx context.Context) error {
				offer, err := e.api.CreateOffer(ctx, req)
				if err == nil {
					e.logger.Info("offer created", slog.Int64("offer_id", offer.ID))
				}
				return err
			},
			nil,
		)
	}))
}

// allow gates role-specific mutations. Callers that are not logged in get a
// notice; a role mismatch is logged and ignored.
func (e *Engine) allow(admin bool) bool {
	if !e.sess.Authenticated {
		e.emitter.Notify(MsgLoginRequired)
		return false
	}
	if e.sess.IsAdmin() != admin {
		e.logger.Debug("mutation not permitted for role", slog.String("role", e.sess.Identity.Role.String()))
		return false
	}
	return true
}

func (e *Engine) post(ev any) {
	select {
	case e.events <- ev:
	case <-e.stopping:
	}
}

func (e *Engine) touch() {
	select {
	case e.changed <- struct{}{}:
	default:
	}
}

// goIO runs fn off the loop. Only the loop goroutine calls it.
func (e *Engine) goIO(fn func(ctx context.Context)) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn(e.ioCtx)
	}()
}

func (e *Engine) handle(ev any) {
	switch msg := ev.(type) {
	case command:
		msg(e)
	case sessionMsg:
		e.applySession(msg)
	case fetchMsg:
		e.onFetch(msg)
	case unreadMsg:
		e.onUnread(msg)
	case pollTick:
		e.onPoll(msg)
	case mutationMsg:
		e.onMutation(msg)
	case offerMsg:
		e.onOffer(msg)
	default:
		e.logger.Warn("unknown engine event", slog.Any("event", ev))
	}
}

func (e *Engine) refreshSession() {
	seq := e.nextSeq()
	e.goIO(func(ctx context.Context) {
		st := e.session.Refresh(ctx)
		e.post(sessionMsg{seq: seq, state: st})
	})
}

// nextSeq numbers a request. Only the loop goroutine calls it, so request
// order is the order commands were handled.
func (e *Engine) nextSeq() uint64 {
	e.seq++
	return e.seq
}

func (e *Engine) applySession(msg sessionMsg) {
	if msg.seq <= e.sessionSeq {
		e.logger.Debug("dropping superseded session result", slog.Uint64("seq", msg.seq))
		return
	}
	e.sessionSeq = msg.seq
	prev := e.sess
	next := msg.state
	e.sess = next
	e.viewMu.Lock()
	e.view = next
	e.viewMu.Unlock()

	if msg.logout && !next.Authenticated {
		defer e.emitter.Notify(MsgLoggedOut)
	}
	if e.applied && prev.SameAudience(next) {
		return
	}
	e.applied = true

	e.logger.Info("session changed",
		slog.Bool("authenticated", next.Authenticated),
		slog.String("email", next.Identity.Email),
		slog.String("role", next.Identity.Role.String()),
	)
	e.teardown()
	if !next.Authenticated {
		e.unread.Reset()
		return
	}

	if e.newPush != nil {
		sub := e.newPush(next.Identity.Email)
		e.pushEvents = sub.Events()
		e.viewMu.Lock()
		e.sub = sub
		e.viewMu.Unlock()
	}
	if !next.IsAdmin() {
		pollCtx, cancel := context.WithCancel(e.ioCtx)
		e.stopPoll = cancel
		epoch := e.epoch
		StartPoller(pollCtx, e.interval, func() {
			select {
			case e.events <- pollTick{epoch: epoch}:
			case <-pollCtx.Done():
			}
		})
	}
	e.refreshUnread()
	e.reload(originUser)
}

// teardown releases everything bound to the current session and bumps the
// epoch so in-flight results are discarded.
func (e *Engine) teardown() {
	if e.stopPoll != nil {
		e.stopPoll()
		e.stopPoll = nil
	}
	e.viewMu.Lock()
	sub := e.sub
	e.sub = nil
	e.viewMu.Unlock()
	if sub != nil {
		sub.Close()
	}
	e.pushEvents = nil
	e.epoch++
	clear(e.fetchSeq)
	e.unreadSeq = 0
	e.store.Reset()
}

// reload fetches the active filter. Non-administrators with a narrowed view
// also fetch the unfiltered list, which is the only input to reconciliation.
func (e *Engine) reload(o origin) {
	if !e.sess.Authenticated {
		return
	}
	filter := e.store.Filter()
	e.fetch(filter, o)
	if !filter.IsZero() && !e.sess.IsAdmin() {
		e.fetch(offerapi.Filter{}, originBackground)
	}
}

func (e *Engine) fetch(filter offerapi.Filter, o origin) {
	epoch, seq := e.epoch, e.nextSeq()
	e.goIO(func(ctx context.Context) {
		offers, err := e.api.ListOffers(ctx, filter)
		e.post(fetchMsg{epoch: epoch, seq: seq, filter: filter, offers: offers, err: err, origin: o})
	})
}

func filterKey(f offerapi.Filter) string {
	return f.Values().Encode()
}

func (e *Engine) refreshUnread() {
	if !e.sess.Authenticated {
		e.unread.Reset()
		return
	}
	epoch, seq := e.epoch, e.nextSeq()
	e.goIO(func(ctx context.Context) {
		n, err := e.api.UnreadCount(ctx)
		e.post(unreadMsg{epoch: epoch, seq: seq, count: n, err: err})
	})
}

func (e *Engine) onFetch(msg fetchMsg) {
	if msg.epoch != e.epoch {
		return
	}
	key := filterKey(msg.filter)
	if msg.seq <= e.fetchSeq[key] {
		e.logger.Debug("dropping out-of-order offer list",
			slog.String("filter", key),
			slog.Uint64("seq", msg.seq),
		)
		return
	}
	if msg.err != nil {
		if msg.filter.Equal(e.store.Filter()) {
			e.store.Fail(msg.err)
		}
		e.logger.Debug("offer fetch failed",
			slog.String("origin", msg.origin.String()),
			slog.String("error", msg.err.Error()),
		)
		if msg.origin == originUser {
			e.emitter.Notify(MsgListFailed)
		}
		return
	}

	e.fetchSeq[key] = msg.seq
	e.store.Apply(msg.filter, msg.offers)
	if !msg.filter.IsZero() || e.sess.IsAdmin() {
		return
	}
	res := reconcile.Diff(e.store.Baseline(), msg.offers)
	e.store.SwapBaseline(res.Next)
	if len(res.Transitions) > 0 {
		ids := make([]int64, len(res.Transitions))
		for i, t := range res.Transitions {
			ids[i] = t.OfferID
		}
		e.logger.Info("offers read by staff", slog.Any("offer_ids", ids))
	}
	e.emitter.OnTransitions(res.Transitions)
}

func (e *Engine) onUnread(msg unreadMsg) {
	if msg.epoch != e.epoch || msg.seq <= e.unreadSeq {
		return
	}
	if msg.err != nil {
		e.logger.Debug("unread count fetch failed", slog.String("error", msg.err.Error()))
		return
	}
	e.unreadSeq = msg.seq
	e.unread.Set(msg.count)
}

func (e *Engine) onPoll(msg pollTick) {
	if msg.epoch != e.epoch || !e.sess.Authenticated || e.sess.IsAdmin() {
		return
	}
	e.reload(originBackground)
	e.refreshUnread()
}

func (e *Engine) onPush(ev push.Event) {
	text := e.emitter.OnPushEvent(ev.Body)
	e.logger.Info("push event",
		slog.String("destination", ev.Destination),
		slog.String("connection_id", ev.ConnectionID),
		slog.String("text", text),
	)
	e.reload(originBackground)
	e.refreshUnread()
}

func (e *Engine) mutate(okMsg, failMsg string, call func(ctx context.Context) error, apply func(*state.Store)) {
	epoch := e.epoch
	e.goIO(func(ctx context.Context) {
		err := call(ctx)
		e.post(mutationMsg{epoch: epoch, err: err, okMsg: okMsg, failMsg: failMsg, apply: apply})
	})
}

func (e *Engine) onMutation(msg mutationMsg) {
	if msg.epoch != e.epoch {
		return
	}
	if msg.err != nil {
		e.logger.Warn("offer update failed", slog.String("error", msg.err.Error()))
		e.emitter.Notify(msg.failMsg)
		return
	}
	if msg.apply != nil {
		msg.apply(e.store)
	}
	e.emitter.Notify(msg.okMsg)
	e.reload(originBackground)
	e.refreshUnread()
}

func (e *Engine) onOffer(msg offerMsg) {
	if msg.epoch != e.epoch {
		return
	}
	if msg.err != nil {
		e.logger.Debug("offer detail fetch failed", slog.String("error", msg.err.Error()))
		return
	}
	e.store.Update(msg.offer.ID, func(o *offerapi.Offer) { *o = msg.offer })
}
