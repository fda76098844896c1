package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/five82/offerwatch/internal/config"
	"github.com/five82/offerwatch/internal/credential"
	"github.com/five82/offerwatch/internal/engine"
	"github.com/five82/offerwatch/internal/logging"
	"github.com/five82/offerwatch/internal/notify"
	"github.com/five82/offerwatch/internal/offerapi"
	"github.com/five82/offerwatch/internal/prefs"
	"github.com/five82/offerwatch/internal/push"
	"github.com/five82/offerwatch/internal/telemetry"
	"github.com/five82/offerwatch/internal/ui"
	"github.com/five82/offerwatch/internal/unread"
)

// Options configure the offerwatch application.
type Options struct {
	ConfigPath string
	PrefsPath  string        // empty uses default ~/.config/offerwatch/prefs.toml
	PollEvery  time.Duration // zero uses poll_interval from config
	Version    string
	Stderr     bool // tee logs to stderr
}

// Env holds everything a command needs once configuration is loaded.
type Env struct {
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    *slog.Logger
	Client    *offerapi.Client

	closers []func()
}

// openCredentials is swapped in tests so no OS keyring is touched.
var openCredentials = func() (cookieStore, error) { return credential.Open() }

type cookieStore interface {
	SessionCookie(baseURL string) (string, error)
}

// Bootstrap loads config and prefs, opens the log, installs tracing and
// builds the API client. Callers must Close the returned Env.
func Bootstrap(ctx context.Context, opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = opts.PollEvery
	}

	logger, closeLog, err := logging.NewLogger(logging.Options{
		Path:   cfg.LogFile,
		Level:  cfg.LogLevel,
		Stderr: opts.Stderr,
	})
	if err != nil {
		return nil, err
	}
	env := &Env{Config: cfg, Logger: logger}
	env.closers = append(env.closers, func() { _ = closeLog() })

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	env.PrefsPath = prefsPath
	env.Prefs, _ = prefs.Load(prefsPath)

	shutdown := telemetry.Setup(ctx, telemetry.Options{
		Endpoint: cfg.OTLPEndpoint,
		Insecure: cfg.OTLPInsecure,
		Version:  opts.Version,
		Logger:   logger,
	})
	env.closers = append(env.closers, func() {
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("otel shutdown error", slog.String("error", err.Error()))
		}
	})

	client, err := offerapi.NewClient(offerapi.Options{
		BaseURL:           cfg.BaseURL,
		SessionCookieName: cfg.SessionCookieName,
		SessionCookie:     sessionCookie(cfg, logger),
		Timeout:           cfg.RequestTimeout,
		Transport:         telemetry.WrapTransport(nil),
	})
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("init offer client: %w", err)
	}
	env.Client = client

	logger.Info("offerwatch started",
		slog.String("base_url", client.BaseURL().String()),
		slog.String("config", cfg.Path),
		slog.Duration("poll_interval", cfg.PollInterval),
	)
	return env, nil
}

// sessionCookie prefers the config value and falls back to the keyring.
func sessionCookie(cfg config.Config, logger *slog.Logger) string {
	if value := strings.TrimSpace(cfg.SessionCookie); value != "" {
		return value
	}
	store, err := openCredentials()
	if err != nil {
		logger.Debug("keyring unavailable", slog.String("error", err.Error()))
		return ""
	}
	value, err := store.SessionCookie(cfg.BaseURL)
	if err != nil {
		logger.Debug("keyring lookup failed", slog.String("error", err.Error()))
		return ""
	}
	return value
}

// Close releases the log file and flushes telemetry, in reverse order.
func (e *Env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

// PushFactory opens a STOMP subscription that shares the client's cookies.
func (e *Env) PushFactory() engine.PushFactory {
	return func(email string) engine.Subscription {
		transport := push.NewStompTransport(e.Client.BaseURL(), e.Client.Jar(), e.Client.Transport())
		return push.Start(push.Options{
			Transport:      transport,
			Email:          email,
			ReconnectDelay: e.Config.ReconnectDelay,
			Logger:         e.Logger,
		})
	}
}

// NewEngine builds the engine from config and the saved filter.
func (e *Env) NewEngine(sink func(notify.Notice)) *engine.Engine {
	return engine.New(engine.Options{
		API:            e.Client,
		Push:           e.PushFactory(),
		PollInterval:   e.Config.PollInterval,
		NoticeDuration: e.Config.NoticeDuration,
		Sink:           sink,
		Filter:         e.Prefs.Filter.ListFilter(),
		Logger:         e.Logger,
	})
}

// Run boots the offerwatch TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Bootstrap(ctx, opts)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eng := env.NewEngine(nil)
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	uiErr := ui.Run(ctx, ui.Options{
		Engine:    eng,
		Prefs:     env.Prefs,
		PrefsPath: env.PrefsPath,
		LogPath:   env.Config.LogFile,
		Logger:    env.Logger,
	})
	cancel()
	if err := <-done; err != nil && uiErr == nil {
		return err
	}
	return uiErr
}

// Watch runs the engine without a UI and prints every notice and badge
// change to out until ctx is cancelled.
func Watch(ctx context.Context, opts Options, out io.Writer) error {
	opts.Stderr = true
	env, err := Bootstrap(ctx, opts)
	if err != nil {
		return err
	}
	defer env.Close()
	return watch(ctx, env.NewEngine, out)
}

func watch(ctx context.Context, build func(func(notify.Notice)) *engine.Engine, out io.Writer) error {
	var mu sync.Mutex
	printf := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintf(out, format, args...)
	}

	eng := build(func(n notify.Notice) {
		printf("%s  %s\n", n.IssuedAt.Format("15:04:05"), n.Message)
	})

	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	lastBadge := ""
	lastAuth := false
	for {
		select {
		case err := <-done:
			return err
		case <-eng.Changed():
			view := eng.View()
			if view.Session.Authenticated != lastAuth {
				lastAuth = view.Session.Authenticated
				if lastAuth {
					printf("signed in as %s (%s)\n", view.Session.Identity.DisplayName, view.Session.Identity.Role)
				} else {
					printf("signed out\n")
				}
			}
			if !view.Session.Authenticated || view.Session.IsAdmin() {
				lastBadge = ""
				continue
			}
			if badge := unread.BadgeLabel(view.Unread); badge != lastBadge {
				lastBadge = badge
				printf("%s\n", badge)
			}
		}
	}
}
