// Package app is the composition root for offerwatch.
//
// Bootstrap loads config.toml and prefs.toml, opens the log file, installs
// optional OTLP tracing and builds the offer API client. The session
// cookie comes from config or, failing that, the OS keyring.
//
// Run starts the engine on its own goroutine and hands it to the bubbletea
// UI; quitting the UI cancels the engine and waits for it to release its
// poller, push subscription and timers. Watch does the same without a UI,
// printing notices and unread-badge changes as plain lines.
//
//	Bootstrap()
//	   ├── config.Load / prefs.Load
//	   ├── logging.NewLogger
//	   ├── telemetry.Setup
//	   └── offerapi.NewClient (otelhttp transport)
//	Env.NewEngine()
//	   └── engine.New (push factory: STOMP over the client's cookie jar)
//	Run()   → ui.Run (blocks)
//	Watch() → prints until ctx is cancelled
package app
