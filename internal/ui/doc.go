// Package ui is the offerwatch terminal dashboard, built on bubbletea.
//
// The Model never owns offer state. It holds the last engine.View and
// re-reads it whenever the engine signals a change, plus on a short redraw
// tick so transient notices disappear when their timer fires. Every key
// that changes something is forwarded to the engine as a command; the
// engine decides whether the current role may perform it.
//
// Files:
//
//   - ui.go: Engine interface, Options and Run
//   - model.go: Model state, Update and key handling
//   - view.go: header, filter bar, offer table, detail and footer rendering
//   - filter.go: status/read filter cycling and labels
//   - logs.go: client log pane fed by internal/logtail
//   - theme.go, keys.go: palettes and bindings
//
// Layout:
//
//	┌ offerwatch  kim · USER  오퍼관리(2)  ● live  updated 3s ago ┐
//	│ status 전체   read 안읽음   keyword -   offers 12          │
//	│ ID    COMPANY        POSITION       STATUS    READ  CREATED │
//	│ …                                                          │
//	└ notice, keyword input or key hints                         ┘
package ui
