// Package state provides thread-safe storage for the offer list shown to the
// user and the adminRead baseline the reconciler diffs against.
//
// # Concurrency Model
//
// The engine loop is the single writer. The UI reads whenever it renders:
//
//	Engine loop:                   UI:
//	┌──────────────────┐          ┌──────────────────┐
//	│ ListOffers()     │          │                  │
//	│      ↓           │          │                  │
//	│ store.Apply()    │─────────→│ store.Snapshot() │
//	│ SwapBaseline()   │  (mutex) │      ↓           │
//	│      ↓           │          │  render          │
//	└──────────────────┘          └──────────────────┘
//
// Reads and writes copy slices, maps and the filter's read pointer, so a
// snapshot never aliases stored data.
//
// # Update Semantics
//
// Apply replaces the whole visible list, and only when the result was
// fetched for the active filter. Fail keeps the last good list and records
// the error. There are no partial merges; Update exists only to patch the
// one row a confirmed mutation touched while the reload is in flight.
//
// The baseline is independent of the visible list. It is replaced wholesale
// with SwapBaseline and cleared by Reset.
package state
