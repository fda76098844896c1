// Package engine coordinates session state, the offer list, push events and
// the polling fallback for offerwatch.
//
// # Event Loop
//
// Run owns a single goroutine. Everything that changes state arrives there
// as a typed event:
//
//	session refresh ─┐
//	offer fetch ─────┤
//	unread fetch ────┼──> events ──> Run loop ──> store / baseline / notice / counter
//	poll tick ───────┤
//	UI command ──────┘
//	push frame ──────────────────────┘ (read directly from the subscription)
//
// Network calls never run on the loop. They are started from it, tagged with
// the current session epoch, and post their result back. Each session change
// bumps the epoch, so results from a previous identity are discarded.
// Requests are also numbered in the order the loop issued them. A list result
// older than one already applied for the same filter is dropped, as are
// superseded session and unread results, so a slow response never rolls the
// view or the baseline back.
//
// # Reconciliation
//
// Only unfiltered list fetches feed the reconciler, and only for
// non-administrative identities. A filtered view triggers an extra
// unfiltered background fetch so the baseline always covers every offer.
// The baseline is swapped before the notice for that pass is shown.
//
// # Failure Handling
//
// Fetches the user asked for (initial load, reload, filter change) show a
// notice on failure. Poll, push and post-mutation refreshes fail silently and
// keep the last good list. Unread count failures keep the previous count.
package engine
