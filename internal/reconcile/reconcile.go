// Package reconcile turns successive offer lists into adminRead edges.
package reconcile

import (
	"sort"

	"github.com/five82/offerwatch/internal/offerapi"
	"github.com/five82/offerwatch/internal/state"
)

// Transition is an offer whose adminRead flag went from false to true
// between two fetches.
type Transition struct {
	OfferID int64
	Company string
	Title   string
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	Transitions []Transition
	Next        state.Baseline
}

// Diff compares the fetched list against prev. The first pass after a reset
// (empty prev) only establishes the baseline. Offers new to prev never
// produce a transition, nor does a true to false change. prev is not mutated.
func Diff(prev state.Baseline, offers []offerapi.Offer) Result {
	next := make(state.Baseline, len(offers))
	for _, offer := range offers {
		next[offer.ID] = offer.AdminRead
	}

	var transitions []Transition
	if len(prev) > 0 {
		for _, offer := range offers {
			was, seen := prev[offer.ID]
			if seen && !was && offer.AdminRead {
				transitions = append(transitions, Transition{
					OfferID: offer.ID,
					Company: offer.CompanyName,
					Title:   offer.PositionTitle,
				})
			}
		}
		sort.Slice(transitions, func(i, j int) bool {
			return transitions[i].OfferID < transitions[j].OfferID
		})
	}

	return Result{Transitions: dedupe(transitions), Next: next}
}

// dedupe drops repeated ids in a sorted slice; a list may carry the same
// offer twice while the server is mid-update.
func dedupe(ts []Transition) []Transition {
	if len(ts) < 2 {
		return ts
	}
	out := ts[:1]
	for _, t := range ts[1:] {
		if t.OfferID != out[len(out)-1].OfferID {
			out = append(out, t)
		}
	}
	return out
}
