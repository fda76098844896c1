package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/offerwatch/internal/offerapi"
)

// Baseline maps offer id to the last observed adminRead flag.
type Baseline map[int64]bool

// Clone returns an independent copy. A nil baseline clones to nil.
func (b Baseline) Clone() Baseline {
	if b == nil {
		return nil
	}
	dup := make(Baseline, len(b))
	for id, flag := range b {
		dup[id] = flag
	}
	return dup
}

// Snapshot represents the latest offer data available to the UI.
type Snapshot struct {
	Offers              []offerapi.Offer
	Filter              offerapi.Filter
	Loaded              bool // at least one list fetch succeeded since the last reset
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive fetch failures
}

// IsOffline returns true when the API has been unreachable for multiple fetches.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent access to the visible offer list and the
// reconciliation baseline. The engine loop is the only writer.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	baseline Baseline
}

// SetFilter changes the active filter. The visible list is kept until a
// fetch for the new filter lands.
func (s *Store) SetFilter(filter offerapi.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Filter = cloneFilter(filter)
}

// Filter returns the active filter.
func (s *Store) Filter() offerapi.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneFilter(s.snapshot.Filter)
}

// Apply replaces the visible list when filter is the active filter and
// reports whether it did. Results fetched for another filter are ignored.
func (s *Store) Apply(filter offerapi.Filter, offers []offerapi.Offer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !filter.Equal(s.snapshot.Filter) {
		return false
	}
	s.snapshot.Offers = cloneOffers(offers)
	s.snapshot.Loaded = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
	return true
}

// Fail records a fetch error. The previous list and baseline are kept.
func (s *Store) Fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
}

// Update patches one visible offer in place after a confirmed mutation.
// It reports whether the offer was present.
func (s *Store) Update(id int64, patch func(*offerapi.Offer)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.snapshot.Offers {
		if s.snapshot.Offers[i].ID == id {
			patch(&s.snapshot.Offers[i])
			return true
		}
	}
	return false
}

// Baseline returns a copy of the reconciliation baseline.
func (s *Store) Baseline() Baseline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseline.Clone()
}

// SwapBaseline replaces the baseline wholesale.
func (s *Store) SwapBaseline(next Baseline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseline = next.Clone()
}

// Reset clears the list, the baseline and error history. The active
// filter survives so the next session starts with the user's view.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{Filter: s.snapshot.Filter}
	s.baseline = nil
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Offers = cloneOffers(s.snapshot.Offers)
	snap.Filter = cloneFilter(s.snapshot.Filter)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneOffers(items []offerapi.Offer) []offerapi.Offer {
	if len(items) == 0 {
		return nil
	}
	dup := make([]offerapi.Offer, len(items))
	copy(dup, items)
	return dup
}

func cloneFilter(f offerapi.Filter) offerapi.Filter {
	if f.Read != nil {
		read := *f.Read
		f.Read = &read
	}
	return f
}
