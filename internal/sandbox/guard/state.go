// Package guard holds the per-run loop counters consulted by injected guard calls.
package guard

import (
	"fmt"
	"sort"
	"sync"
)

// Reserved global names used by injected guard calls.
const (
	FuncName  = "__loopGuard"
	StateName = "__loopState"
)

// DefaultMaxIterations is the per-site iteration budget
const DefaultMaxIterations = 1000

// TripError reports that a loop site ran past its budget
type TripError struct {
	Site  int
	Limit int
	Count int
}

func (e *TripError) Error() string {
	return fmt.Sprintf("LoopIterationError: loop %d exceeded %d iterations", e.Site, e.Limit)
}

// State maps loop-site ids to iteration counts for a single run.
// A State must never be reused across runs.
type State struct {
	mu       sync.Mutex
	counters map[int]int
}

// New creates an empty guard state
func New() *State {
	return &State{counters: make(map[int]int)}
}

// Check counts one iteration of the given loop site and returns a
// *TripError once the count exceeds limit.
func (s *State) Check(site, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[site]++
	if n := s.counters[site]; n > limit {
		return &TripError{Site: site, Limit: limit, Count: n}
	}
	return nil
}

// Count returns the iterations recorded for a site
func (s *State) Count(site int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[site]
}

// Counts returns a copy of all counters
func (s *State) Counts() map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]int, len(s.counters))
	for site, n := range s.counters {
		out[site] = n
	}
	return out
}

// Sites returns the ids of loop sites that ran at least once, ascending
func (s *State) Sites() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	sites := make([]int, 0, len(s.counters))
	for site := range s.counters {
		sites = append(sites, site)
	}
	sort.Ints(sites)
	return sites
}

// Handle is the opaque value guest code receives as the counter-state argument.
// It deliberately has no exported fields or methods.
type Handle struct {
	state *State
}

// NewHandle wraps a state for exposure to guest code
func NewHandle(s *State) *Handle {
	return &Handle{state: s}
}

// StateOf unwraps a handle; it reports false for anything else
func StateOf(v interface{}) (*State, bool) {
	h, ok := v.(*Handle)
	if !ok || h == nil || h.state == nil {
		return nil, false
	}
	return h.state, true
}
