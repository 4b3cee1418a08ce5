package http

import (
	"strings"
	"sync"

	"pesatrack/internal/engine"
)

// filterState holds the active filter set behind a lock. Mutation goes
// through the reconciler so HTTP callers get the same merge rules as any
// other client.
type filterState struct {
	mu  sync.RWMutex
	set engine.FilterSet
}

func newFilterState() *filterState {
	return &filterState{}
}

// Current returns a copy of the active set.
func (s *filterState) Current() engine.FilterSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.set == nil {
		return nil
	}
	return append(engine.FilterSet(nil), s.set...)
}

// Apply folds the incoming filters into the active set and returns the
// result.
func (s *filterState) Apply(incoming ...engine.Filter) engine.FilterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = engine.Reconcile(s.set, incoming...)
	return append(engine.FilterSet(nil), s.set...)
}

// Remove drops the given filters from the active set and returns the result.
func (s *filterState) Remove(toRemove ...engine.Filter) engine.FilterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = engine.Remove(s.set, toRemove...)
	if s.set == nil {
		return nil
	}
	return append(engine.FilterSet(nil), s.set...)
}

// Clear resets the active set.
func (s *filterState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = nil
}

// fingerprint builds a cache key describing the set. Filter order matters
// for the key, which is fine: the reconciler keeps order stable.
func fingerprint(set engine.FilterSet) string {
	if len(set) == 0 {
		return "all"
	}
	var b strings.Builder
	for i, f := range set {
		if i > 0 {
			b.WriteByte('|')
		}
		p := toFilterPayload(f)
		b.WriteString(p.Field)
		b.WriteByte(' ')
		b.WriteString(p.Operator)
		b.WriteByte(' ')
		if len(p.Values) > 0 {
			b.WriteString(strings.Join(p.Values, ","))
		} else {
			b.WriteString(p.Value)
		}
		if p.Combinator != "" {
			b.WriteByte(' ')
			b.WriteString(p.Combinator)
		}
	}
	return b.String()
}
