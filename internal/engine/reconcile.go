package engine

// Reconciliation folds incoming filters into the active set. For each
// incoming filter exactly one rule fires, tried in this order against the
// current field-match:
//
//  1. no existing filter on the field: append as AND
//  2. existing filter is an exclusion (!= or not-in): append as AND
//  3. same operator, different value: OR-ify both sides
//  4. logically opposite operators: incoming replaces the existing filter
//  5. operator and value identical: idempotent replace, combinator kept
//  6. anything else: append as a second AND constraint on the field
//
// A pair of >= and <= date filters arriving together is special-cased to
// fully replace any existing date constraint, so a range picker never
// accumulates stale bounds.

// opposites maps each operator to the operator it supersedes on the same
// field (tightening replaces inversion).
var opposites = map[Operator]Operator{
	OpEq:  OpNeq,
	OpNeq: OpEq,
	OpGt:  OpLte,
	OpLte: OpGt,
	OpLt:  OpGte,
	OpGte: OpLt,
}

// Reconcile returns a new set with every incoming filter folded in. The
// current set is never mutated.
func Reconcile(current FilterSet, incoming ...Filter) FilterSet {
	next := make(FilterSet, len(current))
	copy(next, current)

	if lo, hi, ok := dateRangePair(incoming); ok {
		kept := next[:0:0]
		for _, f := range next {
			if f.Field != FieldDate {
				kept = append(kept, f)
			}
		}
		kept = append(kept, lo.WithCombinator(And), hi.WithCombinator(And))
		return kept
	}

	for _, in := range incoming {
		next = foldOne(next, in)
	}
	return next
}

// dateRangePair recognizes exactly two date filters forming a >=/<= pair.
func dateRangePair(incoming []Filter) (lo, hi Filter, ok bool) {
	if len(incoming) != 2 {
		return Filter{}, Filter{}, false
	}
	a, b := incoming[0], incoming[1]
	if a.Field != FieldDate || b.Field != FieldDate {
		return Filter{}, Filter{}, false
	}
	switch {
	case a.Operator == OpGte && b.Operator == OpLte:
		return a, b, true
	case a.Operator == OpLte && b.Operator == OpGte:
		return b, a, true
	}
	return Filter{}, Filter{}, false
}

func foldOne(current FilterSet, in Filter) FilterSet {
	idx := fieldMatch(current, in)
	if idx < 0 {
		return append(current, in.WithCombinator(And)) // rule 1
	}
	existing := current[idx]

	switch {
	case existing.Operator == OpNeq || existing.Operator == OpNotIn:
		// rule 2: never merge into an exclusion
		return append(current, in.WithCombinator(And))

	case existing.Operator == in.Operator && !existing.Value.Equal(in.Value):
		// rule 3: OR-ify; an already-OR match just gains a member
		current[idx] = existing.WithCombinator(Or)
		return append(current, in.WithCombinator(Or))

	case opposites[existing.Operator] == in.Operator:
		// rule 4: narrowing supersedes inversion
		current[idx] = in.WithCombinator(And)
		return current

	case existing.Operator == in.Operator && existing.Value.Equal(in.Value):
		// rule 5: idempotent replace keeps the existing combinator
		current[idx] = in.WithCombinator(existing.combinator())
		return current
	}

	// rule 6: field constrained twice, conjunctively
	return append(current, in.WithCombinator(And))
}

// fieldMatch locates the existing filter the incoming one is reconciled
// against. A same-operator member of an OR group is preferred over the first
// filter on the field, so a third (and fourth, ...) value keeps extending the
// group instead of re-running the append rule against an arbitrary member.
func fieldMatch(current FilterSet, in Filter) int {
	first := -1
	for i, f := range current {
		if f.Field != in.Field {
			continue
		}
		if first < 0 {
			first = i
		}
		if f.IsOr() && f.Operator == in.Operator {
			return i
		}
	}
	return first
}

// Remove returns the set with every filter in toRemove excluded by
// structural equality. A nil current set stays nil; removing the last filter
// yields an empty, non-nil set.
func Remove(current FilterSet, toRemove ...Filter) FilterSet {
	if current == nil {
		return nil
	}
	out := make(FilterSet, 0, len(current))
	for _, f := range current {
		removed := false
		for _, r := range toRemove {
			if f.Equal(r) {
				removed = true
				break
			}
		}
		if !removed {
			out = append(out, f)
		}
	}
	return out
}
