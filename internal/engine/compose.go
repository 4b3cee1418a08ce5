package engine

import (
	"time"

	"pesatrack/internal/core"
)

type (
	// ResolvedPeriod is the outcome of span resolution: the normalized range,
	// the chosen default granularity, and the granularities a caller may
	// switch to for this span.
	ResolvedPeriod struct {
		Range       DateRange
		Granularity Granularity
		Options     []Granularity
	}

	// DerivedBundle is the engine's sole output: the filtered transactions
	// plus everything derived from them. It is recomputed wholesale on every
	// input change and never mutated in place.
	DerivedBundle struct {
		Transactions []core.Transaction
		Period       ResolvedPeriod
		Calculated   CalculatedData
		Averages     map[Granularity]PeriodAverage
	}
)

// Compose runs the full pipeline: filter, resolve the period, aggregate, and
// compute period averages. It is deterministic and side-effect-free; callers
// memoize on input identity if recomputation cost matters.
func Compose(all []core.Transaction, filters FilterSet) DerivedBundle {
	return ComposeAt(all, filters, DefaultPolicy, time.Now())
}

// ComposeAt is Compose with an explicit period policy and clock, for callers
// that opt into the year tier or need reproducible output in tests.
func ComposeAt(all []core.Transaction, filters FilterSet, policy PeriodPolicy, now time.Time) DerivedBundle {
	return ComposeSampled(all, filters, policy, now, MaxTrendPoints)
}

// ComposeSampled is ComposeAt with a configurable balance-trend cap.
func ComposeSampled(all []core.Transaction, filters FilterSet, policy PeriodPolicy, now time.Time, trendPoints int) DerivedBundle {
	filtered := Apply(all, filters)

	r := ResolveRange(all, filters, now)
	granularity, options := policy.Resolve(r)

	return DerivedBundle{
		Transactions: filtered,
		Period: ResolvedPeriod{
			Range:       r,
			Granularity: granularity,
			Options:     options,
		},
		Calculated: AggregateSampled(filtered, trendPoints),
		Averages:   PeriodAverages(filtered, options),
	}
}
