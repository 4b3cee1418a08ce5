package engine

import (
	"time"

	"pesatrack/internal/core"
)

// Granularity is the calendar bucket size used to group transactions.
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDate  Granularity = "date"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// Label returns the display name of the granularity.
func (g Granularity) Label() string {
	switch g {
	case GranularityHour:
		return "Hourly"
	case GranularityDate:
		return "Daily"
	case GranularityWeek:
		return "Weekly"
	case GranularityMonth:
		return "Monthly"
	case GranularityYear:
		return "Yearly"
	}
	return string(g)
}

// DateRange is an inclusive span, normalized to start-of-day / end-of-day.
type DateRange struct {
	Start core.Date
	End   core.Date
}

// Days returns the inclusive number of calendar days covered.
func (r DateRange) Days() int {
	start := r.Start.StartOfDay()
	end := r.End.StartOfDay()
	return int(end.Sub(start.Time)/(24*time.Hour)) + 1
}

// PeriodPolicy maps an inclusive day-span to the default granularity and the
// set of granularities a caller may switch to. Rows are tried in order; the
// first row whose MaxDays covers the span wins, with MaxDays 0 as the
// catch-all.
type PeriodPolicy struct {
	Rows []PolicyRow
}

type PolicyRow struct {
	MaxDays     int
	Granularity Granularity
	Options     []Granularity
}

// DefaultPolicy reflects production behavior: no YEAR tier, and the 32-60
// day band deliberately narrower than its neighbours.
var DefaultPolicy = PeriodPolicy{Rows: []PolicyRow{
	{MaxDays: 1, Granularity: GranularityHour, Options: []Granularity{GranularityHour}},
	{MaxDays: 31, Granularity: GranularityDate, Options: []Granularity{GranularityDate, GranularityWeek}},
	{MaxDays: 60, Granularity: GranularityDate, Options: []Granularity{GranularityDate}},
	{Granularity: GranularityMonth, Options: []Granularity{GranularityDate, GranularityWeek, GranularityMonth}},
}}

// YearTierPolicy adds a YEAR bucket for spans of a year or more. Test
// fixtures in the source system expect this tier while its production
// resolver never had the branch; it stays opt-in until that conflict is
// settled.
var YearTierPolicy = PeriodPolicy{Rows: []PolicyRow{
	{MaxDays: 1, Granularity: GranularityHour, Options: []Granularity{GranularityHour}},
	{MaxDays: 31, Granularity: GranularityDate, Options: []Granularity{GranularityDate, GranularityWeek}},
	{MaxDays: 60, Granularity: GranularityDate, Options: []Granularity{GranularityDate}},
	{MaxDays: 365, Granularity: GranularityMonth, Options: []Granularity{GranularityDate, GranularityWeek, GranularityMonth}},
	{Granularity: GranularityYear, Options: []Granularity{GranularityDate, GranularityWeek, GranularityMonth, GranularityYear}},
}}

// Resolve picks the default granularity and legal options for a span.
func (p PeriodPolicy) Resolve(r DateRange) (Granularity, []Granularity) {
	days := r.Days()
	for _, row := range p.Rows {
		if row.MaxDays == 0 || days <= row.MaxDays {
			return row.Granularity, row.Options
		}
	}
	// Unreachable with a well-formed policy; degrade to daily buckets.
	return GranularityDate, []Granularity{GranularityDate}
}

// ResolveRange determines the span the resolver works on. Explicit date
// filters win; otherwise the span is the min/max of the unfiltered set, and
// with no transactions at all it is the current calendar month.
func ResolveRange(all []core.Transaction, filters FilterSet, now time.Time) DateRange {
	var start, end core.Date
	explicit := false
	for _, f := range filters {
		if f.Field != FieldDate || f.Value.Kind() != ValueDate {
			continue
		}
		v := f.Value.Date()
		switch f.Operator {
		case OpEq:
			start, end = v, v
			explicit = true
		case OpGte, OpGt:
			start = v
			explicit = true
		case OpLte, OpLt:
			end = v
			explicit = true
		}
	}

	if !explicit {
		start, end = transactionSpan(all)
	}
	if start.IsZero() || end.IsZero() {
		lo, hi := transactionSpan(all)
		if start.IsZero() {
			start = lo
		}
		if end.IsZero() {
			end = hi
		}
	}
	if start.IsZero() || end.IsZero() {
		y, m, _ := now.Date()
		start = core.NewDate(y, int(m), 1)
		end = core.Date{Time: start.AddDate(0, 1, -1)}
	}
	return DateRange{Start: start.StartOfDay(), End: end.EndOfDay()}
}

func transactionSpan(txs []core.Transaction) (core.Date, core.Date) {
	var lo, hi core.Date
	for _, t := range txs {
		if lo.IsZero() || t.Date.Before(lo.Time) {
			lo = t.Date
		}
		if hi.IsZero() || t.Date.After(hi.Time) {
			hi = t.Date
		}
	}
	return lo, hi
}

// PeriodGroup is one calendar bucket; Key identifies it for display.
type PeriodGroup struct {
	Key          string
	Transactions []core.Transaction
}

// GroupByPeriod buckets the sequence at the given granularity in a single
// pass. Bucket order follows first-seen order of the input; callers re-sort
// as needed.
func GroupByPeriod(txs []core.Transaction, g Granularity) []PeriodGroup {
	var groups []PeriodGroup
	index := make(map[string]int)
	for _, t := range txs {
		key := PeriodKey(t.Date, g)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, PeriodGroup{Key: key})
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
	}
	return groups
}

// PeriodKey formats the bucket identifier for a date at a granularity.
// Weeks run Monday through Sunday.
func PeriodKey(d core.Date, g Granularity) string {
	switch g {
	case GranularityHour:
		return d.Format("02 Jan 2006 15:00")
	case GranularityDate:
		return d.Format("Mon, 02 Jan 2006")
	case GranularityWeek:
		monday := weekStart(d)
		sunday := monday.AddDate(0, 0, 6)
		return monday.Format("02 Jan") + " - " + sunday.Format("02 Jan 2006")
	case GranularityMonth:
		return d.Format("Jan 2006")
	case GranularityYear:
		return d.Format("2006")
	}
	return d.Format("2006-01-02")
}

// weekStart returns the Monday of the date's week, at midnight.
func weekStart(d core.Date) time.Time {
	sd := d.StartOfDay()
	offset := (int(sd.Weekday()) + 6) % 7
	return sd.AddDate(0, 0, -offset)
}
