package engine

import (
	"sort"

	"pesatrack/internal/core"
)

// MaxTrendPoints bounds the balance trend so charts never render more than
// this many samples regardless of dataset size.
const MaxTrendPoints = 100

type (
	// DirectionTotals carries the count and signed sum for one money
	// direction.
	DirectionTotals struct {
		Count  int
		Amount core.Money
	}

	// Totals summarizes the whole filtered set. Amount is the signed sum of
	// every transaction; In and Out split it by direction.
	Totals struct {
		Count  int
		Amount core.Money
		In     DirectionTotals
		Out    DirectionTotals
	}

	TrendPoint struct {
		Date    core.Date
		Balance core.Money
	}

	// GroupSummary reports one account or category bucket within a money
	// direction. Amount is the absolute sum; the percentages are shares of
	// the direction's total amount and total count.
	GroupSummary struct {
		Name             string
		Amount           core.Money
		Count            int
		AmountPercentage float64
		CountPercentage  float64
		Transactions     []core.Transaction
	}

	// GroupSummaries holds the per-direction buckets in encounter order.
	GroupSummaries struct {
		In  []GroupSummary
		Out []GroupSummary
	}

	// PeriodAverage is the mean in/out magnitude per non-empty bucket at one
	// granularity.
	PeriodAverage struct {
		In  core.Money
		Out core.Money
	}

	// CalculatedData is the aggregate block of the derived bundle.
	CalculatedData struct {
		Totals       Totals
		Balance      core.Money
		BalanceTrend []TrendPoint
		ByAccount    GroupSummaries
		ByCategory   GroupSummaries
	}
)

// Aggregate computes totals, the balance trend, and per-account and
// per-category group summaries over an already-filtered set.
func Aggregate(txs []core.Transaction) CalculatedData {
	return AggregateSampled(txs, MaxTrendPoints)
}

// AggregateSampled is Aggregate with an explicit cap on balance-trend
// samples. Values below one fall back to MaxTrendPoints.
func AggregateSampled(txs []core.Transaction, trendPoints int) CalculatedData {
	if trendPoints < 1 {
		trendPoints = MaxTrendPoints
	}
	data := CalculatedData{Totals: totalsOf(txs)}

	ordered := chronological(txs)
	if len(ordered) > 0 {
		data.Balance = ordered[len(ordered)-1].Balance
		data.BalanceTrend = sampleTrend(ordered, trendPoints)
	}

	data.ByAccount = groupSummaries(txs, func(t core.Transaction) string { return t.Account })
	// Category buckets use only the primary half of the composite string.
	data.ByCategory = groupSummaries(txs, core.Transaction.PrimaryCategory)
	return data
}

func totalsOf(txs []core.Transaction) Totals {
	var t Totals
	t.Count = len(txs)
	for _, tx := range txs {
		t.Amount.Cents += tx.Amount.Cents
		if tx.Inflow() {
			t.In.Count++
			t.In.Amount.Cents += tx.Amount.Cents
		} else {
			t.Out.Count++
			t.Out.Amount.Cents += tx.Amount.Cents
		}
	}
	return t
}

// chronological returns a date-ascending copy; input order is preserved for
// equal instants.
func chronological(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}

// sampleTrend picks every stride-th point, stride = max(1, n/maxPoints), and
// always keeps the final transaction.
func sampleTrend(ordered []core.Transaction, maxPoints int) []TrendPoint {
	n := len(ordered)
	stride := 1
	if maxPoints > 0 && n/maxPoints > 1 {
		stride = n / maxPoints
	}
	var trend []TrendPoint
	for i := 0; i < n; i += stride {
		trend = append(trend, TrendPoint{Date: ordered[i].Date, Balance: ordered[i].Balance})
	}
	last := ordered[n-1]
	if len(trend) == 0 || !trend[len(trend)-1].Date.Equal(last.Date.Time) ||
		trend[len(trend)-1].Balance != last.Balance {
		trend = append(trend, TrendPoint{Date: last.Date, Balance: last.Balance})
	}
	return trend
}

// groupSummaries buckets by key, split by direction, with percentages of the
// direction's totals. Divisors are guarded so an empty direction yields
// defined (zero) percentages instead of NaN.
func groupSummaries(txs []core.Transaction, key func(core.Transaction) string) GroupSummaries {
	var in, out []core.Transaction
	for _, t := range txs {
		if t.Inflow() {
			in = append(in, t)
		} else {
			out = append(out, t)
		}
	}
	return GroupSummaries{
		In:  summarizeDirection(in, key),
		Out: summarizeDirection(out, key),
	}
}

func summarizeDirection(txs []core.Transaction, key func(core.Transaction) string) []GroupSummary {
	var groups []GroupSummary
	index := make(map[string]int)
	var totalAmount int64
	for _, t := range txs {
		name := key(t)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, GroupSummary{Name: name})
		}
		groups[i].Amount.Cents += t.Amount.Abs()
		groups[i].Count++
		groups[i].Transactions = append(groups[i].Transactions, t)
		totalAmount += t.Amount.Abs()
	}

	amountDivisor := float64(totalAmount)
	if amountDivisor == 0 {
		amountDivisor = 1
	}
	countDivisor := float64(len(txs))
	if countDivisor == 0 {
		countDivisor = 1
	}
	for i := range groups {
		groups[i].AmountPercentage = float64(groups[i].Amount.Cents) / amountDivisor * 100
		groups[i].CountPercentage = float64(groups[i].Count) / countDivisor * 100
	}
	return groups
}

// RankByAmount returns a copy sorted by absolute amount descending. The sort
// is stable: ties keep encounter order.
func RankByAmount(groups []GroupSummary) []GroupSummary {
	out := make([]GroupSummary, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}

// RankByCount returns a copy sorted by transaction count descending, stable.
func RankByCount(groups []GroupSummary) []GroupSummary {
	out := make([]GroupSummary, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// PeriodAverages computes, for each granularity, the mean in/out magnitude
// per bucket. Buckets with no transactions of a direction do not count
// toward that direction's divisor; a zero divisor defaults to 1 so the raw
// total comes back instead of a division by zero.
func PeriodAverages(txs []core.Transaction, options []Granularity) map[Granularity]PeriodAverage {
	averages := make(map[Granularity]PeriodAverage, len(options))
	for _, g := range options {
		groups := GroupByPeriod(txs, g)
		var inTotal, outTotal int64
		var inBuckets, outBuckets int64
		for _, pg := range groups {
			var in, out int64
			for _, t := range pg.Transactions {
				if t.Inflow() {
					in += t.Amount.Abs()
				} else {
					out += t.Amount.Abs()
				}
			}
			inTotal += in
			outTotal += out
			if in > 0 {
				inBuckets++
			}
			if out > 0 {
				outBuckets++
			}
		}
		if inBuckets == 0 {
			inBuckets = 1
		}
		if outBuckets == 0 {
			outBuckets = 1
		}
		averages[g] = PeriodAverage{
			In:  core.Money{Cents: inTotal / inBuckets},
			Out: core.Money{Cents: outTotal / outBuckets},
		}
	}
	return averages
}
