package engine

import (
	"math"
	"testing"

	"pesatrack/internal/core"
)

func txb(id string, date core.Date, cents int64, account, category string, balance int64) core.Transaction {
	rec := tx(id, date, cents, account, category)
	rec.Balance = core.Money{Cents: balance}
	return rec
}

func TestAggregateTotals(t *testing.T) {
	txs := []core.Transaction{
		tx("1", core.NewDate(2025, 1, 1), 50000, "Employer", "Income"),
		tx("2", core.NewDate(2025, 1, 2), -20000, "Shop", "Food"),
		tx("3", core.NewDate(2025, 1, 3), -30000, "Shop", "Food"),
	}

	data := Aggregate(txs)
	if data.Totals.Count != 3 {
		t.Fatalf("expected count 3, got %d", data.Totals.Count)
	}
	if data.Totals.Amount.Cents != 0 {
		t.Fatalf("expected net 0, got %d", data.Totals.Amount.Cents)
	}
	if data.Totals.In.Count != 1 || data.Totals.In.Amount.Cents != 50000 {
		t.Fatalf("unexpected in totals %+v", data.Totals.In)
	}
	if data.Totals.Out.Count != 2 || data.Totals.Out.Amount.Cents != -50000 {
		t.Fatalf("unexpected out totals %+v", data.Totals.Out)
	}
	// Direction sums reconstruct the net total.
	if data.Totals.In.Amount.Cents+data.Totals.Out.Amount.Cents != data.Totals.Amount.Cents {
		t.Fatal("in + out must equal the net total")
	}
}

func TestAggregateEmptySet(t *testing.T) {
	data := Aggregate(nil)
	if data.Totals.Count != 0 || data.Totals.Amount.Cents != 0 {
		t.Fatalf("empty set should yield zero totals, got %+v", data.Totals)
	}
	if data.BalanceTrend != nil {
		t.Fatalf("empty set should yield no trend, got %v", data.BalanceTrend)
	}
}

func TestBalanceFromChronologicallyLast(t *testing.T) {
	// Input deliberately out of order.
	txs := []core.Transaction{
		txb("2", core.NewDate(2025, 1, 20), -100, "A", "", 7000),
		txb("3", core.NewDate(2025, 2, 5), -100, "A", "", 6500),
		txb("1", core.NewDate(2025, 1, 1), 500, "A", "", 8000),
	}

	data := Aggregate(txs)
	if data.Balance.Cents != 6500 {
		t.Fatalf("balance should come from the chronologically last record, got %d", data.Balance.Cents)
	}
	last := data.BalanceTrend[len(data.BalanceTrend)-1]
	if last.Balance.Cents != 6500 {
		t.Fatalf("trend should end at the final balance, got %d", last.Balance.Cents)
	}
}

func TestTrendSamplingStride(t *testing.T) {
	var txs []core.Transaction
	for i := 0; i < 350; i++ {
		d := core.Date{Time: core.NewDate(2024, 1, 1).AddDate(0, 0, i)}
		txs = append(txs, txb("x", d, -100, "A", "", int64(100000-i)))
	}

	trend := sampleTrend(txs, MaxTrendPoints)
	// stride = 350/100 = 3 so at most ceil(350/3)+1 points.
	if len(trend) > MaxTrendPoints+MaxTrendPoints/2 {
		t.Fatalf("trend too dense: %d points", len(trend))
	}
	if trend[len(trend)-1].Balance.Cents != int64(100000-349) {
		t.Fatal("final transaction must survive sampling")
	}
}

func TestAggregateSampledTrendCap(t *testing.T) {
	var txs []core.Transaction
	for i := 0; i < 10; i++ {
		d := core.Date{Time: core.NewDate(2025, 3, 1).AddDate(0, 0, i)}
		txs = append(txs, txb("x", d, -100, "A", "", int64(5000-i)))
	}

	data := AggregateSampled(txs, 3)
	// stride = 10/3 = 3: indices 0, 3, 6, 9; the last stride hit is final.
	if len(data.BalanceTrend) != 4 {
		t.Fatalf("trend points = %d, want 4", len(data.BalanceTrend))
	}
	if data.BalanceTrend[len(data.BalanceTrend)-1].Balance.Cents != 5000-9 {
		t.Fatal("final transaction must survive sampling")
	}

	// Non-positive caps fall back to the default.
	loose := AggregateSampled(txs, 0)
	if len(loose.BalanceTrend) != 10 {
		t.Fatalf("default cap should keep all 10 points, got %d", len(loose.BalanceTrend))
	}
}

func TestGroupSummariesPercentages(t *testing.T) {
	txs := []core.Transaction{
		tx("1", core.NewDate(2025, 1, 1), -30000, "Shop", "Food"),
		tx("2", core.NewDate(2025, 1, 2), -10000, "Fuel Co", "Transport"),
		tx("3", core.NewDate(2025, 1, 3), -10000, "Shop", "Food"),
		tx("4", core.NewDate(2025, 1, 4), 50000, "Employer", "Income"),
	}

	data := Aggregate(txs)
	out := data.ByAccount.Out
	if len(out) != 2 {
		t.Fatalf("expected 2 out account groups, got %d", len(out))
	}
	if out[0].Name != "Shop" || out[0].Amount.Cents != 40000 || out[0].Count != 2 {
		t.Fatalf("unexpected first group %+v", out[0])
	}

	var amountPct, countPct float64
	for _, g := range out {
		amountPct += g.AmountPercentage
		countPct += g.CountPercentage
	}
	if math.Abs(amountPct-100) > 1e-9 || math.Abs(countPct-100) > 1e-9 {
		t.Fatalf("direction percentages should sum to 100, got %f and %f", amountPct, countPct)
	}

	in := data.ByAccount.In
	if len(in) != 1 || in[0].AmountPercentage != 100 {
		t.Fatalf("single in group should hold 100%%, got %+v", in)
	}

	// Category groups bucket on the primary half only.
	if data.ByCategory.Out[0].Name != "Food" {
		t.Fatalf("expected primary category bucket, got %q", data.ByCategory.Out[0].Name)
	}
}

func TestRankings(t *testing.T) {
	groups := []GroupSummary{
		{Name: "A", Amount: core.Money{Cents: 100}, Count: 5},
		{Name: "B", Amount: core.Money{Cents: 300}, Count: 1},
		{Name: "C", Amount: core.Money{Cents: 300}, Count: 2},
	}

	byAmount := RankByAmount(groups)
	if byAmount[0].Name != "B" || byAmount[1].Name != "C" || byAmount[2].Name != "A" {
		t.Fatalf("amount ranking wrong: %v", names(byAmount))
	}
	byCount := RankByCount(groups)
	if byCount[0].Name != "A" || byCount[1].Name != "C" {
		t.Fatalf("count ranking wrong: %v", names(byCount))
	}
	// The input slice keeps its encounter order.
	if groups[0].Name != "A" {
		t.Fatal("ranking must not mutate its input")
	}
}

func names(groups []GroupSummary) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Name
	}
	return out
}

func TestPeriodAverages(t *testing.T) {
	txs := []core.Transaction{
		tx("1", core.NewDate(2025, 1, 10), -30000, "A", ""), // Jan: out 300
		tx("2", core.NewDate(2025, 2, 10), -10000, "B", ""), // Feb: out 100
		tx("3", core.NewDate(2025, 3, 10), 60000, "C", ""),  // Mar: in 600, no out
	}

	averages := PeriodAverages(txs, []Granularity{GranularityMonth})
	avg := averages[GranularityMonth]
	// Out: 400 over 2 non-empty out buckets; March does not dilute.
	if avg.Out.Cents != 20000 {
		t.Fatalf("expected out average 200, got %d", avg.Out.Cents)
	}
	// In: 600 over 1 non-empty in bucket.
	if avg.In.Cents != 60000 {
		t.Fatalf("expected in average 600, got %d", avg.In.Cents)
	}
}

func TestPeriodAveragesZeroBuckets(t *testing.T) {
	averages := PeriodAverages(nil, []Granularity{GranularityDate})
	avg := averages[GranularityDate]
	if avg.In.Cents != 0 || avg.Out.Cents != 0 {
		t.Fatalf("empty set should average zero, got %+v", avg)
	}
}
