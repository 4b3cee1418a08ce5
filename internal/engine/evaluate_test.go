package engine

import (
	"testing"

	"pesatrack/internal/core"
)

func tx(id string, date core.Date, cents int64, account, category string) core.Transaction {
	return core.Transaction{
		ID:       id,
		Date:     date,
		Amount:   core.Money{Cents: cents},
		Account:  account,
		Category: category,
		Type:     core.TypePayment,
	}
}

func mustFilter(t *testing.T, field Field, op Operator, v Value) Filter {
	t.Helper()
	f, err := NewFilter(field, op, v)
	if err != nil {
		t.Fatalf("NewFilter(%s %s): %v", field, op, err)
	}
	return f
}

func mustTime(t *testing.T, s string) Value {
	t.Helper()
	v, err := TimeOfDay(s)
	if err != nil {
		t.Fatalf("TimeOfDay(%q): %v", s, err)
	}
	return v
}

func TestEvaluateHour(t *testing.T) {
	morning := tx("1", core.NewDateTime(2025, 3, 10, 8, 30), -100, "X", "Food")
	evening := tx("2", core.NewDateTime(2025, 3, 10, 21, 15), -100, "X", "Food")

	cases := []struct {
		op   Operator
		val  string
		tx   core.Transaction
		want bool
	}{
		{OpLt, "12:00", morning, true},
		{OpLt, "12:00", evening, false},
		{OpGte, "21:15", evening, true},
		{OpGt, "21:15", evening, false},
		{OpEq, "08:30", morning, true},
		{OpNeq, "08:30", evening, true},
	}
	for i, tc := range cases {
		f := mustFilter(t, FieldHour, tc.op, mustTime(t, tc.val))
		if got := Evaluate(tc.tx, f); got != tc.want {
			t.Fatalf("case %d: hour %s %s = %v, want %v", i, tc.op, tc.val, got, tc.want)
		}
	}
}

func TestEvaluateMode(t *testing.T) {
	inflow := tx("1", core.NewDate(2025, 1, 1), 500, "X", "")
	outflow := tx("2", core.NewDate(2025, 1, 1), -500, "X", "")

	if !Evaluate(inflow, mustFilter(t, FieldMode, OpEq, Text(ModeIn))) {
		t.Fatal("inflow should match mode == in")
	}
	if Evaluate(outflow, mustFilter(t, FieldMode, OpEq, Text(ModeIn))) {
		t.Fatal("outflow should not match mode == in")
	}
	if !Evaluate(outflow, mustFilter(t, FieldMode, OpNeq, Text(ModeIn))) {
		t.Fatal("outflow should match mode != in")
	}
}

func TestEvaluateDayOfWeek(t *testing.T) {
	// 2025-03-10 is a Monday
	monday := tx("1", core.NewDate(2025, 3, 10), -100, "X", "")

	if !Evaluate(monday, mustFilter(t, FieldDayOfWeek, OpEq, Text("Monday"))) {
		t.Fatal("expected Monday match")
	}
	if !Evaluate(monday, mustFilter(t, FieldDayOfWeek, OpEq, Text("  monday "))) {
		t.Fatal("weekday match should trim and ignore case")
	}
	if Evaluate(monday, mustFilter(t, FieldDayOfWeek, OpEq, Text("Tuesday"))) {
		t.Fatal("Monday should not match Tuesday")
	}
}

func TestEvaluateDateCalendarDay(t *testing.T) {
	noon := tx("1", core.NewDateTime(2025, 3, 10, 12, 0), -100, "X", "")
	filterAtNight := mustFilter(t, FieldDate, OpEq, DateValue(core.NewDateTime(2025, 3, 10, 23, 45)))

	// Equality ignores time-of-day on both sides.
	if !Evaluate(noon, filterAtNight) {
		t.Fatal("date == should compare calendar days, not instants")
	}
	if Evaluate(noon, mustFilter(t, FieldDate, OpEq, DateValue(core.NewDate(2025, 3, 11)))) {
		t.Fatal("different day should not match")
	}
}

func TestEvaluateDateBounds(t *testing.T) {
	early := tx("1", core.NewDateTime(2025, 3, 10, 0, 30), -100, "X", "")
	late := tx("2", core.NewDateTime(2025, 3, 10, 23, 30), -100, "X", "")
	bound := DateValue(core.NewDateTime(2025, 3, 10, 12, 0))

	// >= floors and <= ceils so the boundary day is fully inclusive.
	if !Evaluate(early, mustFilter(t, FieldDate, OpGte, bound)) {
		t.Fatal(">= should include the whole boundary day")
	}
	if !Evaluate(late, mustFilter(t, FieldDate, OpLte, bound)) {
		t.Fatal("<= should include the whole boundary day")
	}
	// Strict < and > compare raw instants.
	if Evaluate(late, mustFilter(t, FieldDate, OpLt, bound)) {
		t.Fatal("< should compare raw instants")
	}
	if !Evaluate(late, mustFilter(t, FieldDate, OpGt, bound)) {
		t.Fatal("> should compare raw instants")
	}
}

func TestEvaluateAmountAbsolute(t *testing.T) {
	outflow := tx("1", core.NewDate(2025, 1, 1), -25000, "X", "")

	cases := []struct {
		op    Operator
		cents int64
		want  bool
	}{
		{OpGt, 20000, true},  // |-250| > 200
		{OpLt, 20000, false},
		{OpEq, 25000, true},
		{OpLte, 25000, true},
		{OpGte, -25000, true}, // operand magnitude is used too
	}
	for i, tc := range cases {
		f := mustFilter(t, FieldAmount, tc.op, Amount(tc.cents))
		if got := Evaluate(outflow, f); got != tc.want {
			t.Fatalf("case %d: amount %s %d = %v, want %v", i, tc.op, tc.cents, got, tc.want)
		}
	}
}

func TestEvaluateCategoryDecomposition(t *testing.T) {
	composite := tx("1", core.NewDate(2025, 1, 1), -100, "X", "Food: Groceries")
	plain := tx("2", core.NewDate(2025, 1, 1), -100, "X", "Transport")

	cases := []struct {
		field Field
		op    Operator
		val   Value
		tx    core.Transaction
		want  bool
	}{
		{FieldCategory, OpEq, Text("Food"), composite, true},
		{FieldCategory, OpEq, Text("Food: Groceries"), composite, false},
		{FieldSubcategory, OpEq, Text("Groceries"), composite, true},
		{FieldSubcategory, OpEq, Text(""), plain, true},
		// contains on category searches the raw composite string
		{FieldCategory, OpContains, Text("food: groc"), composite, true},
		{FieldCategory, OpContainsAny, List("groceries", "fuel"), composite, true},
		{FieldCategory, OpIn, List("Food", "Transport"), composite, true},
		{FieldCategory, OpNotIn, List("Food"), plain, true},
	}
	for i, tc := range cases {
		f := mustFilter(t, tc.field, tc.op, tc.val)
		if got := Evaluate(tc.tx, f); got != tc.want {
			t.Fatalf("case %d: %s %s = %v, want %v", i, tc.field, tc.op, got, tc.want)
		}
	}
}

func TestEvaluateStringMatching(t *testing.T) {
	rec := tx("1", core.NewDate(2025, 1, 1), -100, "  ACME Store ", "")

	if !Evaluate(rec, mustFilter(t, FieldAccount, OpEq, Text("acme store"))) {
		t.Fatal("string equality should trim and ignore case")
	}
	if !Evaluate(rec, mustFilter(t, FieldAccount, OpContains, Text("Acme"))) {
		t.Fatal("contains should ignore case")
	}
	if !Evaluate(rec, mustFilter(t, FieldAccount, OpIn, Text("acme store, other shop"))) {
		t.Fatal("in should accept a comma-delimited string")
	}
}

func TestEvaluateIsTotal(t *testing.T) {
	rec := tx("1", core.NewDate(2025, 1, 1), -100, "X", "Food")

	// Hand-built filters that bypass construction checks must evaluate to
	// false, never panic.
	bad := []Filter{
		{Field: FieldAccount, Operator: OpGt, Value: Text("x")},
		{Field: FieldAmount, Operator: OpContains, Value: Amount(100)},
		{Field: FieldMode, Operator: OpLt, Value: Text(ModeIn)},
		{Field: FieldDate, Operator: OpEq, Value: Text("not a date")},
		{Field: FieldHour, Operator: OpEq, Value: Text("09:00")},
		{Field: Field("bogus"), Operator: OpEq, Value: Text("x")},
	}
	for i, f := range bad {
		if Evaluate(rec, f) {
			t.Fatalf("case %d: malformed filter should evaluate false", i)
		}
	}
}

func TestNewFilterRejectsInvalidCombinations(t *testing.T) {
	cases := []struct {
		field Field
		op    Operator
		val   Value
	}{
		{FieldMode, OpLt, Text(ModeIn)},
		{FieldMode, OpEq, Text("sideways")},
		{FieldAmount, OpContains, Amount(1)},
		{FieldAmount, OpEq, Text("100")},
		{FieldDate, OpIn, DateValue(core.NewDate(2025, 1, 1))},
		{FieldAccount, OpEq, Amount(1)},
		{Field("bogus"), OpEq, Text("x")},
	}
	for i, tc := range cases {
		if _, err := NewFilter(tc.field, tc.op, tc.val); err == nil {
			t.Fatalf("case %d: expected construction error for %s %s", i, tc.field, tc.op)
		}
	}
}

func TestApplyIdentityAndGroups(t *testing.T) {
	txs := []core.Transaction{
		tx("1", core.NewDate(2025, 1, 1), 500, "A", "Salary"),
		tx("2", core.NewDate(2025, 1, 2), -200, "B", "Food"),
		tx("3", core.NewDate(2025, 1, 3), -300, "C", "Food"),
	}

	if got := Apply(txs, nil); len(got) != len(txs) {
		t.Fatalf("empty set should be identity, got %d records", len(got))
	}

	// OR-group alone: match A or B.
	orA := mustFilter(t, FieldAccount, OpEq, Text("A")).WithCombinator(Or)
	orB := mustFilter(t, FieldAccount, OpEq, Text("B")).WithCombinator(Or)
	got := Apply(txs, FilterSet{orA, orB})
	if len(got) != 2 {
		t.Fatalf("expected 2 matches for A or B, got %d", len(got))
	}

	// AND-group combines with the OR-group conjunctively.
	outOnly := mustFilter(t, FieldMode, OpEq, Text(ModeOut))
	got = Apply(txs, FilterSet{outOnly, orA, orB})
	if len(got) != 1 || got[0].Account != "B" {
		t.Fatalf("expected only B to pass (out and (A or B)), got %v", got)
	}
}

func TestApplyIdempotent(t *testing.T) {
	txs := []core.Transaction{
		tx("1", core.NewDate(2025, 1, 1), 500, "A", ""),
		tx("2", core.NewDate(2025, 1, 2), -200, "B", ""),
	}
	set := FilterSet{mustFilter(t, FieldAccount, OpEq, Text("B"))}

	once := Apply(txs, set)
	twice := Apply(once, set)
	if len(once) != len(twice) {
		t.Fatalf("filtering is not idempotent: %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("record %d changed across idempotent filtering", i)
		}
	}
}
