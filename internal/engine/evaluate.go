package engine

import (
	"strings"

	"pesatrack/internal/core"
)

// Evaluate decides whether one transaction satisfies one filter. It is total:
// unsupported field/operator combinations and malformed operands evaluate to
// false instead of panicking.
func Evaluate(t core.Transaction, f Filter) bool {
	switch f.Field {
	case FieldHour:
		return evaluateHour(t, f)
	case FieldMode:
		return evaluateMode(t, f)
	case FieldDayOfWeek:
		return evaluateDayOfWeek(t, f)
	case FieldDate:
		return evaluateDate(t, f)
	case FieldAmount:
		// Magnitude comparison on both sides: sign is only reachable via mode.
		return compareInt64(t.Amount.Abs(), f.Operator, absCents(f.Value.cents))
	case FieldBalance:
		return compareInt64(t.Balance.Cents, f.Operator, f.Value.cents)
	case FieldAccount:
		return evaluateString(t.Account, f)
	case FieldDescription:
		return evaluateString(t.Description, f)
	case FieldType:
		return evaluateString(string(t.Type), f)
	case FieldCategory:
		// Substring searches run against the raw composite string so a term
		// can span the "Primary: Secondary" halves.
		if f.Operator == OpContains || f.Operator == OpContainsAny {
			return evaluateString(t.Category, f)
		}
		primary, _ := core.SplitCategory(t.Category)
		return evaluateString(primary, f)
	case FieldSubcategory:
		_, secondary := core.SplitCategory(t.Category)
		return evaluateString(secondary, f)
	}
	return false
}

// Apply filters the sequence through the set. A transaction passes iff every
// AND filter holds and, when an OR-group exists, at least one OR filter
// holds. An empty set is the identity.
func Apply(txs []core.Transaction, filters FilterSet) []core.Transaction {
	if len(filters) == 0 {
		return txs
	}
	var andGroup, orGroup []Filter
	for _, f := range filters {
		if f.IsOr() {
			orGroup = append(orGroup, f)
		} else {
			andGroup = append(andGroup, f)
		}
	}

	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if matchesAll(t, andGroup) && matchesAny(t, orGroup) {
			out = append(out, t)
		}
	}
	return out
}

func matchesAll(t core.Transaction, group []Filter) bool {
	for _, f := range group {
		if !Evaluate(t, f) {
			return false
		}
	}
	return true
}

func matchesAny(t core.Transaction, group []Filter) bool {
	if len(group) == 0 {
		return true
	}
	for _, f := range group {
		if Evaluate(t, f) {
			return true
		}
	}
	return false
}

// evaluateHour compares the transaction's local time-of-day against an HH:MM
// operand on the transaction's own calendar day.
func evaluateHour(t core.Transaction, f Filter) bool {
	if f.Value.kind != ValueTime {
		return false
	}
	return compareInt64(int64(t.Date.MinutesOfDay()), f.Operator, int64(f.Value.minutes))
}

func evaluateMode(t core.Transaction, f Filter) bool {
	mode := ModeOut
	if t.Inflow() {
		mode = ModeIn
	}
	switch f.Operator {
	case OpEq:
		return mode == f.Value.text
	case OpNeq:
		return mode != f.Value.text
	}
	return false
}

func evaluateDayOfWeek(t core.Transaction, f Filter) bool {
	want := normalize(f.Value.text)
	got := normalize(t.Date.Weekday().String())
	switch f.Operator {
	case OpEq:
		return got == want
	case OpNeq:
		return got != want
	}
	return false
}

// evaluateDate: equality is same-calendar-day, >= floors and <= ceils the
// operand so boundary days are fully inclusive, and </> compare raw instants.
func evaluateDate(t core.Transaction, f Filter) bool {
	if f.Value.kind != ValueDate {
		return false
	}
	v := f.Value.date
	switch f.Operator {
	case OpEq:
		return t.Date.SameDay(v)
	case OpNeq:
		return !t.Date.SameDay(v)
	case OpLt:
		return t.Date.Before(v.Time)
	case OpGt:
		return t.Date.After(v.Time)
	case OpGte:
		return !t.Date.Before(v.StartOfDay().Time)
	case OpLte:
		return !t.Date.After(v.EndOfDay().Time)
	}
	return false
}

func evaluateString(subject string, f Filter) bool {
	s := normalize(subject)
	switch f.Operator {
	case OpEq:
		return s == normalize(f.Value.text)
	case OpNeq:
		return s != normalize(f.Value.text)
	case OpContains:
		return strings.Contains(s, normalize(f.Value.text))
	case OpContainsAny:
		for _, term := range valueItems(f.Value) {
			if strings.Contains(s, normalize(term)) {
				return true
			}
		}
		return false
	case OpIn:
		return stringInSet(s, f.Value)
	case OpNotIn:
		return !stringInSet(s, f.Value)
	}
	return false
}

func stringInSet(normalized string, v Value) bool {
	for _, item := range valueItems(v) {
		if normalized == normalize(item) {
			return true
		}
	}
	return false
}

// valueItems accepts either a list operand or a comma-delimited string.
func valueItems(v Value) []string {
	if v.kind == ValueList {
		return v.list
	}
	if v.kind == ValueText {
		return strings.Split(v.text, ",")
	}
	return nil
}

func compareInt64(subject int64, op Operator, operand int64) bool {
	switch op {
	case OpEq:
		return subject == operand
	case OpNeq:
		return subject != operand
	case OpLt:
		return subject < operand
	case OpLte:
		return subject <= operand
	case OpGt:
		return subject > operand
	case OpGte:
		return subject >= operand
	}
	return false
}

func absCents(c int64) int64 {
	if c < 0 {
		return -c
	}
	return c
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
