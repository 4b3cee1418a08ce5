// Package engine implements the transaction filter-and-aggregation engine:
// structured predicates over transactions, reconciliation of incoming filters
// into an active set, calendar-period bucketing, and the aggregate summaries
// every view reads. Everything here is a pure function over in-memory slices.
package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pesatrack/internal/core"
)

// Field identifies the transaction attribute a filter constrains. Category,
// subcategory, mode, hour and dayOfWeek are virtual: they are derived from
// stored fields at evaluation time.
type Field string

const (
	FieldAccount     Field = "account"
	FieldDescription Field = "description"
	FieldType        Field = "transactionType"
	FieldAmount      Field = "amount"
	FieldBalance     Field = "balance"
	FieldDate        Field = "date"
	FieldCategory    Field = "category"
	FieldSubcategory Field = "subcategory"
	FieldMode        Field = "mode"
	FieldHour        Field = "hour"
	FieldDayOfWeek   Field = "dayOfWeek"
)

type Operator string

const (
	OpEq          Operator = "=="
	OpNeq         Operator = "!="
	OpLt          Operator = "<"
	OpLte         Operator = "<="
	OpGt          Operator = ">"
	OpGte         Operator = ">="
	OpContains    Operator = "contains"
	OpContainsAny Operator = "contains-any"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not-in"
)

type Combinator string

const (
	And Combinator = "and"
	Or  Combinator = "or"
)

// Money-direction tags for the virtual mode field.
const (
	ModeIn  = "in"
	ModeOut = "out"
)

// ValueKind discriminates the payload carried by a filter Value.
type ValueKind int

const (
	ValueText ValueKind = iota
	ValueAmount
	ValueTime
	ValueDate
	ValueList
)

// Value is the tagged filter operand. Constructing one through the typed
// helpers below means invalid field/operator/value combinations are rejected
// up front instead of silently evaluating to false.
type Value struct {
	kind    ValueKind
	text    string
	cents   int64
	minutes int
	date    core.Date
	list    []string
}

// Text builds a string operand.
func Text(s string) Value {
	return Value{kind: ValueText, text: s}
}

// Amount builds a monetary operand from cents.
func Amount(cents int64) Value {
	return Value{kind: ValueAmount, cents: cents}
}

// TimeOfDay builds an operand from an "HH:MM" string.
func TimeOfDay(s string) (Value, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Value{}, fmt.Errorf("time of day %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return Value{}, fmt.Errorf("time of day %q: bad hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return Value{}, fmt.Errorf("time of day %q: bad minute", s)
	}
	return Value{kind: ValueTime, minutes: h*60 + m, text: s}, nil
}

// DateValue builds a date/instant operand.
func DateValue(d core.Date) Value {
	return Value{kind: ValueDate, date: d}
}

// List builds a membership operand. A single comma-delimited string is
// split into items.
func List(items ...string) Value {
	if len(items) == 1 && strings.Contains(items[0], ",") {
		items = strings.Split(items[0], ",")
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return Value{kind: ValueList, list: out}
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) Text() string    { return v.text }
func (v Value) Cents() int64    { return v.cents }
func (v Value) Minutes() int    { return v.minutes }
func (v Value) Date() core.Date { return v.date }
func (v Value) Items() []string { return v.list }

// Equal reports structural equality of two operands.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ValueText:
		return v.text == other.text
	case ValueAmount:
		return v.cents == other.cents
	case ValueTime:
		return v.minutes == other.minutes
	case ValueDate:
		return v.date.Equal(other.date.Time)
	case ValueList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != other.list[i] {
				return false
			}
		}
		return true
	}
	return false
}

// Filter is one (field, operator, value, combinator) condition. Filters are
// plain values with no identity beyond structural equality.
type Filter struct {
	Field      Field
	Operator   Operator
	Value      Value
	Combinator Combinator // And when unset
}

// FilterSet is the active ordered collection of filters. At evaluation time
// it is partitioned into an AND-group and an OR-group.
type FilterSet []Filter

var ErrInvalidFilter = errors.New("invalid filter")

var relationalOps = map[Operator]bool{
	OpEq: true, OpNeq: true, OpLt: true, OpLte: true, OpGt: true, OpGte: true,
}

// NewFilter validates the field/operator/value combination and returns the
// filter with the default AND combinator.
func NewFilter(field Field, op Operator, value Value) (Filter, error) {
	f := Filter{Field: field, Operator: op, Value: value, Combinator: And}
	if err := f.validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func (f Filter) validate() error {
	switch f.Field {
	case FieldHour:
		if f.Value.kind != ValueTime || !relationalOps[f.Operator] {
			return fmt.Errorf("%w: %s %s wants an HH:MM operand", ErrInvalidFilter, f.Field, f.Operator)
		}
	case FieldMode:
		if f.Operator != OpEq && f.Operator != OpNeq {
			return fmt.Errorf("%w: %s supports only == and !=", ErrInvalidFilter, f.Field)
		}
		if f.Value.kind != ValueText || (f.Value.text != ModeIn && f.Value.text != ModeOut) {
			return fmt.Errorf("%w: %s wants %q or %q", ErrInvalidFilter, f.Field, ModeIn, ModeOut)
		}
	case FieldDayOfWeek:
		if f.Operator != OpEq && f.Operator != OpNeq {
			return fmt.Errorf("%w: %s supports only == and !=", ErrInvalidFilter, f.Field)
		}
		if f.Value.kind != ValueText {
			return fmt.Errorf("%w: %s wants a weekday name", ErrInvalidFilter, f.Field)
		}
	case FieldDate:
		if f.Value.kind != ValueDate || !relationalOps[f.Operator] {
			return fmt.Errorf("%w: %s %s wants a date operand", ErrInvalidFilter, f.Field, f.Operator)
		}
	case FieldAmount, FieldBalance:
		if f.Value.kind != ValueAmount || !relationalOps[f.Operator] {
			return fmt.Errorf("%w: %s %s wants a monetary operand", ErrInvalidFilter, f.Field, f.Operator)
		}
	case FieldAccount, FieldDescription, FieldType, FieldCategory, FieldSubcategory:
		switch f.Operator {
		case OpEq, OpNeq, OpContains:
			if f.Value.kind != ValueText {
				return fmt.Errorf("%w: %s %s wants a string operand", ErrInvalidFilter, f.Field, f.Operator)
			}
		case OpContainsAny, OpIn, OpNotIn:
			if f.Value.kind != ValueList && f.Value.kind != ValueText {
				return fmt.Errorf("%w: %s %s wants a list operand", ErrInvalidFilter, f.Field, f.Operator)
			}
		default:
			return fmt.Errorf("%w: %s does not support %s", ErrInvalidFilter, f.Field, f.Operator)
		}
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, f.Field)
	}
	return nil
}

// WithCombinator returns a copy of the filter with the given combinator.
func (f Filter) WithCombinator(c Combinator) Filter {
	f.Combinator = c
	return f
}

// Equal reports full structural equality, combinator included.
func (f Filter) Equal(other Filter) bool {
	return f.Field == other.Field &&
		f.Operator == other.Operator &&
		f.combinator() == other.combinator() &&
		f.Value.Equal(other.Value)
}

// combinator treats the zero value as AND.
func (f Filter) combinator() Combinator {
	if f.Combinator == Or {
		return Or
	}
	return And
}

// IsOr reports whether the filter belongs to the OR-group.
func (f Filter) IsOr() bool {
	return f.combinator() == Or
}
