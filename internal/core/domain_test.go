package core

import (
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:      "tx-1",
		Date:    NewDate(2025, 1, 1),
		Amount:  Money{Cents: -1500},
		Account: "Shop",
		Type:    TypePayment,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{ID: "", Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Account: "a"},
		{ID: "x", Date: Date{Time: time.Time{}}, Amount: Money{Cents: 1}, Account: "a"},
		{ID: "x", Date: NewDate(2025, 1, 1), Amount: Money{Cents: 0}, Account: "a"},
		{ID: "x", Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Account: "  "},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateHelpers(t *testing.T) {
	d := NewDateTime(2025, 3, 10, 14, 45)

	if got := d.MinutesOfDay(); got != 14*60+45 {
		t.Fatalf("expected 885 minutes, got %d", got)
	}
	if !d.SameDay(NewDate(2025, 3, 10)) {
		t.Fatal("expected same calendar day")
	}
	if d.SameDay(NewDate(2025, 3, 11)) {
		t.Fatal("different day should not match")
	}
	if got := d.StartOfDay(); got.Hour() != 0 || got.Minute() != 0 {
		t.Fatalf("start of day has time component: %v", got)
	}
	if got := d.EndOfDay(); got.Hour() != 23 || got.Minute() != 59 {
		t.Fatalf("end of day wrong: %v", got)
	}
}

func TestSplitCategory(t *testing.T) {
	cases := []struct {
		in        string
		primary   string
		secondary string
	}{
		{"Food: Groceries", "Food", "Groceries"},
		{"Food:Groceries", "Food", "Groceries"},
		{"Transport", "Transport", ""},
		{"A: B: C", "A", "B: C"},
		{"", "", ""},
	}
	for i, tc := range cases {
		p, s := SplitCategory(tc.in)
		if p != tc.primary || s != tc.secondary {
			t.Fatalf("case %d: got (%q, %q), want (%q, %q)", i, p, s, tc.primary, tc.secondary)
		}
	}
}

func TestInflow(t *testing.T) {
	if !(Transaction{Amount: Money{Cents: 1}}).Inflow() {
		t.Fatal("positive amount should be an inflow")
	}
	if (Transaction{Amount: Money{Cents: -1}}).Inflow() {
		t.Fatal("negative amount should be an outflow")
	}
}
