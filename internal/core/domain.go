package core

import (
	"errors"
	"strings"
	"time"
)

const (
	TypeSend     TransactionTypes = "send"
	TypeReceive  TransactionTypes = "receive"
	TypePayment  TransactionTypes = "payment"
	TypeWithdraw TransactionTypes = "withdraw"
	TypeDeposit  TransactionTypes = "deposit"
	TypeAirtime  TransactionTypes = "airtime"
	TypeFee      TransactionTypes = "fee"
)

type (
	TransactionTypes string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one mobile-money statement entry. The sign of Amount is
	// the sole source of truth for money direction: positive is an inflow,
	// negative an outflow.
	Transaction struct {
		ID          string
		Date        Date
		Amount      Money
		Account     string // counterparty name
		Category    string // "Primary" or "Primary: Secondary"
		Type        TransactionTypes
		Description string
		Balance     Money // account balance after this transaction
	}
)

var (
	ErrEmptyID      = errors.New("empty transaction id")
	ErrInvalidDate  = errors.New("invalid date")
	ErrZeroAmount   = errors.New("zero amount")
	ErrEmptyAccount = errors.New("empty account")

	ErrInvalidAmount = errors.New("invalid amount")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// NewDateTime creates a Date with a time-of-day component.
func NewDateTime(year, month, day, hour, minute int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)}
}

// StartOfDay returns the Date floored to midnight.
func (d Date) StartOfDay() Date {
	y, m, day := d.Date()
	return Date{Time: time.Date(y, m, day, 0, 0, 0, 0, d.Location())}
}

// EndOfDay returns the last representable instant of the calendar day.
func (d Date) EndOfDay() Date {
	y, m, day := d.Date()
	return Date{Time: time.Date(y, m, day, 23, 59, 59, int(time.Second-time.Nanosecond), d.Location())}
}

// SameDay reports whether two dates fall on the same calendar day.
func (d Date) SameDay(other Date) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := other.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// MinutesOfDay returns the time-of-day expressed as minutes since midnight.
func (d Date) MinutesOfDay() int {
	return d.Hour()*60 + d.Minute()
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Amount.Cents == 0 {
		return ErrZeroAmount
	}
	if strings.TrimSpace(t.Account) == "" {
		return ErrEmptyAccount
	}
	if len(t.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return nil
}

// Inflow reports whether the transaction brought money in.
func (t Transaction) Inflow() bool {
	return t.Amount.Cents > 0
}

// PrimaryCategory returns the part of the composite category before the
// first colon, trimmed.
func (t Transaction) PrimaryCategory() string {
	primary, _ := SplitCategory(t.Category)
	return primary
}

// SplitCategory decomposes a composite "Primary: Secondary" category string.
// The secondary part is empty when no colon is present.
func SplitCategory(s string) (primary, secondary string) {
	before, after, found := strings.Cut(s, ":")
	if !found {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}
