package http

import (
	"fmt"
	"strings"
	"time"

	"pesatrack/internal/core"
	"pesatrack/internal/engine"
)

// transactionPayload is the wire shape for a transaction. Amounts travel as
// decimal strings so clients never deal in cents.
type transactionPayload struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Account     string `json:"account"`
	Category    string `json:"category,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Balance     string `json:"balance,omitempty"`
}

func toTransactionPayload(t core.Transaction) transactionPayload {
	p := transactionPayload{
		ID:          t.ID,
		Date:        t.Date.Format(time.RFC3339),
		Amount:      formatAmount(t.Amount.Cents),
		Account:     t.Account,
		Category:    t.Category,
		Type:        string(t.Type),
		Description: t.Description,
	}
	if t.Balance.Cents != 0 {
		p.Balance = formatAmount(t.Balance.Cents)
	}
	return p
}

func (p transactionPayload) toTransaction() (core.Transaction, error) {
	date, err := parseDate(p.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date: %w", err)
	}
	cents, err := core.ParseDecimalToCents(p.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	var balance core.Money
	if strings.TrimSpace(p.Balance) != "" {
		bc, err := core.ParseDecimalToCents(p.Balance)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("balance: %w", err)
		}
		balance = core.Money{Cents: bc}
	}

	t := core.Transaction{
		ID:          sanitizeInput(p.ID),
		Date:        date,
		Amount:      core.Money{Cents: cents},
		Account:     sanitizeInput(p.Account),
		Category:    sanitizeInput(p.Category),
		Type:        core.TransactionTypes(strings.ToLower(strings.TrimSpace(p.Type))),
		Description: sanitizeInput(p.Description),
		Balance:     balance,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// filterPayload is the wire shape for one filter. Value carries scalar
// operands; Values carries list operands for in / not-in.
type filterPayload struct {
	Field      string   `json:"field"`
	Operator   string   `json:"operator"`
	Value      string   `json:"value,omitempty"`
	Values     []string `json:"values,omitempty"`
	Combinator string   `json:"combinator,omitempty"`
}

func (p filterPayload) toFilter() (engine.Filter, error) {
	field := engine.Field(strings.TrimSpace(p.Field))
	op := engine.Operator(strings.TrimSpace(p.Operator))

	value, err := p.toValue(field, op)
	if err != nil {
		return engine.Filter{}, err
	}

	f, err := engine.NewFilter(field, op, value)
	if err != nil {
		return engine.Filter{}, err
	}
	if strings.EqualFold(strings.TrimSpace(p.Combinator), string(engine.Or)) {
		f = f.WithCombinator(engine.Or)
	}
	return f, nil
}

func (p filterPayload) toValue(field engine.Field, op engine.Operator) (engine.Value, error) {
	// List-valued operators take the values array, falling back to a
	// comma-delimited value string. An empty operand would match every
	// record, so it is rejected here rather than silently passed through.
	if op == engine.OpIn || op == engine.OpNotIn || op == engine.OpContainsAny {
		if len(p.Values) > 0 {
			return engine.List(p.Values...), nil
		}
		if strings.TrimSpace(p.Value) == "" {
			return engine.Value{}, fmt.Errorf("%s needs a value or a values list", op)
		}
		return engine.List(p.Value), nil
	}

	switch field {
	case engine.FieldAmount, engine.FieldBalance:
		cents, err := core.ParseDecimalToCents(p.Value)
		if err != nil {
			return engine.Value{}, fmt.Errorf("value: %w", err)
		}
		return engine.Amount(cents), nil
	case engine.FieldHour:
		return engine.TimeOfDay(p.Value)
	case engine.FieldDate:
		d, err := parseDate(p.Value)
		if err != nil {
			return engine.Value{}, fmt.Errorf("value: %w", err)
		}
		return engine.DateValue(d), nil
	default:
		return engine.Text(p.Value), nil
	}
}

func toFilterPayload(f engine.Filter) filterPayload {
	p := filterPayload{
		Field:    string(f.Field),
		Operator: string(f.Operator),
	}
	if f.IsOr() {
		p.Combinator = string(engine.Or)
	}

	switch f.Value.Kind() {
	case engine.ValueAmount:
		p.Value = formatAmount(f.Value.Cents())
	case engine.ValueTime:
		p.Value = f.Value.Text()
	case engine.ValueDate:
		p.Value = f.Value.Date().Format("2006-01-02")
	case engine.ValueList:
		p.Values = f.Value.Items()
	default:
		p.Value = f.Value.Text()
	}
	return p
}

// summaryPayload is the wire shape of a derived bundle.
type summaryPayload struct {
	Transactions []transactionPayload      `json:"transactions"`
	Period       periodPayload             `json:"period"`
	Calculated   calculatedPayload         `json:"calculated"`
	Averages     map[string]averagePayload `json:"averages"`
	Filters      []filterPayload           `json:"filters"`
}

type periodPayload struct {
	From        string   `json:"from"`
	To          string   `json:"to"`
	Granularity string   `json:"granularity"`
	Options     []string `json:"options"`
}

type averagePayload struct {
	In  string `json:"in"`
	Out string `json:"out"`
}

// calculatedPayload mirrors engine.CalculatedData with decimal-string money
// and lowercase keys, like the rest of the wire surface.
type calculatedPayload struct {
	Totals       totalsPayload         `json:"totals"`
	Balance      string                `json:"balance"`
	BalanceTrend []trendPointPayload   `json:"balanceTrend"`
	ByAccount    groupSummariesPayload `json:"byAccount"`
	ByCategory   groupSummariesPayload `json:"byCategory"`
}

type directionTotalsPayload struct {
	Count  int    `json:"count"`
	Amount string `json:"amount"`
}

type totalsPayload struct {
	Count  int                    `json:"count"`
	Amount string                 `json:"amount"`
	In     directionTotalsPayload `json:"in"`
	Out    directionTotalsPayload `json:"out"`
}

type trendPointPayload struct {
	Date    string `json:"date"`
	Balance string `json:"balance"`
}

type groupSummaryPayload struct {
	Name             string               `json:"name"`
	Amount           string               `json:"amount"`
	Count            int                  `json:"count"`
	AmountPercentage float64              `json:"amountPercentage"`
	CountPercentage  float64              `json:"countPercentage"`
	Transactions     []transactionPayload `json:"transactions"`
}

type groupSummariesPayload struct {
	In  []groupSummaryPayload `json:"in"`
	Out []groupSummaryPayload `json:"out"`
}

func toCalculatedPayload(c engine.CalculatedData) calculatedPayload {
	out := calculatedPayload{
		Totals: totalsPayload{
			Count:  c.Totals.Count,
			Amount: formatAmount(c.Totals.Amount.Cents),
			In:     directionTotalsPayload{Count: c.Totals.In.Count, Amount: formatAmount(c.Totals.In.Amount.Cents)},
			Out:    directionTotalsPayload{Count: c.Totals.Out.Count, Amount: formatAmount(c.Totals.Out.Amount.Cents)},
		},
		Balance:      formatAmount(c.Balance.Cents),
		BalanceTrend: make([]trendPointPayload, 0, len(c.BalanceTrend)),
		ByAccount:    toGroupSummariesPayload(c.ByAccount),
		ByCategory:   toGroupSummariesPayload(c.ByCategory),
	}
	for _, p := range c.BalanceTrend {
		out.BalanceTrend = append(out.BalanceTrend, trendPointPayload{
			Date:    p.Date.Format("2006-01-02"),
			Balance: formatAmount(p.Balance.Cents),
		})
	}
	return out
}

func toGroupSummariesPayload(g engine.GroupSummaries) groupSummariesPayload {
	return groupSummariesPayload{
		In:  toGroupSummaryPayloads(g.In),
		Out: toGroupSummaryPayloads(g.Out),
	}
}

func toGroupSummaryPayloads(groups []engine.GroupSummary) []groupSummaryPayload {
	out := make([]groupSummaryPayload, 0, len(groups))
	for _, g := range groups {
		p := groupSummaryPayload{
			Name:             g.Name,
			Amount:           formatAmount(g.Amount.Cents),
			Count:            g.Count,
			AmountPercentage: g.AmountPercentage,
			CountPercentage:  g.CountPercentage,
			Transactions:     make([]transactionPayload, 0, len(g.Transactions)),
		}
		for _, t := range g.Transactions {
			p.Transactions = append(p.Transactions, toTransactionPayload(t))
		}
		out = append(out, p)
	}
	return out
}

func toSummaryPayload(b engine.DerivedBundle, filters engine.FilterSet) summaryPayload {
	out := summaryPayload{
		Transactions: make([]transactionPayload, 0, len(b.Transactions)),
		Period: periodPayload{
			From:        b.Period.Range.Start.Format("2006-01-02"),
			To:          b.Period.Range.End.Format("2006-01-02"),
			Granularity: string(b.Period.Granularity),
			Options:     make([]string, 0, len(b.Period.Options)),
		},
		Calculated: toCalculatedPayload(b.Calculated),
		Averages:   make(map[string]averagePayload, len(b.Averages)),
		Filters:    make([]filterPayload, 0, len(filters)),
	}
	for _, t := range b.Transactions {
		out.Transactions = append(out.Transactions, toTransactionPayload(t))
	}
	for _, g := range b.Period.Options {
		out.Period.Options = append(out.Period.Options, string(g))
	}
	for g, avg := range b.Averages {
		out.Averages[string(g)] = averagePayload{
			In:  formatAmount(avg.In.Cents),
			Out: formatAmount(avg.Out.Cents),
		}
	}
	for _, f := range filters {
		out.Filters = append(out.Filters, toFilterPayload(f))
	}
	return out
}
