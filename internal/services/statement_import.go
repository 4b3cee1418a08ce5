package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"pesatrack/internal/core"
	"pesatrack/internal/log"
)

// Statement CSV column layout. The header row is required and matched
// case-insensitively; Balance and ID may be empty.
const (
	colID = iota
	colDate
	colAmount
	colAccount
	colCategory
	colType
	colDescription
	colBalance
	statementColumns
)

var statementHeader = []string{"id", "date", "amount", "account", "category", "type", "description", "balance"}

// Accepted datetime layouts, tried in order.
var statementDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04",
	"2006-01-02",
}

var ErrBadStatementHeader = errors.New("unrecognized statement header")

// ImportResult summarizes one statement import run.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// StatementImporter parses mobile money statement exports and stores the
// rows through the transaction service.
type StatementImporter struct {
	service *TransactionService
	logger  *log.Logger
}

func NewStatementImporter(service *TransactionService) *StatementImporter {
	return &StatementImporter{
		service: service,
		logger:  log.New(log.DefaultConfig()).WithComponent(log.ComponentImport),
	}
}

// ParseStatement reads a CSV statement and returns the parsed transactions.
// Rows with a missing id get a generated one so re-parsing the same file
// yields distinct records.
func ParseStatement(r io.Reader) ([]core.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var out []core.Transaction
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func checkHeader(header []string) error {
	if len(header) < statementColumns {
		return fmt.Errorf("%w: got %d columns, want %d", ErrBadStatementHeader, len(header), statementColumns)
	}
	for i, want := range statementHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrBadStatementHeader, i, header[i], want)
		}
	}
	return nil
}

func parseRow(record []string) (core.Transaction, error) {
	if len(record) < statementColumns {
		return core.Transaction{}, fmt.Errorf("got %d columns, want %d", len(record), statementColumns)
	}

	id := strings.TrimSpace(record[colID])
	if id == "" {
		id = uuid.NewString()
	}

	date, err := parseStatementDate(record[colDate])
	if err != nil {
		return core.Transaction{}, err
	}

	cents, err := core.ParseDecimalToCents(record[colAmount])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount: %w", err)
	}

	var balance core.Money
	if b := strings.TrimSpace(record[colBalance]); b != "" {
		bc, err := core.ParseDecimalToCents(b)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("balance: %w", err)
		}
		balance = core.Money{Cents: bc}
	}

	t := core.Transaction{
		ID:          id,
		Date:        date,
		Amount:      core.Money{Cents: cents},
		Account:     strings.TrimSpace(record[colAccount]),
		Category:    strings.TrimSpace(record[colCategory]),
		Type:        core.TransactionTypes(strings.ToLower(strings.TrimSpace(record[colType]))),
		Description: strings.TrimSpace(record[colDescription]),
		Balance:     balance,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func parseStatementDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range statementDateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return core.Date{Time: ts.UTC()}, nil
		}
	}
	return core.Date{}, fmt.Errorf("unparseable date %q", s)
}

// Import parses the statement and stores every row. Duplicate ids are
// counted as skipped rather than failing the run.
func (imp *StatementImporter) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	txs, err := ParseStatement(r)
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	for _, t := range txs {
		if _, err := imp.service.GetTransaction(ctx, t.ID); err == nil {
			res.Skipped++
			continue
		}
		if err := imp.service.CreateTransaction(ctx, t); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("%s: %w", t.ID, err))
			continue
		}
		res.Imported++
	}

	imp.logger.InfoContext(ctx, "Statement import finished",
		log.FieldRecordCount, res.Imported,
		"skipped", res.Skipped,
		"failed", len(res.Errors))
	return res, nil
}
