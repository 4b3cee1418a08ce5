package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pesatrack/internal/core"
)

const statementCSV = `ID,Date,Amount,Account,Category,Type,Description,Balance
tx-100,2025-03-10 09:30,-1500.50,Safaricom,Food: Lunch,payment,Cafe downtown,4200.00
,2025-03-11,2000,Equity Bank,Income: Salary,receive,March advance,
tx-102,02/03/2025 18:45,-300.25,Safaricom,Transport: Matatu,send,Evening ride,3899.75
`

func TestParseStatement(t *testing.T) {
	txs, err := ParseStatement(strings.NewReader(statementCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("len = %d, want 3", len(txs))
	}

	if txs[0].ID != "tx-100" {
		t.Fatalf("id = %q", txs[0].ID)
	}
	if txs[0].Amount.Cents != -150050 {
		t.Fatalf("amount cents = %d, want -150050", txs[0].Amount.Cents)
	}
	if txs[0].Balance.Cents != 420000 {
		t.Fatalf("balance cents = %d, want 420000", txs[0].Balance.Cents)
	}
	if txs[0].Type != core.TypePayment {
		t.Fatalf("type = %q", txs[0].Type)
	}

	// blank id gets generated
	if txs[1].ID == "" {
		t.Fatal("expected generated id for blank column")
	}
	if txs[1].Amount.Cents != 200000 {
		t.Fatalf("amount cents = %d, want 200000", txs[1].Amount.Cents)
	}

	// day-first layout
	if y, m, d := txs[2].Date.Date(); y != 2025 || int(m) != 3 || d != 2 {
		t.Fatalf("date = %v", txs[2].Date)
	}
}

func TestParseStatementRejectsBadHeader(t *testing.T) {
	_, err := ParseStatement(strings.NewReader("a,b,c\n1,2,3\n"))
	if !errors.Is(err, ErrBadStatementHeader) {
		t.Fatalf("err = %v, want ErrBadStatementHeader", err)
	}
}

func TestParseStatementRejectsBadRow(t *testing.T) {
	cases := []string{
		// zero amount
		"tx-1,2025-03-10,0,Safaricom,Food,payment,x,",
		// unparseable date
		"tx-1,March tenth,-10,Safaricom,Food,payment,x,",
		// empty account
		"tx-1,2025-03-10,-10,,Food,payment,x,",
	}
	for i, row := range cases {
		input := strings.Join(statementHeader, ",") + "\n" + row + "\n"
		if _, err := ParseStatement(strings.NewReader(input)); err == nil {
			t.Fatalf("case %d: expected error for row %q", i, row)
		}
	}
}

func TestImportSkipsDuplicates(t *testing.T) {
	svc := newTestService(t)
	imp := NewStatementImporter(svc)
	ctx := context.Background()

	first, err := imp.Import(ctx, strings.NewReader(statementCSV))
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if first.Imported != 3 || first.Skipped != 0 {
		t.Fatalf("first run: %+v", first)
	}

	// rows with explicit ids are skipped on re-import, the generated-id row
	// comes back as a new record
	second, err := imp.Import(ctx, strings.NewReader(statementCSV))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if second.Skipped != 2 || second.Imported != 1 {
		t.Fatalf("second run: %+v", second)
	}
}
