package schtasks

import (
	"testing"

	"datalys2/pkg/logx"
)

func TestParseTableSingleRecord(t *testing.T) {
	t.Parallel()
	recs := parseTable("TaskName,Status\nX,Ready\n", logx.Nop())
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0]["TaskName"] != "X" || recs[0]["Status"] != "Ready" {
		t.Fatalf("unexpected record: %v", recs[0])
	}
}

func TestParseTableHeaderOnly(t *testing.T) {
	t.Parallel()
	if recs := parseTable("TaskName,Status\n", logx.Nop()); len(recs) != 0 {
		t.Fatalf("expected no records, got %v", recs)
	}
}

func TestParseTableGarbledInput(t *testing.T) {
	t.Parallel()
	if recs := parseTable("\"unterminated,quote\nbroken", logx.Nop()); len(recs) != 0 {
		t.Fatalf("expected no records from garbled input, got %v", recs)
	}
}

func TestParseTableSkipsRepeatedHeaders(t *testing.T) {
	t.Parallel()
	// Verbose output over multiple tasks repeats the header row per block.
	raw := "\"TaskName\",\"Status\"\n" +
		"\"\\datalys2\\a\",\"Ready\"\n" +
		"\"TaskName\",\"Status\"\n" +
		"\"\\datalys2\\b\",\"Running\"\n"
	recs := parseTable(raw, logx.Nop())
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[1]["Status"] != "Running" {
		t.Fatalf("unexpected second record: %v", recs[1])
	}
}

func TestParseTableShortRow(t *testing.T) {
	t.Parallel()
	recs := parseTable("TaskName,Status,Author\nX,Ready\n", logx.Nop())
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if got := recs[0].Get("Author"); got != "unknown" {
		t.Fatalf("missing column should read as unknown, got %q", got)
	}
	if got := recs[0].Get("Status"); got != "Ready" {
		t.Fatalf("Status = %q, want Ready", got)
	}
}
