package schtasks

import (
	"encoding/csv"
	"strings"

	"datalys2/pkg/logx"
)

// Record is one row of verbose query output keyed by column header. The
// field set is whatever the utility emitted; use Get for lenient access.
type Record map[string]string

// Get returns the named column, or "unknown" when the utility did not emit
// it. Absence of an expected column is never an error.
func (r Record) Get(key string) string {
	if v, ok := r[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return "unknown"
}

// TaskName returns the fully qualified task name, empty if absent.
func (r Record) TaskName() string { return r["TaskName"] }

// parseTable turns CSV query output (header row + value rows) into records,
// zipping each row against the first row positionally. Verbose output over
// multiple tasks repeats the header before each block; those repeats are
// dropped. Malformed input yields no records and no error, since listing is
// advisory, not load-bearing.
func parseTable(raw string, log logx.Logger) []Record {
	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		log.Warn("unparseable query output", logx.Err(err))
		return nil
	}
	if len(rows) < 2 {
		return nil
	}

	header := rows[0]
	recs := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) > 0 && row[0] == header[0] {
			continue // repeated header
		}
		rec := make(Record, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		recs = append(recs, rec)
	}
	return recs
}
