// Package parser is the CSV stream parser (§4.J): it turns an
// uploaded file into a lazy, in-order sequence of ParsedRow values
// without ever materializing the whole file, so a worker processing a
// multi-million-row upload stays at O(CHUNK_SIZE) memory.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"payrecon/pkg/logger"
)

// ParsedRow is one accepted CSV row, already typed and normalized.
type ParsedRow struct {
	TransactionDate time.Time
	Description     string
	Amount          decimal.Decimal
	ReferenceNumber *string
}

// RowFunc is called once per accepted row, in file order. Returning an
// error aborts the stream.
type RowFunc func(row ParsedRow) error

var requiredColumns = []string{"transaction_date", "description", "amount"}

// Stream opens filePath, validates the header, and calls fn for every
// row that parses cleanly. Rows that fail to parse are skipped
// silently and do not count toward the caller's total (§4.J); a
// missing required column is a fatal error returned to the caller,
// who propagates it as a batch failure.
func Stream(filePath string, fn RowFunc) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}

	columnMap := mapColumns(header)
	if !hasRequiredColumns(columnMap) {
		return fmt.Errorf("csv header missing required columns: %v", requiredColumns)
	}

	lineNumber := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNumber++
		if err != nil {
			logger.GetLogger().WithError(err).WithField("line", lineNumber).Warn("skipping unreadable csv row")
			continue
		}

		row, ok := parseRow(record, columnMap)
		if !ok {
			continue
		}

		if err := fn(row); err != nil {
			return err
		}
	}

	return nil
}

func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

func hasRequiredColumns(m map[string]int) bool {
	for _, col := range requiredColumns {
		if _, ok := m[col]; !ok {
			return false
		}
	}
	return true
}

func field(record []string, m map[string]int, name string) (string, bool) {
	idx, ok := m[name]
	if !ok || idx >= len(record) {
		return "", false
	}
	return record[idx], true
}

func parseRow(record []string, m map[string]int) (ParsedRow, bool) {
	dateRaw, ok := field(record, m, "transaction_date")
	if !ok {
		return ParsedRow{}, false
	}
	date, ok := parseDate(strings.TrimSpace(dateRaw))
	if !ok {
		return ParsedRow{}, false
	}

	desc, ok := field(record, m, "description")
	if !ok {
		return ParsedRow{}, false
	}
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return ParsedRow{}, false
	}

	amountRaw, ok := field(record, m, "amount")
	if !ok {
		return ParsedRow{}, false
	}
	amount, ok := parseAmount(amountRaw)
	if !ok {
		return ParsedRow{}, false
	}

	row := ParsedRow{TransactionDate: date, Description: desc, Amount: amount}

	if ref, ok := field(record, m, "reference_number"); ok && strings.TrimSpace(ref) != "" {
		trimmed := strings.TrimSpace(ref)
		row.ReferenceNumber = &trimmed
	} else if ref, ok := field(record, m, "reference"); ok && strings.TrimSpace(ref) != "" {
		trimmed := strings.TrimSpace(ref)
		row.ReferenceNumber = &trimmed
	}

	return row, true
}

var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"01/02/2006",
}

// parseDate accepts ISO-8601 and US M/D/YYYY (§4.J); anything else is
// an invalid row.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseAmount strips currency punctuation, parses as decimal, and
// rejects non-positive values; accepted amounts are rounded
// half-away-from-zero to 2 decimal places (§4.J).
func parseAmount(s string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ', '\t':
			return -1
		default:
			return r
		}
	}, s)
	if cleaned == "" {
		return decimal.Decimal{}, false
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, false
	}

	// amount is already validated positive above, so decimal.Round's
	// half-up behavior is equivalent to half-away-from-zero here.
	return amount.Round(2), true
}
