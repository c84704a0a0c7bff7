package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "upload.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestStream_HappyPath(t *testing.T) {
	path := writeCSV(t, "transaction_date,description,amount,reference_number\n"+
		`2024-01-15,ACME CORP PAYMENT,"$1,234.50",REF001`+"\n"+
		"1/20/2024,John Smith Wire,500,REF002\n")

	var rows []ParsedRow
	err := Stream(path, func(row ParsedRow) error {
		rows = append(rows, row)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1234.50", rows[0].Amount.StringFixed(2))
	assert.Equal(t, "ACME CORP PAYMENT", rows[0].Description)
	require.NotNil(t, rows[0].ReferenceNumber)
	assert.Equal(t, "REF001", *rows[0].ReferenceNumber)
}

func TestStream_MissingRequiredColumn(t *testing.T) {
	path := writeCSV(t, "description,amount\nHello,100\n")
	err := Stream(path, func(row ParsedRow) error { return nil })
	assert.Error(t, err)
}

func TestStream_SkipsInvalidRowsSilently(t *testing.T) {
	path := writeCSV(t, "transaction_date,description,amount\n"+
		"2024-01-15,Valid Row,100\n"+
		"not-a-date,Bad Date,100\n"+
		"2024-01-16,Negative Amount,-5\n"+
		"2024-01-17,,100\n"+
		"2024-01-18,Zero Amount,0\n")

	var rows []ParsedRow
	err := Stream(path, func(row ParsedRow) error {
		rows = append(rows, row)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Valid Row", rows[0].Description)
}

func TestParseAmount_StripsPunctuation(t *testing.T) {
	amount, ok := parseAmount("$1,234.567")
	require.True(t, ok)
	assert.Equal(t, "1234.57", amount.StringFixed(2))
}

func TestParseAmount_RejectsNonPositive(t *testing.T) {
	_, ok := parseAmount("0")
	assert.False(t, ok)
	_, ok = parseAmount("-10")
	assert.False(t, ok)
}

func TestParseDate_AcceptsISOAndUSFormats(t *testing.T) {
	_, ok := parseDate("2024-03-05")
	assert.True(t, ok)
	_, ok = parseDate("3/5/2024")
	assert.True(t, ok)
	_, ok = parseDate("not-a-date")
	assert.False(t, ok)
}
