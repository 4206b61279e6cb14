package report

import (
	"strconv"
	"strings"
)

// formulaPrefixes start a cell that spreadsheets may evaluate.
const formulaPrefixes = "=+-@|%\t\r\n"

// EscapeCSVCell protects against CSV formula injection by prefixing a single
// quote to text cells that start with a formula character. Plain numbers such
// as "-2.5" are left as they are.
func EscapeCSVCell(value string) string {
	if value == "" || !strings.ContainsRune(formulaPrefixes, rune(value[0])) {
		return value
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return value
	}
	return "'" + value
}

// EscapeCSVRow escapes all cells in a row
func EscapeCSVRow(row []string) []string {
	escaped := make([]string, len(row))
	for i, cell := range row {
		escaped[i] = EscapeCSVCell(cell)
	}
	return escaped
}

// EscapeCSVRows escapes all cells in multiple rows
func EscapeCSVRows(rows [][]string) [][]string {
	escaped := make([][]string, len(rows))
	for i, row := range rows {
		escaped[i] = EscapeCSVRow(row)
	}
	return escaped
}
