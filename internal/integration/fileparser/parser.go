// Package fileparser turns uploaded CSV and XLSX files into import rows.
// Both formats decode through gocsv so column matching behaves the same.
package fileparser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	transactionimport "github.com/finance-tracker/budget-sync/internal/application/usecase/transaction_import"
	domainerror "github.com/finance-tracker/budget-sync/internal/domain/error"
)

// Format is a supported upload format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// importRecord is one decoded line, before validation.
type importRecord struct {
	Amount             string `csv:"amount"`
	Date               string `csv:"date"`
	Name               string `csv:"name"`
	MerchantName       string `csv:"merchant_name"`
	AccountName        string `csv:"account_name"`
	AccountType        string `csv:"account_type"`
	AccountSubtype     string `csv:"account_subtype"`
	PlaidTransactionID string `csv:"plaid_transaction_id"`
	ISOCurrencyCode    string `csv:"iso_currency_code"`
	Pending            string `csv:"pending"`
	TransactionType    string `csv:"transaction_type"`
	CategoryName       string `csv:"category_name"`
	SubcategoryName    string `csv:"subcategory_name"`
	Notes              string `csv:"notes"`
	Tags               string `csv:"tags"`
}

func (r importRecord) empty() bool {
	return strings.TrimSpace(r.Amount+r.Date+r.Name+r.MerchantName+r.AccountName+
		r.PlaidTransactionID+r.CategoryName+r.SubcategoryName+r.Notes+r.Tags) == ""
}

// RowError describes why a line of the file could not be turned into a row.
type RowError struct {
	Line    int    // 1-based line in the file, the header being line 1
	Field   string // canonical column name, empty when the whole line is at fault
	Message string
}

func (e RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
}

// Result holds the decoded rows plus any line-level errors.
type Result struct {
	Rows   []transactionimport.TransactionRowInput
	Errors []RowError
}

// DetectFormat picks the format from the uploaded file name.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", domainerror.ErrUnsupportedImportFile
	}
}

// Parse decodes the file in the given format.
func Parse(r io.Reader, format Format) (*Result, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(r)
	case FormatXLSX:
		return ParseXLSX(r)
	default:
		return nil, domainerror.ErrUnsupportedImportFile
	}
}

// ParseCSV decodes a comma separated file with a header line.
func ParseCSV(r io.Reader) (*Result, error) {
	var records []importRecord
	if err := gocsv.UnmarshalCSV(newHeaderReader(csv.NewReader(r)), &records); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return &Result{}, nil
		}
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return convert(records, false), nil
}

// ParseXLSX decodes the "Transactions" sheet, or the first sheet when there is none.
// Raw cell values are read so dates arrive as serial numbers and amounts unformatted.
func ParseXLSX(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := findSheet(f.GetSheetList())
	if sheet == "" {
		return &Result{}, nil
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return &Result{}, nil
	}

	var records []importRecord
	if err := gocsv.UnmarshalCSV(newHeaderReader(&rowsReader{rows: rows}), &records); err != nil {
		return nil, fmt.Errorf("failed to decode sheet %s: %w", sheet, err)
	}
	return convert(records, true), nil
}

func findSheet(sheets []string) string {
	for _, sheet := range sheets {
		if strings.EqualFold(sheet, "transactions") {
			return sheet
		}
	}
	if len(sheets) == 0 {
		return ""
	}
	return sheets[0]
}

// headerReader hands rows to gocsv with the header line mapped to canonical
// column names. Short rows are padded to the header width because excelize
// drops trailing empty cells.
type headerReader struct {
	src    gocsv.CSVReader
	width  int
	header bool
}

func newHeaderReader(src gocsv.CSVReader) *headerReader {
	return &headerReader{src: src}
}

func (r *headerReader) Read() ([]string, error) {
	row, err := r.src.Read()
	if err != nil {
		return nil, err
	}

	if !r.header {
		r.header = true
		r.width = len(row)
		normalized := make([]string, len(row))
		for i, cell := range row {
			normalized[i] = normalizeHeader(cell)
		}
		return normalized, nil
	}

	if len(row) < r.width {
		padded := make([]string, r.width)
		copy(padded, row)
		row = padded
	}
	return row, nil
}

func (r *headerReader) ReadAll() ([][]string, error) {
	var out [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
}

// rowsReader serves spreadsheet rows already held in memory.
type rowsReader struct {
	rows [][]string
	next int
}

func (r *rowsReader) Read() ([]string, error) {
	if r.next >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.next]
	r.next++
	return row, nil
}

func (r *rowsReader) ReadAll() ([][]string, error) {
	rows := r.rows[r.next:]
	r.next = len(r.rows)
	return rows, nil
}

func convert(records []importRecord, spreadsheet bool) *Result {
	result := &Result{Rows: make([]transactionimport.TransactionRowInput, 0, len(records))}

	for i, rec := range records {
		line := i + 2
		if rec.empty() {
			continue
		}

		row, errs := toRow(rec, line, spreadsheet)
		if len(errs) > 0 {
			result.Errors = append(result.Errors, errs...)
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result
}

func toRow(rec importRecord, line int, spreadsheet bool) (transactionimport.TransactionRowInput, []RowError) {
	var row transactionimport.TransactionRowInput
	var errs []RowError

	amount, err := parseAmount(rec.Amount)
	if err != nil {
		errs = append(errs, RowError{Line: line, Field: "amount", Message: err.Error()})
	}
	row.Amount = amount

	date, err := parseDate(rec.Date, spreadsheet)
	if err != nil {
		errs = append(errs, RowError{Line: line, Field: "date", Message: err.Error()})
	}
	row.Date = date

	row.Name = strings.TrimSpace(rec.Name)
	if row.Name == "" {
		errs = append(errs, RowError{Line: line, Field: "name", Message: "is required"})
	}

	if s := strings.TrimSpace(rec.Pending); s != "" {
		pending, err := parsePending(s)
		if err != nil {
			errs = append(errs, RowError{Line: line, Field: "pending", Message: err.Error()})
		}
		row.Pending = &pending
	}

	row.MerchantName = optional(rec.MerchantName)
	row.AccountName = optional(rec.AccountName)
	row.AccountType = optional(rec.AccountType)
	row.AccountSubtype = optional(rec.AccountSubtype)
	row.PlaidTransactionID = optional(rec.PlaidTransactionID)
	row.ISOCurrencyCode = optional(rec.ISOCurrencyCode)
	row.TransactionType = optional(rec.TransactionType)
	row.CategoryName = optional(rec.CategoryName)
	row.SubcategoryName = optional(rec.SubcategoryName)
	row.Notes = optional(rec.Notes)
	row.Tags = splitTags(rec.Tags)

	return row, errs
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// parseAmount accepts plain decimals with an optional currency symbol and
// thousands separators, e.g. "-1,234.50" or "$12".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("is required")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", " ", "").Replace(s)

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// parseDate accepts YYYY-MM-DD, a timestamp starting with it, or for
// spreadsheets the raw serial date number.
func parseDate(s string, spreadsheet bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("is required")
	}

	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if len(s) > len(time.DateOnly) {
		if t, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)]); err == nil {
			return t, nil
		}
	}

	if spreadsheet {
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
			}
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

func parsePending(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "1", "pending", "y":
		return true, nil
	case "false", "no", "0", "posted", "n", "cleared":
		return false, nil
	default:
		return false, fmt.Errorf("invalid value %q", s)
	}
}
