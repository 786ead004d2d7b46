package fileparser

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	domainerror "github.com/finance-tracker/budget-sync/internal/domain/error"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
		wantErr  bool
	}{
		{filename: "export.csv", want: FormatCSV},
		{filename: "Export.CSV", want: FormatCSV},
		{filename: "bank.xlsx", want: FormatXLSX},
		{filename: "bank.xls", wantErr: true},
		{filename: "statement.pdf", wantErr: true},
		{filename: "noext", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := DetectFormat(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, domainerror.ErrUnsupportedImportFile)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCSV_CanonicalHeaders(t *testing.T) {
	input := "amount,date,name,merchant_name,account_name,account_type,plaid_transaction_id,iso_currency_code,pending,category_name,subcategory_name,notes,tags\n" +
		"-12.50,2024-01-15,Latte,Blue Bottle,Chase,checking,txn_1,usd,false,Food,Coffee,morning,\"work, treat\"\n" +
		"2500,2024-01-31,Salary,,,,,,,,,,\n"

	result, err := ParseCSV(strings.NewReader(input))

	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Rows, 2)

	first := result.Rows[0]
	assert.True(t, decimal.RequireFromString("-12.50").Equal(first.Amount))
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Latte", first.Name)
	assert.Equal(t, "Blue Bottle", *first.MerchantName)
	assert.Equal(t, "Chase", *first.AccountName)
	assert.Equal(t, "checking", *first.AccountType)
	assert.Equal(t, "txn_1", *first.PlaidTransactionID)
	assert.Equal(t, "usd", *first.ISOCurrencyCode)
	require.NotNil(t, first.Pending)
	assert.False(t, *first.Pending)
	assert.Equal(t, "Food", *first.CategoryName)
	assert.Equal(t, "Coffee", *first.SubcategoryName)
	assert.Equal(t, "morning", *first.Notes)
	assert.Equal(t, []string{"work", "treat"}, first.Tags)

	second := result.Rows[1]
	assert.Equal(t, "Salary", second.Name)
	assert.Nil(t, second.MerchantName)
	assert.Nil(t, second.AccountName)
	assert.Nil(t, second.Pending)
	assert.Nil(t, second.Tags)
}

func TestParseCSV_Aliases(t *testing.T) {
	input := "\ufeffTransaction Date,Description,Value,Payee,Category,Sub Category,Transaction ID,Status,Labels\n" +
		"2024-02-03,Train ticket,\"(1,204.00)\",Rail Co,Transport,Train,abc-1,Pending,commute\n"

	result, err := ParseCSV(strings.NewReader(input))

	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Rows, 1)

	row := result.Rows[0]
	assert.Equal(t, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), row.Date)
	assert.Equal(t, "Train ticket", row.Name)
	assert.True(t, decimal.RequireFromString("-1204").Equal(row.Amount))
	assert.Equal(t, "Rail Co", *row.MerchantName)
	assert.Equal(t, "Transport", *row.CategoryName)
	assert.Equal(t, "Train", *row.SubcategoryName)
	assert.Equal(t, "abc-1", *row.PlaidTransactionID)
	assert.True(t, *row.Pending)
	assert.Equal(t, []string{"commute"}, row.Tags)
}

func TestParseCSV_LeavesGocsvDefaultsAlone(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Description,Value,Date\nLunch,-12.50,2024-02-03\n"))
	require.NoError(t, err)

	type note struct {
		Description string `csv:"Description"`
	}
	var notes []note
	require.NoError(t, gocsv.UnmarshalString("Description\nkeep me\n", &notes))

	require.Len(t, notes, 1)
	assert.Equal(t, "keep me", notes[0].Description)
}

func TestParseCSV_RowErrors(t *testing.T) {
	input := "amount,date,name,pending\n" +
		"abc,2024-01-01,Bad amount,\n" +
		"1.00,01/02/2024,Bad date,\n" +
		"1.00,2024-01-03,,\n" +
		",,,\n" +
		"1.00,2024-01-05,Bad pending,maybe\n" +
		"3.00,2024-01-06T10:00:00Z,Good,posted\n"

	result, err := ParseCSV(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Good", result.Rows[0].Name)
	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), result.Rows[0].Date)

	require.Len(t, result.Errors, 4)
	assert.Equal(t, RowError{Line: 2, Field: "amount", Message: `invalid amount "abc"`}, result.Errors[0])
	assert.Equal(t, 3, result.Errors[1].Line)
	assert.Equal(t, "date", result.Errors[1].Field)
	assert.Equal(t, RowError{Line: 4, Field: "name", Message: "is required"}, result.Errors[2])
	assert.Equal(t, 6, result.Errors[3].Line)
	assert.Equal(t, "pending", result.Errors[3].Field)
	assert.Equal(t, `line 6: pending: invalid value "maybe"`, result.Errors[3].Error())
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	result, err := ParseCSV(strings.NewReader("amount,date,name\n"))

	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.Errors)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet("Transactions")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Transactions", "A1", &[]any{"Date", "Name", "Amount", "Account", "Tags"}))
	require.NoError(t, f.SetSheetRow("Transactions", "A2", &[]any{45306, "Groceries", -54.2, "Chase", "food, weekly"}))
	require.NoError(t, f.SetSheetRow("Transactions", "A3", &[]any{"2024-01-20", "Refund", 10}))
	// the default sheet is ignored when a Transactions sheet exists
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Date", "Name", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"2024-01-01", "Ignored", 1}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	result, err := Parse(bytes.NewReader(buf.Bytes()), FormatXLSX)

	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Rows, 2)

	first := result.Rows[0]
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Groceries", first.Name)
	assert.True(t, decimal.RequireFromString("-54.2").Equal(first.Amount))
	assert.Equal(t, "Chase", *first.AccountName)
	assert.Equal(t, []string{"food", "weekly"}, first.Tags)

	second := result.Rows[1]
	assert.Equal(t, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), second.Date)
	assert.Nil(t, second.AccountName)
	assert.Nil(t, second.Tags)
}

func TestParseXLSX_NotAWorkbook(t *testing.T) {
	_, err := ParseXLSX(strings.NewReader("amount,date,name\n"))

	assert.Error(t, err)
}
