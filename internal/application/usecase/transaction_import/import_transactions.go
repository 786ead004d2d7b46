// Package transactionimport contains the bulk transaction import use case.
package transactionimport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/budget-sync/internal/application/adapter"
	"github.com/finance-tracker/budget-sync/internal/application/usecase/budget"
	"github.com/finance-tracker/budget-sync/internal/domain/entity"
	domainerror "github.com/finance-tracker/budget-sync/internal/domain/error"
)

// Row outcomes reported to metrics.
const (
	RowOutcomeImported  = "imported"
	RowOutcomeDuplicate = "duplicate"
	RowOutcomeFailed    = "failed"
)

// Batch outcomes reported to metrics.
const (
	BatchOutcomeCommitted = "committed"
	BatchOutcomeFailed    = "failed"
	BatchOutcomeRejected  = "rejected"
)

// TransactionRowInput is one row of an import. Amount, Date and Name are required;
// every other field is optional and nil when absent.
type TransactionRowInput struct {
	Amount             decimal.Decimal
	Date               time.Time
	Name               string
	MerchantName       *string
	AccountName        *string
	AccountType        *string
	AccountSubtype     *string
	PlaidTransactionID *string
	ISOCurrencyCode    *string
	Pending            *bool
	TransactionType    *string
	CategoryName       *string
	SubcategoryName    *string
	Notes              *string
	Tags               []string
}

// ImportTransactionsInput represents the input for a bulk import.
type ImportTransactionsInput struct {
	UserID       uuid.UUID
	Transactions []TransactionRowInput
}

// RowResult reports what happened to a single row.
type RowResult struct {
	RowIndex      int
	Success       bool
	TransactionID *uuid.UUID
	Error         *string
	Warnings      []string

	outcome string
}

// BudgetPeriod identifies a monthly budget.
type BudgetPeriod struct {
	Year  int
	Month int
}

// ImportTransactionsOutput represents the output of a bulk import.
// It is only returned once the batch has been committed.
type ImportTransactionsOutput struct {
	TotalRows          int
	SuccessfulImports  int
	FailedImports      int
	AccountsCreated    []AccountResult
	AccountsUsed       []AccountResult
	Unrecognized       []UnrecognizedCategorization
	TransactionResults []RowResult
	BudgetsCreated     []BudgetPeriod
	Committed          bool
}

// ImportTransactionsUseCase handles bulk imports of transaction rows.
type ImportTransactionsUseCase struct {
	uow     adapter.UnitOfWork
	lock    adapter.ImportLock
	metrics adapter.ImportMetrics
	maxRows int
}

// NewImportTransactionsUseCase creates a new ImportTransactionsUseCase instance.
// A maxRows of zero disables the row limit.
func NewImportTransactionsUseCase(
	uow adapter.UnitOfWork,
	lock adapter.ImportLock,
	metrics adapter.ImportMetrics,
	maxRows int,
) *ImportTransactionsUseCase {
	if metrics == nil {
		metrics = adapter.NopImportMetrics{}
	}
	return &ImportTransactionsUseCase{
		uow:     uow,
		lock:    lock,
		metrics: metrics,
		maxRows: maxRows,
	}
}

// Execute imports the rows in order inside one storage transaction.
// Row failures are reported per row; the error return is reserved for failures
// of the whole batch, in which case nothing was persisted.
func (uc *ImportTransactionsUseCase) Execute(ctx context.Context, input ImportTransactionsInput) (*ImportTransactionsOutput, error) {
	start := time.Now()

	if len(input.Transactions) == 0 {
		uc.metrics.BatchFinished(BatchOutcomeRejected, time.Since(start))
		return nil, domainerror.NewImportError(
			domainerror.ErrCodeInvalidImportRequest,
			"at least one transaction is required",
			domainerror.ErrEmptyImport,
		)
	}
	if uc.maxRows > 0 && len(input.Transactions) > uc.maxRows {
		uc.metrics.BatchFinished(BatchOutcomeRejected, time.Since(start))
		return nil, domainerror.NewImportError(
			domainerror.ErrCodeInvalidImportRequest,
			fmt.Sprintf("at most %d transactions can be imported at once", uc.maxRows),
			domainerror.ErrTooManyImportRows,
		)
	}

	if uc.lock != nil {
		release, err := uc.lock.Acquire(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, domainerror.ErrImportInProgress) {
				uc.metrics.BatchFinished(BatchOutcomeRejected, time.Since(start))
				return nil, domainerror.NewImportError(
					domainerror.ErrCodeImportInProgress,
					"another import is already running for this user",
					err,
				)
			}
			slog.Warn("Import lock unavailable, continuing without it",
				"userID", input.UserID,
				"error", err,
			)
		} else {
			defer release()
		}
	}

	rows := make([]TransactionRowInput, len(input.Transactions))
	for i, row := range input.Transactions {
		rows[i] = normalizeRow(row)
	}

	var output *ImportTransactionsOutput
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		b, err := newBatch(ctx, repos, input.UserID, rows)
		if err != nil {
			return domainerror.NewImportError(
				domainerror.ErrCodeImportSetupFailed,
				"failed to load existing accounts, categories or transactions",
				errors.Join(domainerror.ErrImportSetupFailed, err),
			)
		}
		output = b.run(ctx, repos, rows)
		return nil
	})
	if err != nil {
		uc.metrics.BatchFinished(BatchOutcomeFailed, time.Since(start))

		var importErr *domainerror.ImportError
		if errors.As(err, &importErr) {
			slog.Error("Import failed before processing rows", "userID", input.UserID, "error", err)
			return nil, err
		}

		slog.Error("Import rolled back, no transactions were saved",
			"userID", input.UserID,
			"totalRows", len(rows),
			"error", err,
		)
		return nil, domainerror.NewImportError(
			domainerror.ErrCodeImportCommitFailed,
			"import was rolled back and no transactions were saved",
			errors.Join(domainerror.ErrImportCommitFailed, err),
		)
	}

	output.Committed = true
	uc.recordMetrics(output, time.Since(start))

	slog.Info("Import committed",
		"userID", input.UserID,
		"totalRows", output.TotalRows,
		"successfulImports", output.SuccessfulImports,
		"failedImports", output.FailedImports,
		"accountsCreated", len(output.AccountsCreated),
		"budgetsCreated", len(output.BudgetsCreated),
	)

	return output, nil
}

func (uc *ImportTransactionsUseCase) recordMetrics(output *ImportTransactionsOutput, duration time.Duration) {
	for _, r := range output.TransactionResults {
		uc.metrics.RowFinished(r.outcome)
	}
	for range output.AccountsCreated {
		uc.metrics.AccountCreated()
	}
	for range output.BudgetsCreated {
		uc.metrics.BudgetMaterialized()
	}
	for _, u := range output.Unrecognized {
		uc.metrics.Unrecognized(string(u.Reason))
	}
	uc.metrics.BatchFinished(BatchOutcomeCommitted, duration)
}

// batch is the explicit per-request state shared by all rows of one import.
type batch struct {
	userID        uuid.UUID
	accounts      *accountResolver
	categories    *categorizationResolver
	duplicates    *duplicateGuard
	checkedMonths map[BudgetPeriod]struct{}
	budgets       []BudgetPeriod
}

func newBatch(ctx context.Context, repos adapter.Repositories, userID uuid.UUID, rows []TransactionRowInput) (*batch, error) {
	cache, err := buildLookupCache(ctx, repos, userID)
	if err != nil {
		return nil, err
	}

	duplicates, err := newDuplicateGuard(ctx, repos.Transactions(), userID, rows)
	if err != nil {
		return nil, err
	}

	return &batch{
		userID:        userID,
		accounts:      newAccountResolver(userID, cache),
		categories:    newCategorizationResolver(cache),
		duplicates:    duplicates,
		checkedMonths: make(map[BudgetPeriod]struct{}),
	}, nil
}

func (b *batch) run(ctx context.Context, repos adapter.Repositories, rows []TransactionRowInput) *ImportTransactionsOutput {
	out := &ImportTransactionsOutput{
		TotalRows:          len(rows),
		TransactionResults: make([]RowResult, 0, len(rows)),
	}

	for i, row := range rows {
		result := b.processRow(ctx, repos, i, row)
		if result.Success {
			out.SuccessfulImports++
		} else {
			out.FailedImports++
		}
		out.TransactionResults = append(out.TransactionResults, result)
	}

	sort.Slice(b.budgets, func(i, j int) bool {
		if b.budgets[i].Year != b.budgets[j].Year {
			return b.budgets[i].Year < b.budgets[j].Year
		}
		return b.budgets[i].Month < b.budgets[j].Month
	})

	out.AccountsCreated = b.accounts.created
	out.AccountsUsed = b.accounts.used
	out.Unrecognized = b.categories.unrecognized
	out.BudgetsCreated = b.budgets

	return out
}

// processRow takes one row from pending to duplicate_rejected, resolution_failed or
// persisted. Storage writes for the row run inside a savepoint; on failure they are
// rolled back together with the row's cache changes.
func (b *batch) processRow(ctx context.Context, repos adapter.Repositories, index int, row TransactionRowInput) RowResult {
	result := RowResult{RowIndex: index, Warnings: []string{}}

	if b.duplicates.isDuplicate(row.PlaidTransactionID) {
		msg := domainerror.ErrDuplicateExternalID.Error()
		result.Error = &msg
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Duplicate plaid_transaction_id '%s' - skipping", *row.PlaidTransactionID))
		result.outcome = RowOutcomeDuplicate
		return result
	}

	if row.ISOCurrencyCode != nil && money.GetCurrency(*row.ISOCurrencyCode) == nil {
		code := *row.ISOCurrencyCode
		if len(code) > entity.MaxCurrencyCodeLength {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Unrecognized currency code '%s' - dropped", code))
			row.ISOCurrencyCode = nil
		} else {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Unrecognized currency code '%s'", code))
		}
	}

	undo := &rowUndo{}
	period := BudgetPeriod{Year: row.Date.Year(), Month: int(row.Date.Month())}
	_, monthChecked := b.checkedMonths[period]
	budgetCreated := false

	var txn *entity.Transaction
	err := repos.Savepoint(ctx, func(rowRepos adapter.Repositories) error {
		accountID, err := b.accounts.resolve(ctx, rowRepos.Accounts(), row.AccountName, row.AccountType, row.AccountSubtype, undo)
		if err != nil {
			return err
		}

		cat := b.categories.resolve(index, row.CategoryName, row.SubcategoryName)
		result.Warnings = append(result.Warnings, cat.Warnings...)

		txn = newTransaction(b.userID, accountID, cat, row)
		if err := rowRepos.Transactions().Create(ctx, txn); err != nil {
			return err
		}

		if !monthChecked {
			budgetCreated, err = budget.EnsureMonthlyBudget(ctx, rowRepos.Budgets(), b.userID, period.Year, period.Month)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		undo.run()
		msg := err.Error()
		result.Error = &msg
		result.outcome = RowOutcomeFailed

		slog.Debug("Import row failed",
			"userID", b.userID,
			"rowIndex", index,
			"error", err,
		)
		return result
	}

	b.duplicates.register(row.PlaidTransactionID)
	if !monthChecked {
		b.checkedMonths[period] = struct{}{}
		if budgetCreated {
			b.budgets = append(b.budgets, period)
		}
	}

	id := txn.ID
	result.Success = true
	result.TransactionID = &id
	result.outcome = RowOutcomeImported
	return result
}

func newTransaction(userID uuid.UUID, accountID *uuid.UUID, cat categorization, row TransactionRowInput) *entity.Transaction {
	now := time.Now().UTC()

	pending := false
	if row.Pending != nil {
		pending = *row.Pending
	}

	return &entity.Transaction{
		ID:                 uuid.New(),
		UserID:             userID,
		AccountID:          accountID,
		PlaidTransactionID: row.PlaidTransactionID,
		Amount:             row.Amount,
		ISOCurrencyCode:    row.ISOCurrencyCode,
		Date:               row.Date,
		Name:               row.Name,
		MerchantName:       row.MerchantName,
		Pending:            pending,
		TransactionType:    row.TransactionType,
		CategoryID:         cat.CategoryID,
		SubcategoryID:      cat.SubcategoryID,
		Notes:              row.Notes,
		Tags:               row.Tags,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// normalizeRow trims optional text, turns blanks into absent values and
// uppercases the currency code.
func normalizeRow(row TransactionRowInput) TransactionRowInput {
	row.Name = strings.TrimSpace(row.Name)
	row.MerchantName = trimmed(row.MerchantName)
	row.AccountName = trimmed(row.AccountName)
	row.AccountType = trimmed(row.AccountType)
	row.AccountSubtype = trimmed(row.AccountSubtype)
	row.PlaidTransactionID = trimmed(row.PlaidTransactionID)
	row.TransactionType = trimmed(row.TransactionType)
	row.CategoryName = trimmed(row.CategoryName)
	row.SubcategoryName = trimmed(row.SubcategoryName)
	row.Notes = trimmed(row.Notes)

	if code := trimmed(row.ISOCurrencyCode); code != nil {
		upper := strings.ToUpper(*code)
		row.ISOCurrencyCode = &upper
	} else {
		row.ISOCurrencyCode = nil
	}

	if row.Tags != nil {
		tags := make([]string, 0, len(row.Tags))
		for _, tag := range row.Tags {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
		row.Tags = tags
	}

	return row
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
