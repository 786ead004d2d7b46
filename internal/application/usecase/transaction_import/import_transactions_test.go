package transactionimport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/budget-sync/internal/domain/entity"
	domainerror "github.com/finance-tracker/budget-sync/internal/domain/error"
	"github.com/finance-tracker/budget-sync/test/memstore"
)

func ptr[T any](v T) *T { return &v }

func row(name string, day time.Time) TransactionRowInput {
	return TransactionRowInput{
		Amount: decimal.RequireFromString("-12.50"),
		Date:   day,
		Name:   name,
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

type stubLock struct {
	err      error
	acquired int
	released int
}

func (l *stubLock) Acquire(_ context.Context, _ uuid.UUID) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired++
	return func() { l.released++ }, nil
}

type recordingMetrics struct {
	batches      map[string]int
	rows         map[string]int
	accounts     int
	budgets      int
	unrecognized map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		batches:      map[string]int{},
		rows:         map[string]int{},
		unrecognized: map[string]int{},
	}
}

func (m *recordingMetrics) BatchFinished(outcome string, _ time.Duration) { m.batches[outcome]++ }
func (m *recordingMetrics) RowFinished(outcome string)                    { m.rows[outcome]++ }
func (m *recordingMetrics) AccountCreated()                               { m.accounts++ }
func (m *recordingMetrics) BudgetMaterialized()                           { m.budgets++ }
func (m *recordingMetrics) Unrecognized(reason string)                    { m.unrecognized[reason]++ }

func execute(t *testing.T, store *memstore.Store, userID uuid.UUID, rows ...TransactionRowInput) *ImportTransactionsOutput {
	t.Helper()
	uc := NewImportTransactionsUseCase(store, nil, nil, 0)
	out, err := uc.Execute(context.Background(), ImportTransactionsInput{UserID: userID, Transactions: rows})
	require.NoError(t, err)
	require.True(t, out.Committed)
	return out
}

func TestImportTransactions_AccountResolution(t *testing.T) {
	t.Run("existing account is matched case-insensitively and reported once", func(t *testing.T) {
		store := memstore.New()
		userID := uuid.New()
		chase := store.SeedAccount(userID, "Chase", "checking")

		first := row("Coffee", date(2024, 1, 3))
		first.AccountName = ptr("chase")
		second := row("Lunch", date(2024, 1, 4))
		second.AccountName = ptr("CHASE ")

		out := execute(t, store, userID, first, second)

		assert.Empty(t, out.AccountsCreated)
		require.Len(t, out.AccountsUsed, 1)
		assert.Equal(t, "Chase", out.AccountsUsed[0].AccountName)
		assert.Equal(t, chase.ID, out.AccountsUsed[0].AccountID)
		assert.False(t, out.AccountsUsed[0].Created)

		txns := store.TransactionsFor(userID)
		require.Len(t, txns, 2)
		assert.Equal(t, chase.ID, *txns[0].AccountID)
		assert.Equal(t, chase.ID, *txns[1].AccountID)
		assert.Len(t, store.AccountsFor(userID), 1)
	})

	t.Run("missing account is created once and reused by later rows", func(t *testing.T) {
		store := memstore.New()
		userID := uuid.New()

		first := row("Flight", date(2024, 2, 1))
		first.AccountName = ptr("Amex")
		second := row("Hotel", date(2024, 2, 2))
		second.AccountName = ptr("amex")

		out := execute(t, store, userID, first, second)

		require.Len(t, out.AccountsCreated, 1)
		assert.Empty(t, out.AccountsUsed)
		created := out.AccountsCreated[0]
		assert.Equal(t, "Amex", created.AccountName)
		assert.Equal(t, entity.DefaultAccountType, created.AccountType)
		assert.True(t, created.Created)

		txns := store.TransactionsFor(userID)
		require.Len(t, txns, 2)
		assert.Equal(t, created.AccountID, *txns[0].AccountID)
		assert.Equal(t, created.AccountID, *txns[1].AccountID)
		assert.Len(t, store.AccountsFor(userID), 1)
	})

	t.Run("rows without an account name have no account", func(t *testing.T) {
		store := memstore.New()
		userID := uuid.New()

		out := execute(t, store, userID, row("Cash", date(2024, 2, 1)))

		assert.Empty(t, out.AccountsCreated)
		assert.Empty(t, out.AccountsUsed)
		assert.Nil(t, store.TransactionsFor(userID)[0].AccountID)
	})

	t.Run("other users' accounts are not visible", func(t *testing.T) {
		store := memstore.New()
		userID := uuid.New()
		store.SeedAccount(uuid.New(), "Chase", "checking")

		r := row("Coffee", date(2024, 1, 3))
		r.AccountName = ptr("Chase")
		out := execute(t, store, userID, r)

		assert.Len(t, out.AccountsCreated, 1)
	})
}

func TestImportTransactions_Duplicates(t *testing.T) {
	store := memstore.New()
	userID := uuid.New()
	store.SeedTransaction(userID, "txn_1")

	stored := row("Stored", date(2024, 1, 1))
	stored.PlaidTransactionID = ptr("txn_1")
	fresh := row("Fresh", date(2024, 1, 2))
	fresh.PlaidTransactionID = ptr("txn_2")
	repeat := row("Repeat", date(2024, 1, 3))
	repeat.PlaidTransactionID = ptr("txn_2")
	noID := row("No id", date(2024, 1, 4))

	out := execute(t, store, userID, stored, fresh, repeat, noID)

	assert.Equal(t, 4, out.TotalRows)
	assert.Equal(t, 2, out.SuccessfulImports)
	assert.Equal(t, 2, out.FailedImports)

	for _, i := range []int{0, 2} {
		r := out.TransactionResults[i]
		assert.False(t, r.Success, "row %d", i)
		assert.Nil(t, r.TransactionID, "row %d", i)
		require.NotNil(t, r.Error, "row %d", i)
		assert.Equal(t, domainerror.ErrDuplicateExternalID.Error(), *r.Error)
		require.Len(t, r.Warnings, 1)
		assert.Contains(t, r.Warnings[0], "Duplicate plaid_transaction_id")
	}
	assert.True(t, out.TransactionResults[1].Success)
	assert.True(t, out.TransactionResults[3].Success)

	// seeded row plus two imported rows
	assert.Len(t, store.TransactionsFor(userID), 3)
}

func TestImportTransactions_Categorization(t *testing.T) {
	store := memstore.New()
	userID := uuid.New()
	food := store.SeedCategory("Food", nil)
	coffee := store.SeedSubcategory("Coffee", food)
	transport := store.SeedCategory("Transport", &userID)

	t.Run("subcategory alone resolves its parent category", func(t *testing.T) {
		r := row("Latte", date(2024, 1, 5))
		r.SubcategoryName = ptr("coffee")

		out := execute(t, store, userID, r)

		assert.Empty(t, out.Unrecognized)
		assert.Empty(t, out.TransactionResults[0].Warnings)
		txns := store.TransactionsFor(userID)
		txn := txns[len(txns)-1]
		assert.Equal(t, food.ID, *txn.CategoryID)
		assert.Equal(t, coffee.ID, *txn.SubcategoryID)
	})

	t.Run("subcategory under another category is a mismatch", func(t *testing.T) {
		r := row("Bus coffee", date(2024, 1, 6))
		r.CategoryName = ptr("Transport")
		r.SubcategoryName = ptr("Coffee")

		out := execute(t, store, userID, r)

		require.Len(t, out.Unrecognized, 1)
		u := out.Unrecognized[0]
		assert.Equal(t, ReasonSubcategoryMismatch, u.Reason)
		assert.Equal(t, 0, u.RowIndex)
		require.NotNil(t, u.Suggestion)
		assert.Equal(t, "Food", *u.Suggestion)
		assert.Equal(t, []string{"Subcategory 'Coffee' exists but not under category 'Transport'"},
			out.TransactionResults[0].Warnings)

		txns := store.TransactionsFor(userID)
		txn := txns[len(txns)-1]
		assert.Equal(t, transport.ID, *txn.CategoryID)
		assert.Nil(t, txn.SubcategoryID)
	})

	t.Run("unknown category skips the subcategory and still imports", func(t *testing.T) {
		r := row("Groceries", date(2024, 1, 7))
		r.CategoryName = ptr("Fod")
		r.SubcategoryName = ptr("Coffee")

		out := execute(t, store, userID, r)

		assert.Equal(t, 1, out.SuccessfulImports)
		require.Len(t, out.Unrecognized, 1)
		assert.Equal(t, ReasonCategoryNotFound, out.Unrecognized[0].Reason)
		require.NotNil(t, out.Unrecognized[0].Suggestion)
		assert.Equal(t, "Food", *out.Unrecognized[0].Suggestion)
		assert.Equal(t, []string{
			"Category 'Fod' not found",
			"Subcategory 'Coffee' skipped because category not found",
		}, out.TransactionResults[0].Warnings)

		txns := store.TransactionsFor(userID)
		txn := txns[len(txns)-1]
		assert.Nil(t, txn.CategoryID)
		assert.Nil(t, txn.SubcategoryID)
	})

	t.Run("unknown subcategory keeps the category", func(t *testing.T) {
		r := row("Taxi", date(2024, 1, 8))
		r.CategoryName = ptr("transport")
		r.SubcategoryName = ptr("Taxi")

		out := execute(t, store, userID, r)

		require.Len(t, out.Unrecognized, 1)
		assert.Equal(t, ReasonSubcategoryNotFound, out.Unrecognized[0].Reason)
		assert.Nil(t, out.Unrecognized[0].Suggestion)
		assert.Equal(t, []string{"Subcategory 'Taxi' not found"}, out.TransactionResults[0].Warnings)

		txns := store.TransactionsFor(userID)
		assert.Equal(t, transport.ID, *txns[len(txns)-1].CategoryID)
	})
}

func TestImportTransactions_BudgetMaterialization(t *testing.T) {
	t.Run("one budget per month no matter how many rows", func(t *testing.T) {
		store := memstore.New()
		userID := uuid.New()
		food := store.SeedCategory("Food", nil)
		rent := store.SeedCategory("Rent", nil)
		store.SeedDefaultBudget(userID, []uuid.UUID{food.ID, rent.ID}, 300, 1200)

		var rows []TransactionRowInput
		for day := 1; day <= 5; day++ {
			rows = append(rows, row("Groceries", date(2024, 1, day)))
		}

		out := execute(t, store, userID, rows...)

		assert.Equal(t, []BudgetPeriod{{Year: 2024, Month: 1}}, out.BudgetsCreated)
		monthly := store.MonthlyBudgetsFor(userID)
		require.Len(t, monthly, 1)
		assert.Equal(t, 2024, *monthly[0].Year)
		assert.Equal(t, 1, *monthly[0].Month)
		assert.False(t, monthly[0].IsDefault)
		assert.Len(t, monthly[0].Entries, 2)
		assert.True(t, decimal.NewFromInt(1500).Equal(monthly[0].TotalBudget))
	})

	t.Run("created months are reported in ascending order", func(t *testing.T) {
		store := memstore.New()
		userID := uuid.New()
		store.SeedDefaultBudget(userID, nil, 100)

		out := execute(t, store, userID,
			row("March", date(2024, 3, 1)),
			row("December", date(2023, 12, 31)),
			row("January", date(2024, 1, 15)),
		)

		assert.Equal(t, []BudgetPeriod{
			{Year: 2023, Month: 12},
			{Year: 2024, Month: 1},
			{Year: 2024, Month: 3},
		}, out.BudgetsCreated)
	})

	t.Run("existing monthly budget is left alone", func(t *testing.T) {
		store := memstore.New()
		userID := uuid.New()
		store.SeedDefaultBudget(userID, nil, 100)

		execute(t, store, userID, row("First", date(2024, 4, 1)))
		out := execute(t, store, userID, row("Second", date(2024, 4, 2)))

		assert.Empty(t, out.BudgetsCreated)
		assert.Len(t, store.MonthlyBudgetsFor(userID), 1)
	})

	t.Run("no default template means no budgets", func(t *testing.T) {
		store := memstore.New()
		userID := uuid.New()

		out := execute(t, store, userID, row("First", date(2024, 4, 1)))

		assert.Empty(t, out.BudgetsCreated)
		assert.Empty(t, store.MonthlyBudgetsFor(userID))
	})
}

func TestImportTransactions_PartialFailure(t *testing.T) {
	store := memstore.New()
	userID := uuid.New()
	store.SeedDefaultBudget(userID, nil, 100)
	store.FailTransaction = func(txn *entity.Transaction) error {
		if txn.Name == "broken" {
			return errors.New("CHECK constraint failed: amount")
		}
		return nil
	}

	first := row("first", date(2024, 5, 1))
	broken := row("broken", date(2024, 6, 1))
	broken.AccountName = ptr("Ghost")
	third := row("third", date(2024, 6, 2))

	out := execute(t, store, userID, first, broken, third)

	assert.Equal(t, 3, out.TotalRows)
	assert.Equal(t, 2, out.SuccessfulImports)
	assert.Equal(t, 1, out.FailedImports)

	assert.True(t, out.TransactionResults[0].Success)
	assert.NotNil(t, out.TransactionResults[0].TransactionID)
	assert.False(t, out.TransactionResults[1].Success)
	assert.Nil(t, out.TransactionResults[1].TransactionID)
	require.NotNil(t, out.TransactionResults[1].Error)
	assert.NotEmpty(t, *out.TransactionResults[1].Error)
	assert.True(t, out.TransactionResults[2].Success)
	assert.NotNil(t, out.TransactionResults[2].TransactionID)

	// the failed row's account is rolled back with it
	assert.Empty(t, out.AccountsCreated)
	assert.Empty(t, store.AccountsFor(userID))

	// June is materialized by the row that succeeded
	assert.Equal(t, []BudgetPeriod{{Year: 2024, Month: 5}, {Year: 2024, Month: 6}}, out.BudgetsCreated)
	assert.Len(t, store.MonthlyBudgetsFor(userID), 2)
	assert.Len(t, store.TransactionsFor(userID), 2)
}

func TestImportTransactions_FailedRowDoesNotRegisterExternalID(t *testing.T) {
	store := memstore.New()
	userID := uuid.New()
	calls := 0
	store.FailTransaction = func(*entity.Transaction) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	}

	first := row("first", date(2024, 5, 1))
	first.PlaidTransactionID = ptr("txn_9")
	retry := row("retry", date(2024, 5, 2))
	retry.PlaidTransactionID = ptr("txn_9")

	out := execute(t, store, userID, first, retry)

	assert.False(t, out.TransactionResults[0].Success)
	assert.True(t, out.TransactionResults[1].Success)
}

func TestImportTransactions_Normalization(t *testing.T) {
	store := memstore.New()
	userID := uuid.New()

	r := row("  Book  ", date(2024, 7, 1))
	r.MerchantName = ptr("   ")
	r.ISOCurrencyCode = ptr(" usd ")
	r.Notes = ptr("")
	r.Tags = []string{" work ", "", "travel"}
	r.Pending = ptr(true)

	unknown := row("Souvenir", date(2024, 7, 2))
	unknown.ISOCurrencyCode = ptr("xyz")

	unofficial := row("Ferry ticket", date(2024, 7, 3))
	unofficial.ISOCurrencyCode = ptr("euro")

	garbage := row("Odd export", date(2024, 7, 4))
	garbage.ISOCurrencyCode = ptr("not a currency code")

	out := execute(t, store, userID, r, unknown, unofficial, garbage)

	txns := store.TransactionsFor(userID)
	require.Len(t, txns, 4)
	assert.Equal(t, "Book", txns[0].Name)
	assert.Nil(t, txns[0].MerchantName)
	assert.Nil(t, txns[0].Notes)
	assert.Equal(t, "USD", *txns[0].ISOCurrencyCode)
	assert.Equal(t, []string{"work", "travel"}, txns[0].Tags)
	assert.True(t, txns[0].Pending)
	assert.Empty(t, out.TransactionResults[0].Warnings)

	assert.Equal(t, "XYZ", *txns[1].ISOCurrencyCode)
	assert.False(t, txns[1].Pending)
	assert.Equal(t, []string{"Unrecognized currency code 'XYZ'"}, out.TransactionResults[1].Warnings)

	assert.True(t, out.TransactionResults[2].Success)
	assert.Equal(t, "EURO", *txns[2].ISOCurrencyCode)
	assert.Equal(t, []string{"Unrecognized currency code 'EURO'"}, out.TransactionResults[2].Warnings)

	assert.True(t, out.TransactionResults[3].Success)
	assert.Nil(t, txns[3].ISOCurrencyCode)
	assert.Equal(t, []string{"Unrecognized currency code 'NOT A CURRENCY CODE' - dropped"}, out.TransactionResults[3].Warnings)
}

func TestImportTransactions_BatchErrors(t *testing.T) {
	userID := uuid.New()

	t.Run("empty batch is rejected", func(t *testing.T) {
		metrics := newRecordingMetrics()
		uc := NewImportTransactionsUseCase(memstore.New(), nil, metrics, 10)

		out, err := uc.Execute(context.Background(), ImportTransactionsInput{UserID: userID})

		assert.Nil(t, out)
		assert.ErrorIs(t, err, domainerror.ErrEmptyImport)
		var importErr *domainerror.ImportError
		require.ErrorAs(t, err, &importErr)
		assert.Equal(t, domainerror.ErrCodeInvalidImportRequest, importErr.Code)
		assert.Equal(t, 1, metrics.batches[BatchOutcomeRejected])
	})

	t.Run("oversized batch is rejected", func(t *testing.T) {
		uc := NewImportTransactionsUseCase(memstore.New(), nil, nil, 1)

		_, err := uc.Execute(context.Background(), ImportTransactionsInput{
			UserID:       userID,
			Transactions: []TransactionRowInput{row("a", date(2024, 1, 1)), row("b", date(2024, 1, 1))},
		})

		assert.ErrorIs(t, err, domainerror.ErrTooManyImportRows)
	})

	t.Run("setup failure aborts before any row", func(t *testing.T) {
		store := memstore.New()
		store.FailLoad = errors.New("connection reset")
		uc := NewImportTransactionsUseCase(store, nil, nil, 0)

		out, err := uc.Execute(context.Background(), ImportTransactionsInput{
			UserID:       userID,
			Transactions: []TransactionRowInput{row("a", date(2024, 1, 1))},
		})

		assert.Nil(t, out)
		assert.ErrorIs(t, err, domainerror.ErrImportSetupFailed)
		var importErr *domainerror.ImportError
		require.ErrorAs(t, err, &importErr)
		assert.Equal(t, domainerror.ErrCodeImportSetupFailed, importErr.Code)
	})

	t.Run("commit failure discards the whole batch", func(t *testing.T) {
		store := memstore.New()
		store.SeedDefaultBudget(userID, nil, 100)
		store.CommitErr = errors.New("could not serialize access")
		metrics := newRecordingMetrics()
		uc := NewImportTransactionsUseCase(store, nil, metrics, 0)

		r := row("a", date(2024, 1, 1))
		r.AccountName = ptr("Chase")
		out, err := uc.Execute(context.Background(), ImportTransactionsInput{
			UserID:       userID,
			Transactions: []TransactionRowInput{r},
		})

		assert.Nil(t, out)
		assert.ErrorIs(t, err, domainerror.ErrImportCommitFailed)
		var importErr *domainerror.ImportError
		require.ErrorAs(t, err, &importErr)
		assert.Equal(t, domainerror.ErrCodeImportCommitFailed, importErr.Code)

		assert.Empty(t, store.TransactionsFor(userID))
		assert.Empty(t, store.AccountsFor(userID))
		assert.Empty(t, store.MonthlyBudgetsFor(userID))
		assert.Equal(t, 1, metrics.batches[BatchOutcomeFailed])
		assert.Empty(t, metrics.rows)
	})
}

func TestImportTransactions_Lock(t *testing.T) {
	userID := uuid.New()
	rows := []TransactionRowInput{row("a", date(2024, 1, 1))}

	t.Run("lock is released after the batch", func(t *testing.T) {
		lock := &stubLock{}
		uc := NewImportTransactionsUseCase(memstore.New(), lock, nil, 0)

		_, err := uc.Execute(context.Background(), ImportTransactionsInput{UserID: userID, Transactions: rows})

		require.NoError(t, err)
		assert.Equal(t, 1, lock.acquired)
		assert.Equal(t, 1, lock.released)
	})

	t.Run("held lock rejects the batch", func(t *testing.T) {
		store := memstore.New()
		lock := &stubLock{err: domainerror.ErrImportInProgress}
		uc := NewImportTransactionsUseCase(store, lock, nil, 0)

		_, err := uc.Execute(context.Background(), ImportTransactionsInput{UserID: userID, Transactions: rows})

		assert.ErrorIs(t, err, domainerror.ErrImportInProgress)
		var importErr *domainerror.ImportError
		require.ErrorAs(t, err, &importErr)
		assert.Equal(t, domainerror.ErrCodeImportInProgress, importErr.Code)
		assert.Empty(t, store.TransactionsFor(userID))
	})

	t.Run("unavailable lock backend does not block imports", func(t *testing.T) {
		store := memstore.New()
		lock := &stubLock{err: errors.New("dial tcp: connection refused")}
		uc := NewImportTransactionsUseCase(store, lock, nil, 0)

		out, err := uc.Execute(context.Background(), ImportTransactionsInput{UserID: userID, Transactions: rows})

		require.NoError(t, err)
		assert.Equal(t, 1, out.SuccessfulImports)
	})
}

func TestImportTransactions_Metrics(t *testing.T) {
	store := memstore.New()
	userID := uuid.New()
	store.SeedTransaction(userID, "dup")
	store.SeedDefaultBudget(userID, nil, 50)
	metrics := newRecordingMetrics()
	uc := NewImportTransactionsUseCase(store, nil, metrics, 0)

	created := row("created", date(2024, 8, 1))
	created.AccountName = ptr("Wallet")
	created.CategoryName = ptr("Nope")
	dup := row("dup", date(2024, 8, 2))
	dup.PlaidTransactionID = ptr("dup")

	_, err := uc.Execute(context.Background(), ImportTransactionsInput{
		UserID:       userID,
		Transactions: []TransactionRowInput{created, dup},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.batches[BatchOutcomeCommitted])
	assert.Equal(t, 1, metrics.rows[RowOutcomeImported])
	assert.Equal(t, 1, metrics.rows[RowOutcomeDuplicate])
	assert.Equal(t, 1, metrics.accounts)
	assert.Equal(t, 1, metrics.budgets)
	assert.Equal(t, 1, metrics.unrecognized[string(ReasonCategoryNotFound)])
}
