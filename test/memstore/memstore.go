// Package memstore provides an in-memory implementation of the storage ports for unit tests.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/budget-sync/internal/application/adapter"
	"github.com/finance-tracker/budget-sync/internal/domain/entity"
	domainerror "github.com/finance-tracker/budget-sync/internal/domain/error"
)

// ErrUniqueViolation mimics a storage unique-constraint failure.
var ErrUniqueViolation = errors.New("UNIQUE constraint failed")

// UserAccount links a user to an account.
type UserAccount struct {
	UserID    uuid.UUID
	AccountID uuid.UUID
}

// Store is an append-only in-memory database. Rollbacks truncate back to a snapshot.
type Store struct {
	mu sync.Mutex

	Accounts      []*entity.Account
	UserAccounts  []UserAccount
	Categories    []*entity.Category
	Subcategories []*entity.Subcategory
	Transactions  []*entity.Transaction
	Budgets       []*entity.BudgetTemplate

	// FailTransaction, when set, is consulted before every transaction insert.
	FailTransaction func(t *entity.Transaction) error
	// FailLoad makes the batch setup queries fail.
	FailLoad error
	// CommitErr is returned by Do after fn succeeds, and the work is discarded.
	CommitErr error

	clock time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type snapshot struct {
	accounts, userAccounts, categories, subcategories, transactions, budgets int
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		accounts:      len(s.Accounts),
		userAccounts:  len(s.UserAccounts),
		categories:    len(s.Categories),
		subcategories: len(s.Subcategories),
		transactions:  len(s.Transactions),
		budgets:       len(s.Budgets),
	}
}

func (s *Store) restore(snap snapshot) {
	s.Accounts = s.Accounts[:snap.accounts]
	s.UserAccounts = s.UserAccounts[:snap.userAccounts]
	s.Categories = s.Categories[:snap.categories]
	s.Subcategories = s.Subcategories[:snap.subcategories]
	s.Transactions = s.Transactions[:snap.transactions]
	s.Budgets = s.Budgets[:snap.budgets]
}

// Do implements adapter.UnitOfWork.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos adapter.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx, repositories{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	if s.CommitErr != nil {
		s.restore(snap)
		return s.CommitErr
	}
	return nil
}

// SeedAccount stores an account owned by userID.
func (s *Store) SeedAccount(userID uuid.UUID, name, accountType string) *entity.Account {
	account := entity.NewAccount(name, accountType, nil)
	s.Accounts = append(s.Accounts, account)
	s.UserAccounts = append(s.UserAccounts, UserAccount{UserID: userID, AccountID: account.ID})
	return account
}

// SeedCategory stores a category. A nil userID makes it a system category.
func (s *Store) SeedCategory(name string, userID *uuid.UUID) *entity.Category {
	var category *entity.Category
	if userID == nil {
		category = entity.NewSystemCategory(name)
	} else {
		category = entity.NewCategory(name, *userID)
	}
	category.CreatedAt = s.tick()
	s.Categories = append(s.Categories, category)
	return category
}

// SeedSubcategory stores a subcategory under category, owned like its parent.
func (s *Store) SeedSubcategory(name string, category *entity.Category) *entity.Subcategory {
	var sub *entity.Subcategory
	if category.UserID == nil {
		sub = entity.NewSubcategory(name, category.ID, uuid.Nil)
		sub.UserID = nil
		sub.IsSystem = true
	} else {
		sub = entity.NewSubcategory(name, category.ID, *category.UserID)
	}
	sub.CreatedAt = s.tick()
	s.Subcategories = append(s.Subcategories, sub)
	return sub
}

// SeedTransaction stores a transaction carrying an external identifier.
func (s *Store) SeedTransaction(userID uuid.UUID, externalID string) *entity.Transaction {
	now := s.tick()
	t := &entity.Transaction{
		ID:                 uuid.New(),
		UserID:             userID,
		PlaidTransactionID: &externalID,
		Amount:             decimal.NewFromInt(-1),
		Date:               now,
		Name:               "seeded",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.Transactions = append(s.Transactions, t)
	return t
}

// SeedDefaultBudget stores a default template with one entry per amount.
func (s *Store) SeedDefaultBudget(userID uuid.UUID, categoryIDs []uuid.UUID, amounts ...int64) *entity.BudgetTemplate {
	now := s.tick()
	template := &entity.BudgetTemplate{
		ID:        uuid.New(),
		UserID:    userID,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	total := decimal.Zero
	for i, amount := range amounts {
		entry := &entity.BudgetTemplateEntry{
			ID:             uuid.New(),
			TemplateID:     template.ID,
			BudgetedAmount: decimal.NewFromInt(amount),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if i < len(categoryIDs) {
			id := categoryIDs[i]
			entry.CategoryID = &id
		}
		template.Entries = append(template.Entries, entry)
		total = total.Add(entry.BudgetedAmount)
	}
	template.TotalBudget = total
	s.Budgets = append(s.Budgets, template)
	return template
}

// TransactionsFor returns the user's stored transactions in insert order.
func (s *Store) TransactionsFor(userID uuid.UUID) []*entity.Transaction {
	var out []*entity.Transaction
	for _, t := range s.Transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

// MonthlyBudgetsFor returns the user's non-default templates in insert order.
func (s *Store) MonthlyBudgetsFor(userID uuid.UUID) []*entity.BudgetTemplate {
	var out []*entity.BudgetTemplate
	for _, b := range s.Budgets {
		if b.UserID == userID && !b.IsDefault {
			out = append(out, b)
		}
	}
	return out
}

// AccountsFor returns the user's accounts in insert order.
func (s *Store) AccountsFor(userID uuid.UUID) []*entity.Account {
	byID := make(map[uuid.UUID]*entity.Account, len(s.Accounts))
	for _, a := range s.Accounts {
		byID[a.ID] = a
	}
	var out []*entity.Account
	for _, ua := range s.UserAccounts {
		if ua.UserID == userID {
			if a, ok := byID[ua.AccountID]; ok {
				out = append(out, a)
			}
		}
	}
	return out
}

type repositories struct {
	s *Store
}

func (r repositories) Accounts() adapter.AccountRepository         { return accountRepo(r) }
func (r repositories) Categories() adapter.CategoryRepository      { return categoryRepo(r) }
func (r repositories) Transactions() adapter.TransactionRepository { return transactionRepo(r) }
func (r repositories) Budgets() adapter.BudgetRepository           { return budgetRepo(r) }

func (r repositories) Savepoint(_ context.Context, fn func(repos adapter.Repositories) error) error {
	snap := r.s.snapshot()
	if err := fn(r); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

type accountRepo struct{ s *Store }

func (r accountRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]*entity.Account, error) {
	if r.s.FailLoad != nil {
		return nil, r.s.FailLoad
	}
	return r.s.AccountsFor(userID), nil
}

func (r accountRepo) CreateForUser(_ context.Context, account *entity.Account, userID uuid.UUID) error {
	r.s.Accounts = append(r.s.Accounts, account)
	r.s.UserAccounts = append(r.s.UserAccounts, UserAccount{UserID: userID, AccountID: account.ID})
	return nil
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) FindVisibleToUser(_ context.Context, userID uuid.UUID) ([]*entity.Category, error) {
	var out []*entity.Category
	for _, c := range r.s.Categories {
		if c.IsSystem || (c.UserID != nil && *c.UserID == userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r categoryRepo) FindSubcategoriesVisibleToUser(_ context.Context, userID uuid.UUID) ([]*entity.Subcategory, error) {
	var out []*entity.Subcategory
	for _, sub := range r.s.Subcategories {
		if sub.IsSystem || (sub.UserID != nil && *sub.UserID == userID) {
			out = append(out, sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

type transactionRepo struct{ s *Store }

func (r transactionRepo) Create(_ context.Context, t *entity.Transaction) error {
	if r.s.FailTransaction != nil {
		if err := r.s.FailTransaction(t); err != nil {
			return err
		}
	}
	if t.PlaidTransactionID != nil {
		for _, existing := range r.s.Transactions {
			if existing.UserID == t.UserID && existing.PlaidTransactionID != nil &&
				*existing.PlaidTransactionID == *t.PlaidTransactionID {
				return fmt.Errorf("%w: transactions.user_id, transactions.plaid_transaction_id", ErrUniqueViolation)
			}
		}
	}
	r.s.Transactions = append(r.s.Transactions, t)
	return nil
}

func (r transactionRepo) FindExternalIDsByUser(_ context.Context, userID uuid.UUID) ([]string, error) {
	if r.s.FailLoad != nil {
		return nil, r.s.FailLoad
	}
	var ids []string
	for _, t := range r.s.TransactionsFor(userID) {
		if t.PlaidTransactionID != nil {
			ids = append(ids, *t.PlaidTransactionID)
		}
	}
	return ids, nil
}

func (r transactionRepo) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(r.s.TransactionsFor(userID))), nil
}

type budgetRepo struct{ s *Store }

func (r budgetRepo) FindMonthly(_ context.Context, userID uuid.UUID, year, month int) (*entity.BudgetTemplate, error) {
	for _, b := range r.s.MonthlyBudgetsFor(userID) {
		if *b.Year == year && *b.Month == month {
			return b, nil
		}
	}
	return nil, domainerror.ErrBudgetNotFound
}

func (r budgetRepo) FindDefault(_ context.Context, userID uuid.UUID) (*entity.BudgetTemplate, error) {
	for _, b := range r.s.Budgets {
		if b.UserID == userID && b.IsDefault {
			return b, nil
		}
	}
	return nil, domainerror.ErrBudgetNotFound
}

func (r budgetRepo) Create(_ context.Context, template *entity.BudgetTemplate) error {
	if !template.IsDefault {
		for _, b := range r.s.MonthlyBudgetsFor(template.UserID) {
			if *b.Year == *template.Year && *b.Month == *template.Month {
				return fmt.Errorf("%w: budget_templates.user_id, year, month", ErrUniqueViolation)
			}
		}
	}
	r.s.Budgets = append(r.s.Budgets, template)
	return nil
}

func (r budgetRepo) FindUserIDsWithDefault(_ context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, b := range r.s.Budgets {
		if b.IsDefault {
			ids = append(ids, b.UserID)
		}
	}
	return ids, nil
}
