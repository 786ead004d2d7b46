package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/budget-sync/internal/integration/persistence/model"
	"github.com/finance-tracker/budget-sync/test/integration/mock"
)

func (t *testContext) iHaveAnAccountOfType(name, accountType string) error {
	return t.createAccount(t.currentUserID, name, accountType)
}

func (t *testContext) anotherUserHasAnAccount(name string) error {
	return t.createAccount(uuid.New(), name, "depository")
}

func (t *testContext) createAccount(userID uuid.UUID, name, accountType string) error {
	now := t.tick()
	account := &model.AccountModel{
		ID:        uuid.New(),
		Name:      name,
		Type:      accountType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.db.DbConn.Create(account).Error; err != nil {
		return err
	}
	return t.db.DbConn.Create(&model.UserAccountModel{
		UserID:    userID,
		AccountID: account.ID,
		CreatedAt: now,
	}).Error
}

func (t *testContext) aSystemCategoryExists(name string) error {
	return t.createCategory(name, nil)
}

func (t *testContext) iHaveACategory(name string) error {
	userID := t.currentUserID
	return t.createCategory(name, &userID)
}

func (t *testContext) createCategory(name string, userID *uuid.UUID) error {
	now := t.tick()
	category := &model.CategoryModel{
		ID:        uuid.New(),
		Name:      name,
		IsSystem:  userID == nil,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.db.DbConn.Create(category).Error; err != nil {
		return err
	}
	t.categories[name] = category.ID
	return nil
}

func (t *testContext) theCategoryHasASubcategory(categoryName, name string) error {
	var category model.CategoryModel
	if err := t.db.DbConn.Where("id = ?", t.categories[categoryName]).First(&category).Error; err != nil {
		return fmt.Errorf("category %q was not seeded: %w", categoryName, err)
	}

	now := t.tick()
	return t.db.DbConn.Create(&model.SubcategoryModel{
		ID:         uuid.New(),
		CategoryID: category.ID,
		Name:       name,
		IsSystem:   category.IsSystem,
		UserID:     category.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}).Error
}

func (t *testContext) iHaveATransactionWithExternalID(externalID string) error {
	now := t.tick()
	return t.db.DbConn.Create(&model.TransactionModel{
		ID:                 uuid.New(),
		UserID:             t.currentUserID,
		PlaidTransactionID: &externalID,
		Amount:             decimal.NewFromInt(-10),
		Date:               time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Name:               "Earlier import",
		CreatedAt:          now,
		UpdatedAt:          now,
	}).Error
}

// iHaveADefaultBudgetWithEntries expects a table with "category" and "amount" columns.
func (t *testContext) iHaveADefaultBudgetWithEntries(table *godog.Table) error {
	now := t.tick()
	template := &model.BudgetTemplateModel{
		ID:        uuid.New(),
		UserID:    t.currentUserID,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	total := decimal.Zero
	for _, row := range table.Rows[1:] {
		categoryName, rawAmount := row.Cells[0].Value, row.Cells[1].Value

		amount, err := decimal.NewFromString(rawAmount)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", rawAmount, err)
		}

		entry := model.BudgetTemplateEntryModel{
			ID:             uuid.New(),
			TemplateID:     template.ID,
			BudgetedAmount: amount,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if id, ok := t.categories[categoryName]; ok {
			entry.CategoryID = &id
		}
		template.Entries = append(template.Entries, entry)
		total = total.Add(amount)
	}
	template.TotalBudget = total

	return t.db.DbConn.Create(template).Error
}

func (t *testContext) iHaveABudgetFor(year, month int) error {
	now := t.tick()
	return t.db.DbConn.Create(&model.BudgetTemplateModel{
		ID:          uuid.New(),
		UserID:      t.currentUserID,
		Year:        &year,
		Month:       &month,
		TotalBudget: decimal.NewFromInt(100),
		CreatedAt:   now,
		UpdatedAt:   now,
	}).Error
}

func (t *testContext) anotherImportIsRunningForMe() error {
	return mock.NewRedis().Set(context.Background(), t.lockKey(), "other-request", time.Minute).Err()
}

func (t *testContext) theImportLockShouldBeReleased() error {
	n, err := mock.NewRedis().Exists(context.Background(), t.lockKey()).Result()
	if err != nil {
		return err
	}
	if n != 0 {
		return fmt.Errorf("import lock %s is still held", t.lockKey())
	}
	return nil
}

func (t *testContext) lockKey() string {
	return "import-lock:" + t.currentUserID.String()
}
