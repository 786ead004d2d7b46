package model

// All lists every model owned by this service, in migration order.
func All() []any {
	return []any{
		&AccountModel{},
		&UserAccountModel{},
		&CategoryModel{},
		&SubcategoryModel{},
		&TransactionModel{},
		&BudgetTemplateModel{},
		&BudgetTemplateEntryModel{},
	}
}
