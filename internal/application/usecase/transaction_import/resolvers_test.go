package transactionimport

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/budget-sync/internal/domain/entity"
)

func TestClosestName(t *testing.T) {
	candidates := []string{"Food", "Groceries", "Transport", "Travel"}

	tests := []struct {
		name string
		in   string
		want *string
	}{
		{name: "typo", in: "Grocries", want: ptr("Groceries")},
		{name: "missing letter", in: "Fod", want: ptr("Food")},
		{name: "case and spacing", in: "  travel ", want: ptr("Travel")},
		{name: "prefix of a longer name", in: "Transpor", want: ptr("Transport")},
		{name: "nothing similar", in: "Salary", want: nil},
		{name: "blank", in: "   ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, closestName(tt.in, candidates))
		})
	}

	t.Run("no candidates", func(t *testing.T) {
		assert.Nil(t, closestName("Food", nil))
	})
}

func TestLookupCache_UserCategoryShadowsSystem(t *testing.T) {
	userID := uuid.New()
	system := entity.NewSystemCategory("Food")
	own := entity.NewCategory("food", userID)

	cache := newLookupCache(nil, []*entity.Category{system, own}, nil)

	assert.Equal(t, own.ID, cache.categories["food"].ID)
	assert.Equal(t, []string{"Food"}, cache.categoryNames)
	// both stay addressable by id for mismatch suggestions
	assert.Len(t, cache.categoryByID, 2)
}

func TestCategorizationResolver_ShadowedSystemSubcategory(t *testing.T) {
	userID := uuid.New()
	system := entity.NewSystemCategory("Food")
	own := entity.NewCategory("Food", userID)
	coffee := entity.NewSubcategory("Coffee", system.ID, userID)
	coffee.IsSystem, coffee.UserID = true, nil

	cache := newLookupCache(nil, []*entity.Category{system, own}, []*entity.Subcategory{coffee})
	resolver := newCategorizationResolver(cache)

	t.Run("named category resolves to the user's own", func(t *testing.T) {
		got := resolver.resolve(0, ptr("Food"), ptr("Coffee"))

		require.NotNil(t, got.CategoryID)
		assert.Equal(t, own.ID, *got.CategoryID)
		assert.Nil(t, got.SubcategoryID)
		assert.Equal(t, []string{"Subcategory 'Coffee' exists but not under category 'Food'"}, got.Warnings)

		require.Len(t, resolver.unrecognized, 1)
		assert.Equal(t, ReasonSubcategoryMismatch, resolver.unrecognized[0].Reason)
		assert.Equal(t, ptr("Food"), resolver.unrecognized[0].Suggestion)
	})

	t.Run("subcategory alone still reaches the system parent", func(t *testing.T) {
		got := resolver.resolve(1, nil, ptr("Coffee"))

		require.NotNil(t, got.CategoryID)
		require.NotNil(t, got.SubcategoryID)
		assert.Equal(t, system.ID, *got.CategoryID)
		assert.Equal(t, coffee.ID, *got.SubcategoryID)
		assert.Empty(t, got.Warnings)
	})
}

func TestCategorizationResolver_SubcategoryTieBreak(t *testing.T) {
	userID := uuid.New()
	food := entity.NewCategory("Food", userID)
	drinks := entity.NewCategory("Drinks", userID)
	first := entity.NewSubcategory("Coffee", food.ID, userID)
	second := entity.NewSubcategory("Coffee", drinks.ID, userID)

	cache := newLookupCache(nil, []*entity.Category{food, drinks}, []*entity.Subcategory{first, second})
	resolver := newCategorizationResolver(cache)

	t.Run("subcategory alone takes the earliest match", func(t *testing.T) {
		got := resolver.resolve(0, nil, ptr("Coffee"))

		require.NotNil(t, got.CategoryID)
		require.NotNil(t, got.SubcategoryID)
		assert.Equal(t, food.ID, *got.CategoryID)
		assert.Equal(t, first.ID, *got.SubcategoryID)
		assert.Empty(t, got.Warnings)
	})

	t.Run("category picks its own subcategory among duplicates", func(t *testing.T) {
		got := resolver.resolve(1, ptr("drinks"), ptr("coffee"))

		require.NotNil(t, got.SubcategoryID)
		assert.Equal(t, second.ID, *got.SubcategoryID)
		assert.Empty(t, got.Warnings)
	})

	t.Run("nothing given resolves nothing", func(t *testing.T) {
		got := resolver.resolve(2, nil, nil)

		assert.Nil(t, got.CategoryID)
		assert.Nil(t, got.SubcategoryID)
		assert.Empty(t, got.Warnings)
	})

	assert.Empty(t, resolver.unrecognized)
}

func TestRowUndo_RunsNewestFirst(t *testing.T) {
	var order []int
	undo := &rowUndo{}
	undo.add(func() { order = append(order, 1) })
	undo.add(func() { order = append(order, 2) })

	undo.run()
	undo.run()

	assert.Equal(t, []int{2, 1}, order)
}
