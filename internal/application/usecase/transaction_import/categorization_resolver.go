package transactionimport

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// UnrecognizedReason explains why a categorization could not be resolved.
type UnrecognizedReason string

const (
	ReasonCategoryNotFound    UnrecognizedReason = "category_not_found"
	ReasonSubcategoryNotFound UnrecognizedReason = "subcategory_not_found"
	ReasonSubcategoryMismatch UnrecognizedReason = "subcategory_mismatch"
)

// UnrecognizedCategorization flags a row whose category names need review.
type UnrecognizedCategorization struct {
	RowIndex        int
	CategoryName    *string
	SubcategoryName *string
	Reason          UnrecognizedReason
	Suggestion      *string // Closest known name, if any
}

// categorization is the outcome of resolving one row's category names.
type categorization struct {
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	Warnings      []string
}

// categorizationResolver maps category and subcategory names to identifiers.
// It never fails; problems become warnings and unrecognized entries.
type categorizationResolver struct {
	cache        *lookupCache
	unrecognized []UnrecognizedCategorization
}

func newCategorizationResolver(cache *lookupCache) *categorizationResolver {
	return &categorizationResolver{cache: cache}
}

func (r *categorizationResolver) resolve(rowIndex int, categoryName, subcategoryName *string) categorization {
	hasCategory := categoryName != nil && *categoryName != ""
	hasSubcategory := subcategoryName != nil && *subcategoryName != ""

	var result categorization
	if !hasCategory && !hasSubcategory {
		return result
	}

	if hasCategory {
		category, ok := r.cache.categories[nameKey(*categoryName)]
		if !ok {
			r.flag(rowIndex, categoryName, subcategoryName, ReasonCategoryNotFound,
				closestName(*categoryName, r.cache.categoryNames))
			result.Warnings = append(result.Warnings, fmt.Sprintf("Category '%s' not found", *categoryName))
			if hasSubcategory {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Subcategory '%s' skipped because category not found", *subcategoryName))
			}
			return result
		}
		id := category.ID
		result.CategoryID = &id
	}

	if !hasSubcategory {
		return result
	}

	matches, ok := r.cache.subcategories[nameKey(*subcategoryName)]
	if !ok || len(matches) == 0 {
		r.flag(rowIndex, categoryName, subcategoryName, ReasonSubcategoryNotFound,
			closestName(*subcategoryName, r.cache.subcategoryNames))
		result.Warnings = append(result.Warnings, fmt.Sprintf("Subcategory '%s' not found", *subcategoryName))
		return result
	}

	if result.CategoryID == nil {
		// No category given: the earliest subcategory with this name decides both ids.
		sub := matches[0]
		subID, catID := sub.ID, sub.CategoryID
		result.SubcategoryID = &subID
		result.CategoryID = &catID
		return result
	}

	for _, sub := range matches {
		if sub.CategoryID == *result.CategoryID {
			subID := sub.ID
			result.SubcategoryID = &subID
			return result
		}
	}

	var owner *string
	if parent, ok := r.cache.categoryByID[matches[0].CategoryID]; ok {
		owner = &parent.Name
	}
	r.flag(rowIndex, categoryName, subcategoryName, ReasonSubcategoryMismatch, owner)
	result.Warnings = append(result.Warnings,
		fmt.Sprintf("Subcategory '%s' exists but not under category '%s'", *subcategoryName, *categoryName))

	return result
}

func (r *categorizationResolver) flag(rowIndex int, categoryName, subcategoryName *string, reason UnrecognizedReason, suggestion *string) {
	r.unrecognized = append(r.unrecognized, UnrecognizedCategorization{
		RowIndex:        rowIndex,
		CategoryName:    categoryName,
		SubcategoryName: subcategoryName,
		Reason:          reason,
		Suggestion:      suggestion,
	})
}

// closestName picks the candidate that fuzzily contains name (or is contained in it)
// with the smallest edit distance. Ties go to the alphabetically first candidate.
func closestName(name string, candidates []string) *string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	best, bestDistance := "", -1
	for _, candidate := range candidates {
		if !fuzzy.MatchNormalizedFold(name, candidate) && !fuzzy.MatchNormalizedFold(candidate, name) {
			continue
		}

		distance := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(candidate))
		if distance > max(len(name), len(candidate))/2 {
			continue
		}

		if bestDistance == -1 || distance < bestDistance || (distance == bestDistance && candidate < best) {
			best, bestDistance = candidate, distance
		}
	}

	if bestDistance == -1 {
		return nil
	}
	return &best
}
