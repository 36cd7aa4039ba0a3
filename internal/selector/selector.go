package selector

import (
	"log/slog"
	"strings"

	"github.com/wellnesslabco/glowpost/internal/catalog"
)

// DefaultTrendingIngredients is the configured set of ingredient names matched
// against product titles. Ordered; never mutated at runtime.
var DefaultTrendingIngredients = []string{
	"PDRN", "bakuchiol", "peptides", "niacinamide",
	"kojic acid", "retinol", "vitamin C", "hyaluronic acid",
	"collagen", "ceramides", "snail mucin",
}

// Selection is the chosen product plus the trending ingredient that matched
// its name, if any.
type Selection struct {
	Product    catalog.Product
	Ingredient string
}

// Matched reports whether a trending ingredient matched the product name.
func (s Selection) Matched() bool {
	return s.Ingredient != ""
}

// Select picks today's product: the first candidate, in catalog order, whose
// name contains a trending ingredient and whose bestseller flag is set. If no
// candidate satisfies both, the first candidate wins with no ingredient match.
func Select(candidates []catalog.Product, trending []string) (Selection, error) {
	if len(candidates) == 0 {
		return Selection{}, catalog.ErrEmpty
	}

	for _, product := range candidates {
		ingredient, ok := matchTrending(product.Name, trending)
		if ok && product.Bestseller {
			slog.Info("selected trending bestseller",
				"asin", product.ASIN,
				"product", product.Name,
				"ingredient", ingredient,
			)
			return Selection{Product: product, Ingredient: ingredient}, nil
		}
	}

	first := candidates[0]
	slog.Info("no trending bestseller, falling back to first candidate",
		"asin", first.ASIN,
		"product", first.Name,
	)
	return Selection{Product: first}, nil
}

// matchTrending returns the first configured ingredient whose name is a
// case-insensitive substring of the product name.
func matchTrending(productName string, trending []string) (string, bool) {
	nameLower := strings.ToLower(productName)
	for _, ingredient := range trending {
		if strings.Contains(nameLower, strings.ToLower(ingredient)) {
			return ingredient, true
		}
	}
	return "", false
}
