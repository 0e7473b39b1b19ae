// Package filters defines the read predicates of the catalog over an
// in-memory product collection. SQL stores express the same predicates as
// queries; both must agree on case and boundary handling.
package filters

import (
	"strings"

	"github.com/shopspring/decimal"

	"catalog/internal/models"
)

// Predicate reports whether a product belongs to a query result.
type Predicate func(p models.Product) bool

// All matches every product.
func All() Predicate {
	return func(models.Product) bool { return true }
}

// NameContains matches products whose name contains query, ignoring case.
func NameContains(query string) Predicate {
	q := strings.ToLower(query)
	return func(p models.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q)
	}
}

// PriceAtLeast matches price >= floor.
func PriceAtLeast(floor decimal.Decimal) Predicate {
	return func(p models.Product) bool { return p.Price.GreaterThanOrEqual(floor) }
}

// StockBelow matches stock < ceiling.
func StockBelow(ceiling int) Predicate {
	return func(p models.Product) bool { return p.Stock < ceiling }
}

// StockAbove matches stock > threshold.
func StockAbove(threshold int) Predicate {
	return func(p models.Product) bool { return p.Stock > threshold }
}

// PriceBetween matches min <= price <= max.
func PriceBetween(min, max decimal.Decimal) Predicate {
	return And(PriceAtLeast(min), func(p models.Product) bool {
		return p.Price.LessThanOrEqual(max)
	})
}

// NameContainsWithStockAbove matches a case-insensitive name substring and
// stock > threshold.
func NameContainsWithStockAbove(query string, threshold int) Predicate {
	return And(NameContains(query), StockAbove(threshold))
}

// And matches when every predicate matches.
func And(preds ...Predicate) Predicate {
	return func(p models.Product) bool {
		for _, pred := range preds {
			if !pred(p) {
				return false
			}
		}
		return true
	}
}

// Apply returns the products matching pred, keeping their order. The result
// is never nil.
func Apply(products []models.Product, pred Predicate) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
