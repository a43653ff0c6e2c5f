package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/nishadmahmud/apple-nation/internal/domain"
)

// Sort options accepted in the query string. Anything else keeps the stable
// input order.
const (
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortNameAsc   = "name-asc"
	SortNameDesc  = "name-desc"
)

// filterBySearch keeps products whose name contains the query,
// case-insensitively. A blank or whitespace-only query passes everything.
func filterBySearch(products []domain.Product, query string) []domain.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) {
			out = append(out, p)
		}
	}
	return out
}

// filterByPrice applies a "min-max" or "min-inf" range, inclusive, against
// each product's effective price. A non-numeric minimum disables the filter;
// a missing or non-numeric maximum means unbounded.
func filterByPrice(products []domain.Product, priceRange string) []domain.Product {
	if priceRange == "" || priceRange == "all" {
		return products
	}

	minStr, maxStr, _ := strings.Cut(priceRange, "-")
	min, err := strconv.ParseFloat(minStr, 64)
	if err != nil {
		return products
	}

	unbounded := true
	var max float64
	if maxStr != "" && maxStr != "inf" {
		if v, err := strconv.ParseFloat(maxStr, 64); err == nil {
			max = v
			unbounded = false
		}
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		price := p.EffectivePrice()
		if price < min {
			continue
		}
		if !unbounded && price > max {
			continue
		}
		out = append(out, p)
	}
	return out
}

// sortProducts orders a copy of the input; the original slice is never
// mutated. Missing prices sort as 0, name comparison is case-insensitive.
func sortProducts(products []domain.Product, option string) []domain.Product {
	sorted := make([]domain.Product, len(products))
	copy(sorted, products)

	switch option {
	case SortPriceLow:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].EffectivePrice() < sorted[j].EffectivePrice()
		})
	case SortPriceHigh:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].EffectivePrice() > sorted[j].EffectivePrice()
		})
	case SortNameAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
		})
	case SortNameDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Name) > strings.ToLower(sorted[j].Name)
		})
	}
	return sorted
}

// paginate slices one 1-indexed page out of the filtered set. Invalid or
// out-of-range pages fall back to page 1.
func paginate(products []domain.Product, page, pageSize int) (items []domain.Product, totalItems, totalPages, currentPage int) {
	totalItems = len(products)
	totalPages = (totalItems + pageSize - 1) / pageSize

	if page < 1 || (totalPages > 0 && page > totalPages) {
		page = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > totalItems {
		start = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	return products[start:end], totalItems, totalPages, page
}
