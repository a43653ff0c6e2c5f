package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nishadmahmud/apple-nation/internal/domain"
)

// DefaultCategories mirrors the storefront's preloaded category list. The
// totalPages hints are best-effort and may drift from the live catalog; the
// aggregator trusts API-reported pagination metadata over them.
var DefaultCategories = []domain.Category{
	{ID: "1", Name: "iPhone", Slug: "iphone", TotalPages: 4},
	{ID: "2", Name: "iPad", Slug: "ipad", TotalPages: 2},
	{ID: "3", Name: "MacBook", Slug: "macbook", TotalPages: 2},
	{ID: "4", Name: "Apple Watch", Slug: "apple-watch", TotalPages: 1},
	{ID: "5", Name: "AirPods", Slug: "airpods", TotalPages: 1},
	{ID: "6", Name: "Accessories", Slug: "accessories", TotalPages: 3},
}

// LoadCategories reads category descriptors from a JSON file. An empty path
// returns the built-in defaults.
func LoadCategories(path string) ([]domain.Category, error) {
	if path == "" {
		return DefaultCategories, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}

	var categories []domain.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("decode categories file: %w", err)
	}
	return categories, nil
}
