package catalog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/nishadmahmud/apple-nation/internal/domain"
)

const (
	DefaultPageSize = 20
	DefaultCacheTTL = 10 * time.Minute
)

// PageFetcher is the collaborator that retrieves one page of one category.
// Consumers define this interface; Client implements it.
type PageFetcher interface {
	CategoryPage(ctx context.Context, categoryID string, page, pageSize int) (*Page, error)
}

// Params are the query parameters of a product listing request,
// conventionally sourced from the URL query string.
type Params struct {
	Category string
	Price    string
	Sort     string
	Search   string
	Page     int
}

// Result is one page of filtered, sorted products plus pagination metadata.
type Result struct {
	Products    []domain.Product `json:"products"`
	TotalItems  int              `json:"total_items"`
	TotalPages  int              `json:"total_pages"`
	CurrentPage int              `json:"current_page"`
}

type Config struct {
	PageSize int
	CacheTTL time.Duration
	Now      func() time.Time
}

// Aggregator assembles the full catalog from many paginated per-category
// fetches and serves filtered, sorted, paginated views over it. The merged
// "all products" set is held in a single time-boxed cache slot.
type Aggregator struct {
	fetcher    PageFetcher
	categories []domain.Category
	pageSize   int
	ttl        time.Duration
	now        func() time.Time
	logger     *zap.Logger

	sfg singleflight.Group

	mu       sync.Mutex
	cached   []domain.Product
	cachedAt time.Time
}

func NewAggregator(fetcher PageFetcher, categories []domain.Category, cfg Config, logger *zap.Logger) *Aggregator {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Aggregator{
		fetcher:    fetcher,
		categories: categories,
		pageSize:   cfg.PageSize,
		ttl:        cfg.CacheTTL,
		now:        cfg.Now,
		logger:     logger,
	}
}

// Categories returns the preloaded category descriptors.
func (a *Aggregator) Categories() []domain.Category {
	out := make([]domain.Category, len(a.categories))
	copy(out, a.categories)
	return out
}

// Query produces one page of results for the given filters. Fetch failures
// degrade to fewer products; the caller always gets a result.
func (a *Aggregator) Query(ctx context.Context, p Params) *Result {
	products := a.AllProducts(ctx)

	if p.Category != "" && p.Category != "all" {
		// Only replace the working set when the category fetch actually
		// produced something; otherwise fall back to the full catalog.
		if scoped := a.CategoryProducts(ctx, p.Category); len(scoped) > 0 {
			products = scoped
		}
	}

	filtered := filterBySearch(products, p.Search)
	filtered = filterByPrice(filtered, p.Price)
	filtered = sortProducts(filtered, p.Sort)

	pageItems, totalItems, totalPages, currentPage := paginate(filtered, p.Page, a.pageSize)
	return &Result{
		Products:    pageItems,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		CurrentPage: currentPage,
	}
}

// AllProducts returns the de-duplicated union of every category's products.
// Calls within the cache TTL reuse the previous aggregation; a cold or
// expired cache triggers a full re-fetch, collapsed across concurrent
// callers by singleflight.
func (a *Aggregator) AllProducts(ctx context.Context) []domain.Product {
	a.mu.Lock()
	if a.cached != nil && a.now().Sub(a.cachedAt) < a.ttl {
		cached := a.cached
		a.mu.Unlock()
		return cached
	}
	a.mu.Unlock()

	v, _, _ := a.sfg.Do("all-products", func() (interface{}, error) {
		a.mu.Lock()
		if a.cached != nil && a.now().Sub(a.cachedAt) < a.ttl {
			cached := a.cached
			a.mu.Unlock()
			return cached, nil
		}
		a.mu.Unlock()

		products := a.aggregate(ctx)

		a.mu.Lock()
		a.cached = products
		a.cachedAt = a.now()
		a.mu.Unlock()
		return products, nil
	})

	return v.([]domain.Product)
}

// aggregate fetches every known page of every category concurrently.
// Results are reassembled by category and page index, so the final order is
// deterministic regardless of which request finishes first: categories in
// input order, pages in ascending order within a category, first occurrence
// wins on duplicate ids.
func (a *Aggregator) aggregate(ctx context.Context) []domain.Product {
	perCategory := make([][]domain.Product, len(a.categories))

	var wg sync.WaitGroup
	for i, cat := range a.categories {
		wg.Add(1)
		go func(i int, cat domain.Category) {
			defer wg.Done()
			perCategory[i] = a.fetchCategoryPages(ctx, cat.ID.String(), pageHint(cat))
		}(i, cat)
	}
	wg.Wait()

	var all []domain.Product
	for _, products := range perCategory {
		all = append(all, products...)
	}
	return dedupe(all)
}

// CategoryProducts fetches every page of a single category. Page 1 is
// fetched first to learn the API-reported page count; the descriptor's
// totalPages hint is only a fallback when the API omits pagination metadata.
func (a *Aggregator) CategoryProducts(ctx context.Context, categoryID string) []domain.Product {
	first, err := a.fetcher.CategoryPage(ctx, categoryID, 1, a.pageSize)
	if err != nil {
		a.logger.Warn("category first page fetch failed",
			zap.String("category_id", categoryID),
			zap.Error(err))
		return nil
	}

	totalPages := first.PageCount(a.pageSize)
	if totalPages < 1 {
		totalPages = a.categoryHint(categoryID)
	}

	products := first.Products
	if totalPages > 1 {
		rest := make([][]domain.Product, totalPages-1)
		var wg sync.WaitGroup
		for page := 2; page <= totalPages; page++ {
			wg.Add(1)
			go func(page int) {
				defer wg.Done()
				p, err := a.fetcher.CategoryPage(ctx, categoryID, page, a.pageSize)
				if err != nil {
					a.logger.Warn("category page fetch failed",
						zap.String("category_id", categoryID),
						zap.Int("page", page),
						zap.Error(err))
					return
				}
				rest[page-2] = p.Products
			}(page)
		}
		wg.Wait()

		for _, pageProducts := range rest {
			products = append(products, pageProducts...)
		}
	}

	return dedupe(products)
}

// fetchCategoryPages fetches pages 1..totalPages of a category concurrently,
// reassembling by page index. A failed page contributes nothing.
func (a *Aggregator) fetchCategoryPages(ctx context.Context, categoryID string, totalPages int) []domain.Product {
	if totalPages < 1 {
		totalPages = 1
	}

	pages := make([][]domain.Product, totalPages)
	var wg sync.WaitGroup
	for page := 1; page <= totalPages; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			p, err := a.fetcher.CategoryPage(ctx, categoryID, page, a.pageSize)
			if err != nil {
				a.logger.Warn("category page fetch failed",
					zap.String("category_id", categoryID),
					zap.Int("page", page),
					zap.Error(err))
				return
			}
			pages[page-1] = p.Products
		}(page)
	}
	wg.Wait()

	var products []domain.Product
	for _, pageProducts := range pages {
		products = append(products, pageProducts...)
	}
	return products
}

func (a *Aggregator) categoryHint(categoryID string) int {
	for _, cat := range a.categories {
		if cat.ID.String() == categoryID {
			return pageHint(cat)
		}
	}
	return 1
}

func pageHint(cat domain.Category) int {
	if cat.TotalPages > 0 {
		return cat.TotalPages
	}
	return 1
}

// dedupe drops repeated product ids, keeping the first occurrence.
// Products without an id are dropped outright.
func dedupe(products []domain.Product) []domain.Product {
	seen := make(map[domain.ID]struct{}, len(products))
	unique := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}
