package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nishadmahmud/apple-nation/internal/catalog"
	"github.com/nishadmahmud/apple-nation/internal/domain"
)

// Catalog is the slice of the aggregator the handler needs.
type Catalog interface {
	Query(ctx context.Context, p catalog.Params) *catalog.Result
	Categories() []domain.Category
}

// ProductDetailer fetches a single product from the remote API.
type ProductDetailer interface {
	ProductDetail(ctx context.Context, id string) (*domain.Product, error)
}

type ProductHandler struct {
	catalog  Catalog
	detailer ProductDetailer
	engine   CartEngine
	timeout  time.Duration
}

func NewProductHandler(cat Catalog, detailer ProductDetailer, engine CartEngine, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog:  cat,
		detailer: detailer,
		engine:   engine,
		timeout:  timeout,
	}
}

// ProductView decorates a product with the caller's cart membership so the
// UI can render "already in cart" without a second round trip.
type ProductView struct {
	domain.Product
	InCart bool `json:"in_cart"`
}

type ProductsResponse struct {
	Products    []ProductView `json:"products"`
	TotalItems  int           `json:"total_items"`
	TotalPages  int           `json:"total_pages"`
	CurrentPage int           `json:"current_page"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))

	result := h.catalog.Query(ctx, catalog.Params{
		Category: q.Get("category"),
		Price:    q.Get("price"),
		Sort:     q.Get("sort"),
		Search:   q.Get("search"),
		Page:     page,
	})

	snap := h.engine.Get(ctx, sessionFromContext(r.Context()))
	products := make([]ProductView, len(result.Products))
	for i, p := range result.Products {
		products[i] = ProductView{
			Product: p,
			InCart:  snap.HasProduct(p.ID.String()),
		}
	}

	respondJSON(w, http.StatusOK, ProductsResponse{
		Products:    products,
		TotalItems:  result.TotalItems,
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
	})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	product, err := h.detailer.ProductDetail(ctx, id)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}

	snap := h.engine.Get(ctx, sessionFromContext(r.Context()))
	respondJSON(w, http.StatusOK, ProductView{
		Product: *product,
		InCart:  snap.HasProduct(product.ID.String()),
	})
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Categories())
}
