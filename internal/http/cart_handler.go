package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nishadmahmud/apple-nation/internal/cart"
	"github.com/nishadmahmud/apple-nation/internal/domain"
)

// CartEngine is the slice of the cart service the handler needs.
type CartEngine interface {
	Get(ctx context.Context, sessionID string) cart.Snapshot
	AddItem(ctx context.Context, sessionID string, item domain.LineItem, quantity int) cart.Snapshot
	UpdateQuantity(ctx context.Context, sessionID, key string, quantity int) cart.Snapshot
	RemoveItem(ctx context.Context, sessionID, key string) cart.Snapshot
	Clear(ctx context.Context, sessionID string) cart.Snapshot
}

type CartHandler struct {
	engine  CartEngine
	timeout time.Duration
}

func NewCartHandler(engine CartEngine, timeout time.Duration) *CartHandler {
	return &CartHandler{
		engine:  engine,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID  domain.ID         `json:"product_id"`
	VariantID  domain.ID         `json:"variant_id"`
	Name       string            `json:"name"`
	Price      float64           `json:"price"`
	Image      string            `json:"image"`
	Attributes map[string]string `json:"attributes"`
	Quantity   int               `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := sessionFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	respondJSON(w, http.StatusOK, h.engine.Get(ctx, sessionID))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := sessionFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_name", "name is required")
		return
	}
	if req.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}

	// Quantity is not validated here: the engine coerces anything below 1
	// up to 1 instead of rejecting the add.
	snap := h.engine.AddItem(ctx, sessionID, domain.LineItem{
		ProductID:  req.ProductID.String(),
		VariantID:  req.VariantID.String(),
		Name:       req.Name,
		Price:      req.Price,
		Image:      req.Image,
		Attributes: req.Attributes,
	}, req.Quantity)

	respondJSON(w, http.StatusCreated, snap)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := sessionFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	key := chi.URLParam(r, "key")
	if key == "" {
		respondError(w, http.StatusBadRequest, "invalid_key", "line item key is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	respondJSON(w, http.StatusOK, h.engine.UpdateQuantity(ctx, sessionID, key, req.Quantity))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := sessionFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	key := chi.URLParam(r, "key")
	if key == "" {
		respondError(w, http.StatusBadRequest, "invalid_key", "line item key is required")
		return
	}

	respondJSON(w, http.StatusOK, h.engine.RemoveItem(ctx, sessionID, key))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := sessionFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	respondJSON(w, http.StatusOK, h.engine.Clear(ctx, sessionID))
}
