package rest

import (
	"errors"
	"log/slog"
	"net/http"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/service"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
)

// outOfStockMessage is the literal the storefront front end alerts on a 409.
const outOfStockMessage = "Product out of stock"

// CartHandler serves the cart routes consumed by the storefront pages.
type CartHandler struct {
	service service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new CartHandler with the provided service.
func NewCartHandler(service service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With("component", "rest_cart"),
	}
}

// RegisterRoutes registers the cart routes. The paths predate this service and
// are kept wire-compatible with the pages calling them.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/count", h.Count)
		r.Post("/{variantId}/{qty}/{stock}", h.Add)
		r.Route("/{variantId}", func(r chi.Router) {
			r.Patch("/", h.Decrement)
			r.Delete("/", h.Remove)
		})
	})
}

// Count returns the number of distinct lines in the identity's cart.
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := requestIdentity(w, r, mLogger)
	if !ok {
		return
	}

	count, err := h.service.Count(r.Context(), id)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error counting cart lines", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch cart count")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]int64{"count": count})
}

// Add merges the requested quantity into the cart, bounded by variant stock.
// The stock path segment is what the page believed was available when it was
// rendered; it is validated for shape but the ceiling is re-read atomically
// with the upsert, so a stale page cannot oversell.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := requestIdentity(w, r, mLogger)
	if !ok {
		return
	}
	variantID, ok := web.ParseUUIDParam(w, r, mLogger, "variantId")
	if !ok {
		return
	}
	qty, ok := web.ParseIntParam(w, r, mLogger, "qty")
	if !ok {
		return
	}
	if qty == 0 {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Quantity must be positive")
		return
	}
	if _, ok := web.ParseIntParam(w, r, mLogger, "stock"); !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to add to cart",
		"scope", id.Kind.String(), "variant_id", variantID, "qty", qty)
	count, err := h.service.Add(r.Context(), id, variantID, qty)
	if err != nil {
		if errors.Is(err, sferrors.ErrOutOfStock) {
			mLogger.WarnContext(r.Context(), "Add rejected: out of stock", "variant_id", variantID, "qty", qty)
			web.RespondJSON(w, mLogger, http.StatusConflict, map[string]string{"message": outOfStockMessage})
			return
		}
		if errors.Is(err, sferrors.ErrVariantNotFound) {
			mLogger.WarnContext(r.Context(), "Add rejected: unknown variant", "variant_id", variantID)
			web.RespondError(w, mLogger, http.StatusNotFound, "Variant not found")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error adding to cart", "variant_id", variantID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to add to cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]int64{"count": count})
}

// Decrement reduces the line's quantity by one; a missing line is a no-op.
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := requestIdentity(w, r, mLogger)
	if !ok {
		return
	}
	variantID, ok := web.ParseUUIDParam(w, r, mLogger, "variantId")
	if !ok {
		return
	}

	count, err := h.service.Decrement(r.Context(), id, variantID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error decrementing cart line", "variant_id", variantID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]int64{"count": count})
}

// Remove deletes the line entirely; removing an absent line succeeds.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := requestIdentity(w, r, mLogger)
	if !ok {
		return
	}
	variantID, ok := web.ParseUUIDParam(w, r, mLogger, "variantId")
	if !ok {
		return
	}

	count, err := h.service.Remove(r.Context(), id, variantID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error removing cart line", "variant_id", variantID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]int64{"count": count})
}
