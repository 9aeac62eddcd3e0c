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

// wishlistResponse is the success/message shape the storefront pages expect.
type wishlistResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WishlistHandler serves the wishlist routes consumed by the storefront pages.
type WishlistHandler struct {
	service service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new WishlistHandler with the provided service.
func NewWishlistHandler(service service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: service,
		logger:  logger.With("component", "rest_wishlist"),
	}
}

// RegisterRoutes registers the wishlist routes.
func (h *WishlistHandler) RegisterRoutes(r chi.Router) {
	r.Route("/wishlist/{productId}", func(r chi.Router) {
		r.Post("/", h.Add)
		r.Delete("/", h.Remove)
	})
}

// Add records the product in the identity's wishlist. Re-adding a product that
// is already present succeeds and says so; no duplicate entry is created.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := requestIdentity(w, r, mLogger)
	if !ok {
		return
	}
	productID, ok := web.ParseUUIDParam(w, r, mLogger, "productId")
	if !ok {
		return
	}

	added, err := h.service.Add(r.Context(), id, productID)
	if err != nil {
		if errors.Is(err, sferrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Wishlist add rejected: unknown product", "product_id", productID)
			web.RespondJSON(w, mLogger, http.StatusNotFound, wishlistResponse{Success: false, Message: "Product not found"})
			return
		}
		mLogger.ErrorContext(r.Context(), "Error adding to wishlist", "product_id", productID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to add to wishlist")
		return
	}

	message := "Product added to wishlist"
	if !added {
		message = "Product already in wishlist"
	}
	web.RespondJSON(w, mLogger, http.StatusOK, wishlistResponse{Success: true, Message: message})
}

// Remove deletes the entry; removing an absent entry still reports success.
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := requestIdentity(w, r, mLogger)
	if !ok {
		return
	}
	productID, ok := web.ParseUUIDParam(w, r, mLogger, "productId")
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), id, productID); err != nil {
		mLogger.ErrorContext(r.Context(), "Error removing from wishlist", "product_id", productID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to remove from wishlist")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, wishlistResponse{Success: true, Message: "Product removed from wishlist"})
}
