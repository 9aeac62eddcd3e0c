package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/service"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// CatalogHandler serves the public browsing routes and the admin upload routes.
type CatalogHandler struct {
	service  service.CatalogService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler with the provided service.
func NewCatalogHandler(service service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest_catalog"),
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Get("/{id}", h.FindByID)
	})
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", h.Categories)
		r.Get("/{id}/products", h.FindByCategory)
	})
}

// RegisterAdminRoutes registers the upload routes; callers mount them behind the admin gate.
func (h *CatalogHandler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Post("/products", h.CreateProduct)
		r.Post("/categories", h.CreateCategory)
	})
}

// FindAll retrieves a page of products.
func (h *CatalogHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	limit, ok := web.ParseValidateGt(r, w, mLogger, "limit", 0)
	if !ok {
		return
	}
	offset, ok := web.ParseValidateGte(r, w, mLogger, "offset", 0)
	if !ok {
		return
	}

	list, err := h.service.FindAll(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByID retrieves a product and its variants.
func (h *CatalogHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseUUIDParam(w, r, mLogger, "id")
	if !ok {
		return
	}

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sferrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "id", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "id", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Categories retrieves all categories.
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)

	list, err := h.service.Categories(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving categories", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByCategory retrieves a page of the category's products.
func (h *CatalogHandler) FindByCategory(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseUUIDParam(w, r, mLogger, "id")
	if !ok {
		return
	}
	limit, ok := web.ParseValidateGt(r, w, mLogger, "limit", 0)
	if !ok {
		return
	}
	offset, ok := web.ParseValidateGte(r, w, mLogger, "offset", 0)
	if !ok {
		return
	}

	list, err := h.service.FindByCategory(r.Context(), id, offset, limit)
	if err != nil {
		if errors.Is(err, sferrors.ErrCategoryNotFound) {
			mLogger.WarnContext(r.Context(), "Category not found", "id", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Category with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving category products", "id", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// CreateCategory handles the admin category upload.
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	var dto service.CategoryCreateDto
	if !decodeAndValidate(w, r, mLogger, h.validate, &dto) {
		return
	}

	created, err := h.service.CreateCategory(r.Context(), dto)
	if err != nil {
		if errors.Is(err, sferrors.ErrCategoryExists) {
			mLogger.WarnContext(r.Context(), "Category already exists", "name", dto.Name)
			web.RespondError(w, mLogger, http.StatusConflict, fmt.Sprintf("Category %q already exists", dto.Name))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating category", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create category")
		return
	}
	mLogger.InfoContext(r.Context(), "Category created successfully", slog.String("id", created.ID))
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// CreateProduct handles the admin product upload, variant matrix included.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	var dto service.ProductCreateDto
	if !decodeAndValidate(w, r, mLogger, h.validate, &dto) {
		return
	}

	created, err := h.service.CreateProduct(r.Context(), dto)
	if err != nil {
		if errors.Is(err, sferrors.ErrVariantMatrix) {
			mLogger.WarnContext(r.Context(), "Variant matrix rejected", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, sferrors.ErrCategoryNotFound) {
			mLogger.WarnContext(r.Context(), "Category not found", "category_id", dto.CategoryID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Category with ID %s not found", dto.CategoryID))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", slog.String("id", created.ID))
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}
