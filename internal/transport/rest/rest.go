// Package rest provides HTTP handlers for the storefront.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/identity"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// requestIdentity pulls the identity placed in the context by the resolver
// middleware. Responds 401 when the route was mounted without it.
func requestIdentity(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (identity.Identity, bool) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		web.RespondError(w, logger, http.StatusUnauthorized, "Unauthorized: missing identity")
		return identity.Identity{}, false
	}
	return id, true
}

// decodeAndValidate decodes the JSON body into dst and validates its struct tags,
// writing the error response itself. Returns false when the request was rejected.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, validate *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// loggerWithReqID creates a logger with the request ID from the context.
func loggerWithReqID(logger *slog.Logger, r *http.Request) *slog.Logger {
	return logger.With("request_id", middleware.GetReqID(r.Context()))
}
