package rest

import (
	"errors"
	"log/slog"
	"net/http"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/service"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	service  service.UserService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the provided service.
func NewAuthHandler(service service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest_auth"),
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})
}

// Register creates a new account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	var dto service.RegisterDto
	if !decodeAndValidate(w, r, mLogger, h.validate, &dto) {
		return
	}

	user, err := h.service.Register(r.Context(), dto)
	if err != nil {
		if errors.Is(err, sferrors.ErrEmailTaken) {
			mLogger.WarnContext(r.Context(), "Registration rejected: email taken")
			web.RespondError(w, mLogger, http.StatusConflict, "Email already registered")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error registering user", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to register")
		return
	}
	mLogger.InfoContext(r.Context(), "User registered successfully", slog.String("id", user.ID))
	web.RespondJSON(w, mLogger, http.StatusCreated, user)
}

// Login verifies credentials and returns an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	var dto service.LoginDto
	if !decodeAndValidate(w, r, mLogger, h.validate, &dto) {
		return
	}

	result, err := h.service.Login(r.Context(), dto)
	if err != nil {
		if errors.Is(err, sferrors.ErrInvalidCredentials) {
			mLogger.WarnContext(r.Context(), "Login rejected: invalid credentials")
			web.RespondError(w, mLogger, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error logging in", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to log in")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, result)
}
