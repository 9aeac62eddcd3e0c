package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// mockUserService is a mock implementation of the UserService interface
type mockUserService struct {
	user   *service.UserDto
	result *service.LoginResultDto
	error  error
}

func (m *mockUserService) Register(_ context.Context, _ service.RegisterDto) (*service.UserDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.user, nil
}

func (m *mockUserService) Login(_ context.Context, _ service.LoginDto) (*service.LoginResultDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.result, nil
}

func Test_AuthAPI_Register(t *testing.T) {
	mockID := uuid.New()
	createdAt := time.Now()
	user := &service.UserDto{
		ID:        mockID.String(),
		Email:     "jo@example.com",
		Name:      "Jo",
		CreatedAt: createdAt.Format(time.RFC3339),
	}

	validBody := `{"email": "jo@example.com", "name": "Jo", "password": "correct horse"}`

	testCases := []struct {
		name         string
		mockService  mockUserService
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - account created",
			mockService:  mockUserService{user: user},
			body:         validBody,
			expectedCode: http.StatusCreated,
			expectedBody: toJSON(t, user),
		},
		{
			name:         "Error - email already registered",
			mockService:  mockUserService{error: sferrors.ErrEmailTaken},
			body:         validBody,
			expectedCode: http.StatusConflict,
			expectedBody: toJSON(t, ErrorResponse{Error: "Email already registered"}),
		},
		{
			name:         "Error - invalid email",
			body:         `{"email": "not-an-email", "name": "Jo", "password": "correct horse"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ValidationErrorResponse{ValidationErrors: map[string]string{"Email": "failed on rule: email"}}),
		},
		{
			name:         "Error - short password",
			body:         `{"email": "jo@example.com", "name": "Jo", "password": "short"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ValidationErrorResponse{ValidationErrors: map[string]string{"Password": "failed on rule: min"}}),
		},
		{
			name:         "Error - service error",
			mockService:  mockUserService{error: errors.New("connection lost")},
			body:         validBody,
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to register"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewAuthHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			// when
			api.Register(rr, req)
			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_AuthAPI_Login(t *testing.T) {
	mockID := uuid.New()
	createdAt := time.Now()
	result := &service.LoginResultDto{
		Token: "signed.jwt.token",
		User: service.UserDto{
			ID:        mockID.String(),
			Email:     "jo@example.com",
			Name:      "Jo",
			CreatedAt: createdAt.Format(time.RFC3339),
		},
	}

	validBody := `{"email": "jo@example.com", "password": "correct horse"}`

	testCases := []struct {
		name         string
		mockService  mockUserService
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - token issued",
			mockService:  mockUserService{result: result},
			body:         validBody,
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, result),
		},
		{
			name:         "Error - invalid credentials",
			mockService:  mockUserService{error: sferrors.ErrInvalidCredentials},
			body:         validBody,
			expectedCode: http.StatusUnauthorized,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid email or password"}),
		},
		{
			name:         "Error - missing password",
			body:         `{"email": "jo@example.com"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ValidationErrorResponse{ValidationErrors: map[string]string{"Password": "failed on rule: required"}}),
		},
		{
			name:         "Error - service error",
			mockService:  mockUserService{error: errors.New("connection lost")},
			body:         validBody,
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to log in"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewAuthHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			// when
			api.Login(rr, req)
			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}
