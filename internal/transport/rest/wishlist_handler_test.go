package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// mockWishlistService is a mock implementation of the WishlistService interface
type mockWishlistService struct {
	added bool
	error error
}

func (m *mockWishlistService) Add(_ context.Context, _ identity.Identity, _ uuid.UUID) (bool, error) {
	if m.error != nil {
		return false, m.error
	}
	return m.added, nil
}

func (m *mockWishlistService) Remove(_ context.Context, _ identity.Identity, _ uuid.UUID) error {
	return m.error
}

func Test_WishlistAPI_Add(t *testing.T) {
	mockProductID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")

	testCases := []struct {
		name         string
		mockService  mockWishlistService
		productID    string
		noIdentity   bool
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product added",
			mockService:  mockWishlistService{added: true},
			productID:    mockProductID.String(),
			expectedCode: http.StatusOK,
			expectedBody: `{"success": true, "message": "Product added to wishlist"}`,
		},
		{
			name:         "Success - product already present",
			mockService:  mockWishlistService{added: false},
			productID:    mockProductID.String(),
			expectedCode: http.StatusOK,
			expectedBody: `{"success": true, "message": "Product already in wishlist"}`,
		},
		{
			name:         "Error - unknown product",
			mockService:  mockWishlistService{error: sferrors.ErrProductNotFound},
			productID:    mockProductID.String(),
			expectedCode: http.StatusNotFound,
			expectedBody: `{"success": false, "message": "Product not found"}`,
		},
		{
			name:         "Error - invalid product id",
			productID:    "123-invalid-id",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid productId: 123-invalid-id"}),
		},
		{
			name:         "Error - missing identity",
			productID:    mockProductID.String(),
			noIdentity:   true,
			expectedCode: http.StatusUnauthorized,
			expectedBody: toJSON(t, ErrorResponse{Error: "Unauthorized: missing identity"}),
		},
		{
			name:         "Error - service error",
			mockService:  mockWishlistService{error: errors.New("connection lost")},
			productID:    mockProductID.String(),
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to add to wishlist"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewWishlistHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPost, "/wishlist/"+tc.productID, nil)
			if !tc.noIdentity {
				req = withIdentity(req)
			}
			req.SetPathValue("productId", tc.productID)
			rr := httptest.NewRecorder()
			// when
			api.Add(rr, req)
			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_WishlistAPI_Remove(t *testing.T) {
	mockProductID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")

	testCases := []struct {
		name         string
		mockService  mockWishlistService
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - entry removed",
			expectedCode: http.StatusOK,
			expectedBody: `{"success": true, "message": "Product removed from wishlist"}`,
		},
		{
			name:         "Error - service error",
			mockService:  mockWishlistService{error: errors.New("connection lost")},
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to remove from wishlist"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewWishlistHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodDelete, "/wishlist/"+mockProductID.String(), nil)
			req = withIdentity(req)
			req.SetPathValue("productId", mockProductID.String())
			rr := httptest.NewRecorder()
			// when
			api.Remove(rr, req)
			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}
