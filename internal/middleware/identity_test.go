package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/identity"
	"github.com/abgdnv/storefront/pkg/token"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret     = "test-secret"
	testCookieName = "guest_session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// captureIdentity returns a handler recording the identity seen by the route.
func captureIdentity(captured *identity.Identity, called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if id, ok := identity.FromContext(r.Context()); ok {
			*captured = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestResolveIdentity(t *testing.T) {
	mockUserID := uuid.New()
	validToken, err := token.Generate(testSecret, "test-issuer", mockUserID.String(), false, time.Hour)
	require.NoError(t, err)
	adminToken, err := token.Generate(testSecret, "test-issuer", mockUserID.String(), true, time.Hour)
	require.NoError(t, err)
	foreignToken, err := token.Generate("other-secret", "test-issuer", mockUserID.String(), false, time.Hour)
	require.NoError(t, err)
	sessionID := uuid.New()

	testCases := []struct {
		name               string
		authHeader         string
		cookie             *http.Cookie
		expectedStatusCode int
		shouldCallNext     bool
		expectedKind       identity.Kind
		expectedID         uuid.UUID
		expectedAdmin      bool
		expectMintedCookie bool
	}{
		{
			name:               "Success - valid bearer token yields user identity",
			authHeader:         "Bearer " + validToken,
			expectedStatusCode: http.StatusOK,
			shouldCallNext:     true,
			expectedKind:       identity.KindUser,
			expectedID:         mockUserID,
		},
		{
			name:               "Success - admin flag carried from token",
			authHeader:         "Bearer " + adminToken,
			expectedStatusCode: http.StatusOK,
			shouldCallNext:     true,
			expectedKind:       identity.KindUser,
			expectedID:         mockUserID,
			expectedAdmin:      true,
		},
		{
			name:               "Success - existing session cookie is reused",
			cookie:             &http.Cookie{Name: testCookieName, Value: sessionID.String()},
			expectedStatusCode: http.StatusOK,
			shouldCallNext:     true,
			expectedKind:       identity.KindGuest,
			expectedID:         sessionID,
		},
		{
			name:               "Success - no credentials mints a guest cookie",
			expectedStatusCode: http.StatusOK,
			shouldCallNext:     true,
			expectedKind:       identity.KindGuest,
			expectMintedCookie: true,
		},
		{
			name:               "Success - garbage cookie value is replaced",
			cookie:             &http.Cookie{Name: testCookieName, Value: "not-a-uuid"},
			expectedStatusCode: http.StatusOK,
			shouldCallNext:     true,
			expectedKind:       identity.KindGuest,
			expectMintedCookie: true,
		},
		{
			name:               "Failure - token signed with another secret is rejected, not downgraded",
			authHeader:         "Bearer " + foreignToken,
			cookie:             &http.Cookie{Name: testCookieName, Value: sessionID.String()},
			expectedStatusCode: http.StatusUnauthorized,
			shouldCallNext:     false,
		},
		{
			name:               "Failure - not a bearer token",
			authHeader:         "Basic some-credentials",
			expectedStatusCode: http.StatusUnauthorized,
			shouldCallNext:     false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var captured identity.Identity
			var nextCalled bool
			handler := ResolveIdentity(testSecret, testCookieName, testLogger())(captureIdentity(&captured, &nextCalled))

			req := httptest.NewRequest(http.MethodGet, "/cart/count", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			assert.Equal(t, tc.shouldCallNext, nextCalled)
			if !tc.shouldCallNext {
				return
			}
			assert.Equal(t, tc.expectedKind, captured.Kind)
			assert.Equal(t, tc.expectedAdmin, captured.Admin)
			if tc.expectedID != uuid.Nil {
				assert.Equal(t, tc.expectedID, captured.ID)
			}
			cookies := rr.Result().Cookies()
			if tc.expectMintedCookie {
				require.Len(t, cookies, 1)
				assert.Equal(t, testCookieName, cookies[0].Name)
				assert.Equal(t, captured.ID.String(), cookies[0].Value)
				assert.True(t, cookies[0].HttpOnly)
			} else {
				assert.Empty(t, cookies)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	testCases := []struct {
		name               string
		identity           *identity.Identity
		expectedStatusCode int
		shouldCallNext     bool
	}{
		{
			name:               "Success - authenticated admin",
			identity:           &identity.Identity{Kind: identity.KindUser, ID: uuid.New(), Admin: true},
			expectedStatusCode: http.StatusOK,
			shouldCallNext:     true,
		},
		{
			name:               "Failure - authenticated non-admin",
			identity:           &identity.Identity{Kind: identity.KindUser, ID: uuid.New()},
			expectedStatusCode: http.StatusForbidden,
			shouldCallNext:     false,
		},
		{
			name:               "Failure - guest identity",
			identity:           &identity.Identity{Kind: identity.KindGuest, ID: uuid.New()},
			expectedStatusCode: http.StatusUnauthorized,
			shouldCallNext:     false,
		},
		{
			name:               "Failure - no identity in context",
			expectedStatusCode: http.StatusUnauthorized,
			shouldCallNext:     false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var captured identity.Identity
			var nextCalled bool
			handler := RequireAdmin(testLogger())(captureIdentity(&captured, &nextCalled))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", nil)
			if tc.identity != nil {
				req = req.WithContext(identity.NewContext(req.Context(), *tc.identity))
			}
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			assert.Equal(t, tc.shouldCallNext, nextCalled)
		})
	}
}
