// Package e2e provides end-to-end tests for the storefront application.
// The suite leverages testcontainers-go to spin up a real PostgreSQL instance
// and runs the actual application handler in an httptest.Server, so requests
// cross the full stack: identity middleware, handlers, services and stores.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/app"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/migrations"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// skipE2ETests is the environment variable that can be set to skip E2E tests.
const skipE2ETests = "STOREFRONT_SKIP_E2E_TESTS"

const (
	testSecret     = "e2e-test-secret"
	testCookieName = "guest_session"
)

// StorefrontE2ESuite is a test suite for end-to-end tests of the storefront.
type StorefrontE2ESuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	server      *httptest.Server
	httpClient  *http.Client
	catalog     *store.PgCatalogStore
	logger      *slog.Logger
	ctx         context.Context
}

// testConfig creates a configuration covering what SetupDependencies reads.
func testConfig() *config.Config {
	var cfg config.Config
	cfg.JWT.Secret = testSecret
	cfg.JWT.Issuer = "storefront-e2e"
	cfg.JWT.TTL = time.Hour
	cfg.Session.CookieName = testCookieName
	cfg.Session.TTL = time.Hour
	return &cfg
}

// SetupSuite starts PostgreSQL, applies migrations and boots the application handler.
func (s *StorefrontE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "storefront"
	dbUser := "user"
	dbPassword := "password"

	// 1. Start a PostgreSQL container. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. Create a new pgxpool instance using the connection string
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgx pool")

	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 4. Apply the embedded schema migrations
	source, err := iofs.New(migrations.FS, ".")
	require.NoError(s.T(), err, "Failed to open migration source")
	m, err := migrate.NewWithSourceInstance("iofs", source, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}

	// 5. Boot the real application handler
	deps := app.SetupDependencies(s.dbPool, messaging.NopPublisher{}, s.logger, testConfig())
	s.server = httptest.NewServer(app.SetupHttpHandler(deps))
	s.httpClient = s.server.Client()
	s.catalog = store.NewPgCatalogStore(s.dbPool)
	s.logger.Info("Initialization complete for StorefrontE2ESuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *StorefrontE2ESuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest truncates mutable tables so each test starts from a clean slate.
func (s *StorefrontE2ESuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE cart_items, wishlist_items, users, variants, products, categories CASCADE")
	require.NoError(s.T(), err, "Failed to truncate tables")
}

// seedVariant creates a category, product and variant directly in the database.
func (s *StorefrontE2ESuite) seedVariant(stock int32) (productID, variantID uuid.UUID) {
	category, err := s.catalog.CreateCategory(s.ctx, "Shirts")
	require.NoError(s.T(), err)
	product, variants, err := s.catalog.CreateProduct(s.ctx,
		store.NewProduct{CategoryID: category.ID, Name: "Linen shirt", Price: 4990},
		[]store.NewVariant{{Size: "M", Color: "white", Stock: stock}})
	require.NoError(s.T(), err)
	require.Len(s.T(), variants, 1)
	return product.ID, variants[0].ID
}

// do sends a request with optional bearer token and guest cookie and decodes the JSON body.
func (s *StorefrontE2ESuite) do(method, path, token string, cookie *http.Cookie, body any) (*http.Response, map[string]any) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(s.ctx, method, s.server.URL+path, reader)
	require.NoError(s.T(), err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)

	decoded := make(map[string]any)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	require.NoError(s.T(), resp.Body.Close())
	if len(raw) > 0 {
		require.NoError(s.T(), json.Unmarshal(raw, &decoded), "body should be JSON: %s", raw)
	}
	return resp, decoded
}

// register creates an account through the API and returns a login token.
func (s *StorefrontE2ESuite) register(email string) string {
	resp, _ := s.do(http.MethodPost, "/api/v1/auth/register", "", nil,
		map[string]string{"email": email, "name": "Jo", "password": "correct horse"})
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)

	resp, body := s.do(http.MethodPost, "/api/v1/auth/login", "", nil,
		map[string]string{"email": email, "password": "correct horse"})
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(s.T(), token)
	return token
}

func (s *StorefrontE2ESuite) TestGuestCartFlow() {
	_, variantID := s.seedVariant(5)

	// first contact mints the guest session cookie
	resp, body := s.do(http.MethodGet, "/cart/count", "", nil, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), float64(0), body["count"])

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == testCookieName {
			cookie = c
		}
	}
	require.NotNil(s.T(), cookie, "expected a minted guest session cookie")

	// add within the stock ceiling
	resp, body = s.do(http.MethodPost, fmt.Sprintf("/cart/%s/2/5", variantID), "", cookie, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), float64(1), body["count"])

	// pushing the same line past the ceiling yields the alert message
	resp, body = s.do(http.MethodPost, fmt.Sprintf("/cart/%s/4/5", variantID), "", cookie, nil)
	require.Equal(s.T(), http.StatusConflict, resp.StatusCode)
	assert.Equal(s.T(), "Product out of stock", body["message"])

	// decrement and remove
	resp, body = s.do(http.MethodPatch, "/cart/"+variantID.String(), "", cookie, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), float64(1), body["count"])

	resp, body = s.do(http.MethodDelete, "/cart/"+variantID.String(), "", cookie, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), float64(0), body["count"])
}

func (s *StorefrontE2ESuite) TestGuestCartsAreIsolatedBySession() {
	_, variantID := s.seedVariant(5)

	cookieA := &http.Cookie{Name: testCookieName, Value: uuid.NewString()}
	cookieB := &http.Cookie{Name: testCookieName, Value: uuid.NewString()}

	resp, _ := s.do(http.MethodPost, fmt.Sprintf("/cart/%s/2/5", variantID), "", cookieA, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	resp, body := s.do(http.MethodGet, "/cart/count", "", cookieB, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), float64(0), body["count"])
}

func (s *StorefrontE2ESuite) TestUserCartPersistsAcrossRequests() {
	_, variantID := s.seedVariant(5)
	token := s.register("jo@example.com")

	resp, body := s.do(http.MethodPost, fmt.Sprintf("/cart/%s/3/5", variantID), token, nil, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), float64(1), body["count"])

	// a later request with the same account sees the same cart
	resp, body = s.do(http.MethodGet, "/cart/count", token, nil, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), float64(1), body["count"])

	// a guest with no relation to the account sees nothing
	resp, body = s.do(http.MethodGet, "/cart/count", "", &http.Cookie{Name: testCookieName, Value: uuid.NewString()}, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), float64(0), body["count"])
}

func (s *StorefrontE2ESuite) TestWishlistFlow() {
	productID, _ := s.seedVariant(5)
	cookie := &http.Cookie{Name: testCookieName, Value: uuid.NewString()}

	resp, body := s.do(http.MethodPost, "/wishlist/"+productID.String(), "", cookie, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), true, body["success"])
	assert.Equal(s.T(), "Product added to wishlist", body["message"])

	resp, body = s.do(http.MethodPost, "/wishlist/"+productID.String(), "", cookie, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), "Product already in wishlist", body["message"])

	resp, body = s.do(http.MethodPost, "/wishlist/"+uuid.NewString(), "", cookie, nil)
	require.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
	assert.Equal(s.T(), false, body["success"])

	resp, body = s.do(http.MethodDelete, "/wishlist/"+productID.String(), "", cookie, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), true, body["success"])
}

func (s *StorefrontE2ESuite) TestAdminGate() {
	category := map[string]string{"name": "Shirts"}

	// guests are asked to authenticate
	resp, _ := s.do(http.MethodPost, "/api/v1/admin/categories", "", nil, category)
	require.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)

	// a registered but ordinary account is refused
	token := s.register("jo@example.com")
	resp, _ = s.do(http.MethodPost, "/api/v1/admin/categories", token, nil, category)
	require.Equal(s.T(), http.StatusForbidden, resp.StatusCode)

	// promote the account and log in again to pick up the admin claim
	_, err := s.dbPool.Exec(s.ctx, "UPDATE users SET is_admin = TRUE WHERE email = $1", "jo@example.com")
	require.NoError(s.T(), err)
	resp, body := s.do(http.MethodPost, "/api/v1/auth/login", "", nil,
		map[string]string{"email": "jo@example.com", "password": "correct horse"})
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	adminToken, _ := body["token"].(string)
	require.NotEmpty(s.T(), adminToken)

	resp, body = s.do(http.MethodPost, "/api/v1/admin/categories", adminToken, nil, category)
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	categoryID, _ := body["id"].(string)
	require.NotEmpty(s.T(), categoryID)

	// duplicate category name is rejected
	resp, _ = s.do(http.MethodPost, "/api/v1/admin/categories", adminToken, nil, category)
	require.Equal(s.T(), http.StatusConflict, resp.StatusCode)

	// upload a product with a variant matrix and browse it back anonymously
	resp, body = s.do(http.MethodPost, "/api/v1/admin/products", adminToken, nil, map[string]any{
		"category_id": categoryID,
		"name":        "Linen shirt",
		"price":       4990,
		"variants": []map[string]any{
			{"size": "M", "color": "white", "stock": 5},
			{"size": "L", "color": "white", "stock": 3},
		},
	})
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	productID, _ := body["id"].(string)
	require.NotEmpty(s.T(), productID)

	resp, body = s.do(http.MethodGet, "/api/v1/products/"+productID, "", nil, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), "Linen shirt", body["name"])
	variants, _ := body["variants"].([]any)
	assert.Len(s.T(), variants, 2)
}

// TestStorefrontE2E runs the end-to-end test suite.
func TestStorefrontE2E(t *testing.T) {
	// Skip E2E tests if the environment variable is set
	if os.Getenv(skipE2ETests) == "1" {
		t.Skip("Skipping E2E tests based on " + skipE2ETests + " env var")
	}
	// Run the test suite
	suite.Run(t, new(StorefrontE2ESuite))
}
