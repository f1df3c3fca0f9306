package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cosmetics_back_end/internal/cache"
	"cosmetics_back_end/internal/handlers/admin"
	pa "cosmetics_back_end/internal/handlers/payement"
	"cosmetics_back_end/internal/handlers/product"
	"cosmetics_back_end/internal/handlers/user"
	"cosmetics_back_end/internal/middleware"
	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/repository"
	"cosmetics_back_end/internal/services"
	"cosmetics_back_end/internal/shipping"
	"cosmetics_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("routes-secret")

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	carts := cache.NewMemoryCartStore()
	productCache := cache.NewMemoryProductCache()
	blacklist := cache.NewMemoryBlacklist()
	sessions := middleware.NewSessionStore("routes-session-secret", false, time.Hour)
	payments := services.NewStripePayments("sk_test", "", "eur")

	payment := pa.NewHandler(shipping.DefaultRateTable(), *store, carts, productCache, payments, nil, pa.BankAccount{}, "eur")
	r := gin.New()
	RegisterRoutes(r, Handlers{
		Product:        product.NewHandler(*store, productCache, nil, nil),
		User:           user.NewHandler(*store, carts, blacklist, sessions, secret, time.Hour),
		Payment:        payment,
		Admin:          admin.NewHandler(*store, productCache, nil, nil, payment),
		Auth:           middleware.NewAuth(secret, sessions, blacklist),
		Limiter:        middleware.NewRateLimiter(cache.NewMemoryCounter()),
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	return r
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, _, err := utils.GenerateJWT(secret, models.User{ID: gocql.TimeUUID(), Role: role}, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(r http.Handler, method, path, body, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPublicRoutes(t *testing.T) {
	r := newRouter(t)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/categories", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/products", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/products/search?q=rouge", "", "").Code)

	w := serve(r, http.MethodPost, "/api/shipping/calculate", `{"country":"FR","weight":500,"value":30}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
}

func TestProtectedRoutes(t *testing.T) {
	r := newRouter(t)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/cart", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/cart", "", bearer(t, models.RoleCustomer)).Code)

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/admin/stats", "", bearer(t, models.RoleCustomer)).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/admin/stats", "", bearer(t, models.RoleAdmin)).Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
