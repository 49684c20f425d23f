package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/cart"
	"storefront-backend/internal/catalog"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/models"
	"storefront-backend/internal/payment"
	"storefront-backend/internal/store"
	"storefront-backend/internal/store/memstore"
)

const testPassword = "Str0ng!Pass"

type stubGateway struct{}

func (stubGateway) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
	return &payment.Session{ID: "cs_test_123", AmountTotal: req.AmountCents, PaymentStatus: "unpaid"}, nil
}

func (stubGateway) RetrieveSession(_ context.Context, id string) (*payment.Session, error) {
	status := "unpaid"
	if id == "cs_paid" {
		status = payment.PaymentStatusPaid
	}
	return &payment.Session{ID: id, PaymentStatus: status}, nil
}

type testEnv struct {
	t      *testing.T
	router *gin.Engine
	auth   *auth.Service
	store  *memstore.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithCartStore(t, nil)
}

// newTestEnvWithCartStore lets wrap replace the store seen by the cart service.
func newTestEnvWithCartStore(t *testing.T, wrap func(*memstore.Store) store.Store) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memstore.New()
	var cartStore store.Store = st
	if wrap != nil {
		cartStore = wrap(st)
	}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	authSvc := auth.NewService(st.Users(), auth.NewTokens("test-secret", time.Hour), bcrypt.MinCost)

	router := NewRouter(Deps{
		Auth:           authSvc,
		Catalog:        catalog.NewService(st),
		Cart:           cart.NewService(cartStore, m, cart.Options{}),
		Payment:        payment.NewService(stubGateway{}, "http://localhost:5173", m),
		Store:          st,
		Metrics:        m,
		Gatherer:       reg,
		FrontendURL:    "http://localhost:5173",
		RequestTimeout: 5 * time.Second,
	})
	return &testEnv{t: t, router: router, auth: authSvc, store: st}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// signup registers and logs in a user, returning the token and user id.
func (e *testEnv) signup(username string, admin bool) (string, string) {
	e.t.Helper()
	email := username + "@example.com"
	w := e.do(http.MethodPost, "/api/users/register", "", gin.H{
		"firstname": "Test", "surname": "User", "email": email, "username": username, "password": testPassword,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	if admin {
		require.NoError(e.t, e.auth.PromoteAdmin(context.Background(), email))
	}

	w = e.do(http.MethodPost, "/api/users/login", "", gin.H{"email": email, "password": testPassword})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	body := decode(e.t, w)
	user := body["user"].(map[string]any)
	return body["token"].(string), user["id"].(string)
}

func TestPublicEndpoints(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome to the E-commerce API", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = e.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = e.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_http_requests_total")
}

func TestRegisterAndLogin(t *testing.T) {
	e := newTestEnv(t)
	token, id := e.signup("ada", false)
	assert.NotEmpty(t, token)

	w := e.do(http.MethodPost, "/api/users/register", "", gin.H{
		"firstname": "A", "surname": "B", "email": "ada@example.com", "username": "other", "password": testPassword,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already exists", decode(t, w)["message"])

	w = e.do(http.MethodPost, "/api/users/login", "", gin.H{"email": "nobody@example.com", "password": testPassword})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodPost, "/api/users/login", "", gin.H{"email": "ada@example.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["message"])

	w = e.do(http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, id, user["_id"])
	assert.NotContains(t, user, "password")

	w = e.do(http.MethodGet, "/verify-token", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Protected endpoint accessed successfully", decode(t, w)["message"])
}

func TestRegisterValidatesBody(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/users/register", "", gin.H{
		"firstname": "Ada", "surname": "Lovelace", "email": "not-an-email", "username": "ada", "password": testPassword,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please provide a valid email", decode(t, w)["message"])

	w = e.do(http.MethodPost, "/api/users/register", "", gin.H{
		"firstname": "Ada", "email": "ada@example.com", "username": "ada", "password": testPassword,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "All fields are required", decode(t, w)["message"])

	w = e.do(http.MethodPost, "/api/users/login", "", gin.H{"email": "not-an-email", "password": testPassword})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthFailures(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token, authorization denied", decode(t, w)["message"])

	w = e.do(http.MethodGet, "/api/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token is not valid", decode(t, w)["message"])
}

func TestUpdatePasswordAndLogout(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.signup("ada", false)

	w := e.do(http.MethodPut, "/api/users/update-password", token, gin.H{"currentPassword": "wrong", "newPassword": "N3w!Password"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Current password is incorrect", decode(t, w)["message"])

	w = e.do(http.MethodPut, "/api/users/update-password", token, gin.H{"currentPassword": testPassword, "newPassword": "N3w!Password"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/api/users/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logout successful", decode(t, w)["message"])
	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "jwt=")
	assert.Contains(t, cookie, "SameSite=Strict")
}

func TestCatalogMutationsRequireAdmin(t *testing.T) {
	e := newTestEnv(t)
	userToken, _ := e.signup("user", false)
	adminToken, _ := e.signup("admin", true)

	w := e.do(http.MethodPost, "/api/category", userToken, gin.H{"name": "Books"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Unauthorized", decode(t, w)["error"])

	w = e.do(http.MethodPost, "/api/products", userToken, gin.H{"productname": "Lamp"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPost, "/api/vendor", "", gin.H{"name": "Acme"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/api/vendor", adminToken, gin.H{"name": "Acme", "website": "acme.test"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCatalogFlow(t *testing.T) {
	e := newTestEnv(t)
	admin, _ := e.signup("admin", true)

	w := e.do(http.MethodPost, "/api/category", admin, gin.H{"name": "Books", "image": "books.png"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	categoryID := decode(t, w)["_id"].(string)

	w = e.do(http.MethodPost, "/api/category", admin, gin.H{"name": "Books"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Category name must be unique", decode(t, w)["error"])

	w = e.do(http.MethodPost, "/api/products", admin, gin.H{
		"productname": "Novel", "description": "A book", "price": 9.5, "stock": 3, "category": primitive.NewObjectID().Hex(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Category does not exist", decode(t, w)["error"])

	w = e.do(http.MethodPost, "/api/products", admin, gin.H{
		"productname": "Novel", "description": "A book", "price": 9.5, "stock": 3, "category": categoryID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	productID := decode(t, w)["_id"].(string)

	w = e.do(http.MethodGet, "/api/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	category := decode(t, w)["category"].(map[string]any)
	assert.Equal(t, "Books", category["name"])

	w = e.do(http.MethodGet, "/api/products/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodDelete, "/api/category/"+categoryID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodGet, "/api/category/"+categoryID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Category not found", decode(t, w)["error"])

	w = e.do(http.MethodGet, "/api/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["category"])
}

func TestCartFlow(t *testing.T) {
	e := newTestEnv(t)
	admin, _ := e.signup("admin", true)
	token, userID := e.signup("buyer", false)
	otherToken, _ := e.signup("other", false)

	w := e.do(http.MethodPost, "/api/category", admin, gin.H{"name": "Home"})
	require.Equal(t, http.StatusCreated, w.Code)
	categoryID := decode(t, w)["_id"].(string)
	w = e.do(http.MethodPost, "/api/products", admin, gin.H{
		"productname": "Lamp", "description": "warm", "price": 20, "stock": 5, "category": categoryID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	productID := decode(t, w)["_id"].(string)

	w = e.do(http.MethodPost, "/api/users/cart/add", token, gin.H{"productId": productID, "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Product added to cart", decode(t, w)["message"])

	w = e.do(http.MethodPost, "/api/users/cart/add", token, gin.H{"productId": productID, "quantity": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only 5 units of this product are available in stock", decode(t, w)["message"])

	w = e.do(http.MethodPost, "/api/users/cart/increase", token, gin.H{"productId": productID})
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/api/users/cart/remove/"+userID, token, gin.H{"productId": productID, "quantity": 1})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Product quantity decreased in cart", decode(t, w)["message"])

	w = e.do(http.MethodGet, "/api/users/cart/"+userID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Unauthorized access", decode(t, w)["message"])

	w = e.do(http.MethodGet, "/api/users/cart/"+userID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lines []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, float64(3), lines[0]["quantity"])
	assert.Equal(t, "Lamp", lines[0]["product"].(map[string]any)["productname"])

	w = e.do(http.MethodPost, "/api/users/cart/buy", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Purchase completed successfully", decode(t, w)["message"])

	w = e.do(http.MethodPost, "/api/users/cart/buy", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cart is empty", decode(t, w)["message"])

	w = e.do(http.MethodGet, "/api/products/"+productID, "", nil)
	assert.Equal(t, float64(2), decode(t, w)["stock"])

	w = e.do(http.MethodDelete, "/api/users/cart/remove/"+productID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found in cart", decode(t, w)["message"])
}

func TestCheckout(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/create-checkout-session", "", gin.H{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid amount", decode(t, w)["error"])

	w = e.do(http.MethodPost, "/create-checkout-session", "", gin.H{"amount": 1999})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cs_test_123", decode(t, w)["id"])

	w = e.do(http.MethodPost, "/verify-session", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Session ID is required.", body["error"])

	w = e.do(http.MethodPost, "/verify-session", "", gin.H{"sessionId": "cs_open"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Payment not completed.", decode(t, w)["error"])

	w = e.do(http.MethodPost, "/verify-session", "", gin.H{"sessionId": "cs_paid"})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "cs_paid", body["session"].(map[string]any)["id"])
}

type brokenCartStore struct{ *memstore.Store }

func (s brokenCartStore) Users() store.Users { return brokenCartUsers{s.Store.Users()} }

type brokenCartUsers struct{ store.Users }

func (brokenCartUsers) SaveCart(context.Context, primitive.ObjectID, []models.CartItem) error {
	return errors.New("connection reset by peer")
}

func TestInternalErrorsReportCause(t *testing.T) {
	e := newTestEnvWithCartStore(t, func(st *memstore.Store) store.Store { return brokenCartStore{st} })
	admin, _ := e.signup("admin", true)
	token, _ := e.signup("buyer", false)

	w := e.do(http.MethodPost, "/api/category", admin, gin.H{"name": "Home"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = e.do(http.MethodPost, "/api/products", admin, gin.H{
		"productname": "Lamp", "description": "warm", "price": 20, "stock": 5, "category": decode(t, w)["_id"],
	})
	require.Equal(t, http.StatusCreated, w.Code)
	productID := decode(t, w)["_id"].(string)

	w = e.do(http.MethodPost, "/api/users/cart/add", token, gin.H{"productId": productID, "quantity": 1})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "An error occurred", body["message"])
	assert.Equal(t, "connection reset by peer", body["error"])
}

func TestRouterWithoutFrontendURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := memstore.New()

	var router *gin.Engine
	require.NotPanics(t, func() {
		router = NewRouter(Deps{
			Auth:    auth.NewService(st.Users(), auth.NewTokens("test-secret", time.Hour), bcrypt.MinCost),
			Catalog: catalog.NewService(st),
			Cart:    cart.NewService(st, nil, cart.Options{}),
			Payment: payment.NewService(stubGateway{}, "", nil),
			Store:   st,
		})
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
