package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/repository/memstore"
	"storefront/internal/service"
)

type testAPI struct {
	router *gin.Engine
	store  *repository.Store
	creds  *auth.Credentials
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memstore.New()
	creds := auth.NewCredentials("handler-secret", time.Hour)
	catalog := service.NewCatalogService(store.Products)
	carts := service.NewCartService(store.Carts, catalog, cache.Noop{})
	ledger := service.NewOrderLedger(store.Orders, store.Users)
	checkouts := service.NewCheckoutService(store.Checkouts, ledger, carts, store.Tx)
	users := service.NewUserService(store.Users, creds)

	r := gin.New()
	RegisterRoutes(r, Services{
		Catalog:     catalog,
		Carts:       carts,
		Checkouts:   checkouts,
		Ledger:      ledger,
		Users:       users,
		Session:     service.NewSessionOrchestrator(carts, users, checkouts),
		Subscribers: service.NewSubscriberService(store.Subscribers),
		Ping:        store.Ping,
	}, creds, nil)

	return &testAPI{router: r, store: store, creds: creds}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func (a *testAPI) product(t *testing.T, name string, price float64) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, SKU: name + "-sku", IsPublished: true}
	require.NoError(t, a.store.Products.Insert(context.Background(), p))
	return p
}

func (a *testAPI) register(t *testing.T, email string) (string, primitive.ObjectID) {
	t.Helper()
	w, body := a.do(t, http.MethodPost, "/api/users/register", "", gin.H{"name": "Shopper", "email": email, "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := body["newUser"].(map[string]interface{})
	id, err := primitive.ObjectIDFromHex(user["id"].(string))
	require.NoError(t, err)
	return body["token"].(string), id
}

func TestGuestCartFlow(t *testing.T) {
	api := newTestAPI(t)
	p := api.product(t, "tee", 12.5)

	w, cart := api.do(t, http.MethodPost, "/api/cart", "", gin.H{"productId": p.ID.Hex(), "quantity": 2, "size": "M", "color": "Red"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 25.0, cart["totalPrice"])
	guestID, _ := cart["guestId"].(string)
	require.NotEmpty(t, guestID)
	assert.Nil(t, cart["user"])

	w, cart = api.do(t, http.MethodPost, "/api/cart", "", gin.H{"productId": p.ID.Hex(), "quantity": 1, "size": "M", "color": "Red", "guestId": guestID})
	require.Equal(t, http.StatusOK, w.Code)
	lines := cart["products"].([]interface{})
	require.Len(t, lines, 1)
	assert.Equal(t, 3.0, lines[0].(map[string]interface{})["quantity"])

	w, cart = api.do(t, http.MethodGet, "/api/cart?guestId="+guestID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 37.5, cart["totalPrice"])

	w, cart = api.do(t, http.MethodPut, "/api/cart", "", gin.H{"productId": p.ID.Hex(), "quantity": 0, "size": "M", "color": "Red", "guestId": guestID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, cart["products"])
	assert.Equal(t, 0.0, cart["totalPrice"])

	w, body := api.do(t, http.MethodDelete, "/api/cart", "", gin.H{"productId": p.ID.Hex(), "size": "M", "color": "Red", "guestId": guestID})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found in cart", body["message"])
}

func TestCartErrors(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.do(t, http.MethodPost, "/api/cart", "", gin.H{"productId": primitive.NewObjectID().Hex(), "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", body["message"])

	w, body = api.do(t, http.MethodPost, "/api/cart", "", gin.H{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", body["message"])

	w, _ = api.do(t, http.MethodPost, "/api/cart", "", gin.H{"productId": "not-an-id", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = api.do(t, http.MethodGet, "/api/cart?guestId=guest_missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Cart not found", body["message"])

	w, body = api.do(t, http.MethodGet, "/api/cart", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, token failed", body["message"])
}

func TestLoginMergesGuestCart(t *testing.T) {
	api := newTestAPI(t)
	p := api.product(t, "cap", 8)
	_, userID := api.register(t, "merge@example.com")

	_, cart := api.do(t, http.MethodPost, "/api/cart", "", gin.H{"productId": p.ID.Hex(), "quantity": 2})
	guestID := cart["guestId"].(string)

	w, body := api.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": "merge@example.com", "password": "secret1", "guestId": guestID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, body["token"])
	merged := body["cart"].(map[string]interface{})
	assert.Equal(t, userID.Hex(), merged["user"])
	assert.Nil(t, merged["guestId"])

	w, body = api.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": "merge@example.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Credentials", body["message"])
}

func TestCheckoutFinalizeFlow(t *testing.T) {
	api := newTestAPI(t)
	p := api.product(t, "hoodie", 10)
	token, userID := api.register(t, "buyer@example.com")

	w, _ := api.do(t, http.MethodPost, "/api/cart", token, gin.H{"productId": p.ID.Hex(), "quantity": 2, "size": "L", "color": "Black", "userId": primitive.NewObjectID().Hex()})
	require.Equal(t, http.StatusCreated, w.Code, "a token user's first add creates the cart")
	w, _ = api.do(t, http.MethodPost, "/api/cart", token, gin.H{"productId": p.ID.Hex(), "quantity": 1, "size": "L", "color": "Black"})
	require.Equal(t, http.StatusOK, w.Code, "later adds update the existing cart")

	w, checkout := api.do(t, http.MethodPost, "/api/checkout/from-cart", token, gin.H{
		"shippingAddress": gin.H{"address": "1 Main St", "city": "Springfield", "postalCode": "12345", "country": "US"},
		"paymentMethod":   "PayPal",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	checkoutID := checkout["_id"].(string)
	assert.Equal(t, 30.0, checkout["totalPrice"])

	w, body := api.do(t, http.MethodPost, "/api/checkout/"+checkoutID+"/finalize", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Checkout not paid", body["message"])

	w, body = api.do(t, http.MethodPut, "/api/checkout/"+checkoutID+"/pay", token, gin.H{"paymentStatus": "failed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Payment not successful", body["message"])

	w, paid := api.do(t, http.MethodPut, "/api/checkout/"+checkoutID+"/pay", token, gin.H{"paymentStatus": "paid", "paymentDetails": gin.H{"id": "PAY-9"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, paid["isPaid"])

	w, order := api.do(t, http.MethodPost, "/api/checkout/"+checkoutID+"/finalize", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	items := order["orderItems"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, 3.0, items[0].(map[string]interface{})["quantity"])
	assert.Equal(t, userID.Hex(), order["user"])

	w, _ = api.do(t, http.MethodGet, "/api/cart", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = api.do(t, http.MethodPost, "/api/checkout/"+checkoutID+"/finalize", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Checkout already finalized", body["message"])

	w, view := api.do(t, http.MethodGet, "/api/orders/"+order["_id"].(string), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	owner := view["user"].(map[string]interface{})
	assert.Equal(t, "buyer@example.com", owner["email"])

	req := httptest.NewRequest(http.MethodGet, "/api/orders/my-orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)

	otherToken, _ := api.register(t, "other@example.com")
	w, body = api.do(t, http.MethodGet, "/api/checkout/"+checkoutID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Checkout not found", body["message"])
}

func TestProtectedAndAdminRoutes(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register(t, "plain@example.com")

	w, body := api.do(t, http.MethodPost, "/api/checkout", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, no token", body["message"])

	w, body = api.do(t, http.MethodGet, "/api/admin/orders", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized as an admin", body["message"])

	adminToken, err := api.creds.Issue(auth.Identity{UserID: primitive.NewObjectID(), Role: models.RoleAdmin})
	require.NoError(t, err)

	w, created := api.do(t, http.MethodPost, "/api/admin/products", adminToken, gin.H{"name": "Jacket", "sku": "JKT-1", "price": 80, "discountPrice": 60, "images": []string{"https://cdn.example/jacket.jpg"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 60.0, created["effectivePrice"])
	assert.Equal(t, false, created["isPublished"])
	productID := created["_id"].(string)

	w, _ = api.do(t, http.MethodGet, "/api/products/"+productID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, updated := api.do(t, http.MethodPut, "/api/admin/products/"+productID, adminToken, gin.H{"isPublished": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Jacket", updated["name"])

	w, body = api.do(t, http.MethodGet, "/api/products?page=1&limit=10&maxPrice=100", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)

	w, _ = api.do(t, http.MethodGet, "/api/products?sortBy=random", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(t, http.MethodPut, "/api/admin/orders/"+primitive.NewObjectID().Hex(), adminToken, gin.H{"status": "Shipped"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(t, http.MethodDelete, "/api/admin/products/bad-id", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeAndHealth(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.do(t, http.MethodPost, "/api/subscribe", "", gin.H{"email": "news@example.com"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Subscribed successfully", body["message"])

	w, body = api.do(t, http.MethodPost, "/api/subscribe", "", gin.H{"email": "news@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already subscribed", body["message"])

	w, body = api.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}
