package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"raydrip/internal/apperror"
	"raydrip/internal/cart"
	"raydrip/internal/catalog"
	"raydrip/internal/checkout"
	"raydrip/internal/database"
	"raydrip/internal/identity"
	"raydrip/internal/ledger"
	"raydrip/internal/middleware"
	"raydrip/internal/models"
	"raydrip/internal/payment"
	"raydrip/internal/storage"
)

const testSecret = "test-secret"

type memoryAccounts struct {
	mu   sync.Mutex
	byID map[string]*models.Account
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{byID: map[string]*models.Account{}}
}

func (m *memoryAccounts) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, database.ErrAccountNotFound
}

func (m *memoryAccounts) FindByID(_ context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, database.ErrAccountNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *memoryAccounts) Create(ctx context.Context, account *models.Account) error {
	if _, err := m.FindByEmail(ctx, account.Email); err == nil {
		return database.ErrEmailTaken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	account.ID = primitive.NewObjectID()
	copied := *account
	m.byID[account.ID.Hex()] = &copied
	return nil
}

func (m *memoryAccounts) UpdateName(_ context.Context, id, name string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, database.ErrAccountNotFound
	}
	a.Name = name
	copied := *a
	return &copied, nil
}

type memoryRecorder struct {
	mu      sync.Mutex
	err     error
	records []*models.PaymentRecord
}

func (r *memoryRecorder) RecordPayment(_ context.Context, rec *models.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *memoryRecorder) FindByOrderID(_ context.Context, orderID string) (*models.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.OrderID == orderID {
			return rec, nil
		}
	}
	return nil, database.ErrPaymentNotFound
}

type testServer struct {
	router   *gin.Engine
	sandbox  *payment.Sandbox
	recorder *memoryRecorder
	ledger   *ledger.Ledger
	store    storage.Store
}

func newTestServer(t *testing.T, demoOTP bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		t.Fatalf("register validators: %v", err)
	}

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	store := storage.NewMemoryStore()
	carts := cart.NewService(store, cat, time.Hour)
	ids := identity.NewManager(store, nil, 30*time.Second)
	orders := ledger.New(store)
	sandbox := payment.NewSandbox(testSecret)
	recorder := &memoryRecorder{}
	flow := checkout.NewFlow(checkout.Deps{
		Store:    store,
		Cart:     carts,
		Identity: ids,
		Ledger:   orders,
		Gateway:  sandbox,
		Recorder: recorder,
	}, checkout.Config{Currency: "INR", GuestCode: "123456"})
	accounts := newMemoryAccounts()

	r := gin.New()
	r.POST("/users/register", Register(accounts))
	r.POST("/users/login", Login(accounts, testSecret, time.Hour))
	profile := r.Group("/users")
	profile.Use(middleware.UserAuth(testSecret))
	{
		profile.GET("/profile", GetProfile(accounts))
		profile.PUT("/profile", UpdateProfile(accounts))
	}

	r.GET("/products", GetProducts(cat))
	r.GET("/products/:id", GetProduct(cat))
	r.GET("/categories", GetCategories(cat))

	scoped := r.Group("/")
	scoped.Use(middleware.ClientScope())
	{
		scoped.GET("/cart", GetCart(carts))
		scoped.POST("/cart/items", AddCartItem(carts))
		scoped.PUT("/cart/items/:productId", UpdateCartItem(carts))
		scoped.DELETE("/cart/items/:productId", RemoveCartItem(carts))
		scoped.DELETE("/cart", ClearCart(carts))

		scoped.GET("/checkout", GetCheckout(flow))
		scoped.POST("/checkout", BeginCheckout(flow))
		scoped.POST("/checkout/complete", CompleteCheckout(flow))
		scoped.POST("/checkout/cancel", CancelCheckout(flow))
		scoped.POST("/checkout/verify", VerifyGuestCheckout(flow))

		scoped.POST("/auth/otp/request", RequestOTP(ids, demoOTP))
		scoped.POST("/auth/otp/verify", VerifyOTP(ids))
		scoped.POST("/auth/otp/profile", CompleteOTPProfile(ids))
		scoped.GET("/auth/session", GetSession(ids))
		scoped.POST("/auth/logout", LogoutOTP(ids))

		scoped.GET("/orders", GetOrders(orders))
		scoped.GET("/orders/:id", GetOrder(orders))

		scoped.POST("/razor/api/createOrder", CreateRazorOrder(sandbox, "INR"))
		scoped.POST("/razor/api/savePayment", SavePayment(sandbox, recorder))
		scoped.GET("/razor/api/payment/:orderId", GetPayment(recorder))
	}

	return &testServer{router: r, sandbox: sandbox, recorder: recorder, ledger: orders, store: store}
}

type call struct {
	method string
	path   string
	body   interface{}
	client string
	token  string
}

func (s *testServer) do(t *testing.T, c call) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		if err := json.NewEncoder(&buf).Encode(c.body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.client != "" {
		req.Header.Set(middleware.ClientIDHeader, c.client)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	body := map[string]interface{}{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, body
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func TestGetProductsPaginates(t *testing.T) {
	s := newTestServer(t, false)

	w, body := s.do(t, call{method: http.MethodGet, path: "/products?category=men&limit=2&page=1"})
	expectStatus(t, w, http.StatusOK)

	data := body["data"].([]interface{})
	if len(data) != 2 {
		t.Fatalf("expected 2 products, got %d", len(data))
	}
	pagination := body["pagination"].(map[string]interface{})
	if pagination["total"].(float64) != 5 || pagination["totalPages"].(float64) != 3 {
		t.Fatalf("unexpected pagination %v", pagination)
	}

	w, _ = s.do(t, call{method: http.MethodGet, path: "/products?page=0"})
	expectStatus(t, w, http.StatusBadRequest)
	w, _ = s.do(t, call{method: http.MethodGet, path: "/products?sale=maybe"})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestGetProductShowsDisplayPrices(t *testing.T) {
	s := newTestServer(t, false)

	w, body := s.do(t, call{method: http.MethodGet, path: "/products/p2"})
	expectStatus(t, w, http.StatusOK)
	if body["displayPrice"] != "₹3,200" || body["displayOriginalPrice"] != "₹4,000" {
		t.Fatalf("unexpected display prices %v / %v", body["displayPrice"], body["displayOriginalPrice"])
	}

	w, _ = s.do(t, call{method: http.MethodGet, path: "/products/nope"})
	expectStatus(t, w, http.StatusNotFound)
}

func TestGetCategories(t *testing.T) {
	s := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusOK)

	var categories []models.Category
	if err := json.Unmarshal(w.Body.Bytes(), &categories); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(categories) != 3 || categories[0].Name != "accessories" {
		t.Fatalf("unexpected categories %+v", categories)
	}
}

func TestCartEndpoints(t *testing.T) {
	s := newTestServer(t, false)
	client := uuid.NewString()

	w, _ := s.do(t, call{method: http.MethodPost, path: "/cart/items", client: client,
		body: map[string]interface{}{"productId": "p1", "quantity": 2, "size": "m"}})
	expectStatus(t, w, http.StatusOK)
	if w.Header().Get(middleware.ClientIDHeader) != client {
		t.Fatal("client id not echoed")
	}

	w, body := s.do(t, call{method: http.MethodPost, path: "/cart/items", client: client,
		body: map[string]interface{}{"productId": "p1", "quantity": 1, "size": "M"}})
	expectStatus(t, w, http.StatusOK)
	if body["totalItems"].(float64) != 3 || len(body["items"].([]interface{})) != 1 {
		t.Fatalf("expected one merged line of 3, got %v", body)
	}
	if body["displayTotal"] != "₹3,897" {
		t.Fatalf("unexpected total %v", body["displayTotal"])
	}

	w, body = s.do(t, call{method: http.MethodPut, path: "/cart/items/p1", client: client,
		body: map[string]interface{}{"size": "L", "currentSize": "M", "quantity": 5}})
	expectStatus(t, w, http.StatusOK)
	line := body["items"].([]interface{})[0].(map[string]interface{})
	if line["selectedSize"] != "L" || line["quantity"].(float64) != 5 {
		t.Fatalf("unexpected line after update %v", line)
	}

	w, body = s.do(t, call{method: http.MethodDelete, path: "/cart/items/p1?size=L", client: client})
	expectStatus(t, w, http.StatusOK)
	if body["totalItems"].(float64) != 0 {
		t.Fatalf("expected empty cart, got %v", body)
	}
}

func TestCartRejectsBadInput(t *testing.T) {
	s := newTestServer(t, false)
	client := uuid.NewString()

	cases := []struct {
		body map[string]interface{}
		want int
	}{
		{map[string]interface{}{"productId": "p1", "quantity": 0, "size": "M"}, http.StatusBadRequest},
		{map[string]interface{}{"productId": "p1", "size": "XXXL"}, http.StatusBadRequest},
		{map[string]interface{}{"productId": "p8", "size": "M"}, http.StatusBadRequest},
		{map[string]interface{}{"productId": "missing"}, http.StatusNotFound},
		{map[string]interface{}{"quantity": 1}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		w, _ := s.do(t, call{method: http.MethodPost, path: "/cart/items", client: client, body: tc.body})
		if w.Code != tc.want {
			t.Fatalf("body %v: expected %d, got %d", tc.body, tc.want, w.Code)
		}
	}

	w, _ := s.do(t, call{method: http.MethodPut, path: "/cart/items/p1", client: client, body: map[string]interface{}{}})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestUpdateCartItemMissingSourceLeavesOtherLines(t *testing.T) {
	s := newTestServer(t, false)
	client := uuid.NewString()

	w, _ := s.do(t, call{method: http.MethodPost, path: "/cart/items", client: client,
		body: map[string]interface{}{"productId": "p1", "quantity": 2, "size": "L"}})
	expectStatus(t, w, http.StatusOK)

	w, _ = s.do(t, call{method: http.MethodPut, path: "/cart/items/p1", client: client,
		body: map[string]interface{}{"size": "L", "currentSize": "S", "quantity": 9}})
	expectStatus(t, w, http.StatusNotFound)

	w, body := s.do(t, call{method: http.MethodGet, path: "/cart", client: client})
	expectStatus(t, w, http.StatusOK)
	line := body["items"].([]interface{})[0].(map[string]interface{})
	if line["selectedSize"] != "L" || line["quantity"].(float64) != 2 {
		t.Fatalf("existing line changed: %v", line)
	}
}

func shipping() map[string]interface{} {
	return map[string]interface{}{
		"name":    "Ray Drip",
		"email":   "ray@example.com",
		"phone":   "9876543210",
		"address": "12 MG Road",
		"city":    "Bengaluru",
		"state":   "KA",
		"pincode": "560001",
	}
}

func TestGuestCheckoutOverHTTP(t *testing.T) {
	s := newTestServer(t, false)
	client := uuid.NewString()

	w, _ := s.do(t, call{method: http.MethodPost, path: "/cart/items", client: client,
		body: map[string]interface{}{"productId": "p8"}})
	expectStatus(t, w, http.StatusOK)

	bad := shipping()
	bad["email"] = "abc@x"
	w, body := s.do(t, call{method: http.MethodPost, path: "/checkout", client: client, body: bad})
	expectStatus(t, w, http.StatusBadRequest)
	if body["error"] != "please enter a valid email address" {
		t.Fatalf("unexpected validation message %v", body["error"])
	}

	w, body = s.do(t, call{method: http.MethodPost, path: "/checkout", client: client, body: shipping()})
	expectStatus(t, w, http.StatusOK)
	orderID := body["orderId"].(string)

	w, body = s.do(t, call{method: http.MethodPost, path: "/checkout/complete", client: client, body: map[string]string{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  s.sandbox.Sign(orderID, "pay_1"),
	}})
	expectStatus(t, w, http.StatusOK)
	if body["state"] != string(checkout.StateAwaitingVerification) {
		t.Fatalf("expected awaiting verification, got %v", body["state"])
	}

	w, _ = s.do(t, call{method: http.MethodPost, path: "/checkout/verify", client: client, body: map[string]string{"code": "999999"}})
	expectStatus(t, w, http.StatusUnauthorized)

	w, body = s.do(t, call{method: http.MethodPost, path: "/checkout/verify", client: client, body: map[string]string{"code": "123456"}})
	expectStatus(t, w, http.StatusOK)
	if body["state"] != string(checkout.StateOrderCommitted) {
		t.Fatalf("expected committed, got %v", body["state"])
	}

	w, body = s.do(t, call{method: http.MethodGet, path: "/orders", client: client})
	expectStatus(t, w, http.StatusOK)
	if len(body["orders"].([]interface{})) != 1 {
		t.Fatalf("expected one order, got %v", body["orders"])
	}

	w, _ = s.do(t, call{method: http.MethodGet, path: "/orders/" + orderID, client: client})
	expectStatus(t, w, http.StatusOK)
	w, _ = s.do(t, call{method: http.MethodGet, path: "/orders/" + orderID, client: uuid.NewString()})
	expectStatus(t, w, http.StatusNotFound)

	w, body = s.do(t, call{method: http.MethodGet, path: "/auth/session", client: client})
	expectStatus(t, w, http.StatusOK)
	if body["state"] != string(identity.StateSignedIn) {
		t.Fatalf("expected guest to be signed in after verification, got %v", body["state"])
	}
}

func TestCancelCheckout(t *testing.T) {
	s := newTestServer(t, false)
	client := uuid.NewString()

	s.do(t, call{method: http.MethodPost, path: "/cart/items", client: client, body: map[string]interface{}{"productId": "p8"}})
	w, _ := s.do(t, call{method: http.MethodPost, path: "/checkout", client: client, body: shipping()})
	expectStatus(t, w, http.StatusOK)

	w, _ = s.do(t, call{method: http.MethodPost, path: "/checkout/cancel", client: client})
	expectStatus(t, w, http.StatusPaymentRequired)

	w, body := s.do(t, call{method: http.MethodGet, path: "/checkout", client: client})
	expectStatus(t, w, http.StatusOK)
	if body["state"] != string(checkout.StateFillingDetails) {
		t.Fatalf("expected filling details, got %v", body["state"])
	}
}

func TestOTPDemoModeEchoesCode(t *testing.T) {
	s := newTestServer(t, true)
	client := uuid.NewString()

	w, body := s.do(t, call{method: http.MethodPost, path: "/auth/otp/request", client: client,
		body: map[string]string{"identifier": "raydrip@test.com"}})
	expectStatus(t, w, http.StatusOK)
	code, _ := body["code"].(string)
	if len(code) != 6 {
		t.Fatalf("expected echoed code, got %v", body)
	}

	w, body = s.do(t, call{method: http.MethodPost, path: "/auth/otp/request", client: client,
		body: map[string]string{"identifier": "raydrip@test.com"}})
	expectStatus(t, w, http.StatusBadRequest)
	if body["resendIn"] == nil {
		t.Fatalf("expected resendIn in cooldown response, got %v", body)
	}

	w, body = s.do(t, call{method: http.MethodPost, path: "/auth/otp/verify", client: client, body: map[string]string{"code": code}})
	expectStatus(t, w, http.StatusOK)
	if body["state"] != string(identity.StateAwaitingProfile) {
		t.Fatalf("expected profile step, got %v", body["state"])
	}

	w, _ = s.do(t, call{method: http.MethodPost, path: "/auth/otp/profile", client: client, body: map[string]string{"name": "Ray"}})
	expectStatus(t, w, http.StatusCreated)

	w, body = s.do(t, call{method: http.MethodGet, path: "/auth/session", client: client})
	expectStatus(t, w, http.StatusOK)
	if body["state"] != string(identity.StateSignedIn) {
		t.Fatalf("expected signed in, got %v", body["state"])
	}

	w, _ = s.do(t, call{method: http.MethodPost, path: "/auth/logout", client: client})
	expectStatus(t, w, http.StatusOK)
}

func TestOTPHidesCodeOutsideDemoMode(t *testing.T) {
	s := newTestServer(t, false)

	w, body := s.do(t, call{method: http.MethodPost, path: "/auth/otp/request", client: uuid.NewString(),
		body: map[string]string{"identifier": "9876543210"}})
	expectStatus(t, w, http.StatusOK)
	if _, ok := body["code"]; ok {
		t.Fatal("code must not be returned outside demo mode")
	}

	for _, id := range []string{"12345", "abc@x"} {
		w, _ = s.do(t, call{method: http.MethodPost, path: "/auth/otp/request", client: uuid.NewString(),
			body: map[string]string{"identifier": id}})
		expectStatus(t, w, http.StatusBadRequest)
	}
}

func TestAccountEndpoints(t *testing.T) {
	s := newTestServer(t, false)

	w, body := s.do(t, call{method: http.MethodPost, path: "/users/register", body: map[string]string{"email": "Ray@Example.com", "password": "hunter22"}})
	expectStatus(t, w, http.StatusCreated)
	user := body["user"].(map[string]interface{})
	if user["email"] != "ray@example.com" {
		t.Fatalf("expected lowercased email, got %v", user["email"])
	}

	w, _ = s.do(t, call{method: http.MethodPost, path: "/users/register", body: map[string]string{"email": "ray@example.com", "password": "x"}})
	expectStatus(t, w, http.StatusConflict)
	w, _ = s.do(t, call{method: http.MethodPost, path: "/users/register", body: map[string]string{"email": "ray@example.com"}})
	expectStatus(t, w, http.StatusBadRequest)

	w, _ = s.do(t, call{method: http.MethodPost, path: "/users/login", body: map[string]string{"email": "ray@example.com", "password": "wrong"}})
	expectStatus(t, w, http.StatusUnauthorized)
	w, _ = s.do(t, call{method: http.MethodPost, path: "/users/login", body: map[string]string{"email": "nobody@example.com", "password": "wrong"}})
	expectStatus(t, w, http.StatusUnauthorized)

	w, body = s.do(t, call{method: http.MethodPost, path: "/users/login", body: map[string]string{"email": "ray@example.com", "password": "hunter22"}})
	expectStatus(t, w, http.StatusOK)
	token := body["token"].(string)

	w, _ = s.do(t, call{method: http.MethodGet, path: "/users/profile"})
	expectStatus(t, w, http.StatusUnauthorized)
	w, _ = s.do(t, call{method: http.MethodGet, path: "/users/profile", token: "forged"})
	expectStatus(t, w, http.StatusForbidden)

	w, body = s.do(t, call{method: http.MethodGet, path: "/users/profile", token: token})
	expectStatus(t, w, http.StatusOK)
	if body["email"] != "ray@example.com" {
		t.Fatalf("unexpected profile %v", body)
	}

	w, _ = s.do(t, call{method: http.MethodPut, path: "/users/profile", token: token, body: map[string]string{"name": " "}})
	expectStatus(t, w, http.StatusBadRequest)
	w, body = s.do(t, call{method: http.MethodPut, path: "/users/profile", token: token, body: map[string]string{"name": "Ray Drip"}})
	expectStatus(t, w, http.StatusOK)
	if body["name"] != "Ray Drip" {
		t.Fatalf("expected updated name, got %v", body["name"])
	}

	orphan, err := issueUserToken(primitive.NewObjectID().Hex(), "ghost@example.com", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	w, _ = s.do(t, call{method: http.MethodGet, path: "/users/profile", token: orphan})
	expectStatus(t, w, http.StatusNotFound)
}

func TestRazorEndpoints(t *testing.T) {
	s := newTestServer(t, false)
	client := uuid.NewString()

	w, _ := s.do(t, call{method: http.MethodPost, path: "/razor/api/createOrder", client: client, body: map[string]interface{}{"amount": 0}})
	expectStatus(t, w, http.StatusBadRequest)

	w, body := s.do(t, call{method: http.MethodPost, path: "/razor/api/createOrder", client: client, body: map[string]interface{}{"amount": 129900}})
	expectStatus(t, w, http.StatusOK)
	orderID := body["orderId"].(string)
	if body["currency"] != "INR" {
		t.Fatalf("expected default currency, got %v", body["currency"])
	}

	payload := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": "pay_9",
		"razorpay_signature":  "forged",
		"shipping":            shipping(),
		"total":               129900,
		"currency":            "inr",
	}
	w, _ = s.do(t, call{method: http.MethodPost, path: "/razor/api/savePayment", client: client, body: payload})
	expectStatus(t, w, http.StatusUnauthorized)

	payload["razorpay_signature"] = s.sandbox.Sign(orderID, "pay_9")
	bad := shipping()
	bad["pincode"] = "12"
	payload["shipping"] = bad
	w, _ = s.do(t, call{method: http.MethodPost, path: "/razor/api/savePayment", client: client, body: payload})
	expectStatus(t, w, http.StatusBadRequest)

	payload["shipping"] = shipping()
	w, body = s.do(t, call{method: http.MethodPost, path: "/razor/api/savePayment", client: client, body: payload})
	expectStatus(t, w, http.StatusOK)
	if body["status"] != "success" || len(s.recorder.records) != 1 {
		t.Fatalf("expected recorded payment, got %v", body)
	}
	if rec := s.recorder.records[0]; rec.Currency != "INR" || rec.ClientID != client || rec.Shipping.Pincode != "560001" {
		t.Fatalf("unexpected record %+v", rec)
	}

	w, body = s.do(t, call{method: http.MethodGet, path: "/razor/api/payment/" + orderID, client: client})
	expectStatus(t, w, http.StatusOK)
	if body["paymentId"] != "pay_9" || body["totalMajor"] != "1299.00" || body["displayTotal"] != "₹1,299" {
		t.Fatalf("unexpected payment lookup %v", body)
	}
	w, _ = s.do(t, call{method: http.MethodGet, path: "/razor/api/payment/" + orderID, client: uuid.NewString()})
	expectStatus(t, w, http.StatusNotFound)
	w, _ = s.do(t, call{method: http.MethodGet, path: "/razor/api/payment/order_missing", client: client})
	expectStatus(t, w, http.StatusNotFound)

	s.recorder.err = errors.New("mongo down")
	w, _ = s.do(t, call{method: http.MethodPost, path: "/razor/api/savePayment", client: client, body: payload})
	expectStatus(t, w, http.StatusInternalServerError)
}

func TestStatusForKind(t *testing.T) {
	cases := map[apperror.Kind]int{
		apperror.KindValidation:       http.StatusBadRequest,
		apperror.KindAuth:             http.StatusUnauthorized,
		apperror.KindNetwork:          http.StatusBadGateway,
		apperror.KindPaymentCancelled: http.StatusPaymentRequired,
		apperror.KindPersistence:      http.StatusInternalServerError,
		apperror.KindNotFound:         http.StatusNotFound,
		apperror.KindConflict:         http.StatusConflict,
		apperror.KindInternal:         http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := statusForKind(kind); got != want {
			t.Fatalf("%s: expected %d, got %d", kind, want, got)
		}
	}
}

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	if err != nil || page != 1 || limit != 20 {
		t.Fatalf("unexpected defaults %d %d %v", page, limit, err)
	}
	if _, limit, _ = parsePaginationParams("2", "500"); limit != catalog.MaxLimit {
		t.Fatalf("expected limit capped at %d, got %d", catalog.MaxLimit, limit)
	}
	for _, bad := range [][2]string{{"0", ""}, {"x", ""}, {"", "-1"}} {
		if _, _, err := parsePaginationParams(bad[0], bad[1]); err == nil {
			t.Fatalf("expected error for %v", bad)
		}
	}
}

func TestRespondAppErrorUsesKindAndMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/checkout", nil)

	respondAppError(c, "POST /checkout", apperror.Conflict("order already paid"))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "order already paid" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestHandlePanicReturns500(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/cart", nil)

	func() {
		defer handlePanic(c, "GET /cart")
		panic("boom")
	}()

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
