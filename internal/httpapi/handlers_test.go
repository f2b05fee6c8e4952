package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rawbazaar/backend/internal/domain"
	"rawbazaar/backend/internal/i18n"
	"rawbazaar/backend/internal/metrics"
	"rawbazaar/backend/internal/service"
	"rawbazaar/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, a real
// SessionManager and a real Service so handler tests exercise the complete
// request path.
func newTestAPI(t *testing.T, opts ...Option) *API {
	t.Helper()

	repo := memory.NewSeeded()
	svc := service.New(repo, i18n.MustNew())
	sessions := NewSessionManager("test-secret-key-test-secret-key!", time.Hour)

	return New(svc, sessions, "*", append([]Option{WithMetrics(metrics.New())}, opts...)...)
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
	return out
}

func startSession(t *testing.T, h http.Handler, userType domain.UserType, id int64) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/session", "", domain.SessionRequest{UserType: userType, UserID: id})
	if rec.Code != http.StatusCreated {
		t.Fatalf("session %s:%d expected 201, got %d: %s", userType, id, rec.Code, rec.Body.String())
	}
	resp := decodeBody[domain.SessionResponse](t, rec)
	if resp.AccessToken == "" {
		t.Fatalf("expected access token")
	}
	return resp.AccessToken
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody[map[string]any](t, rec)
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestProductsListAndGet(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/products?limit=4", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	list := decodeBody[struct {
		Products []domain.Product `json:"products"`
	}](t, rec)
	if len(list.Products) != 4 {
		t.Fatalf("expected 4 products with limit, got %d", len(list.Products))
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products?supplier_id=4", "", nil)
	list = decodeBody[struct {
		Products []domain.Product `json:"products"`
	}](t, rec)
	if len(list.Products) != 2 {
		t.Fatalf("expected 2 products for supplier 4, got %d", len(list.Products))
	}

	if rec := doJSON(t, handler, http.MethodGet, "/api/v1/products/404", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing product, got %d", rec.Code)
	}
	if rec := doJSON(t, handler, http.MethodGet, "/api/v1/products/abc", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestFilteredProductsFollowSavedFilter(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodPatch, "/api/v1/filters", "", map[string]any{"category": "spices", "price_max": "150"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products?filtered=true", "", nil)
	list := decodeBody[struct {
		Products []domain.Product `json:"products"`
	}](t, rec)
	if len(list.Products) != 1 || list.Products[0].ID != 5 {
		t.Fatalf("expected only product 5, got %+v", list.Products)
	}
}

func TestDemoVendorPlacesOrderEndToEnd(t *testing.T) {
	handler := newTestAPI(t).Handler()

	for _, item := range []domain.CartItemRequest{{ProductID: 1, Quantity: 10}, {ProductID: 2, Quantity: 5}} {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", "", item)
		if rec.Code != http.StatusOK {
			t.Fatalf("add to cart expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/orders", "", domain.PlaceOrderRequest{DeliveryAddress: "Shop 15, Main Market, Mumbai"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("place order expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	result := decodeBody[domain.PlaceOrderResult](t, rec)
	if len(result.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(result.Orders))
	}
	if !result.GrandTotal.Equal(result.Orders[0].Total.Add(result.Orders[1].Total)) || result.GrandTotal.String() != "350" {
		t.Fatalf("unexpected grand total %s", result.GrandTotal)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/orders", "", domain.PlaceOrderRequest{DeliveryAddress: "Shop 15"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty cart expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/cart", "", nil)
	cart := decodeBody[struct {
		Cart domain.CartView `json:"cart"`
	}](t, rec)
	if cart.Cart.ItemCount != 0 {
		t.Fatalf("expected empty cart after placement, got %d items", cart.Cart.ItemCount)
	}
}

func TestSupplierSessionFulfilsOrder(t *testing.T) {
	handler := newTestAPI(t).Handler()
	supplier := startSession(t, handler, domain.UserSupplier, 1)
	otherSupplier := startSession(t, handler, domain.UserSupplier, 4)

	rec := doJSON(t, handler, http.MethodPatch, "/api/v1/orders/ORD001/status", otherSupplier, domain.OrderStatusRequest{Status: domain.OrderAccepted})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign supplier expected 403, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPatch, "/api/v1/orders/ORD001/status", supplier, domain.OrderStatusRequest{Status: domain.OrderDelivered})
	if rec.Code != http.StatusConflict {
		t.Fatalf("pending to delivered expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPatch, "/api/v1/orders/ORD001/status", supplier, domain.OrderStatusRequest{Status: domain.OrderAccepted})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPatch, "/api/v1/orders/ORD404/status", supplier, domain.OrderStatusRequest{Status: domain.OrderAccepted})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing order expected 404, got %d", rec.Code)
	}

	// The demo vendor 1 owns ORD001 and sees the acceptance.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if got := res.Header().Get("Content-Language"); got != "en" {
		t.Fatalf("expected Content-Language en, got %q", got)
	}
	body := decodeBody[struct {
		Notifications []notificationView `json:"notifications"`
		UnreadCount   int                `json:"unread_count"`
	}](t, res)
	if len(body.Notifications) != 1 || body.UnreadCount != 1 {
		t.Fatalf("expected one unread notification, got %+v", body)
	}
	if body.Notifications[0].DisplayTitle != "Order Accepted" {
		t.Fatalf("unexpected display title %q", body.Notifications[0].DisplayTitle)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/notifications/"+body.Notifications[0].ID+"/read", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read expected 200, got %d", rec.Code)
	}
}

func TestNotificationsDefaultToHindi(t *testing.T) {
	handler := newTestAPI(t).Handler()
	supplier := startSession(t, handler, domain.UserSupplier, 1)
	doJSON(t, handler, http.MethodPatch, "/api/v1/orders/ORD001/status", supplier, domain.OrderStatusRequest{Status: domain.OrderRejected})

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/notifications", "", nil)
	if got := rec.Header().Get("Content-Language"); got != "hi" {
		t.Fatalf("expected Content-Language hi, got %q", got)
	}
	body := decodeBody[struct {
		Notifications []notificationView `json:"notifications"`
	}](t, rec)
	if len(body.Notifications) != 1 || body.Notifications[0].DisplayTitle != "ऑर्डर रद्द किया गया" {
		t.Fatalf("unexpected notifications %+v", body.Notifications)
	}

	englishFirst := newTestAPI(t, WithDefaultLanguage("en")).Handler()
	rec = doJSON(t, englishFirst, http.MethodGet, "/api/v1/notifications", "", nil)
	if got := rec.Header().Get("Content-Language"); got != "en" {
		t.Fatalf("expected Content-Language en, got %q", got)
	}
}

func TestSupplierManagesOwnCatalogue(t *testing.T) {
	handler := newTestAPI(t).Handler()
	supplier := startSession(t, handler, domain.UserSupplier, 4)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products", supplier, map[string]any{
		"name": "लाल मिर्च", "name_en": "Red Chilli", "price": "150", "unit": "किलो", "stock": 20, "category": "spices",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[struct {
		Product domain.Product `json:"product"`
	}](t, rec).Product
	if created.ID != 7 || created.SupplierID != 4 {
		t.Fatalf("unexpected product %+v", created)
	}

	rec = doJSON(t, handler, http.MethodPut, "/api/v1/products/7/stock", supplier, map[string]any{"stock": 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("stock expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	stocked := decodeBody[struct {
		Product domain.Product `json:"product"`
	}](t, rec).Product
	if stocked.InStock || stocked.Status != domain.ProductOutOfStock {
		t.Fatalf("expected out of stock, got %+v", stocked)
	}

	rec = doJSON(t, handler, http.MethodPut, "/api/v1/products/1/stock", supplier, map[string]any{"stock": 5})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign product expected 403, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/products/7", "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("demo vendor delete expected 403, got %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/products/7", supplier, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete expected 200, got %d", rec.Code)
	}
}

func TestValidationErrorsListFields(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", "", map[string]any{"product_id": 0, "quantity": -1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody[validationErrorResponse](t, rec)
	if len(body.Details) != 2 {
		t.Fatalf("expected 2 field errors, got %+v", body.Details)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", "", map[string]any{"product_id": 1, "colour": "red"})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "unknown field") {
		t.Fatalf("expected unknown field rejection, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyticsRespectRoles(t *testing.T) {
	handler := newTestAPI(t).Handler()

	if rec := doJSON(t, handler, http.MethodGet, "/api/v1/analytics/supplier", "", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("vendor supplier analytics expected 403, got %d", rec.Code)
	}
	if rec := doJSON(t, handler, http.MethodGet, "/api/v1/analytics/vendor", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("vendor summary expected 200, got %d", rec.Code)
	}

	supplier := startSession(t, handler, domain.UserSupplier, 4)
	rec := doJSON(t, handler, http.MethodGet, "/api/v1/analytics/supplier", supplier, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("supplier analytics expected 200, got %d", rec.Code)
	}
	body := decodeBody[struct {
		Analytics domain.SupplierAnalytics `json:"analytics"`
	}](t, rec)
	if body.Analytics.TotalRevenue.String() != "360" {
		t.Fatalf("unexpected revenue %s", body.Analytics.TotalRevenue)
	}
}

func TestUnknownSessionUser(t *testing.T) {
	handler := newTestAPI(t).Handler()
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/session", "", domain.SessionRequest{UserType: domain.UserSupplier, UserID: 42})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
