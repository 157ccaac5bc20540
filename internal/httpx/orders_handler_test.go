package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeevanrakth/rakth-store.git/internal/auth"
	"github.com/jeevanrakth/rakth-store.git/internal/store"
)

// stubPlacer: Placer yang bisa diprogram per test.
type stubPlacer struct {
	receipt *store.Receipt
	err     error
	gotIn   store.PlaceOrderInput
}

func (s *stubPlacer) PlaceOrderTx(ctx context.Context, in store.PlaceOrderInput) (*store.Receipt, error) {
	s.gotIn = in
	if s.err != nil {
		return nil, s.err
	}
	return s.receipt, nil
}

func (s *stubPlacer) GetOrder(ctx context.Context, id string) (*store.Receipt, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.receipt, nil
}

// deadRedis: client ke alamat mati; semua call error dan harus di-ignore
// handler (best-effort).
func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

// fakeAuth: suntik claims tanpa verifikasi token.
func fakeAuth(claims *auth.Claims) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func sampleReceipt() *store.Receipt {
	return &store.Receipt{
		Order: store.Order{
			ID: "order-1", UserID: "user-1", ProductID: "prod-1", Qty: 2,
			Total: decimal.RequireFromString("50.00"), Status: store.OrderPlaced,
			CreatedAt: time.Now().UTC(),
		},
		Payment: store.Payment{
			ID: "pay-1", OrderID: "order-1",
			Amount: decimal.RequireFromString("50.00"),
			Provider: store.DefaultProvider, Reference: "PAY-order-1-abc",
			Status: store.PaymentCaptured,
		},
	}
}

func newOrdersRouter(p Placer, claims *auth.Claims) *chi.Mux {
	h := &OrdersHandler{Store: p, Redis: deadRedis(), Service: "test"}
	r := chi.NewRouter()
	h.Register(r, fakeAuth(claims))
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func userClaims(id, role string) *auth.Claims {
	return &auth.Claims{UserID: id, Role: role}
}

func TestPlaceOrder_Created(t *testing.T) {
	stub := &stubPlacer{receipt: sampleReceipt()}
	router := newOrdersRouter(stub, userClaims("user-1", auth.RoleUser))

	w := doJSON(t, router, http.MethodPost, "/orders",
		`{"product_id":"prod-1","qty":2,"payment":{"provider":"razorpay"}}`)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp PlaceOrderResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order-1", resp.Order.ID)
	assert.Equal(t, "PLACED", resp.Order.Status)
	assert.Equal(t, "50.00", resp.Order.Total)
	assert.Equal(t, "CAPTURED", resp.Payment.Status)
	assert.Equal(t, "PAY-order-1-abc", resp.Payment.Reference)

	// buyer id dari token, bukan dari body
	assert.Equal(t, "user-1", stub.gotIn.UserID)
	assert.Equal(t, "razorpay", stub.gotIn.Provider)
}

func TestPlaceOrder_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"product not found", store.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"insufficient stock", &store.InsufficientStockError{ProductID: "prod-1", Required: 5, Available: 2}, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"rollback test", store.ErrRollbackTest, http.StatusTeapot, "ROLLBACK_TEST"},
		{"invalid qty", store.ErrInvalidQty, http.StatusBadRequest, "BAD_REQUEST"},
		{"duplicate reference", store.ErrInvalidReference, http.StatusConflict, "DUPLICATE_REFERENCE"},
		{"generic failure", context.DeadlineExceeded, http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newOrdersRouter(&stubPlacer{err: tc.err}, userClaims("user-1", auth.RoleUser))
			w := doJSON(t, router, http.MethodPost, "/orders", `{"product_id":"prod-1"}`)
			assert.Equal(t, tc.wantCode, w.Code)
			var body ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.wantBody, body.Error)
		})
	}
}

func TestPlaceOrder_InsufficientStockDetailInMessage(t *testing.T) {
	router := newOrdersRouter(&stubPlacer{
		err: &store.InsufficientStockError{ProductID: "prod-1", Required: 5, Available: 2},
	}, userClaims("user-1", auth.RoleUser))
	w := doJSON(t, router, http.MethodPost, "/orders", `{"product_id":"prod-1","qty":5}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "qty 5")
	assert.Contains(t, w.Body.String(), "stock 2")
}

func TestPlaceOrder_BadRequests(t *testing.T) {
	router := newOrdersRouter(&stubPlacer{receipt: sampleReceipt()}, userClaims("user-1", auth.RoleUser))

	w := doJSON(t, router, http.MethodPost, "/orders", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/orders", `{"qty":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "product_id")
}

func TestGetOrder_OwnerAndAdmin(t *testing.T) {
	stub := &stubPlacer{receipt: sampleReceipt()}

	// pemilik boleh
	w := doJSON(t, newOrdersRouter(stub, userClaims("user-1", auth.RoleUser)),
		http.MethodGet, "/orders/order-1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	// admin boleh
	w = doJSON(t, newOrdersRouter(stub, userClaims("someone-else", auth.RoleAdmin)),
		http.MethodGet, "/orders/order-1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	// user lain: 404, keberadaan order tidak dibocorkan
	w = doJSON(t, newOrdersRouter(stub, userClaims("someone-else", auth.RoleUser)),
		http.MethodGet, "/orders/order-1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	router := newOrdersRouter(&stubPlacer{err: store.ErrOrderNotFound}, userClaims("user-1", auth.RoleUser))
	w := doJSON(t, router, http.MethodGet, "/orders/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER_NOT_FOUND")
}
