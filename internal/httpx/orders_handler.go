package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/jeevanrakth/rakth-store.git/internal/auth"
	kafkax "github.com/jeevanrakth/rakth-store.git/internal/kafka"
	"github.com/jeevanrakth/rakth-store.git/internal/redisx"
	"github.com/jeevanrakth/rakth-store.git/internal/store"
)

// Placer: subset store.Repo yang dibutuhkan handler order (gampang di-stub
// di test).
type Placer interface {
	PlaceOrderTx(ctx context.Context, in store.PlaceOrderInput) (*store.Receipt, error)
	GetOrder(ctx context.Context, id string) (*store.Receipt, error)
}

type OrdersHandler struct {
	Store    Placer
	Producer *kafkax.Producer
	Redis    *redis.Client
	Service  string
}

type PaymentReq struct {
	Provider  string `json:"provider"`
	Reference string `json:"reference"`
}

type PlaceOrderReq struct {
	ProductID       string     `json:"product_id"`
	Qty             int        `json:"qty"`
	Payment         PaymentReq `json:"payment"`
	SimulateFailure bool       `json:"simulate_failure"`
}

type OrderResp struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Qty       int       `json:"qty"`
	Status    string    `json:"status"`
	Total     string    `json:"total"` // fixed-point string
	CreatedAt time.Time `json:"created_at"`
}

type PaymentResp struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

type PlaceOrderResp struct {
	Order   OrderResp   `json:"order"`
	Payment PaymentResp `json:"payment"`
}

func (h *OrdersHandler) Register(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Group(func(g chi.Router) {
		g.Use(authMW)
		g.Post("/orders", h.placeOrder)
		g.Get("/orders/{id}", h.getOrder)
	})
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing claims")
		return
	}

	var req PlaceOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "product_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rc, err := h.Store.PlaceOrderTx(ctx, store.PlaceOrderInput{
		UserID:          claims.UserID,
		ProductID:       req.ProductID,
		Qty:             req.Qty,
		Provider:        req.Payment.Provider,
		Reference:       req.Payment.Reference,
		SimulateFailure: req.SimulateFailure,
	})
	if err != nil {
		h.writePlaceError(w, err)
		return
	}

	// Invalidasi cache list produk best-effort: order sukses tidak boleh
	// tergantung cache, error cukup di-log.
	if err := h.Redis.Del(ctx, redisx.KeyProductList).Err(); err != nil {
		log.Printf("cache invalidate %s: %v", redisx.KeyProductList, err)
	}

	h.publishOrderPlaced(rc, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusCreated, toPlaceOrderResp(rc))
}

func (h *OrdersHandler) writePlaceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product does not exist")
	case errors.Is(err, store.ErrInsufficientStock):
		var ise *store.InsufficientStockError
		msg := "requested qty exceeds available stock"
		if errors.As(err, &ise) {
			msg = fmt.Sprintf("requested qty %d exceeds available stock %d", ise.Required, ise.Available)
		}
		writeError(w, http.StatusConflict, "INSUFFICIENT_STOCK", msg)
	case errors.Is(err, store.ErrRollbackTest):
		writeError(w, http.StatusTeapot, "ROLLBACK_TEST", "transaction rolled back as requested")
	case errors.Is(err, store.ErrInvalidQty):
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "qty must be a positive integer")
	case errors.Is(err, store.ErrInvalidReference):
		writeError(w, http.StatusConflict, "DUPLICATE_REFERENCE", "payment reference already used")
	default:
		log.Printf("place order: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

// publishOrderPlaced fire-and-forget setelah commit; kegagalan publish tidak
// mempengaruhi order yang sudah persist.
func (h *OrdersHandler) publishOrderPlaced(rc *store.Receipt, traceID string) {
	if h.Producer == nil {
		return
	}
	ev := store.Envelope{
		EventID:       uuid.NewString(),
		EventType:     store.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: rc.Order.ID,
		Payload: kafkax.MustMarshal(store.OrderPlacedPayload{
			OrderID:          rc.Order.ID,
			UserID:           rc.Order.UserID,
			ProductID:        rc.Order.ProductID,
			Qty:              rc.Order.Qty,
			Total:            rc.Order.Total.StringFixed(2),
			PaymentReference: rc.Payment.Reference,
		}),
	}
	h.Producer.Publish(store.PartitionKey(rc.Order.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(store.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing claims")
		return
	}
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "missing id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rc, err := h.Store.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order does not exist")
		return
	}
	if err != nil {
		log.Printf("get order: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	// pemilik atau admin; selain itu jawab 404, jangan bocorkan keberadaan
	if rc.Order.UserID != claims.UserID && claims.Role != auth.RoleAdmin {
		writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order does not exist")
		return
	}

	writeJSON(w, http.StatusOK, toPlaceOrderResp(rc))
}

func toPlaceOrderResp(rc *store.Receipt) PlaceOrderResp {
	return PlaceOrderResp{
		Order: OrderResp{
			ID:        rc.Order.ID,
			ProductID: rc.Order.ProductID,
			Qty:       rc.Order.Qty,
			Status:    string(rc.Order.Status),
			Total:     rc.Order.Total.StringFixed(2),
			CreatedAt: rc.Order.CreatedAt,
		},
		Payment: PaymentResp{
			ID:        rc.Payment.ID,
			Status:    string(rc.Payment.Status),
			Reference: rc.Payment.Reference,
		},
	}
}
