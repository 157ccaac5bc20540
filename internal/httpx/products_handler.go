package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jeevanrakth/rakth-store.git/internal/auth"
	"github.com/jeevanrakth/rakth-store.git/internal/redisx"
	"github.com/jeevanrakth/rakth-store.git/internal/store"
)

type Catalog interface {
	CreateProduct(ctx context.Context, in store.CreateProductInput) (*store.Product, error)
	ListProducts(ctx context.Context) ([]store.Product, error)
}

type ProductsHandler struct {
	Store Catalog
	Redis *redis.Client
}

type CreateProductReq struct {
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
	Price string `json:"price"` // fixed-point string, e.g. "19.99"
}

type ProductResp struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	Price     string    `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *ProductsHandler) Register(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Get("/products", h.listProducts)
	r.Group(func(g chi.Router) {
		g.Use(authMW, RequireRole(auth.RoleAdmin))
		g.Post("/products", h.createProduct)
	})
}

// listProducts: read-through cache. Cache miss / redis error -> langsung DB,
// isi cache best-effort.
func (h *ProductsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if s, err := h.Redis.Get(ctx, redisx.KeyProductList).Result(); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s))
		return
	}

	ps, err := h.Store.ListProducts(ctx)
	if err != nil {
		log.Printf("list products: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	out := make([]ProductResp, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductResp(&p))
	}
	b, _ := json.Marshal(out)
	if err := h.Redis.Set(ctx, redisx.KeyProductList, b, redisx.TTLProductCache).Err(); err != nil {
		log.Printf("cache fill %s: %v", redisx.KeyProductList, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *ProductsHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json")
		return
	}
	if req.SKU == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "sku and name are required")
		return
	}
	if req.Stock < 0 {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "stock must be >= 0")
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "price must be a non-negative decimal string")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.CreateProduct(ctx, store.CreateProductInput{
		SKU: req.SKU, Name: req.Name, Stock: req.Stock, Price: price,
	})
	if errors.Is(err, store.ErrDuplicateSKU) {
		writeError(w, http.StatusConflict, "DUPLICATE_SKU", "sku already exists")
		return
	}
	if err != nil {
		log.Printf("create product: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	// produk baru -> list cache basi
	if err := h.Redis.Del(ctx, redisx.KeyProductList).Err(); err != nil {
		log.Printf("cache invalidate %s: %v", redisx.KeyProductList, err)
	}

	writeJSON(w, http.StatusCreated, toProductResp(p))
}

func toProductResp(p *store.Product) ProductResp {
	return ProductResp{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Stock:     p.Stock,
		Price:     p.Price.StringFixed(2),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
