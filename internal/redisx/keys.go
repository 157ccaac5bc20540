package redisx

import "time"

const (
	// Cache list produk utk GET /products: products:all -> JSON array
	KeyProductList = "products:all"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLProductCache = 5 * time.Minute
	TTLDedup        = 48 * time.Hour
)
