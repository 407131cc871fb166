package redisx

import "time"

const (
	// Order view cache: order:{order_id} -> JSON of the order view
	KeyOrderView = "order:%s"

	// Login attempts per client: ratelimit:login:{ip} -> counter with window TTL
	KeyLoginAttempts = "ratelimit:login:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Units sold per product: sales:product:{product_id} -> counter
	KeyProductSales = "sales:product:%s"
)

var (
	TTLOrderView = 5 * time.Minute
	TTLDedup     = 48 * time.Hour
	LoginWindow  = time.Minute
)
