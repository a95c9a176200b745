package redisx

import "time"

const (
	// Blocked flag cache: user:blocked:{user_id} -> true | false
	KeyUserBlocked = "user:blocked:%s"

	// Product detail cache: product:{product_id} -> JSON
	KeyProduct = "product:%s"

	// Dashboard report cache: report:{period}:{from}:{to} -> JSON
	KeyReport = "report:%s:%s:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Checkout idempotency: idem:checkout:{user_id}:{key} -> order_id
	KeyIdemCheckout = "idem:checkout:%s:%s"

	// IdemPending marks a checkout key whose order is still being placed.
	IdemPending = "pending"
)

var (
	TTLUserBlocked = 5 * time.Minute
	TTLProduct     = 2 * time.Minute
	TTLDedup       = 48 * time.Hour
	TTLIdempotency = 24 * time.Hour
	TTLIdemPending = time.Minute
)
