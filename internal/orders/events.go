package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderCancelled     = "OrderCancelled"
	EventReturnApproved     = "ReturnApproved"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "store-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- payloads ----

type ItemQty struct {
	VariantID string `json:"variant_id"`
	Qty       int    `json:"qty"`
}

type OrderPlacedPayload struct {
	OrderID       string        `json:"order_id"`
	UserID        string        `json:"user_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	TotalCents    int64         `json:"total_cents"`
	CouponCode    string        `json:"coupon_code,omitempty"`
	Items         []ItemQty     `json:"items"`
}

type StatusChangedPayload struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
	Actor   string `json:"actor"`
	Note    string `json:"note,omitempty"`
}

// SettlementPayload is carried by OrderCancelled and ReturnApproved. Items go back to stock
// and RefundCents, when positive, is credited to the customer's wallet.
type SettlementPayload struct {
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	Kind        Status    `json:"kind"` // CANCELLED | RETURNED
	RefundCents int64     `json:"refund_cents"`
	Items       []ItemQty `json:"items"`
}

func itemQtys(items []Item) []ItemQty {
	out := make([]ItemQty, 0, len(items))
	for _, it := range items {
		out = append(out, ItemQty{VariantID: it.VariantID, Qty: it.Qty})
	}
	return out
}
