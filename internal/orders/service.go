package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-storefront/internal/cart"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/promo"
	"github.com/ariefcatur/go-storefront/internal/telemetry"
)

type Store interface {
	Place(ctx context.Context, userID string, build func(lines []cart.Line) (Draft, error)) (Order, error)
	Transition(ctx context.Context, id string, decide func(o Order) (Change, error)) (before, after Order, err error)
	Get(ctx context.Context, id string) (Order, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]Order, int, error)
	ListAll(ctx context.Context, status Status, page, limit int) ([]Order, int, error)
}

type Carts interface {
	View(ctx context.Context, userID string) (cart.View, error)
}

type Promotions interface {
	LiveOffers(ctx context.Context) ([]promo.Offer, error)
	Resolve(ctx context.Context, userID, code string, subtotal int64) (*promo.Coupon, int64, error)
}

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Store      Store
	Carts      Carts
	Promotions Promotions
	Notifier   notify.Notifier

	Placed     Publisher
	StatusLog  Publisher
	Settlement Publisher

	Fees         Fees
	CODMaxCents  int64
	ReturnWindow time.Duration
	ServiceName  string
	Now          func() time.Time
}

// Actor is who asks for a change: a customer acting on their own order or an admin.
type Actor struct {
	UserID string
	Admin  bool
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Quote previews checkout totals for the current cart and an optional coupon code.
func (s *Service) Quote(ctx context.Context, userID, couponCode string) (Quote, error) {
	v, err := s.Carts.View(ctx, userID)
	if err != nil {
		return Quote{}, err
	}
	c, _, err := s.Promotions.Resolve(ctx, userID, couponCode, v.SubtotalCents)
	if err != nil {
		return Quote{}, err
	}
	return BuildQuote(v, c, s.Fees), nil
}

type CheckoutInput struct {
	CouponCode    string        `json:"coupon_code"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Address       Address       `json:"address"`
	TraceID       string        `json:"-"`
}

func (s *Service) Checkout(ctx context.Context, userID string, in CheckoutInput) (Order, error) {
	in.PaymentMethod = PaymentMethod(strings.ToUpper(string(in.PaymentMethod)))
	if in.PaymentMethod != PayCOD && in.PaymentMethod != PayWallet {
		return Order{}, fmt.Errorf("%w: payment method must be COD or WALLET", ErrInvalid)
	}
	if !in.Address.Complete() {
		return Order{}, fmt.Errorf("%w: address is incomplete", ErrInvalid)
	}

	preview, err := s.Carts.View(ctx, userID)
	if err != nil {
		return Order{}, err
	}
	coupon, _, err := s.Promotions.Resolve(ctx, userID, in.CouponCode, preview.SubtotalCents)
	if err != nil {
		return Order{}, err
	}
	offers, err := s.Promotions.LiveOffers(ctx)
	if err != nil {
		return Order{}, err
	}
	now := s.now()

	o, err := s.Store.Place(ctx, userID, func(lines []cart.Line) (Draft, error) {
		return s.draft(lines, offers, coupon, in, now)
	})
	if err != nil {
		return Order{}, err
	}

	telemetry.OrdersPlaced.WithLabelValues(string(o.PaymentMethod)).Inc()
	s.publish(s.Placed, EventOrderPlaced, o.ID, in.TraceID, OrderPlacedPayload{
		OrderID:       o.ID,
		UserID:        o.UserID,
		PaymentMethod: o.PaymentMethod,
		TotalCents:    o.TotalCents,
		CouponCode:    o.CouponCode,
		Items:         itemQtys(o.Items),
	})
	notify.Send(ctx, s.Notifier, notify.Notification{
		UserID: userID,
		Kind:   notify.KindOrderPlaced,
		Title:  "Order placed",
		Body:   fmt.Sprintf("Your order %s has been placed.", o.ID),
		Data:   map[string]string{"order_id": o.ID},
	})
	return o, nil
}

// draft validates locked cart lines and prices them into an order.
func (s *Service) draft(lines []cart.Line, offers []promo.Offer, coupon *promo.Coupon, in CheckoutInput, now time.Time) (Draft, error) {
	if len(lines) == 0 {
		return Draft{}, ErrEmptyCart
	}
	for _, l := range lines {
		if !l.Available {
			return Draft{}, fmt.Errorf("%w: %s", ErrUnavailable, l.ProductName)
		}
		if l.Qty > l.Stock {
			return Draft{}, fmt.Errorf("%w: %s", ErrOutOfStock, l.ProductName)
		}
	}
	v := cart.Price(lines, offers, now)
	if coupon != nil && v.SubtotalCents < coupon.MinOrderCents {
		return Draft{}, fmt.Errorf("%w: minimum order value of %d not met", promo.ErrRejected, coupon.MinOrderCents)
	}
	q := BuildQuote(v, coupon, s.Fees)
	if in.PaymentMethod == PayCOD && s.CODMaxCents > 0 && q.TotalCents > s.CODMaxCents {
		return Draft{}, ErrCODLimit
	}

	o := Order{
		Status:              StatusPlaced,
		PaymentMethod:       in.PaymentMethod,
		PaymentStatus:       PaymentPending,
		SubtotalCents:       q.SubtotalCents,
		OfferDiscountCents:  q.OfferDiscountCents,
		CouponCode:          q.CouponCode,
		CouponDiscountCents: q.CouponDiscountCents,
		ShippingCents:       q.ShippingCents,
		TotalCents:          q.TotalCents,
		Address:             in.Address,
		Items:               q.items(),
	}
	if in.PaymentMethod == PayWallet {
		o.PaymentStatus = PaymentPaid
	}
	return Draft{Order: o, Coupon: coupon}, nil
}

func (s *Service) List(ctx context.Context, userID string, page, limit int) (Page, error) {
	page, limit = clampPage(page, limit)
	list, total, err := s.Store.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return Page{}, err
	}
	return newPage(list, total, page, limit), nil
}

// Get hides other customers' orders behind ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, id string) (Order, error) {
	o, err := s.Store.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != userID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) AdminList(ctx context.Context, status Status, page, limit int) (Page, error) {
	if status != "" && !status.Valid() {
		return Page{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}
	page, limit = clampPage(page, limit)
	list, total, err := s.Store.ListAll(ctx, status, page, limit)
	if err != nil {
		return Page{}, err
	}
	return newPage(list, total, page, limit), nil
}

func (s *Service) AdminGet(ctx context.Context, id string) (Order, error) {
	return s.Store.Get(ctx, id)
}

// Cancel moves an order to CANCELLED. Customers may only cancel their own PLACED orders.
func (s *Service) Cancel(ctx context.Context, by Actor, id, reason string) (Order, error) {
	return s.transition(ctx, id, func(o Order) (Change, error) {
		if !by.Admin {
			if o.UserID != by.UserID {
				return Change{}, ErrNotFound
			}
			if !CustomerCanCancel(o.Status) {
				return Change{}, fmt.Errorf("%w: order is already %s", ErrInvalidTransition, o.Status)
			}
		}
		if !CanTransition(o.Status, StatusCancelled) {
			return Change{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusCancelled)
		}
		return Change{To: StatusCancelled, Note: strings.TrimSpace(reason), Actor: by.actor()}, nil
	})
}

// RequestReturn is open for DELIVERED orders until ReturnWindow after delivery.
func (s *Service) RequestReturn(ctx context.Context, userID, id, reason string) (Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Order{}, fmt.Errorf("%w: return reason is required", ErrInvalid)
	}
	now := s.now()
	return s.transition(ctx, id, func(o Order) (Change, error) {
		if o.UserID != userID {
			return Change{}, ErrNotFound
		}
		if o.Status != StatusDelivered {
			return Change{}, fmt.Errorf("%w: only delivered orders can be returned", ErrInvalidTransition)
		}
		if s.ReturnWindow > 0 && o.DeliveredAt != nil && now.Sub(*o.DeliveredAt) > s.ReturnWindow {
			return Change{}, ErrReturnWindow
		}
		return Change{To: StatusReturnRequested, Note: reason, Actor: userID, ReturnReason: reason}, nil
	})
}

// UpdateStatus is the admin path for any transition the state machine allows,
// except return decisions which go through DecideReturn.
func (s *Service) UpdateStatus(ctx context.Context, adminID, id string, to Status, note string) (Order, error) {
	if !to.Valid() {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, to)
	}
	if to == StatusReturned || to == StatusReturnRejected || to == StatusReturnRequested {
		return Order{}, fmt.Errorf("%w: use the return endpoints for %s", ErrInvalidTransition, to)
	}
	return s.transition(ctx, id, func(o Order) (Change, error) {
		if !CanTransition(o.Status, to) {
			return Change{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
		}
		ch := Change{To: to, Note: strings.TrimSpace(note), Actor: Actor{UserID: adminID, Admin: true}.actor()}
		if to == StatusDelivered {
			ch.Delivered = true
			if o.PaymentMethod == PayCOD && o.PaymentStatus == PaymentPending {
				ch.PaymentStatus = PaymentPaid
			}
		}
		return ch, nil
	})
}

func (s *Service) DecideReturn(ctx context.Context, adminID, id string, approve bool, note string) (Order, error) {
	to := StatusReturnRejected
	if approve {
		to = StatusReturned
	}
	return s.transition(ctx, id, func(o Order) (Change, error) {
		if o.Status != StatusReturnRequested {
			return Change{}, fmt.Errorf("%w: no pending return request", ErrInvalidTransition)
		}
		return Change{To: to, Note: strings.TrimSpace(note), Actor: Actor{UserID: adminID, Admin: true}.actor()}, nil
	})
}

func (a Actor) actor() string {
	if a.Admin {
		return "admin:" + a.UserID
	}
	return a.UserID
}

// transition applies the change and then emits the events and notification it implies.
func (s *Service) transition(ctx context.Context, id string, decide func(o Order) (Change, error)) (Order, error) {
	before, after, err := s.Store.Transition(ctx, id, decide)
	if err != nil {
		return Order{}, err
	}
	last := StatusEntry{Status: after.Status, Actor: "system"}
	if n := len(after.History); n > 0 {
		last = after.History[n-1]
	}

	s.publish(s.StatusLog, EventOrderStatusChanged, after.ID, "", StatusChangedPayload{
		OrderID: after.ID, UserID: after.UserID, From: before.Status, To: after.Status,
		Actor: last.Actor, Note: last.Note,
	})

	switch after.Status {
	case StatusCancelled:
		s.publish(s.Settlement, EventOrderCancelled, after.ID, "", SettlementPayload{
			OrderID: after.ID, UserID: after.UserID, Kind: StatusCancelled,
			RefundCents: before.PaidCents(), Items: itemQtys(before.Items),
		})
	case StatusReturned:
		s.publish(s.Settlement, EventReturnApproved, after.ID, "", SettlementPayload{
			OrderID: after.ID, UserID: after.UserID, Kind: StatusReturned,
			RefundCents: before.PaidCents(), Items: itemQtys(before.Items),
		})
	}

	kind := notify.KindOrderStatus
	if after.Status == StatusReturned || after.Status == StatusReturnRejected {
		kind = notify.KindReturnDecision
	}
	notify.Send(ctx, s.Notifier, notify.Notification{
		UserID: after.UserID,
		Kind:   kind,
		Title:  "Order " + strings.ToLower(strings.ReplaceAll(string(after.Status), "_", " ")),
		Body:   fmt.Sprintf("Order %s is now %s.", after.ID, after.Status),
		Data:   map[string]string{"order_id": after.ID, "status": string(after.Status)},
	})
	return after, nil
}

func (s *Service) publish(p Publisher, eventType, orderID, traceID string, payload any) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now(),
		Producer:      s.ServiceName,
		TraceID:       traceID,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev), kafkax.EventHeaders(eventType, ev.EventVersion)...)
	slog.Debug("event published", "event_type", eventType, "order_id", orderID, "event_id", ev.EventID)
}
