package refunds

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

type memStore struct {
	settled map[string]bool
	calls   int
	fail    error
}

func (m *memStore) Settle(_ context.Context, p orders.SettlementPayload) (bool, error) {
	m.calls++
	if m.fail != nil {
		return false, m.fail
	}
	if m.settled[p.OrderID] {
		return false, nil
	}
	m.settled[p.OrderID] = true
	return true, nil
}

type memDedup struct{ seen map[string]bool }

func (d *memDedup) FirstSeen(_ context.Context, id string) (bool, error) {
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

func (d *memDedup) Forget(_ context.Context, id string) error {
	delete(d.seen, id)
	return nil
}

type notes struct{ sent []notify.Notification }

func (n *notes) Notify(_ context.Context, x notify.Notification) error {
	n.sent = append(n.sent, x)
	return nil
}

func message(eventID, eventType string, p orders.SettlementPayload) kafkago.Message {
	env := orders.Envelope{
		EventID:      eventID,
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload:      kafkax.MustMarshal(p),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env), Headers: kafkax.EventHeaders(eventType, 1)}
}

func newService() (*Service, *memStore, *memDedup, *notes) {
	st := &memStore{settled: map[string]bool{}}
	dd := &memDedup{seen: map[string]bool{}}
	nt := &notes{}
	return &Service{Store: st, Dedup: dd, Notifier: nt}, st, dd, nt
}

func TestHandleSettlementRefunds(t *testing.T) {
	svc, st, _, nt := newService()
	p := orders.SettlementPayload{OrderID: "o1", UserID: "u1", Kind: orders.StatusCancelled, RefundCents: 5000}

	require.NoError(t, svc.HandleSettlement(context.Background(), message("e1", orders.EventOrderCancelled, p)))
	assert.True(t, st.settled["o1"])
	require.Len(t, nt.sent, 1)
	assert.Equal(t, notify.KindRefund, nt.sent[0].Kind)
}

func TestHandleSettlementDedupsEvents(t *testing.T) {
	svc, st, _, nt := newService()
	p := orders.SettlementPayload{OrderID: "o1", UserID: "u1", Kind: orders.StatusReturned, RefundCents: 100}
	m := message("e1", orders.EventReturnApproved, p)

	require.NoError(t, svc.HandleSettlement(context.Background(), m))
	require.NoError(t, svc.HandleSettlement(context.Background(), m))
	assert.Equal(t, 1, st.calls)

	// a second event for the same order is stopped by the settlement marker
	require.NoError(t, svc.HandleSettlement(context.Background(), message("e2", orders.EventReturnApproved, p)))
	assert.Equal(t, 2, st.calls)
	assert.Len(t, nt.sent, 1)
}

func TestHandleSettlementIgnoresOtherEvents(t *testing.T) {
	svc, st, _, _ := newService()
	require.NoError(t, svc.HandleSettlement(context.Background(), message("e1", orders.EventOrderPlaced, orders.SettlementPayload{})))
	require.NoError(t, svc.HandleSettlement(context.Background(), kafkago.Message{Value: []byte("{not json")}))

	// the header short-circuits before the body is read
	bad := kafkago.Message{Value: []byte("{not json"), Headers: kafkax.EventHeaders(orders.EventOrderStatusChanged, 1)}
	require.NoError(t, svc.HandleSettlement(context.Background(), bad))
	assert.Zero(t, st.calls)
}

func TestHandleSettlementFailureAllowsRetry(t *testing.T) {
	svc, st, dd, _ := newService()
	st.fail = errors.New("db down")
	m := message("e1", orders.EventOrderCancelled, orders.SettlementPayload{OrderID: "o1", Kind: orders.StatusCancelled})

	assert.Error(t, svc.HandleSettlement(context.Background(), m))
	assert.NotContains(t, dd.seen, "e1")

	st.fail = nil
	require.NoError(t, svc.HandleSettlement(context.Background(), m))
	assert.True(t, st.settled["o1"])
}

func TestNoNotificationWithoutRefund(t *testing.T) {
	svc, _, _, nt := newService()
	p := orders.SettlementPayload{OrderID: "o1", UserID: "u1", Kind: orders.StatusCancelled}
	require.NoError(t, svc.HandleSettlement(context.Background(), message("e1", orders.EventOrderCancelled, p)))
	assert.Empty(t, nt.sent)
}
