package kafka

import (
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventHeaders(t *testing.T) {
	m := kafka.Message{Headers: EventHeaders("OrderCancelled", 1)}
	assert.Equal(t, "OrderCancelled", Header(m, HeaderEventType))
	assert.Equal(t, "1", Header(m, HeaderEventVersion))
	assert.Empty(t, Header(m, "x-missing"))
}

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		OrderID string `json:"order_id"`
	}
	p, err := UnwrapPayload[payload](json.RawMessage(MustMarshal(payload{OrderID: "o1"})))
	require.NoError(t, err)
	assert.Equal(t, "o1", p.OrderID)

	_, err = UnwrapPayload[payload](json.RawMessage(`[`))
	assert.Error(t, err)
}
