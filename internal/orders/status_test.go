package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]Status{
		{StatusPlaced, StatusShipped},
		{StatusPlaced, StatusCancelled},
		{StatusShipped, StatusDelivered},
		{StatusShipped, StatusCancelled},
		{StatusDelivered, StatusReturnRequested},
		{StatusReturnRequested, StatusReturned},
		{StatusReturnRequested, StatusReturnRejected},
	}
	for _, p := range allowed {
		assert.True(t, CanTransition(p[0], p[1]), "%s -> %s", p[0], p[1])
	}

	denied := [][2]Status{
		{StatusPlaced, StatusDelivered},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusPlaced},
		{StatusReturned, StatusReturnRequested},
		{StatusReturnRejected, StatusReturned},
		{"BOGUS", StatusShipped},
	}
	for _, p := range denied {
		assert.False(t, CanTransition(p[0], p[1]), "%s -> %s", p[0], p[1])
	}
}

func TestCustomerCanCancel(t *testing.T) {
	assert.True(t, CustomerCanCancel(StatusPlaced))
	assert.False(t, CustomerCanCancel(StatusShipped))
	assert.True(t, Status("SHIPPED").Valid())
	assert.False(t, Status("LOST").Valid())
}
