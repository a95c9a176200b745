package orders

const (
	TopicOrderPlaced = "order.placed"
	TopicOrderStatus = "order.status"
	// Cancellations and approved returns, consumed by the refunds worker.
	TopicOrderSettlement = "order.settlement"
)

// Partition key = order_id so events of one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
