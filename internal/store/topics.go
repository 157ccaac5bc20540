package store

const (
	TopicOrderPlaced = "store.order.placed"
)

// Partition key = order_id, supaya event utk 1 order terjaga urutannya.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
