package orders

const (
	TopicOrderPlaced = "order.placed"
	TopicOrderStatus = "order.status"
)

// Partition key = user_id, so every event of one customer keeps its order.
func PartitionKey(userID string) []byte { return []byte(userID) }
