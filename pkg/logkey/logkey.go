// Package logkey holds the attribute names shared by every slog call.
package logkey

const (
	TraceID   = "trace_id"
	ERROR     = "error"
	UserID    = "user_id"
	OrderID   = "order_id"
	ProductID = "product_id"
	EventID   = "event_id"
	Topic     = "topic"
)
