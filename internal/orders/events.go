package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // user_id for checkouts, order_id otherwise
	Payload       json.RawMessage `json:"payload"`
}

type PlacedLine struct {
	OrderID    string `json:"order_id"`
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	TotalCents int64  `json:"total_cents"`
}

type OrderPlacedPayload struct {
	UserID      string       `json:"user_id"`
	Lines       []PlacedLine `json:"lines"`
	TotalAmount int64        `json:"total_amount"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Status  Status `json:"status"`
}

func newEnvelope(eventType, producer, traceID, correlationID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: correlationID,
		Payload:       b,
	}, nil
}

// PlacedEvent describes a committed checkout.
func PlacedEvent(producer, traceID, userID string, res Result) (Envelope, error) {
	p := OrderPlacedPayload{UserID: userID, TotalAmount: res.TotalAmount}
	for _, o := range res.Orders {
		p.Lines = append(p.Lines, PlacedLine{OrderID: o.ID, ProductID: o.ProductID, Qty: o.Qty, TotalCents: o.TotalCents})
	}
	return newEnvelope(EventOrderPlaced, producer, traceID, userID, p)
}

func StatusChangedEvent(producer, traceID string, o Order) (Envelope, error) {
	return newEnvelope(EventOrderStatusChanged, producer, traceID, o.ID,
		OrderStatusChangedPayload{OrderID: o.ID, UserID: o.UserID, Status: o.Status})
}
