// Package sales projects order.placed events into per-product sold counters.
package sales

import (
	"context"
	"encoding/json"
	"log/slog"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/pkg/logkey"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Recorder applies one event's sold quantities at most once.
type Recorder interface {
	Record(ctx context.Context, eventID string, sold map[string]int) (applied bool, err error)
}

// Counter reads the units sold for a product.
type Counter interface {
	Sold(ctx context.Context, productID string) (int64, error)
}

// RedisStore keeps the counters and the dedup marks in Redis.
type RedisStore struct {
	RDB     *redis.Client
	Service string
}

func (s *RedisStore) Record(ctx context.Context, eventID string, sold map[string]int) (bool, error) {
	return redisx.RecordSale(ctx, s.RDB, s.Service, eventID, sold)
}

func (s *RedisStore) Sold(ctx context.Context, productID string) (int64, error) {
	return redisx.Sales(ctx, s.RDB, productID)
}

type Projector struct {
	Recorder Recorder
}

// HandleOrderPlaced is the consumer handler for order.placed. Other event types and
// redeliveries are acknowledged without effect; malformed messages are logged and skipped.
func (p *Projector) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		slog.Error("skipping undecodable event", slog.Int64("offset", m.Offset), slog.String(logkey.ERROR, err.Error()))
		return nil
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}

	payload, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		slog.Error("skipping event with bad payload", slog.String(logkey.EventID, env.EventID), slog.String(logkey.ERROR, err.Error()))
		return nil
	}

	sold := make(map[string]int, len(payload.Lines))
	for _, l := range payload.Lines {
		sold[l.ProductID] += l.Qty
	}
	applied, err := p.Recorder.Record(ctx, env.EventID, sold)
	if err != nil {
		return err
	}
	if applied {
		slog.Info("sales recorded", slog.String(logkey.EventID, env.EventID), slog.String(logkey.TraceID, env.TraceID),
			slog.String(logkey.UserID, payload.UserID), slog.Int("lines", len(payload.Lines)))
	}
	return nil
}
