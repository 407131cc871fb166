package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ariefcatur/go-storefront/pkg/logkey"
	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
)

// Handler returns nil only when the message is fully processed and its offset may be committed.
// It is retried until it succeeds, so it must be idempotent and must return nil for messages it
// will never be able to process.
type Handler func(ctx context.Context, m kafka.Message) error

// Reader is the part of *kafka.Reader the consumer drives.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r       Reader
	workers int
	backoff func() retry.Backoff
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	return newConsumer(r, workers)
}

func newConsumer(r Reader, workers int) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, backoff: defaultBackoff}
}

func defaultBackoff() retry.Backoff {
	return retry.WithCappedDuration(5*time.Second, retry.NewExponential(100*time.Millisecond))
}

// Start fetches messages until ctx ends. Each partition is pinned to one worker, which handles
// its messages in offset order and commits one only after the handler succeeded, so a committed
// offset never skips a message that still has to be processed.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	lanes := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range lanes {
		lanes[i] = make(chan kafka.Message, 64)
		wg.Add(1)
		go func(in <-chan kafka.Message) {
			defer wg.Done()
			for m := range in {
				if err := c.process(ctx, h, m); err != nil {
					// Only ctx ending stops the retries; the group resumes from the last commit.
					return
				}
			}
		}(lanes[i])
	}
	defer wg.Wait()
	defer func() {
		for _, l := range lanes {
			close(l)
		}
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case lanes[m.Partition%len(lanes)] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

// process runs h until it succeeds, then commits m. It gives up only when ctx is done.
func (c *Consumer) process(ctx context.Context, h Handler, m kafka.Message) error {
	attrs := []any{
		slog.String(logkey.Topic, m.Topic),
		slog.Int("partition", m.Partition),
		slog.Int64("offset", m.Offset),
	}

	attempt := 0
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		attempt++
		if err := h(ctx, m); err != nil {
			slog.Warn("consumer handler failed", append(attrs,
				slog.Int("attempt", attempt), slog.String(logkey.ERROR, err.Error()))...)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		if err := c.r.CommitMessages(ctx, m); err != nil {
			slog.Error("consumer commit failed", append(attrs, slog.String(logkey.ERROR, err.Error()))...)
			return retry.RetryableError(err)
		}
		return nil
	})
}
