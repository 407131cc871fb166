package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu       sync.Mutex
	msgs     []kafka.Message
	fetchErr error
	commits  []kafka.Message
	closed   bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return m, nil
	}
	err := r.fetchErr
	r.mu.Unlock()
	if err != nil {
		return kafka.Message{}, err
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, 0, len(r.commits))
	for _, m := range r.commits {
		out = append(out, m.Offset)
	}
	return out
}

func testConsumer(r Reader, workers int) *Consumer {
	c := newConsumer(r, workers)
	c.backoff = func() retry.Backoff { return retry.NewConstant(time.Millisecond) }
	return c
}

func run(t *testing.T, c *Consumer, h Handler) (cancel func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()
	return func() error {
		stop()
		select {
		case err := <-done:
			return err
		case <-time.After(2 * time.Second):
			t.Fatal("consumer did not stop")
			return nil
		}
	}
}

func TestConsumer_RetriesBeforeCommittingLaterOffsets(t *testing.T) {
	r := &fakeReader{msgs: []kafka.Message{
		{Partition: 0, Offset: 10},
		{Partition: 0, Offset: 11},
	}}

	var mu sync.Mutex
	var calls []int64
	var failed bool
	h := func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, m.Offset)
		if m.Offset == 10 && !failed {
			failed = true
			return errors.New("redis: connection refused")
		}
		return nil
	}

	stop := run(t, testConsumer(r, 4), h)
	assert.Eventually(t, func() bool { return len(r.committed()) == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, stop())

	assert.Equal(t, []int64{10, 11}, r.committed())
	mu.Lock()
	assert.Equal(t, []int64{10, 10, 11}, calls)
	mu.Unlock()
	assert.True(t, r.closed)
}

func TestConsumer_KeepsPartitionOrderAcrossWorkers(t *testing.T) {
	var msgs []kafka.Message
	for off := int64(0); off < 5; off++ {
		for p := 0; p < 3; p++ {
			msgs = append(msgs, kafka.Message{Partition: p, Offset: off})
		}
	}
	r := &fakeReader{msgs: msgs}

	stop := run(t, testConsumer(r, 2), func(context.Context, kafka.Message) error { return nil })
	assert.Eventually(t, func() bool { return len(r.committed()) == len(msgs) }, time.Second, 5*time.Millisecond)
	require.NoError(t, stop())

	r.mu.Lock()
	defer r.mu.Unlock()
	last := map[int]int64{0: -1, 1: -1, 2: -1}
	for _, m := range r.commits {
		assert.Greater(t, m.Offset, last[m.Partition], "partition %d committed out of order", m.Partition)
		last[m.Partition] = m.Offset
	}
}

func TestConsumer_NoCommitWhileHandlerFails(t *testing.T) {
	r := &fakeReader{msgs: []kafka.Message{{Partition: 0, Offset: 7}, {Partition: 0, Offset: 8}}}

	var mu sync.Mutex
	attempts := 0
	h := func(context.Context, kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return errors.New("still down")
	}

	stop := run(t, testConsumer(r, 1), h)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts >= 3
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, stop())

	assert.Empty(t, r.committed())
	assert.True(t, r.closed)
}

func TestConsumer_FetchErrorStops(t *testing.T) {
	boom := errors.New("group coordinator not available")
	r := &fakeReader{fetchErr: boom}

	err := testConsumer(r, 1).Start(context.Background(), func(context.Context, kafka.Message) error { return nil })

	assert.ErrorIs(t, err, boom)
	assert.True(t, r.closed)
}
