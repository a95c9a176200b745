package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *memReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		m := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *memReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *memReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *memReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, 0, len(r.committed))
	for _, m := range r.committed {
		out = append(out, m.Offset)
	}
	return out
}

func run(t *testing.T, c *Consumer, h Handler) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()
	return func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("consumer did not stop")
		}
	}
}

func TestConsumerRetriesFailedMessageBeforeCommittingLaterOnes(t *testing.T) {
	r := &memReader{pending: []kafka.Message{
		{Partition: 0, Offset: 10},
		{Partition: 0, Offset: 11},
	}}
	c := &Consumer{r: r, workers: 2, backoff: time.Millisecond, maxBackoff: 5 * time.Millisecond}

	var mu sync.Mutex
	calls := map[int64]int{}
	stop := run(t, c, func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		calls[m.Offset]++
		if m.Offset == 10 && calls[10] < 3 {
			return errors.New("database unavailable")
		}
		return nil
	})

	require.Eventually(t, func() bool { return len(r.commits()) == 2 }, time.Second, time.Millisecond)
	stop()

	assert.Equal(t, []int64{10, 11}, r.commits())
	mu.Lock()
	assert.Equal(t, 3, calls[10])
	assert.Equal(t, 1, calls[11])
	mu.Unlock()
	assert.True(t, r.closed)
}

func TestConsumerLeavesFailingMessageUncommittedOnShutdown(t *testing.T) {
	r := &memReader{pending: []kafka.Message{{Partition: 1, Offset: 5}, {Partition: 1, Offset: 6}}}
	c := &Consumer{r: r, workers: 1, backoff: time.Millisecond, maxBackoff: time.Millisecond}

	attempts := make(chan struct{}, 100)
	stop := run(t, c, func(_ context.Context, m kafka.Message) error {
		if m.Offset == 5 {
			select {
			case attempts <- struct{}{}:
			default:
			}
			return errors.New("still failing")
		}
		return nil
	})

	for i := 0; i < 3; i++ {
		<-attempts
	}
	stop()
	assert.Empty(t, r.commits())
}

func TestConsumerKeepsPartitionsIndependent(t *testing.T) {
	r := &memReader{pending: []kafka.Message{{Partition: 0, Offset: 1}, {Partition: 1, Offset: 1}}}
	c := &Consumer{r: r, workers: 2, backoff: time.Millisecond, maxBackoff: time.Millisecond}

	stop := run(t, c, func(_ context.Context, m kafka.Message) error {
		if m.Partition == 0 {
			return errors.New("stuck")
		}
		return nil
	})

	require.Eventually(t, func() bool { return len(r.commits()) == 1 }, time.Second, time.Millisecond)
	stop()
	r.mu.Lock()
	assert.Equal(t, 1, r.committed[0].Partition)
	r.mu.Unlock()
}
