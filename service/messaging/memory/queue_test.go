package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	ID    string
	Count int
}

func TestQueue_PublishConsume(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx := context.Background()

	payload := testPayload{ID: "intent-1", Count: 1}
	require.NoError(t, queue.Publish(ctx, &payload))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, payload, *message.T())

	assert.NoError(t, message.Ack())
	assert.ErrorIs(t, message.Ack(), ErrProcessed)
	assert.ErrorIs(t, message.Nack(nil), ErrProcessed)
}

func TestQueue_NackDeadLetter(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &testPayload{ID: "stale"}))
	message, err := queue.Consume(ctx)
	require.NoError(t, err)

	reason := errors.New("superseded")
	require.NoError(t, message.Nack(reason))
	assert.Equal(t, 0, queue.Size())
	require.Equal(t, 1, queue.DLQSize())
	letters := queue.DeadLetters()
	assert.Equal(t, "stale", letters[0].Payload.ID)
	assert.ErrorIs(t, letters[0].Reason, reason)
}

func TestQueue_NackRetry(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 1
	config.RetryDelay = 5 * time.Millisecond
	queue := NewQueue[testPayload](config)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, queue.Publish(ctx, &testPayload{ID: "retry"}))
	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, message.Nack(nil))

	message, err = queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "retry", message.T().ID)
	require.NoError(t, message.Nack(nil))

	assert.Eventually(t, func() bool { return queue.DLQSize() == 1 }, time.Second, 5*time.Millisecond)
}

func TestQueue_ConsumeCancelled(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, queue.Publish(ctx, &testPayload{}), context.Canceled)
}

func TestQueue_Concurrency(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx := context.Background()
	producers, perProducer := 8, 16

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				assert.NoError(t, queue.Publish(ctx, &testPayload{ID: fmt.Sprintf("p%d-%d", id, j), Count: j}))
			}
		}(i)
	}

	seen := map[string]bool{}
	for i := 0; i < producers*perProducer; i++ {
		message, err := queue.Consume(ctx)
		require.NoError(t, err)
		require.NoError(t, message.Ack())
		seen[message.T().ID] = true
	}
	wg.Wait()
	assert.Len(t, seen, producers*perProducer)
}
