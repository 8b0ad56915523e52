package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroker_FanOut(t *testing.T) {
	b := NewMemoryBroker(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := b.Subscribe(ctx, NotificationsChannel)
	require.NoError(t, err)
	second, err := b.Subscribe(ctx, NotificationsChannel)
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), NotificationsChannel, map[string]string{"id": "N1"}))

	assert.JSONEq(t, `{"id":"N1"}`, string(<-first))
	assert.JSONEq(t, `{"id":"N1"}`, string(<-second))
}

func TestMemoryBroker_FullSubscriberIsReported(t *testing.T) {
	b := NewMemoryBroker(1)
	_, err := b.Subscribe(context.Background(), NotificationsChannel)
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), NotificationsChannel, "a"))
	assert.ErrorIs(t, b.Publish(context.Background(), NotificationsChannel, "b"), ErrSubscriberBusy)
}

func TestMemoryBroker_Close(t *testing.T) {
	b := NewMemoryBroker(1)
	ch, err := b.Subscribe(context.Background(), NotificationsChannel)
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, open := <-ch
	assert.False(t, open)
	assert.ErrorIs(t, b.Publish(context.Background(), NotificationsChannel, "late"), ErrBrokerClosed)
	_, err = b.Subscribe(context.Background(), NotificationsChannel)
	assert.ErrorIs(t, err, ErrBrokerClosed)
}
