package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLateSubscriberMissesEarlierPublishes(t *testing.T) {
	b := New[int](4)
	b.Publish(1)

	sub := b.Subscribe()
	b.Publish(2)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v, lag, err := sub.Recv(ctx)
	require.NoError(t, err)
	require.Nil(t, lag)
	assert.Equal(t, 2, v)
}

func TestOverflowEvictsOldestAndReportsLag(t *testing.T) {
	b := New[int](2)
	sub := b.Subscribe()

	b.Publish(1)
	b.Publish(2)
	b.Publish(3) // evicts 1, records one lag

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, lag, err := sub.Recv(ctx)
	require.NoError(t, err)
	require.NotNil(t, lag)
	assert.Equal(t, uint64(1), lag.Count)

	v, lag, err := sub.Recv(ctx)
	require.NoError(t, err)
	require.Nil(t, lag)
	assert.Equal(t, 2, v)

	v, lag, err = sub.Recv(ctx)
	require.NoError(t, err)
	require.Nil(t, lag)
	assert.Equal(t, 3, v)
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	b := New[int](4)
	assert.NotPanics(t, func() { b.Publish(42) })
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestUnsubscribeClosesSubscription(t *testing.T) {
	b := New[int](4)
	sub := b.Subscribe()
	b.Unsubscribe(sub)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, _, err := sub.Recv(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCloseClosesAllSubscriptions(t *testing.T) {
	b := New[int](4)
	s1 := b.Subscribe()
	s2 := b.Subscribe()
	b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, _, err1 := s1.Recv(ctx)
	_, _, err2 := s2.Recv(ctx)
	assert.ErrorIs(t, err1, ErrClosed)
	assert.ErrorIs(t, err2, ErrClosed)
}
