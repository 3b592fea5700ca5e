package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedHub_RegisterAndUnregister(t *testing.T) {
	hub := NewFeedHub()

	a, err := hub.Register("u1", nil)
	require.NoError(t, err)
	b, err := hub.Register("u1", nil)
	require.NoError(t, err)
	_, err = hub.Register("u2", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, hub.Count())
	assert.Equal(t, 2, hub.UserCount("u1"))

	hub.unregister(a)
	hub.unregister(a)
	assert.Equal(t, 2, hub.Count())

	hub.unregister(b)
	assert.Zero(t, hub.UserCount("u1"))
	assert.Equal(t, 1, hub.Count())
}

func TestFeedHub_PerUserLimit(t *testing.T) {
	hub := NewFeedHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register("u1", nil)
		require.NoError(t, err)
	}

	_, err := hub.Register("u1", nil)
	assert.ErrorIs(t, err, ErrUserConnLimit)

	_, err = hub.Register("u2", nil)
	assert.NoError(t, err)
}

func TestFeedHub_ShutdownRejectsNewClients(t *testing.T) {
	hub := NewFeedHub()
	_, err := hub.Register("u1", nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Zero(t, hub.Count())

	_, err = hub.Register("u1", nil)
	assert.ErrorIs(t, err, ErrHubShutdown)
}

func TestFeedConn_QueueKeepsNewest(t *testing.T) {
	hub := NewFeedHub()
	c, err := hub.Register("u1", nil)
	require.NoError(t, err)

	for i := 0; i < outboundFrames+5; i++ {
		assert.True(t, c.Queue([]byte{byte(i)}))
	}
	assert.Len(t, c.out, outboundFrames)

	first := <-c.out
	assert.Equal(t, []byte{5}, first, "oldest frames are dropped")

	var last []byte
	for len(c.out) > 0 {
		last = <-c.out
	}
	assert.Equal(t, []byte{byte(outboundFrames + 4)}, last)
}

func TestFeedConn_QueueAfterClose(t *testing.T) {
	hub := NewFeedHub()
	c, err := hub.Register("u1", nil)
	require.NoError(t, err)

	c.Close()
	c.Close()
	assert.False(t, c.Queue([]byte("x")))
}

func TestFeedHub_DisconnectWithoutSocket(t *testing.T) {
	hub := NewFeedHub()
	_, err := hub.Register("u1", nil)
	require.NoError(t, err)

	assert.NotPanics(t, func() { hub.Disconnect("u1") })
	assert.NotPanics(t, func() { hub.Disconnect("nobody") })
}
