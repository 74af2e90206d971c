package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow(t *testing.T) {
	t.Run("BurstThenReject", func(t *testing.T) {
		limiter := New(1, 3)

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow(), "request %d within burst", i)
		}
		assert.False(t, limiter.Allow(), "burst exhausted")
	})

	t.Run("ZeroRateMeansUnlimited", func(t *testing.T) {
		limiter := New(0, 0)

		for i := 0; i < 10_000; i++ {
			require.True(t, limiter.Allow())
		}
	})

	t.Run("TokensRefillOverTime", func(t *testing.T) {
		limiter := New(100, 1)

		require.True(t, limiter.Allow())
		require.False(t, limiter.Allow())

		time.Sleep(20 * time.Millisecond)
		assert.True(t, limiter.Allow())
	})
}

func TestWait(t *testing.T) {
	t.Run("ReturnsWhenTokenAvailable", func(t *testing.T) {
		limiter := New(1000, 1)
		require.True(t, limiter.Allow())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		require.NoError(t, limiter.Wait(ctx))
	})

	t.Run("HonorsCancellation", func(t *testing.T) {
		limiter := New(1, 1)
		require.True(t, limiter.Allow())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := limiter.Wait(ctx)
		require.Error(t, err)
	})
}
