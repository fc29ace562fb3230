package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitRespectsWindowCap(t *testing.T) {
	l := NewLimiter(0, 2)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))
	assert.Equal(t, 2, l.InWindow())

	shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := l.Wait(shortCtx)
	assert.Error(t, err, "third call within the window should block until the context deadline")
}

func TestWaitAllowsUnboundedWindow(t *testing.T) {
	l := NewLimiter(0, 0)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Wait(ctx))
	}
}
