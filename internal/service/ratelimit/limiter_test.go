package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowIsPerKey(t *testing.T) {
	l := New(0.001, 2)

	assert.True(t, l.Allow("chart"))
	assert.True(t, l.Allow("chart"))
	assert.False(t, l.Allow("chart"))

	assert.True(t, l.Allow("quote"))
}

func TestWaitHonoursContext(t *testing.T) {
	l := New(0.001, 1)
	require.NoError(t, l.Wait(context.Background(), "k"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "k"))
}

func TestZeroBurstIsClamped(t *testing.T) {
	l := New(1000, 0)
	assert.NoError(t, l.Wait(context.Background(), "k"))
}
