package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTTL_PutGet(t *testing.T) {
	c := NewTTL[string, int](time.Minute)

	_, ok := c.Get("days:30")
	require.False(t, ok)

	c.Put("days:30", 42)
	v, ok := c.Get("days:30")
	require.True(t, ok)
	require.Equal(t, 42, v)
}

func TestTTL_Expiry(t *testing.T) {
	c := NewTTL[string, int](time.Minute)
	c.Put("k", 1)

	base := time.Now()
	now = func() time.Time { return base.Add(2 * time.Minute) }
	defer func() { now = time.Now }()

	_, ok := c.Get("k")
	require.False(t, ok)
}

func TestTTL_InvalidateAndClear(t *testing.T) {
	c := NewTTL[string, int](time.Minute)
	c.Put("a", 1)
	c.Put("b", 2)

	c.Invalidate("a")
	_, ok := c.Get("a")
	require.False(t, ok)
	_, ok = c.Get("b")
	require.True(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	require.False(t, ok)
}

func TestTTL_DisabledWhenNonPositive(t *testing.T) {
	c := NewTTL[string, int](0)
	c.Put("k", 1)
	_, ok := c.Get("k")
	require.False(t, ok)
}
