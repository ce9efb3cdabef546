package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	t.Parallel()

	c := NewMemory()

	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Set("k", 42)
	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, 42, v)

	c.Set("k", "replaced")
	v, ok = c.Get("k")
	require.True(t, ok)
	require.Equal(t, "replaced", v)
	require.Equal(t, 1, c.Len())
}

func TestMemoryConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%4)
			c.Set(key, n)
			c.Get(key)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 4, c.Len())
}
