package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()

	_, ok, err := c.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set("key", "value", time.Minute))

	value, ok, err := c.Get("key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value", value)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()

	require.NoError(t, c.Set("short", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := c.Get("short")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	c := NewMemoryCache()

	require.NoError(t, c.Set("summary:1:30", "a", 0))
	require.NoError(t, c.Set("summary:1:90", "b", 0))
	require.NoError(t, c.Set("summary:2:30", "c", 0))
	require.NoError(t, c.Set("funnel:1", "d", 0))

	require.NoError(t, c.DeletePattern("summary:1:*"))

	_, ok, _ := c.Get("summary:1:30")
	require.False(t, ok)
	_, ok, _ = c.Get("summary:1:90")
	require.False(t, ok)

	// Other tenants and key families untouched
	_, ok, _ = c.Get("summary:2:30")
	require.True(t, ok)
	_, ok, _ = c.Get("funnel:1")
	require.True(t, ok)
}

func TestGetSetJSON(t *testing.T) {
	c := NewMemoryCache()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, SetJSON(c, "key", payload{Name: "x", Count: 3}, time.Minute))

	var decoded payload
	hit, err := GetJSON(c, "key", &decoded)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, payload{Name: "x", Count: 3}, decoded)

	hit, err = GetJSON(c, "missing", &decoded)
	require.NoError(t, err)
	require.False(t, hit)
}
