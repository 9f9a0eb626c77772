package utils

import (
	"testing"
	"time"
)

func TestTTLCacheSetGet(t *testing.T) {
	c := NewTTLCache[int64, string](2, time.Minute)
	c.Set(1, "one")

	if v, ok := c.Get(1); !ok || v != "one" {
		t.Errorf("Get(1) = %q, %v", v, ok)
	}
	if _, ok := c.Get(2); ok {
		t.Error("Get(2) should miss")
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string, int](10, time.Second)
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("k", 1)

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, expired entry should be removed", c.Len())
	}
}

func TestTTLCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewTTLCache[int, int](2, time.Minute)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Get(1)
	c.Set(3, 3)

	if _, ok := c.Get(2); ok {
		t.Error("key 2 should have been evicted")
	}
	if _, ok := c.Get(1); !ok {
		t.Error("key 1 should survive")
	}
}

func TestTTLCacheDeleteAndClear(t *testing.T) {
	c := NewTTLCache[int, int](4, time.Minute)
	c.Set(1, 1)
	c.Set(2, 2)

	c.Delete(1)
	if _, ok := c.Get(1); ok {
		t.Error("deleted key should miss")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
}
