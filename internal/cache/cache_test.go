package cache

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"drivefin/internal/log"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newClock() *clock {
	return &clock{t: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[string](3, time.Hour)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")
	c.Get("key1") // key2 is now least recently used
	c.Set("key4", "value4")

	if _, found := c.Get("key2"); found {
		t.Error("key2 should have been evicted")
	}
	for _, k := range []string{"key1", "key3", "key4"} {
		if _, found := c.Get(k); !found {
			t.Errorf("%s should still exist", k)
		}
	}
	if c.Size() != 3 {
		t.Errorf("Size = %d, want 3", c.Size())
	}
}

func TestLRUCacheTTLExpiration(t *testing.T) {
	clk := newClock()
	c := NewLRUCache[string](100, 5*time.Minute, WithClock(clk.now))

	c.Set("key1", "value1")
	if _, found := c.Get("key1"); !found {
		t.Fatal("key1 should exist immediately")
	}

	clk.advance(5*time.Minute + time.Second)
	if _, found := c.Get("key1"); found {
		t.Error("key1 should have expired")
	}
	if c.Size() != 0 {
		t.Error("expired entry should be dropped on read")
	}
}

func TestLRUCacheOverwriteRefreshesTTL(t *testing.T) {
	clk := newClock()
	c := NewLRUCache[int](10, time.Minute, WithClock(clk.now))

	c.Set("k", 1)
	clk.advance(50 * time.Second)
	c.Set("k", 2)
	clk.advance(50 * time.Second)

	v, ok := c.Get("k")
	if !ok || v != 2 {
		t.Errorf("Get = %d, %v; want 2, true", v, ok)
	}
}

func TestLRUCacheCleanExpired(t *testing.T) {
	clk := newClock()
	c := NewLRUCache[int](10, time.Minute, WithClock(clk.now))
	c.Set("a", 1)
	c.Set("b", 2)
	clk.advance(2 * time.Minute)
	c.Set("c", 3)

	if n := c.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired = %d, want 2", n)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

func TestGetOrComputeAndStats(t *testing.T) {
	c := NewLRUCache[string](4, time.Hour)
	calls := 0
	compute := func() string {
		calls++
		return "v"
	}

	c.GetOrCompute("k", compute)
	c.GetOrCompute("k", compute)
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats = %d hits, %d misses", hits, misses)
	}

	c.Purge()
	if c.Size() != 0 {
		t.Error("Purge left entries behind")
	}
}

func TestLRUCacheConcurrentAccess(t *testing.T) {
	c := NewLRUCache[int](50, time.Hour)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%60)
				c.Set(key, i)
				c.Get(key)
				if i%25 == 0 {
					c.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()
	if c.Size() > 50 {
		t.Errorf("Size = %d exceeds capacity", c.Size())
	}
}

func TestManagerSweep(t *testing.T) {
	clk := newClock()
	var buf bytes.Buffer
	m := NewManager(log.New(log.Config{Level: -4, Output: &buf}))
	a := NewLRUCache[int](10, time.Minute, WithClock(clk.now))
	b := NewLRUCache[string](10, time.Hour, WithClock(clk.now))
	m.Register("a", a)
	m.Register("b", b)

	a.Set("x", 1)
	b.Set("y", "z")
	clk.advance(2 * time.Minute)

	if n := m.Sweep(); n != 1 {
		t.Errorf("Sweep = %d, want 1", n)
	}
	if !bytes.Contains(buf.Bytes(), []byte("cache=a")) {
		t.Errorf("expected sweep log for cache a, got %q", buf.String())
	}
}

func TestManagerStartStop(t *testing.T) {
	m := NewManager(log.New(log.Config{Output: &bytes.Buffer{}}))
	m.StartCleanup(time.Millisecond)
	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()

	idle := NewManager(log.New(log.Config{Output: &bytes.Buffer{}}))
	idle.Stop()
}

func BenchmarkLRUCacheSetGet(b *testing.B) {
	c := NewLRUCache[int](100, time.Hour)
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("k%d", i%200)
		c.Set(key, i)
		c.Get(key)
	}
}
