package cache

import (
	"image"
	"slices"
	"sync"
	"testing"
)

func rectKey(i int) image.Rectangle {
	x, y := (i%16)*8, (i/16)*8
	return image.Rect(x, y, x+8, y+8)
}

func TestNewSharded(t *testing.T) {
	m := NewSharded[image.Rectangle, int](RectHasher)
	if m == nil {
		t.Fatal("NewSharded returned nil")
	}
	if m.Len() != 0 {
		t.Errorf("expected empty map, got %d entries", m.Len())
	}
	if len(m.Values()) != 0 || len(m.Keys()) != 0 {
		t.Error("expected no values or keys in a new map")
	}
}

func TestShardedGetSetOnce(t *testing.T) {
	m := NewSharded[image.Rectangle, string](RectHasher)
	key := image.Rect(0, 0, 8, 8)

	if _, ok := m.Get(key); ok {
		t.Error("expected miss for missing key")
	}

	if !m.SetOnce(key, "first") {
		t.Fatal("SetOnce on a new key = false")
	}
	if m.SetOnce(key, "second") {
		t.Error("SetOnce on an existing key = true")
	}

	v, ok := m.Get(key)
	if !ok || v != "first" {
		t.Errorf("Get() = %q, %v, want \"first\", true", v, ok)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
	if m.Rejected() != 1 {
		t.Errorf("Rejected() = %d, want 1", m.Rejected())
	}
}

func TestShardedValuesAndKeys(t *testing.T) {
	m := NewSharded[image.Rectangle, int](RectHasher)
	for i := range 100 {
		m.SetOnce(rectKey(i), i)
	}

	values := m.Values()
	slices.Sort(values)
	for i, v := range values {
		if v != i {
			t.Fatalf("sorted Values()[%d] = %d, want %d", i, v, i)
		}
	}

	keys := m.Keys()
	if len(keys) != 100 {
		t.Fatalf("len(Keys()) = %d, want 100", len(keys))
	}
	for _, k := range keys {
		if _, ok := m.Get(k); !ok {
			t.Errorf("key %v from Keys() not found", k)
		}
	}

	// Returned slices are copies.
	values[0] = -1
	if v, _ := m.Get(rectKey(0)); v != 0 {
		t.Errorf("mutating Values() changed the map: Get() = %d", v)
	}
}

func TestShardedShardLen(t *testing.T) {
	m := NewSharded[image.Rectangle, int](RectHasher)
	for i := range 256 {
		m.SetOnce(rectKey(i), i)
	}

	lens := m.ShardLen()
	total, used := 0, 0
	for _, l := range lens {
		total += l
		if l > 0 {
			used++
		}
	}

	if total != m.Len() {
		t.Errorf("shard lengths sum %d != Len() %d", total, m.Len())
	}
	// A grid of tiles should spread over more than a few shards.
	if used < DefaultShardCount/2 {
		t.Errorf("tiles landed in only %d of %d shards: %v", used, DefaultShardCount, lens)
	}
}

func TestShardedShardLen_TileGrids(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"16px", 16},
		{"32px", 32},
		{"50px", 50},
		{"64px", 64},
		{"100px", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSharded[image.Rectangle, int](RectHasher)
			for y := range 8 {
				for x := range 8 {
					r := image.Rect(x*tt.size, y*tt.size, (x+1)*tt.size, (y+1)*tt.size)
					m.SetOnce(r, y*8+x)
				}
			}

			lens := m.ShardLen()
			used, largest := 0, 0
			for _, l := range lens {
				if l > 0 {
					used++
				}
				largest = max(largest, l)
			}
			// 64 tiles over 16 shards: no shard should hold a large share.
			if used < 12 || largest > 12 {
				t.Errorf("8x8 grid of %s tiles: %d shards used, largest holds %d: %v",
					tt.name, used, largest, lens)
			}
		})
	}
}

func TestShardedConcurrentSetOnce(t *testing.T) {
	m := NewSharded[image.Rectangle, int](RectHasher)
	var wg sync.WaitGroup
	var mu sync.Mutex
	stored := 0

	// Every key is offered by eight goroutines; exactly one must win.
	for g := range 8 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			won := 0
			for i := range 200 {
				if m.SetOnce(rectKey(i), n) {
					won++
				}
				m.Get(rectKey(i))
			}
			mu.Lock()
			stored += won
			mu.Unlock()
		}(g)
	}

	// Concurrent readers.
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_ = m.Values()
				_ = m.Len()
			}
		}()
	}
	wg.Wait()

	if stored != 200 {
		t.Errorf("SetOnce stored %d values, want 200", stored)
	}
	if m.Len() != 200 {
		t.Errorf("Len() = %d, want 200", m.Len())
	}
	if m.Rejected() != 7*200 {
		t.Errorf("Rejected() = %d, want %d", m.Rejected(), 7*200)
	}
}

func TestRectHasher(t *testing.T) {
	r := image.Rect(1, 2, 3, 4)

	if RectHasher(r) != RectHasher(image.Rect(1, 2, 3, 4)) {
		t.Error("RectHasher not deterministic")
	}
	if RectHasher(r) == RectHasher(image.Rect(2, 1, 3, 4)) {
		t.Error("RectHasher collision for swapped coordinates")
	}
	if RectHasher(r) == RectHasher(image.Rect(-1, 2, 3, 4)) {
		t.Error("RectHasher collision for negated coordinate")
	}
}
