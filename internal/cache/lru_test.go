package cache

import "testing"

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[string, int](2)
	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache returned a value")
	}
	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}

	// "b" is now the least recently used entry.
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	c.Set("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("updated Get(a) = %d", v)
	}
}

func TestLRU_GetOrCreate(t *testing.T) {
	c := NewLRU[int, string](4)
	calls := 0
	create := func() string {
		calls++
		return "v"
	}
	for range 3 {
		if got := c.GetOrCreate(1, create); got != "v" {
			t.Fatalf("GetOrCreate = %q", got)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("stats = %+v, want 2 hits and 1 miss", s)
	}
}

func TestLRU_DeleteClear(t *testing.T) {
	c := NewLRU[int, int](3)
	for i := range 3 {
		c.Set(i, i)
	}
	if !c.Delete(1) || c.Delete(1) {
		t.Error("Delete should report presence once")
	}
	c.Set(3, 3)
	c.Set(4, 4)
	if _, ok := c.Get(0); ok {
		t.Error("0 should have been evicted after delete and two inserts")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
	c.Set(5, 5)
	if v, ok := c.Get(5); !ok || v != 5 {
		t.Error("cache unusable after Clear")
	}
}

func TestNewLRU_MinCapacity(t *testing.T) {
	c := NewLRU[int, int](0)
	c.Set(1, 1)
	c.Set(2, 2)
	if c.Len() != 1 || c.Stats().Capacity != 1 {
		t.Errorf("stats = %+v", c.Stats())
	}
}
