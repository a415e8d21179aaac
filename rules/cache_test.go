package rules

import "testing"

func TestQueryCachePutGet(t *testing.T) {
	c, err := NewQueryCache(2)
	if err != nil {
		t.Fatalf("NewQueryCache error: %v", err)
	}
	want := []Rule{{ID: "a", RuleID: "702.15b", Score: 0.9}}
	c.Put("What does flying do?", 8, want)

	got, ok := c.Get("what does flying do?", 8)
	if !ok {
		t.Fatalf("expected cache hit for case/space-normalized query")
	}
	if len(got) != 1 || got[0].RuleID != "702.15b" {
		t.Fatalf("unexpected cached value: %+v", got)
	}
}

func TestQueryCacheDistinguishesK(t *testing.T) {
	c, err := NewQueryCache(4)
	if err != nil {
		t.Fatalf("NewQueryCache error: %v", err)
	}
	c.Put("mulligan rules", 4, []Rule{{ID: "a"}})

	if _, ok := c.Get("mulligan rules", 8); ok {
		t.Fatalf("expected miss for a different k")
	}
}

func TestQueryCachePurge(t *testing.T) {
	c, err := NewQueryCache(4)
	if err != nil {
		t.Fatalf("NewQueryCache error: %v", err)
	}
	c.Put("q", 1, []Rule{{ID: "a"}})
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after purge, got %d entries", c.Len())
	}
}

func TestQueryCacheEvictsBeyondCapacity(t *testing.T) {
	c, err := NewQueryCache(1)
	if err != nil {
		t.Fatalf("NewQueryCache error: %v", err)
	}
	c.Put("first", 1, []Rule{{ID: "a"}})
	c.Put("second", 1, []Rule{{ID: "b"}})

	if _, ok := c.Get("first", 1); ok {
		t.Fatalf("expected first entry to be evicted at capacity 1")
	}
	if _, ok := c.Get("second", 1); !ok {
		t.Fatalf("expected second entry to remain cached")
	}
}
