package cache

import (
	"testing"
	"time"
)

func TestLRUBasics(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("get a: %d, %v", v, ok)
	}

	// "a" was just touched, so adding "c" evicts "b".
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should survive")
	}
	if c.Size() != 2 {
		t.Fatalf("size %d, want 2", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[string](10, 10*time.Millisecond)
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}

	c.Set("x", "y")
	time.Sleep(20 * time.Millisecond)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("cleaned %d, want 1", n)
	}
}

func TestLRUDeletePrefix(t *testing.T) {
	c := NewLRU[int](10, time.Minute)
	c.Set("acct:1:2024-01", 1)
	c.Set("acct:1:2024-02", 2)
	c.Set("acct:2:2024-01", 3)

	if n := c.DeletePrefix("acct:1:"); n != 2 {
		t.Fatalf("deleted %d, want 2", n)
	}
	if _, ok := c.Get("acct:2:2024-01"); !ok {
		t.Fatal("unrelated key should survive")
	}
}
