package cache

import (
	"testing"
	"time"
)

func TestDisabledCacheAlwaysMisses(t *testing.T) {
	c, err := New("", 24, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Set("key", "hash", []byte("data")); err != nil {
		t.Fatalf("Set on disabled cache: %v", err)
	}
	if _, ok := c.Get("key", "hash"); ok {
		t.Error("disabled cache returned a hit")
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	c, err := New(t.TempDir(), 24, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	hash := HashBytes([]byte("source content"))
	if err := c.Set("lib/main.dart", hash, []byte(`{"decls":[]}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, ok := c.Get("lib/main.dart", hash)
	if !ok {
		t.Fatal("expected a hit")
	}
	if string(data) != `{"decls":[]}` {
		t.Errorf("data = %s", data)
	}
}

func TestContentHashMismatchMisses(t *testing.T) {
	c, _ := New(t.TempDir(), 24, true)
	c.Set("k", HashBytes([]byte("v1")), []byte("payload"))

	if _, ok := c.Get("k", HashBytes([]byte("v2"))); ok {
		t.Error("stale entry returned for changed content")
	}
}

func TestExpiredEntryMisses(t *testing.T) {
	c, _ := New(t.TempDir(), 0, true)
	c.Set("k", "h", []byte("payload"))

	time.Sleep(10 * time.Millisecond)
	if _, ok := c.Get("k", "h"); ok {
		t.Error("expired entry returned")
	}
}

func TestUnknownKeyMisses(t *testing.T) {
	c, _ := New(t.TempDir(), 24, true)
	if _, ok := c.Get("never-set", "h"); ok {
		t.Error("unexpected hit")
	}
}

func TestHashBytesStable(t *testing.T) {
	a := HashBytes([]byte("abc"))
	b := HashBytes([]byte("abc"))
	if a != b {
		t.Errorf("hash not stable: %s vs %s", a, b)
	}
	if a == HashBytes([]byte("abd")) {
		t.Error("different content hashed equal")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
