package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/pseudonym/internal/model"
)

func TestCacheKey(t *testing.T) {
	k1 := CacheKey("ner", "", "John Smith")
	k2 := CacheKey("ner", "", "John Smith")
	k3 := CacheKey("ner", "John Smith", "")

	if k1 != k2 {
		t.Error("expected identical parts to yield identical keys")
	}
	if k1 == k3 {
		t.Error("expected part boundaries to affect the key")
	}
	if !strings.HasPrefix(k1, "pseudonym:v1:") {
		t.Errorf("unexpected key prefix: %s", k1)
	}
	if strings.Contains(k1, "John") {
		t.Error("key must not contain the source text")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, ok := c.Get("k"); !ok || string(v) != "v" {
		t.Errorf("expected hit with v, got %q %v", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 item, got %d", c.Len())
	}
	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestDiskCache_RoundTripAndPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "preds")
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("x")

	if err := c.Set(key, []byte("payload"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok := c.Get(key)
	if !ok || string(v) != "payload" {
		t.Fatalf("expected payload, got %q %v", v, ok)
	}

	info, err := os.Stat(c.path(key))
	if err != nil {
		t.Fatalf("stat cache file: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		t.Errorf("expected owner-only file, got %v", perm)
	}
	if strings.Contains(filepath.Base(c.path(key)), ":") {
		t.Error("cache file name must not contain colons")
	}
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	_ = c.Set("k", []byte("v"), -time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expected expired entry file to be removed")
	}
}

func TestDiskCache_DeleteMissing(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	if err := c.Delete("nope"); err != nil {
		t.Errorf("expected nil error deleting missing key, got %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	disk := NewDiskCache(dir, time.Hour)
	_ = disk.Set("k", []byte("v"), 0)

	mem := NewMemoryCache(time.Minute, time.Minute)
	lc := &LayeredCache{memory: mem, disk: disk}

	if v, ok := lc.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("expected disk hit, got %q %v", v, ok)
	}
	if _, ok := mem.Get("k"); !ok {
		t.Error("expected disk hit to be promoted to memory")
	}
}

func TestNew(t *testing.T) {
	if c := New(model.CacheConfig{Enabled: false}); c != nil {
		t.Error("expected nil cache when disabled")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute}).(*MemoryCache); !ok {
		t.Error("expected memory-only cache without disk dir")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute, DiskDir: t.TempDir(), DiskTTL: time.Hour}).(*LayeredCache); !ok {
		t.Error("expected layered cache with disk dir")
	}
}
