package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Convert hooks
	p := NoopConvertHooks{}
	p.OnConvertStart(ctx, "dtx", "twill.dtx")
	p.OnConvertComplete(ctx, "dtx", "twill.dtx", 1024, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "wif")
	c.OnCacheMiss(ctx, "wif")
	c.OnCacheSet(ctx, "wif", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Convert().(NoopConvertHooks); !ok {
		t.Error("Convert() should return NoopConvertHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	// Set custom hooks
	customConvert := &testConvertHooks{}
	SetConvertHooks(customConvert)
	if Convert() != customConvert {
		t.Error("SetConvertHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Convert().(NoopConvertHooks); !ok {
		t.Error("Reset() should restore NoopConvertHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testConvertHooks{}
	SetConvertHooks(custom)

	// Setting nil should be ignored
	SetConvertHooks(nil)

	if Convert() != custom {
		t.Error("SetConvertHooks(nil) should be ignored")
	}

	Reset()
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	c := NewCounters()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			if i%5 == 0 {
				err = errors.New("bad palette")
			}
			c.OnConvertComplete(ctx, "dtx", "f", 100, time.Millisecond, err)
		}()
	}
	wg.Wait()
	c.OnConvertComplete(ctx, "wpo", "g", 50, time.Millisecond, nil)
	c.OnCacheHit(ctx, "wif")
	c.OnCacheMiss(ctx, "wif")
	c.OnCacheMiss(ctx, "wif")
	c.OnCacheSet(ctx, "wif", 10)

	s := c.Snapshot()
	if s.Conversions != 11 || s.Failures != 2 {
		t.Errorf("conversions/failures = %d/%d, want 11/2", s.Conversions, s.Failures)
	}
	if s.BytesWritten != 850 {
		t.Errorf("BytesWritten = %d, want 850", s.BytesWritten)
	}
	if s.ByFormat["dtx"] != 10 || s.ByFormat["wpo"] != 1 {
		t.Errorf("ByFormat = %v", s.ByFormat)
	}
	if s.CacheHits != 1 || s.CacheMisses != 2 || s.CacheSets != 1 {
		t.Errorf("cache counts = %d/%d/%d", s.CacheHits, s.CacheMisses, s.CacheSets)
	}

	// Snapshots are copies.
	s.ByFormat["dtx"] = 0
	if c.Snapshot().ByFormat["dtx"] != 10 {
		t.Error("Snapshot should not share the format map")
	}
}

// Test implementations
type testConvertHooks struct{ NoopConvertHooks }
type testCacheHooks struct{ NoopCacheHooks }
