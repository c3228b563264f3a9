package observability

import (
	"context"
	"sync"
	"time"
)

// Stats is a snapshot of Counters.
type Stats struct {
	Conversions   int            `json:"conversions"`
	Failures      int            `json:"failures"`
	BytesWritten  int            `json:"bytes_written"`
	TotalDuration time.Duration  `json:"total_duration_ns"`
	ByFormat      map[string]int `json:"by_format"`
	CacheHits     int            `json:"cache_hits"`
	CacheMisses   int            `json:"cache_misses"`
	CacheSets     int            `json:"cache_sets"`
}

// Counters is an in-memory ConvertHooks and CacheHooks implementation.
// It is safe for concurrent use.
type Counters struct {
	mu sync.Mutex
	s  Stats
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters {
	return &Counters{s: Stats{ByFormat: make(map[string]int)}}
}

func (c *Counters) OnConvertStart(context.Context, string, string) {}

func (c *Counters) OnConvertComplete(_ context.Context, format, _ string, size int, d time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Conversions++
	c.s.TotalDuration += d
	c.s.ByFormat[format]++
	if err != nil {
		c.s.Failures++
		return
	}
	c.s.BytesWritten += size
}

func (c *Counters) OnCacheHit(context.Context, string) {
	c.mu.Lock()
	c.s.CacheHits++
	c.mu.Unlock()
}

func (c *Counters) OnCacheMiss(context.Context, string) {
	c.mu.Lock()
	c.s.CacheMisses++
	c.mu.Unlock()
}

func (c *Counters) OnCacheSet(context.Context, string, int) {
	c.mu.Lock()
	c.s.CacheSets++
	c.mu.Unlock()
}

// Snapshot returns a copy of the current counts.
func (c *Counters) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.s
	s.ByFormat = make(map[string]int, len(c.s.ByFormat))
	for k, v := range c.s.ByFormat {
		s.ByFormat[k] = v
	}
	return s
}

var (
	_ ConvertHooks = (*Counters)(nil)
	_ CacheHooks   = (*Counters)(nil)
)
