// Package metrics tracks request traffic with a sliding top-k sketch.
// The sketch keeps approximate hit counts for the most requested paths
// in bounded memory; the admin metrics endpoint reads snapshots from it.
package metrics

import (
	"sync"
	"time"

	"github.com/keilerkonzept/topk/sliding"
)

const (
	// window segments in the sliding sketch; older segments age out as
	// ticks advance.
	windowSegments = 10

	sketchWidth = 1024
	sketchDepth = 3

	// defaultTickSize is how many observations advance the window by
	// one segment.
	defaultTickSize = 1000
)

// PathCount is one entry of a snapshot.
type PathCount struct {
	Path  string `json:"path"`
	Count uint64 `json:"count"`
}

// Snapshot is a point-in-time view of the tracked traffic.
type Snapshot struct {
	TotalRequests uint64      `json:"total_requests"`
	Since         time.Time   `json:"since"`
	TopPaths      []PathCount `json:"top_paths"`
}

// Sketch provides thread-safe access to a sliding top-k sketch plus an
// exact total counter.
type Sketch struct {
	mu       sync.Mutex
	sketch   *sliding.Sketch
	tickSize uint64
	tickReq  uint64
	total    uint64
	since    time.Time
}

// New creates a sketch tracking the k most requested paths. tickSize
// controls how often the sliding window advances; zero selects a
// default.
func New(k int, tickSize uint64) *Sketch {
	if k <= 0 {
		k = 10
	}
	if tickSize == 0 {
		tickSize = defaultTickSize
	}

	return &Sketch{
		sketch:   sliding.New(k, windowSegments, sliding.WithWidth(sketchWidth), sliding.WithDepth(sketchDepth)),
		tickSize: tickSize,
		since:    time.Now(),
	}
}

// Observe records one request for a path.
func (s *Sketch) Observe(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sketch.Incr(path)
	s.total++
	s.tickReq++

	if s.tickReq >= s.tickSize {
		s.sketch.Tick()
		s.tickReq = 0
	}
}

// Snapshot returns the current totals and the top paths in descending
// count order.
func (s *Sketch) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.sketch.SortedSlice()
	top := make([]PathCount, 0, len(items))
	for _, item := range items {
		top = append(top, PathCount{Path: item.Item, Count: uint64(item.Count)})
	}

	return Snapshot{
		TotalRequests: s.total,
		Since:         s.since,
		TopPaths:      top,
	}
}
