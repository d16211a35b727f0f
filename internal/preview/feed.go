// Package preview holds the latest encoded frames of each preview feed and
// lets any number of stream readers wait for the next one.
package preview

import (
	"context"
	"sync"
)

// Feed names.
const (
	Camera = "camera"
	Slides = "slides"
)

// Feed keeps the most recent JPEG frame. Publishing never blocks on readers.
type Feed struct {
	mu    sync.Mutex
	frame []byte
	seq   uint64
	ready chan struct{}
}

// NewFeed returns an empty feed.
func NewFeed() *Feed {
	return &Feed{ready: make(chan struct{})}
}

// Publish replaces the current frame and wakes waiting readers. The feed
// takes ownership of jpg.
func (f *Feed) Publish(jpg []byte) {
	f.mu.Lock()
	f.frame = jpg
	f.seq++
	close(f.ready)
	f.ready = make(chan struct{})
	f.mu.Unlock()
}

// Latest returns the current frame and its sequence number. Seq 0 means
// nothing was published yet.
func (f *Feed) Latest() ([]byte, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame, f.seq
}

// Next blocks until a frame newer than after is published or ctx ends.
func (f *Feed) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		f.mu.Lock()
		if f.seq > after {
			frame, seq := f.frame, f.seq
			f.mu.Unlock()
			return frame, seq, nil
		}
		ready := f.ready
		f.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			return nil, after, ctx.Err()
		}
	}
}

// Set is the collection of named feeds served over HTTP.
type Set struct {
	mu    sync.RWMutex
	feeds map[string]*Feed
}

// NewSet returns a Set with the camera and slides feeds.
func NewSet() *Set {
	return &Set{feeds: map[string]*Feed{
		Camera: NewFeed(),
		Slides: NewFeed(),
	}}
}

// Get returns the named feed.
func (s *Set) Get(name string) (*Feed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.feeds[name]
	return f, ok
}

// Publish publishes jpg on the named feed, if it exists.
func (s *Set) Publish(name string, jpg []byte) {
	if f, ok := s.Get(name); ok {
		f.Publish(jpg)
	}
}
