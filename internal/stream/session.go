// Package stream coordinates real-time frame processing per connected device:
// session lifecycle, frame-rate admission, concurrent dispatch, and result
// publication to subscribers.
package stream

import (
	"sync"
	"time"

	"github.com/facemoji/facemoji/internal/domain"
)

// Subscriber receives events for a device. Publish must not block.
type Subscriber interface {
	Publish(event Event)
}

// SessionStats is a snapshot of a session's mutable counters.
type SessionStats struct {
	FrameCount     uint64
	LastExpression domain.Expression
	LastFrameAt    time.Time
	Subscribers    int
}

// DeviceSession is the live state for one device identifier. All fields are
// guarded by mu; frame completions race, so expression updates carry the
// admission sequence number and only a newer sequence wins.
type DeviceSession struct {
	deviceID string

	mu             sync.Mutex
	subscribers    map[Subscriber]struct{}
	lastFrameAt    time.Time
	frameCount     uint64
	lastExpression domain.Expression
	nextSeq        uint64
	resultSeq      uint64
	closed         bool
}

func newDeviceSession(deviceID string) *DeviceSession {
	return &DeviceSession{
		deviceID:    deviceID,
		subscribers: make(map[Subscriber]struct{}),
	}
}

// admit applies the frame-rate rule. An accepted frame advances the counters
// and gets a sequence number; a frame inside the minimum interval is rejected.
func (s *DeviceSession) admit(now time.Time, minInterval time.Duration) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, false
	}
	if !s.lastFrameAt.IsZero() && now.Sub(s.lastFrameAt) < minInterval {
		return 0, false
	}

	s.lastFrameAt = now
	s.frameCount++
	s.nextSeq++
	return s.nextSeq, true
}

// recordResult stores the expression of a completed frame. Completions are
// unordered; a stale sequence never overwrites a newer expression.
func (s *DeviceSession) recordResult(seq uint64, expr domain.Expression) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || seq < s.resultSeq {
		return
	}
	s.resultSeq = seq
	s.lastExpression = expr
}

// publish fans the event out to current subscribers. After close it is a no-op,
// so in-flight frame completions for a destroyed session go nowhere.
func (s *DeviceSession) publish(event Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	subs := make([]Subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Publish(event)
	}
}

func (s *DeviceSession) subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[sub] = struct{}{}
}

// unsubscribe removes sub and reports whether the session is now empty.
func (s *DeviceSession) unsubscribe(sub Subscriber) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, sub)
	return len(s.subscribers) == 0
}

func (s *DeviceSession) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subscribers = make(map[Subscriber]struct{})
}

// Stats returns a consistent snapshot of the session counters.
func (s *DeviceSession) Stats() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionStats{
		FrameCount:     s.frameCount,
		LastExpression: s.lastExpression,
		LastFrameAt:    s.lastFrameAt,
		Subscribers:    len(s.subscribers),
	}
}
