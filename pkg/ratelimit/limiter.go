// Package ratelimit paces requests against the datafeed portal so a sync run
// with many report files stays well under the portal's tolerance.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter blocks until the next request may be sent.
type Limiter interface {
	Wait()
}

// Pacer spaces requests at a fixed minimum interval. The portal client issues
// requests serially, so even spacing is equivalent to a requests-per-window
// budget without burst bookkeeping.
type Pacer struct {
	interval time.Duration
	mu       sync.Mutex
	next     time.Time
}

// NewPacer creates a limiter enforcing the given minimum interval between
// requests. A non-positive interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// NewPerMinute creates a limiter allowing at most n requests per minute.
func NewPerMinute(n int) *Pacer {
	if n <= 0 {
		return NewPacer(0)
	}
	return NewPacer(time.Minute / time.Duration(n))
}

// Wait blocks until this request's slot arrives.
func (p *Pacer) Wait() {
	if p.interval <= 0 {
		return
	}

	p.mu.Lock()
	now := time.Now()
	if p.next.Before(now) {
		p.next = now
	}
	slot := p.next
	p.next = slot.Add(p.interval)
	p.mu.Unlock()

	if d := time.Until(slot); d > 0 {
		time.Sleep(d)
	}
}
