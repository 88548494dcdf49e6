// Package guard implements the brute-force lockout in front of admin
// login. Failed attempts are tracked per client identity; reaching the
// threshold locks the identity out for a fixed window.
package guard

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// Status is the verdict for one client identity.
type Status struct {
	Allowed   bool
	Remaining time.Duration // > 0 only when locked
}

// LockoutGuard tracks failed admin login attempts per client identity.
//
// The state machine per identity: unlocked(count) → locked(until) when
// count reaches the threshold; a locked record is discarded (not reset)
// once the window elapses, so counting restarts from zero.
type LockoutGuard interface {
	// Check reports whether the identity may attempt a login. An expired
	// lock is discarded on the way through.
	Check(ctx context.Context, id string) (Status, error)
	// RecordFailure counts one failed attempt and locks the identity when
	// the threshold is reached.
	RecordFailure(ctx context.Context, id string) error
	// RecordSuccess discards the identity's record unconditionally.
	RecordSuccess(ctx context.Context, id string) error
}

// Identity derives the lockout key from the client network address and
// user agent. The tuple is hashed so raw addresses never sit in the store.
func Identity(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + ":" + userAgent))
	return fmt.Sprintf("%x", sum)
}

type record struct {
	count       int
	lockedUntil time.Time
}

// MemoryGuard is the process-local LockoutGuard: a mutex-protected map of
// identity → record. Key cardinality is unbounded; Sweep exists for the
// host process to evict expired locks periodically.
type MemoryGuard struct {
	mu        sync.Mutex
	records   map[string]*record
	threshold int
	duration  time.Duration
	now       func() time.Time
}

func NewMemoryGuard(threshold int, duration time.Duration) *MemoryGuard {
	if threshold < 1 {
		threshold = 1
	}
	return &MemoryGuard{
		records:   make(map[string]*record),
		threshold: threshold,
		duration:  duration,
		now:       time.Now,
	}
}

func (g *MemoryGuard) Check(_ context.Context, id string) (Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[id]
	if !ok {
		return Status{Allowed: true}, nil
	}
	if rec.lockedUntil.IsZero() {
		return Status{Allowed: true}, nil
	}

	remaining := rec.lockedUntil.Sub(g.now())
	if remaining > 0 {
		return Status{Remaining: remaining}, nil
	}

	// lock expired: discard the record so counting restarts from zero
	delete(g.records, id)
	return Status{Allowed: true}, nil
}

func (g *MemoryGuard) RecordFailure(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[id]
	if !ok {
		rec = &record{}
		g.records[id] = rec
	}
	rec.count++
	if rec.count >= g.threshold {
		rec.lockedUntil = g.now().Add(g.duration)
		rec.count = 0
	}
	return nil
}

func (g *MemoryGuard) RecordSuccess(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.records, id)
	return nil
}

// Sweep evicts records whose lock window has elapsed and returns how many
// were removed.
func (g *MemoryGuard) Sweep() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	removed := 0
	for id, rec := range g.records {
		if !rec.lockedUntil.IsZero() && !rec.lockedUntil.After(now) {
			delete(g.records, id)
			removed++
		}
	}
	return removed
}
