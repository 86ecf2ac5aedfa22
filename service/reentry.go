package service

import (
	"fmt"
	"sync"
)

// treasuryLockKey guards treasury withdrawals, which are not tied to a
// raffle. Raffle identifiers start at 1, so 0 is free.
const treasuryLockKey int64 = 0

// ReentryGuard hands out per-raffle lock tokens. Any operation that can
// reach the asset gateway acquires the token first and releases it on
// every exit path; a second acquire while the token is held fails instead
// of blocking, mirroring nested-call reentry rather than thread contention.
type ReentryGuard struct {
	mu   sync.Mutex
	held map[int64]bool
}

// NewReentryGuard creates an empty guard
func NewReentryGuard() *ReentryGuard {
	return &ReentryGuard{held: make(map[int64]bool)}
}

// Acquire takes the lock token for a raffle, failing with ErrReentrantCall
// if it is already held
func (g *ReentryGuard) Acquire(raffleID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held[raffleID] {
		return fmt.Errorf("%w: raffle %d is mid-operation", ErrReentrantCall, raffleID)
	}
	g.held[raffleID] = true
	return nil
}

// Release returns the lock token. Safe to call from a deferred statement
// regardless of how the operation exited.
func (g *ReentryGuard) Release(raffleID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, raffleID)
}
