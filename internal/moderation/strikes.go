package moderation

import (
	"sync"
	"time"
)

// StrikeTracker owns per-user violation history inside a rolling window.
// Nothing else reads or writes the records; access goes through
// RecordViolation, Count and Clear only.
//
// Records never expire on their own. Entries older than the window are
// pruned lazily on the next access, so a user who reoffends after the window
// has fully passed starts over at a count of 1.
type StrikeTracker struct {
	window time.Duration

	mu      sync.Mutex
	records map[string]*strikeRecord
}

type strikeRecord struct {
	mu    sync.Mutex
	times []time.Time
}

func NewStrikeTracker(window time.Duration) *StrikeTracker {
	return &StrikeTracker{
		window:  window,
		records: make(map[string]*strikeRecord),
	}
}

// record returns the per-user record, creating it on first use. The record's
// own mutex serializes the read-modify-write for one user while leaving other
// users fully parallel.
func (t *StrikeTracker) record(userID string) *strikeRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[userID]
	if !ok {
		rec = &strikeRecord{}
		t.records[userID] = rec
	}
	return rec
}

// RecordViolation prunes expired entries, appends now and returns the new
// strike count. This is the atomic unit of the escalation system: the
// returned count is a consistent read of the just-updated record, so two
// near-simultaneous violations from one user can never both observe the same
// count.
func (t *StrikeTracker) RecordViolation(userID string, now time.Time) int {
	rec := t.record(userID)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.times = pruneBefore(rec.times, now.Add(-t.window))
	rec.times = append(rec.times, now)
	return len(rec.times)
}

// Count returns the user's current strike count without recording anything.
// Expired entries are pruned first, so reading twice in succession yields the
// same count.
func (t *StrikeTracker) Count(userID string, now time.Time) int {
	rec := t.record(userID)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.times = pruneBefore(rec.times, now.Add(-t.window))
	return len(rec.times)
}

// Clear resets a user's record to empty. Callers must restrict this to
// elevated-privilege operations.
func (t *StrikeTracker) Clear(userID string) {
	t.mu.Lock()
	rec, ok := t.records[userID]
	t.mu.Unlock()
	if !ok {
		return
	}
	rec.mu.Lock()
	rec.times = nil
	rec.mu.Unlock()
}

func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	kept := times[:0]
	for _, ts := range times {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
