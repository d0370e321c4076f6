package moderation

import (
	"sync"
	"testing"
	"time"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestRecordViolationSequence(t *testing.T) {
	tracker := NewStrikeTracker(7 * 24 * time.Hour)

	for i := 0; i < 5; i++ {
		now := base.Add(time.Duration(i) * time.Hour)
		if got := tracker.RecordViolation("u1", now); got != i+1 {
			t.Fatalf("violation %d: count = %d, want %d", i+1, got, i+1)
		}
	}
}

func TestRecordViolationWindowReset(t *testing.T) {
	window := 7 * 24 * time.Hour
	tracker := NewStrikeTracker(window)

	tracker.RecordViolation("u1", base)
	tracker.RecordViolation("u1", base.Add(time.Hour))

	// A reoffense after the whole window has passed starts over at 1.
	if got := tracker.RecordViolation("u1", base.Add(8*24*time.Hour)); got != 1 {
		t.Errorf("count after 8 day gap = %d, want 1", got)
	}
}

func TestRecordViolationPartialPrune(t *testing.T) {
	window := 7 * 24 * time.Hour
	tracker := NewStrikeTracker(window)

	tracker.RecordViolation("u1", base)                      // expires by day 8
	tracker.RecordViolation("u1", base.Add(5*24*time.Hour))  // still live on day 8

	if got := tracker.RecordViolation("u1", base.Add(8*24*time.Hour)); got != 2 {
		t.Errorf("count = %d, want 2 (one pruned, one kept, one new)", got)
	}
}

func TestRecordViolationWindowBoundary(t *testing.T) {
	window := 7 * 24 * time.Hour
	tracker := NewStrikeTracker(window)

	tracker.RecordViolation("u1", base)

	// Exactly window old counts as expired: now - t >= window prunes.
	if got := tracker.RecordViolation("u1", base.Add(window)); got != 1 {
		t.Errorf("count at exact window boundary = %d, want 1", got)
	}
}

func TestCountIdempotent(t *testing.T) {
	tracker := NewStrikeTracker(7 * 24 * time.Hour)
	tracker.RecordViolation("u1", base)
	tracker.RecordViolation("u1", base.Add(time.Minute))

	now := base.Add(time.Hour)
	first := tracker.Count("u1", now)
	second := tracker.Count("u1", now)
	if first != 2 || second != 2 {
		t.Errorf("reads = %d, %d, want 2, 2", first, second)
	}
}

func TestCountUnknownUser(t *testing.T) {
	tracker := NewStrikeTracker(7 * 24 * time.Hour)
	if got := tracker.Count("nobody", base); got != 0 {
		t.Errorf("count = %d, want 0", got)
	}
}

func TestClearResetsHistory(t *testing.T) {
	tracker := NewStrikeTracker(7 * 24 * time.Hour)
	for i := 0; i < 4; i++ {
		tracker.RecordViolation("u1", base.Add(time.Duration(i)*time.Minute))
	}

	tracker.Clear("u1")

	if got := tracker.Count("u1", base.Add(time.Hour)); got != 0 {
		t.Fatalf("count after clear = %d, want 0", got)
	}
	// The next violation is a fresh count of 1, not a continuation.
	if got := tracker.RecordViolation("u1", base.Add(time.Hour)); got != 1 {
		t.Errorf("count after clear + violation = %d, want 1", got)
	}
}

func TestClearUnknownUserIsNoop(t *testing.T) {
	tracker := NewStrikeTracker(7 * 24 * time.Hour)
	tracker.Clear("nobody") // must not panic
}

func TestRecordViolationConcurrentSameUser(t *testing.T) {
	tracker := NewStrikeTracker(7 * 24 * time.Hour)

	const n = 100
	counts := make([]int, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			counts[i] = tracker.RecordViolation("u1", base.Add(time.Duration(i)*time.Millisecond))
		}(i)
	}
	wg.Wait()

	// No lost updates: every count 1..n is returned exactly once.
	seen := make(map[int]bool, n)
	for _, c := range counts {
		if c < 1 || c > n {
			t.Fatalf("count %d out of range", c)
		}
		if seen[c] {
			t.Fatalf("count %d returned twice (lost update)", c)
		}
		seen[c] = true
	}
}

func TestRecordViolationConcurrentDistinctUsers(t *testing.T) {
	tracker := NewStrikeTracker(7 * 24 * time.Hour)

	var wg sync.WaitGroup
	users := []string{"a", "b", "c", "d"}
	for _, u := range users {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				tracker.RecordViolation(u, base.Add(time.Duration(i)*time.Second))
			}
		}(u)
	}
	wg.Wait()

	for _, u := range users {
		if got := tracker.Count(u, base.Add(time.Hour)); got != 50 {
			t.Errorf("user %s: count = %d, want 50", u, got)
		}
	}
}
