package moderation

import (
	"sync"
	"time"
)

// SpamDetector flags burst posting with a short sliding window of message
// arrival times per user. The timestamps live in a side table owned here,
// keyed by stable user ID, never attached to platform objects.
type SpamDetector struct {
	window    time.Duration
	threshold int

	mu        sync.Mutex
	recent    map[string][]time.Time
	lastSweep time.Time
}

func NewSpamDetector(window time.Duration, threshold int) *SpamDetector {
	return &SpamDetector{
		window:    window,
		threshold: threshold,
		recent:    make(map[string][]time.Time),
	}
}

// Observe records one message arrival and reports whether the user has now
// posted threshold-or-more messages inside the window. Call exactly once per
// inbound message, before any classifier call. Safe for concurrent use; calls
// for the same user are serialized.
func (d *SpamDetector) Observe(userID string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	stamps := d.recent[userID]
	kept := stamps[:0]
	for _, t := range stamps {
		if now.Sub(t) < d.window {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	d.recent[userID] = kept

	d.sweepLocked(now)

	return len(kept) >= d.threshold
}

// sweepLocked drops users whose whole window has expired so the table does
// not grow with every user ever seen. Piggybacks on Observe; there is no
// background goroutine.
func (d *SpamDetector) sweepLocked(now time.Time) {
	if now.Sub(d.lastSweep) < 10*d.window {
		return
	}
	d.lastSweep = now
	for id, stamps := range d.recent {
		if len(stamps) == 0 || now.Sub(stamps[len(stamps)-1]) >= d.window {
			delete(d.recent, id)
		}
	}
}
