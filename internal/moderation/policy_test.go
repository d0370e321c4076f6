package moderation

import (
	"strings"
	"testing"
	"time"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name         string
		count        int
		wantKind     ActionKind
		wantDuration time.Duration
	}{
		{"first-strike-warn", 1, ActionWarn, 0},
		{"second-strike-final-warning", 2, ActionWarn, 0},
		{"third-strike-short-timeout", 3, ActionTimeout, 5 * time.Minute},
		{"fourth-strike-longer-timeout", 4, ActionTimeout, 30 * time.Minute},
		{"fifth-strike-day-timeout", 5, ActionTimeout, 24 * time.Hour},
		{"sixth-strike-kick", 6, ActionKick, 0},
		{"seventh-strike-ban", 7, ActionBan, 0},
		{"eighth-strike-still-ban", 8, ActionBan, 0},
		{"hundredth-strike-still-ban", 100, ActionBan, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.count, "spamming")
			if got.Kind != tt.wantKind {
				t.Errorf("kind: got %q, want %q", got.Kind, tt.wantKind)
			}
			if got.Duration != tt.wantDuration {
				t.Errorf("duration: got %v, want %v", got.Duration, tt.wantDuration)
			}
			if got.Notice == "" {
				t.Error("notice: empty")
			}
		})
	}
}

func TestDecideDeterministic(t *testing.T) {
	for count := 1; count <= 10; count++ {
		first := Decide(count, "inappropriate content")
		second := Decide(count, "inappropriate content")
		if first != second {
			t.Errorf("count %d: two calls disagree: %+v vs %+v", count, first, second)
		}
	}
}

func TestDecideSeverityNeverDecreases(t *testing.T) {
	rank := map[ActionKind]int{ActionWarn: 0, ActionTimeout: 1, ActionKick: 2, ActionBan: 3}

	prev := Decide(1, "spamming")
	for count := 2; count <= 12; count++ {
		cur := Decide(count, "spamming")
		if rank[cur.Kind] < rank[prev.Kind] {
			t.Errorf("count %d: severity dropped from %q to %q", count, prev.Kind, cur.Kind)
		}
		if cur.Kind == ActionTimeout && prev.Kind == ActionTimeout && cur.Duration < prev.Duration {
			t.Errorf("count %d: timeout shrank from %v to %v", count, prev.Duration, cur.Duration)
		}
		prev = cur
	}
}

func TestDecideNoticeMentionsReason(t *testing.T) {
	for count := 1; count <= 6; count++ {
		d := Decide(count, "spamming")
		if !strings.Contains(d.Notice, "spamming") {
			t.Errorf("count %d: notice %q does not mention the reason", count, d.Notice)
		}
	}
}
