package moderation

import (
	"fmt"
	"time"
)

// ActionKind is the punitive action class for an escalation tier.
type ActionKind string

const (
	ActionWarn    ActionKind = "warn"
	ActionTimeout ActionKind = "timeout"
	ActionKick    ActionKind = "kick"
	ActionBan     ActionKind = "ban"
)

// Decision is what the escalation policy chose for a strike count: the
// action, its duration when it is a timeout, and the notice sent to the user.
type Decision struct {
	Kind     ActionKind
	Duration time.Duration
	Notice   string
}

// Decide maps a strike count to its punitive action. Pure and total over
// counts >= 1: same count, same reason, same decision, every time. Severity
// never decreases with count, and everything from the seventh strike up is a
// ban (saturating, not wrapping).
func Decide(count int, reason string) Decision {
	switch {
	case count <= 1:
		return Decision{
			Kind:   ActionWarn,
			Notice: fmt.Sprintf("Strike 1 - You violated server rules (%s). Please keep the community safe and friendly.", reason),
		}
	case count == 2:
		return Decision{
			Kind:   ActionWarn,
			Notice: fmt.Sprintf("Strike 2 - Continued rule breaking (%s). Final warning before punishments.", reason),
		}
	case count == 3:
		return Decision{
			Kind:     ActionTimeout,
			Duration: 5 * time.Minute,
			Notice:   fmt.Sprintf("Strike 3 - You've been timed out for 5 minutes for %s.", reason),
		}
	case count == 4:
		return Decision{
			Kind:     ActionTimeout,
			Duration: 30 * time.Minute,
			Notice:   fmt.Sprintf("Strike 4 - Timed out 30 minutes for %s.", reason),
		}
	case count == 5:
		return Decision{
			Kind:     ActionTimeout,
			Duration: 24 * time.Hour,
			Notice:   fmt.Sprintf("Strike 5 - Timed out 24 hours for %s.", reason),
		}
	case count == 6:
		return Decision{
			Kind:   ActionKick,
			Notice: fmt.Sprintf("Strike 6 - You were kicked for repeated %s.", reason),
		}
	default:
		return Decision{
			Kind:   ActionBan,
			Notice: "Strike 7 - You were banned for continuous infractions.",
		}
	}
}
