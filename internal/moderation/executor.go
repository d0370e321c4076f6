package moderation

import (
	"context"
	"fmt"
	"log"

	"github.com/sentinelbot/sentinel-backend/internal/platform"
)

// Executor applies a policy decision through the platform API. The platform
// mutation always happens before the user notice, so a notice never
// describes an action that failed. The notice itself is best-effort: users
// can block DMs, and a delivery failure never rolls back the action.
type Executor struct {
	Platform      platform.Client
	LogDMFailures bool
}

// Apply carries out the decision against the target user. The returned error
// is the platform rejection, if any; DM failures are swallowed.
func (e *Executor) Apply(ctx context.Context, d Decision, userID, reason string) error {
	var err error
	switch d.Kind {
	case ActionWarn:
		// Nothing to mutate on the platform, only the notice below.
	case ActionTimeout:
		err = e.Platform.TimeoutMember(ctx, userID, d.Duration, reason)
	case ActionKick:
		err = e.Platform.KickMember(ctx, userID, reason)
	case ActionBan:
		err = e.Platform.BanMember(ctx, userID, reason)
	default:
		return fmt.Errorf("moderation: unknown action %q", d.Kind)
	}
	if err != nil {
		// Skip the notice rather than describe an action that did not happen.
		return err
	}

	if dmErr := e.Platform.SendDirectMessage(ctx, userID, d.Notice); dmErr != nil {
		if e.LogDMFailures {
			log.Printf("moderation: DM to %s failed: %v", userID, dmErr)
		}
	}
	return nil
}
