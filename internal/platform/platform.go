// Package platform wraps the chat platform's REST API. The moderation core
// depends only on the Client interface, never on gateway or connection
// management concerns.
package platform

import (
	"context"
	"fmt"
	"time"
)

// Client is the capability surface the moderation core needs from the
// platform. All side effects are externally visible.
type Client interface {
	TimeoutMember(ctx context.Context, userID string, d time.Duration, reason string) error
	KickMember(ctx context.Context, userID, reason string) error
	BanMember(ctx context.Context, userID, reason string) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	SendDirectMessage(ctx context.Context, userID, text string) error
	SendChannelMessage(ctx context.Context, channelID, text string) error
}

// APIError is a platform rejection (e.g. insufficient permission). It is
// logged and optionally surfaced to the operator channel, never retried here.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform: status %d: %s", e.Status, e.Body)
}
