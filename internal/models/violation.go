package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ViolationType string

const (
	ViolationTypeSpam    ViolationType = "spamming"
	ViolationTypeContent ViolationType = "inappropriate content"
)

// Violation is the durable audit record of a single strike. The live
// escalation state lives in memory; these documents are write-through
// observability only and are never read back into the strike tracker.
type Violation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	UserID    string        `bson:"user_id" json:"user_id"`
	ChannelID string        `bson:"channel_id,omitempty" json:"channel_id,omitempty"`
	MessageID string        `bson:"message_id,omitempty" json:"message_id,omitempty"`
	Type      ViolationType `bson:"type" json:"type"`
	Message   string        `bson:"message" json:"message"`

	StrikeCount int    `bson:"strike_count" json:"strike_count"`
	ActionTaken string `bson:"action_taken" json:"action_taken"` // "warn", "timeout", "kick", "ban"
}

// ModEvent is the payload published on Redis and streamed to dashboard
// WebSocket clients for each moderation log line.
type ModEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
