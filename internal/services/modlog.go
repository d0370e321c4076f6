package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sentinelbot/sentinel-backend/internal/database"
	"github.com/sentinelbot/sentinel-backend/internal/models"
	"github.com/sentinelbot/sentinel-backend/internal/platform"
)

const (
	modlogChannel         = "modlog:events"
	modlogRecentKey       = "modlog:recent"
	modlogRecentMaxLen    = 100
	modlogRecentTTL       = 24 * time.Hour
	modlogDeliveryTimeout = 3 * time.Second
)

// ModLog is the moderation log sink: one Record(text) operation. Each line is
// published on Redis for dashboard fan-out, cached for the initial dashboard
// load and, when a log channel is configured, posted to the platform. With
// nothing configured every step degrades to a no-op; recording never fails
// the pipeline.
type ModLog struct {
	Platform  platform.Client
	ChannelID string // empty disables the operator log channel
}

func (l *ModLog) Record(text string) {
	event := models.ModEvent{
		ID:        uuid.New().String(),
		Type:      "modlog",
		Text:      text,
		Timestamp: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), modlogDeliveryTimeout)
	defer cancel()

	if database.RedisClient != nil {
		data, err := json.Marshal(event)
		if err == nil {
			pipe := database.RedisClient.Pipeline()
			pipe.Publish(ctx, modlogChannel, data)
			pipe.LPush(ctx, modlogRecentKey, data)
			pipe.LTrim(ctx, modlogRecentKey, 0, modlogRecentMaxLen-1)
			pipe.Expire(ctx, modlogRecentKey, modlogRecentTTL)
			if _, err := pipe.Exec(ctx); err != nil {
				log.Printf("modlog: redis publish failed: %v", err)
			}
		}
	} else {
		// No Redis: still fan out to local dashboard connections.
		FanOutModEvent(event)
	}

	if l.ChannelID != "" && l.Platform != nil {
		if err := l.Platform.SendChannelMessage(ctx, l.ChannelID, text); err != nil {
			log.Printf("modlog: log channel send failed: %v", err)
		}
	}
}

// GetRecentModEvents returns the cached recent log lines, oldest first.
// Returns (nil, false) when Redis is unavailable or the cache is cold.
func GetRecentModEvents(ctx context.Context) ([]models.ModEvent, bool) {
	if database.RedisClient == nil {
		return nil, false
	}

	raw, err := database.RedisClient.LRange(ctx, modlogRecentKey, 0, -1).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}

	events := make([]models.ModEvent, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- { // stored newest-first
		var evt models.ModEvent
		if err := json.Unmarshal([]byte(raw[i]), &evt); err != nil {
			continue
		}
		events = append(events, evt)
	}
	return events, true
}
