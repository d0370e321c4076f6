package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sentinelbot/sentinel-backend/internal/database"
	"github.com/sentinelbot/sentinel-backend/internal/models"
)

// modlogHub is a registry of dashboard subscribers fed by the Redis
// subscriber (or directly by Record when Redis is absent).
type modlogHub struct {
	mu          sync.RWMutex
	subscribers map[string]chan models.ModEvent
}

var (
	hub          = &modlogHub{subscribers: make(map[string]chan models.ModEvent)}
	redisStarted sync.Once
)

// SubscribeModEvents registers a dashboard listener. The returned function
// unsubscribes and closes the channel; slow listeners drop events rather
// than block the hub.
func SubscribeModEvents() (<-chan models.ModEvent, func()) {
	id := uuid.New().String()
	ch := make(chan models.ModEvent, 32)

	hub.mu.Lock()
	hub.subscribers[id] = ch
	hub.mu.Unlock()

	unsubscribe := func() {
		hub.mu.Lock()
		if existing, ok := hub.subscribers[id]; ok {
			delete(hub.subscribers, id)
			close(existing)
		}
		hub.mu.Unlock()
	}
	return ch, unsubscribe
}

// FanOutModEvent delivers an event to all local dashboard connections.
func FanOutModEvent(event models.ModEvent) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for _, ch := range hub.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// StartModlogSubscriber ensures a single shared Redis listener per instance.
func StartModlogSubscriber(ctx context.Context) {
	redisStarted.Do(func() {
		go runModlogSubscriber(ctx)
	})
}

func runModlogSubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		log.Println("Redis client not initialized; modlog subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.Subscribe(ctx, modlogChannel)
			defer pubsub.Close()

			log.Println("✅ Modlog Redis subscriber started (channel: " + modlogChannel + ")")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event models.ModEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal modlog event: %v", err)
					continue
				}

				FanOutModEvent(event)
			}
		}()
	}
}
