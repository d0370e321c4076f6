package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sentinelbot/sentinel-backend/internal/models"
)

var gatewayUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The gateway relay is a trusted server-to-server peer authenticated
		// by token; origin checks do not apply.
		return true
	},
}

// GatewayEvent is one frame from the platform relay.
type GatewayEvent struct {
	Type    string         `json:"type"` // "message", "ping"
	Message models.Message `json:"message,omitempty"`
}

// GatewayWebSocket is the inbound message feed. The platform relay connects
// with the shared gateway token and streams message events; each one is run
// through the moderation pipeline. Messages that pass moderation and mention
// the bot get a chatbot reply.
func GatewayWebSocket(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(gatewayToken)) != 1 {
		http.Error(w, "invalid gateway token", http.StatusUnauthorized)
		return
	}

	conn, err := gatewayUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	log.Println("gateway: relay connected")
	defer log.Println("gateway: relay disconnected")

	conn.SetReadLimit(64 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))

		var evt GatewayEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			continue
		}
		if evt.Type != "message" {
			continue
		}

		// Each message runs on its own goroutine so a slow oracle call never
		// stalls the feed. Per-user state stays consistent inside the stores.
		go handleInbound(evt.Message)
	}
}

func handleInbound(msg models.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	outcome := pipeline.Process(ctx, msg)
	if !outcome.EligibleForReply {
		return
	}

	// Chatbot tail: reply when the bot is mentioned.
	if !msg.Mentioned(botUserID) {
		return
	}
	reply := bot.AppendAndGenerate(ctx, msg.AuthorID, msg.Content)
	if err := platformClient.SendChannelMessage(ctx, msg.ChannelID, reply); err != nil {
		log.Printf("gateway: reply to channel %s failed: %v", msg.ChannelID, err)
	}
}
