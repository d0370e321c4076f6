package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/sentinelbot/sentinel-backend/internal/models"
)

// IngestMessage is the HTTP alternative to the gateway feed, for relays that
// cannot hold a WebSocket open. Processes one message synchronously and
// returns the moderation outcome.
func IngestMessage(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if subtle.ConstantTimeCompare([]byte(token), []byte(gatewayToken)) != 1 {
		respondJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Message: "Invalid gateway token"})
		return
	}

	var msg models.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		respondJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if msg.AuthorID == "" {
		respondJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "author_id is required"})
		return
	}

	outcome := pipeline.Process(r.Context(), msg)
	respondJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data: map[string]interface{}{
			"ignored":      outcome.Ignored,
			"violation":    outcome.Violation,
			"strike_count": outcome.StrikeCount,
			"action":       outcome.Action,
		},
	})
}
