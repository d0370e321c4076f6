package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sentinelbot/sentinel-backend/internal/moderation"
	"github.com/sentinelbot/sentinel-backend/internal/services"
)

// GetStrikes returns the live strike count for a user (read-only, for
// observability).
func GetStrikes(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "user_id is required"})
		return
	}

	count := strikes.Count(userID, time.Now().UTC())
	respondJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data: map[string]interface{}{
			"user_id":      userID,
			"strike_count": count,
		},
	})
}

// ClearStrikes resets a user's strike history. Privileged.
func ClearStrikes(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "user_id is required"})
		return
	}

	strikes.Clear(userID)
	respondJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Strike data cleared for " + userID})
}

// GetViolations lists the archived violation records, newest first.
func GetViolations(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	violations, err := services.GetViolations(r.Context(), r.URL.Query().Get("user_id"), limit)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Failed to load violations"})
		return
	}
	respondJSON(w, http.StatusOK, apiResponse{Success: true, Data: violations})
}

// GetModActions lists the action audit rows, newest first.
func GetModActions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	actions, err := services.GetModActions(r.Context(), r.URL.Query().Get("user_id"), limit)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Failed to load actions"})
		return
	}
	respondJSON(w, http.StatusOK, apiResponse{Success: true, Data: actions})
}

// GetRecentEvents returns the cached recent modlog lines for the dashboard's
// initial load.
func GetRecentEvents(w http.ResponseWriter, r *http.Request) {
	events, _ := services.GetRecentModEvents(r.Context())
	respondJSON(w, http.StatusOK, apiResponse{Success: true, Data: events})
}

// ManualActionRequest is a moderator-issued kick, ban or timeout.
type ManualActionRequest struct {
	UserID  string `json:"user_id"`
	Action  string `json:"action"` // "kick", "ban", "timeout"
	Minutes int    `json:"minutes,omitempty"`
	Reason  string `json:"reason"`
}

// TakeAction applies a manual moderation action outside the strike pipeline.
func TakeAction(w http.ResponseWriter, r *http.Request) {
	var req ManualActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if req.UserID == "" || req.Reason == "" {
		respondJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "user_id and reason are required"})
		return
	}

	var (
		err      error
		duration time.Duration
	)
	switch req.Action {
	case string(moderation.ActionKick):
		err = platformClient.KickMember(r.Context(), req.UserID, req.Reason)
	case string(moderation.ActionBan):
		err = platformClient.BanMember(r.Context(), req.UserID, req.Reason)
	case string(moderation.ActionTimeout):
		if req.Minutes <= 0 {
			respondJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "minutes must be positive for timeout"})
			return
		}
		duration = time.Duration(req.Minutes) * time.Minute
		err = platformClient.TimeoutMember(r.Context(), req.UserID, duration, req.Reason)
	default:
		respondJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "action must be kick, ban or timeout"})
		return
	}
	if err != nil {
		respondJSON(w, http.StatusBadGateway, apiResponse{Success: false, Message: fmt.Sprintf("Platform rejected %s: %v", req.Action, err)})
		return
	}

	adminID := adminIDFromRequest(r)
	services.RecordModAction(r.Context(), req.UserID, req.Action, duration, 0, req.Reason, adminID)
	respondJSON(w, http.StatusOK, apiResponse{Success: true, Message: fmt.Sprintf("Applied %s to %s", req.Action, req.UserID)})
}

func adminIDFromRequest(r *http.Request) string {
	token := extractBearerToken(r.Header.Get("Authorization"))
	id, ok, err := services.ValidateAdminSession(token)
	if err != nil || !ok {
		return "admin"
	}
	return id.String()
}
