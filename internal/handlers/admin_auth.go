package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sentinelbot/sentinel-backend/internal/services"
	"github.com/sentinelbot/sentinel-backend/pkg/utils"
)

// AdminSigninRequest represents the request to sign in to the dashboard.
// Admin accounts are created directly in the database; there is no signup.
type AdminSigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminSignin verifies the operator's credentials and issues a Redis-backed
// session token for the dashboard.
func AdminSignin(w http.ResponseWriter, r *http.Request) {
	var req AdminSigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if req.Username == "" || req.Password == "" {
		respondJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Username and password are required"})
		return
	}

	admin, err := services.GetAdminByUsername(r.Context(), req.Username)
	if err != nil {
		// Same response for unknown user and wrong password.
		respondJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	ok, err := utils.VerifyPassword(req.Password, admin.PasswordHash)
	if err != nil || !ok {
		respondJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	token, err := services.CreateAdminSession(admin.ID)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Failed to create session"})
		return
	}

	respondJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Signed in",
		Data: map[string]interface{}{
			"token":    token,
			"username": admin.Username,
		},
	})
}

// AdminSignout invalidates the caller's session token.
func AdminSignout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		respondJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Missing session token"})
		return
	}
	_ = services.InvalidateAdminSession(token)
	respondJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Signed out"})
}

// RequireAdmin wraps privileged endpoints with session-token auth.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r.Header.Get("Authorization"))
		_, ok, err := services.ValidateAdminSession(token)
		if err != nil || !ok {
			respondJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Message: "Invalid or expired session"})
			return
		}
		_ = services.RefreshAdminSession(token)
		next(w, r)
	}
}
