package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin is a dashboard operator account (PostgreSQL admins table).
// Accounts are created directly in the database; there is no signup endpoint.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
}

// ModAction is one row of the mod_actions audit table (PostgreSQL).
type ModAction struct {
	ID              uuid.UUID `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UserID          string    `json:"user_id"`
	Action          string    `json:"action"`
	DurationSeconds int       `json:"duration_seconds"` // 0 for warn, kick, ban
	StrikeCount     int       `json:"strike_count"`
	Reason          string    `json:"reason"`
	IssuedBy        string    `json:"issued_by"` // "pipeline" or an admin ID
}
