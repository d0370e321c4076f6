package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sentinelbot/sentinel-backend/internal/database"
	"github.com/sentinelbot/sentinel-backend/internal/models"
)

// ErrAdminNotFound is returned when no active admin matches the username.
var ErrAdminNotFound = errors.New("admin not found")

// GetAdminByUsername loads an active admin account from PostgreSQL.
func GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var admin models.Admin
	err := database.PostgresDB.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at, username, password_hash, is_active
		 FROM admins WHERE LOWER(username) = LOWER($1) AND is_active = TRUE`,
		username,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt, &admin.Username, &admin.PasswordHash, &admin.IsActive)
	if err == sql.ErrNoRows {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// GetModActions lists recent rows from the mod_actions audit table, newest
// first, optionally filtered by user.
func GetModActions(ctx context.Context, userID string, limit int) ([]models.ModAction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT id, created_at, user_id, action, duration_seconds, strike_count, reason, issued_by
	          FROM mod_actions`
	args := []interface{}{}
	if userID != "" {
		query += ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
		args = append(args, userID, limit)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := database.PostgresDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ModAction
	for rows.Next() {
		var a models.ModAction
		if err := rows.Scan(&a.ID, &a.CreatedAt, &a.UserID, &a.Action, &a.DurationSeconds, &a.StrikeCount, &a.Reason, &a.IssuedBy); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
