package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sentinelbot/sentinel-backend/internal/database"
	"github.com/sentinelbot/sentinel-backend/internal/models"
)

// Audit is the write-through observability store: violation documents in
// MongoDB, action rows in PostgreSQL. Neither is ever read back into the
// live escalation state.
type Audit struct{}

// Archive persists one violation record. Failures are logged and swallowed;
// the pipeline must not block on the archive.
func (Audit) Archive(ctx context.Context, v models.Violation) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if database.DB != nil {
		v.ID = primitive.NewObjectID()
		if _, err := database.DB.Collection("violations").InsertOne(ctx, v); err != nil {
			log.Printf("audit: violation insert failed: %v", err)
		}
	}

	RecordModAction(ctx, v.UserID, v.ActionTaken, 0, v.StrikeCount, string(v.Type), "pipeline")
}

// RecordModAction appends one row to the mod_actions audit table.
func RecordModAction(ctx context.Context, userID, action string, duration time.Duration, strikeCount int, reason, issuedBy string) {
	if database.PostgresDB == nil {
		return
	}
	_, err := database.PostgresDB.ExecContext(ctx,
		`INSERT INTO mod_actions (user_id, action, duration_seconds, strike_count, reason, issued_by)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, action, int(duration.Seconds()), strikeCount, reason, issuedBy)
	if err != nil {
		log.Printf("audit: mod_actions insert failed: %v", err)
	}
}

// GetViolations lists the most recent archived violations, optionally
// filtered by user, newest first.
func GetViolations(ctx context.Context, userID string, limit int64) ([]models.Violation, error) {
	if database.DB == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := database.DB.Collection("violations").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Violation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureAuditIndexes creates the MongoDB indexes the dashboard queries use.
func EnsureAuditIndexes(ctx context.Context) error {
	if database.DB == nil {
		return nil
	}
	_, err := database.DB.Collection("violations").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return err
}
