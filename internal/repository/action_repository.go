package repository

import (
	"context"
	"fmt"
	"time"

	"mentorship-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ActionRepository is the discovery action ledger: one row per
// (user, mentor, action) triple, enforced by a unique index so concurrent
// duplicate inserts collapse into a no-op.
type ActionRepository struct {
	collection *mongo.Collection
}

func NewActionRepository(db *mongo.Database) *ActionRepository {
	return &ActionRepository{
		collection: db.Collection("discovery_actions"),
	}
}

// Record inserts the action if absent. A duplicate-key error means an
// identical row already exists and is not a failure.
func (r *ActionRepository) Record(ctx context.Context, userID, mentorID string, action models.DiscoveryActionType) error {
	row := models.DiscoveryAction{
		UserID:    userID,
		MentorID:  mentorID,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.collection.InsertOne(ctx, &row)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to record %s action: %w", action, err)
	}

	return nil
}

// DeleteSkip removes a skip row after the pair successfully connects, so a
// freshly connected mentor is not still marked as skipped.
func (r *ActionRepository) DeleteSkip(ctx context.Context, userID, mentorID string) error {
	filter := bson.M{
		"userId":   userID,
		"mentorId": mentorID,
		"action":   models.ActionSkipped,
	}

	if _, err := r.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to clear skip: %w", err)
	}

	return nil
}

// FindByUser returns every ledger row the user owns; input for the
// exclusion set computation.
func (r *ActionRepository) FindByUser(ctx context.Context, userID string) ([]models.DiscoveryAction, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to find discovery actions: %w", err)
	}
	defer cursor.Close(ctx)

	var actions []models.DiscoveryAction
	if err = cursor.All(ctx, &actions); err != nil {
		return nil, fmt.Errorf("failed to decode discovery actions: %w", err)
	}

	return actions, nil
}

// HasBlocked reports whether blocker has a permanent block row against target.
func (r *ActionRepository) HasBlocked(ctx context.Context, blockerID, targetID string) (bool, error) {
	filter := bson.M{
		"userId":   blockerID,
		"mentorId": targetID,
		"action":   models.ActionBlocked,
	}

	err := r.collection.FindOne(ctx, filter).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, fmt.Errorf("failed to check block: %w", err)
}

func (r *ActionRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "mentorId", Value: 1},
				{Key: "action", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create discovery action indexes: %w", err)
	}

	return nil
}
