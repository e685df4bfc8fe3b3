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

type MessageRepository struct {
	collection *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{
		collection: db.Collection("messages"),
	}
}

func (r *MessageRepository) Insert(ctx context.Context, msg *models.Message) error {
	if msg.ID.IsZero() {
		msg.ID = bson.NewObjectID()
	}

	if _, err := r.collection.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

// ListBefore returns up to limit messages strictly older than the cursor,
// newest first. Callers reverse the slice for chronological display.
func (r *MessageRepository) ListBefore(ctx context.Context, roomID bson.ObjectID, before *time.Time, limit int) ([]models.Message, error) {
	filter := bson.M{"roomId": roomID}
	if before != nil {
		filter["createdAt"] = bson.M{"$lt": *before}
	}

	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	return messages, nil
}

// LatestByRoom returns the most recent message in a room, or nil when the
// room has no messages yet.
func (r *MessageRepository) LatestByRoom(ctx context.Context, roomID bson.ObjectID) (*models.Message, error) {
	opts := options.FindOne().SetSort(bson.M{"createdAt": -1})

	var msg models.Message
	err := r.collection.FindOne(ctx, bson.M{"roomId": roomID}, opts).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest message: %w", err)
	}

	return &msg, nil
}

func (r *MessageRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "roomId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	return nil
}
