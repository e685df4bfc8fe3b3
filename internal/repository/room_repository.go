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

// RoomRepository maintains the one-room-per-pair invariant through an
// idempotent upsert on pairKey. Reconnecting a pair reactivates the
// existing room, keeping its message history.
type RoomRepository struct {
	collection *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{
		collection: db.Collection("chat_rooms"),
	}
}

// EnsureRoom upserts the room for a pair and activates it. The creating
// connection id is stamped only on first creation.
func (r *RoomRepository) EnsureRoom(ctx context.Context, userA, userB, connectionID string) (*models.ChatRoom, error) {
	pairKey := models.PairKey(userA, userB)
	if userA > userB {
		userA, userB = userB, userA
	}

	filter := bson.M{"pairKey": pairKey}
	update := bson.M{
		"$set": bson.M{
			"memberIds": []string{userA, userB},
			"isActive":  true,
		},
		"$setOnInsert": bson.M{
			"pairKey":               pairKey,
			"createdByConnectionId": connectionID,
			"createdAt":             time.Now().UTC(),
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var room models.ChatRoom
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&room); err != nil {
		return nil, fmt.Errorf("failed to ensure chat room: %w", err)
	}

	return &room, nil
}

// Deactivate hides the pair's room from the message channel. Missing rooms
// are not an error; a blocked pair may never have chatted.
func (r *RoomRepository) Deactivate(ctx context.Context, pairKey string) error {
	update := bson.M{"$set": bson.M{"isActive": false}}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"pairKey": pairKey}, update); err != nil {
		return fmt.Errorf("failed to deactivate chat room: %w", err)
	}

	return nil
}

func (r *RoomRepository) FindByPairKey(ctx context.Context, pairKey string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.collection.FindOne(ctx, bson.M{"pairKey": pairKey}).Decode(&room)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// TouchLastMessage records the latest message timestamp on the room.
func (r *RoomRepository) TouchLastMessage(ctx context.Context, roomID bson.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{"lastMessageAt": at}}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": roomID}, update); err != nil {
		return fmt.Errorf("failed to update lastMessageAt: %w", err)
	}

	return nil
}

func (r *RoomRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pairKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "memberIds", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create chat room indexes: %w", err)
	}

	return nil
}
