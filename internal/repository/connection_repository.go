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

// ConnectionRepository owns the connections collection. The unique index on
// pairKey is what serializes concurrent connect calls for the same pair:
// whoever inserts first wins, the loser sees a duplicate-key error and must
// re-read. Status-conditioned updates tolerate losing a race the same way -
// MatchedCount 0 means the precondition no longer holds.
type ConnectionRepository struct {
	collection *mongo.Collection
}

func NewConnectionRepository(db *mongo.Database) *ConnectionRepository {
	return &ConnectionRepository{
		collection: db.Collection("connections"),
	}
}

func (r *ConnectionRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Connection, error) {
	var conn models.Connection
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&conn)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *ConnectionRepository) FindByPairKey(ctx context.Context, pairKey string) (*models.Connection, error) {
	var conn models.Connection
	err := r.collection.FindOne(ctx, bson.M{"pairKey": pairKey}).Decode(&conn)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// Insert creates the first connection document for a pair. The raw error is
// returned so callers can detect mongo.IsDuplicateKeyError and re-read.
func (r *ConnectionRepository) Insert(ctx context.Context, conn *models.Connection) error {
	if conn.ID.IsZero() {
		conn.ID = bson.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, conn)
	return err
}

// Reopen overwrites a rejected or cancelled row with a fresh pending
// request. The status filter makes the overwrite conditional; false means a
// concurrent writer got there first and the caller must re-read.
func (r *ConnectionRepository) Reopen(ctx context.Context, pairKey, senderID, receiverID string, requestedAt time.Time) (bool, error) {
	filter := bson.M{
		"pairKey": pairKey,
		"status":  bson.M{"$in": []models.ConnectionStatus{models.ConnectionRejected, models.ConnectionCancelled}},
	}
	update := bson.M{
		"$set": bson.M{
			"senderId":    senderID,
			"receiverId":  receiverID,
			"status":      models.ConnectionPending,
			"requestedAt": requestedAt,
		},
		"$unset": bson.M{
			"respondedAt":   "",
			"acceptedAt":    "",
			"respondedById": "",
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to reopen connection: %w", err)
	}
	return result.MatchedCount > 0, nil
}

// Transition moves a connection from one status to another. Returns false
// without error when the from-status no longer matched.
func (r *ConnectionRepository) Transition(ctx context.Context, id bson.ObjectID, from, to models.ConnectionStatus, respondedBy string) (bool, error) {
	now := time.Now().UTC()
	set := bson.M{
		"status":        to,
		"respondedAt":   now,
		"respondedById": respondedBy,
	}
	if to == models.ConnectionAccepted {
		set["acceptedAt"] = now
	}

	filter := bson.M{"_id": id, "status": from}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to transition connection %s: %w", id.Hex(), err)
	}
	return result.MatchedCount > 0, nil
}

// FindByUser returns every connection involving the user regardless of
// status; input for the exclusion set computation.
func (r *ConnectionRepository) FindByUser(ctx context.Context, userID string) ([]models.Connection, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"senderId": userID},
			{"receiverId": userID},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find connections: %w", err)
	}
	defer cursor.Close(ctx)

	var conns []models.Connection
	if err = cursor.All(ctx, &conns); err != nil {
		return nil, fmt.Errorf("failed to decode connections: %w", err)
	}

	return conns, nil
}

func (r *ConnectionRepository) FindPendingByReceiver(ctx context.Context, userID string) ([]models.Connection, error) {
	return r.findWithStatus(ctx, bson.M{"receiverId": userID, "status": models.ConnectionPending})
}

func (r *ConnectionRepository) FindPendingBySender(ctx context.Context, userID string) ([]models.Connection, error) {
	return r.findWithStatus(ctx, bson.M{"senderId": userID, "status": models.ConnectionPending})
}

func (r *ConnectionRepository) FindAcceptedByUser(ctx context.Context, userID string) ([]models.Connection, error) {
	filter := bson.M{
		"status": models.ConnectionAccepted,
		"$or": []bson.M{
			{"senderId": userID},
			{"receiverId": userID},
		},
	}
	return r.findWithStatus(ctx, filter)
}

func (r *ConnectionRepository) findWithStatus(ctx context.Context, filter bson.M) ([]models.Connection, error) {
	opts := options.Find().SetSort(bson.M{"requestedAt": -1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find connections: %w", err)
	}
	defer cursor.Close(ctx)

	var conns []models.Connection
	if err = cursor.All(ctx, &conns); err != nil {
		return nil, fmt.Errorf("failed to decode connections: %w", err)
	}

	return conns, nil
}

func (r *ConnectionRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pairKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "receiverId", Value: 1}, {Key: "status", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create connection indexes: %w", err)
	}

	return nil
}
