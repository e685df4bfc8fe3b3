package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"mentorship-service/internal/models"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const userCacheTTL = 5 * time.Minute

// UserRepository is the read-only accessor over platform user records. The
// collection is populated by the user-events consumer; request paths only
// read it. Single-user lookups go through a short-lived Redis cache.
type UserRepository struct {
	collection *mongo.Collection
	cache      *redis.Client
}

func NewUserRepository(db *mongo.Database, cache *redis.Client) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
		cache:      cache,
	}
}

func userCacheKey(userID string) string {
	return "mentorship:user:" + userID
}

func (r *UserRepository) FindByUserID(ctx context.Context, userID string) (*models.User, error) {
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, userCacheKey(userID)).Result(); err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(cached), &user); err == nil {
				return &user, nil
			}
		}
	}

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&user)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if data, err := json.Marshal(&user); err == nil {
			if err := r.cache.Set(ctx, userCacheKey(userID), data, userCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache user %s: %v", userID, err)
			}
		}
	}

	return &user, nil
}

// FindMentorCandidates returns every mentor-eligible user whose id is not in
// the exclusion list. The skip exclusions are intentionally not applied here;
// the selector lifts them during fallback without a second query.
func (r *UserRepository) FindMentorCandidates(ctx context.Context, excludeIDs []string) ([]models.User, error) {
	filter := bson.M{
		"role":   bson.M{"$in": []models.UserRole{models.RoleStudent, models.RoleInstructor}},
		"userId": bson.M{"$nin": excludeIDs},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find mentor candidates: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode mentor candidates: %w", err)
	}

	return users, nil
}

func (r *UserRepository) GetByUserIDs(ctx context.Context, userIDs []string) ([]models.User, error) {
	filter := bson.M{"userId": bson.M{"$in": userIDs}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	return users, nil
}

// Upsert stores a synced user record and drops its cache entry. Called only
// from the event consumer.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().Unix()

	filter := bson.M{"userId": user.UserID}
	update := bson.M{"$set": user}
	opts := options.UpdateOne().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.UserID, err)
	}

	if r.cache != nil {
		if err := r.cache.Del(ctx, userCacheKey(user.UserID)).Err(); err != nil {
			log.Printf("Failed to invalidate user cache for %s: %v", user.UserID, err)
		}
	}

	return nil
}

func (r *UserRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "points", Value: -1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	return nil
}
