package service

import (
	"context"
	"time"

	"mentorship-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Narrow storage contracts consumed by the services. The mongo-backed
// repositories satisfy them; tests substitute in-memory fakes.

type UserStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.User, error)
	FindMentorCandidates(ctx context.Context, excludeIDs []string) ([]models.User, error)
	GetByUserIDs(ctx context.Context, userIDs []string) ([]models.User, error)
}

type ActionStore interface {
	Record(ctx context.Context, userID, mentorID string, action models.DiscoveryActionType) error
	DeleteSkip(ctx context.Context, userID, mentorID string) error
	FindByUser(ctx context.Context, userID string) ([]models.DiscoveryAction, error)
	HasBlocked(ctx context.Context, blockerID, targetID string) (bool, error)
}

type ConnectionStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Connection, error)
	FindByPairKey(ctx context.Context, pairKey string) (*models.Connection, error)
	Insert(ctx context.Context, conn *models.Connection) error
	Reopen(ctx context.Context, pairKey, senderID, receiverID string, requestedAt time.Time) (bool, error)
	Transition(ctx context.Context, id bson.ObjectID, from, to models.ConnectionStatus, respondedBy string) (bool, error)
	FindByUser(ctx context.Context, userID string) ([]models.Connection, error)
	FindPendingByReceiver(ctx context.Context, userID string) ([]models.Connection, error)
	FindPendingBySender(ctx context.Context, userID string) ([]models.Connection, error)
	FindAcceptedByUser(ctx context.Context, userID string) ([]models.Connection, error)
}

type RoomStore interface {
	EnsureRoom(ctx context.Context, userA, userB, connectionID string) (*models.ChatRoom, error)
	Deactivate(ctx context.Context, pairKey string) error
	FindByPairKey(ctx context.Context, pairKey string) (*models.ChatRoom, error)
	TouchLastMessage(ctx context.Context, roomID bson.ObjectID, at time.Time) error
}

type MessageStore interface {
	Insert(ctx context.Context, msg *models.Message) error
	ListBefore(ctx context.Context, roomID bson.ObjectID, before *time.Time, limit int) ([]models.Message, error)
	LatestByRoom(ctx context.Context, roomID bson.ObjectID) (*models.Message, error)
}

type EventPublisher interface {
	PublishConnectionEvent(event *models.ConnectionEvent) error
	PublishMessageEvent(event *models.MessageSentEvent) error
}
