package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DiscoveryAction records that a user skipped or blocked a mentor during
// discovery. A unique index on (userId, mentorId, action) makes creation
// idempotent. Skipped rows are removed when the pair later connects;
// blocked rows are permanent.
type DiscoveryAction struct {
	ID        bson.ObjectID       `json:"id" bson:"_id,omitempty"`
	UserID    string              `json:"userId" bson:"userId"`
	MentorID  string              `json:"mentorId" bson:"mentorId"`
	Action    DiscoveryActionType `json:"action" bson:"action"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
}
