package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ChatRoom is the single private room for a pair of users. The pairKey
// unique index guarantees one room per pair no matter how many times the
// pair disconnects and reconnects; reactivation reuses the same room so
// message history survives.
type ChatRoom struct {
	ID                    bson.ObjectID `json:"id" bson:"_id,omitempty"`
	PairKey               string        `json:"pairKey" bson:"pairKey"`
	MemberIDs             []string      `json:"memberIds" bson:"memberIds"`
	IsActive              bool          `json:"isActive" bson:"isActive"`
	CreatedByConnectionID string        `json:"createdByConnectionId,omitempty" bson:"createdByConnectionId,omitempty"`
	CreatedAt             time.Time     `json:"createdAt" bson:"createdAt"`
	LastMessageAt         *time.Time    `json:"lastMessageAt,omitempty" bson:"lastMessageAt,omitempty"`
}

func (r *ChatRoom) HasMember(userID string) bool {
	for _, id := range r.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
