package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Connection is the single document describing the relationship between a
// pair of users. At most one document exists per pair key; a new request
// against a rejected or cancelled pair overwrites this document instead of
// creating history.
type Connection struct {
	ID            bson.ObjectID    `json:"id" bson:"_id,omitempty"`
	SenderID      string           `json:"senderId" bson:"senderId"`
	ReceiverID    string           `json:"receiverId" bson:"receiverId"`
	PairKey       string           `json:"pairKey" bson:"pairKey"`
	Status        ConnectionStatus `json:"status" bson:"status"`
	RequestedAt   time.Time        `json:"requestedAt" bson:"requestedAt"`
	RespondedAt   *time.Time       `json:"respondedAt,omitempty" bson:"respondedAt,omitempty"`
	AcceptedAt    *time.Time       `json:"acceptedAt,omitempty" bson:"acceptedAt,omitempty"`
	RespondedByID string           `json:"respondedById,omitempty" bson:"respondedById,omitempty"`
}

// PairKey builds the pair-symmetric key: the two user ids sorted
// lexicographically and joined, so (A,B) and (B,A) address the same document.
func PairKey(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return userA + "_" + userB
}

// Involves reports whether userID is one of the two participants.
func (c *Connection) Involves(userID string) bool {
	return c.SenderID == userID || c.ReceiverID == userID
}

// OtherParty returns the participant that is not userID.
func (c *Connection) OtherParty(userID string) string {
	if c.SenderID == userID {
		return c.ReceiverID
	}
	return c.SenderID
}

// IsLive reports whether the connection currently binds the pair: a live
// row excludes its counterpart from matching and blocks fresh requests.
func (c *Connection) IsLive() bool {
	return c.Status == ConnectionPending || c.Status == ConnectionAccepted
}
