package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	// MaxMessageHTMLLength caps the sanitized HTML stored for a message.
	MaxMessageHTMLLength = 20000

	// MaxMessageTextLength caps the derived plain text of a message.
	MaxMessageTextLength = 1500
)

// Message is a sanitized chat message inside a room. Messages are never
// edited or deleted.
type Message struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	RoomID    bson.ObjectID `json:"roomId" bson:"roomId"`
	SenderID  string        `json:"senderId" bson:"senderId"`
	Content   string        `json:"content" bson:"content"`
	PlainText string        `json:"plainText,omitempty" bson:"plainText,omitempty"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
}
