package models

type EventType string

const (
	EventTypeConnectionRequested EventType = "connection.requested"
	EventTypeConnectionAccepted  EventType = "connection.accepted"
	EventTypeConnectionRejected  EventType = "connection.rejected"
	EventTypeConnectionCancelled EventType = "connection.cancelled"
	EventTypeMessageSent         EventType = "chat.message.sent"

	EventTypeUserRegistered EventType = "user.registered"
	EventTypeUserUpdated    EventType = "user.updated"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Version   string    `json:"version"`
}

// ConnectionEvent is published on every connection state transition.
type ConnectionEvent struct {
	BaseEvent
	ConnectionID string           `json:"connectionId"`
	SenderID     string           `json:"senderId"`
	ReceiverID   string           `json:"receiverId"`
	Status       ConnectionStatus `json:"status"`
	ChatRoomID   string           `json:"chatRoomId,omitempty"`
}

// MessageSentEvent is published after a message is persisted.
type MessageSentEvent struct {
	BaseEvent
	ConnectionID string `json:"connectionId"`
	RoomID       string `json:"roomId"`
	SenderID     string `json:"senderId"`
}

// UserSyncEvent is consumed from the user service to keep the read-only
// user projection current.
type UserSyncEvent struct {
	BaseEvent
	UserID string `json:"userId"`
	User   User   `json:"user"`
}
