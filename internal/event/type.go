package event

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"mentorship-service/internal/models"
)

func generateEventID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return time.Now().UTC().Format("20060102150405.000000000")
	}
	return time.Now().UTC().Format("20060102150405") + "-" + hex.EncodeToString(b)
}

func newBaseEvent(eventType models.EventType) models.BaseEvent {
	return models.BaseEvent{
		ID:        generateEventID(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Version:   "1.0",
	}
}

func NewConnectionEvent(eventType models.EventType, connectionID, senderID, receiverID string, status models.ConnectionStatus, roomID string) *models.ConnectionEvent {
	return &models.ConnectionEvent{
		BaseEvent:    newBaseEvent(eventType),
		ConnectionID: connectionID,
		SenderID:     senderID,
		ReceiverID:   receiverID,
		Status:       status,
		ChatRoomID:   roomID,
	}
}

func NewMessageSentEvent(connectionID, roomID, senderID string) *models.MessageSentEvent {
	return &models.MessageSentEvent{
		BaseEvent:    newBaseEvent(models.EventTypeMessageSent),
		ConnectionID: connectionID,
		RoomID:       roomID,
		SenderID:     senderID,
	}
}
