package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"mentorship-service/internal/errs"
	"mentorship-service/internal/event"
	"mentorship-service/internal/models"
	"mentorship-service/internal/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	defaultMessagePageSize = 50
	maxMessagePageSize     = 100
)

// ChatService is the message channel inside a pair's room: sanitization,
// length limits and cursor pagination. Messages flow only while the owning
// connection is accepted and the room active.
type ChatService struct {
	conns     ConnectionStore
	rooms     RoomStore
	messages  MessageStore
	publisher EventPublisher
}

func NewChatService(conns ConnectionStore, rooms RoomStore, messages MessageStore, publisher EventPublisher) *ChatService {
	return &ChatService{
		conns:     conns,
		rooms:     rooms,
		messages:  messages,
		publisher: publisher,
	}
}

// loadAcceptedRoom resolves the connection and its room for a chat
// operation, enforcing membership and the accepted-status requirement.
func (s *ChatService) loadAcceptedRoom(ctx context.Context, callerID, connectionID string) (*models.Connection, *models.ChatRoom, error) {
	id, err := bson.ObjectIDFromHex(connectionID)
	if err != nil {
		return nil, nil, errs.Validation("invalid connection id format")
	}

	conn, err := s.conns.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil, errs.NotFound("connection not found")
		}
		return nil, nil, fmt.Errorf("failed to load connection: %w", err)
	}

	if !conn.Involves(callerID) {
		return nil, nil, errs.Forbidden("not a participant of this conversation")
	}

	if conn.Status != models.ConnectionAccepted {
		return nil, nil, errs.Validation("connection is not accepted yet")
	}

	room, err := s.rooms.FindByPairKey(ctx, conn.PairKey)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return conn, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to load chat room: %w", err)
	}

	return conn, room, nil
}

// Send sanitizes and persists a message in the connection's room.
func (s *ChatService) Send(ctx context.Context, callerID, connectionID, rawContent string) (*models.Message, error) {
	conn, room, err := s.loadAcceptedRoom(ctx, callerID, connectionID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, errs.NotFound("chat room not found")
	}
	if !room.IsActive {
		return nil, errs.Validation("chat room is no longer active")
	}

	html := sanitize.HTML(rawContent)
	plain := sanitize.PlainText(html)

	if plain == "" && !sanitize.ContainsImage(html) {
		return nil, errs.Validation("message content is empty")
	}
	if len([]rune(plain)) > models.MaxMessageTextLength {
		return nil, errs.Validation("message text exceeds the 1500 character limit")
	}
	if len([]rune(html)) > models.MaxMessageHTMLLength {
		return nil, errs.Validation("message content exceeds the maximum length")
	}

	msg := &models.Message{
		RoomID:    room.ID,
		SenderID:  callerID,
		Content:   html,
		PlainText: plain,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.rooms.TouchLastMessage(ctx, room.ID, msg.CreatedAt); err != nil {
		log.Printf("Failed to update lastMessageAt for room %s: %v", room.ID.Hex(), err)
	}

	if s.publisher != nil {
		e := event.NewMessageSentEvent(conn.ID.Hex(), room.ID.Hex(), callerID)
		if err := s.publisher.PublishMessageEvent(e); err != nil {
			log.Printf("Failed to publish message event for room %s: %v", room.ID.Hex(), err)
		}
	}

	return msg, nil
}

// List returns one page of chat history in chronological order. The cursor
// walks backwards in time; a nil room or a deactivated room reads as empty.
func (s *ChatService) List(ctx context.Context, callerID, connectionID string, before *time.Time, limit int) (*models.MessagePage, error) {
	_, room, err := s.loadAcceptedRoom(ctx, callerID, connectionID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultMessagePageSize
	}
	if limit > maxMessagePageSize {
		limit = maxMessagePageSize
	}

	page := &models.MessagePage{Messages: []models.Message{}}

	if room == nil || !room.IsActive {
		return page, nil
	}

	messages, err := s.messages.ListBefore(ctx, room.ID, before, limit)
	if err != nil {
		return nil, err
	}

	// Newest-first from storage; flip to chronological for display.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	page.Messages = messages

	if len(messages) == limit {
		oldest := messages[0].CreatedAt
		page.NextCursor = &oldest
	}

	return page, nil
}
