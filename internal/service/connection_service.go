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

const previewLength = 120

// connectAttempts bounds the re-read loop used to resolve races on the
// pairKey unique index. Two attempts suffice: losing once means a
// concurrent writer produced a row we can re-evaluate.
const connectAttempts = 2

// ConnectionService owns the request-to-connect lifecycle between two
// users. Every transition is a read-modify-write keyed by pairKey that
// tolerates losing a race: on a duplicate-key insert or an unmatched
// conditional update the state is re-fetched and re-evaluated.
type ConnectionService struct {
	users     UserStore
	actions   ActionStore
	conns     ConnectionStore
	rooms     RoomStore
	messages  MessageStore
	publisher EventPublisher
}

func NewConnectionService(users UserStore, actions ActionStore, conns ConnectionStore, rooms RoomStore, messages MessageStore, publisher EventPublisher) *ConnectionService {
	return &ConnectionService{
		users:     users,
		actions:   actions,
		conns:     conns,
		rooms:     rooms,
		messages:  messages,
		publisher: publisher,
	}
}

// Connect handles a request from caller to mentor. Depending on the current
// pair state it creates a pending request, accepts a counter-request,
// reports an existing state, or reopens a closed pair.
func (s *ConnectionService) Connect(ctx context.Context, callerID, mentorID string) (*models.ConnectionResult, error) {
	if err := validateExternalID(mentorID); err != nil {
		return nil, err
	}
	if callerID == mentorID {
		return nil, errs.Forbidden("cannot connect with yourself")
	}

	target, err := s.users.FindByUserID(ctx, mentorID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.NotFound("mentor not found")
		}
		return nil, fmt.Errorf("failed to look up mentor: %w", err)
	}
	if !target.Role.EligibleAsMentor() {
		return nil, errs.NotFound("mentor not found")
	}

	for _, pair := range [][2]string{{mentorID, callerID}, {callerID, mentorID}} {
		blocked, err := s.actions.HasBlocked(ctx, pair[0], pair[1])
		if err != nil {
			return nil, fmt.Errorf("failed to check block state: %w", err)
		}
		if blocked {
			return nil, errs.Forbidden("unable to connect with this user")
		}
	}

	pairKey := models.PairKey(callerID, mentorID)

	for attempt := 0; attempt < connectAttempts; attempt++ {
		row, err := s.conns.FindByPairKey(ctx, pairKey)
		if err != nil && err != mongo.ErrNoDocuments {
			return nil, fmt.Errorf("failed to load connection: %w", err)
		}

		if row == nil || err == mongo.ErrNoDocuments {
			result, retry, err := s.createPending(ctx, pairKey, callerID, mentorID)
			if retry {
				continue
			}
			return result, err
		}

		switch row.Status {
		case models.ConnectionPending:
			if row.SenderID == callerID {
				return &models.ConnectionResult{
					ConnectionID: row.ID.Hex(),
					Status:       row.Status,
					Message:      "Connection request already pending",
				}, nil
			}
			// The caller is the receiver of an existing request: treat the
			// symmetric connect as an acceptance.
			result, retry, err := s.accept(ctx, row, callerID)
			if retry {
				continue
			}
			return result, err

		case models.ConnectionAccepted:
			room, err := s.rooms.EnsureRoom(ctx, row.SenderID, row.ReceiverID, row.ID.Hex())
			if err != nil {
				return nil, fmt.Errorf("failed to ensure chat room: %w", err)
			}
			return &models.ConnectionResult{
				ConnectionID: row.ID.Hex(),
				Status:       row.Status,
				ChatRoomID:   room.ID.Hex(),
				Message:      "Already connected",
			}, nil

		default:
			reopened, err := s.conns.Reopen(ctx, pairKey, callerID, mentorID, time.Now().UTC())
			if err != nil {
				return nil, err
			}
			if !reopened {
				continue
			}
			s.clearSkip(ctx, callerID, mentorID)
			s.publishConnection(models.EventTypeConnectionRequested, row.ID.Hex(), callerID, mentorID, models.ConnectionPending, "")
			return &models.ConnectionResult{
				ConnectionID: row.ID.Hex(),
				Status:       models.ConnectionPending,
				Message:      "Connection request sent",
			}, nil
		}
	}

	return nil, errs.Conflict("connection was updated concurrently, please retry")
}

func (s *ConnectionService) createPending(ctx context.Context, pairKey, callerID, mentorID string) (*models.ConnectionResult, bool, error) {
	row := &models.Connection{
		SenderID:    callerID,
		ReceiverID:  mentorID,
		PairKey:     pairKey,
		Status:      models.ConnectionPending,
		RequestedAt: time.Now().UTC(),
	}

	if err := s.conns.Insert(ctx, row); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost the insert race; re-read and re-evaluate.
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("failed to create connection: %w", err)
	}

	s.clearSkip(ctx, callerID, mentorID)
	s.publishConnection(models.EventTypeConnectionRequested, row.ID.Hex(), callerID, mentorID, models.ConnectionPending, "")

	return &models.ConnectionResult{
		ConnectionID: row.ID.Hex(),
		Status:       models.ConnectionPending,
		Message:      "Connection request sent",
	}, false, nil
}

func (s *ConnectionService) accept(ctx context.Context, row *models.Connection, callerID string) (*models.ConnectionResult, bool, error) {
	ok, err := s.conns.Transition(ctx, row.ID, models.ConnectionPending, models.ConnectionAccepted, callerID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, true, nil
	}

	room, err := s.rooms.EnsureRoom(ctx, row.SenderID, row.ReceiverID, row.ID.Hex())
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure chat room: %w", err)
	}

	s.clearSkip(ctx, callerID, row.OtherParty(callerID))
	s.publishConnection(models.EventTypeConnectionAccepted, row.ID.Hex(), row.SenderID, row.ReceiverID, models.ConnectionAccepted, room.ID.Hex())

	return &models.ConnectionResult{
		ConnectionID: row.ID.Hex(),
		Status:       models.ConnectionAccepted,
		ChatRoomID:   room.ID.Hex(),
		Message:      "Connection accepted",
	}, false, nil
}

// Respond lets the recipient of a pending request accept or reject it.
func (s *ConnectionService) Respond(ctx context.Context, callerID, connectionID, action string) (*models.ConnectionResult, error) {
	id, err := bson.ObjectIDFromHex(connectionID)
	if err != nil {
		return nil, errs.Validation("invalid connection id format")
	}
	if action != "accept" && action != "reject" {
		return nil, errs.Validation("action must be accept or reject")
	}

	for attempt := 0; attempt < connectAttempts; attempt++ {
		row, err := s.conns.FindByID(ctx, id)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, errs.NotFound("connection not found")
			}
			return nil, fmt.Errorf("failed to load connection: %w", err)
		}

		if !row.Involves(callerID) {
			return nil, errs.Forbidden("not a participant of this connection")
		}

		if row.Status == models.ConnectionAccepted {
			// Idempotent: responding to an accepted connection reports the
			// current room.
			room, err := s.rooms.EnsureRoom(ctx, row.SenderID, row.ReceiverID, row.ID.Hex())
			if err != nil {
				return nil, fmt.Errorf("failed to ensure chat room: %w", err)
			}
			return &models.ConnectionResult{
				ConnectionID: row.ID.Hex(),
				Status:       row.Status,
				ChatRoomID:   room.ID.Hex(),
				Message:      "Connection already accepted",
			}, nil
		}

		if row.Status != models.ConnectionPending {
			return nil, errs.Validation("connection request is no longer pending")
		}

		if row.SenderID == callerID {
			return nil, errs.Forbidden("only the recipient can respond to this request")
		}

		if action == "accept" {
			result, retry, err := s.accept(ctx, row, callerID)
			if retry {
				continue
			}
			return result, err
		}

		ok, err := s.conns.Transition(ctx, row.ID, models.ConnectionPending, models.ConnectionRejected, callerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		s.publishConnection(models.EventTypeConnectionRejected, row.ID.Hex(), row.SenderID, row.ReceiverID, models.ConnectionRejected, "")

		return &models.ConnectionResult{
			ConnectionID: row.ID.Hex(),
			Status:       models.ConnectionRejected,
			Message:      "Connection rejected",
		}, nil
	}

	return nil, errs.Conflict("connection was updated concurrently, please retry")
}

// BlockUser records a permanent block and severs any live connection with
// the target. The connection cancellation is the authoritative write; room
// deactivation failing afterwards is logged, not surfaced, because the
// cancellation is already durable.
func (s *ConnectionService) BlockUser(ctx context.Context, callerID, targetID string) error {
	if err := validateExternalID(targetID); err != nil {
		return err
	}
	if callerID == targetID {
		return errs.Forbidden("cannot block yourself")
	}

	if _, err := s.users.FindByUserID(ctx, targetID); err != nil {
		if err == mongo.ErrNoDocuments {
			return errs.NotFound("user not found")
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.actions.Record(ctx, callerID, targetID, models.ActionBlocked); err != nil {
		return fmt.Errorf("failed to record block: %w", err)
	}

	pairKey := models.PairKey(callerID, targetID)

	for attempt := 0; attempt < connectAttempts; attempt++ {
		row, err := s.conns.FindByPairKey(ctx, pairKey)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil
			}
			return fmt.Errorf("failed to load connection: %w", err)
		}

		if !row.IsLive() {
			return nil
		}

		ok, err := s.conns.Transition(ctx, row.ID, row.Status, models.ConnectionCancelled, callerID)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		s.publishConnection(models.EventTypeConnectionCancelled, row.ID.Hex(), row.SenderID, row.ReceiverID, models.ConnectionCancelled, "")

		if err := s.rooms.Deactivate(ctx, pairKey); err != nil {
			log.Printf("Failed to deactivate chat room for pair %s after block: %v", pairKey, err)
		}

		return nil
	}

	return errs.Conflict("connection was updated concurrently, please retry")
}

// ListConnections groups the caller's connections into incoming pending,
// outgoing pending and accepted, the latter annotated with the chat room
// and a preview of the most recent message.
func (s *ConnectionService) ListConnections(ctx context.Context, userID string) (*models.ConnectionsOverview, error) {
	incoming, err := s.conns.FindPendingByReceiver(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load incoming requests: %w", err)
	}

	outgoing, err := s.conns.FindPendingBySender(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load outgoing requests: %w", err)
	}

	accepted, err := s.conns.FindAcceptedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accepted connections: %w", err)
	}

	counterparts := make([]string, 0, len(incoming)+len(outgoing)+len(accepted))
	for _, c := range incoming {
		counterparts = append(counterparts, c.SenderID)
	}
	for _, c := range outgoing {
		counterparts = append(counterparts, c.ReceiverID)
	}
	for _, c := range accepted {
		counterparts = append(counterparts, c.OtherParty(userID))
	}

	profiles := make(map[string]models.User)
	if len(counterparts) > 0 {
		users, err := s.users.GetByUserIDs(ctx, counterparts)
		if err != nil {
			return nil, fmt.Errorf("failed to load counterpart profiles: %w", err)
		}
		for _, u := range users {
			profiles[u.UserID] = u
		}
	}

	overview := &models.ConnectionsOverview{
		IncomingPending:     make([]models.ConnectionSummary, 0, len(incoming)),
		OutgoingPending:     make([]models.ConnectionSummary, 0, len(outgoing)),
		AcceptedConnections: make([]models.ConnectionSummary, 0, len(accepted)),
	}

	for _, c := range incoming {
		overview.IncomingPending = append(overview.IncomingPending, s.summarize(c, c.SenderID, profiles, nil))
	}
	for _, c := range outgoing {
		overview.OutgoingPending = append(overview.OutgoingPending, s.summarize(c, c.ReceiverID, profiles, nil))
	}
	for _, c := range accepted {
		summary := s.summarize(c, c.OtherParty(userID), profiles, nil)

		room, err := s.rooms.FindByPairKey(ctx, c.PairKey)
		if err != nil {
			if err != mongo.ErrNoDocuments {
				log.Printf("Failed to load chat room for pair %s: %v", c.PairKey, err)
			}
		} else {
			summary.ChatRoomID = room.ID.Hex()
			if preview, err := s.latestPreview(ctx, room); err != nil {
				log.Printf("Failed to load message preview for room %s: %v", room.ID.Hex(), err)
			} else {
				summary.LastMessage = preview
			}
		}

		overview.AcceptedConnections = append(overview.AcceptedConnections, summary)
	}

	return overview, nil
}

func (s *ConnectionService) summarize(c models.Connection, counterpartID string, profiles map[string]models.User, preview *models.MessagePreview) models.ConnectionSummary {
	summary := models.ConnectionSummary{
		ConnectionID: c.ID.Hex(),
		UserID:       counterpartID,
		Status:       c.Status,
		RequestedAt:  c.RequestedAt,
		LastMessage:  preview,
	}

	if u, ok := profiles[counterpartID]; ok {
		summary.DisplayName = u.DisplayName()
		summary.AvatarURL = u.AvatarURL
		summary.Role = u.Role
	}

	return summary
}

func (s *ConnectionService) latestPreview(ctx context.Context, room *models.ChatRoom) (*models.MessagePreview, error) {
	msg, err := s.messages.LatestByRoom(ctx, room.ID)
	if err != nil || msg == nil {
		return nil, err
	}

	text := msg.PlainText
	if text == "" {
		text = sanitize.PlainText(msg.Content)
	}

	return &models.MessagePreview{
		SenderID: msg.SenderID,
		Text:     sanitize.Truncate(text, previewLength),
		SentAt:   msg.CreatedAt,
	}, nil
}

func (s *ConnectionService) clearSkip(ctx context.Context, userID, mentorID string) {
	if err := s.actions.DeleteSkip(ctx, userID, mentorID); err != nil {
		log.Printf("Failed to clear skip for %s -> %s: %v", userID, mentorID, err)
	}
}

func (s *ConnectionService) publishConnection(eventType models.EventType, connectionID, senderID, receiverID string, status models.ConnectionStatus, roomID string) {
	if s.publisher == nil {
		return
	}

	e := event.NewConnectionEvent(eventType, connectionID, senderID, receiverID, status, roomID)
	if err := s.publisher.PublishConnectionEvent(e); err != nil {
		log.Printf("Failed to publish %s event for connection %s: %v", eventType, connectionID, err)
	}
}
