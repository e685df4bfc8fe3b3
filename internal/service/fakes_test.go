package service

import (
	"context"
	"sort"
	"time"

	"mentorship-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// In-memory store fakes. They mirror the mongo repositories' contracts,
// including returning mongo.ErrNoDocuments for misses and a duplicate-key
// write error for pairKey collisions.

func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}
}

type fakeUserStore struct {
	users map[string]models.User
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]models.User)}
	for _, u := range users {
		s.users[u.UserID] = u
	}
	return s
}

func (s *fakeUserStore) FindByUserID(ctx context.Context, userID string) (*models.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

func (s *fakeUserStore) FindMentorCandidates(ctx context.Context, excludeIDs []string) ([]models.User, error) {
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	var out []models.User
	for _, u := range s.users {
		if _, ok := excluded[u.UserID]; ok {
			continue
		}
		if !u.Role.EligibleAsMentor() {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *fakeUserStore) GetByUserIDs(ctx context.Context, userIDs []string) ([]models.User, error) {
	var out []models.User
	for _, id := range userIDs {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeActionStore struct {
	actions []models.DiscoveryAction
}

func (s *fakeActionStore) Record(ctx context.Context, userID, mentorID string, action models.DiscoveryActionType) error {
	for _, a := range s.actions {
		if a.UserID == userID && a.MentorID == mentorID && a.Action == action {
			return nil
		}
	}
	s.actions = append(s.actions, models.DiscoveryAction{
		UserID:    userID,
		MentorID:  mentorID,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *fakeActionStore) DeleteSkip(ctx context.Context, userID, mentorID string) error {
	kept := s.actions[:0]
	for _, a := range s.actions {
		if a.UserID == userID && a.MentorID == mentorID && a.Action == models.ActionSkipped {
			continue
		}
		kept = append(kept, a)
	}
	s.actions = kept
	return nil
}

func (s *fakeActionStore) FindByUser(ctx context.Context, userID string) ([]models.DiscoveryAction, error) {
	var out []models.DiscoveryAction
	for _, a := range s.actions {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeActionStore) HasBlocked(ctx context.Context, blockerID, targetID string) (bool, error) {
	for _, a := range s.actions {
		if a.UserID == blockerID && a.MentorID == targetID && a.Action == models.ActionBlocked {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeActionStore) hasSkip(userID, mentorID string) bool {
	for _, a := range s.actions {
		if a.UserID == userID && a.MentorID == mentorID && a.Action == models.ActionSkipped {
			return true
		}
	}
	return false
}

type fakeConnectionStore struct {
	rows map[string]*models.Connection // keyed by pairKey
}

func newFakeConnectionStore() *fakeConnectionStore {
	return &fakeConnectionStore{rows: make(map[string]*models.Connection)}
}

func (s *fakeConnectionStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.Connection, error) {
	for _, row := range s.rows {
		if row.ID == id {
			copy := *row
			return &copy, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *fakeConnectionStore) FindByPairKey(ctx context.Context, pairKey string) (*models.Connection, error) {
	row, ok := s.rows[pairKey]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copy := *row
	return &copy, nil
}

func (s *fakeConnectionStore) Insert(ctx context.Context, conn *models.Connection) error {
	if _, ok := s.rows[conn.PairKey]; ok {
		return duplicateKeyErr()
	}
	conn.ID = bson.NewObjectID()
	copy := *conn
	s.rows[conn.PairKey] = &copy
	return nil
}

func (s *fakeConnectionStore) Reopen(ctx context.Context, pairKey, senderID, receiverID string, requestedAt time.Time) (bool, error) {
	row, ok := s.rows[pairKey]
	if !ok || !row.Status.Reopenable() {
		return false, nil
	}
	row.SenderID = senderID
	row.ReceiverID = receiverID
	row.Status = models.ConnectionPending
	row.RequestedAt = requestedAt
	row.RespondedAt = nil
	row.AcceptedAt = nil
	row.RespondedByID = ""
	return true, nil
}

func (s *fakeConnectionStore) Transition(ctx context.Context, id bson.ObjectID, from, to models.ConnectionStatus, respondedBy string) (bool, error) {
	for _, row := range s.rows {
		if row.ID != id || row.Status != from {
			continue
		}
		now := time.Now().UTC()
		row.Status = to
		row.RespondedAt = &now
		row.RespondedByID = respondedBy
		if to == models.ConnectionAccepted {
			row.AcceptedAt = &now
		}
		return true, nil
	}
	return false, nil
}

func (s *fakeConnectionStore) FindByUser(ctx context.Context, userID string) ([]models.Connection, error) {
	var out []models.Connection
	for _, row := range s.rows {
		if row.Involves(userID) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *fakeConnectionStore) FindPendingByReceiver(ctx context.Context, userID string) ([]models.Connection, error) {
	var out []models.Connection
	for _, row := range s.rows {
		if row.ReceiverID == userID && row.Status == models.ConnectionPending {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *fakeConnectionStore) FindPendingBySender(ctx context.Context, userID string) ([]models.Connection, error) {
	var out []models.Connection
	for _, row := range s.rows {
		if row.SenderID == userID && row.Status == models.ConnectionPending {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *fakeConnectionStore) FindAcceptedByUser(ctx context.Context, userID string) ([]models.Connection, error) {
	var out []models.Connection
	for _, row := range s.rows {
		if row.Involves(userID) && row.Status == models.ConnectionAccepted {
			out = append(out, *row)
		}
	}
	return out, nil
}

type fakeRoomStore struct {
	rooms map[string]*models.ChatRoom // keyed by pairKey
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{rooms: make(map[string]*models.ChatRoom)}
}

func (s *fakeRoomStore) EnsureRoom(ctx context.Context, userA, userB, connectionID string) (*models.ChatRoom, error) {
	pairKey := models.PairKey(userA, userB)
	members := []string{userA, userB}
	sort.Strings(members)

	room, ok := s.rooms[pairKey]
	if !ok {
		room = &models.ChatRoom{
			ID:                    bson.NewObjectID(),
			PairKey:               pairKey,
			CreatedByConnectionID: connectionID,
			CreatedAt:             time.Now().UTC(),
		}
		s.rooms[pairKey] = room
	}
	room.MemberIDs = members
	room.IsActive = true

	copy := *room
	return &copy, nil
}

func (s *fakeRoomStore) Deactivate(ctx context.Context, pairKey string) error {
	if room, ok := s.rooms[pairKey]; ok {
		room.IsActive = false
	}
	return nil
}

func (s *fakeRoomStore) FindByPairKey(ctx context.Context, pairKey string) (*models.ChatRoom, error) {
	room, ok := s.rooms[pairKey]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copy := *room
	return &copy, nil
}

func (s *fakeRoomStore) TouchLastMessage(ctx context.Context, roomID bson.ObjectID, at time.Time) error {
	for _, room := range s.rooms {
		if room.ID == roomID {
			room.LastMessageAt = &at
		}
	}
	return nil
}

type fakeMessageStore struct {
	messages []models.Message
}

func (s *fakeMessageStore) Insert(ctx context.Context, msg *models.Message) error {
	msg.ID = bson.NewObjectID()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *fakeMessageStore) ListBefore(ctx context.Context, roomID bson.ObjectID, before *time.Time, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range s.messages {
		if m.RoomID != roomID {
			continue
		}
		if before != nil && !m.CreatedAt.Before(*before) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeMessageStore) LatestByRoom(ctx context.Context, roomID bson.ObjectID) (*models.Message, error) {
	var latest *models.Message
	for i := range s.messages {
		m := s.messages[i]
		if m.RoomID != roomID {
			continue
		}
		if latest == nil || m.CreatedAt.After(latest.CreatedAt) {
			latest = &m
		}
	}
	if latest == nil {
		return nil, nil
	}
	copy := *latest
	return &copy, nil
}

type fakePublisher struct {
	connectionEvents []models.ConnectionEvent
	messageEvents    []models.MessageSentEvent
}

func (p *fakePublisher) PublishConnectionEvent(event *models.ConnectionEvent) error {
	p.connectionEvents = append(p.connectionEvents, *event)
	return nil
}

func (p *fakePublisher) PublishMessageEvent(event *models.MessageSentEvent) error {
	p.messageEvents = append(p.messageEvents, *event)
	return nil
}
