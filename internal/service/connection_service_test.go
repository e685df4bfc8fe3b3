package service

import (
	"context"
	"strings"
	"testing"

	"mentorship-service/internal/errs"
	"mentorship-service/internal/models"
)

const (
	alice = "aaaaaaaaaaaaaaaaaaaaaaaa"
	bob   = "bbbbbbbbbbbbbbbbbbbbbbbb"
	carol = "cccccccccccccccccccccccc"
	dave  = "dddddddddddddddddddddddd"
)

type connectionFixture struct {
	users     *fakeUserStore
	actions   *fakeActionStore
	conns     *fakeConnectionStore
	rooms     *fakeRoomStore
	messages  *fakeMessageStore
	publisher *fakePublisher
	service   *ConnectionService
}

func newConnectionFixture() *connectionFixture {
	f := &connectionFixture{
		users: newFakeUserStore(
			models.User{UserID: alice, Email: "alice@example.com", Role: models.RoleStudent},
			models.User{UserID: bob, Email: "bob@example.com", FirstName: "Bob", Role: models.RoleStudent, Points: 10},
			models.User{UserID: carol, Email: "carol@example.com", Role: models.RoleInstructor},
			models.User{UserID: dave, Email: "dave@example.com", Role: models.RoleAdmin},
		),
		actions:   &fakeActionStore{},
		conns:     newFakeConnectionStore(),
		rooms:     newFakeRoomStore(),
		messages:  &fakeMessageStore{},
		publisher: &fakePublisher{},
	}
	f.service = NewConnectionService(f.users, f.actions, f.conns, f.rooms, f.messages, f.publisher)
	return f
}

func TestConnectCreatesPending(t *testing.T) {
	f := newConnectionFixture()
	ctx := context.Background()

	result, err := f.service.Connect(ctx, alice, bob)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if result.Status != models.ConnectionPending {
		t.Errorf("status = %s, want pending", result.Status)
	}

	row, err := f.conns.FindByPairKey(ctx, models.PairKey(alice, bob))
	if err != nil {
		t.Fatalf("connection row missing: %v", err)
	}
	if row.SenderID != alice || row.ReceiverID != bob {
		t.Errorf("row direction = %s -> %s", row.SenderID, row.ReceiverID)
	}

	if len(f.publisher.connectionEvents) != 1 {
		t.Fatalf("published %d events, want 1", len(f.publisher.connectionEvents))
	}
	if f.publisher.connectionEvents[0].Type != models.EventTypeConnectionRequested {
		t.Errorf("event type = %s", f.publisher.connectionEvents[0].Type)
	}
}

func TestConnectRepeatedWhilePending(t *testing.T) {
	f := newConnectionFixture()
	ctx := context.Background()

	first, err := f.service.Connect(ctx, alice, bob)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	second, err := f.service.Connect(ctx, alice, bob)
	if err != nil {
		t.Fatalf("repeat Connect: %v", err)
	}
	if second.Status != models.ConnectionPending {
		t.Errorf("status = %s, want pending", second.Status)
	}
	if second.ConnectionID != first.ConnectionID {
		t.Error("repeat connect created a second row")
	}
	if len(f.conns.rows) != 1 {
		t.Errorf("row count = %d, want 1", len(f.conns.rows))
	}
}

func TestSymmetricConnectAccepts(t *testing.T) {
	f := newConnectionFixture()
	ctx := context.Background()

	if _, err := f.service.Connect(ctx, alice, bob); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	// Bob had skipped Alice earlier; connecting must lift it.
	if err := f.actions.Record(ctx, bob, alice, models.ActionSkipped); err != nil {
		t.Fatalf("Record: %v", err)
	}

	result, err := f.service.Connect(ctx, bob, alice)
	if err != nil {
		t.Fatalf("symmetric Connect: %v", err)
	}
	if result.Status != models.ConnectionAccepted {
		t.Errorf("status = %s, want accepted", result.Status)
	}
	if result.ChatRoomID == "" {
		t.Error("accepted connection has no chat room")
	}
	if len(f.conns.rows) != 1 {
		t.Errorf("row count = %d, want 1", len(f.conns.rows))
	}

	room, err := f.rooms.FindByPairKey(ctx, models.PairKey(alice, bob))
	if err != nil {
		t.Fatalf("room missing: %v", err)
	}
	if !room.IsActive {
		t.Error("room not active")
	}

	if f.actions.hasSkip(bob, alice) {
		t.Error("skip not lifted on acceptance")
	}
}

func TestConnectBlockedEitherDirection(t *testing.T) {
	for name, pair := range map[string][2]string{
		"caller blocked target": {alice, bob},
		"target blocked caller": {bob, alice},
	} {
		t.Run(name, func(t *testing.T) {
			f := newConnectionFixture()
			ctx := context.Background()

			if err := f.actions.Record(ctx, pair[0], pair[1], models.ActionBlocked); err != nil {
				t.Fatalf("Record: %v", err)
			}

			_, err := f.service.Connect(ctx, alice, bob)
			if !errs.IsForbidden(err) {
				t.Errorf("err = %v, want forbidden", err)
			}
		})
	}
}

func TestConnectValidation(t *testing.T) {
	f := newConnectionFixture()
	ctx := context.Background()

	if _, err := f.service.Connect(ctx, alice, alice); !errs.IsForbidden(err) {
		t.Errorf("self connect err = %v, want forbidden", err)
	}

	if _, err := f.service.Connect(ctx, alice, "not-an-id"); !errs.IsValidation(err) {
		t.Errorf("malformed id err = %v, want validation", err)
	}

	if _, err := f.service.Connect(ctx, alice, "eeeeeeeeeeeeeeeeeeeeeeee"); !errs.IsNotFound(err) {
		t.Errorf("unknown mentor err = %v, want not found", err)
	}

	// Admins are operational accounts and never connectable as mentors.
	if _, err := f.service.Connect(ctx, alice, dave); !errs.IsNotFound(err) {
		t.Errorf("admin mentor err = %v, want not found", err)
	}
}

func TestRespondAccept(t *testing.T) {
	f := newConnectionFixture()
	ctx := context.Background()

	pending, err := f.service.Connect(ctx, alice, bob)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	result, err := f.service.Respond(ctx, bob, pending.ConnectionID, "accept")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if result.Status != models.ConnectionAccepted {
		t.Errorf("status = %s, want accepted", result.Status)
	}
	if result.ChatRoomID == "" {
		t.Error("no chat room on acceptance")
	}

	// Responding again reports the existing state instead of failing.
	again, err := f.service.Respond(ctx, bob, pending.ConnectionID, "accept")
	if err != nil {
		t.Fatalf("repeat Respond: %v", err)
	}
	if again.ChatRoomID != result.ChatRoomID {
		t.Error("repeat respond produced a different room")
	}
}

func TestRespondReject(t *testing.T) {
	f := newConnectionFixture()
	ctx := context.Background()

	pending, err := f.service.Connect(ctx, alice, bob)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	result, err := f.service.Respond(ctx, bob, pending.ConnectionID, "reject")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if result.Status != models.ConnectionRejected {
		t.Errorf("status = %s, want rejected", result.Status)
	}

	// Rejecting twice: the request is no longer pending.
	if _, err := f.service.Respond(ctx, bob, pending.ConnectionID, "reject"); !errs.IsValidation(err) {
		t.Errorf("repeat reject err = %v, want validation", err)
	}
}

func TestRespondPermissions(t *testing.T) {
	f := newConnectionFixture()
	ctx := context.Background()

	pending, err := f.service.Connect(ctx, alice, bob)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if _, err := f.service.Respond(ctx, alice, pending.ConnectionID, "accept"); !errs.IsForbidden(err) {
		t.Errorf("sender respond err = %v, want forbidden", err)
	}

	if _, err := f.service.Respond(ctx, carol, pending.ConnectionID, "accept"); !errs.IsForbidden(err) {
		t.Errorf("outsider respond err = %v, want forbidden", err)
	}

	if _, err := f.service.Respond(ctx, bob, pending.ConnectionID, "ignore"); !errs.IsValidation(err) {
		t.Errorf("bad action err = %v, want validation", err)
	}
}

func TestReconnectAfterRejectionReopens(t *testing.T) {
	f := newConnectionFixture()
	ctx := context.Background()

	pending, err := f.service.Connect(ctx, alice, bob)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := f.service.Respond(ctx, bob, pending.ConnectionID, "reject"); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	// Bob, who rejected, now initiates: the closed row is reused with the
	// direction flipped.
	result, err := f.service.Connect(ctx, bob, alice)
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if result.Status != models.ConnectionPending {
		t.Errorf("status = %s, want pending", result.Status)
	}
	if result.ConnectionID != pending.ConnectionID {
		t.Error("reopen created a new row instead of reusing the pair's row")
	}
	if len(f.conns.rows) != 1 {
		t.Errorf("row count = %d, want 1", len(f.conns.rows))
	}

	row, err := f.conns.FindByPairKey(ctx, models.PairKey(alice, bob))
	if err != nil {
		t.Fatalf("row missing: %v", err)
	}
	if row.SenderID != bob || row.ReceiverID != alice {
		t.Errorf("reopened direction = %s -> %s, want bob -> alice", row.SenderID, row.ReceiverID)
	}
	if row.RespondedAt != nil || row.RespondedByID != "" {
		t.Error("response fields not cleared on reopen")
	}
}

func TestBlockCancelsLiveConnection(t *testing.T) {
	f := newConnectionFixture()
	ctx := context.Background()

	pending, err := f.service.Connect(ctx, alice, bob)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := f.service.Respond(ctx, bob, pending.ConnectionID, "accept"); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if err := f.service.BlockUser(ctx, alice, bob); err != nil {
		t.Fatalf("BlockUser: %v", err)
	}

	row, err := f.conns.FindByPairKey(ctx, models.PairKey(alice, bob))
	if err != nil {
		t.Fatalf("row missing: %v", err)
	}
	if row.Status != models.ConnectionCancelled {
		t.Errorf("status = %s, want cancelled", row.Status)
	}

	room, err := f.rooms.FindByPairKey(ctx, models.PairKey(alice, bob))
	if err != nil {
		t.Fatalf("room missing: %v", err)
	}
	if room.IsActive {
		t.Error("room still active after block")
	}

	blocked, err := f.actions.HasBlocked(ctx, alice, bob)
	if err != nil || !blocked {
		t.Errorf("block not recorded: %v %v", blocked, err)
	}

	// A new connect attempt from either side is now refused.
	if _, err := f.service.Connect(ctx, bob, alice); !errs.IsForbidden(err) {
		t.Errorf("connect after block err = %v, want forbidden", err)
	}
}

func TestBlockWithoutConnectionIsRecorded(t *testing.T) {
	f := newConnectionFixture()
	ctx := context.Background()

	if err := f.service.BlockUser(ctx, alice, bob); err != nil {
		t.Fatalf("BlockUser: %v", err)
	}

	blocked, err := f.actions.HasBlocked(ctx, alice, bob)
	if err != nil || !blocked {
		t.Errorf("block not recorded: %v %v", blocked, err)
	}

	if err := f.service.BlockUser(ctx, alice, alice); !errs.IsForbidden(err) {
		t.Errorf("self block err = %v, want forbidden", err)
	}
}

func TestListConnections(t *testing.T) {
	f := newConnectionFixture()
	ctx := context.Background()

	// carol -> alice pending, alice -> bob accepted with one message.
	if _, err := f.service.Connect(ctx, carol, alice); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	accepted, err := f.service.Connect(ctx, alice, bob)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := f.service.Respond(ctx, bob, accepted.ConnectionID, "accept"); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	chat := NewChatService(f.conns, f.rooms, f.messages, f.publisher)
	if _, err := chat.Send(ctx, bob, accepted.ConnectionID, "<p>"+strings.Repeat("hello ", 40)+"</p>"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	overview, err := f.service.ListConnections(ctx, alice)
	if err != nil {
		t.Fatalf("ListConnections: %v", err)
	}

	if len(overview.IncomingPending) != 1 || overview.IncomingPending[0].UserID != carol {
		t.Errorf("incoming = %+v", overview.IncomingPending)
	}
	if len(overview.OutgoingPending) != 0 {
		t.Errorf("outgoing = %+v", overview.OutgoingPending)
	}
	if len(overview.AcceptedConnections) != 1 {
		t.Fatalf("accepted = %+v", overview.AcceptedConnections)
	}

	entry := overview.AcceptedConnections[0]
	if entry.UserID != bob {
		t.Errorf("accepted counterpart = %s, want bob", entry.UserID)
	}
	if entry.DisplayName != "Bob" {
		t.Errorf("display name = %q", entry.DisplayName)
	}
	if entry.ChatRoomID == "" {
		t.Error("accepted entry missing chat room")
	}
	if entry.LastMessage == nil {
		t.Fatal("accepted entry missing message preview")
	}
	if entry.LastMessage.SenderID != bob {
		t.Errorf("preview sender = %s", entry.LastMessage.SenderID)
	}
	if got := len([]rune(entry.LastMessage.Text)); got > previewLength+3 {
		t.Errorf("preview length = %d, exceeds cap", got)
	}
}
