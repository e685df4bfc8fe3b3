package service

import (
	"context"
	"fmt"

	"mentorship-service/internal/errs"
	"mentorship-service/internal/matching"
	"mentorship-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// DiscoveryService serves mentor discovery: one best-matching mentor per
// request, plus the skip action of the ledger. Matching itself mutates
// nothing; the later connect call is the authoritative gate.
type DiscoveryService struct {
	users    UserStore
	actions  ActionStore
	conns    ConnectionStore
	selector *matching.Selector
}

func NewDiscoveryService(users UserStore, actions ActionStore, conns ConnectionStore, selector *matching.Selector) *DiscoveryService {
	return &DiscoveryService{
		users:    users,
		actions:  actions,
		conns:    conns,
		selector: selector,
	}
}

// validateExternalID checks the platform's id format without a lookup.
func validateExternalID(id string) error {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return errs.Validation("invalid user id format")
	}
	return nil
}

// FindMentor selects at most one mentor for the requester. A nil payload
// with nil error means no mentor is available.
func (s *DiscoveryService) FindMentor(ctx context.Context, requesterID string, rawTags []string) (*models.MentorPayload, matching.Stage, error) {
	tags := matching.NormalizeTags(rawTags)
	if len(tags) == 0 {
		return nil, "", errs.Validation("at least one interest tag is required")
	}

	actions, err := s.actions.FindByUser(ctx, requesterID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load discovery actions: %w", err)
	}

	connections, err := s.conns.FindByUser(ctx, requesterID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load connections: %w", err)
	}

	sets := matching.SplitExclusions(requesterID, actions, connections)

	hardIDs := make([]string, 0, len(sets.Hard))
	for id := range sets.Hard {
		hardIDs = append(hardIDs, id)
	}

	candidates, err := s.users.FindMentorCandidates(ctx, hardIDs)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load candidate pool: %w", err)
	}

	pick, stage := s.selector.SelectMentor(candidates, sets.Skipped, tags)
	if pick == nil {
		return nil, "", nil
	}

	return matching.BuildPayload(pick), stage, nil
}

// SkipMentor records an idempotent skip so the mentor stops surfacing in
// discovery until the fresh pool runs dry.
func (s *DiscoveryService) SkipMentor(ctx context.Context, userID, mentorID string) error {
	if err := validateExternalID(mentorID); err != nil {
		return err
	}
	if userID == mentorID {
		return errs.Forbidden("cannot skip yourself")
	}

	if _, err := s.users.FindByUserID(ctx, mentorID); err != nil {
		if err == mongo.ErrNoDocuments {
			return errs.NotFound("mentor not found")
		}
		return fmt.Errorf("failed to look up mentor: %w", err)
	}

	if err := s.actions.Record(ctx, userID, mentorID, models.ActionSkipped); err != nil {
		return fmt.Errorf("failed to record skip: %w", err)
	}

	return nil
}
