package matching

import "mentorship-service/internal/models"

// ExclusionSets holds the two classes of candidates removed from discovery.
// Hard exclusions (blocks and live connections) always apply; skip
// exclusions are lifted when the fresh candidate pool is exhausted.
type ExclusionSets struct {
	Hard    map[string]struct{}
	Skipped map[string]struct{}
}

// SplitExclusions derives the exclusion sets for a requester from
// pre-fetched ledger rows and connections. Pure function, no storage access.
func SplitExclusions(requesterID string, actions []models.DiscoveryAction, connections []models.Connection) ExclusionSets {
	sets := ExclusionSets{
		Hard:    make(map[string]struct{}),
		Skipped: make(map[string]struct{}),
	}

	sets.Hard[requesterID] = struct{}{}

	for _, a := range actions {
		if a.UserID != requesterID {
			continue
		}
		switch a.Action {
		case models.ActionBlocked:
			sets.Hard[a.MentorID] = struct{}{}
		case models.ActionSkipped:
			sets.Skipped[a.MentorID] = struct{}{}
		}
	}

	for _, c := range connections {
		if !c.IsLive() || !c.Involves(requesterID) {
			continue
		}
		sets.Hard[c.OtherParty(requesterID)] = struct{}{}
	}

	return sets
}

// ComputeExclusionSet returns the union of hard and skip exclusions: every
// user id that must not surface in a default discovery round.
func ComputeExclusionSet(requesterID string, actions []models.DiscoveryAction, connections []models.Connection) map[string]struct{} {
	sets := SplitExclusions(requesterID, actions, connections)
	excluded := make(map[string]struct{}, len(sets.Hard)+len(sets.Skipped))
	for id := range sets.Hard {
		excluded[id] = struct{}{}
	}
	for id := range sets.Skipped {
		excluded[id] = struct{}{}
	}
	return excluded
}
