package matching

import (
	"math/rand"
	"sort"
	"strings"
	"time"

	"mentorship-service/internal/models"
)

// Stage identifies which selection stage produced a match.
type Stage string

const (
	// StagePrimary - interest match against the fresh candidate pool.
	StagePrimary Stage = "primary"

	// StageSkipLifted - interest match with skip exclusions lifted.
	StageSkipLifted Stage = "skip_lifted"

	// StageRandomFallback - uniform random candidate with points > 0,
	// interest relevance not required.
	StageRandomFallback Stage = "random_fallback"
)

// RankedCandidate is a candidate annotated with its ranking keys.
type RankedCandidate struct {
	User                 models.User
	SharedInterests      []string
	MatchCount           int
	HasCurrentBackground bool
	Points               int
}

// Selector picks at most one mentor from a pre-fetched candidate pool.
// The rand source is held explicitly so tests can pin it.
type Selector struct {
	rand *rand.Rand
}

func NewSelector() *Selector {
	return &Selector{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSelectorWithSource builds a selector with a caller-supplied source,
// used by tests to make tie-breaking deterministic.
func NewSelectorWithSource(src rand.Source) *Selector {
	return &Selector{rand: rand.New(src)}
}

// NormalizeTags splits possibly comma-joined tag entries, trims whitespace,
// drops empties and deduplicates case-insensitively. The first spelling of
// each tag is kept.
func NormalizeTags(raw []string) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0, len(raw))

	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			tag := strings.TrimSpace(part)
			if tag == "" {
				continue
			}
			key := strings.ToLower(tag)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			tags = append(tags, tag)
		}
	}

	return tags
}

// TagsMatch reports whether two tags match: case-insensitively equal, or
// either one a substring of the other. "math" matches "mathematics" and
// the reverse.
func TagsMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// sharedInterests returns the candidate's interests matching at least one
// requested tag, deduplicated by normalized key.
func sharedInterests(interests, tags []string) []string {
	seen := make(map[string]struct{})
	shared := make([]string, 0)

	for _, interest := range interests {
		key := strings.ToLower(strings.TrimSpace(interest))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		for _, tag := range tags {
			if TagsMatch(interest, tag) {
				seen[key] = struct{}{}
				shared = append(shared, interest)
				break
			}
		}
	}

	return shared
}

// Rank scores every candidate against the requested tags and orders them by
// match count, then current academic background, then points. The trailing
// id comparison is a deterministic secondary sort, not a ranking key.
func Rank(candidates []models.User, tags []string) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))

	for _, u := range candidates {
		shared := sharedInterests(u.Interests, tags)
		ranked = append(ranked, RankedCandidate{
			User:                 u,
			SharedInterests:      shared,
			MatchCount:           len(shared),
			HasCurrentBackground: u.HasCurrentAcademicBackground(),
			Points:               u.Points,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.MatchCount != b.MatchCount {
			return a.MatchCount > b.MatchCount
		}
		if a.HasCurrentBackground != b.HasCurrentBackground {
			return a.HasCurrentBackground
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.User.UserID < b.User.UserID
	})

	return ranked
}

// SelectMentor runs the full selection pipeline over a candidate pool that
// already had hard exclusions (requester, blocks, live connections) removed.
// skipped holds the requester's skip exclusions, applied in the primary
// stage and lifted by the fallbacks.
func (s *Selector) SelectMentor(candidates []models.User, skipped map[string]struct{}, tags []string) (*RankedCandidate, Stage) {
	fresh := make([]models.User, 0, len(candidates))
	for _, u := range candidates {
		if _, ok := skipped[u.UserID]; ok {
			continue
		}
		fresh = append(fresh, u)
	}

	if pick := s.pickTopMatch(Rank(fresh, tags)); pick != nil {
		return pick, StagePrimary
	}

	// Stage (a): the fresh pool had no interest match. Resurface skipped
	// mentors before giving up on tag relevance.
	if len(skipped) > 0 {
		if pick := s.pickTopMatch(Rank(candidates, tags)); pick != nil {
			return pick, StageSkipLifted
		}
	}

	// Stage (b): uniform random candidate with points, ignoring interests.
	withPoints := make([]models.User, 0, len(candidates))
	for _, u := range candidates {
		if u.Points > 0 {
			withPoints = append(withPoints, u)
		}
	}
	if len(withPoints) > 0 {
		u := withPoints[s.rand.Intn(len(withPoints))]
		ranked := Rank([]models.User{u}, tags)
		return &ranked[0], StageRandomFallback
	}

	return nil, ""
}

// pickTopMatch drops candidates without any interest match, then selects
// uniformly at random among those tied with the top-ranked candidate on all
// three ranking keys. The randomization keeps repeat calls from always
// surfacing the same mentor among equally qualified ones.
func (s *Selector) pickTopMatch(ranked []RankedCandidate) *RankedCandidate {
	matched := make([]RankedCandidate, 0, len(ranked))
	for _, rc := range ranked {
		if rc.MatchCount > 0 {
			matched = append(matched, rc)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	top := matched[0]
	tied := 1
	for tied < len(matched) {
		c := matched[tied]
		if c.MatchCount != top.MatchCount ||
			c.HasCurrentBackground != top.HasCurrentBackground ||
			c.Points != top.Points {
			break
		}
		tied++
	}

	pick := matched[s.rand.Intn(tied)]
	return &pick
}

// BuildPayload shapes a ranked candidate into the discovery response.
func BuildPayload(rc *RankedCandidate) *models.MentorPayload {
	bio := rc.User.Bio
	if strings.TrimSpace(bio) == "" {
		bio = "No bio added yet."
	}

	mentorType := models.MentorTypeStudent
	if rc.User.Role == models.RoleInstructor {
		mentorType = models.MentorTypeInstructor
	}

	return &models.MentorPayload{
		UserID:      rc.User.UserID,
		DisplayName: rc.User.DisplayName(),
		Institution: rc.User.DisplayInstitution(),
		Expertise:   rc.User.Expertise,
		Interests:   rc.User.Interests,
		Bio:         bio,
		AvatarURL:   rc.User.AvatarURL,
		MentorType:  mentorType,
		MatchScore:  rc.MatchCount,
		MatchBreakdown: models.MatchBreakdown{
			SharedInterests:              rc.SharedInterests,
			HasCurrentAcademicBackground: rc.HasCurrentBackground,
			Points:                       rc.Points,
		},
	}
}
