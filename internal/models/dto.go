package models

import "time"

// MatchBreakdown explains why a mentor was selected.
type MatchBreakdown struct {
	SharedInterests              []string `json:"sharedInterests"`
	HasCurrentAcademicBackground bool     `json:"hasCurrentAcademicBackground"`
	Points                       int      `json:"points"`
}

// MentorPayload is the discovery result returned to the learner.
type MentorPayload struct {
	UserID         string         `json:"userId"`
	DisplayName    string         `json:"displayName"`
	Institution    string         `json:"institution,omitempty"`
	Expertise      string         `json:"expertise,omitempty"`
	Interests      []string       `json:"interests,omitempty"`
	Bio            string         `json:"bio"`
	AvatarURL      string         `json:"avatarUrl,omitempty"`
	MentorType     MentorType     `json:"mentorType"`
	MatchScore     int            `json:"matchScore"`
	MatchBreakdown MatchBreakdown `json:"matchBreakdown"`
}

// ConnectionResult is returned by connect and respond operations.
type ConnectionResult struct {
	ConnectionID string           `json:"connectionId"`
	Status       ConnectionStatus `json:"status"`
	ChatRoomID   string           `json:"chatRoomId,omitempty"`
	Message      string           `json:"message"`
}

// ConnectionSummary is one entry of the connections listing.
type ConnectionSummary struct {
	ConnectionID string           `json:"connectionId"`
	UserID       string           `json:"userId"`
	DisplayName  string           `json:"displayName"`
	AvatarURL    string           `json:"avatarUrl,omitempty"`
	Role         UserRole         `json:"role"`
	Status       ConnectionStatus `json:"status"`
	RequestedAt  time.Time        `json:"requestedAt"`
	ChatRoomID   string           `json:"chatRoomId,omitempty"`
	LastMessage  *MessagePreview  `json:"lastMessage,omitempty"`
}

// MessagePreview is a truncated plain-text preview of the latest message
// in an accepted connection's room.
type MessagePreview struct {
	SenderID string    `json:"senderId"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sentAt"`
}

// ConnectionsOverview groups a user's connections by direction and state.
type ConnectionsOverview struct {
	IncomingPending     []ConnectionSummary `json:"incomingPending"`
	OutgoingPending     []ConnectionSummary `json:"outgoingPending"`
	AcceptedConnections []ConnectionSummary `json:"acceptedConnections"`
}

// MessagePage is one page of chat history in chronological order.
// NextCursor is set only when the page was full, meaning older messages
// may exist.
type MessagePage struct {
	Messages   []Message  `json:"messages"`
	NextCursor *time.Time `json:"nextCursor"`
}
