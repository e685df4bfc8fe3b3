package models

type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// EligibleAsMentor reports whether a user with this role can appear in the
// mentor candidate pool. Admins are operational accounts, never mentors.
func (r UserRole) EligibleAsMentor() bool {
	return r == RoleStudent || r == RoleInstructor
}

type DiscoveryActionType string

const (
	ActionSkipped DiscoveryActionType = "skipped"
	ActionBlocked DiscoveryActionType = "blocked"
)

func (a DiscoveryActionType) IsValid() bool {
	return a == ActionSkipped || a == ActionBlocked
}

type ConnectionStatus string

const (
	ConnectionPending   ConnectionStatus = "pending"
	ConnectionAccepted  ConnectionStatus = "accepted"
	ConnectionRejected  ConnectionStatus = "rejected"
	ConnectionCancelled ConnectionStatus = "cancelled"
)

func (s ConnectionStatus) IsValid() bool {
	switch s {
	case ConnectionPending, ConnectionAccepted, ConnectionRejected, ConnectionCancelled:
		return true
	default:
		return false
	}
}

// Reopenable reports whether a fresh connect request may overwrite a
// connection in this status. Pending and Accepted rows are live and are
// never overwritten.
func (s ConnectionStatus) Reopenable() bool {
	return s == ConnectionRejected || s == ConnectionCancelled
}

type MentorType string

const (
	MentorTypeInstructor MentorType = "Verified Instructor"
	MentorTypeStudent    MentorType = "Top Ranked Student"
)
