package models

import "strings"

// AcademicBackground is one entry of a user's education history. Order is
// preserved as received from the user service.
type AcademicBackground struct {
	Institution string `json:"institution" bson:"institution"`
	Degree      string `json:"degree,omitempty" bson:"degree,omitempty"`
	Field       string `json:"field,omitempty" bson:"field,omitempty"`
	IsCurrent   bool   `json:"isCurrent" bson:"isCurrent"`
}

// User is the read-only projection of a platform user record. It is owned
// by the user service and kept in sync through user-events; this service
// never writes it outside the event consumer.
type User struct {
	UserID              string               `json:"userId" bson:"userId"`
	Email               string               `json:"email" bson:"email"`
	FirstName           string               `json:"firstName" bson:"firstName"`
	LastName            string               `json:"lastName" bson:"lastName"`
	Role                UserRole             `json:"role" bson:"role"`
	Institution         string               `json:"institution,omitempty" bson:"institution,omitempty"`
	Expertise           string               `json:"expertise,omitempty" bson:"expertise,omitempty"`
	Interests           []string             `json:"interests,omitempty" bson:"interests,omitempty"`
	AcademicBackgrounds []AcademicBackground `json:"academicBackgrounds,omitempty" bson:"academicBackgrounds,omitempty"`
	Points              int                  `json:"points" bson:"points"`
	Bio                 string               `json:"bio,omitempty" bson:"bio,omitempty"`
	AvatarURL           string               `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty"`
	IsVerified          bool                 `json:"isVerified" bson:"isVerified"`
	UpdatedAt           int64                `json:"updatedAt" bson:"updatedAt"`
}

// DisplayName is first+last name, falling back to the email address when
// the user never filled in a name.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Email
	}
	return name
}

// DisplayInstitution prefers the direct institution field, then the first
// academic background entry with a non-empty institution.
func (u *User) DisplayInstitution() string {
	if u.Institution != "" {
		return u.Institution
	}
	for _, bg := range u.AcademicBackgrounds {
		if bg.Institution != "" {
			return bg.Institution
		}
	}
	return ""
}

// HasCurrentAcademicBackground reports whether any education entry is
// marked current with a non-empty institution. Used as a ranking key.
func (u *User) HasCurrentAcademicBackground() bool {
	for _, bg := range u.AcademicBackgrounds {
		if bg.IsCurrent && strings.TrimSpace(bg.Institution) != "" {
			return true
		}
	}
	return false
}
