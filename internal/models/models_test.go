package models

import "testing"

func TestPairKeySymmetry(t *testing.T) {
	if PairKey("b", "a") != PairKey("a", "b") {
		t.Error("pair key must not depend on argument order")
	}
	if PairKey("a", "b") != "a_b" {
		t.Errorf("pair key = %q, want a_b", PairKey("a", "b"))
	}
}

func TestConnectionHelpers(t *testing.T) {
	c := Connection{SenderID: "a", ReceiverID: "b", Status: ConnectionPending}

	if !c.Involves("a") || !c.Involves("b") || c.Involves("c") {
		t.Error("Involves misreports participants")
	}
	if c.OtherParty("a") != "b" || c.OtherParty("b") != "a" {
		t.Error("OtherParty misreports counterpart")
	}
	if !c.IsLive() {
		t.Error("pending connection must be live")
	}

	c.Status = ConnectionRejected
	if c.IsLive() {
		t.Error("rejected connection must not be live")
	}
	if !c.Status.Reopenable() {
		t.Error("rejected connection must be reopenable")
	}
}

func TestUserDisplayName(t *testing.T) {
	u := User{Email: "x@example.com"}
	if u.DisplayName() != "x@example.com" {
		t.Errorf("empty name fallback = %q", u.DisplayName())
	}

	u.FirstName = "Ada"
	if u.DisplayName() != "Ada" {
		t.Errorf("first-name only = %q", u.DisplayName())
	}

	u.LastName = "Lovelace"
	if u.DisplayName() != "Ada Lovelace" {
		t.Errorf("full name = %q", u.DisplayName())
	}
}

func TestUserDisplayInstitution(t *testing.T) {
	u := User{
		AcademicBackgrounds: []AcademicBackground{
			{Institution: ""},
			{Institution: "NUS"},
		},
	}
	if u.DisplayInstitution() != "NUS" {
		t.Errorf("background fallback = %q", u.DisplayInstitution())
	}

	u.Institution = "MIT"
	if u.DisplayInstitution() != "MIT" {
		t.Errorf("direct field = %q", u.DisplayInstitution())
	}
}

func TestHasCurrentAcademicBackground(t *testing.T) {
	u := User{AcademicBackgrounds: []AcademicBackground{{Institution: "MIT", IsCurrent: false}}}
	if u.HasCurrentAcademicBackground() {
		t.Error("non-current entry must not count")
	}

	u.AcademicBackgrounds = append(u.AcademicBackgrounds, AcademicBackground{Institution: " ", IsCurrent: true})
	if u.HasCurrentAcademicBackground() {
		t.Error("blank institution must not count")
	}

	u.AcademicBackgrounds = append(u.AcademicBackgrounds, AcademicBackground{Institution: "NUS", IsCurrent: true})
	if !u.HasCurrentAcademicBackground() {
		t.Error("current entry with institution must count")
	}
}
