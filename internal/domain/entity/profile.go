package entity

import "time"

const (
	// MemberTierGold is the tier every new member starts with.
	MemberTierGold = "Gold"

	// GuestName is used when an identity carries neither a display name nor an email.
	GuestName = "Guest"

	// GuestEmail is the placeholder stored when an identity has no email.
	GuestEmail = "guest@example.com"
)

// Profile is the member card of a registered identity. Anonymous identities never get one.
type Profile struct {
	Name       string    `firestore:"name" json:"name"`             // Display name shown on the member card.
	Email      string    `firestore:"email" json:"email"`           // Contact email.
	MemberTier string    `firestore:"memberTier" json:"memberTier"` // Loyalty tier, "Gold" for new members.
	JoinedAt   time.Time `firestore:"joinedAt" json:"joinedAt"`     // Server time of profile creation.
}

// DefaultProfileFor derives the profile written the first time a registered identity
// is observed without one. JoinedAt is left zero; the store assigns it.
func DefaultProfileFor(identity *Identity) Profile {
	name := identity.DisplayName
	if name == "" {
		name = identity.EmailLocalPart()
	}
	if name == "" {
		name = GuestName
	}

	email := identity.Email
	if email == "" {
		email = GuestEmail
	}

	return Profile{
		Name:       name,
		Email:      email,
		MemberTier: MemberTierGold,
	}
}
