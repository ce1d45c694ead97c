// Package entity contains the core business objects of the storefront,
// each representing a unique, identifiable concept within the domain.
package entity

import "strings"

// Identity is the principal bound to the current storefront session.
// It is either anonymous (guest browsing) or registered through email/password.
type Identity struct {
	ID          string `json:"id"`                    // Opaque, provider-assigned unique ID.
	Anonymous   bool   `json:"anonymous"`             // True until the session completes registration or sign-in.
	Email       string `json:"email,omitempty"`       // Empty for anonymous identities.
	DisplayName string `json:"displayName,omitempty"` // Optional display name recorded by the provider.
	IDToken     string `json:"-"`                     // Provider-issued token proving the identity; never persisted.
}

// IsRegistered reports whether the identity signed in with email/password.
func (i *Identity) IsRegistered() bool {
	return i != nil && !i.Anonymous
}

// SameAs reports whether two identities denote the same principal in the same state.
// An anonymous identity upgraded to a registered one is not the same.
func (i *Identity) SameAs(other *Identity) bool {
	if i == nil || other == nil {
		return i == nil && other == nil
	}

	return i.ID == other.ID && i.Anonymous == other.Anonymous
}

// EmailLocalPart returns the part of the email before '@', or "" when there is no email.
func (i *Identity) EmailLocalPart() string {
	if i == nil || i.Email == "" {
		return ""
	}

	local, _, _ := strings.Cut(i.Email, "@")

	return local
}
