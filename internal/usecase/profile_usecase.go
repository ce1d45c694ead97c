package usecase

import "luxe/internal/domain/entity"

// ProfileUsecase mirrors the member profile of the active identity.
type ProfileUsecase interface {
	IdentityBinder
	Stop()

	// Profile returns the last observed profile, or nil when there is none.
	Profile() *entity.Profile
	Watch(fn func(*entity.Profile)) (cancel func())
}
