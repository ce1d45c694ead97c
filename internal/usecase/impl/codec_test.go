package impl

import (
	"testing"
	"time"

	"luxe/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProfile_Timestamps(t *testing.T) {
	joined := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		joinedAt any
		want     time.Time
	}{
		{name: "native time", joinedAt: joined, want: joined},
		{name: "rfc3339 string", joinedAt: "2024-05-01T10:30:00Z", want: joined},
		{name: "fractional seconds", joinedAt: "2024-05-01T10:30:00.250Z", want: joined.Add(250 * time.Millisecond)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := decodeProfile(repository.Document{
				ID:   "profile",
				Path: "artifacts/app/users/u1/account/profile",
				Fields: repository.Fields{
					"name":       "Ann",
					"email":      "a@b.com",
					"memberTier": "Gold",
					"joinedAt":   tt.joinedAt,
				},
			})
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(profile.JoinedAt), "got %s", profile.JoinedAt)
			assert.Equal(t, "Ann", profile.Name)
		})
	}
}

func TestDecodeProfile_MalformedTimestamp(t *testing.T) {
	_, err := decodeProfile(repository.Document{
		ID:     "profile",
		Fields: repository.Fields{"name": "Ann", "joinedAt": "yesterday"},
	})
	assert.Error(t, err)
}
