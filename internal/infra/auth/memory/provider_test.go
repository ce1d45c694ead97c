package memory

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"luxe/config"
	"luxe/internal/domain/entity"
	"luxe/internal/domain/service"
	"luxe/internal/infra/auth"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()

	cfg := &config.Config{
		Auth:             &config.AuthConfig{BcryptCost: bcrypt.MinCost},
		PasswordStrength: &config.PasswordStrengthConfig{MinLength: 6},
	}
	cfg.SecretKey.IDToken = "test_id_token_secret_key_very_long_for_testing"

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	return New(cfg, auth.NewBcryptHasher(cfg), tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type identityRecorder struct {
	mu   sync.Mutex
	seen []*entity.Identity
}

func (r *identityRecorder) listen(identity *entity.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seen = append(r.seen, identity)
}

func (r *identityRecorder) snapshot() []*entity.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*entity.Identity(nil), r.seen...)
}

func TestProvider_OnSessionChangedDeliversCurrentThenChanges(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	rec := &identityRecorder{}
	sub, err := provider.OnSessionChanged(rec.listen)
	require.NoError(t, err)
	defer sub.Stop()

	guest, err := provider.CreateAnonymousSession(ctx)
	require.NoError(t, err)
	require.NoError(t, provider.SignOut(ctx))

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	seen := rec.snapshot()
	assert.Nil(t, seen[0])
	assert.True(t, seen[1].SameAs(guest))
	assert.True(t, seen[1].Anonymous)
	assert.NotEmpty(t, seen[1].IDToken)
	assert.Nil(t, seen[2])
}

func TestProvider_RegisterThenSignIn(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	registered, err := provider.RegisterWithPassword(ctx, "a@b.com", "secret1", "Ann")
	require.NoError(t, err)
	assert.False(t, registered.Anonymous)
	assert.Equal(t, "Ann", registered.DisplayName)
	assert.Equal(t, registered, provider.Current())

	require.NoError(t, provider.SignOut(ctx))
	assert.Nil(t, provider.Current())

	signedIn, err := provider.SignInWithPassword(ctx, "A@B.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, signedIn.ID)
	assert.Equal(t, "a@b.com", signedIn.Email)
}

func TestProvider_RegisterFailures(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.RegisterWithPassword(ctx, "a@b.com", "secret1", "Ann")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{name: "email in use", email: "A@b.com", password: "secret1", want: service.ErrEmailInUse},
		{name: "weak password", email: "c@d.com", password: "123", want: service.ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.RegisterWithPassword(ctx, tt.email, tt.password, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = provider.RegisterWithPassword(ctx, "not-an-email", "secret1", "")
	assert.Error(t, err)
}

func TestProvider_SignInWrongPassword(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.RegisterWithPassword(ctx, "a@b.com", "secret1", "")
	require.NoError(t, err)

	_, err = provider.SignInWithPassword(ctx, "a@b.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredential)

	_, err = provider.SignInWithPassword(ctx, "nobody@b.com", "secret1")
	assert.ErrorIs(t, err, service.ErrInvalidCredential)
}

func TestProvider_DisableAnonymous(t *testing.T) {
	provider := newTestProvider(t)
	denied := errors.New("admin-restricted-operation")

	provider.DisableAnonymous(denied)
	_, err := provider.CreateAnonymousSession(context.Background())
	assert.ErrorIs(t, err, denied)

	provider.DisableAnonymous(nil)
	_, err = provider.CreateAnonymousSession(context.Background())
	assert.NoError(t, err)
}

func TestProvider_StoppedListenerReceivesNothing(t *testing.T) {
	provider := newTestProvider(t)

	rec := &identityRecorder{}
	sub, err := provider.OnSessionChanged(rec.listen)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	sub.Stop()
	_, err = provider.CreateAnonymousSession(context.Background())
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}

func TestProvider_VerifyIDToken(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	registered, err := provider.RegisterWithPassword(ctx, "a@b.com", "secret1", "Ann")
	require.NoError(t, err)

	uid, err := provider.VerifyIDToken(ctx, registered.IDToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, uid)

	_, err = provider.VerifyIDToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidCredential)

	other := newTestProvider(t)
	other.tokens = mustTokens(t, "another_id_token_secret_key_very_long_for_testing")
	foreign, err := other.CreateAnonymousSession(ctx)
	require.NoError(t, err)
	_, err = provider.VerifyIDToken(ctx, foreign.IDToken)
	assert.ErrorIs(t, err, service.ErrInvalidCredential)
}

func mustTokens(t *testing.T, secret string) service.TokenService {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.IDToken = secret
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	return tokens
}
