package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"luxe/config"
	"luxe/internal/domain/entity"
	"luxe/internal/domain/repository"
	"luxe/internal/infra/auth"
	"luxe/internal/infra/auth/memory"
	"luxe/internal/infra/persistence/memstore"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAppID   = "luxe-test"
	waitFor     = 2 * time.Second
	pollEvery   = 5 * time.Millisecond
	testPassDef = "secret-pass"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLayout() repository.Layout {
	return repository.NewLayout(testAppID)
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Auth:             &config.AuthConfig{BcryptCost: bcrypt.MinCost},
		PasswordStrength: &config.PasswordStrengthConfig{MinLength: 6},
		Catalog:          &config.CatalogConfig{SeedConcurrency: 1},
	}
	cfg.SecretKey.IDToken = "test_id_token_secret_key_very_long_for_testing"

	return cfg
}

func newTestProvider(t *testing.T) *memory.Provider {
	t.Helper()

	cfg := testConfig()
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	return memory.New(cfg, auth.NewBcryptHasher(cfg), tokens, discardLogger())
}

func registered(id, email, name string) *entity.Identity {
	return &entity.Identity{ID: id, Email: email, DisplayName: name}
}

func anonymous(id string) *entity.Identity {
	return &entity.Identity{ID: id, Anonymous: true}
}

// seedProduct writes a product document directly and returns it with its ID.
func seedProduct(t *testing.T, store *memstore.Store, name string, price float64, category string) entity.Product {
	t.Helper()

	product := entity.Product{Name: name, Price: price, Category: category, Image: "https://example.com/" + name + ".png", Rating: 4}
	id, err := store.Create(context.Background(), testLayout().Products(), productFields(product))
	require.NoError(t, err)
	product.ID = id

	return product
}
