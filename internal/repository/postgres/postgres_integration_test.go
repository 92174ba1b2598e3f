//go:build integration
// +build integration

package postgres

import (
	"LinkBio-Backend/internal/database"
	"LinkBio-Backend/internal/domain"
	"LinkBio-Backend/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupIntegrationStorage(t *testing.T) *PostgresStorage {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("linkbio_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	log := zap.NewNop()
	require.NoError(t, database.AutoMigrate(db, log))

	return New(db, log)
}

func TestPostgresStorage(t *testing.T) {
	storage := setupIntegrationStorage(t)
	ctx := context.Background()

	aliceID := "11111111-1111-1111-1111-111111111111"
	bobID := "22222222-2222-2222-2222-222222222222"

	t.Run("username uniqueness", func(t *testing.T) {
		_, err := storage.CreateProfile(ctx, aliceID, "alice")
		require.NoError(t, err)

		_, err = storage.CreateProfile(ctx, bobID, "alice")
		assert.ErrorIs(t, err, repository.ErrUsernameTaken)

		_, err = storage.CreateProfile(ctx, bobID, "bob")
		require.NoError(t, err)
	})

	t.Run("link positions are assigned in the database", func(t *testing.T) {
		for i, title := range []string{"One", "Two", "Three"} {
			link := &domain.Link{ProfileID: aliceID, Title: title, URL: "https://example.com", IsVisible: true}
			require.NoError(t, storage.CreateLink(ctx, link))
			assert.Equal(t, i+1, link.Position)
		}
	})

	t.Run("visible links resolve by username in display order", func(t *testing.T) {
		links, err := storage.ListVisibleLinks(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, links, 3)
		assert.Equal(t, "One", links[0].Title)
		assert.Equal(t, "Three", links[2].Title)

		require.NoError(t, storage.SetLinkVisibility(ctx, links[1].ID, aliceID, false))

		links, err = storage.ListVisibleLinks(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, links, 2)
	})

	t.Run("ownership filter on mutations", func(t *testing.T) {
		links, err := storage.ListLinks(ctx, aliceID)
		require.NoError(t, err)
		require.NotEmpty(t, links)

		err = storage.DeleteLink(ctx, links[0].ID, bobID)
		assert.ErrorIs(t, err, repository.ErrLinkNotFound)

		err = storage.SetLinkVisibility(ctx, links[0].ID, bobID, false)
		assert.ErrorIs(t, err, repository.ErrLinkNotFound)

		after, err := storage.ListLinks(ctx, aliceID)
		require.NoError(t, err)
		assert.Len(t, after, len(links))
	})

	t.Run("reorder rewrites positions transactionally", func(t *testing.T) {
		links, err := storage.ListLinks(ctx, aliceID)
		require.NoError(t, err)
		require.Len(t, links, 3)

		reversed := []string{links[2].ID, links[1].ID, links[0].ID}
		require.NoError(t, storage.ReorderLinks(ctx, aliceID, reversed))

		after, err := storage.ListLinks(ctx, aliceID)
		require.NoError(t, err)
		require.Len(t, after, 3)
		assert.Equal(t, links[2].ID, after[0].ID)
		assert.Equal(t, links[0].ID, after[2].ID)
	})

	t.Run("analytics rows accumulate per profile", func(t *testing.T) {
		ua := "Mozilla/5.0"
		require.NoError(t, storage.CreatePageView(ctx, &domain.PageView{ProfileID: aliceID, ViewedAt: time.Now().UTC(), UserAgent: &ua}))
		require.NoError(t, storage.CreatePageView(ctx, &domain.PageView{ProfileID: aliceID, ViewedAt: time.Now().UTC()}))

		views, err := storage.CountPageViews(ctx, aliceID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), views)

		other, err := storage.CountPageViews(ctx, bobID)
		require.NoError(t, err)
		assert.Zero(t, other)
	})

	t.Run("magic link token lifecycle", func(t *testing.T) {
		token := &domain.LoginToken{
			Email:     "alice@example.com",
			TokenHash: "hash",
			ExpiresAt: time.Now().UTC().Add(15 * time.Minute),
		}
		require.NoError(t, storage.CreateLoginToken(ctx, token))

		active, err := storage.ListActiveLoginTokens(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Len(t, active, 1)

		require.NoError(t, storage.ConsumeLoginToken(ctx, token.ID))
		err = storage.ConsumeLoginToken(ctx, token.ID)
		assert.ErrorIs(t, err, repository.ErrTokenNotFound)

		active, err = storage.ListActiveLoginTokens(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Empty(t, active)
	})

	t.Run("accounts are deduplicated by email", func(t *testing.T) {
		first, err := storage.FindOrCreateAccount(ctx, "carol@example.com")
		require.NoError(t, err)
		second, err := storage.FindOrCreateAccount(ctx, "carol@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})
}
