package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ruhan-islam/text-summarizer/internal/core/domain"
	"github.com/ruhan-islam/text-summarizer/internal/core/services/deduplication"
	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/database"
	"github.com/ruhan-islam/text-summarizer/internal/pkg/config"
	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
	"github.com/ruhan-islam/text-summarizer/internal/pkg/logger"
)

func setupTestDB(t *testing.T) *database.PostgresDB {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(dsn, &config.DatabaseConfig{MaxConnections: 5, MinConnections: 1}, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.AutoMigrate())
	assert.Equal(t, "up", db.Health(ctx)["status"])
	return db
}

func TestRunRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepository(db.DB, logger.Discard())
	ctx := context.Background()

	run := &domain.Run{SourceFilename: "news.xlsx", SourceHash: "h", RefineryVersion: "v1"}
	require.NoError(t, repo.Create(ctx, run))
	assert.Equal(t, domain.RunStatusUploaded, run.Status)

	require.NoError(t, repo.UpdateStatus(ctx, run.ID, domain.RunStatusCleaning))
	loaded, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCleaning, loaded.Status)
	assert.Nil(t, loaded.CompletedAt)

	loaded.CleanedRows = 10
	loaded.Stats = domain.JSONB{"rows": float64(10)}
	require.NoError(t, repo.Save(ctx, loaded))

	require.NoError(t, repo.UpdateStatus(ctx, run.ID, domain.RunStatusCompleted))
	done, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)
	assert.Equal(t, 10, done.CleanedRows)
	assert.Equal(t, float64(10), done.Stats["rows"])

	found, err := repo.FindCompleted(ctx, "h", "v1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, found.ID)

	_, err = repo.FindCompleted(ctx, "h", "v2")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeRecordNotFound))

	recent, err := repo.ListRecent(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	require.NoError(t, repo.Delete(ctx, run.ID))
	_, err = repo.GetByID(ctx, run.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeRecordNotFound))
}

func TestRunRepository_UpdateStatusErrors(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepository(db.DB, logger.Discard())
	ctx := context.Background()

	err := repo.UpdateStatus(ctx, uuid.New(), domain.RunStatusCleaning)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeRecordNotFound))

	err = repo.UpdateStatus(ctx, uuid.New(), "validating")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBadRequest))
}

func TestDedupHashRepository(t *testing.T) {
	db := setupTestDB(t)
	runs := NewRunRepository(db.DB, logger.Discard())
	repo := NewDedupHashRepository(db.DB, logger.Discard())
	ctx := context.Background()

	first := &domain.Run{SourceFilename: "a.csv", SourceHash: "a", RefineryVersion: "v1"}
	second := &domain.Run{SourceFilename: "b.csv", SourceHash: "b", RefineryVersion: "v1"}
	require.NoError(t, runs.Create(ctx, first))
	require.NoError(t, runs.Create(ctx, second))

	require.NoError(t, repo.SaveHashes(ctx, first.ID, []deduplication.HashEntry{
		{Hash: "h1", OriginalRowIndex: 0, Kept: true},
		{Hash: "h1", OriginalRowIndex: 1, Kept: false},
		{Hash: "h2", OriginalRowIndex: 2, Kept: true},
	}))

	entries, err := repo.GetRunHashes(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.False(t, entries[1].Kept)

	dups, err := repo.GetDuplicateCount(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dups)

	existing, err := repo.ExistingHashes(ctx, second.ID, []string{"h1", "h3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"h1": true}, existing)

	own, err := repo.ExistingHashes(ctx, first.ID, []string{"h1", "h2"})
	require.NoError(t, err)
	assert.Empty(t, own)

	require.NoError(t, repo.DeleteRunHashes(ctx, first.ID))
	entries, err = repo.GetRunHashes(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
