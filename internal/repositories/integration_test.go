package repositories_test

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/careerdeck/gatekeeper/internal/database"
	"github.com/careerdeck/gatekeeper/internal/models"
	"github.com/careerdeck/gatekeeper/internal/repositories"
)

// setupTestDB starts a PostgreSQL container, runs migrations, and
// returns the database wrapper. The container is torn down with the
// test.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("gatekeeper"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx))
	require.NoError(t, runMigrations(ctx, pool))

	return &database.DB{Pool: pool}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir, err := filepath.Abs("../../migrations")
	if err != nil {
		return err
	}

	goose.SetLogger(log.New(io.Discard, "", 0))

	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	return goose.UpContext(ctx, sqlDB, migrationsDir)
}

func TestChallengeRepository_PutOverwritesAndVerifies(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewChallengeRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	first := &models.Challenge{
		SubjectID: "uid-1",
		Intent:    models.IntentLogin,
		CodeHash:  "hash-one",
		CreatedAt: now,
		ExpiresAt: now.Add(models.ChallengeTTL),
	}
	require.NoError(t, repo.Put(ctx, first))

	// Same key again replaces the row instead of erroring
	second := &models.Challenge{
		SubjectID: "uid-1",
		Intent:    models.IntentLogin,
		CodeHash:  "hash-two",
		CreatedAt: now.Add(time.Minute),
		ExpiresAt: now.Add(time.Minute + models.ChallengeTTL),
	}
	require.NoError(t, repo.Put(ctx, second))

	got, err := repo.Get(ctx, "uid-1", models.IntentLogin)
	require.NoError(t, err)
	assert.Equal(t, "hash-two", got.CodeHash)
	assert.False(t, got.Verified)

	// A different intent for the same subject is a separate row
	_, err = repo.Get(ctx, "uid-1", models.IntentSubscription)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, repo.MarkVerified(ctx, "uid-1", models.IntentLogin))
	got, err = repo.Get(ctx, "uid-1", models.IntentLogin)
	require.NoError(t, err)
	assert.True(t, got.Verified)

	require.NoError(t, repo.Delete(ctx, "uid-1", models.IntentLogin))
	_, err = repo.Get(ctx, "uid-1", models.IntentLogin)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestChallengeRepository_DeleteExpiredBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewChallengeRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	stale := &models.Challenge{
		SubjectID: "uid-stale",
		Intent:    models.IntentLogin,
		CodeHash:  "hash",
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-2*time.Hour + models.ChallengeTTL),
	}
	fresh := &models.Challenge{
		SubjectID: "uid-fresh",
		Intent:    models.IntentLogin,
		CodeHash:  "hash",
		CreatedAt: now,
		ExpiresAt: now.Add(models.ChallengeTTL),
	}
	require.NoError(t, repo.Put(ctx, stale))
	require.NoError(t, repo.Put(ctx, fresh))

	deleted, err := repo.DeleteExpiredBefore(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.Get(ctx, "uid-stale", models.IntentLogin)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = repo.Get(ctx, "uid-fresh", models.IntentLogin)
	assert.NoError(t, err)
}

func TestPaymentRepository_CreateIfAbsentDeduplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewPaymentRepository(db)
	ctx := context.Background()

	record := &models.PaymentRecord{
		PaymentID: "pay_abc",
		UserID:    "uid-1",
		Plan:      models.PlanSilver,
		Purpose:   models.PaymentPurposeSubscription,
		Amount:    30000,
		Status:    models.PaymentStatusSuccess,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	inserted, err := repo.CreateIfAbsent(ctx, record)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Replay with conflicting fields must not insert or mutate
	replay := *record
	replay.Amount = 999999
	inserted, err = repo.CreateIfAbsent(ctx, &replay)
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := repo.Get(ctx, "pay_abc")
	require.NoError(t, err)
	assert.Equal(t, int64(30000), got.Amount)
}

func TestProfileRepository_CreateConflictAndMerges(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewProfileRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	profile := models.NewProfile("uid-1", "user@example.com", "User", "", now)
	require.NoError(t, repo.Create(ctx, profile))

	// Concurrent provision attempts surface ErrConflict
	err := repo.Create(ctx, profile)
	assert.ErrorIs(t, err, models.ErrConflict)

	got, err := repo.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, got.Plan)
	assert.Equal(t, models.DefaultLanguage, got.Language)
	assert.Equal(t, models.OnboardingFriendsCount, got.FriendsCount)

	require.NoError(t, repo.SetPlan(ctx, "uid-1", models.PlanGold, now))
	require.NoError(t, repo.SetLanguage(ctx, "uid-1", "fr", now))
	require.NoError(t, repo.SetResume(ctx, "uid-1", "resume-1", now))

	got, err = repo.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanGold, got.Plan)
	assert.Equal(t, "fr", got.Language)
	assert.True(t, got.HasResume)

	// Merges against a missing profile report not found
	assert.ErrorIs(t, repo.SetPlan(ctx, "uid-missing", models.PlanGold, now), models.ErrNotFound)
}

func TestActivityRepository_CountSince(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewActivityRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	dayStart := now.Add(-time.Hour)

	require.NoError(t, repo.CreatePost(ctx, &models.Post{
		ID: uuid.New(), UserID: "uid-1", Caption: "today", CreatedAt: now,
	}))
	require.NoError(t, repo.CreatePost(ctx, &models.Post{
		ID: uuid.New(), UserID: "uid-1", Caption: "yesterday", CreatedAt: now.Add(-25 * time.Hour),
	}))
	require.NoError(t, repo.CreatePost(ctx, &models.Post{
		ID: uuid.New(), UserID: "uid-2", Caption: "someone else", CreatedAt: now,
	}))

	count, err := repo.CountSince(ctx, "uid-1", models.ActionDailyPost, dayStart)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.CreateApplication(ctx, &models.Application{
		ID: uuid.New(), UserID: "uid-1", ListingID: "listing-1", CreatedAt: now,
	}))

	count, err = repo.CountSince(ctx, "uid-1", models.ActionMonthlyApplication, dayStart)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLoginAttemptRepository_RecordListAndRetention(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewLoginAttemptRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	for i, status := range []string{models.LoginStatusSuccess, models.LoginStatusBlocked} {
		require.NoError(t, repo.Record(ctx, &models.LoginAttempt{
			ID:        uuid.New(),
			UserID:    "uid-1",
			Browser:   models.BrowserChrome,
			OS:        models.OSWindows,
			Device:    models.DeviceDesktop,
			IPAddress: "203.0.113.7",
			Status:    status,
			Reason:    models.LoginReasonAllowed,
			LoginTime: now.Add(time.Duration(i) * time.Minute),
		}))
	}

	attempts, err := repo.ListByUser(ctx, "uid-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	// Newest first
	assert.Equal(t, models.LoginStatusBlocked, attempts[0].Status)

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestResumeRepository_LatestWins(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewResumeRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.Create(ctx, &models.Resume{
		ID: uuid.New(), UserID: "uid-1", Name: "First Draft", CreatedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, repo.Create(ctx, &models.Resume{
		ID: uuid.New(), UserID: "uid-1", Name: "Final", CreatedAt: now,
	}))

	got, err := repo.GetByUser(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Name)

	_, err = repo.GetByUser(ctx, "uid-none")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
