package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cryptdancer/internal/storage/postgres"
	"github.com/cory-johannsen/cryptdancer/internal/testutil"
)

func setupSessionRepo(t *testing.T) *postgres.SessionRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("journal tests need docker")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return postgres.NewSessionRepository(pc.RawPool)
}

func makeResult(outcome string, ended time.Time) postgres.Result {
	return postgres.Result{
		ID:                uuid.New(),
		Seed:              4294967295,
		Outcome:           outcome,
		DiamondsCollected: 10,
		Moves:             57,
		Digs:              12,
		RemoteAddr:        "127.0.0.1:50000",
		StartedAt:         ended.Add(-2 * time.Minute),
		EndedAt:           ended,
	}
}

func TestSessionRepository_RecordAndGet(t *testing.T) {
	repo := setupSessionRepo(t)
	ctx := context.Background()

	res := makeResult(postgres.OutcomeWon, time.Now().UTC().Truncate(time.Millisecond))
	require.NoError(t, repo.Record(ctx, res))

	got, err := repo.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, uint32(4294967295), got.Seed)
	assert.Equal(t, postgres.OutcomeWon, got.Outcome)
	assert.Equal(t, 10, got.DiamondsCollected)
	assert.Equal(t, 57, got.Moves)
	assert.Equal(t, 12, got.Digs)
	assert.Equal(t, "127.0.0.1:50000", got.RemoteAddr)
	assert.True(t, res.EndedAt.Equal(got.EndedAt))
	assert.Equal(t, 2*time.Minute, got.Duration())
}

func TestSessionRepository_GetMissing(t *testing.T) {
	repo := setupSessionRepo(t)
	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, postgres.ErrSessionNotFound)
}

func TestSessionRepository_RecordTwiceFails(t *testing.T) {
	repo := setupSessionRepo(t)
	ctx := context.Background()

	res := makeResult(postgres.OutcomeStopped, time.Now())
	require.NoError(t, repo.Record(ctx, res))
	assert.Error(t, repo.Record(ctx, res))
}

func TestSessionRepository_RecordInvalidOutcome(t *testing.T) {
	// Rejected before any query, so no database is needed.
	repo := postgres.NewSessionRepository(nil)
	err := repo.Record(context.Background(), makeResult("abandoned", time.Now()))
	assert.ErrorIs(t, err, postgres.ErrInvalidOutcome)
}

func TestSessionRepository_RecentNewestFirst(t *testing.T) {
	repo := setupSessionRepo(t)
	ctx := context.Background()

	base := time.Now().UTC()
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		res := makeResult(postgres.OutcomeDisconnected, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.Record(ctx, res))
		ids = append(ids, res.ID)
	}

	recent, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, ids[4], recent[0].ID)
	assert.Equal(t, ids[3], recent[1].ID)
	assert.Equal(t, ids[2], recent[2].ID)
}

func TestValidOutcome(t *testing.T) {
	assert.True(t, postgres.ValidOutcome(postgres.OutcomeWon))
	assert.True(t, postgres.ValidOutcome(postgres.OutcomeStopped))
	assert.True(t, postgres.ValidOutcome(postgres.OutcomeDisconnected))
	assert.False(t, postgres.ValidOutcome(""))
}

func TestPropertyValidOutcome(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		outcome := rapid.StringMatching(`[a-z]{1,16}`).Draw(t, "outcome")
		want := outcome == postgres.OutcomeWon || outcome == postgres.OutcomeStopped ||
			outcome == postgres.OutcomeDisconnected
		if got := postgres.ValidOutcome(outcome); got != want {
			t.Fatalf("ValidOutcome(%q) = %v, want %v", outcome, got, want)
		}
	})
}
