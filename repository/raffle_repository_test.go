package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffler/repository/testutil"
)

func TestRaffleRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRaffleRepository(testDB.DB)
	ctx := context.Background()

	t.Run("not found returns nil", func(t *testing.T) {
		raffle, err := repo.GetByID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, raffle)
	})

	t.Run("create assigns id starting at 1", func(t *testing.T) {
		raffle := testutil.CreateTestRaffle()
		err := repo.Create(ctx, raffle)
		require.NoError(t, err)

		assert.Equal(t, int64(1), raffle.ID)
		assert.False(t, raffle.CreatedAt.IsZero())

		got, err := repo.GetByID(ctx, raffle.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, raffle.PrizeCollection, got.PrizeCollection)
		assert.Equal(t, raffle.MaxEntries, got.MaxEntries)
		assert.True(t, got.IsOpen)
		assert.Nil(t, got.Winner)
		assert.Nil(t, got.ClaimedAt)
	})

	t.Run("update round-trips mutable fields", func(t *testing.T) {
		raffle := testutil.CreateTestRaffle()
		require.NoError(t, repo.Create(ctx, raffle))

		winner := "alice"
		claimedAt := time.Now().UTC().Truncate(time.Millisecond)
		raffle.TotalEntriesSold = 7
		raffle.Winner = &winner
		raffle.IsOpen = false
		raffle.ClaimedAt = &claimedAt
		require.NoError(t, repo.Update(ctx, raffle))

		got, err := repo.GetByID(ctx, raffle.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.TotalEntriesSold)
		require.NotNil(t, got.Winner)
		assert.Equal(t, "alice", *got.Winner)
		assert.False(t, got.IsOpen)
		require.NotNil(t, got.ClaimedAt)
		assert.WithinDuration(t, claimedAt, *got.ClaimedAt, time.Millisecond)
	})

	t.Run("update of missing raffle fails", func(t *testing.T) {
		raffle := testutil.CreateTestRaffle()
		raffle.ID = 424242
		assert.Error(t, repo.Update(ctx, raffle))
	})
}

func TestRaffleRepository_TicketsAndRoster(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRaffleRepository(testDB.DB)
	ctx := context.Background()

	raffle := testutil.CreateTestRaffle()
	require.NoError(t, repo.Create(ctx, raffle))

	t.Run("tickets preserve issuance order", func(t *testing.T) {
		require.NoError(t, repo.AddTicketHolders(ctx, raffle.ID, "alice", 2))
		require.NoError(t, repo.AddTicketHolders(ctx, raffle.ID, "bob", 1))
		require.NoError(t, repo.AddTicketHolders(ctx, raffle.ID, "alice", 1))

		detail, err := repo.GetDetailByID(ctx, raffle.ID)
		require.NoError(t, err)
		require.NotNil(t, detail)
		assert.Equal(t, []string{"alice", "alice", "bob", "alice"}, detail.TicketHolders)
	})

	t.Run("free roster records one row per call", func(t *testing.T) {
		require.NoError(t, repo.AddFreeParticipant(ctx, raffle.ID, "carol"))
		require.NoError(t, repo.AddFreeParticipant(ctx, raffle.ID, "carol"))

		detail, err := repo.GetDetailByID(ctx, raffle.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"carol", "carol"}, detail.FreeParticipants)
	})

	t.Run("ticket counts by participant", func(t *testing.T) {
		count, err := repo.CountTicketsByParticipant(ctx, raffle.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		count, err = repo.CountTicketsByParticipant(ctx, raffle.ID, "nobody")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("detail of missing raffle is nil", func(t *testing.T) {
		detail, err := repo.GetDetailByID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, detail)
	})
}

// The id listing only ever grows: a raffle that has been closed stays on
// it, in its original creation position.
func TestRaffleRepository_GetActiveIDs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRaffleRepository(testDB.DB)
	ctx := context.Background()

	open1 := testutil.CreateTestRaffle()
	require.NoError(t, repo.Create(ctx, open1))

	closed := testutil.CreateEndedTestRaffle()
	require.NoError(t, repo.Create(ctx, closed))
	closed.IsOpen = false
	require.NoError(t, repo.Update(ctx, closed))

	open2 := testutil.CreateTestRaffle()
	require.NoError(t, repo.Create(ctx, open2))

	ids, err := repo.GetActiveIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{open1.ID, closed.ID, open2.ID}, ids)
}
