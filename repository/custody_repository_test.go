package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffler/repository/testutil"
	"raffler/service"
)

func TestCustodyRepository_Balances(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testDB := testutil.SetupTestDatabase(t)

	repo := NewCustodyRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown account has zero balance", func(t *testing.T) {
		balance, err := repo.BalanceOf(ctx, "gold", "nobody")
		require.NoError(t, err)
		assert.Zero(t, balance)
	})

	t.Run("credit accumulates", func(t *testing.T) {
		require.NoError(t, repo.Credit(ctx, "gold", "alice", 300))
		require.NoError(t, repo.Credit(ctx, "gold", "alice", 200))

		balance, err := repo.BalanceOf(ctx, "gold", "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(500), balance)
	})

	t.Run("transfer conserves total balance", func(t *testing.T) {
		require.NoError(t, repo.Transfer(ctx, "gold", "alice", "bob", 150))

		aliceBalance, err := repo.BalanceOf(ctx, "gold", "alice")
		require.NoError(t, err)
		bobBalance, err := repo.BalanceOf(ctx, "gold", "bob")
		require.NoError(t, err)

		assert.Equal(t, int64(350), aliceBalance)
		assert.Equal(t, int64(150), bobBalance)
		assert.Equal(t, int64(500), aliceBalance+bobBalance)
	})

	t.Run("transfer beyond balance fails", func(t *testing.T) {
		err := repo.Transfer(ctx, "gold", "bob", "alice", 151)
		assert.ErrorIs(t, err, service.ErrInsufficientAuthorization)
	})

	t.Run("self transfer moves nothing", func(t *testing.T) {
		before, err := repo.BalanceOf(ctx, "gold", "bob")
		require.NoError(t, err)

		require.NoError(t, repo.Transfer(ctx, "gold", "bob", "bob", 100))

		after, err := repo.BalanceOf(ctx, "gold", "bob")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestCustodyRepository_Allowances(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testDB := testutil.SetupTestDatabase(t)

	repo := NewCustodyRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Credit(ctx, "gold", "alice", 1000))

	t.Run("unset allowance is zero", func(t *testing.T) {
		amount, err := repo.Allowance(ctx, "gold", "alice", "custody")
		require.NoError(t, err)
		assert.Zero(t, amount)
	})

	t.Run("transfer from without allowance fails", func(t *testing.T) {
		err := repo.TransferFrom(ctx, "gold", "alice", "custody", 100)
		assert.ErrorIs(t, err, service.ErrInsufficientAuthorization)
	})

	t.Run("approve then pull consumes allowance", func(t *testing.T) {
		require.NoError(t, repo.Approve(ctx, "alice", "gold", "custody", 400))
		require.NoError(t, repo.TransferFrom(ctx, "gold", "alice", "custody", 300))

		remaining, err := repo.Allowance(ctx, "gold", "alice", "custody")
		require.NoError(t, err)
		assert.Equal(t, int64(100), remaining)

		custodyBalance, err := repo.BalanceOf(ctx, "gold", "custody")
		require.NoError(t, err)
		assert.Equal(t, int64(300), custodyBalance)
	})

	t.Run("pull beyond remaining allowance fails", func(t *testing.T) {
		err := repo.TransferFrom(ctx, "gold", "alice", "custody", 101)
		assert.ErrorIs(t, err, service.ErrInsufficientAuthorization)
	})
}

func TestCustodyRepository_Collectibles(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testDB := testutil.SetupTestDatabase(t)

	repo := NewCustodyRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown collectible", func(t *testing.T) {
		_, err := repo.OwnerOf(ctx, "heirlooms", 7)
		assert.ErrorIs(t, err, service.ErrInvalidReference)
	})

	t.Run("mint then transfer", func(t *testing.T) {
		require.NoError(t, repo.MintCollectible(ctx, "heirlooms", 7, "operator"))

		owner, err := repo.OwnerOf(ctx, "heirlooms", 7)
		require.NoError(t, err)
		assert.Equal(t, "operator", owner)

		require.NoError(t, repo.CustodialTransfer(ctx, "heirlooms", 7, "operator", "custody"))

		owner, err = repo.OwnerOf(ctx, "heirlooms", 7)
		require.NoError(t, err)
		assert.Equal(t, "custody", owner)
	})

	t.Run("transfer by non-owner fails", func(t *testing.T) {
		err := repo.CustodialTransfer(ctx, "heirlooms", 7, "operator", "mallory")
		assert.ErrorIs(t, err, service.ErrOwnershipMismatch)

		owner, err := repo.OwnerOf(ctx, "heirlooms", 7)
		require.NoError(t, err)
		assert.Equal(t, "custody", owner)
	})

	t.Run("double mint fails", func(t *testing.T) {
		assert.Error(t, repo.MintCollectible(ctx, "heirlooms", 7, "operator"))
	})
}
