package repository

import (
	"context"
	"testing"

	"betbook/domain/entities"
	"betbook/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository_ApplyDelta(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("first settlement creates the entry lazily", func(t *testing.T) {
		entry, err := repo.ApplyDelta(ctx, 1, 100, entities.LedgerDelta{BalanceChange: 20, Won: true})
		require.NoError(t, err)

		assert.Equal(t, int64(20), entry.Balance)
		assert.Equal(t, int64(1), entry.Wins)
		assert.Equal(t, int64(0), entry.Losses)
		assert.Equal(t, int64(1), entry.TotalBets)
	})

	t.Run("later settlements accumulate", func(t *testing.T) {
		entry, err := repo.ApplyDelta(ctx, 1, 100, entities.LedgerDelta{BalanceChange: -10, Won: false})
		require.NoError(t, err)

		assert.Equal(t, int64(10), entry.Balance)
		assert.Equal(t, int64(1), entry.Wins)
		assert.Equal(t, int64(1), entry.Losses)
		assert.Equal(t, int64(2), entry.TotalBets)
	})

	t.Run("balances can go negative", func(t *testing.T) {
		entry, err := repo.ApplyDelta(ctx, 1, 200, entities.LedgerDelta{BalanceChange: -10, Won: false})
		require.NoError(t, err)
		assert.Equal(t, int64(-10), entry.Balance)
	})

	t.Run("entries are scoped per group", func(t *testing.T) {
		entry, err := repo.ApplyDelta(ctx, 2, 100, entities.LedgerDelta{BalanceChange: 5, Won: true})
		require.NoError(t, err)
		assert.Equal(t, int64(5), entry.Balance)

		original, err := repo.Get(ctx, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(10), original.Balance)
	})
}

func TestLedgerRepository_Get(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown pair returns nil without error", func(t *testing.T) {
		entry, err := repo.Get(ctx, 1, 999)
		require.NoError(t, err)
		assert.Nil(t, entry)
	})
}

func TestLedgerRepository_ListByGroup(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.ApplyDelta(ctx, 1, 100, entities.LedgerDelta{BalanceChange: 20, Won: true})
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, 1, 200, entities.LedgerDelta{BalanceChange: 50, Won: true})
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, 1, 300, entities.LedgerDelta{BalanceChange: -10, Won: false})
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, 2, 400, entities.LedgerDelta{BalanceChange: 99, Won: true})
	require.NoError(t, err)

	entries, err := repo.ListByGroup(ctx, 1)
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, int64(200), entries[0].UserID)
	assert.Equal(t, int64(100), entries[1].UserID)
	assert.Equal(t, int64(300), entries[2].UserID)
}

func TestLedgerChangeRepository_RecordAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	betRepo := NewBetRepository(testDB.DB)
	changeRepo := NewLedgerChangeRepository(testDB.DB)
	ctx := context.Background()

	bet := testutil.CreateTestGroupBet(1, 100, entities.WagerTypeYesNo)
	require.NoError(t, betRepo.Create(ctx, bet))

	change := testutil.CreateTestLedgerChange(1, 100, entities.TransactionTypeBetWin)
	change.RelatedBetID = &bet.ID
	require.NoError(t, changeRepo.Record(ctx, change))
	assert.NotZero(t, change.ID)

	loss := testutil.CreateTestLedgerChange(1, 100, entities.TransactionTypeBetLoss)
	loss.BalanceBefore = 200
	loss.BalanceAfter = 190
	loss.ChangeAmount = -10
	require.NoError(t, changeRepo.Record(ctx, loss))

	changes, err := changeRepo.GetRecentByUser(ctx, 1, 100, 10)
	require.NoError(t, err)

	require.Len(t, changes, 2)
	// Newest first
	assert.Equal(t, entities.TransactionTypeBetLoss, changes[0].TransactionType)
	assert.Equal(t, entities.TransactionTypeBetWin, changes[1].TransactionType)
	assert.Equal(t, bet.ID, *changes[1].RelatedBetID)
	assert.Equal(t, true, changes[1].Metadata["test"])
}
