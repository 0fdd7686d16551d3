package repository

import (
	"context"
	"testing"
	"time"

	"betbook/domain/entities"
	"betbook/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	t.Run("create fills id and creation time", func(t *testing.T) {
		bet := testutil.CreateTestGroupBet(1, 100, entities.WagerTypeYesNo)
		err := repo.Create(ctx, bet)
		require.NoError(t, err)

		assert.NotZero(t, bet.ID)
		assert.False(t, bet.CreatedAt.IsZero())
	})

	t.Run("get round-trips the record", func(t *testing.T) {
		bet := testutil.CreateTestGroupBet(1, 100, entities.WagerTypeOverUnder)
		require.NoError(t, repo.Create(ctx, bet))

		got, err := repo.GetByID(ctx, bet.ID)
		require.NoError(t, err)
		require.NotNil(t, got)

		assert.Equal(t, bet.Title, got.Title)
		assert.Equal(t, entities.BetModeGroup, got.Mode)
		assert.Equal(t, entities.BetStatusOpen, got.Status)
		require.NotNil(t, got.Line)
		assert.Equal(t, 50.5, *got.Line)
	})

	t.Run("missing bet returns nil without error", func(t *testing.T) {
		got, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestBetRepository_GetDetailByID(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	betRepo := NewBetRepository(testDB.DB)
	pickRepo := NewPickRepository(testDB.DB)
	ctx := context.Background()

	bet := testutil.CreateTestGroupBet(1, 100, entities.WagerTypeYesNo)
	require.NoError(t, betRepo.Create(ctx, bet))

	require.NoError(t, pickRepo.Create(ctx, testutil.CreateTestPick(bet.ID, 100, "yes")))
	require.NoError(t, pickRepo.Create(ctx, testutil.CreateTestPick(bet.ID, 200, "no")))

	detail, err := betRepo.GetDetailByID(ctx, bet.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Equal(t, bet.ID, detail.Bet.ID)
	require.Len(t, detail.Picks, 2)
	assert.Equal(t, "yes", detail.Picks[0].Value)
	assert.Equal(t, "no", detail.Picks[1].Value)
}

func TestBetRepository_SettleFromOpen(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	bet := testutil.CreateTestGroupBet(1, 100, entities.WagerTypeYesNo)
	require.NoError(t, repo.Create(ctx, bet))

	outcome := "yes"
	now := time.Now()
	bet.Status = entities.BetStatusJudged
	bet.OutcomeValue = &outcome
	bet.PayoutPerWinner = 20
	bet.JudgedAt = &now

	t.Run("first settlement wins", func(t *testing.T) {
		updated, err := repo.SettleFromOpen(ctx, bet)
		require.NoError(t, err)
		assert.True(t, updated)

		got, err := repo.GetByID(ctx, bet.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.BetStatusJudged, got.Status)
		assert.Equal(t, "yes", *got.OutcomeValue)
		assert.Equal(t, int64(20), got.PayoutPerWinner)
	})

	t.Run("second settlement loses the precondition", func(t *testing.T) {
		updated, err := repo.SettleFromOpen(ctx, bet)
		require.NoError(t, err)
		assert.False(t, updated)
	})
}

func TestBetRepository_UpdateAcceptance(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	bet := testutil.CreateTestChallenge(100, 200, entities.WagerTypeYesNo)
	require.NoError(t, repo.Create(ctx, bet))

	t.Run("pending transitions to accepted", func(t *testing.T) {
		changed, err := repo.UpdateAcceptance(ctx, bet.ID, entities.AcceptancePending, entities.AcceptanceAccepted)
		require.NoError(t, err)
		assert.True(t, changed)

		got, err := repo.GetByID(ctx, bet.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.AcceptanceAccepted, *got.Acceptance)
	})

	t.Run("stale precondition changes nothing", func(t *testing.T) {
		changed, err := repo.UpdateAcceptance(ctx, bet.ID, entities.AcceptancePending, entities.AcceptanceDeclined)
		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestBetRepository_ListOpenByGroup(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	open1 := testutil.CreateTestGroupBet(7, 100, entities.WagerTypeYesNo)
	require.NoError(t, repo.Create(ctx, open1))
	open2 := testutil.CreateTestGroupBet(7, 200, entities.WagerTypeClosestGuess)
	require.NoError(t, repo.Create(ctx, open2))
	otherGroup := testutil.CreateTestGroupBet(8, 100, entities.WagerTypeYesNo)
	require.NoError(t, repo.Create(ctx, otherGroup))

	settled := testutil.CreateTestGroupBet(7, 100, entities.WagerTypeYesNo)
	require.NoError(t, repo.Create(ctx, settled))
	outcome := "yes"
	now := time.Now()
	settled.Status = entities.BetStatusJudged
	settled.OutcomeValue = &outcome
	settled.JudgedAt = &now
	updated, err := repo.SettleFromOpen(ctx, settled)
	require.NoError(t, err)
	require.True(t, updated)

	bets, err := repo.ListOpenByGroup(ctx, 7)
	require.NoError(t, err)

	require.Len(t, bets, 2)
	for _, b := range bets {
		assert.Equal(t, entities.BetStatusOpen, b.Status)
		assert.Equal(t, int64(7), *b.GroupID)
	}
}

func TestBetRepository_ListByParticipant(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	betRepo := NewBetRepository(testDB.DB)
	pickRepo := NewPickRepository(testDB.DB)
	ctx := context.Background()

	picked := testutil.CreateTestGroupBet(1, 999, entities.WagerTypeYesNo)
	require.NoError(t, betRepo.Create(ctx, picked))
	require.NoError(t, pickRepo.Create(ctx, testutil.CreateTestPick(picked.ID, 100, "yes")))

	challenged := testutil.CreateTestChallenge(500, 100, entities.WagerTypeYesNo)
	require.NoError(t, betRepo.Create(ctx, challenged))

	unrelated := testutil.CreateTestGroupBet(1, 999, entities.WagerTypeYesNo)
	require.NoError(t, betRepo.Create(ctx, unrelated))

	bets, err := betRepo.ListByParticipant(ctx, 100)
	require.NoError(t, err)

	require.Len(t, bets, 2)
	ids := []int64{bets[0].ID, bets[1].ID}
	assert.Contains(t, ids, picked.ID)
	assert.Contains(t, ids, challenged.ID)
}

func TestBetRepository_GetExpiredPendingChallenges(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	expired := testutil.CreateTestChallenge(100, 200, entities.WagerTypeYesNo)
	expired.ClosingAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, expired))

	stillOpen := testutil.CreateTestChallenge(100, 300, entities.WagerTypeYesNo)
	require.NoError(t, repo.Create(ctx, stillOpen))

	answered := testutil.CreateTestChallenge(100, 400, entities.WagerTypeYesNo)
	answered.ClosingAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, answered))
	changed, err := repo.UpdateAcceptance(ctx, answered.ID, entities.AcceptancePending, entities.AcceptanceAccepted)
	require.NoError(t, err)
	require.True(t, changed)

	got, err := repo.GetExpiredPendingChallenges(ctx, time.Now())
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, expired.ID, got[0].ID)
}
