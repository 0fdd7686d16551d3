package services

import (
	"context"
	"testing"
	"time"

	"betbook/domain/entities"
	"betbook/domain/events"
	"betbook/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupSettlementService() (*testhelpers.FakeUnitOfWorkFactory, *settlementService) {
	factory := testhelpers.NewFakeUnitOfWorkFactory()
	svc := NewSettlementService(factory, NewJudgingEngine(), nil).(*settlementService)
	return factory, svc
}

func TestSettlementService_Settle_GroupOverUnder(t *testing.T) {
	ctx := context.Background()
	groupID := int64(1)
	creatorID := int64(999)
	line := 50.5

	detail := &entities.BetDetail{
		Bet: &entities.Bet{
			ID:          10,
			GroupID:     &groupID,
			CreatorID:   creatorID,
			Title:       "points scored",
			Mode:        entities.BetModeGroup,
			WagerType:   entities.WagerTypeOverUnder,
			Status:      entities.BetStatusOpen,
			WagerAmount: 10,
			Line:        &line,
			ClosingAt:   time.Now().Add(-time.Minute),
		},
		Picks: []*entities.Pick{
			{ID: 1, BetID: 10, UserID: 100, Value: "over"},
			{ID: 2, BetID: 10, UserID: 200, Value: "over"},
			{ID: 3, BetID: 10, UserID: 300, Value: "under"},
			{ID: 4, BetID: 10, UserID: 400, Value: "under"},
		},
	}

	factory, svc := setupSettlementService()
	uow := factory.UoW

	uow.BetRepo.On("GetDetailByID", mock.Anything, int64(10)).Return(detail, nil)

	// Winners gain the payout, losers lose their stake
	for _, userID := range []int64{100, 200} {
		uow.LedgerRepo.On("ApplyDelta", mock.Anything, groupID, userID,
			entities.LedgerDelta{BalanceChange: 20, Won: true}).
			Return(&entities.LedgerEntry{GroupID: groupID, UserID: userID, Balance: 20, Wins: 1, TotalBets: 1}, nil)
	}
	for _, userID := range []int64{300, 400} {
		uow.LedgerRepo.On("ApplyDelta", mock.Anything, groupID, userID,
			entities.LedgerDelta{BalanceChange: -10, Won: false}).
			Return(&entities.LedgerEntry{GroupID: groupID, UserID: userID, Balance: -10, Losses: 1, TotalBets: 1}, nil)
	}
	uow.LedgerChangeRepo.On("Record", mock.Anything, mock.Anything).Return(nil).Times(4)
	uow.PickRepo.On("UpdateResults", mock.Anything, detail.Picks).Return(nil)
	uow.BetRepo.On("SettleFromOpen", mock.Anything, detail.Bet).Return(true, nil)

	var published []events.Event
	uow.Publisher.On("Publish", mock.Anything).Run(func(args mock.Arguments) {
		published = append(published, args.Get(0).(events.Event))
	}).Return(nil)

	result, err := svc.Settle(ctx, 10, "62", creatorID)
	require.NoError(t, err)

	assert.Equal(t, int64(40), result.Pot)
	assert.Equal(t, int64(20), result.PayoutPerWinner)
	assert.Equal(t, []int64{100, 200}, result.Winners)
	assert.Equal(t, map[int64]int64{100: 20, 200: 20, 300: -10, 400: -10}, result.LedgerDeltas)

	assert.Equal(t, entities.BetStatusJudged, detail.Bet.Status)
	assert.Equal(t, "62", *detail.Bet.OutcomeValue)
	assert.Equal(t, int64(20), detail.Bet.PayoutPerWinner)
	require.NotNil(t, detail.Bet.JudgedAt)

	// Picks carry their results
	assert.True(t, *detail.Picks[0].IsWinner)
	assert.Equal(t, int64(20), *detail.Picks[0].Payout)
	assert.False(t, *detail.Picks[2].IsWinner)
	assert.Equal(t, int64(0), *detail.Picks[2].Payout)

	// One settled event, then a payout notification per participant
	require.Len(t, published, 5)
	settled, ok := published[0].(events.BetSettledEvent)
	require.True(t, ok)
	assert.Equal(t, int64(10), settled.BetID)
	assert.Equal(t, []int64{100, 200}, settled.Winners)
	assert.Equal(t, int64(20), settled.PayoutPerWinner)
	for _, event := range published[1:] {
		assert.Equal(t, events.EventTypePayoutNotification, event.Type())
	}

	assert.Equal(t, 1, uow.CommitCount)
	uow.LedgerRepo.AssertExpectations(t)
	uow.LedgerChangeRepo.AssertExpectations(t)
	uow.BetRepo.AssertExpectations(t)
}

func TestSettlementService_Settle_GroupVoid(t *testing.T) {
	ctx := context.Background()
	groupID := int64(1)
	creatorID := int64(999)
	line := 50.0

	detail := &entities.BetDetail{
		Bet: &entities.Bet{
			ID:          11,
			GroupID:     &groupID,
			CreatorID:   creatorID,
			Mode:        entities.BetModeGroup,
			WagerType:   entities.WagerTypeOverUnder,
			Status:      entities.BetStatusOpen,
			WagerAmount: 10,
			Line:        &line,
			ClosingAt:   time.Now().Add(-time.Minute),
		},
		Picks: []*entities.Pick{
			{ID: 1, BetID: 11, UserID: 100, Value: "over"},
			{ID: 2, BetID: 11, UserID: 200, Value: "under"},
		},
	}

	factory, svc := setupSettlementService()
	uow := factory.UoW

	uow.BetRepo.On("GetDetailByID", mock.Anything, int64(11)).Return(detail, nil)
	uow.PickRepo.On("UpdateResults", mock.Anything, detail.Picks).Return(nil)
	uow.BetRepo.On("SettleFromOpen", mock.Anything, detail.Bet).Return(true, nil)
	uow.Publisher.On("Publish", mock.Anything).Return(nil)

	result, err := svc.Settle(ctx, 11, "50", creatorID)
	require.NoError(t, err)

	// A push touches no ledgers and pays nobody
	assert.Equal(t, entities.VoidReasonOnTheLine, result.VoidReason)
	assert.Empty(t, result.LedgerDeltas)
	assert.Equal(t, entities.BetStatusVoid, detail.Bet.Status)
	assert.Equal(t, entities.VoidReasonOnTheLine, *detail.Bet.VoidReason)
	assert.False(t, *detail.Picks[0].IsWinner)
	uow.LedgerRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettlementService_Settle_HeadToHead(t *testing.T) {
	ctx := context.Background()
	challengerID := int64(100)
	challengeeID := int64(200)
	accepted := entities.AcceptanceAccepted
	favored := int64(150)
	underdog := int64(50)

	detail := &entities.BetDetail{
		Bet: &entities.Bet{
			ID:            12,
			CreatorID:     challengerID,
			Title:         "guess the score",
			Mode:          entities.BetModeHeadToHead,
			WagerType:     entities.WagerTypeClosestGuess,
			Status:        entities.BetStatusOpen,
			WagerAmount:   100,
			ChallengerID:  &challengerID,
			ChallengeeID:  &challengeeID,
			Acceptance:    &accepted,
			FavoredStake:  &favored,
			UnderdogStake: &underdog,
			ClosingAt:     time.Now().Add(-time.Minute),
		},
		Picks: []*entities.Pick{
			{ID: 1, BetID: 12, UserID: challengerID, Value: "48"},
			{ID: 2, BetID: 12, UserID: challengeeID, Value: "60"},
		},
	}

	factory, svc := setupSettlementService()
	uow := factory.UoW

	uow.BetRepo.On("GetDetailByID", mock.Anything, int64(12)).Return(detail, nil)
	uow.PickRepo.On("UpdateResults", mock.Anything, detail.Picks).Return(nil)
	uow.BetRepo.On("SettleFromOpen", mock.Anything, detail.Bet).Return(true, nil)
	uow.Publisher.On("Publish", mock.Anything).Return(nil)

	result, err := svc.Settle(ctx, 12, "50", challengerID)
	require.NoError(t, err)

	// Head-to-head settlements never touch a group ledger
	assert.Empty(t, result.LedgerDeltas)
	uow.LedgerRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	assert.Equal(t, int64(200), result.Pot)
	assert.Equal(t, int64(100), *detail.Bet.WinnerID)
	assert.Equal(t, int64(200), *detail.Bet.LoserID)
	assert.Equal(t, int64(200), detail.Bet.WinnerPayout)
	assert.Equal(t, int64(200), *detail.Picks[0].Payout)
}

func TestSettlementService_Settle_Guards(t *testing.T) {
	ctx := context.Background()
	groupID := int64(1)
	creatorID := int64(999)

	openDetail := func() *entities.BetDetail {
		return &entities.BetDetail{
			Bet: &entities.Bet{
				ID:          13,
				GroupID:     &groupID,
				CreatorID:   creatorID,
				Mode:        entities.BetModeGroup,
				WagerType:   entities.WagerTypeYesNo,
				Status:      entities.BetStatusOpen,
				WagerAmount: 10,
				ClosingAt:   time.Now().Add(-time.Minute),
			},
			Picks: []*entities.Pick{{ID: 1, BetID: 13, UserID: 100, Value: "yes"}},
		}
	}

	t.Run("unknown bet", func(t *testing.T) {
		factory, svc := setupSettlementService()
		factory.UoW.BetRepo.On("GetDetailByID", mock.Anything, int64(13)).Return(nil, nil)

		_, err := svc.Settle(ctx, 13, "yes", creatorID)
		assert.ErrorIs(t, err, entities.ErrBetNotFound)
	})

	t.Run("only the creator judges", func(t *testing.T) {
		factory, svc := setupSettlementService()
		factory.UoW.BetRepo.On("GetDetailByID", mock.Anything, int64(13)).Return(openDetail(), nil)

		_, err := svc.Settle(ctx, 13, "yes", 12345)
		assert.ErrorIs(t, err, entities.ErrUnauthorized)
	})

	t.Run("terminal bets settle once", func(t *testing.T) {
		factory, svc := setupSettlementService()
		detail := openDetail()
		detail.Bet.Status = entities.BetStatusJudged
		factory.UoW.BetRepo.On("GetDetailByID", mock.Anything, int64(13)).Return(detail, nil)

		_, err := svc.Settle(ctx, 13, "yes", creatorID)
		assert.ErrorIs(t, err, entities.ErrAlreadySettled)
	})

	t.Run("open bets cannot be judged early", func(t *testing.T) {
		factory, svc := setupSettlementService()
		detail := openDetail()
		detail.Bet.ClosingAt = time.Now().Add(time.Hour)
		factory.UoW.BetRepo.On("GetDetailByID", mock.Anything, int64(13)).Return(detail, nil)

		_, err := svc.Settle(ctx, 13, "yes", creatorID)
		assert.ErrorIs(t, err, entities.ErrNotYetClosed)
	})

	t.Run("losing the terminal write race surfaces as already settled", func(t *testing.T) {
		factory, svc := setupSettlementService()
		uow := factory.UoW
		detail := openDetail()

		uow.BetRepo.On("GetDetailByID", mock.Anything, int64(13)).Return(detail, nil)
		uow.LedgerRepo.On("ApplyDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&entities.LedgerEntry{Balance: 10}, nil)
		uow.LedgerChangeRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
		uow.PickRepo.On("UpdateResults", mock.Anything, mock.Anything).Return(nil)
		uow.BetRepo.On("SettleFromOpen", mock.Anything, detail.Bet).Return(false, nil)

		_, err := svc.Settle(ctx, 13, "yes", creatorID)
		assert.ErrorIs(t, err, entities.ErrAlreadySettled)
		assert.Equal(t, 0, uow.CommitCount)
		assert.Equal(t, 1, uow.RollbackCount)
	})
}
