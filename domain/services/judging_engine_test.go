package services

import (
	"testing"
	"time"

	"betbook/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupBetDetail(wagerType entities.WagerType, line *float64, picks ...*entities.Pick) *entities.BetDetail {
	groupID := int64(1)
	return &entities.BetDetail{
		Bet: &entities.Bet{
			ID:          1,
			GroupID:     &groupID,
			CreatorID:   999,
			Mode:        entities.BetModeGroup,
			WagerType:   wagerType,
			Status:      entities.BetStatusOpen,
			WagerAmount: 10,
			Line:        line,
			ClosingAt:   time.Now().Add(-time.Minute),
		},
		Picks: picks,
	}
}

func headToHeadDetail(wagerType entities.WagerType, line *float64, picks ...*entities.Pick) *entities.BetDetail {
	challengerID := int64(100)
	challengeeID := int64(200)
	accepted := entities.AcceptanceAccepted
	return &entities.BetDetail{
		Bet: &entities.Bet{
			ID:           2,
			CreatorID:    challengerID,
			Mode:         entities.BetModeHeadToHead,
			WagerType:    wagerType,
			Status:       entities.BetStatusOpen,
			WagerAmount:  50,
			Line:         line,
			ChallengerID: &challengerID,
			ChallengeeID: &challengeeID,
			Acceptance:   &accepted,
			ClosingAt:    time.Now().Add(-time.Minute),
		},
		Picks: picks,
	}
}

func pick(userID int64, value string) *entities.Pick {
	return &entities.Pick{UserID: userID, Value: value}
}

func TestJudgingEngine_GroupYesNo(t *testing.T) {
	engine := NewJudgingEngine()

	t.Run("matching picks win", func(t *testing.T) {
		detail := groupBetDetail(entities.WagerTypeYesNo, nil,
			pick(100, "yes"), pick(200, "no"), pick(300, "yes"))

		result, err := engine.Judge(detail, "yes")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusJudged, result.Status)
		assert.Equal(t, []int64{100, 300}, result.Winners)
		assert.Equal(t, "yes", result.OutcomeValue)
	})

	t.Run("no correct picks voids the bet", func(t *testing.T) {
		detail := groupBetDetail(entities.WagerTypeYesNo, nil,
			pick(100, "no"), pick(200, "no"))

		result, err := engine.Judge(detail, "yes")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusVoid, result.Status)
		assert.Equal(t, entities.VoidReasonNoCorrectPicks, result.VoidReason)
		assert.Empty(t, result.Winners)
	})

	t.Run("invalid outcome is rejected", func(t *testing.T) {
		detail := groupBetDetail(entities.WagerTypeYesNo, nil, pick(100, "yes"))

		_, err := engine.Judge(detail, "42")
		assert.ErrorIs(t, err, entities.ErrInvalidOutcome)
	})
}

func TestJudgingEngine_GroupOverUnder(t *testing.T) {
	engine := NewJudgingEngine()
	line := 50.5

	t.Run("result above the line pays over", func(t *testing.T) {
		detail := groupBetDetail(entities.WagerTypeOverUnder, &line,
			pick(100, "over"), pick(200, "under"), pick(300, "over"))

		result, err := engine.Judge(detail, "62")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusJudged, result.Status)
		assert.Equal(t, []int64{100, 300}, result.Winners)
	})

	t.Run("result below the line pays under", func(t *testing.T) {
		detail := groupBetDetail(entities.WagerTypeOverUnder, &line,
			pick(100, "over"), pick(200, "under"))

		result, err := engine.Judge(detail, "12")
		require.NoError(t, err)

		assert.Equal(t, []int64{200}, result.Winners)
	})

	t.Run("result exactly on the line is a push", func(t *testing.T) {
		wholeLine := 50.0
		detail := groupBetDetail(entities.WagerTypeOverUnder, &wholeLine,
			pick(100, "over"), pick(200, "under"))

		result, err := engine.Judge(detail, "50")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusVoid, result.Status)
		assert.Equal(t, entities.VoidReasonOnTheLine, result.VoidReason)
	})

	t.Run("one sided betting voids when the other side hits", func(t *testing.T) {
		detail := groupBetDetail(entities.WagerTypeOverUnder, &line,
			pick(100, "over"), pick(200, "over"))

		result, err := engine.Judge(detail, "10")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusVoid, result.Status)
		assert.Equal(t, entities.VoidReasonNoCorrectPicks, result.VoidReason)
	})
}

func TestJudgingEngine_GroupClosestGuess(t *testing.T) {
	engine := NewJudgingEngine()

	t.Run("closest guess wins", func(t *testing.T) {
		detail := groupBetDetail(entities.WagerTypeClosestGuess, nil,
			pick(100, "10"), pick(200, "20"), pick(300, "30"))

		result, err := engine.Judge(detail, "15")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusJudged, result.Status)
		assert.Equal(t, []int64{100}, result.Winners)
	})

	t.Run("equidistant guesses tie and split", func(t *testing.T) {
		detail := groupBetDetail(entities.WagerTypeClosestGuess, nil,
			pick(100, "10"), pick(200, "20"), pick(300, "90"))

		result, err := engine.Judge(detail, "15")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusJudged, result.Status)
		assert.Equal(t, []int64{100, 200}, result.Winners)
	})

	t.Run("zero picks voids the bet", func(t *testing.T) {
		detail := groupBetDetail(entities.WagerTypeClosestGuess, nil)

		result, err := engine.Judge(detail, "15")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusVoid, result.Status)
	})
}

func TestJudgingEngine_HeadToHead(t *testing.T) {
	engine := NewJudgingEngine()

	t.Run("yes_no picks decide winner and loser", func(t *testing.T) {
		detail := headToHeadDetail(entities.WagerTypeYesNo, nil,
			pick(100, "yes"), pick(200, "no"))

		result, err := engine.Judge(detail, "no")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusJudged, result.Status)
		require.NotNil(t, result.WinnerID)
		require.NotNil(t, result.LoserID)
		assert.Equal(t, int64(200), *result.WinnerID)
		assert.Equal(t, int64(100), *result.LoserID)
	})

	t.Run("same wrong pick voids for no one correct", func(t *testing.T) {
		detail := headToHeadDetail(entities.WagerTypeYesNo, nil,
			pick(100, "yes"), pick(200, "yes"))

		result, err := engine.Judge(detail, "no")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusVoid, result.Status)
		assert.Equal(t, entities.VoidReasonNoOneCorrect, result.VoidReason)
	})

	t.Run("same correct pick voids as exact tie", func(t *testing.T) {
		detail := headToHeadDetail(entities.WagerTypeYesNo, nil,
			pick(100, "yes"), pick(200, "yes"))

		result, err := engine.Judge(detail, "yes")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusVoid, result.Status)
		assert.Equal(t, entities.VoidReasonExactTie, result.VoidReason)
	})

	t.Run("over_under sides decide against the line", func(t *testing.T) {
		line := 50.5
		detail := headToHeadDetail(entities.WagerTypeOverUnder, &line,
			pick(100, "over"), pick(200, "under"))

		result, err := engine.Judge(detail, "62")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusJudged, result.Status)
		assert.Equal(t, int64(100), *result.WinnerID)
		assert.Equal(t, int64(200), *result.LoserID)
	})

	t.Run("over_under push voids on the line", func(t *testing.T) {
		line := 50.0
		detail := headToHeadDetail(entities.WagerTypeOverUnder, &line,
			pick(100, "over"), pick(200, "under"))

		result, err := engine.Judge(detail, "50")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusVoid, result.Status)
		assert.Equal(t, entities.VoidReasonOnTheLine, result.VoidReason)
	})

	t.Run("closest guess compares distances", func(t *testing.T) {
		detail := headToHeadDetail(entities.WagerTypeClosestGuess, nil,
			pick(100, "48"), pick(200, "60"))

		result, err := engine.Judge(detail, "50")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusJudged, result.Status)
		assert.Equal(t, int64(100), *result.WinnerID)
	})

	t.Run("equidistant guesses void as exact tie", func(t *testing.T) {
		detail := headToHeadDetail(entities.WagerTypeClosestGuess, nil,
			pick(100, "48"), pick(200, "52"))

		result, err := engine.Judge(detail, "50")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusVoid, result.Status)
		assert.Equal(t, entities.VoidReasonExactTie, result.VoidReason)
	})

	t.Run("missing pick voids the challenge", func(t *testing.T) {
		detail := headToHeadDetail(entities.WagerTypeYesNo, nil,
			pick(100, "yes"))

		result, err := engine.Judge(detail, "yes")
		require.NoError(t, err)

		assert.Equal(t, entities.BetStatusVoid, result.Status)
		assert.Equal(t, entities.VoidReasonMissingPick, result.VoidReason)
	})
}
