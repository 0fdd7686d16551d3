package services

import (
	"testing"

	"betbook/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestPot(t *testing.T) {
	t.Run("group pot is stake times participants", func(t *testing.T) {
		groupID := int64(1)
		bet := &entities.Bet{Mode: entities.BetModeGroup, GroupID: &groupID, WagerAmount: 10}
		assert.Equal(t, int64(40), Pot(bet, 4))
	})

	t.Run("even head to head pot doubles the stake", func(t *testing.T) {
		bet := &entities.Bet{Mode: entities.BetModeHeadToHead, WagerAmount: 50}
		assert.Equal(t, int64(100), Pot(bet, 2))
	})

	t.Run("odds pot sums the actual stakes", func(t *testing.T) {
		favored := int64(150)
		underdog := int64(50)
		bet := &entities.Bet{
			Mode:          entities.BetModeHeadToHead,
			WagerAmount:   100,
			FavoredStake:  &favored,
			UnderdogStake: &underdog,
		}
		assert.Equal(t, int64(200), Pot(bet, 2))
	})
}

func TestPayoutPerWinner(t *testing.T) {
	t.Run("splits evenly", func(t *testing.T) {
		assert.Equal(t, int64(20), PayoutPerWinner(40, 2))
	})

	t.Run("zero winners pay nothing", func(t *testing.T) {
		assert.Equal(t, int64(0), PayoutPerWinner(40, 0))
	})

	t.Run("integer division drops the remainder", func(t *testing.T) {
		payout := PayoutPerWinner(100, 3)
		assert.Equal(t, int64(33), payout)
		// The lost unit stays in the pot rather than being redistributed
		assert.LessOrEqual(t, payout*3, int64(100))
	})
}
