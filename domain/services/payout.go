package services

import (
	"betbook/domain/entities"
)

// Pot returns the total currency at stake for a bet. Group pots are the
// per-participant stake times the participant count; head-to-head pots are
// the sum of the two sides' actual stakes, which differ when an odds ratio
// is configured.
func Pot(bet *entities.Bet, participantCount int) int64 {
	if bet.IsHeadToHead() {
		if bet.HasOdds() {
			return *bet.FavoredStake + *bet.UnderdogStake
		}
		return bet.WagerAmount * 2
	}
	return bet.WagerAmount * int64(participantCount)
}

// PayoutPerWinner splits the pot evenly across winners in whole currency
// units. The integer-division remainder is an accepted rounding loss, not
// redistributed, so payoutPerWinner * winners never exceeds the pot.
func PayoutPerWinner(pot int64, winnerCount int) int64 {
	if winnerCount == 0 {
		return 0
	}
	return pot / int64(winnerCount)
}
