package testutil

import (
	"time"

	"betbook/domain/entities"
)

// CreateTestGroupBet creates an open group bet with default values
func CreateTestGroupBet(groupID, creatorID int64, wagerType entities.WagerType) *entities.Bet {
	bet := &entities.Bet{
		GroupID:     &groupID,
		CreatorID:   creatorID,
		Title:       "test group bet",
		Mode:        entities.BetModeGroup,
		WagerType:   wagerType,
		Status:      entities.BetStatusOpen,
		WagerAmount: 100,
		ClosingAt:   time.Now().Add(time.Hour),
	}
	if wagerType == entities.WagerTypeOverUnder {
		line := 50.5
		bet.Line = &line
	}
	return bet
}

// CreateTestChallenge creates a pending head-to-head bet with default values
func CreateTestChallenge(challengerID, challengeeID int64, wagerType entities.WagerType) *entities.Bet {
	pending := entities.AcceptancePending
	bet := &entities.Bet{
		CreatorID:    challengerID,
		Title:        "test challenge",
		Mode:         entities.BetModeHeadToHead,
		WagerType:    wagerType,
		Status:       entities.BetStatusOpen,
		WagerAmount:  100,
		ChallengerID: &challengerID,
		ChallengeeID: &challengeeID,
		Acceptance:   &pending,
		ClosingAt:    time.Now().Add(time.Hour),
	}
	if wagerType == entities.WagerTypeOverUnder {
		line := 50.5
		bet.Line = &line
	}
	return bet
}

// CreateTestPick creates a pick for a bet
func CreateTestPick(betID, userID int64, value string) *entities.Pick {
	return &entities.Pick{
		BetID:  betID,
		UserID: userID,
		Value:  value,
	}
}

// CreateTestLedgerChange creates a ledger audit entry with default values
func CreateTestLedgerChange(groupID, userID int64, transactionType entities.TransactionType) *entities.LedgerChange {
	return &entities.LedgerChange{
		GroupID:         groupID,
		UserID:          userID,
		BalanceBefore:   0,
		BalanceAfter:    200,
		ChangeAmount:    200,
		TransactionType: transactionType,
		Metadata: map[string]any{
			"test": true,
		},
	}
}
