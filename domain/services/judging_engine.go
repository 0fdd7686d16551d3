package services

import (
	"fmt"
	"math"

	"betbook/domain/entities"
)

// JudgingEngine contains the pure decision logic for settling bets. It
// computes a complete result and writes nothing; the settlement service
// owns persistence.
type JudgingEngine struct{}

// NewJudgingEngine creates a new judging engine
func NewJudgingEngine() *JudgingEngine {
	return &JudgingEngine{}
}

// Judge computes the winner set or void for a bet given the authoritative
// outcome value. Ties in closest-guess group bets are preserved as
// multiple winners; head-to-head bets are compared directly and produce a
// single winner and loser or a void.
func (e *JudgingEngine) Judge(detail *entities.BetDetail, rawOutcome string) (*entities.JudgingResult, error) {
	bet := detail.Bet

	canonical, numeric, err := entities.ParseOutcomeValue(bet.WagerType, rawOutcome)
	if err != nil {
		return nil, err
	}

	if bet.WagerType == entities.WagerTypeOverUnder && bet.Line == nil {
		return nil, fmt.Errorf("over/under bet %d has no line", bet.ID)
	}

	if bet.IsHeadToHead() {
		return e.judgeHeadToHead(detail, canonical, numeric)
	}
	return e.judgeGroup(detail, canonical, numeric)
}

func (e *JudgingEngine) judgeGroup(detail *entities.BetDetail, canonical string, numeric float64) (*entities.JudgingResult, error) {
	bet := detail.Bet

	switch bet.WagerType {
	case entities.WagerTypeYesNo:
		var winners []int64
		for _, p := range detail.Picks {
			if p.Value == canonical {
				winners = append(winners, p.UserID)
			}
		}
		if len(winners) == 0 {
			return voidResult(canonical, entities.VoidReasonNoCorrectPicks), nil
		}
		return judgedResult(canonical, winners), nil

	case entities.WagerTypeOverUnder:
		if numeric == *bet.Line {
			// A push: the result landed exactly on the line
			return voidResult(canonical, entities.VoidReasonOnTheLine), nil
		}
		winningSide := entities.PickUnder
		if numeric > *bet.Line {
			winningSide = entities.PickOver
		}
		var winners []int64
		for _, p := range detail.Picks {
			if p.Value == winningSide {
				winners = append(winners, p.UserID)
			}
		}
		if len(winners) == 0 {
			return voidResult(canonical, entities.VoidReasonNoCorrectPicks), nil
		}
		return judgedResult(canonical, winners), nil

	case entities.WagerTypeClosestGuess:
		if len(detail.Picks) == 0 {
			return voidResult(canonical, entities.VoidReasonNoCorrectPicks), nil
		}
		minDistance := math.Inf(1)
		var winners []int64
		for _, p := range detail.Picks {
			guess, err := p.NumericValue()
			if err != nil {
				return nil, fmt.Errorf("stored pick for user %d is corrupt: %w", p.UserID, err)
			}
			distance := math.Abs(guess - numeric)
			switch {
			case distance < minDistance:
				minDistance = distance
				winners = []int64{p.UserID}
			case distance == minDistance:
				winners = append(winners, p.UserID)
			}
		}
		return judgedResult(canonical, winners), nil

	default:
		return nil, fmt.Errorf("unknown wager type %q", bet.WagerType)
	}
}

func (e *JudgingEngine) judgeHeadToHead(detail *entities.BetDetail, canonical string, numeric float64) (*entities.JudgingResult, error) {
	bet := detail.Bet
	if bet.ChallengerID == nil || bet.ChallengeeID == nil {
		return nil, fmt.Errorf("head-to-head bet %d is missing a participant", bet.ID)
	}

	challengerPick := detail.PickOf(*bet.ChallengerID)
	challengeePick := detail.PickOf(*bet.ChallengeeID)
	if challengerPick == nil || challengeePick == nil {
		// Normally the expired-challenge reaper voids these before anyone
		// can judge; handle it anyway for directly judged bets
		return voidResult(canonical, entities.VoidReasonMissingPick), nil
	}

	switch bet.WagerType {
	case entities.WagerTypeYesNo, entities.WagerTypeOverUnder:
		target := canonical
		if bet.WagerType == entities.WagerTypeOverUnder {
			if numeric == *bet.Line {
				return voidResult(canonical, entities.VoidReasonOnTheLine), nil
			}
			target = entities.PickUnder
			if numeric > *bet.Line {
				target = entities.PickOver
			}
		}
		challengerCorrect := challengerPick.Value == target
		challengeeCorrect := challengeePick.Value == target
		switch {
		case challengerCorrect && !challengeeCorrect:
			return headToHeadResult(canonical, *bet.ChallengerID, *bet.ChallengeeID), nil
		case challengeeCorrect && !challengerCorrect:
			return headToHeadResult(canonical, *bet.ChallengeeID, *bet.ChallengerID), nil
		case challengerCorrect && challengeeCorrect:
			return voidResult(canonical, entities.VoidReasonExactTie), nil
		default:
			return voidResult(canonical, entities.VoidReasonNoOneCorrect), nil
		}

	case entities.WagerTypeClosestGuess:
		challengerGuess, err := challengerPick.NumericValue()
		if err != nil {
			return nil, fmt.Errorf("stored pick for user %d is corrupt: %w", challengerPick.UserID, err)
		}
		challengeeGuess, err := challengeePick.NumericValue()
		if err != nil {
			return nil, fmt.Errorf("stored pick for user %d is corrupt: %w", challengeePick.UserID, err)
		}
		challengerDistance := math.Abs(challengerGuess - numeric)
		challengeeDistance := math.Abs(challengeeGuess - numeric)
		switch {
		case challengerDistance < challengeeDistance:
			return headToHeadResult(canonical, *bet.ChallengerID, *bet.ChallengeeID), nil
		case challengeeDistance < challengerDistance:
			return headToHeadResult(canonical, *bet.ChallengeeID, *bet.ChallengerID), nil
		default:
			return voidResult(canonical, entities.VoidReasonExactTie), nil
		}

	default:
		return nil, fmt.Errorf("unknown wager type %q", bet.WagerType)
	}
}

func judgedResult(outcome string, winners []int64) *entities.JudgingResult {
	return &entities.JudgingResult{
		Status:       entities.BetStatusJudged,
		OutcomeValue: outcome,
		Winners:      winners,
	}
}

func voidResult(outcome, reason string) *entities.JudgingResult {
	return &entities.JudgingResult{
		Status:       entities.BetStatusVoid,
		OutcomeValue: outcome,
		VoidReason:   reason,
	}
}

func headToHeadResult(outcome string, winnerID, loserID int64) *entities.JudgingResult {
	return &entities.JudgingResult{
		Status:       entities.BetStatusJudged,
		OutcomeValue: outcome,
		Winners:      []int64{winnerID},
		WinnerID:     &winnerID,
		LoserID:      &loserID,
	}
}
