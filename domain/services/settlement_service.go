package services

import (
	"context"
	"fmt"
	"time"

	"betbook/domain/entities"
	"betbook/domain/events"
	"betbook/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	uowFactory interfaces.UnitOfWorkFactory
	engine     *JudgingEngine
	metrics    interfaces.MetricsRecorder
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory interfaces.UnitOfWorkFactory, engine *JudgingEngine, metrics interfaces.MetricsRecorder) interfaces.SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		engine:     engine,
		metrics:    metrics,
	}
}

// Settle judges a bet and applies every consequence in one unit of work:
// the winner set, per-pick results, group ledger deltas, and the terminal
// bet write. The terminal write carries an optimistic precondition on the
// open status, so of two concurrent judging attempts exactly one commits
// and the other fails with ErrAlreadySettled. A failed settlement leaves
// the bet open and safe to retry.
func (s *settlementService) Settle(ctx context.Context, betID int64, outcomeValue string, judgedBy int64) (*entities.SettlementResult, error) {
	start := time.Now()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin settlement: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	detail, err := uow.BetRepository().GetDetailByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet detail: %w", err)
	}
	if detail == nil || detail.Bet == nil {
		return nil, entities.ErrBetNotFound
	}
	bet := detail.Bet

	if judgedBy != bet.CreatorID {
		return nil, fmt.Errorf("%w: only the creator can judge bet %d", entities.ErrUnauthorized, betID)
	}
	if bet.IsTerminal() {
		return nil, entities.ErrAlreadySettled
	}
	if time.Now().Before(bet.ClosingAt) {
		return nil, entities.ErrNotYetClosed
	}

	result, err := s.engine.Judge(detail, outcomeValue)
	if err != nil {
		return nil, err
	}

	participants := detail.ParticipantIDs()
	pot := Pot(bet, len(participants))
	payoutPerWinner := int64(0)
	if !result.IsVoid() {
		payoutPerWinner = PayoutPerWinner(pot, len(result.Winners))
	}

	ledgerDeltas := make(map[int64]int64)
	if bet.IsGroup() && !result.IsVoid() {
		if err := s.applyLedgerDeltas(ctx, uow, detail, result, payoutPerWinner, ledgerDeltas); err != nil {
			return nil, err
		}
	}

	if err := s.writePickResults(ctx, uow, detail, result, payoutPerWinner, pot); err != nil {
		return nil, err
	}

	s.writeTerminalFields(bet, result, payoutPerWinner, pot)

	updated, err := uow.BetRepository().SettleFromOpen(ctx, bet)
	if err != nil {
		return nil, fmt.Errorf("failed to write terminal bet state: %w", err)
	}
	if !updated {
		// A concurrent settlement got there first; the deferred rollback
		// discards everything this attempt staged
		return nil, entities.ErrAlreadySettled
	}

	s.publishSettlementEvents(uow.EventBus(), detail, result, payoutPerWinner, pot)

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordSettlement(ctx, bet.Mode, bet.Status, time.Since(start).Seconds())
		s.metrics.RecordLedgerWrites(ctx, len(ledgerDeltas))
	}

	return &entities.SettlementResult{
		Bet:             bet,
		Winners:         result.Winners,
		Pot:             pot,
		PayoutPerWinner: payoutPerWinner,
		VoidReason:      result.VoidReason,
		LedgerDeltas:    ledgerDeltas,
	}, nil
}

// applyLedgerDeltas applies each group participant's win or loss to the
// (group, user) ledger and records the audit trail, inside the unit of
// work's transaction. A pick implies participation, so the picks are the
// participant list.
func (s *settlementService) applyLedgerDeltas(
	ctx context.Context,
	uow interfaces.UnitOfWork,
	detail *entities.BetDetail,
	result *entities.JudgingResult,
	payoutPerWinner int64,
	ledgerDeltas map[int64]int64,
) error {
	bet := detail.Bet
	groupID := *bet.GroupID

	for _, pick := range detail.Picks {
		won := result.IsWinner(pick.UserID)
		change := -bet.WagerAmount
		transactionType := entities.TransactionTypeBetLoss
		if won {
			change = payoutPerWinner
			transactionType = entities.TransactionTypeBetWin
		}

		entry, err := uow.LedgerRepository().ApplyDelta(ctx, groupID, pick.UserID, entities.LedgerDelta{
			BalanceChange: change,
			Won:           won,
		})
		if err != nil {
			return fmt.Errorf("failed to apply ledger delta for user %d: %w", pick.UserID, err)
		}

		metadata := map[string]any{
			"bet_id":     bet.ID,
			"title":      bet.Title,
			"wager_type": string(bet.WagerType),
			"stake":      bet.WagerAmount,
		}
		if won {
			metadata["payout"] = payoutPerWinner
		}
		audit := &entities.LedgerChange{
			GroupID:         groupID,
			UserID:          pick.UserID,
			BalanceBefore:   entry.Balance - change,
			BalanceAfter:    entry.Balance,
			ChangeAmount:    change,
			TransactionType: transactionType,
			Metadata:        metadata,
			RelatedBetID:    &bet.ID,
		}
		if err := uow.LedgerChangeRepository().Record(ctx, audit); err != nil {
			return fmt.Errorf("failed to record ledger change for user %d: %w", pick.UserID, err)
		}

		ledgerDeltas[pick.UserID] = change
	}
	return nil
}

// writePickResults stamps winner flags and payout amounts on the stored
// picks. Void settlements mark every pick a non-winner with zero payout.
func (s *settlementService) writePickResults(
	ctx context.Context,
	uow interfaces.UnitOfWork,
	detail *entities.BetDetail,
	result *entities.JudgingResult,
	payoutPerWinner int64,
	pot int64,
) error {
	if len(detail.Picks) == 0 {
		return nil
	}
	for _, pick := range detail.Picks {
		won := !result.IsVoid() && result.IsWinner(pick.UserID)
		payout := int64(0)
		if won {
			payout = payoutPerWinner
			if detail.Bet.IsHeadToHead() {
				payout = pot
			}
		}
		pick.IsWinner = &won
		pick.Payout = &payout
	}
	if err := uow.PickRepository().UpdateResults(ctx, detail.Picks); err != nil {
		return fmt.Errorf("failed to update pick results: %w", err)
	}
	return nil
}

func (s *settlementService) writeTerminalFields(bet *entities.Bet, result *entities.JudgingResult, payoutPerWinner, pot int64) {
	now := time.Now()
	bet.Status = result.Status
	bet.OutcomeValue = &result.OutcomeValue
	bet.JudgedAt = &now

	if result.IsVoid() {
		reason := result.VoidReason
		bet.VoidReason = &reason
		return
	}

	bet.PayoutPerWinner = payoutPerWinner
	if bet.IsHeadToHead() {
		bet.WinnerID = result.WinnerID
		bet.LoserID = result.LoserID
		// The full two-party pot goes to the single winner
		bet.WinnerPayout = pot
	}
}

// publishSettlementEvents stages the settlement event plus one payout
// notification per participant on the transactional bus. They reach NATS
// only after the transaction commits, and delivery failures there are
// logged rather than propagated.
func (s *settlementService) publishSettlementEvents(
	bus interfaces.EventPublisher,
	detail *entities.BetDetail,
	result *entities.JudgingResult,
	payoutPerWinner int64,
	pot int64,
) {
	bet := detail.Bet

	if err := bus.Publish(events.BetSettledEvent{
		BetID:           bet.ID,
		GroupID:         bet.GroupID,
		Status:          string(result.Status),
		OutcomeValue:    result.OutcomeValue,
		Winners:         result.Winners,
		PayoutPerWinner: payoutPerWinner,
		VoidReason:      result.VoidReason,
	}); err != nil {
		log.WithError(err).WithField("betID", bet.ID).Error("Failed to publish bet settled event")
	}

	if result.IsVoid() {
		return
	}

	for _, userID := range detail.ParticipantIDs() {
		won := result.IsWinner(userID)
		amount := bet.WagerAmount
		if won {
			amount = payoutPerWinner
			if bet.IsHeadToHead() {
				amount = pot
			}
		} else if bet.IsHeadToHead() {
			amount = bet.StakeOf(userID)
		}
		if err := bus.Publish(events.PayoutNotificationEvent{
			UserID:   userID,
			BetID:    bet.ID,
			BetTitle: bet.Title,
			Won:      won,
			Amount:   amount,
		}); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"betID":  bet.ID,
				"userID": userID,
			}).Error("Failed to publish payout notification event")
		}
	}
}
