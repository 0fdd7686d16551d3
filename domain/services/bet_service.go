package services

import (
	"context"
	"fmt"
	"time"

	"betbook/config"
	"betbook/domain/entities"
	"betbook/domain/events"
	"betbook/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type betService struct {
	config     *config.Config
	uowFactory interfaces.UnitOfWorkFactory
	metrics    interfaces.MetricsRecorder
}

// NewBetService creates a new bet service
func NewBetService(uowFactory interfaces.UnitOfWorkFactory, metrics interfaces.MetricsRecorder) interfaces.BetService {
	return &betService{
		config:     config.Get(),
		uowFactory: uowFactory,
		metrics:    metrics,
	}
}

// CreateGroupBet creates an open group-mode bet with zero picks
func (s *betService) CreateGroupBet(ctx context.Context, groupID, creatorID int64, title string, wagerType entities.WagerType, wagerAmount int64, line *float64, closingAt time.Time) (*entities.Bet, error) {
	if err := s.validateTerms(title, wagerType, wagerAmount, line, closingAt); err != nil {
		return nil, err
	}

	bet := &entities.Bet{
		GroupID:     &groupID,
		CreatorID:   creatorID,
		Title:       title,
		Mode:        entities.BetModeGroup,
		WagerType:   wagerType,
		Status:      entities.BetStatusOpen,
		WagerAmount: wagerAmount,
		Line:        line,
		ClosingAt:   closingAt,
	}

	return s.createBet(ctx, bet)
}

// ProposeChallenge creates a pending head-to-head bet. The challenger is
// the favored side when an odds ratio is configured.
func (s *betService) ProposeChallenge(ctx context.Context, challengerID, challengeeID int64, title string, wagerType entities.WagerType, wagerAmount int64, line *float64, odds *entities.OddsRatio, closingAt time.Time) (*entities.Bet, error) {
	if challengerID == challengeeID {
		return nil, fmt.Errorf("cannot challenge yourself")
	}
	if err := s.validateTerms(title, wagerType, wagerAmount, line, closingAt); err != nil {
		return nil, err
	}
	if odds != nil && (odds.FavoredShare <= 0 || odds.UnderdogShare <= 0) {
		return nil, fmt.Errorf("odds ratio shares must be positive")
	}

	pending := entities.AcceptancePending
	bet := &entities.Bet{
		CreatorID:    challengerID,
		Title:        title,
		Mode:         entities.BetModeHeadToHead,
		WagerType:    wagerType,
		Status:       entities.BetStatusOpen,
		WagerAmount:  wagerAmount,
		Line:         line,
		ChallengerID: &challengerID,
		ChallengeeID: &challengeeID,
		Acceptance:   &pending,
		ClosingAt:    closingAt,
	}
	if odds != nil {
		bet.FavoredStake = &odds.FavoredShare
		bet.UnderdogStake = &odds.UnderdogShare
	}

	return s.createBet(ctx, bet)
}

func (s *betService) validateTerms(title string, wagerType entities.WagerType, wagerAmount int64, line *float64, closingAt time.Time) error {
	if title == "" {
		return fmt.Errorf("bet title cannot be empty")
	}
	if len(title) > 500 {
		return fmt.Errorf("bet title too long")
	}
	if wagerAmount <= 0 {
		return fmt.Errorf("wager amount must be positive")
	}
	if s.config.MaxWagerAmount > 0 && wagerAmount > s.config.MaxWagerAmount {
		return fmt.Errorf("wager amount exceeds maximum of %d", s.config.MaxWagerAmount)
	}
	if !closingAt.After(time.Now()) {
		return fmt.Errorf("closing time must be in the future")
	}
	switch wagerType {
	case entities.WagerTypeOverUnder:
		if line == nil {
			return fmt.Errorf("over/under bets require a line")
		}
	case entities.WagerTypeYesNo, entities.WagerTypeClosestGuess:
		if line != nil {
			return fmt.Errorf("only over/under bets take a line")
		}
	default:
		return fmt.Errorf("invalid wager type: %s", wagerType)
	}
	return nil
}

func (s *betService) createBet(ctx context.Context, bet *entities.Bet) (*entities.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	if err := uow.EventBus().Publish(events.BetCreatedEvent{
		BetID:     bet.ID,
		GroupID:   bet.GroupID,
		CreatorID: bet.CreatorID,
		Title:     bet.Title,
		Mode:      string(bet.Mode),
		WagerType: string(bet.WagerType),
	}); err != nil {
		log.WithError(err).WithField("betID", bet.ID).Error("Failed to publish bet created event")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bet creation: %w", err)
	}
	return bet, nil
}

// SubmitPick stores one prediction per participant per bet. Duplicate
// submissions, including two concurrent ones from the same user, lose to
// the picks table's uniqueness constraint and surface as ErrDuplicatePick.
func (s *betService) SubmitPick(ctx context.Context, betID, userID int64, value string) (*entities.Pick, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	bet, err := uow.BetRepository().GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, entities.ErrBetNotFound
	}

	if bet.IsHeadToHead() {
		if !bet.IsParticipant(userID) {
			return nil, entities.ErrNotParticipant
		}
		if bet.Acceptance != nil && *bet.Acceptance == entities.AcceptanceDeclined {
			return nil, entities.ErrChallengeDeclined
		}
	}

	if bet.IsClosed(time.Now()) {
		return nil, entities.ErrBetClosed
	}

	normalized, err := entities.NormalizePickValue(bet.WagerType, value)
	if err != nil {
		return nil, err
	}

	pick := &entities.Pick{
		BetID:  betID,
		UserID: userID,
		Value:  normalized,
	}
	if err := uow.PickRepository().Create(ctx, pick); err != nil {
		return nil, err
	}

	// A challengee's first pick accepts the challenge
	if bet.IsHeadToHead() && bet.ChallengeeID != nil && *bet.ChallengeeID == userID &&
		bet.Acceptance != nil && *bet.Acceptance == entities.AcceptancePending {
		accepted, err := uow.BetRepository().UpdateAcceptance(ctx, betID, entities.AcceptancePending, entities.AcceptanceAccepted)
		if err != nil {
			return nil, fmt.Errorf("failed to accept challenge: %w", err)
		}
		if !accepted {
			// A concurrent decline won the race; the pick must not stand
			return nil, entities.ErrChallengeDeclined
		}
		if err := uow.EventBus().Publish(events.ChallengeRespondedEvent{
			BetID:        betID,
			ChallengeeID: userID,
			Accepted:     true,
		}); err != nil {
			log.WithError(err).WithField("betID", betID).Error("Failed to publish challenge responded event")
		}
	}

	if err := uow.EventBus().Publish(events.PickSubmittedEvent{
		BetID:  betID,
		UserID: userID,
	}); err != nil {
		log.WithError(err).WithField("betID", betID).Error("Failed to publish pick submitted event")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit pick: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordPickSubmitted(ctx, bet.WagerType)
	}
	return pick, nil
}

// DeclineChallenge declines a pending head-to-head bet. Only the
// challengee can decline, and only while the challenge is still pending.
func (s *betService) DeclineChallenge(ctx context.Context, betID, userID int64) (*entities.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	bet, err := uow.BetRepository().GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, entities.ErrBetNotFound
	}
	if !bet.IsHeadToHead() || bet.ChallengeeID == nil || *bet.ChallengeeID != userID {
		return nil, fmt.Errorf("%w: only the challengee can decline", entities.ErrUnauthorized)
	}

	declined, err := uow.BetRepository().UpdateAcceptance(ctx, betID, entities.AcceptancePending, entities.AcceptanceDeclined)
	if err != nil {
		return nil, fmt.Errorf("failed to decline challenge: %w", err)
	}
	if !declined {
		return nil, fmt.Errorf("challenge is no longer pending")
	}

	if err := uow.EventBus().Publish(events.ChallengeRespondedEvent{
		BetID:        betID,
		ChallengeeID: userID,
		Accepted:     false,
	}); err != nil {
		log.WithError(err).WithField("betID", betID).Error("Failed to publish challenge responded event")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit decline: %w", err)
	}

	state := entities.AcceptanceDeclined
	bet.Acceptance = &state
	return bet, nil
}

// GetBetDetail retrieves a bet with its picks
func (s *betService) GetBetDetail(ctx context.Context, betID int64) (*entities.BetDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	detail, err := uow.BetRepository().GetDetailByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet detail: %w", err)
	}
	if detail == nil {
		return nil, entities.ErrBetNotFound
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit read: %w", err)
	}
	return detail, nil
}

// ListOpenBets returns a group's open bets
func (s *betService) ListOpenBets(ctx context.Context, groupID int64) ([]*entities.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	bets, err := uow.BetRepository().ListOpenByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open bets: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit read: %w", err)
	}
	return bets, nil
}

// ListBetsForUser returns the bets a user participates in
func (s *betService) ListBetsForUser(ctx context.Context, userID int64) ([]*entities.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	bets, err := uow.BetRepository().ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets for user: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit read: %w", err)
	}
	return bets, nil
}

// VoidExpiredChallenges voids head-to-head bets still pending acceptance
// past their closing time. Run periodically from the reaper loop.
func (s *betService) VoidExpiredChallenges(ctx context.Context) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	expired, err := uow.BetRepository().GetExpiredPendingChallenges(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to get expired challenges: %w", err)
	}

	swept := 0
	now := time.Now()
	for _, bet := range expired {
		reason := entities.VoidReasonChallengeExpired
		bet.Status = entities.BetStatusVoid
		bet.VoidReason = &reason
		bet.JudgedAt = &now

		voided, err := uow.BetRepository().SettleFromOpen(ctx, bet)
		if err != nil {
			return 0, fmt.Errorf("failed to void expired challenge %d: %w", bet.ID, err)
		}
		if !voided {
			// Lost a race against a direct settlement; skip it
			continue
		}
		swept++

		if err := uow.EventBus().Publish(events.BetSettledEvent{
			BetID:      bet.ID,
			GroupID:    bet.GroupID,
			Status:     string(entities.BetStatusVoid),
			VoidReason: reason,
		}); err != nil {
			log.WithError(err).WithField("betID", bet.ID).Error("Failed to publish bet settled event")
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit reaper sweep: %w", err)
	}
	return swept, nil
}
