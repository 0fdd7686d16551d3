package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"betbook/domain/entities"
	"betbook/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// Command subjects accepted by the consumer. Frontends publish these to
// drive the engine.
const (
	SubjectCreateBet        = "bets.commands.create"
	SubjectProposeChallenge = "bets.commands.challenge"
	SubjectSubmitPick       = "bets.commands.pick"
	SubjectDeclineChallenge = "bets.commands.decline"
	SubjectSettleBet        = "bets.commands.settle"
)

type createBetCommand struct {
	GroupID     int64    `json:"group_id"`
	CreatorID   int64    `json:"creator_id"`
	Title       string   `json:"title"`
	WagerType   string   `json:"wager_type"`
	WagerAmount int64    `json:"wager_amount"`
	Line        *float64 `json:"line,omitempty"`
	ClosingAt   int64    `json:"closing_at"` // unix seconds
}

type proposeChallengeCommand struct {
	ChallengerID  int64    `json:"challenger_id"`
	ChallengeeID  int64    `json:"challengee_id"`
	Title         string   `json:"title"`
	WagerType     string   `json:"wager_type"`
	WagerAmount   int64    `json:"wager_amount"`
	Line          *float64 `json:"line,omitempty"`
	FavoredShare  *int64   `json:"favored_share,omitempty"`
	UnderdogShare *int64   `json:"underdog_share,omitempty"`
	ClosingAt     int64    `json:"closing_at"`
}

type submitPickCommand struct {
	BetID  int64  `json:"bet_id"`
	UserID int64  `json:"user_id"`
	Value  string `json:"value"`
}

type declineChallengeCommand struct {
	BetID  int64 `json:"bet_id"`
	UserID int64 `json:"user_id"`
}

type settleBetCommand struct {
	BetID        int64  `json:"bet_id"`
	OutcomeValue string `json:"outcome_value"`
	JudgedBy     int64  `json:"judged_by"`
}

// CommandConsumer subscribes to command subjects and routes them to the
// bet and settlement services
type CommandConsumer struct {
	natsClient        *NATSClient
	betService        interfaces.BetService
	settlementService interfaces.SettlementService
}

// NewCommandConsumer creates a new command consumer
func NewCommandConsumer(natsClient *NATSClient, betService interfaces.BetService, settlementService interfaces.SettlementService) *CommandConsumer {
	return &CommandConsumer{
		natsClient:        natsClient,
		betService:        betService,
		settlementService: settlementService,
	}
}

// Start ensures the command stream exists and subscribes to all command
// subjects. The underlying NATS client must already be connected.
func (c *CommandConsumer) Start(ctx context.Context) error {
	subjects := []string{
		SubjectCreateBet,
		SubjectProposeChallenge,
		SubjectSubmitPick,
		SubjectDeclineChallenge,
		SubjectSettleBet,
	}

	if err := c.natsClient.ensureStream("bet_commands", subjects); err != nil {
		return fmt.Errorf("failed to ensure command stream: %w", err)
	}

	handlers := map[string]func(context.Context, []byte) error{
		SubjectCreateBet:        c.handleCreateBet,
		SubjectProposeChallenge: c.handleProposeChallenge,
		SubjectSubmitPick:       c.handleSubmitPick,
		SubjectDeclineChallenge: c.handleDeclineChallenge,
		SubjectSettleBet:        c.handleSettleBet,
	}

	for subject, handler := range handlers {
		h := handler
		if err := c.natsClient.Subscribe(subject, func(data []byte) error {
			return h(ctx, data)
		}); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
	}

	log.WithField("subjects", subjects).Info("Command consumer started")
	return nil
}

func (c *CommandConsumer) handleCreateBet(ctx context.Context, data []byte) error {
	var cmd createBetCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		log.WithError(err).Error("Malformed create command, dropping")
		return nil
	}

	bet, err := c.betService.CreateGroupBet(ctx, cmd.GroupID, cmd.CreatorID, cmd.Title,
		entities.WagerType(cmd.WagerType), cmd.WagerAmount, cmd.Line, time.Unix(cmd.ClosingAt, 0))
	if err != nil {
		return c.commandError("create", err)
	}

	log.WithFields(log.Fields{"betId": bet.ID, "groupId": cmd.GroupID}).Info("Created group bet")
	return nil
}

func (c *CommandConsumer) handleProposeChallenge(ctx context.Context, data []byte) error {
	var cmd proposeChallengeCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		log.WithError(err).Error("Malformed challenge command, dropping")
		return nil
	}

	var odds *entities.OddsRatio
	if cmd.FavoredShare != nil && cmd.UnderdogShare != nil {
		odds = &entities.OddsRatio{FavoredShare: *cmd.FavoredShare, UnderdogShare: *cmd.UnderdogShare}
	}

	bet, err := c.betService.ProposeChallenge(ctx, cmd.ChallengerID, cmd.ChallengeeID, cmd.Title,
		entities.WagerType(cmd.WagerType), cmd.WagerAmount, cmd.Line, odds, time.Unix(cmd.ClosingAt, 0))
	if err != nil {
		return c.commandError("challenge", err)
	}

	log.WithFields(log.Fields{"betId": bet.ID, "challengeeId": cmd.ChallengeeID}).Info("Proposed challenge")
	return nil
}

func (c *CommandConsumer) handleSubmitPick(ctx context.Context, data []byte) error {
	var cmd submitPickCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		log.WithError(err).Error("Malformed pick command, dropping")
		return nil
	}

	if _, err := c.betService.SubmitPick(ctx, cmd.BetID, cmd.UserID, cmd.Value); err != nil {
		return c.commandError("pick", err)
	}

	log.WithFields(log.Fields{"betId": cmd.BetID, "userId": cmd.UserID}).Info("Stored pick")
	return nil
}

func (c *CommandConsumer) handleDeclineChallenge(ctx context.Context, data []byte) error {
	var cmd declineChallengeCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		log.WithError(err).Error("Malformed decline command, dropping")
		return nil
	}

	if _, err := c.betService.DeclineChallenge(ctx, cmd.BetID, cmd.UserID); err != nil {
		return c.commandError("decline", err)
	}

	log.WithField("betId", cmd.BetID).Info("Declined challenge")
	return nil
}

func (c *CommandConsumer) handleSettleBet(ctx context.Context, data []byte) error {
	var cmd settleBetCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		log.WithError(err).Error("Malformed settle command, dropping")
		return nil
	}

	result, err := c.settlementService.Settle(ctx, cmd.BetID, cmd.OutcomeValue, cmd.JudgedBy)
	if err != nil {
		return c.commandError("settle", err)
	}

	log.WithFields(log.Fields{
		"betId":  result.Bet.ID,
		"status": result.Bet.Status,
	}).Info("Settled bet")
	return nil
}

// commandError decides whether a failed command is retried. Domain
// rejections are final and get ACKed; anything else is NAKed for
// redelivery.
func (c *CommandConsumer) commandError(command string, err error) error {
	for _, sentinel := range []error{
		entities.ErrBetNotFound,
		entities.ErrBetClosed,
		entities.ErrNotYetClosed,
		entities.ErrAlreadySettled,
		entities.ErrDuplicatePick,
		entities.ErrInvalidPickValue,
		entities.ErrInvalidOutcome,
		entities.ErrUnauthorized,
		entities.ErrChallengeDeclined,
		entities.ErrNotParticipant,
	} {
		if errors.Is(err, sentinel) {
			log.WithFields(log.Fields{
				"command": command,
				"error":   err,
			}).Warn("Command rejected")
			return nil
		}
	}

	log.WithFields(log.Fields{
		"command": command,
		"error":   err,
	}).Error("Command failed")
	return err
}
