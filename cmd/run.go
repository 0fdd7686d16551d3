package cmd

import (
	"context"
	"fmt"
	"time"

	"betbook/config"
	"betbook/database"
	"betbook/domain/events"
	"betbook/domain/interfaces"
	"betbook/domain/services"
	"betbook/infrastructure"
	"betbook/infrastructure/observability"
	"betbook/repository"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting betbook...")

	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Initialize NATS and the event publisher
	log.Info("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer natsClient.Close()

	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if err := eventPublisher.EnsureBetEventStream(); err != nil {
		return fmt.Errorf("failed to ensure event stream: %w", err)
	}
	registerNotificationLogger(eventPublisher)

	// Initialize metrics
	metricsProvider := observability.NewMetricsProvider(cfg)
	if err := metricsProvider.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsProvider.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Failed to shut down metrics provider")
		}
	}()

	// Initialize unit of work factory and services
	uowFactory := repository.NewUnitOfWorkFactory(db, eventPublisher)
	betService := services.NewBetService(uowFactory, metricsProvider)
	settlementService := services.NewSettlementService(uowFactory, services.NewJudgingEngine(), metricsProvider)
	log.Info("Services initialized")

	// Consume commands from frontends
	commandConsumer := infrastructure.NewCommandConsumer(natsClient, betService, settlementService)
	if err := commandConsumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start command consumer: %w", err)
	}

	// Sweep expired pending challenges in the background
	reaperDone := make(chan struct{})
	go runChallengeReaper(ctx, betService, time.Duration(cfg.ReaperIntervalSeconds)*time.Second, reaperDone)

	log.WithField("environment", cfg.Environment).Info("betbook is running")
	<-ctx.Done()

	log.Info("Shutting down...")
	<-reaperDone
	log.Info("Shutdown completed")

	return nil
}

// runChallengeReaper periodically voids pending head-to-head challenges
// whose closing time passed without the challengee responding
func runChallengeReaper(ctx context.Context, betService interfaces.BetService, interval time.Duration, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.WithField("interval", interval).Info("Challenge reaper started")
	for {
		select {
		case <-ctx.Done():
			log.Info("Challenge reaper stopped")
			return
		case <-ticker.C:
			swept, err := betService.VoidExpiredChallenges(ctx)
			if err != nil {
				log.WithError(err).Error("Failed to void expired challenges")
				continue
			}
			if swept > 0 {
				log.WithField("count", swept).Info("Voided expired challenges")
			}
		}
	}
}

// registerNotificationLogger logs payout notifications in-process so
// operators can trace who was told what, independent of downstream
// consumers
func registerNotificationLogger(publisher *infrastructure.NATSEventPublisher) {
	publisher.RegisterLocalHandler(events.EventTypePayoutNotification, func(ctx context.Context, event events.Event) error {
		notification, ok := event.(events.PayoutNotificationEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload for %s", event.Type())
		}
		log.WithFields(log.Fields{
			"userId": notification.UserID,
			"betId":  notification.BetID,
			"won":    notification.Won,
			"amount": notification.Amount,
		}).Info("Payout notification queued")
		return nil
	})
}
