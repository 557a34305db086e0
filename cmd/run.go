package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bookline/api"
	"bookline/client"
	"bookline/config"
	"bookline/events"
	"bookline/ingest"
	"bookline/models"
	"bookline/service"
	"bookline/store"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting bookline engine...")

	// Load configuration
	cfg := config.Get()

	// Initialize backend client and entity store
	backend := client.NewBackend(cfg.BackendBaseURL)
	st := store.NewStore()

	// Initialize event bus
	log.Info("Initializing event bus...")
	bus := events.NewBus()

	// Connect the real-time transport
	log.Info("Connecting to NATS...")
	natsClient := ingest.NewNATSClient(cfg.NATSUrl)
	if err := natsClient.Connect(); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer natsClient.Close()

	// Initialize the ingestion channel
	channel := ingest.NewChannel(natsClient, st, bus)
	defer channel.Close()

	// Initialize services
	log.Info("Initializing services...")
	bettingService := service.NewBettingService(backend, st)

	// Fetch the initial wallet; a failure is not fatal, the UI just shows
	// no balance until the next authoritative read succeeds.
	if _, err := bettingService.RefreshWallet(ctx); err != nil {
		log.WithError(err).Warn("Initial wallet fetch failed")
	} else if user := st.User(); user != nil {
		if err := channel.SubscribeToUser(user.ID); err != nil {
			log.WithError(err).Error("Failed to subscribe to user channel")
		}
	}

	// Snapshot poller keeps channel subscriptions aligned with the set of
	// live matches: subscribe what is live, drop what has finished.
	poller := service.NewSnapshotPoller(backend, st, cfg.SnapshotPollInterval)
	poller.OnSnapshot = func(matches []*models.Match) {
		for _, m := range matches {
			if m.IsLive() {
				if err := channel.SubscribeToMatch(m.ID); err != nil {
					log.WithFields(log.Fields{
						"matchId": m.ID,
						"error":   err,
					}).Error("Failed to subscribe to match channel")
				}
				// A snapshot can list a match before its markets exist;
				// backfill them so the card is wagerable before the first
				// market event arrives.
				if len(m.Markets) == 0 {
					go func(matchID string) {
						wagerable := []models.MarketStatus{models.MarketStatusOpen, models.MarketStatusSuspended}
						markets, err := backend.GetInstanceMarkets(ctx, matchID, wagerable)
						if err != nil {
							log.WithFields(log.Fields{
								"matchId": matchID,
								"error":   err,
							}).Warn("Market backfill failed")
							return
						}
						st.ReplaceMatchMarkets(matchID, markets)
					}(m.ID)
				}
			} else if m.IsFinished() {
				channel.UnsubscribeFromMatch(m.ID)
			}
		}
	}
	go poller.Run(ctx)

	// Start the HTTP surface for the UI layer
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.NewRouter(st, bettingService),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	log.WithField("environment", cfg.Environment).Info("Engine is running")

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}

	log.Info("Shutdown completed")
	return nil
}
