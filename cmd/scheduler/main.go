package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/storehub/emi-engine/internal/config"
	"github.com/storehub/emi-engine/internal/repository"
	"github.com/storehub/emi-engine/internal/service"
)

// target is one store inbox the scheduler regenerates notifications for,
// configured as "storeID:recipient" (recipient defaults to the store ID).
type target struct {
	storeID   string
	recipient string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	invoiceRepo := repository.NewInvoiceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	notifier := service.NewNotificationService(invoiceRepo, notificationRepo, cfg)

	targets := parseTargets(cfg.Notification.Recipients)
	if len(targets) == 0 {
		log.Warn().Msg("NOTIFICATION_RECIPIENTS is empty, scheduler has nothing to do")
	}

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Scheduler.Timezone).Msg("invalid scheduler timezone")
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))
	setupCronJobs(c, cfg, notifier, targets)

	c.Start()
	log.Info().Int("targets", len(targets)).Msg("scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down scheduler...")
	<-c.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, notifier *service.NotificationService, targets []target) {
	// Daily regeneration of payment and delivery reminders.
	_, err := c.AddFunc(cfg.Scheduler.NotificationSpec, func() {
		runNotifications(notifier, targets)
	})
	if err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Scheduler.NotificationSpec).Msg("failed to schedule notification job")
	}

	// Weekly retention cleanup.
	_, err = c.AddFunc(cfg.Scheduler.CleanupSpec, func() {
		cleanupNotifications(notifier, targets, cfg.Notification.RetentionDays)
	})
	if err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Scheduler.CleanupSpec).Msg("failed to schedule cleanup job")
	}
}

func runNotifications(notifier *service.NotificationService, targets []target) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, t := range targets {
		result, err := notifier.Run(ctx, t.storeID, t.recipient)
		if err != nil {
			log.Error().Err(err).
				Str("store_id", t.storeID).
				Str("recipient", t.recipient).
				Msg("notification run failed")
			continue
		}
		log.Info().
			Str("store_id", t.storeID).
			Str("recipient", t.recipient).
			Int("created", result.Created).
			Int("skipped", result.Skipped).
			Msg("notification run finished")
	}
}

func cleanupNotifications(notifier *service.NotificationService, targets []target, retentionDays int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, t := range targets {
		deleted, err := notifier.Cleanup(ctx, t.recipient, retentionDays)
		if err != nil {
			log.Error().Err(err).Str("recipient", t.recipient).Msg("notification cleanup failed")
			continue
		}
		log.Info().Str("recipient", t.recipient).Int64("deleted", deleted).Msg("notification cleanup finished")
	}
}

func parseTargets(raw string) []target {
	var targets []target
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		storeID, recipient, found := strings.Cut(entry, ":")
		if !found {
			recipient = storeID
		}
		targets = append(targets, target{storeID: storeID, recipient: recipient})
	}
	return targets
}
