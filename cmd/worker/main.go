package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/diewo77/go-schools/internal/clock"
	"github.com/diewo77/go-schools/internal/config"
	"github.com/diewo77/go-schools/internal/db"
	"github.com/diewo77/go-schools/internal/ledger"
	"github.com/diewo77/go-schools/internal/logging"
	"github.com/diewo77/go-schools/internal/notify"
	"github.com/diewo77/go-schools/internal/store"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sendConcurrency = 4

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.New(cfg.App.Dev)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	dbConn, err := db.Connect(cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	st := store.New(dbConn)
	loc := cfg.Ledger.Location()
	ledgerSvc := ledger.NewService(st, logger, ledger.Options{
		AllowOverpayment:  cfg.Ledger.AllowOverpayment,
		AllocationRetries: cfg.Ledger.AllocationRetries,
		Clock:             clock.New(loc),
	})

	reminders := &reminderJob{
		arrears:  ledgerSvc,
		students: st,
		sender:   newDispatcher(cfg.Notify, logger),
		sms:      cfg.Notify.SMSEnabled,
		limit:    sendConcurrency,
		log:      logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(cfg.Worker.RefreshSchedule, func() {
		n, err := ledgerSvc.RefreshStatuses(ctx)
		if err != nil {
			logger.Error("status refresh failed", zap.Error(err))
			return
		}
		logger.Info("status refresh done", zap.Int("updated", n))
	}); err != nil {
		logger.Fatal("invalid refresh schedule", zap.String("schedule", cfg.Worker.RefreshSchedule), zap.Error(err))
	}
	if _, err := c.AddFunc(cfg.Worker.ReminderSchedule, func() {
		sent, failed, err := reminders.Run(ctx)
		if err != nil {
			logger.Error("reminder run failed", zap.Error(err))
			return
		}
		logger.Info("reminders sent", zap.Int("sent", sent), zap.Int("failed", failed))
	}); err != nil {
		logger.Fatal("invalid reminder schedule", zap.String("schedule", cfg.Worker.ReminderSchedule), zap.Error(err))
	}

	c.Start()
	logger.Info("worker started",
		zap.String("refresh", cfg.Worker.RefreshSchedule),
		zap.String("reminders", cfg.Worker.ReminderSchedule))

	<-ctx.Done()
	logger.Info("shutdown signal received")
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

// newDispatcher uses SendGrid when a key is configured and logs otherwise.
// SMS always goes to the log sender; no SMS gateway is wired.
func newDispatcher(cfg config.NotifyConfig, logger *zap.Logger) *notify.Dispatcher {
	logSender := notify.NewLogSender(logger)
	d := notify.NewDispatcher().Register(notify.ChannelSMS, logSender)
	if cfg.SendGridKey != "" {
		return d.Register(notify.ChannelEmail, notify.NewEmailSender(cfg.SendGridKey, cfg.FromName, cfg.FromEmail))
	}
	return d.Register(notify.ChannelEmail, logSender)
}
