package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hray3182/daybook/internal/ai"
	"github.com/hray3182/daybook/internal/bot"
	"github.com/hray3182/daybook/internal/bot/handlers"
	"github.com/hray3182/daybook/internal/calendar"
	"github.com/hray3182/daybook/internal/config"
	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/httpapi"
	"github.com/hray3182/daybook/internal/logging"
	"github.com/hray3182/daybook/internal/metrics"
	"github.com/hray3182/daybook/internal/repository"
	"github.com/hray3182/daybook/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Fatal("failed to load config", zap.Error(err))
	}

	logger := logging.New(cfg.LogLevel)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to database")

	if err := db.Migrate(ctx, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	users := repository.NewUserRepository(db)
	settings := repository.NewUserSettingsRepository(db, cfg.DefaultTimezone)
	labels := repository.NewLabelRepository(db)
	events := repository.NewEventRepository(db)
	recurring := repository.NewRecurringEventRepository(db)
	stats := repository.NewStatsRepository(db)

	calendarService := calendar.NewService(users, events, recurring, labels, stats, logger.Named("calendar"))
	m := metrics.New()

	sched, err := scheduler.New(cfg.RefreshCron, users, events, stats, m, logger.Named("scheduler"))
	if err != nil {
		logger.Fatal("failed to create scheduler", zap.Error(err))
	}
	go sched.Start(ctx)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.New(calendarService, m, logger.Named("http")).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", zap.Error(err))
			cancel()
		}
	}()

	if cfg.BotEnabled() {
		var suggester handlers.RuleSuggester
		if cfg.AIEnabled() {
			suggester = ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
			logger.Info("AI client initialized", zap.String("model", cfg.AIModel))
		} else {
			logger.Info("AI client not configured, rule descriptions must use the encoding")
		}

		b, err := bot.New(cfg.TelegramToken, bot.Deps{
			Repos: &handlers.Repositories{
				User:         users,
				UserSettings: settings,
				Label:        labels,
				Event:        events,
				Recurring:    recurring,
			},
			Calendar:  calendarService,
			Suggester: suggester,
			Scheduler: sched,
		}, logger.Named("bot"))
		if err != nil {
			logger.Fatal("failed to create bot", zap.Error(err))
		}
		go func() {
			if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("bot stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}
