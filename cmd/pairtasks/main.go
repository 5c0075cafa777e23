package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pair-tasks/internal/bot"
	"pair-tasks/internal/config"
	"pair-tasks/internal/logging"
	"pair-tasks/internal/metrics"
	"pair-tasks/internal/pairing"
	"pair-tasks/internal/repository"
	"pair-tasks/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("pairtasks stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}

	store, closeStore, err := repository.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	clock := service.SystemClock(cfg.Location)
	docs := service.NewDocuments(store, logger)
	tasks := service.NewTaskService(docs, clock, logger)
	profiles := service.NewProfileService(docs)
	rewards := service.NewRewardService(docs, cfg.RewardDefaultDays, logger)
	streaks := service.NewStreakService(docs, rewards, clock, cfg.StreakPolicy)
	reports := service.NewReportService(tasks, streaks, profiles, clock)

	telegramBot, err := bot.New(cfg.TelegramToken, bot.Services{
		Tasks:     tasks,
		Profiles:  profiles,
		Rewards:   rewards,
		Streaks:   streaks,
		Reports:   reports,
		Generator: pairing.NewGenerator(cfg.AccountMin, cfg.AccountMax, nil),
	}, logger)
	if err != nil {
		return err
	}

	if sqlStore, ok := store.(*repository.SQLStore); ok {
		if err := telegramBot.UseSessionStore(ctx, repository.NewSessionRepository(sqlStore.DB())); err != nil {
			return err
		}
	}

	scheduler := service.NewSchedulerService(cfg.Location)
	scheduled, err := scheduler.ScheduleReports(cfg.ReportTime, cfg.ReportInterval, func() {
		jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("daily report", "error", err)
		}
	})
	if err != nil {
		return err
	}
	if scheduled {
		scheduler.Start()
		defer scheduler.Stop()
	}

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("pair tasks bot started", "store", cfg.StoreDriver, "policy", cfg.StreakPolicy, "reports", scheduled)
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}
