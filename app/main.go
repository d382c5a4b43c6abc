package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sahilcodelab/wbsu-notice-bot/app/api"
	"github.com/sahilcodelab/wbsu-notice-bot/app/bot"
	"github.com/sahilcodelab/wbsu-notice-bot/app/cfg"
	"github.com/sahilcodelab/wbsu-notice-bot/app/database"
	"github.com/sahilcodelab/wbsu-notice-bot/app/pipeline"
	"github.com/sahilcodelab/wbsu-notice-bot/app/scrape"
	"github.com/sahilcodelab/wbsu-notice-bot/app/semester"
	"github.com/sahilcodelab/wbsu-notice-bot/app/source"
	"github.com/sahilcodelab/wbsu-notice-bot/app/subscription"
	"github.com/sahilcodelab/wbsu-notice-bot/app/summary"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting WBSU Notice Bot", "version", appCfg.Version)

	if err := os.MkdirAll(appCfg.DataDir, 0o755); err != nil {
		slog.Error("Failed to create data directory", "path", appCfg.DataDir, "error", err)
		os.Exit(1)
	}

	// Notice database
	db, err := database.NewConnection(filepath.Join(appCfg.DataDir, "notices.db"))
	if err != nil {
		slog.Error("Failed to open notice database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Notice database ready", "migration_version", version, "dirty", dirty)

	noticeRepo := database.NewNoticeRepository(db)

	// Subscription store starts from its empty default when the file
	// is missing or unreadable.
	subs := subscription.NewStore(filepath.Join(appCfg.DataDir, "users.json"))
	slog.Info("Subscription store loaded", "users", subs.Count())

	// Semesters and sources
	registry, err := semester.LoadFile(filepath.Join(appCfg.SourcesDir, "semesters.yml"))
	if err != nil {
		slog.Error("Failed to load semester configuration", "error", err)
		os.Exit(1)
	}

	sources, err := source.NewLoader(appCfg.SourcesDir).LoadAll()
	if err != nil {
		slog.Error("Failed to load source configurations", "error", err)
		os.Exit(1)
	}
	if len(sources) == 0 {
		sources = source.Defaults()
		slog.Info("No source configurations found, using built-in defaults")
	}
	slog.Info("Sources configured", "count", len(sources))

	// Telegram
	tgAPI, err := tgbotapi.NewBotAPI(appCfg.BotToken)
	if err != nil {
		slog.Error("Failed to initialize Telegram bot", "error", err)
		os.Exit(1)
	}
	slog.Info("Telegram bot initialized", "username", tgAPI.Self.UserName)
	sender := bot.NewTelegramSender(tgAPI)

	// Pipeline components
	httpTimeout := time.Duration(appCfg.HTTPTimeout) * time.Second
	fetcher := scrape.NewFetcher(appCfg.UserAgent, httpTimeout, appCfg.TLSSkipVerify)
	summarizer := summary.NewGroqSummarizer(appCfg.GroqAPIKey,
		summary.WithBaseURL(appCfg.GroqURL),
		summary.WithModel(appCfg.GroqModel),
	)
	notifier := bot.NewNotifier(sender, subs, registry)

	runner := pipeline.NewRunner(sources, fetcher, scrape.NewExtractor(), scrape.NewFeedExtractor(),
		scrape.NewPageExtractor(fetcher), registry, noticeRepo, summarizer, notifier,
		appCfg.WorkerCount, time.Duration(appCfg.RetentionDays)*24*time.Hour)

	router := bot.NewRouter(noticeRepo, subs, registry, summarizer, runner)

	// Background scheduler
	scheduler := pipeline.NewScheduler(runner, time.Duration(appCfg.CheckInterval)*time.Second)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Scheduler started", "interval_seconds", appCfg.CheckInterval, "workers", appCfg.WorkerCount)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if appCfg.PollMode {
		poller := bot.NewPoller(tgAPI, router, sender)
		go poller.Run(ctx)
		slog.Info("Long polling started")
	}

	// HTTP server (webhook, health, stats)
	handler := api.NewHandler(router, sender, noticeRepo, subs, len(sources), appCfg.Version)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error, shutting down", "error", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
