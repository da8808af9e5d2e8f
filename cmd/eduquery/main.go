package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"
	"time"

	"eduquery/internal/app"
	"eduquery/internal/domain/query"
	"eduquery/internal/domain/teacher"
	"eduquery/internal/infra/config"
	idb "eduquery/internal/infra/database"
	"eduquery/internal/infra/gemini"
	"eduquery/internal/infra/logger"
	"eduquery/internal/infra/memory"
	"eduquery/internal/infra/metrics"
	"eduquery/internal/infra/scheduler"
	"eduquery/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.For("main")

	mainLogger.Infof("Configuration loaded. LogLevel: %s, Environment: %s, analysis enabled: %t",
		cfg.LogLevel, cfg.Environment, cfg.AnalysisEnabled())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Faculty directory: Postgres when configured, built-in roster otherwise.
	var teacherRepo teacher.Repository
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to database")
		}
		defer db.Close()
		if err := idb.EnsureSchema(ctx, db); err != nil {
			mainLogger.WithError(err).Fatal("Could not prepare database schema")
		}
		pgRepo := idb.NewPostgresTeacherRepository(db)
		seeded, err := pgRepo.SeedIfEmpty(ctx, memory.SeedTeachers())
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not seed faculty directory")
		}
		mainLogger.WithField("seeded", seeded).Info("Postgres faculty directory initialized.")
		teacherRepo = pgRepo
	} else {
		teacherRepo = memory.NewTeacherCatalog(memory.SeedTeachers())
		mainLogger.Info("Using the built-in faculty directory.")
	}

	var store query.Store = memory.NewQueryStore(memory.SeedQueries(time.Now()), nil)

	analyzer := gemini.NewClient(gemini.Config{
		APIKey:    cfg.GeminiAPIKey,
		BaseURL:   cfg.GeminiBaseURL,
		Model:     cfg.GeminiModel,
		Timeout:   cfg.AnalysisTimeout,
		CacheSize: cfg.AnalysisCacheSize,
		CacheTTL:  cfg.AnalysisCacheTTL,
	}, logger.For("gemini"))

	telebotLogger := logger.For("telebot")
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := telebotLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID).WithField("chat_id", c.Chat().ID)
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}

	var notifier app.FacultyNotifier
	if cfg.FacultyChatID != 0 {
		notifier = telegram.NewTelebotAdapter(bot, cfg.FacultyChatID)
		mainLogger.WithField("chat_id", cfg.FacultyChatID).Info("Faculty notifications enabled.")
	}

	directory := app.NewDirectoryService(teacherRepo, logger.For("directory"))

	// queryService is assigned below; the scheduler and simulator only call into it after startup.
	var queryService *app.QueryService

	cronScheduler := scheduler.NewCronScheduler(
		scheduler.StatsFunc(func(ctx context.Context) (app.Stats, error) { return queryService.Stats(ctx) }),
		notifier,
		logger.For("scheduler"),
		cfg.CronSpecDigest,
	)

	simulator := app.NewResponseSimulator(store, cronScheduler, app.SimulatorConfig{
		Delay:       cfg.SimulatedResponseDelay,
		Probability: cfg.SimulatedResponseProbability,
		OnResponded: func(ctx context.Context, q query.Query) { queryService.NotifyResponded(ctx, q) },
	}, logger.For("simulator"))

	queryService = app.NewQueryService(store, directory, simulator, notifier, logger.For("queries"))

	newWorkflow := func() *app.CreationWorkflow {
		return app.NewCreationWorkflow(analyzer, queryService, app.NewQueryID, time.Now, logger.For("workflow"))
	}

	handlers := telegram.NewHandlers(ctx, queryService, directory, memory.CurrentStudent, newWorkflow, cfg.AnalysisTimeout, logger.For("telegram"))
	handlers.Register(bot)
	mainLogger.Info("Telegram handlers registered.")

	if err := cronScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}

	var metricsServer *metrics.Server
	if cfg.MetricsAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsAddr, logger.For("metrics"))
		metricsServer.Start()
	}

	mainLogger.Info("Application setup complete. Bot and scheduler are starting...")
	go bot.Start()

	<-ctx.Done()

	mainLogger.Info("Shutting down application...")
	bot.Stop()
	cronScheduler.Stop()
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		metricsServer.Stop(shutdownCtx)
		cancel()
	}
	mainLogger.Info("Application shut down gracefully.")
}
