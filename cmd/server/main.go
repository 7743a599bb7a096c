package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"railmail-service/internal/infrastructure/config"
	"railmail-service/internal/infrastructure/oauth"
	"railmail-service/internal/infrastructure/persistence"
	"railmail-service/internal/infrastructure/router"
	"railmail-service/internal/interface/api"
	"railmail-service/internal/interface/gmail"
	"railmail-service/internal/interface/railapi"
	"railmail-service/internal/interface/repository"
	"railmail-service/internal/usecase"
	"railmail-service/pkg/logger"
	"railmail-service/pkg/metrics"
	"railmail-service/pkg/parser"
	"railmail-service/pkg/schedule"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// batchTTL is how long an unreviewed upload batch is kept
const batchTTL = time.Hour

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Railmail Service", "version", cfg.AppVersion)

	location, _ := cfg.Location()
	now := func() time.Time { return time.Now().In(location) }

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appMetrics := metrics.NewMetrics("railmail", nil)

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	db := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	ticketRepo := repository.NewMongoTicketRepository(db)
	emailRepo := repository.NewMongoEmailRepository(db)

	// Schedule sources after the built-in timetable
	var resolverOpts []schedule.Option
	resolverOpts = append(resolverOpts, schedule.WithMetrics(appMetrics))

	var gormDB *gorm.DB
	if cfg.PostgresURI != "" {
		log.Info("Connecting to PostgreSQL")
		gormDB, err = persistence.NewPostgresDB(ctx, cfg.PostgresURI)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		resolverOpts = append(resolverOpts, schedule.WithDatabase(repository.NewGormTrainScheduleRepository(gormDB)))
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		log.Info("Connecting to Redis")
		redisClient, err = persistence.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", "error", err)
		}
		resolverOpts = append(resolverOpts, schedule.WithCache(repository.NewRedisScheduleCache(redisClient, cfg.ScheduleCacheTTL)))
	}

	if cfg.ScheduleAPIEnabled {
		scheduleAPI := railapi.NewClient(cfg.ScheduleAPIBaseURL, cfg.ScheduleAPITimeout, log)
		resolverOpts = append(resolverOpts, schedule.WithNetwork(scheduleAPI, cfg.ScheduleAPITimeout))
	}

	resolver := schedule.NewResolver(log.With("component", "schedule"), resolverOpts...)
	ticketParser := parser.NewTicketParser(resolver, now, log.With("component", "parser"))

	maxUploadBytes := int64(cfg.MaxUploadMB) << 20
	batchParser := usecase.NewBatchParser(ticketParser, maxUploadBytes, appMetrics, log)

	// Gmail auto-import
	if cfg.GmailEnabled {
		ticketProcessor := usecase.NewTicketProcessor(ticketParser, ticketRepo, emailRepo, appMetrics, log)

		subjectRouter := router.NewSubjectRouter(log)
		subjectRouter.Register(usecase.NewTicketHandlerAdapter(ticketProcessor, "irctc_ticket", usecase.DefaultTicketSubjects))
		orchestrator := usecase.NewEmailOrchestrator(emailRepo, subjectRouter, appMetrics, log)

		gmailOAuth := oauth.NewGmailOAuth(
			cfg.GmailClientID,
			cfg.GmailClientSecret,
			cfg.GmailRefreshToken,
			"",
			log,
		)
		tokenSource := gmailOAuth.GetTokenSource(ctx)

		gmailService, err := gmail.NewGmailService(ctx, tokenSource, emailRepo, log, cfg.GmailPollInterval, cfg.GmailQuery, usecase.DefaultTicketSubjects)
		if err != nil {
			log.Fatal("Failed to create Gmail service", "error", err)
		}

		// Start Gmail polling in a goroutine
		go gmailService.StartPolling(ctx)

		// Start email processor in a goroutine
		go func() {
			processTicker := time.NewTicker(cfg.ProcessInterval)
			defer processTicker.Stop()

			for {
				select {
				case <-ctx.Done():
					log.Info("Email processor stopped")
					return
				case <-processTicker.C:
					if err := orchestrator.ProcessPendingEmails(ctx); err != nil {
						log.Error("Error processing emails", "error", err)
					}
				}
			}
		}()
	} else {
		log.Info("Gmail import disabled")
	}

	// Set up HTTP server
	handler := api.NewHandler(batchParser, ticketRepo, emailRepo, api.NewBatchStore(batchTTL), maxUploadBytes, cfg.AppVersion, log)
	apiRouter := api.NewRouter(handler, nil, nil, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      apiRouter.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Redis close error", "error", err)
		}
	}

	if gormDB != nil {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Railmail Service stopped")
}
