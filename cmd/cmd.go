package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playdate-backend/internal/auth"
	"playdate-backend/internal/config"
	"playdate-backend/internal/handlers"
	"playdate-backend/internal/lock"
	"playdate-backend/internal/push"
	"playdate-backend/internal/repository"
	"playdate-backend/internal/repository/memory"
	"playdate-backend/internal/repository/postgres"
	"playdate-backend/internal/scoring"
	"playdate-backend/internal/services"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx := context.Background()

	// Storage
	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer closeStore()

	// Locks
	locker, redisClient, err := newLocker(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Firebase is shared by token verification and FCM
	var fbApp *firebase.App
	if cfg.Auth.Provider == "firebase" || cfg.Push.Provider == "fcm" {
		fbApp, err = auth.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Firebase")
		}
	}

	resolver, err := newResolver(ctx, cfg, fbApp)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize auth")
	}

	sender, err := newSender(ctx, cfg, fbApp)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize push sender")
	}

	// Initialize services
	wsHub := services.NewWSHub()
	notifier := services.NewNotifier(store.Users, sender, wsHub)

	scoringCfg := scoring.Config{
		DistanceWeight:       cfg.Scoring.DistanceWeight,
		DefaultMaxDistanceKm: cfg.Scoring.DefaultMaxDistanceKm,
		EarthRadiusKm:        cfg.Scoring.EarthRadiusKm,
	}

	chatService := services.NewChatService(store.Chats, store.Dogs, store.MatchRequests, notifier)
	deps := handlers.Deps{
		Resolver: resolver,
		Hub:      wsHub,
		Users:    services.NewUserService(store.Users),
		Dogs:     services.NewDogService(store.Dogs),
		Ranking: services.NewRankingService(
			store.Dogs,
			services.NewExclusionResolver(store.MatchRequests),
			scoringCfg,
		),
		MatchRequests: services.NewMatchRequestService(
			store.MatchRequests,
			store.Dogs,
			chatService,
			notifier,
			locker,
			cfg.Redis.LockTTL,
		),
		Chats: chatService,
		Meetups: services.NewMeetupService(
			store.Meetups,
			store.Dogs,
			store.Users,
			chatService,
			notifier,
		),
		Reviews: services.NewReviewService(
			store.Reviews,
			store.Meetups,
			store.Users,
			store.Dogs,
			locker,
			cfg.Redis.LockTTL,
		),
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handlers.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("storage", cfg.Storage.Driver).
			Str("auth", cfg.Auth.Provider).
			Str("push", cfg.Push.Provider).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Hijacked WebSocket connections are not closed by Shutdown
	wsHub.CloseAll()

	// Let in-flight notifications finish
	notifier.Wait()

	log.Info().Msg("Server exited")
}

// newStore selects the repository implementation
func newStore(ctx context.Context, cfg *config.Config) (*repository.Store, func(), error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	db, err := postgres.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewStore(db), db.Close, nil
}

// newLocker uses redis when configured so locks hold across instances
func newLocker(ctx context.Context, cfg *config.Config) (lock.Locker, *redis.Client, error) {
	if cfg.Redis.Addr == "" {
		log.Warn().Msg("Redis not configured, using in-process locks")
		return lock.NewLocalLocker(), nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	return lock.NewRedisLocker(client, "playdate:lock:"), client, nil
}

func newResolver(ctx context.Context, cfg *config.Config, app *firebase.App) (auth.Resolver, error) {
	if cfg.Auth.Provider == "firebase" {
		resolver, err := auth.NewFirebaseResolver(ctx, app)
		if err != nil {
			return nil, err
		}
		return resolver, nil
	}
	return auth.NewJWTResolver(cfg.Auth.JWTSecret), nil
}

func newSender(ctx context.Context, cfg *config.Config, app *firebase.App) (push.Sender, error) {
	switch cfg.Push.Provider {
	case "fcm":
		sender, err := push.NewFCMSender(ctx, app)
		if err != nil {
			return nil, err
		}
		return sender, nil
	case "apns":
		sender, err := push.NewAPNsSender(push.APNsConfig{
			KeyFile:    cfg.Push.APNs.KeyFile,
			KeyID:      cfg.Push.APNs.KeyID,
			TeamID:     cfg.Push.APNs.TeamID,
			Topic:      cfg.Push.APNs.Topic,
			Production: cfg.Push.APNs.Production,
		})
		if err != nil {
			return nil, err
		}
		return sender, nil
	default:
		return push.LogSender{}, nil
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
