// Bot runs the job seeker onboarding conversation over Telegram long polling.
// Configuration comes from the environment and an optional .env (see internal/config).
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"jobseeker-bot/internal/config"
	"jobseeker-bot/internal/db"
	healthhandler "jobseeker-bot/internal/health/handler"
	"jobseeker-bot/internal/i18n"
	identityrepo "jobseeker-bot/internal/identity/repository"
	identityservice "jobseeker-bot/internal/identity/service"
	jobseekerrepo "jobseeker-bot/internal/jobseeker/repository"
	"jobseeker-bot/internal/logging"
	"jobseeker-bot/internal/media"
	"jobseeker-bot/internal/onboarding"
	"jobseeker-bot/internal/region"
	"jobseeker-bot/internal/security"
	"jobseeker-bot/internal/server"
	sessionrepo "jobseeker-bot/internal/session/repository"
	"jobseeker-bot/internal/supabase"
	"jobseeker-bot/internal/telegram"
	"jobseeker-bot/internal/telemetry"
	telemetryotel "jobseeker-bot/internal/telemetry/otel"
	"jobseeker-bot/internal/telemetry/producer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.TelegramBotToken == "" {
		log.Fatal("config: TELEGRAM_BOT_TOKEN is required")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("bot: exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetry.ShutdownDrainDuration)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	pingers := map[string]healthhandler.Pinger{}

	sessions, closeSessions, err := newSessionStore(cfg, pingers)
	if err != nil {
		return err
	}
	defer closeSessions()

	var database *sql.DB
	if cfg.UsesPostgres() {
		database, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer database.Close()
		pingers["postgres"] = database
	}

	var sb *supabase.Client
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" {
		sb, err = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &http.Client{Timeout: cfg.HTTPClientTimeout()})
		if err != nil {
			return err
		}
	}

	if sb == nil && cfg.UsesSupabase() {
		return errors.New("config: a supabase backend is selected without SUPABASE_URL")
	}
	var identity onboarding.IdentityProvider
	switch cfg.IdentityProvider {
	case config.BackendPostgres:
		identity = identityservice.NewLocalProvider(identityrepo.NewPostgresRepository(database), security.NewHasher(cfg.BcryptCost))
	default:
		identity = sb
	}
	var records onboarding.RecordStore
	switch cfg.RecordStore {
	case config.BackendPostgres:
		records = jobseekerrepo.NewPostgresRepository(database)
	default:
		records = sb
	}
	var storage onboarding.ObjectStorage
	if sb != nil && cfg.StorageEnabled() {
		storage = sb
	} else {
		logger.Warn("bot: object storage disabled, profile pictures keep their Telegram file id")
	}

	emitters := []telemetry.EventEmitter{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	if kafkaProducer != nil {
		defer kafkaProducer.Close()
		emitters = append(emitters, kafkaProducer)
	}

	texts, err := i18n.LoadEmbedded()
	if err != nil {
		return err
	}
	regions, err := region.LoadEmbedded()
	if err != nil {
		return err
	}

	// The HTTP timeout must outlast the long-poll timeout or every idle poll fails.
	pollTimeout := time.Duration(cfg.TelegramPollTimeout) * time.Second
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramBotToken, tgbotapi.APIEndpoint,
		&http.Client{Timeout: pollTimeout + cfg.HTTPClientTimeout()})
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = cfg.TelegramDebug
	_ = tgbotapi.SetLogger(zap.NewStdLog(logger.Named("tgbotapi")))

	engine, err := onboarding.NewEngine(onboarding.Deps{
		Sessions:   sessions,
		Transport:  telegram.NewTransport(bot),
		Downloader: telegram.NewHTTPDownloader(cfg.HTTPClientTimeout()),
		Identity:   identity,
		Storage:    storage,
		Bucket:     cfg.StorageBucket,
		Normalizer: media.NewAvatarNormalizer(cfg.AvatarMaxDimension, cfg.AvatarJPEGQuality),
		Records:    records,
		Events:     telemetry.Multi(emitters...),
		Texts:      texts,
		Regions:    regions,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	if cfg.HealthAddr != "" {
		stopHealth, err := server.Serve(cfg.HealthAddr, server.Deps{Pingers: pingers, Logger: logger})
		if err != nil {
			return fmt.Errorf("health: %w", err)
		}
		defer stopHealth()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = cfg.TelegramPollTimeout
	u.AllowedUpdates = []string{"message"}
	updates := bot.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		bot.StopReceivingUpdates()
	}()

	logger.Info("bot: polling for updates",
		zap.String("username", bot.Self.UserName),
		zap.Int("workers", cfg.DispatchWorkers),
		zap.String("identity_provider", cfg.IdentityProvider),
		zap.String("record_store", cfg.RecordStore),
		zap.String("session_store", cfg.SessionStore))
	telegram.NewDispatcher(engine, cfg.DispatchWorkers, logger).Run(ctx, updates)

	logger.Info("bot: shutting down, draining telemetry")
	time.Sleep(telemetry.ShutdownDrainDuration)
	return nil
}

// newSessionStore builds the configured store and registers it for health checks when it can be pinged.
func newSessionStore(cfg *config.Config, pingers map[string]healthhandler.Pinger) (sessionrepo.Repository, func(), error) {
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := sessionrepo.NewRedisStore(client, cfg.SessionTTL())
		pingers["redis"] = store
		return store, func() { _ = client.Close() }, nil
	case config.SessionStoreMemory:
		return sessionrepo.NewMemoryStore(cfg.SessionTTL()), func() {}, nil
	default:
		return nil, nil, errors.New("config: unknown session store " + cfg.SessionStore)
	}
}
