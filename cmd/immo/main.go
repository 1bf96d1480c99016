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

	"github.com/joho/godotenv"

	appoutbox "immo/internal/app/outbox"
	adssvc "immo/internal/app/services/ads"
	authsvc "immo/internal/app/services/auth"
	bookingssvc "immo/internal/app/services/bookings"
	propertiessvc "immo/internal/app/services/properties"
	userssvc "immo/internal/app/services/users"
	domainad "immo/internal/domain/ad"
	domainauth "immo/internal/domain/auth"
	domainbooking "immo/internal/domain/booking"
	domainproperty "immo/internal/domain/property"
	domainuser "immo/internal/domain/user"
	"immo/internal/infra/broker/kafka"
	"immo/internal/infra/config"
	mongodb "immo/internal/infra/db/mongo"
	ginserver "immo/internal/infra/http/gin"
	"immo/internal/infra/obs"
	infraoutbox "immo/internal/infra/outbox"
	"immo/internal/infra/security"
	"immo/internal/infra/storage/memory"
	"immo/internal/infra/storage/s3"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	stores, ready := buildStores(ctx, cfg, logger)
	app := buildApplication(cfg, stores, logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: ready}, app)

	if len(cfg.KafkaBrokers) > 0 {
		go runOutboxWorker(ctx, cfg, stores.outboxStore, logger)
	} else {
		logger.Info("kafka brokers not configured, events stay in the outbox")
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type stores struct {
	users       domainuser.Repository
	sessions    domainauth.SessionStore
	properties  domainproperty.Repository
	ads         domainad.Repository
	bookings    domainbooking.Repository
	outbox      appoutbox.Outbox
	outboxStore infraoutbox.Store
	uploader    propertiessvc.ImageUploader
}

// buildStores connects Mongo when configured and falls back to the
// in-memory repositories otherwise, so the service still comes up for
// local development without a database.
func buildStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, func() error) {
	var s stores

	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = client.Ping(pingCtx)
			cancel()
			if err == nil {
				if err := mongodb.EnsureIndexes(ctx, client.DB); err != nil {
					logger.Error("index creation failed", "error", err)
				}
				outboxStore := infraoutbox.NewMongoStore(client.DB)
				s.users = mongodb.NewUserRepository(client.DB)
				s.sessions = mongodb.NewSessionStore(client.DB)
				s.properties = mongodb.NewPropertyRepository(client.DB)
				s.ads = mongodb.NewAdRepository(client.DB)
				s.bookings = mongodb.NewBookingRepository(client.DB)
				s.outbox = outboxStore
				s.outboxStore = outboxStore
				s.uploader = buildUploader(cfg, logger)
				logger.Info("mongo storage ready", "db", cfg.MongoDB)
				return s, func() error { return client.Ping(context.Background()) }
			}
		}
		logger.Warn("mongo unavailable, using in-memory storage", "error", err)
	}

	outboxStore := memory.NewOutboxStore()
	s.users = memory.NewUserRepository()
	s.sessions = memory.NewSessionStore()
	s.properties = memory.NewPropertyRepository()
	s.ads = memory.NewAdRepository()
	s.bookings = memory.NewBookingRepository()
	s.outbox = outboxStore
	s.outboxStore = outboxStore
	s.uploader = buildUploader(cfg, logger)
	return s, func() error { return nil }
}

func buildUploader(cfg config.Config, logger *slog.Logger) propertiessvc.ImageUploader {
	uploader, err := s3.NewUploader(s3.Options{
		Endpoint:      cfg.S3Endpoint,
		UseSSL:        cfg.S3UseSSL,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicEndpoint,
	}, logger)
	if err != nil {
		logger.Warn("object storage unavailable, image uploads disabled", "error", err)
		return s3.NoopUploader{}
	}
	return uploader
}

func buildApplication(cfg config.Config, s stores, logger *slog.Logger) ginserver.Handlers {
	authService := &authsvc.Service{
		Users:      s.users,
		Sessions:   s.sessions,
		Passwords:  security.BcryptHasher{Cost: cfg.BcryptCost},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	usersService := &userssvc.Service{
		Users:      s.users,
		Properties: s.properties,
		Logger:     logger,
	}
	propertiesService := &propertiessvc.Service{
		Properties: s.properties,
		Uploader:   s.uploader,
		Logger:     logger,
	}
	adsService := &adssvc.Service{
		Ads:        s.ads,
		Properties: s.properties,
		Outbox:     s.outbox,
		Logger:     logger,
	}
	bookingsService := &bookingssvc.Service{
		Bookings:   s.bookings,
		Ads:        s.ads,
		Properties: s.properties,
		Outbox:     s.outbox,
		Logger:     logger,
	}

	return ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
		User:           ginserver.UserHandler{Service: usersService, Logger: logger},
		Property:       ginserver.PropertyHandler{Service: propertiesService, Logger: logger},
		Ad:             ginserver.AdHandler{Service: adsService, Logger: logger},
		Booking:        ginserver.BookingHandler{Service: bookingsService, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}
}

func runOutboxWorker(ctx context.Context, cfg config.Config, store infraoutbox.Store, logger *slog.Logger) {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		logger.Error("kafka producer init failed, events stay in the outbox", "error", err)
		return
	}
	defer producer.Close()

	worker := &infraoutbox.Worker{
		Store:       store,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
	}
	logger.Info("outbox worker starting", "brokers", cfg.KafkaBrokers)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("outbox worker stopped", "error", err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
