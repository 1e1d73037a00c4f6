package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/iwvelando/credit-wizard/internal/config"
	"github.com/iwvelando/credit-wizard/internal/logging"
	"github.com/iwvelando/credit-wizard/internal/metrics"
	"github.com/iwvelando/credit-wizard/internal/server"
	"github.com/iwvelando/credit-wizard/internal/session"
	"github.com/iwvelando/credit-wizard/internal/submission"
	"github.com/iwvelando/credit-wizard/internal/wizard"
	"github.com/iwvelando/credit-wizard/pkg/constants"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	serverConf, err := server.LoadConfig(*serverConfigLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfigLocation, err)
		os.Exit(1)
	}

	loggingConf := conf.Logging
	if serverConf.Logging.Level != "" || serverConf.Logging.Format != "" || serverConf.Logging.OutputFile != "" {
		loggingConf = serverConf.Logging
	}
	logger, err := logging.New(loggingConf, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if err := run(conf, serverConf, logger); err != nil {
		logger.Fatal("server stopped with error",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func run(conf *config.Configuration, serverConf *server.Config, logger *zap.Logger) error {
	ctx := context.Background()

	store, closeStore, err := openSessionStore(ctx, conf.Session, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	secret := conf.Session.Secret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		logger.Warn("using a random session secret, sessions will not survive a restart",
			zap.String("op", "main.run"),
		)
	}
	tokens, err := session.NewTokens(secret, conf.Session.Issuer, conf.Session.TTL)
	if err != nil {
		return fmt.Errorf("create session tokens: %w", err)
	}

	repo, err := openRepository(ctx, conf.Database, logger)
	if err != nil {
		return err
	}

	var notifier submission.Notifier = submission.NopNotifier{}
	if len(conf.Notifications.Brokers) > 0 {
		notifier = submission.NewKafkaNotifier(conf.Notifications.Brokers, conf.Notifications.Topic)
		logger.Info("publishing submissions to kafka",
			zap.String("op", "main.run"),
			zap.Strings("brokers", conf.Notifications.Brokers),
			zap.String("topic", conf.Notifications.Topic),
		)
	}
	defer func() {
		if err := notifier.Close(); err != nil {
			logger.Warn("failed to close notifier",
				zap.String("op", "main.run"),
				zap.Error(err),
			)
		}
	}()

	handler, err := server.NewHandler(server.Options{
		Logger:    logger,
		Store:     store,
		Tokens:    tokens,
		Tariff:    conf.Simulator.Tariff,
		Submitter: submission.NewService(repo, notifier, logger),
		Wizard: wizard.Config{
			Debounce:        conf.Wizard.DebounceInterval,
			MaxDocumentSize: conf.Wizard.MaxDocumentSizeBytes,
		},
		WizardIdleTTL: conf.Wizard.IdleTTL,
		Metrics:       metrics.New(),
		RateLimit:     serverConf.RateLimit,
		MaxUploadSize: serverConf.UploadSizeBytes(),
		CookieSecure:  serverConf.CookieSecure,
		SessionTTL:    conf.Session.TTL,
		Version:       version,
	})
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	srv := &http.Server{
		Addr:         serverConf.Address,
		Handler:      handler,
		ReadTimeout:  serverConf.ReadTimeout,
		WriteTimeout: serverConf.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", "main.run"),
			zap.String("address", serverConf.Address),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		handler.Close(ctx)
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		logger.Info("shutting down",
			zap.String("op", "main.run"),
			zap.String("signal", sig.String()),
		)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, serverConf.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown",
			zap.String("op", "main.run"),
			zap.Error(err),
		)
	}
	handler.Close(shutdownCtx)
	logger.Info("server exited", zap.String("op", "main.run"))
	return nil
}

func openSessionStore(ctx context.Context, conf config.SessionConfig, logger *zap.Logger) (session.Store, func(), error) {
	if conf.Backend != config.BackendRedis {
		return session.NewMemoryStore(conf.TTL), func() {}, nil
	}

	store := session.NewRedisStore(session.RedisOptions{
		Addr:      conf.Redis.Addr,
		Password:  conf.Redis.Password,
		DB:        conf.Redis.DB,
		KeyPrefix: conf.Redis.KeyPrefix,
		TTL:       conf.TTL,
	})
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", conf.Redis.Addr, err)
	}
	logger.Info("using redis session store",
		zap.String("op", "main.openSessionStore"),
		zap.String("addr", conf.Redis.Addr),
	)
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close redis client",
				zap.String("op", "main.openSessionStore"),
				zap.Error(err),
			)
		}
	}, nil
}

func openRepository(ctx context.Context, conf config.DatabaseConfig, logger *zap.Logger) (submission.Repository, error) {
	if conf.DSN == "" {
		logger.Warn("no database configured, requests are kept in memory",
			zap.String("op", "main.openRepository"),
		)
		return submission.NewMemoryRepository(), nil
	}

	db, err := submission.OpenPostgres(conf.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	repo := submission.NewGormRepository(db)
	if conf.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}
	return repo, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
