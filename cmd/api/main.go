package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	oracleport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/oracle"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/categorize"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/dedup"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/ingestion"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/oracle"
	"github.com/amirhossein-jamali/upi-tracker/internal/domain/usecase/parser"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/memory"
	oracleadapter "github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/oracle"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/repository"
	timeProvider "github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/config"
)

// storage bundles the repositories of the selected driver
type storage struct {
	transactions persistence.TransactionRepository
	categories   persistence.CategoryRepository
	pinger       handler.Pinger
	close        func() error
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := validateServerConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewFromConfig(cfg.Logger.Level, cfg.Logger.Format)
	defer func() { _ = appLogger.Flush() }()

	tp := timeProvider.NewRealTimeProvider()
	ctx := context.Background()

	store, err := setupStorage(ctx, cfg, appLogger, tp)
	if err != nil {
		appLogger.Error("Failed to initialize storage", map[string]any{
			"driver": cfg.Database.Driver,
			"error":  err.Error(),
		})
		os.Exit(1)
	}
	defer func() { _ = store.close() }()

	// The oracle loads in the background; until it is ready the keyword rules answer alone.
	oracleHandle := oracle.NewHandle(oracleadapter.NewLoader(cfg.Oracle, appLogger), appLogger)
	oracleHandle.Warmup(ctx)
	defer func() { _ = oracleHandle.Close() }()

	oracleTimeout := coreport.Duration(cfg.Oracle.Timeout())
	engine := categorize.NewEngine(categorize.NewRuleClassifier(), categoryOracle(cfg, oracleHandle), tp, oracleTimeout, appLogger)

	var messageParser usecase.MessageParser = parser.NewPatternParser()
	if cfg.Ingestion.ParserStrategy == config.ParserStrategyOracle {
		messageParser = parser.NewOracleParser(oracleHandle, tp, oracleTimeout, appLogger)
	}

	pipeline := ingestion.NewPipeline(
		messageParser,
		dedup.NewDetector(store.transactions),
		engine,
		store.transactions,
		store.categories,
		tp,
		appLogger,
	)

	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()
	dispatcher := ingestion.NewDispatcher(
		pipeline,
		ingestion.NewSenderAllowlist(cfg.Ingestion.SenderAllowlist),
		tp,
		appLogger,
		cfg.Ingestion.ConcurrencyLevel,
		cfg.Ingestion.QueueSize,
	)
	dispatcher.Start(dispatchCtx)

	feedback := categorize.NewFeedbackRecorder(store.transactions, store.categories, appLogger)
	recategorizer := categorize.NewRecategorizer(engine, store.transactions, store.categories, appLogger)

	// finish whatever a previous run persisted without a category
	if n, err := recategorizer.ResumePending(ctx, cfg.Ingestion.RecategorizeBatchSize); err != nil {
		appLogger.Warn("Startup recategorization failed", map[string]any{"error": err.Error()})
	} else if n > 0 {
		appLogger.Info("Startup recategorization completed", map[string]any{"updated": n})
	}

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger, tp)
	routes.SetupRoutes(router, routes.Handlers{
		Messages:     handler.NewMessageHandler(dispatcher, messageParser, pipeline, tp, appLogger),
		Transactions: handler.NewTransactionHandler(store.transactions, feedback, recategorizer, cfg.Ingestion.RecategorizeBatchSize, appLogger),
		Categories:   handler.NewCategoryHandler(store.categories, categorize.NewCategoryManager(store.categories, appLogger)),
		Health:       handler.NewHealthHandler(store.pinger, oracleHandle, tp, appLogger),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port":            cfg.Server.Port,
			"env":             cfg.Environment,
			"database_driver": cfg.Database.Driver,
			"parser_strategy": cfg.Ingestion.ParserStrategy,
			"oracle_enabled":  cfg.Oracle.Enabled,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// stop HTTP intake first so no new notifications reach the dispatcher
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("Dispatcher did not drain before the deadline", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}

// categoryOracle returns nil when the oracle is disabled so the engine skips the oracle tier entirely
func categoryOracle(cfg *config.Config, h *oracle.Handle) oracleport.CategoryOracle {
	if !cfg.Oracle.Enabled {
		return nil
	}
	return h
}

func setupStorage(ctx context.Context, cfg *config.Config, appLogger coreport.Logger, tp coreport.TimeProvider) (*storage, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		appLogger.Warn("Using in-memory storage; data is lost on restart", nil)
		store := memory.NewStore(tp)
		if err := migration.SeedDefaultCategories(ctx, store, appLogger); err != nil {
			return nil, err
		}
		return &storage{
			transactions: store,
			categories:   store,
			close:        func() error { return nil },
		}, nil

	case config.DriverPostgres:
		dbManager := database.NewManager(database.ConfigFromAppConfig(cfg), appLogger, tp)
		db, err := dbManager.Connect(ctx)
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		if err := dbManager.Migrate(ctx); err != nil {
			_ = dbManager.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}

		metrics := database.NewMetricsCollector(appLogger, tp)
		categories := repository.NewCategoryRepository(db, tp, appLogger)
		if err := migration.SeedDefaultCategories(ctx, categories, appLogger); err != nil {
			_ = dbManager.Close()
			return nil, fmt.Errorf("seed categories: %w", err)
		}

		return &storage{
			transactions: repository.NewTransactionRepository(db, metrics, appLogger),
			categories:   categories,
			pinger:       dbManager,
			close:        dbManager.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}
}

// validateServerConfig checks settings that only the HTTP entrypoint needs
func validateServerConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}
	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}
	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}
	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}
	if cfg.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	if cfg.Environment == config.Production {
		var warnings []string

		if cfg.Database.Driver == config.DriverMemory {
			warnings = append(warnings, "database.driver is 'memory' in production")
		}
		sslMode := strings.ToLower(cfg.Database.SSLMode)
		if cfg.Database.Driver == config.DriverPostgres && sslMode != "require" && sslMode != "verify-ca" && sslMode != "verify-full" {
			warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
		}
		if cfg.Server.ReadTimeout < 5*time.Second {
			warnings = append(warnings, "server.readTimeout is too low for production")
		}

		if len(warnings) > 0 {
			log.Printf("Warning: potential issues in production configuration: %v", warnings)
		}
	}

	return nil
}
