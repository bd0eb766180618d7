package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/materialflow/mrs-management/internal"
	"github.com/materialflow/mrs-management/internal/approver"
	approverpg "github.com/materialflow/mrs-management/internal/approver/postgres"
	"github.com/materialflow/mrs-management/internal/auth"
	authpg "github.com/materialflow/mrs-management/internal/auth/postgres"
	"github.com/materialflow/mrs-management/internal/auth/rbac"
	"github.com/materialflow/mrs-management/internal/core/events"
	"github.com/materialflow/mrs-management/internal/orgunit"
	orgunitpg "github.com/materialflow/mrs-management/internal/orgunit/postgres"
	"github.com/materialflow/mrs-management/internal/request"
	requestpg "github.com/materialflow/mrs-management/internal/request/postgres"
	"github.com/materialflow/mrs-management/internal/transport/rest"
	"github.com/materialflow/mrs-management/internal/transport/swagger"
	"github.com/materialflow/mrs-management/internal/user"
	userpg "github.com/materialflow/mrs-management/internal/user/postgres"
	"github.com/materialflow/mrs-management/pkg/logger"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const openAPISpecPath = "./api/openapi.yml"

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	// A broken API document should fail the boot, not the swagger UI later.
	if _, err := os.Stat(openAPISpecPath); err == nil {
		if err := swagger.ValidateSpec(context.Background(), openAPISpecPath); err != nil {
			return nil, err
		}
	}

	gormDB, err := openGorm(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying database: %w", err)
	}
	sqlDB.SetMaxOpenConns(config.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.Database.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.Database.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// sqlx wraps the same pool; health checks and ad-hoc reads go through it.
	db := sqlx.NewDb(sqlDB, config.Database.Driver)

	bus := events.NewEventBus(lg)
	registerAuditLog(bus, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)

	authService := auth.NewService(authpg.NewAuthRepository(gormDB), tokenGen)
	userService := user.NewService(userpg.NewUserRepository(gormDB), config.Security.BCryptCost, lg)
	orgUnitService := orgunit.NewService(orgunitpg.NewOrgUnitRepository(gormDB), lg)
	approverService := approver.NewService(approverpg.NewApproverRepository(gormDB), lg)
	requestService := request.NewService(
		requestpg.NewRequestRepository(gormDB),
		approverService,
		orgUnitService,
		bus,
		lg,
	)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db, rest.Handlers{
		Auth:     auth.NewHandler(authService),
		RBAC:     rbac.NewRBACAuthorization(lg),
		User:     user.NewHandler(userService),
		OrgUnit:  orgunit.NewHandler(orgUnitService),
		Approver: approver.NewHandler(approverService),
		Request:  request.NewHandler(requestService),
	}, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Router: router,
	}, nil
}

func openGorm(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return gorm.Open(gormsqlite.Open(cfg.Source), &gorm.Config{})
	default:
		return gorm.Open(gormpostgres.Open(cfg.Source), &gorm.Config{})
	}
}

// registerAuditLog writes every request lifecycle change to the structured
// log, giving a queryable trail without a dedicated audit table.
func registerAuditLog(bus *events.EventBus, lg *slog.Logger) {
	eventTypes := []string{
		events.EventTypeRequestCreated,
		events.EventTypeRequestSubmitted,
		events.EventTypeRequestRecommended,
		events.EventTypeRequestApproved,
		events.EventTypeRequestDisapproved,
		events.EventTypeRequestPosted,
		events.EventTypeRequestReceived,
		events.EventTypeRequestCancelled,
		events.EventTypeRequestForEdit,
	}
	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			lg.Info("request lifecycle event",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"occurred_at", event.OccurredAt(),
				"payload", event.Payload())
			return nil
		})
	}
}
