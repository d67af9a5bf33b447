package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fatihgnc/taskman-api/internal/config"
	"github.com/fatihgnc/taskman-api/internal/mailer"
	"github.com/fatihgnc/taskman-api/internal/platform/logger"
	"github.com/fatihgnc/taskman-api/internal/platform/postgres"
	"github.com/fatihgnc/taskman-api/internal/service"
	"github.com/fatihgnc/taskman-api/internal/service/auth"
	"github.com/fatihgnc/taskman-api/internal/store"
)

// application holds the composed dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService auth.JWTService

	userService service.UserService
	taskService service.TaskService

	dispatcher *mailer.Dispatcher
}

// newApplication loads configuration, connects to the database, runs
// migrations, and wires every service.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(ctx, db, log); err != nil {
		closeQuietly(db, log)
		return nil, err
	}

	hasher := auth.NewBcryptHasher()
	userStore := postgres.NewPostgresUserStore(db, hasher, log)
	taskStore := postgres.NewPostgresTaskStore(db, log)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		closeQuietly(db, log)
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	sendgridMailer := mailer.NewSendGridMailer(cfg.Email)
	dispatcher := mailer.NewDispatcher(sendgridMailer, mailer.DefaultDispatcherConfig(), log)
	dispatcher.Start()

	userService := service.NewUserService(db, userStore, taskStore, jwtService, hasher, dispatcher, log)
	taskService := service.NewTaskService(taskStore, log)

	return &application{
		config:      cfg,
		logger:      log,
		db:          db,
		userStore:   userStore,
		taskStore:   taskStore,
		jwtService:  jwtService,
		userService: userService,
		taskService: taskService,
		dispatcher:  dispatcher,
	}, nil
}

// cleanup releases the application's resources. The dispatcher stops first
// so queued emails drain before the process exits.
func (app *application) cleanup() {
	app.dispatcher.Stop()
	closeQuietly(app.db, app.logger)
}

func closeQuietly(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Error("failed to close database connection", "error", err)
	}
}
