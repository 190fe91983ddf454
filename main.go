// sbbs/main.go
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"sbbs/auth"
	"sbbs/config"
	"sbbs/database"
	"sbbs/handlers"
	"sbbs/models"
	"sbbs/services"
	"sbbs/utils"
)

type Application struct {
	logger      *slog.Logger
	cfg         *config.Config
	boards      *services.BoardService
	threads     *services.ThreadService
	authManager *auth.Manager
	sessions    *auth.SessionStore
	password    *services.PasswordAuthService
	rateLimiter *models.RateLimiter
	backups     *database.BackupService
}

// Methods to satisfy the handlers.App interface
func (a *Application) Logger() *slog.Logger                    { return a.logger }
func (a *Application) Config() *config.Config                  { return a.cfg }
func (a *Application) Boards() *services.BoardService          { return a.boards }
func (a *Application) Threads() *services.ThreadService        { return a.threads }
func (a *Application) Auth() *auth.Manager                     { return a.authManager }
func (a *Application) Sessions() *auth.SessionStore            { return a.sessions }
func (a *Application) Password() *services.PasswordAuthService { return a.password }
func (a *Application) RateLimiter() *models.RateLimiter        { return a.rateLimiter }
func (a *Application) Backups() *database.BackupService        { return a.backups }

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.FromEnv()

	port := utils.GetEnv("SBBS_PORT", "8080")

	rateLimitEvery, err := time.ParseDuration(utils.GetEnv("SBBS_RATE_EVERY", config.DefaultRateLimitEvery))
	if err != nil {
		logger.Warn("Invalid SBBS_RATE_EVERY duration, using default", "value", utils.GetEnv("SBBS_RATE_EVERY", ""), "default", config.DefaultRateLimitEvery)
		rateLimitEvery, _ = time.ParseDuration(config.DefaultRateLimitEvery)
	}
	rateLimitBurst, err := strconv.Atoi(utils.GetEnv("SBBS_RATE_BURST", strconv.Itoa(config.DefaultRateLimitBurst)))
	if err != nil {
		logger.Warn("Invalid SBBS_RATE_BURST integer, using default", "value", utils.GetEnv("SBBS_RATE_BURST", ""), "default", config.DefaultRateLimitBurst)
		rateLimitBurst = config.DefaultRateLimitBurst
	}
	rateLimitPrune, err := time.ParseDuration(utils.GetEnv("SBBS_RATE_PRUNE", config.DefaultRateLimitPrune))
	if err != nil {
		logger.Warn("Invalid SBBS_RATE_PRUNE duration, using default", "value", utils.GetEnv("SBBS_RATE_PRUNE", ""), "default", config.DefaultRateLimitPrune)
		rateLimitPrune, _ = time.ParseDuration(config.DefaultRateLimitPrune)
	}
	rateLimitExpire, err := time.ParseDuration(utils.GetEnv("SBBS_RATE_EXPIRE", config.DefaultRateLimitExpire))
	if err != nil {
		logger.Warn("Invalid SBBS_RATE_EXPIRE duration, using default", "value", utils.GetEnv("SBBS_RATE_EXPIRE", ""), "default", config.DefaultRateLimitExpire)
		rateLimitExpire, _ = time.ParseDuration(config.DefaultRateLimitExpire)
	}

	manager, err := database.NewManager(cfg.StoragePath, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "path", cfg.StoragePath, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := manager.Close(); err != nil {
			logger.Error("Failed to close databases", "error", err)
		}
	}()

	boardStore := database.NewBoardStore(manager, logger)
	threadStore := database.NewThreadStore(manager, logger)
	userStore := database.NewUserStore(manager, logger)

	boardService := services.NewBoardService(manager, boardStore, logger)
	threadService := services.NewThreadService(cfg, boardService, threadStore, boardStore, logger)

	sessions := auth.NewSessionStore(1*time.Hour, 24*time.Hour)

	// --- Authentication ---
	var authenticator auth.Authenticator
	var passwordService *services.PasswordAuthService
	switch mode := utils.GetEnv("SBBS_AUTH_MODE", "guest"); mode {
	case "guest":
		authenticator = auth.NewGuestAuthenticator()
	case "password":
		sessionAuth := auth.NewSessionAuthenticator(userStore, logger)
		authenticator = sessionAuth
		passwordService = services.NewPasswordAuthService(userStore, sessionAuth, &services.LogMailer{Logger: logger}, logger)
	case "preauth":
		authenticator = auth.NewPreAuthenticatedAuthenticator(&models.Identity{
			ID:    utils.GetEnv("SBBS_PREAUTH_ID", "preauth"),
			Name:  utils.GetEnv("SBBS_PREAUTH_NAME", "Operator"),
			Email: utils.GetEnv("SBBS_PREAUTH_EMAIL", ""),
		})
	default:
		logger.Error("Unknown SBBS_AUTH_MODE", "mode", mode)
		os.Exit(1)
	}

	// --- Backup Target Init ---
	var backupTarget utils.BackupTarget
	if utils.GetEnv("SBBS_S3_ENABLED", "false") == "true" {
		endpoint := utils.GetEnv("SBBS_S3_ENDPOINT", "")
		accessKey := utils.GetEnv("SBBS_S3_ACCESS_KEY", "")
		secretKey := utils.GetEnv("SBBS_S3_SECRET_KEY", "")
		bucket := utils.GetEnv("SBBS_S3_BUCKET", "")
		region := utils.GetEnv("SBBS_S3_REGION", "us-east-1")
		prefix := utils.GetEnv("SBBS_S3_PREFIX", "backups")
		useSSL := utils.GetEnv("SBBS_S3_USE_SSL", "true") == "true"

		backupTarget, err = utils.NewS3BackupTarget(endpoint, accessKey, secretKey, bucket, region, prefix, useSSL)
		if err != nil {
			logger.Error("Failed to initialize S3 backup target", "error", err)
			os.Exit(1)
		}
		logger.Info("S3 backup target initialized", "endpoint", endpoint, "bucket", bucket)
	} else {
		backupDir := utils.GetEnv("SBBS_BACKUP_DIR", "./backups")
		if err := os.MkdirAll(backupDir, 0755); err != nil {
			logger.Error("FATAL: Could not create backup directory", "path", backupDir, "error", err)
			os.Exit(1)
		}
		backupTarget = &utils.LocalBackupTarget{Dir: backupDir}
		logger.Info("Local backup target initialized", "dir", backupDir)
	}

	app := &Application{
		logger:      logger,
		cfg:         cfg,
		boards:      boardService,
		threads:     threadService,
		authManager: auth.NewManager(authenticator),
		sessions:    sessions,
		password:    passwordService,
		rateLimiter: models.NewRateLimiter(rateLimitEvery, rateLimitBurst, rateLimitPrune, rateLimitExpire),
		backups:     database.NewBackupService(manager, backupTarget, logger),
	}

	mux := handlers.SetupRouter(app)

	// --- Graceful Shutdown ---
	server := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("sbbs server started successfully",
		"version", config.AppVersion,
		"address", "http://localhost:"+port,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("Server exiting")
}
