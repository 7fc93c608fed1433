package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salon_backend/internal/config"
	"salon_backend/internal/database"
	"salon_backend/internal/notifications"
	"salon_backend/internal/repositories"
	"salon_backend/internal/router"
	"salon_backend/internal/services"
	"salon_backend/internal/validation"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "salon-server",
		Short:         "Salon & spa management backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe()
			},
		},
		&cobra.Command{
			Use:       "migrate [up|down]",
			Short:     "Apply or roll back the database schema",
			Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{string(database.MigrateUp), string(database.MigrateDown)},
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(database.MigrateDirection(args[0]))
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the build version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	return root
}

// bootstrap loads configuration, sets up logging and opens the database.
func bootstrap() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("info", true)
		utils.LogError(err, "Invalid configuration")
		return nil, nil, err
	}
	utils.InitLogger(cfg.App.LogLevel, cfg.App.IsDevelopment())

	db, err := database.InitDB(cfg.Database.DSN())
	if err != nil {
		utils.LogError(err, "Failed to initialize database")
		return nil, nil, err
	}
	return cfg, db, nil
}

func runMigrate(direction database.MigrateDirection) error {
	_, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(db, direction); err != nil {
		utils.LogError(err, "Migration failed", map[string]interface{}{"direction": string(direction)})
		return err
	}
	utils.LogInfo("Migrations applied", map[string]interface{}{"direction": string(direction)})
	return nil
}

func runServe() error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	utils.InitJWT(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	if err := validation.Register(); err != nil {
		utils.LogError(err, "Failed to register validators")
		return err
	}

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db, database.MigrateUp); err != nil {
			utils.LogError(err, "Auto-migration failed")
			return err
		}
	}

	authService := services.NewAuthService(repositories.NewAuthRepository(db), repositories.NewTransactor(db), cfg.Auth.BcryptCost)
	created, err := authService.EnsureAdmin(cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.FirstName, cfg.Admin.LastName)
	if err != nil {
		utils.LogError(err, "Failed to bootstrap admin account")
		return err
	}
	if !created && cfg.Admin.Email == "" {
		utils.LogDebug("ADMIN_EMAIL not set, skipping admin bootstrap")
	}

	if !cfg.SMS.SMSEnabled() {
		utils.LogWarn("Hubtel credentials not set, SMS will not be delivered")
	}
	notifier := notifications.NewHubtelClient(notifications.HubtelConfig{
		APIURL:       cfg.SMS.APIURL,
		ClientID:     cfg.SMS.ClientID,
		ClientSecret: cfg.SMS.ClientSecret,
		SenderID:     cfg.SMS.SenderID,
		Timeout:      cfg.SMS.Timeout,
		MaxRetries:   cfg.SMS.MaxRetries,
	}, nil)

	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.NewEngine(cfg.App)
	drain := router.Setup(engine, db, cfg, notifier)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.App.Port, "env": cfg.App.Environment, "version": version})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			utils.LogError(err, "Failed to start server")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	utils.LogInfo("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)
	// Thank-you sends still hold the DB; they must finish before db.Close runs.
	if err := drain(shutdownCtx); err != nil {
		utils.LogWarn("Pending SMS sends abandoned at shutdown", map[string]interface{}{"error": err.Error()})
	}
	if shutdownErr != nil {
		utils.LogError(shutdownErr, "Graceful shutdown failed")
		return shutdownErr
	}
	utils.LogInfo("Server stopped")
	return nil
}
