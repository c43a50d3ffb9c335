package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskcalendar/db"
	"github.com/monocle-dev/taskcalendar/internal/auth"
	"github.com/monocle-dev/taskcalendar/internal/config"
	"github.com/monocle-dev/taskcalendar/internal/handlers"
	"github.com/monocle-dev/taskcalendar/internal/logger"
	"github.com/monocle-dev/taskcalendar/internal/realtime"
	"github.com/monocle-dev/taskcalendar/internal/router"
	"github.com/monocle-dev/taskcalendar/internal/services"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	appLog := logger.New("taskcalendar", cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	conn, err := db.Connect(cfg.DBDriver, cfg.DatabaseURL, appLog)

	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}

	defer db.Close(conn)

	if err = db.Migrate(conn); err != nil {
		appLog.WithError(err).Fatal("Failed to migrate database")
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)

	if err != nil {
		appLog.WithError(err).Fatal("Failed to create token service")
	}

	passwords, err := auth.NewPasswordHasher(cfg.BcryptCost)

	if err != nil {
		appLog.WithError(err).Fatal("Failed to create password hasher")
	}

	hub := realtime.NewHub(cfg.AllowAllOrigins(), cfg.AllowedOrigins, appLog)

	service := services.New(services.Options{
		DB:        conn,
		Tokens:    tokens,
		Passwords: passwords,
		Notifier:  hub,
		Logger:    appLog,
	})

	r := router.NewRouter(handlers.New(service, hub, conn, appLog), router.Options{
		BasePath:        cfg.APIBasePath,
		AllowAllOrigins: cfg.AllowAllOrigins(),
		AllowedOrigins:  cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		appLog.WithField("port", cfg.Port).Info("Server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Server shutdown failed")
	}
}
