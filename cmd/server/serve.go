package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogapi/internal/config"
	"blogapi/internal/db"
	"blogapi/internal/middleware"
	"blogapi/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the schema and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := cfg.NewLogger()
	// GIN_MODE 未设置时按日志级别决定
	if os.Getenv(gin.EnvGinMode) == "" && cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.Open(cfg, log)
	if err != nil {
		return err
	}
	if err := db.Migrate(conn); err != nil {
		return err
	}
	if !cfg.StrictAuth {
		log.Warn("STRICT_AUTH is off: comment create/update and notification listing accept unauthenticated requests")
	}

	engine, err := router.New(router.Deps{
		Config:  cfg,
		DB:      conn,
		Log:     log,
		Metrics: middleware.NewMetrics(),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("blogapi server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}
