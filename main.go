package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finteach/internal/config"
	"finteach/internal/database"
	"finteach/internal/logger"
	"finteach/internal/router"

	"go.uber.org/zap"
)

func main() {
	// load configuration
	cfg, err := config.Load(os.Getenv("FINTEACH_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl := logger.New(cfg.Log)
	defer func() { _ = zl.Sync() }()

	// init database
	db, err := database.Init(cfg.Database, zl)
	if err != nil {
		zl.Fatal("init database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		zl.Fatal("migrate database", zap.Error(err))
	}

	// setup router
	r, err := router.SetupRouter(cfg, db, zl)
	if err != nil {
		zl.Fatal("setup router", zap.Error(err))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server shutdown", zap.Error(err))
	}
}
