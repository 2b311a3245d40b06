// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/FloorOps/pkg/extensions"
	"github.com/AleutianAI/FloorOps/pkg/logging"
	"github.com/AleutianAI/FloorOps/services/timeclock/config"
	"github.com/AleutianAI/FloorOps/services/timeclock/engine"
	"github.com/AleutianAI/FloorOps/services/timeclock/policy"
	"github.com/AleutianAI/FloorOps/services/timeclock/recovery"
	"github.com/AleutianAI/FloorOps/services/timeclock/routes"
	"github.com/AleutianAI/FloorOps/services/timeclock/store"
	storage "github.com/AleutianAI/FloorOps/services/timeclock/storage/badger"
	"github.com/AleutianAI/FloorOps/services/timeclock/telemetry"
)

func parseLogLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Global

	logger := logging.New(logging.Config{
		Level:   parseLogLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.LogDir,
		Service: "timeclock",
		JSON:    cfg.Logging.JSON,
		Quiet:   cfg.Logging.Quiet,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	// --- Init telemetry ---
	telCfg := telemetry.DefaultConfig()
	telCfg.TraceExporter = cfg.Telemetry.TraceExporter
	telCfg.MetricExporter = cfg.Telemetry.MetricExporter
	if cfg.Telemetry.OTLPEndpoint != "" {
		telCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	}
	telShutdown, err := telemetry.Init(context.Background(), telCfg)
	if err != nil {
		log.Fatalf("failed to setup telemetry: %v", err)
	}
	defer telShutdown(context.Background())

	// --- Open the timer database ---
	dbCfg := storage.DefaultConfig()
	dbCfg.Path = cfg.Storage.Path
	dbCfg.InMemory = cfg.Storage.InMemory
	dbCfg.SyncWrites = cfg.Storage.SyncWrites
	dbCfg.Logger = logger.Slog()
	if cfg.Storage.GCIntervalMinutes > 0 {
		dbCfg.GCInterval = time.Duration(cfg.Storage.GCIntervalMinutes) * time.Minute
	}
	if cfg.Storage.GCDiscardRatio > 0 {
		dbCfg.GCDiscardRatio = cfg.Storage.GCDiscardRatio
	}
	db, err := storage.OpenDB(dbCfg)
	if err != nil {
		log.Fatalf("failed to open timer database: %v", err)
	}
	defer db.Close()

	// --- Wire the domain ---
	logs := store.NewTimeLogStore(db)
	snaps := store.NewSnapshotStore(db)
	clock := engine.SystemClock()
	eng := engine.New(logs, clock, logger.Slog())
	limiter := policy.NewLimiter(cfg.Policy.DailyLimitMinutes, clock, logger.Slog())
	rec := recovery.New(eng, logs, snaps, limiter, clock, logger.Slog())

	if cfg.Server.Mode != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(otelgin.Middleware("timeclock-service"))

	routes.SetupRoutes(router, routes.Deps{
		DB:       db,
		Engine:   eng,
		Recovery: rec,
		Limiter:  limiter,
		Auth:     &extensions.NopAuthProvider{},
	})

	port := os.Getenv("TIMECLOCK_PORT")
	if port == "" {
		port = strconv.Itoa(cfg.Server.Port)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("starting the timeclock server", "port", port, "db_path", db.Path())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	slog.Info("timeclock server stopped")
}
