/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the HR self-service server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse flags, load YAML config
  2. Open the configured table store (memory/workbook/sqlite)
  3. Ensure the five HR tables exist
  4. Wire domain services into the API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to YAML config file (optional; defaults apply without it)
  -addr    Listen address override

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration shape
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cumulus-hr/cumulus/api"
	"github.com/cumulus-hr/cumulus/attendance"
	"github.com/cumulus-hr/cumulus/config"
	"github.com/cumulus-hr/cumulus/leave"
	"github.com/cumulus-hr/cumulus/report"
	"github.com/cumulus-hr/cumulus/roster"
	"github.com/cumulus-hr/cumulus/tablestore"
	"github.com/cumulus-hr/cumulus/tablestore/memory"
	"github.com/cumulus-hr/cumulus/tablestore/sqlite"
	"github.com/cumulus-hr/cumulus/tablestore/workbook"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("addr", "", "listen address override")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			bootLog := zerolog.New(os.Stderr)
			bootLog.Fatal().Err(err).Msg("load config")
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	store, cleanup, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer cleanup()

	ctx := context.Background()
	if err := tablestore.Ensure(ctx, store, tablestore.Schemas); err != nil {
		log.Fatal().Err(err).Msg("ensure tables")
	}

	rosterSvc := roster.NewService(store)
	engine := leave.NewEngine(store)
	leaveSvc := leave.NewService(store, engine, leave.Policy{
		EnforceAnnualCap: cfg.Policy.EnforceAnnualCap,
	}, log)
	attendanceSvc := attendance.NewService(store, engine.Ledger(), log)
	reports := report.New(store, rosterSvc)

	handler := api.NewHandler(rosterSvc, engine, leaveSvc, attendanceSvc, reports, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("store", cfg.Store.Driver).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}

func openStore(cfg config.Config) (tablestore.Store, func(), error) {
	switch cfg.Store.Driver {
	case "memory":
		return memory.New(), func() {}, nil
	case "workbook":
		s, err := workbook.New(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	default: // sqlite
		s, err := sqlite.New(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
}
