package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"secure-ledger-service/config"
	"secure-ledger-service/internal/adapter/storage/file"
	"secure-ledger-service/internal/adapter/tcp"
	"secure-ledger-service/internal/service"
	"secure-ledger-service/pkg/apperror"
	"secure-ledger-service/pkg/logger"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("addr", cfg.Server.Addr()).
		Str("data_dir", cfg.Storage.DataDir).
		Msg("starting secure ledger service")

	ctx := context.Background()

	// Storage adapters
	keystore := file.NewKeystore(cfg.Storage.DataDir)
	ledgerRepo := file.NewLedgerRepo(cfg.Storage.DataDir)
	registryRepo := file.NewRegistryRepo(cfg.Storage.DataDir)

	// Server identity: created lazily on first run, loaded unchanged after.
	_, signKey, err := keystore.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load server identity")
	}

	// Core services
	ledgerSvc := service.NewLedgerService(ledgerRepo, signKey, log)
	registrySvc := service.NewRegistryService(registryRepo, log)
	authorizer := service.NewAuthorizer(registrySvc)

	if err := registrySvc.Restore(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to restore customer registry")
	}

	// Fail closed on a corrupt or tampered chain unless the operator has
	// explicitly allowed a reset, in which case the old blob is archived.
	if err := ledgerSvc.Restore(ctx); err != nil {
		var appErr *apperror.AppError
		trustFailure := errors.As(err, &appErr) && (appErr.Code == "STO_001" || appErr.Code == "STO_002")
		if !trustFailure || !cfg.Ledger.AllowReset {
			log.Fatal().Err(err).Msg("persisted ledger cannot be trusted; refusing to start (set ledger.allow_reset to discard it)")
		}
		log.Warn().Err(err).Msg("discarding untrusted ledger on operator request")
		if err := ledgerRepo.Archive(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to archive untrusted ledger")
		}
		ledgerSvc.StartEmpty()
	}

	srv := tcp.NewServer(ledgerSvc, registrySvc, authorizer, log)
	if err := srv.Listen(cfg.Server.Addr()); err != nil {
		log.Fatal().Err(err).Msg("failed to bind listener")
	}

	go func() {
		log.Info().Str("addr", srv.Addr().String()).Msg("ledger server listening")
		if err := srv.Serve(); err != nil {
			log.Fatal().Err(err).Msg("ledger server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
