package main

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	acctStore "github.com/jcarver/ledgerlink/internal/account/store"
	"github.com/jcarver/ledgerlink/internal/config"
	"github.com/jcarver/ledgerlink/internal/database"
	"github.com/jcarver/ledgerlink/internal/enrollment"
	enrollStore "github.com/jcarver/ledgerlink/internal/enrollment/store"
	"github.com/jcarver/ledgerlink/internal/provider"
	"github.com/jcarver/ledgerlink/internal/syncer"
	txStore "github.com/jcarver/ledgerlink/internal/transaction/store"
	"github.com/jcarver/ledgerlink/internal/vault"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	key, err := base64.StdEncoding.DecodeString(cfg.DataEncryptionKey)
	if err != nil {
		slog.Error("DATA_ENCRYPTION_KEY is not valid base64", "error", err)
		os.Exit(1)
	}

	tokenVault, err := vault.New(key)
	if err != nil {
		slog.Error("failed to initialize credential vault", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	enrollments := enrollStore.New(db)

	syncService := syncer.NewService(
		enrollments,
		acctStore.New(db),
		txStore.New(db),
		provider.NewClient(cfg.Provider.BaseURL),
		tokenVault,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting sync worker", "interval", cfg.Worker.SyncInterval)

	ticker := time.NewTicker(cfg.Worker.SyncInterval)
	defer ticker.Stop()

	// Run one pass immediately rather than waiting a full interval.
	runSyncPass(ctx, enrollments, syncService)

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync worker shutting down")
			return
		case <-ticker.C:
			runSyncPass(ctx, enrollments, syncService)
		}
	}
}

// runSyncPass syncs every active enrollment, stalest first. A failing
// enrollment never stops the rest of the pass.
func runSyncPass(ctx context.Context, enrollments *enrollStore.Store, syncService *syncer.Service) {
	active, err := enrollments.ListByStatus(ctx, enrollment.StatusActive)
	if err != nil {
		slog.Error("failed to list active enrollments", "error", err)
		return
	}

	slog.Info("starting sync pass", "enrollments", len(active))

	for _, e := range active {
		if ctx.Err() != nil {
			return
		}

		if err := syncService.SyncTransactions(ctx, e.ID); err != nil {
			if errors.Is(err, syncer.ErrSyncInProgress) {
				slog.Info("sync already in progress, skipping", "enrollment_id", e.ID)
				continue
			}

			slog.Error("sync failed", "enrollment_id", e.ID, "error", err)
		}
	}
}
