package main

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	acctStore "github.com/jcarver/ledgerlink/internal/account/store"
	"github.com/jcarver/ledgerlink/internal/config"
	"github.com/jcarver/ledgerlink/internal/database"
	"github.com/jcarver/ledgerlink/internal/enrollment"
	enrollStore "github.com/jcarver/ledgerlink/internal/enrollment/store"
	linkHttp "github.com/jcarver/ledgerlink/internal/http"
	enrollmentHandler "github.com/jcarver/ledgerlink/internal/http/enrollment"
	insightsHandler "github.com/jcarver/ledgerlink/internal/http/insights"
	webhookHandler "github.com/jcarver/ledgerlink/internal/http/webhook"
	"github.com/jcarver/ledgerlink/internal/insights"
	insightsStore "github.com/jcarver/ledgerlink/internal/insights/store"
	"github.com/jcarver/ledgerlink/internal/provider"
	"github.com/jcarver/ledgerlink/internal/syncer"
	txStore "github.com/jcarver/ledgerlink/internal/transaction/store"
	"github.com/jcarver/ledgerlink/internal/vault"
	"github.com/jcarver/ledgerlink/internal/webhook"
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

	if err := database.RunMigrations(db, "migrations"); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var (
		enrollments  = enrollStore.New(db)
		accounts     = acctStore.New(db)
		transactions = txStore.New(db)
		overrides    = insightsStore.New(db)
	)

	providerClient := provider.NewClient(cfg.Provider.BaseURL)

	var (
		syncService       = syncer.NewService(enrollments, accounts, transactions, providerClient, tokenVault)
		enrollmentService = enrollment.NewService(enrollments)
		insightService    = insights.NewService(transactions, overrides)
		dispatcher        = webhook.NewDispatcher(enrollments, syncService)
		verifier          = webhook.NewVerifier(cfg.Webhook.Secret)
	)

	var (
		enrollmentH = enrollmentHandler.NewHandler(enrollmentService, syncService)
		insightsH   = insightsHandler.NewHandler(insightService)
		webhookH    = webhookHandler.NewHandler(verifier, dispatcher)
	)

	router := linkHttp.New(enrollmentH, insightsH, webhookH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
