package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"spendfy/internal/auth"
	"spendfy/internal/cache"
	"spendfy/internal/cli"
	"spendfy/internal/config"
	apphttp "spendfy/internal/http"
	"spendfy/internal/log"
	"spendfy/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg, log.ComponentApp)
	cli.LoadAndValidateConfig(logger, cfg)

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	issuer, err := auth.NewIssuer([]byte(cfg.JWTSecret), auth.WithIssuer(cfg.JWTIssuer), auth.WithTTL(cfg.TokenTTL))
	if err != nil {
		logger.Error("Failed to initialize token issuer", "error", err)
		os.Exit(1)
	}
	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		logger.Error("Failed to initialize password hasher", "error", err)
		os.Exit(1)
	}

	identity, identityCache := services.NewIdentity(cfg.IdentityCacheSize, cfg.IdentityCacheTTL)
	events := services.NewEvents(res.Publisher(), logger)
	svc := apphttp.Services{
		Auth:         services.NewAuthService(res.Store, identity, events, issuer, hasher),
		Accounts:     services.NewAccountService(res.Store, identity, events),
		Categories:   services.NewCategoryService(res.Store, identity, events),
		Budgets:      services.NewBudgetService(res.Store, identity, events),
		Transactions: services.NewTransactionService(res.Store, identity, events),
	}

	janitor := cache.NewJanitor(logger.WithComponent(log.ComponentCache).Slog(), identityCache)
	go janitor.Run(ctx, cfg.IdentityCacheTTL)

	srv, err := apphttp.NewServer(":"+cfg.Port, svc, res.Store, logger, apphttp.Options{
		AuthRateLimitPerMinute: cfg.AuthRateLimitPerMinute,
		APIRateLimitPerMinute:  cfg.APIRateLimitPerMinute,
	})
	if err != nil {
		logger.Error("Failed to initialize HTTP server", "error", err)
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting spendfy server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		cancel()
		return
	}
	logger.Info("Server stopped gracefully")
}
