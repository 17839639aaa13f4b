// Copyright 2026 The TenantGov Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tenantgov/tenantgov/internal/admin"
	"github.com/tenantgov/tenantgov/internal/audit"
	"github.com/tenantgov/tenantgov/internal/config"
	"github.com/tenantgov/tenantgov/internal/credential"
	"github.com/tenantgov/tenantgov/internal/mailer"
	"github.com/tenantgov/tenantgov/internal/observability/logger"
	"github.com/tenantgov/tenantgov/internal/observability/metrics"
	"github.com/tenantgov/tenantgov/internal/observability/tracing"
	"github.com/tenantgov/tenantgov/internal/provisioning"
	"github.com/tenantgov/tenantgov/internal/rules"
	"github.com/tenantgov/tenantgov/internal/store/postgres"
	"github.com/tenantgov/tenantgov/internal/tenant"
	transportHTTP "github.com/tenantgov/tenantgov/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting tenantgov governance core")

	// CLI subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if len(os.Args) > 1 && os.Args[1] == "seed" {
		if err := runSeed(cfg); err != nil {
			fmt.Printf("Seed failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	meter, err := metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
		os.Exit(1)
	}

	// Initialize database
	db, err := newDB(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Initialize repositories
	adminRepo := postgres.NewAdminRepository(db)
	tenantRepo := postgres.NewTenantRepository(db)
	tenantAdminRepo := postgres.NewTenantAdminRepository(db)
	rulesRepo := postgres.NewRulesRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	// Initialize helpers
	auditService := audit.NewService(auditRepo, meter)
	hasher := credential.NewHasher(cfg.Security.BcryptCost)
	generator := credential.NewGenerator(cfg.Security.TempPasswordLength)
	tokens := admin.NewTokenManager(cfg.Security.TokenSecret, cfg.Security.TokenTTL)
	sender := mailer.NewSender(mailer.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}, meter)

	// Initialize services
	adminService := admin.NewService(adminRepo, hasher, auditService)
	tenantService := tenant.NewService(tenantRepo, auditService)
	provisioningService := provisioning.NewService(
		tenantAdminRepo,
		tenantService,
		generator,
		hasher,
		sender,
		auditService,
	)
	rulesService := rules.NewService(rulesRepo, auditService)

	// Seed on start (ENV driven, no-op when unset)
	seedService := admin.NewSeedService(adminRepo, hasher, cfg.Security.SeedBcryptCost)
	if err := seedService.Seed(ctx); err != nil {
		slog.Error("seed failed", logger.Error(err))
		os.Exit(1)
	}

	// Rate limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		adminService,
		tokens,
		tenantService,
		provisioningService,
		rulesService,
		auditService,
		meter,
		cfg.IsProduction(),
	)

	// Create router
	router := transportHTTP.NewRouter(handler, rateLimiter)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

func newDB(ctx context.Context, cfg *config.Config) (*postgres.DB, error) {
	return postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := newDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	slog.Info("schema applied")
	return nil
}

func runSeed(cfg *config.Config) error {
	ctx := context.Background()
	db, err := newDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	adminRepo := postgres.NewAdminRepository(db)
	hasher := credential.NewHasher(cfg.Security.BcryptCost)
	seedService := admin.NewSeedService(adminRepo, hasher, cfg.Security.SeedBcryptCost)

	return seedService.Seed(ctx)
}
