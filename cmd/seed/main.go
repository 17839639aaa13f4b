package main

import (
	"context"
	"fmt"
	"log"

	"github.com/tenantgov/tenantgov/internal/admin"
	"github.com/tenantgov/tenantgov/internal/config"
	"github.com/tenantgov/tenantgov/internal/credential"
	"github.com/tenantgov/tenantgov/internal/store/postgres"
)

// Standalone seed runner. Creates the Super-Admin account from
// TG_SEED_ADMIN_EMAIL / TG_SEED_ADMIN_PASSWORD when one does not already
// exist. Idempotent, so it is safe to run on every deploy.
func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	adminRepo := postgres.NewAdminRepository(db)
	hasher := credential.NewHasher(cfg.Security.BcryptCost)
	seedService := admin.NewSeedService(adminRepo, hasher, cfg.Security.SeedBcryptCost)

	if err := seedService.Seed(ctx); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	fmt.Println("✓ Seed complete")
}
