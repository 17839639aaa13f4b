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

package admin

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tenantgov/tenantgov/internal/credential"
	"github.com/tenantgov/tenantgov/internal/id"
)

const (
	EnvSeedAdminEmail    = "TG_SEED_ADMIN_EMAIL"
	EnvSeedAdminPassword = "TG_SEED_ADMIN_PASSWORD"
)

// SeedService creates the initial Super-Admin. This is the only write path to
// super_admins; it runs out-of-band (cmd/seed or the server's seed subcommand)
// and hashes at the lower administrative work factor.
type SeedService struct {
	repo     Repository
	hasher   *credential.Hasher
	seedCost int
}

// NewSeedService creates a new seed service
func NewSeedService(repo Repository, hasher *credential.Hasher, seedCost int) *SeedService {
	return &SeedService{
		repo:     repo,
		hasher:   hasher,
		seedCost: seedCost,
	}
}

// Seed reads the seed admin from the environment and creates it if absent.
// A missing email is a silent no-op so the call is safe on every start;
// an existing admin with the same email makes it idempotent.
func (s *SeedService) Seed(ctx context.Context) error {
	email := os.Getenv(EnvSeedAdminEmail)
	password := os.Getenv(EnvSeedAdminPassword)

	if email == "" {
		return nil
	}
	if password == "" {
		return fmt.Errorf("%s is set but %s is empty", EnvSeedAdminEmail, EnvSeedAdminPassword)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		// Already seeded
		return nil
	}

	hash, err := s.hasher.HashWithCost(password, s.seedCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	a := &SuperAdmin{
		ID:           id.NewUUIDv7(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return fmt.Errorf("failed to create seed admin: %w", err)
	}

	fmt.Printf("Seeded initial Super-Admin: %s\n", email)
	return nil
}
