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

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tenantgov/tenantgov/internal/admin"
)

// AdminRepository implements admin.Repository
type AdminRepository struct {
	db *DB
}

// NewAdminRepository creates a new Super-Admin repository
func NewAdminRepository(db *DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// GetByEmail retrieves a Super-Admin by email
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*admin.SuperAdmin, error) {
	var a admin.SuperAdmin

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM super_admins
		WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, admin.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get super admin: %w", err)
	}

	return &a, nil
}

// GetByID retrieves a Super-Admin by ID
func (r *AdminRepository) GetByID(ctx context.Context, id string) (*admin.SuperAdmin, error) {
	var a admin.SuperAdmin

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM super_admins
		WHERE id = $1
	`, id).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, admin.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get super admin: %w", err)
	}

	return &a, nil
}

// Create inserts a Super-Admin. Only the seed path calls this.
func (r *AdminRepository) Create(ctx context.Context, a *admin.SuperAdmin) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO super_admins (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, a.ID, a.Email, a.PasswordHash, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert super admin: %w", err)
	}

	return nil
}
