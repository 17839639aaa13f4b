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
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tenantgov/tenantgov/internal/tenant"
)

// TenantRepository implements tenant.Repository
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create inserts a new tenant
func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO tenants (id, name, status, created_at, suspended_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID, t.Name, t.Status, t.CreatedAt, t.SuspendedAt)
	if err != nil {
		if uniqueViolation(err, "tenants_name_key") {
			return tenant.ErrDuplicateName
		}
		return fmt.Errorf("failed to insert tenant: %w", err)
	}

	return nil
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx, `
		SELECT id, name, status, created_at, suspended_at
		FROM tenants
		WHERE id = $1
	`, id))
}

// GetByName retrieves a tenant by exact name
func (r *TenantRepository) GetByName(ctx context.Context, name string) (*tenant.Tenant, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx, `
		SELECT id, name, status, created_at, suspended_at
		FROM tenants
		WHERE name = $1
	`, name))
}

// UpdateStatus atomically updates status and suspended_at, returning the row
func (r *TenantRepository) UpdateStatus(ctx context.Context, id, status string, suspendedAt *time.Time) (*tenant.Tenant, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx, `
		UPDATE tenants
		SET status = $2, suspended_at = $3
		WHERE id = $1
		RETURNING id, name, status, created_at, suspended_at
	`, id, status, suspendedAt))
}

// List returns all tenants newest first
func (r *TenantRepository) List(ctx context.Context) ([]*tenant.Tenant, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, status, created_at, suspended_at
		FROM tenants
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var out []*tenant.Tenant
	for rows.Next() {
		var t tenant.Tenant
		var suspendedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.Name, &t.Status, &t.CreatedAt, &suspendedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		if suspendedAt.Valid {
			t.SuspendedAt = &suspendedAt.Time
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tenants: %w", err)
	}

	return out, nil
}

func (r *TenantRepository) scanOne(row pgx.Row) (*tenant.Tenant, error) {
	var t tenant.Tenant
	var suspendedAt sql.NullTime

	err := row.Scan(&t.ID, &t.Name, &t.Status, &t.CreatedAt, &suspendedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	if suspendedAt.Valid {
		t.SuspendedAt = &suspendedAt.Time
	}

	return &t, nil
}
