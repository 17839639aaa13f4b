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
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tenantgov/tenantgov/internal/provisioning"
)

const tenantAdminColumns = `id, tenant_id, email, password_hash, must_reset_password,
	status, created_at, invitation_sent_at, last_invitation_sent_at, invitation_count`

// TenantAdminRepository implements provisioning.Repository
type TenantAdminRepository struct {
	db *DB
}

// NewTenantAdminRepository creates a new tenant admin repository
func NewTenantAdminRepository(db *DB) *TenantAdminRepository {
	return &TenantAdminRepository{db: db}
}

// Create inserts a new tenant admin. The unique constraints on tenant_id and
// email are the concurrency backstop; their violations surface as the same
// domain conflicts the service pre-checks for.
func (r *TenantAdminRepository) Create(ctx context.Context, user *provisioning.AdminUser) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO tenant_admins (id, tenant_id, email, password_hash, must_reset_password,
			status, created_at, invitation_sent_at, last_invitation_sent_at, invitation_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, user.ID, user.TenantID, user.Email, user.PasswordHash, user.MustResetPassword,
		user.Status, user.CreatedAt, user.InvitationSentAt, user.LastInvitationSentAt, user.InvitationCount)
	if err != nil {
		if uniqueViolation(err, "tenant_admins_tenant_id_key") {
			return provisioning.ErrAdminExists
		}
		if uniqueViolation(err, "tenant_admins_email_key") {
			return provisioning.ErrEmailAssigned
		}
		return fmt.Errorf("failed to insert tenant admin: %w", err)
	}

	return nil
}

// GetByID retrieves a tenant admin by ID
func (r *TenantAdminRepository) GetByID(ctx context.Context, id string) (*provisioning.AdminUser, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx,
		`SELECT `+tenantAdminColumns+` FROM tenant_admins WHERE id = $1`, id))
}

// GetByTenantID retrieves the admin provisioned for a tenant
func (r *TenantAdminRepository) GetByTenantID(ctx context.Context, tenantID string) (*provisioning.AdminUser, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx,
		`SELECT `+tenantAdminColumns+` FROM tenant_admins WHERE tenant_id = $1`, tenantID))
}

// GetByEmail retrieves a tenant admin by email
func (r *TenantAdminRepository) GetByEmail(ctx context.Context, email string) (*provisioning.AdminUser, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx,
		`SELECT `+tenantAdminColumns+` FROM tenant_admins WHERE email = $1`, email))
}

// RotateCredentials replaces the password hash and stamps the resend in a
// single statement so the count and timestamp can never drift apart.
func (r *TenantAdminRepository) RotateCredentials(ctx context.Context, id, passwordHash string, sentAt time.Time) (*provisioning.AdminUser, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx, `
		UPDATE tenant_admins
		SET password_hash = $2,
			must_reset_password = TRUE,
			last_invitation_sent_at = $3,
			invitation_count = invitation_count + 1
		WHERE id = $1
		RETURNING `+tenantAdminColumns, id, passwordHash, sentAt))
}

// GetByTenantIDs returns admins keyed by tenant ID for a batch of tenants
func (r *TenantAdminRepository) GetByTenantIDs(ctx context.Context, tenantIDs []string) (map[string]*provisioning.AdminUser, error) {
	rows, err := r.db.pool.Query(ctx,
		`SELECT `+tenantAdminColumns+` FROM tenant_admins WHERE tenant_id = ANY($1)`, tenantIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenant admins: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*provisioning.AdminUser, len(tenantIDs))
	for rows.Next() {
		var u provisioning.AdminUser
		if err := rows.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.MustResetPassword,
			&u.Status, &u.CreatedAt, &u.InvitationSentAt, &u.LastInvitationSentAt, &u.InvitationCount); err != nil {
			return nil, fmt.Errorf("failed to scan tenant admin: %w", err)
		}
		out[u.TenantID] = &u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tenant admins: %w", err)
	}

	return out, nil
}

func (r *TenantAdminRepository) scanOne(row pgx.Row) (*provisioning.AdminUser, error) {
	var u provisioning.AdminUser

	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.MustResetPassword,
		&u.Status, &u.CreatedAt, &u.InvitationSentAt, &u.LastInvitationSentAt, &u.InvitationCount)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, provisioning.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get tenant admin: %w", err)
	}

	return &u, nil
}
