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

// Package provisioning issues and renews tenant-admin access. It enforces the
// one-admin-per-tenant and one-tenant-per-email invariants; the matching
// unique constraints in the store are the backstop under concurrent calls.
package provisioning

import (
	"context"
	"errors"
	"regexp"
	"time"
)

// Domain errors
var (
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrAdminExists    = errors.New("tenant already has an admin")
	ErrEmailAssigned  = errors.New("email is already assigned to a tenant admin")
	ErrAdminNotFound  = errors.New("tenant admin not found")
	ErrAdminSuspended = errors.New("tenant admin is suspended")
)

// Status constants for tenant admin users
const (
	StatusActive    = "ACTIVE"
	StatusSuspended = "SUSPENDED"
)

// AdminUser is the single administrative user provisioned per tenant.
type AdminUser struct {
	ID                   string    `json:"id"`
	TenantID             string    `json:"tenant_id"`
	Email                string    `json:"email"`
	PasswordHash         string    `json:"-"`
	MustResetPassword    bool      `json:"must_reset_password"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
	InvitationSentAt     time.Time `json:"invitation_sent_at"`
	LastInvitationSentAt time.Time `json:"last_invitation_sent_at"`
	InvitationCount      int       `json:"invitation_count"`
}

// Repository defines the interface for tenant admin persistence
type Repository interface {
	// Create inserts a new admin row. Unique-constraint violations map to
	// ErrAdminExists (tenant_id) and ErrEmailAssigned (email) so a race
	// between concurrent issuance calls surfaces as the domain conflict.
	Create(ctx context.Context, user *AdminUser) error

	GetByID(ctx context.Context, id string) (*AdminUser, error)

	GetByTenantID(ctx context.Context, tenantID string) (*AdminUser, error)

	GetByEmail(ctx context.Context, email string) (*AdminUser, error)

	// RotateCredentials overwrites password_hash, forces must_reset_password,
	// increments invitation_count and stamps last_invitation_sent_at in one
	// statement, returning the updated row.
	RotateCredentials(ctx context.Context, id, passwordHash string, sentAt time.Time) (*AdminUser, error)

	// GetByTenantIDs returns the admins for the given tenants keyed by
	// tenant ID. Tenants without an admin are simply absent from the map.
	GetByTenantIDs(ctx context.Context, tenantIDs []string) (map[string]*AdminUser, error)
}

// Sender delivers invitation mail. A false return means delivery was attempted
// and failed; missing mail configuration is a successful fallback, never an
// error, so the interface has no error return at all.
type Sender interface {
	Send(ctx context.Context, tenantName, adminEmail, temporaryPassword string) bool
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validEmail checks address syntax. Deliverability is the mail path's problem.
func validEmail(email string) bool {
	return len(email) < 255 && emailPattern.MatchString(email)
}
