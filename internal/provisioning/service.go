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

package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/tenantgov/tenantgov/internal/audit"
	"github.com/tenantgov/tenantgov/internal/credential"
	"github.com/tenantgov/tenantgov/internal/id"
	"github.com/tenantgov/tenantgov/internal/tenant"
)

// TenantReader is the read-only slice of the tenant service this package
// needs. Satisfied by *tenant.Service.
type TenantReader interface {
	Get(ctx context.Context, tenantID string) (*tenant.Tenant, error)
}

// Service provides tenant-admin provisioning business logic
type Service struct {
	repo      Repository
	tenants   TenantReader
	generator *credential.Generator
	hasher    *credential.Hasher
	sender    Sender
	recorder  audit.Recorder
}

// NewService creates a new provisioning service
func NewService(
	repo Repository,
	tenants TenantReader,
	generator *credential.Generator,
	hasher *credential.Hasher,
	sender Sender,
	recorder audit.Recorder,
) *Service {
	return &Service{
		repo:      repo,
		tenants:   tenants,
		generator: generator,
		hasher:    hasher,
		sender:    sender,
		recorder:  recorder,
	}
}

// IssueResult is the outcome of a successful issuance.
type IssueResult struct {
	User      *AdminUser
	EmailSent bool
}

// ResendResult is the outcome of a successful resend. TemporaryPassword is the
// operator fallback; the transport suppresses it when delivery succeeded in
// production.
type ResendResult struct {
	User              *AdminUser
	EmailSent         bool
	TemporaryPassword string
}

// TenantStatus describes a tenant's provisioning state for the console.
type TenantStatus struct {
	Provisioned          bool      `json:"provisioned"`
	AdminEmail           string    `json:"admin_email,omitempty"`
	AdminStatus          string    `json:"admin_status,omitempty"`
	InvitationCount      int       `json:"invitation_count,omitempty"`
	LastInvitationSentAt time.Time `json:"last_invitation_sent_at,omitzero"`
}

// IssueAccess provisions the single admin for a tenant. Checks run in strict
// order and the first violated one wins: email syntax, tenant existence,
// tenant ACTIVE, no existing admin for the tenant, email unused anywhere.
// Mail delivery failure does not roll back the insert; provisioning has
// succeeded once the row exists. The audit entry is written last and never
// carries the plaintext secret.
func (s *Service) IssueAccess(ctx context.Context, actorID, tenantID, email string) (*IssueResult, error) {
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}

	t, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if t.Status != tenant.StatusActive {
		return nil, tenant.ErrTenantSuspended
	}

	if existing, err := s.repo.GetByTenantID(ctx, tenantID); err == nil && existing != nil {
		return nil, ErrAdminExists
	}
	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailAssigned
	}

	plaintext := s.generator.GenerateTemporaryPassword()
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to hash temporary password: %w", err)
	}

	now := time.Now()
	user := &AdminUser{
		ID:                   id.NewUUIDv7(),
		TenantID:             tenantID,
		Email:                email,
		PasswordHash:         hash,
		MustResetPassword:    true,
		Status:               StatusActive,
		CreatedAt:            now,
		InvitationSentAt:     now,
		LastInvitationSentAt: now,
		InvitationCount:      1,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	sent := s.sender.Send(ctx, t.Name, email, plaintext)

	if err := s.recorder.Record(ctx, actorID, audit.ActionIssueTenantAdminAccess, map[string]any{
		"tenant_id":      t.ID,
		"tenant_name":    t.Name,
		"admin_email":    email,
		"tenant_user_id": user.ID,
		"email_sent":     sent,
	}); err != nil {
		return nil, err
	}

	return &IssueResult{User: user, EmailSent: sent}, nil
}

// ResendInvitation rotates the admin's one-time secret and re-delivers it.
// Both the tenant and the admin record must still be ACTIVE.
func (s *Service) ResendInvitation(ctx context.Context, actorID, tenantUserID string) (*ResendResult, error) {
	user, err := s.repo.GetByID(ctx, tenantUserID)
	if err != nil {
		return nil, err
	}

	t, err := s.tenants.Get(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	if t.Status != tenant.StatusActive {
		return nil, tenant.ErrTenantSuspended
	}
	if user.Status != StatusActive {
		return nil, ErrAdminSuspended
	}

	plaintext := s.generator.GenerateTemporaryPassword()
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to hash temporary password: %w", err)
	}

	updated, err := s.repo.RotateCredentials(ctx, user.ID, hash, time.Now())
	if err != nil {
		return nil, err
	}

	sent := s.sender.Send(ctx, t.Name, updated.Email, plaintext)

	if err := s.recorder.Record(ctx, actorID, audit.ActionResendTenantAdminInvitation, map[string]any{
		"tenant_id":        t.ID,
		"tenant_name":      t.Name,
		"admin_email":      updated.Email,
		"tenant_user_id":   updated.ID,
		"invitation_count": updated.InvitationCount,
		"email_sent":       sent,
	}); err != nil {
		return nil, err
	}

	return &ResendResult{User: updated, EmailSent: sent, TemporaryPassword: plaintext}, nil
}

// GetStatus reports the provisioning state of one tenant. Pure read.
func (s *Service) GetStatus(ctx context.Context, tenantID string) (*TenantStatus, error) {
	user, err := s.repo.GetByTenantID(ctx, tenantID)
	if err != nil {
		if err == ErrAdminNotFound {
			return &TenantStatus{Provisioned: false}, nil
		}
		return nil, err
	}
	return statusOf(user), nil
}

// GetBatchStatus reports the provisioning state of many tenants at once.
// An empty input returns an empty result without touching the store.
func (s *Service) GetBatchStatus(ctx context.Context, tenantIDs []string) (map[string]*TenantStatus, error) {
	out := make(map[string]*TenantStatus, len(tenantIDs))
	if len(tenantIDs) == 0 {
		return out, nil
	}

	users, err := s.repo.GetByTenantIDs(ctx, tenantIDs)
	if err != nil {
		return nil, err
	}

	for _, tid := range tenantIDs {
		if user, ok := users[tid]; ok {
			out[tid] = statusOf(user)
			continue
		}
		out[tid] = &TenantStatus{Provisioned: false}
	}
	return out, nil
}

func statusOf(user *AdminUser) *TenantStatus {
	return &TenantStatus{
		Provisioned:          true,
		AdminEmail:           user.Email,
		AdminStatus:          user.Status,
		InvitationCount:      user.InvitationCount,
		LastInvitationSentAt: user.LastInvitationSentAt,
	}
}
