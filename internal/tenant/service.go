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

package tenant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tenantgov/tenantgov/internal/audit"
	"github.com/tenantgov/tenantgov/internal/id"
)

// Service provides tenant lifecycle business logic. Every mutating operation
// writes exactly one audit entry after its store write succeeds.
type Service struct {
	repo     Repository
	recorder audit.Recorder
}

// NewService creates a new tenant service
func NewService(repo Repository, recorder audit.Recorder) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
	}
}

// Create creates a new tenant in ACTIVE state. Blank or whitespace-only names
// are rejected; duplicate names match exactly, case-sensitive.
func (s *Service) Create(ctx context.Context, actorID, name string) (*Tenant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	if existing, err := s.repo.GetByName(ctx, name); err == nil && existing != nil {
		return nil, ErrDuplicateName
	}

	t := &Tenant{
		ID:        id.NewUUIDv7(),
		Name:      name,
		Status:    StatusActive,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	if err := s.recorder.Record(ctx, actorID, audit.ActionTenantCreated, map[string]any{
		"tenant_id":   t.ID,
		"tenant_name": t.Name,
	}); err != nil {
		return nil, err
	}

	return t, nil
}

// Suspend sets the tenant to SUSPENDED and stamps suspended_at. Re-suspending
// an already-suspended tenant is not special-cased; callers check first.
func (s *Service) Suspend(ctx context.Context, actorID, tenantID string) (*Tenant, error) {
	now := time.Now()
	t, err := s.repo.UpdateStatus(ctx, tenantID, StatusSuspended, &now)
	if err != nil {
		return nil, err
	}

	if err := s.recorder.Record(ctx, actorID, audit.ActionTenantSuspended, map[string]any{
		"tenant_id":   t.ID,
		"tenant_name": t.Name,
	}); err != nil {
		return nil, err
	}

	return t, nil
}

// Reactivate sets the tenant back to ACTIVE and clears suspended_at.
func (s *Service) Reactivate(ctx context.Context, actorID, tenantID string) (*Tenant, error) {
	t, err := s.repo.UpdateStatus(ctx, tenantID, StatusActive, nil)
	if err != nil {
		return nil, err
	}

	if err := s.recorder.Record(ctx, actorID, audit.ActionTenantReactivated, map[string]any{
		"tenant_id":   t.ID,
		"tenant_name": t.Name,
	}); err != nil {
		return nil, err
	}

	return t, nil
}

// Get retrieves a tenant by ID
func (s *Service) Get(ctx context.Context, tenantID string) (*Tenant, error) {
	return s.repo.GetByID(ctx, tenantID)
}

// List returns all tenants, newest first
func (s *Service) List(ctx context.Context) ([]*Tenant, error) {
	return s.repo.List(ctx)
}
