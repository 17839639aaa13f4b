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
	"errors"
	"fmt"

	"github.com/tenantgov/tenantgov/internal/audit"
	"github.com/tenantgov/tenantgov/internal/credential"
)

// Service provides Super-Admin authentication
type Service struct {
	repo     Repository
	hasher   *credential.Hasher
	recorder audit.Recorder
}

// NewService creates a new admin service
func NewService(repo Repository, hasher *credential.Hasher, recorder audit.Recorder) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		recorder: recorder,
	}
}

// Login verifies Super-Admin credentials.
//
// An unknown email fails with ErrInvalidCredentials and writes no audit entry:
// the trail only accepts the Super-Admin actor class, and an unknown email
// resolves to no actor. A wrong password for a known admin writes exactly one
// LOGIN_FAILURE entry before failing; a match writes LOGIN_SUCCESS. On either
// branch an audit write failure surfaces to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Context, error) {
	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		// Only the absent-row case maps to a credential failure.
		if errors.Is(err, ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	if !s.hasher.Verify(password, a.PasswordHash) {
		if err := s.recorder.Record(ctx, a.ID, audit.ActionLoginFailure, map[string]any{
			"email": a.Email,
		}); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.recorder.Record(ctx, a.ID, audit.ActionLoginSuccess, map[string]any{
		"email": a.Email,
	}); err != nil {
		return nil, err
	}

	return &Context{ID: a.ID, Email: a.Email}, nil
}

// Get retrieves a Super-Admin context by ID, for token verification.
func (s *Service) Get(ctx context.Context, adminID string) (*Context, error) {
	a, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	return &Context{ID: a.ID, Email: a.Email}, nil
}
