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

package rules

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tenantgov/tenantgov/internal/audit"
	"github.com/tenantgov/tenantgov/internal/id"
)

// Service provides global rules versioning business logic
type Service struct {
	repo     Repository
	recorder audit.Recorder
}

// NewService creates a new rules service
func NewService(repo Repository, recorder audit.Recorder) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
	}
}

// Create stores a new draft version of the rules document. The document is
// opaque to this core beyond being non-empty, well-formed JSON.
func (s *Service) Create(ctx context.Context, actorID string, rulesJSON json.RawMessage) (*RuleVersion, error) {
	trimmed := bytes.TrimSpace(rulesJSON)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return nil, ErrEmptyRules
	}
	if !json.Valid(trimmed) {
		return nil, ErrInvalidRules
	}

	v := &RuleVersion{
		ID:        id.NewUUIDv7(),
		RulesJSON: trimmed,
		IsActive:  false,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to create rule version: %w", err)
	}

	if err := s.recorder.Record(ctx, actorID, audit.ActionGlobalRulesCreated, map[string]any{
		"rule_id": v.ID,
		"version": v.Version,
	}); err != nil {
		return nil, err
	}

	return v, nil
}

// Activate promotes one version to active. The deactivate-all-then-activate
// sequence runs inside a single transaction in the repository; an unknown id
// aborts the unit entirely and no audit entry is written.
func (s *Service) Activate(ctx context.Context, actorID, ruleID string) (*RuleVersion, error) {
	v, err := s.repo.Activate(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if err := s.recorder.Record(ctx, actorID, audit.ActionGlobalRulesActivated, map[string]any{
		"rule_id": v.ID,
		"version": v.Version,
	}); err != nil {
		return nil, err
	}

	return v, nil
}

// GetActive returns the currently active version, ErrRuleNotFound when none.
func (s *Service) GetActive(ctx context.Context) (*RuleVersion, error) {
	return s.repo.GetActive(ctx)
}

// ListVersions returns all versions, highest version first
func (s *Service) ListVersions(ctx context.Context) ([]*RuleVersion, error) {
	return s.repo.List(ctx)
}
