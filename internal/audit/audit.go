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

// Package audit provides the append-only write path for governance events.
// Every mutating operation of the control plane produces exactly one entry,
// and an entry that cannot be written fails the operation that produced it.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tenantgov/tenantgov/internal/id"
)

// Action identifies an auditable governance action. Only the constants below
// are valid; the store rejects nothing, so the type is the gate.
type Action string

const (
	ActionLoginSuccess                Action = "LOGIN_SUCCESS"
	ActionLoginFailure                Action = "LOGIN_FAILURE"
	ActionTenantCreated               Action = "TENANT_CREATED"
	ActionTenantSuspended             Action = "TENANT_SUSPENDED"
	ActionTenantReactivated           Action = "TENANT_REACTIVATED"
	ActionIssueTenantAdminAccess      Action = "ISSUE_TENANT_ADMIN_ACCESS"
	ActionResendTenantAdminInvitation Action = "RESEND_TENANT_ADMIN_INVITATION"
	ActionGlobalRulesCreated          Action = "GLOBAL_RULES_CREATED"
	ActionGlobalRulesActivated        Action = "GLOBAL_RULES_ACTIVATED"
)

// ActorSuperAdmin is the only actor class permitted in the trail. This is a
// governance rule, not a storage limitation: the trail answers "which
// Super-Admin did what", never "what happened in general".
const ActorSuperAdmin = "SUPER_ADMIN"

// Entry is one immutable audit record.
type Entry struct {
	ID        string         `json:"id"`
	ActorType string         `json:"actor_type"`
	ActorID   string         `json:"actor_id"`
	Action    Action         `json:"action"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// Repository defines the interface for audit persistence
type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	List(ctx context.Context, limit, offset int) ([]*Entry, error)
}

// Recorder defines the write contract consumed by the services.
type Recorder interface {
	Record(ctx context.Context, actorID string, action Action, metadata map[string]any) error
}

// Meter counts persisted entries. Satisfied by *metrics.Meter.
type Meter interface {
	RecordAuditEntry(ctx context.Context)
}

// Service implements Recorder against a repository, mirroring every persisted
// entry to slog so the trail is visible in the log stream as well.
type Service struct {
	repo  Repository
	meter Meter
}

// NewService creates a new audit service
func NewService(repo Repository, meter Meter) *Service {
	return &Service{repo: repo, meter: meter}
}

// Record appends one entry to the trail. The actor is always the Super-Admin
// class. A store failure is returned to the caller untouched beyond wrapping;
// no retry is attempted here, an un-audited governance action must surface.
func (s *Service) Record(ctx context.Context, actorID string, action Action, metadata map[string]any) error {
	entry := &Entry{
		ID:        id.NewUUIDv7(),
		ActorType: ActorSuperAdmin,
		ActorID:   actorID,
		Action:    action,
		Metadata:  Redact(metadata),
		CreatedAt: time.Now(),
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("audit write failed: %w", err)
	}

	s.meter.RecordAuditEntry(ctx)
	s.mirror(ctx, entry)
	return nil
}

// List returns entries newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Entry, error) {
	return s.repo.List(ctx, limit, offset)
}

// mirror emits the persisted entry to the log stream
func (s *Service) mirror(ctx context.Context, entry *Entry) {
	attrs := []any{
		slog.String("audit_id", entry.ID),
		slog.String("actor_type", entry.ActorType),
		slog.String("actor_id", entry.ActorID),
		slog.String("action", string(entry.Action)),
		slog.Time("created_at", entry.CreatedAt),
	}

	if len(entry.Metadata) > 0 {
		group := []any{}
		for k, v := range entry.Metadata {
			group = append(group, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Group("metadata", group...))
	}

	slog.InfoContext(ctx, "AUDIT_EVENT", append(attrs, slog.String("component", "audit"))...)
}

// Redact returns a copy of metadata with secret-looking values masked.
// The plaintext of a one-time secret must never reach the trail.
func Redact(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		if isSecret(k) {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = v
	}
	return out
}

// isSecret checks if a key likely contains a secret
func isSecret(key string) bool {
	k := strings.ToLower(key)
	for _, s := range []string{"password", "secret", "token", "key", "hash", "credential", "authorization"} {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}
