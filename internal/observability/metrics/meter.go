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

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Config holds metrics configuration
type Config struct {
	Enabled bool
}

// Meter wraps the OpenTelemetry meter and the instruments the control plane
// actually records.
type Meter struct {
	meter          metric.Meter
	governanceOps  metric.Int64Counter
	auditEntries   metric.Int64Counter
	mailDeliveries metric.Int64Counter
}

// New creates a meter and its instruments. With metrics disabled the global
// no-op meter is used, so call sites never need to branch.
func New(ctx context.Context, cfg Config, serviceName string) (*Meter, error) {
	name := serviceName
	if !cfg.Enabled {
		name = "noop"
	}
	meter := otel.Meter(name)

	ops, err := meter.Int64Counter("governance_operations_total",
		metric.WithDescription("Governance operations by action and outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create operations counter: %w", err)
	}

	entries, err := meter.Int64Counter("audit_entries_total",
		metric.WithDescription("Audit entries written"))
	if err != nil {
		return nil, fmt.Errorf("failed to create audit counter: %w", err)
	}

	mail, err := meter.Int64Counter("invitation_mail_total",
		metric.WithDescription("Invitation mail deliveries by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create mail counter: %w", err)
	}

	return &Meter{
		meter:          meter,
		governanceOps:  ops,
		auditEntries:   entries,
		mailDeliveries: mail,
	}, nil
}

// RecordOperation counts one governance operation by action name and outcome.
func (m *Meter) RecordOperation(ctx context.Context, action string, ok bool) {
	m.governanceOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.Bool("ok", ok),
	))
}

// RecordAuditEntry counts one persisted audit entry.
func (m *Meter) RecordAuditEntry(ctx context.Context) {
	m.auditEntries.Add(ctx, 1)
}

// RecordMailDelivery counts one invitation delivery attempt.
func (m *Meter) RecordMailDelivery(ctx context.Context, sent bool) {
	m.mailDeliveries.Add(ctx, 1, metric.WithAttributes(attribute.Bool("sent", sent)))
}
