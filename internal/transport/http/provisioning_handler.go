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

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tenantgov/tenantgov/internal/observability/logger"
	"github.com/tenantgov/tenantgov/internal/provisioning"
	"github.com/tenantgov/tenantgov/internal/tenant"
)

// IssueAccessRequest represents tenant-admin issuance data
type IssueAccessRequest struct {
	Email string `json:"email"`
}

// IssueTenantAdminAccess provisions the single admin account for a tenant.
// The response never carries the temporary password: issuance delivers it by
// mail (or console fallback), and the payload only reports whether that
// delivery succeeded.
func (h *Handler) IssueTenantAdminAccess(w http.ResponseWriter, r *http.Request) {
	var req IssueAccessRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenantID := chi.URLParam(r, "tenantID")
	result, err := h.provisioningService.IssueAccess(r.Context(), GetAdminID(r.Context()), tenantID, req.Email)
	if err != nil {
		h.meter.RecordOperation(r.Context(), "issue_tenant_admin_access", false)
		switch {
		case errors.Is(err, provisioning.ErrInvalidEmail):
			respondError(w, http.StatusBadRequest, "invalid email address")
		case errors.Is(err, tenant.ErrTenantNotFound):
			respondError(w, http.StatusNotFound, "tenant not found")
		case errors.Is(err, tenant.ErrTenantSuspended):
			respondError(w, http.StatusConflict, "tenant is suspended")
		case errors.Is(err, provisioning.ErrAdminExists):
			respondError(w, http.StatusConflict, "tenant already has an admin")
		case errors.Is(err, provisioning.ErrEmailAssigned):
			respondError(w, http.StatusConflict, "email is already assigned to a tenant admin")
		default:
			slog.ErrorContext(r.Context(), "failed to issue tenant admin access",
				logger.Error(err),
				logger.TenantID(tenantID),
			)
			respondError(w, http.StatusInternalServerError, "failed to issue tenant admin access")
		}
		return
	}

	h.meter.RecordOperation(r.Context(), "issue_tenant_admin_access", true)
	respondJSON(w, http.StatusCreated, map[string]any{
		"user":       result.User,
		"email_sent": result.EmailSent,
	})
}

// ResendInvitation rotates the one-time secret and re-delivers the invitation.
// In production the plaintext appears in the response only when delivery
// failed, as the operator's fallback channel; outside production it is always
// returned for development convenience.
func (h *Handler) ResendInvitation(w http.ResponseWriter, r *http.Request) {
	tenantUserID := chi.URLParam(r, "tenantUserID")

	result, err := h.provisioningService.ResendInvitation(r.Context(), GetAdminID(r.Context()), tenantUserID)
	if err != nil {
		h.meter.RecordOperation(r.Context(), "resend_invitation", false)
		switch {
		case errors.Is(err, provisioning.ErrAdminNotFound):
			respondError(w, http.StatusNotFound, "tenant admin not found")
		case errors.Is(err, tenant.ErrTenantNotFound):
			respondError(w, http.StatusNotFound, "tenant not found")
		case errors.Is(err, tenant.ErrTenantSuspended):
			respondError(w, http.StatusConflict, "tenant is suspended")
		case errors.Is(err, provisioning.ErrAdminSuspended):
			respondError(w, http.StatusConflict, "tenant admin is suspended")
		default:
			slog.ErrorContext(r.Context(), "failed to resend invitation", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to resend invitation")
		}
		return
	}

	payload := map[string]any{
		"user":       result.User,
		"email_sent": result.EmailSent,
	}
	if !h.production || !result.EmailSent {
		payload["temporary_password"] = result.TemporaryPassword
	}

	h.meter.RecordOperation(r.Context(), "resend_invitation", true)
	respondJSON(w, http.StatusOK, payload)
}

// BatchStatusRequest carries the tenant IDs for a batch provisioning lookup
type BatchStatusRequest struct {
	TenantIDs []string `json:"tenant_ids"`
}

// GetBatchTenantAdminStatus reports provisioning state for many tenants in
// one read. IDs with no provisioned admin come back as not provisioned rather
// than being omitted, so the console can render every row it asked about.
func (h *Handler) GetBatchTenantAdminStatus(w http.ResponseWriter, r *http.Request) {
	var req BatchStatusRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	statuses, err := h.provisioningService.GetBatchStatus(r.Context(), req.TenantIDs)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to get batch provisioning status", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to get provisioning status")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"statuses": statuses})
}

// GetTenantAdminStatus reports whether a tenant has been provisioned
func (h *Handler) GetTenantAdminStatus(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	if _, err := h.tenantService.Get(r.Context(), tenantID); err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get tenant", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to get provisioning status")
		return
	}

	status, err := h.provisioningService.GetStatus(r.Context(), tenantID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to get provisioning status",
			logger.Error(err),
			logger.TenantID(tenantID),
		)
		respondError(w, http.StatusInternalServerError, "failed to get provisioning status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}
