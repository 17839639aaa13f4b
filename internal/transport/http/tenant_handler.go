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
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tenantgov/tenantgov/internal/observability/logger"
	"github.com/tenantgov/tenantgov/internal/provisioning"
	"github.com/tenantgov/tenantgov/internal/tenant"
)

// CreateTenantRequest represents tenant creation data
type CreateTenantRequest struct {
	Name string `json:"name"`
}

// CreateTenant handles tenant creation
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.tenantService.Create(r.Context(), GetAdminID(r.Context()), req.Name)
	if err != nil {
		h.meter.RecordOperation(r.Context(), "tenant_create", false)
		switch {
		case errors.Is(err, tenant.ErrEmptyName):
			respondError(w, http.StatusBadRequest, "tenant name is required")
		case errors.Is(err, tenant.ErrDuplicateName):
			respondError(w, http.StatusConflict, "tenant name already exists")
		default:
			slog.ErrorContext(r.Context(), "failed to create tenant",
				logger.Error(err),
				logger.TenantName(req.Name),
			)
			respondError(w, http.StatusInternalServerError, "failed to create tenant")
		}
		return
	}

	h.meter.RecordOperation(r.Context(), "tenant_create", true)
	respondJSON(w, http.StatusCreated, t)
}

// TenantWithStatus pairs a tenant with its provisioning state for the
// console list view.
type TenantWithStatus struct {
	*tenant.Tenant
	Admin *provisioning.TenantStatus `json:"admin"`
}

// ListTenants returns all tenants, newest first, each annotated with its
// provisioning state. The statuses come from one batch read, not one query
// per row.
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenantService.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list tenants", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}

	ids := make([]string, len(tenants))
	for i, t := range tenants {
		ids[i] = t.ID
	}

	statuses, err := h.provisioningService.GetBatchStatus(r.Context(), ids)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load provisioning statuses", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}

	out := make([]TenantWithStatus, len(tenants))
	for i, t := range tenants {
		out[i] = TenantWithStatus{Tenant: t, Admin: statuses[t.ID]}
	}

	respondJSON(w, http.StatusOK, map[string]any{"tenants": out})
}

// GetTenant returns one tenant by ID
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.tenantService.Get(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get tenant", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to get tenant")
		return
	}

	respondJSON(w, http.StatusOK, t)
}

// SuspendTenant locks the tenant out of the platform
func (h *Handler) SuspendTenant(w http.ResponseWriter, r *http.Request) {
	h.updateTenantStatus(w, r, "tenant_suspend", h.tenantService.Suspend)
}

// ReactivateTenant lifts a suspension
func (h *Handler) ReactivateTenant(w http.ResponseWriter, r *http.Request) {
	h.updateTenantStatus(w, r, "tenant_reactivate", h.tenantService.Reactivate)
}

func (h *Handler) updateTenantStatus(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	update func(ctx context.Context, actorID, tenantID string) (*tenant.Tenant, error),
) {
	tenantID := chi.URLParam(r, "tenantID")

	t, err := update(r.Context(), GetAdminID(r.Context()), tenantID)
	if err != nil {
		h.meter.RecordOperation(r.Context(), operation, false)
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to update tenant status",
			logger.Error(err),
			logger.TenantID(tenantID),
			logger.Operation(operation),
		)
		respondError(w, http.StatusInternalServerError, "failed to update tenant status")
		return
	}

	h.meter.RecordOperation(r.Context(), operation, true)
	respondJSON(w, http.StatusOK, t)
}
