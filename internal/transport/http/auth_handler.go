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

	"github.com/tenantgov/tenantgov/internal/admin"
	"github.com/tenantgov/tenantgov/internal/observability/logger"
)

// LoginRequest represents Super-Admin login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a Super-Admin and issues a bearer token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	adminCtx, err := h.adminService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.meter.RecordOperation(r.Context(), "login", false)
		if errors.Is(err, admin.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		// An audit write failure fails the login even when the password
		// matched: an un-audited sign-in never proceeds.
		slog.ErrorContext(r.Context(), "login failed", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := h.tokens.Issue(adminCtx)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.meter.RecordOperation(r.Context(), "login", true)
	respondJSON(w, http.StatusOK, map[string]any{
		"token":    token,
		"admin_id": adminCtx.ID,
		"email":    adminCtx.Email,
	})
}

// GetCurrentAdmin returns the authenticated Super-Admin identity
func (h *Handler) GetCurrentAdmin(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"admin_id": GetAdminID(r.Context()),
		"email":    GetAdminEmail(r.Context()),
	})
}
