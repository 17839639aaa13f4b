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
	"github.com/tenantgov/tenantgov/internal/rules"
)

// CreateRuleVersionRequest carries the rules document verbatim
type CreateRuleVersionRequest struct {
	Rules json.RawMessage `json:"rules"`
}

// CreateRuleVersion stores a new draft version of the global rules document
func (h *Handler) CreateRuleVersion(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleVersionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	v, err := h.rulesService.Create(r.Context(), GetAdminID(r.Context()), req.Rules)
	if err != nil {
		h.meter.RecordOperation(r.Context(), "rules_create", false)
		switch {
		case errors.Is(err, rules.ErrEmptyRules):
			respondError(w, http.StatusBadRequest, "rules document is empty")
		case errors.Is(err, rules.ErrInvalidRules):
			respondError(w, http.StatusBadRequest, "rules document is not valid JSON")
		default:
			slog.ErrorContext(r.Context(), "failed to create rule version", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to create rule version")
		}
		return
	}

	h.meter.RecordOperation(r.Context(), "rules_create", true)
	respondJSON(w, http.StatusCreated, v)
}

// ActivateRuleVersion promotes one version to active, demoting any other
func (h *Handler) ActivateRuleVersion(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleID")

	v, err := h.rulesService.Activate(r.Context(), GetAdminID(r.Context()), ruleID)
	if err != nil {
		h.meter.RecordOperation(r.Context(), "rules_activate", false)
		if errors.Is(err, rules.ErrRuleNotFound) {
			respondError(w, http.StatusNotFound, "rule version not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to activate rule version",
			logger.Error(err),
			logger.RuleID(ruleID),
		)
		respondError(w, http.StatusInternalServerError, "failed to activate rule version")
		return
	}

	h.meter.RecordOperation(r.Context(), "rules_activate", true)
	respondJSON(w, http.StatusOK, v)
}

// GetActiveRules returns the currently active rules document
func (h *Handler) GetActiveRules(w http.ResponseWriter, r *http.Request) {
	v, err := h.rulesService.GetActive(r.Context())
	if err != nil {
		if errors.Is(err, rules.ErrRuleNotFound) {
			respondError(w, http.StatusNotFound, "no active rules version")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get active rules", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to get active rules")
		return
	}

	respondJSON(w, http.StatusOK, v)
}

// ListRuleVersions returns every version, highest version first
func (h *Handler) ListRuleVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.rulesService.ListVersions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list rule versions", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list rule versions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"versions": versions})
}
