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
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tenantgov/tenantgov/internal/admin"
	"github.com/tenantgov/tenantgov/internal/audit"
	"github.com/tenantgov/tenantgov/internal/observability/metrics"
	"github.com/tenantgov/tenantgov/internal/provisioning"
	"github.com/tenantgov/tenantgov/internal/rules"
	"github.com/tenantgov/tenantgov/internal/tenant"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	adminService        *admin.Service
	tokens              *admin.TokenManager
	tenantService       *tenant.Service
	provisioningService *provisioning.Service
	rulesService        *rules.Service
	auditService        *audit.Service
	meter               *metrics.Meter

	// production suppresses one-time secrets in API responses whenever mail
	// delivery succeeded.
	production bool
}

// NewHandler creates a new HTTP handler
func NewHandler(
	adminService *admin.Service,
	tokens *admin.TokenManager,
	tenantService *tenant.Service,
	provisioningService *provisioning.Service,
	rulesService *rules.Service,
	auditService *audit.Service,
	meter *metrics.Meter,
	production bool,
) *Handler {
	return &Handler{
		adminService:        adminService,
		tokens:              tokens,
		tenantService:       tenantService,
		provisioningService: provisioningService,
		rulesService:        rulesService,
		auditService:        auditService,
		meter:               meter,
		production:          production,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		// Everything past login is Super-Admin only.
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/auth/me", h.GetCurrentAdmin)

			r.Route("/tenants", func(r chi.Router) {
				r.Post("/", h.CreateTenant)
				r.Get("/", h.ListTenants)

				r.Route("/{tenantID}", func(r chi.Router) {
					r.Get("/", h.GetTenant)
					r.Post("/suspend", h.SuspendTenant)
					r.Post("/reactivate", h.ReactivateTenant)

					r.Post("/admin", h.IssueTenantAdminAccess)
					r.Get("/admin", h.GetTenantAdminStatus)
				})
			})

			r.Post("/tenant-admins/{tenantUserID}/resend-invitation", h.ResendInvitation)
			r.Post("/tenant-admins/status", h.GetBatchTenantAdminStatus)

			r.Route("/rules", func(r chi.Router) {
				r.Post("/", h.CreateRuleVersion)
				r.Get("/", h.ListRuleVersions)
				r.Get("/active", h.GetActiveRules)
				r.Post("/{ruleID}/activate", h.ActivateRuleVersion)
			})

			r.Get("/audit", h.ListAuditEntries)
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tenantgov",
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
