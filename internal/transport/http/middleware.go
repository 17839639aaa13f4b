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
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/tenantgov/tenantgov/internal/admin"
	"github.com/tenantgov/tenantgov/internal/observability/logger"
)

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slog.InfoContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// AuthMiddleware validates the Bearer token and adds the Super-Admin identity
// to the request context. The token is the only authentication state; there
// is no session store to consult. The admin is re-resolved against the store
// on every request so a deleted admin's outstanding tokens stop working.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		claimed, err := h.tokens.Verify(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		adminCtx, err := h.adminService.Get(r.Context(), claimed.ID)
		if err != nil {
			if errors.Is(err, admin.ErrAdminNotFound) {
				slog.WarnContext(r.Context(), "token subject no longer resolves to an admin",
					logger.AdminID(claimed.ID),
				)
				respondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			slog.ErrorContext(r.Context(), "failed to resolve token subject", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to authenticate request")
			return
		}

		ctx := context.WithValue(r.Context(), adminIDKey, adminCtx.ID)
		ctx = context.WithValue(ctx, adminEmailKey, adminCtx.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
