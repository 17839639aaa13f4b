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

import "context"

type contextKey string

const (
	adminIDKey    contextKey = "admin_id"
	adminEmailKey contextKey = "admin_email"
)

// GetAdminID retrieves the authenticated Super-Admin ID from context.
func GetAdminID(ctx context.Context) string {
	if val, ok := ctx.Value(adminIDKey).(string); ok {
		return val
	}
	return ""
}

// GetAdminEmail retrieves the authenticated Super-Admin email from context.
func GetAdminEmail(ctx context.Context) string {
	if val, ok := ctx.Value(adminEmailKey).(string); ok {
		return val
	}
	return ""
}
