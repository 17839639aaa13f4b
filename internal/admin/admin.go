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

package admin

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrAdminNotFound      = errors.New("super admin not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// SuperAdmin is the governance actor operating the control plane. Rows are
// created out-of-band by the seed path and are read-only to the core.
type SuperAdmin struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Context identifies an authenticated Super-Admin to the rest of the system.
type Context struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Repository defines the interface for Super-Admin persistence
type Repository interface {
	// GetByEmail retrieves a Super-Admin by email
	GetByEmail(ctx context.Context, email string) (*SuperAdmin, error)

	// GetByID retrieves a Super-Admin by ID
	GetByID(ctx context.Context, id string) (*SuperAdmin, error)

	// Create inserts a Super-Admin. Seed-only; the core never calls it.
	Create(ctx context.Context, admin *SuperAdmin) error
}
