package tenant

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrEmptyName       = errors.New("tenant name is required")
	ErrDuplicateName   = errors.New("tenant name already exists")
	ErrTenantSuspended = errors.New("tenant is suspended")
)

// Status constants. A tenant is never deleted by this core; suspension is the
// only lockout mechanism.
const (
	StatusActive    = "ACTIVE"
	StatusSuspended = "SUSPENDED"
)

// Tenant represents an isolated customer organization unit
type Tenant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	SuspendedAt *time.Time `json:"suspended_at,omitempty"`
}

// Repository defines the interface for tenant storage
type Repository interface {
	Create(ctx context.Context, tenant *Tenant) error

	GetByID(ctx context.Context, id string) (*Tenant, error)

	// GetByName matches the name exactly, case-sensitive.
	GetByName(ctx context.Context, name string) (*Tenant, error)

	// UpdateStatus atomically sets status and suspended_at, returning the
	// updated row. ErrTenantNotFound when no row matches.
	UpdateStatus(ctx context.Context, id, status string, suspendedAt *time.Time) (*Tenant, error)

	// List returns all tenants newest first.
	List(ctx context.Context) ([]*Tenant, error)
}
