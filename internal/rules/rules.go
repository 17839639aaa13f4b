package rules

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Domain errors
var (
	ErrRuleNotFound = errors.New("rule version not found")
	ErrEmptyRules   = errors.New("rules document is empty")
	ErrInvalidRules = errors.New("rules document is not valid JSON")
)

// RuleVersion is an immutable, numbered snapshot of the global policy
// document. New versions are born DRAFT (inactive); at most one version is
// active at any time.
type RuleVersion struct {
	ID        string          `json:"id"`
	Version   int             `json:"version"`
	RulesJSON json.RawMessage `json:"rules_json"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

// Repository defines the interface for rule version storage
type Repository interface {
	// Create inserts a new draft version, assigning the next version number
	// (one greater than the current maximum, starting at 1) in the same
	// statement and filling it into v.
	Create(ctx context.Context, v *RuleVersion) error

	// Activate deactivates every active row and activates the target inside
	// one transaction, returning the updated row. ErrRuleNotFound aborts the
	// whole unit, leaving any previously active row untouched.
	Activate(ctx context.Context, id string) (*RuleVersion, error)

	// GetActive returns the single active version, ErrRuleNotFound when none.
	GetActive(ctx context.Context) (*RuleVersion, error)

	// List returns all versions ordered by version descending.
	List(ctx context.Context) ([]*RuleVersion, error)
}
