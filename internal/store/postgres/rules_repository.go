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

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tenantgov/tenantgov/internal/rules"
)

// RulesRepository implements rules.Repository
type RulesRepository struct {
	db *DB
}

// NewRulesRepository creates a new rules repository
func NewRulesRepository(db *DB) *RulesRepository {
	return &RulesRepository{db: db}
}

// Create inserts a new draft version. The version number is assigned inside
// the INSERT so two concurrent creates cannot both observe the same maximum;
// the UNIQUE constraint on version catches the remaining window.
func (r *RulesRepository) Create(ctx context.Context, v *rules.RuleVersion) error {
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO global_rule_versions (id, version, rules_json, is_active, created_at)
		VALUES ($1, (SELECT COALESCE(MAX(version), 0) + 1 FROM global_rule_versions), $2, FALSE, $3)
		RETURNING version
	`, v.ID, v.RulesJSON, v.CreatedAt).Scan(&v.Version)
	if err != nil {
		return fmt.Errorf("failed to insert rule version: %w", err)
	}

	return nil
}

// Activate switches the active version to the target in one transaction.
// Deactivating first keeps the partial unique index on is_active satisfied
// at every point inside the transaction.
func (r *RulesRepository) Activate(ctx context.Context, id string) (*rules.RuleVersion, error) {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin activation: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE global_rule_versions SET is_active = FALSE WHERE is_active
	`); err != nil {
		return nil, fmt.Errorf("failed to deactivate rule versions: %w", err)
	}

	v, err := scanRuleVersion(tx.QueryRow(ctx, `
		UPDATE global_rule_versions
		SET is_active = TRUE
		WHERE id = $1
		RETURNING id, version, rules_json, is_active, created_at
	`, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit activation: %w", err)
	}

	return v, nil
}

// GetActive returns the single active version
func (r *RulesRepository) GetActive(ctx context.Context) (*rules.RuleVersion, error) {
	return scanRuleVersion(r.db.pool.QueryRow(ctx, `
		SELECT id, version, rules_json, is_active, created_at
		FROM global_rule_versions
		WHERE is_active
	`))
}

// List returns all versions newest version first
func (r *RulesRepository) List(ctx context.Context) ([]*rules.RuleVersion, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, version, rules_json, is_active, created_at
		FROM global_rule_versions
		ORDER BY version DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule versions: %w", err)
	}
	defer rows.Close()

	var out []*rules.RuleVersion
	for rows.Next() {
		var v rules.RuleVersion
		if err := rows.Scan(&v.ID, &v.Version, &v.RulesJSON, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rule version: %w", err)
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rule versions: %w", err)
	}

	return out, nil
}

func scanRuleVersion(row pgx.Row) (*rules.RuleVersion, error) {
	var v rules.RuleVersion

	err := row.Scan(&v.ID, &v.Version, &v.RulesJSON, &v.IsActive, &v.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, rules.ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to get rule version: %w", err)
	}

	return &v, nil
}
