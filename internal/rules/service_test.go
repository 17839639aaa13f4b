package rules

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tenantgov/tenantgov/internal/audit"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, v *RuleVersion) error {
	args := m.Called(ctx, v)
	if args.Error(0) == nil {
		// The store assigns the next version number on insert.
		v.Version = 1
	}
	return args.Error(0)
}

func (m *mockRepo) Activate(ctx context.Context, id string) (*RuleVersion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RuleVersion), args.Error(1)
}

func (m *mockRepo) GetActive(ctx context.Context) (*RuleVersion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RuleVersion), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context) ([]*RuleVersion, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*RuleVersion), args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, actorID string, action audit.Action, metadata map[string]any) error {
	args := m.Called(ctx, actorID, action, metadata)
	return args.Error(0)
}

// TestPurpose: Validates draft creation and the audit entry carrying the assigned version.
// Scope: Unit Test
// Expected: A non-empty document is stored inactive and one GLOBAL_RULES_CREATED entry is written.
// Test Case ID: RUL-01
func TestRules_Service_Create(t *testing.T) {
	repo := new(mockRepo)
	recorder := new(mockRecorder)
	service := NewService(repo, recorder)
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(v *RuleVersion) bool {
		return !v.IsActive && v.ID != "" && string(v.RulesJSON) == `{"region":"EU"}`
	})).Return(nil)
	recorder.On("Record", ctx, "admin-1", audit.ActionGlobalRulesCreated, mock.MatchedBy(func(md map[string]any) bool {
		return md["version"] == 1
	})).Return(nil).Once()

	v, err := service.Create(ctx, "admin-1", json.RawMessage(`{"region":"EU"}`))

	assert.NoError(t, err)
	assert.False(t, v.IsActive)
	assert.Equal(t, 1, v.Version)
	recorder.AssertExpectations(t)
}

// TestPurpose: Validates rejection of empty and malformed rule documents.
// Scope: Unit Test
// Expected: ErrEmptyRules for empty/null/{} inputs, ErrInvalidRules for broken JSON; no writes.
// Test Case ID: RUL-02
func TestRules_Service_Create_Rejections(t *testing.T) {
	repo := new(mockRepo)
	recorder := new(mockRecorder)
	service := NewService(repo, recorder)
	ctx := context.Background()

	for _, doc := range []string{"", "  ", "null", "{}"} {
		_, err := service.Create(ctx, "admin-1", json.RawMessage(doc))
		assert.ErrorIs(t, err, ErrEmptyRules, doc)
	}
	_, err := service.Create(ctx, "admin-1", json.RawMessage(`{"region":`))
	assert.ErrorIs(t, err, ErrInvalidRules)

	repo.AssertNumberOfCalls(t, "Create", 0)
	recorder.AssertNumberOfCalls(t, "Record", 0)
}

// TestPurpose: Validates activation success and its audit entry.
// Scope: Unit Test
// Expected: The repository's transactional activate is invoked once and one
// GLOBAL_RULES_ACTIVATED entry is written after it.
// Test Case ID: RUL-03
func TestRules_Service_Activate(t *testing.T) {
	repo := new(mockRepo)
	recorder := new(mockRecorder)
	service := NewService(repo, recorder)
	ctx := context.Background()

	repo.On("Activate", ctx, "r2").Return(&RuleVersion{ID: "r2", Version: 2, IsActive: true}, nil)
	recorder.On("Record", ctx, "admin-1", audit.ActionGlobalRulesActivated, mock.MatchedBy(func(md map[string]any) bool {
		return md["rule_id"] == "r2" && md["version"] == 2
	})).Return(nil).Once()

	v, err := service.Activate(ctx, "admin-1", "r2")

	assert.NoError(t, err)
	assert.True(t, v.IsActive)
	recorder.AssertExpectations(t)
}

// TestPurpose: Validates that activating an unknown id writes no audit entry.
// Scope: Unit Test
// Expected: ErrRuleNotFound propagates, zero audit writes, previously active row untouched
// (the repository's transaction guarantees the rollback).
// Test Case ID: RUL-04
func TestRules_Service_Activate_NotFound(t *testing.T) {
	repo := new(mockRepo)
	recorder := new(mockRecorder)
	service := NewService(repo, recorder)
	ctx := context.Background()

	repo.On("Activate", ctx, "missing").Return(nil, ErrRuleNotFound)

	_, err := service.Activate(ctx, "admin-1", "missing")

	assert.ErrorIs(t, err, ErrRuleNotFound)
	recorder.AssertNumberOfCalls(t, "Record", 0)
}
