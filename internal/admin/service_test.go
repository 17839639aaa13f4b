package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/tenantgov/tenantgov/internal/audit"
	"github.com/tenantgov/tenantgov/internal/credential"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (*SuperAdmin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SuperAdmin), args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*SuperAdmin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SuperAdmin), args.Error(1)
}

func (m *mockRepo) Create(ctx context.Context, a *SuperAdmin) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, actorID string, action audit.Action, metadata map[string]any) error {
	args := m.Called(ctx, actorID, action, metadata)
	return args.Error(0)
}

func testHasher() *credential.Hasher {
	return credential.NewHasher(bcrypt.MinCost)
}

func hashed(t *testing.T, h *credential.Hasher, pw string) string {
	t.Helper()
	hash, err := h.Hash(pw)
	if err != nil {
		t.Fatal(err)
	}
	return hash
}

// TestPurpose: Validates the success path of Super-Admin login.
// Scope: Unit Test
// Security: Authentication of the governance actor
// Expected: Correct credentials return the admin context and write exactly one LOGIN_SUCCESS entry.
// Test Case ID: ADM-01
func TestAdmin_Login_Success(t *testing.T) {
	repo := new(mockRepo)
	recorder := new(mockRecorder)
	hasher := testHasher()
	service := NewService(repo, hasher, recorder)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "root@example.com").Return(&SuperAdmin{
		ID:           "admin-1",
		Email:        "root@example.com",
		PasswordHash: hashed(t, hasher, "correct horse"),
	}, nil)
	recorder.On("Record", ctx, "admin-1", audit.ActionLoginSuccess, mock.Anything).Return(nil).Once()

	adminCtx, err := service.Login(ctx, "root@example.com", "correct horse")

	assert.NoError(t, err)
	assert.Equal(t, &Context{ID: "admin-1", Email: "root@example.com"}, adminCtx)
	recorder.AssertExpectations(t)
	recorder.AssertNumberOfCalls(t, "Record", 1)
}

// TestPurpose: Validates the wrong-password branch of login.
// Scope: Unit Test
// Security: Failed authentication must leave a trail against the resolved actor
// Expected: Exactly one LOGIN_FAILURE entry is written and ErrInvalidCredentials is returned.
// Test Case ID: ADM-02
func TestAdmin_Login_WrongPassword_Audited(t *testing.T) {
	repo := new(mockRepo)
	recorder := new(mockRecorder)
	hasher := testHasher()
	service := NewService(repo, hasher, recorder)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "root@example.com").Return(&SuperAdmin{
		ID:           "admin-1",
		Email:        "root@example.com",
		PasswordHash: hashed(t, hasher, "correct horse"),
	}, nil)
	recorder.On("Record", ctx, "admin-1", audit.ActionLoginFailure, mock.Anything).Return(nil).Once()

	adminCtx, err := service.Login(ctx, "root@example.com", "battery staple")

	assert.Nil(t, adminCtx)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	recorder.AssertExpectations(t)
	recorder.AssertNumberOfCalls(t, "Record", 1)
}

// TestPurpose: Validates the unknown-email branch of login.
// Scope: Unit Test
// Security: No resolvable actor means no audit entry (documented policy)
// Expected: ErrInvalidCredentials with zero audit writes.
// Test Case ID: ADM-03
func TestAdmin_Login_UnknownEmail_AuditSilent(t *testing.T) {
	repo := new(mockRepo)
	recorder := new(mockRecorder)
	service := NewService(repo, testHasher(), recorder)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, ErrAdminNotFound)

	adminCtx, err := service.Login(ctx, "ghost@example.com", "whatever")

	assert.Nil(t, adminCtx)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	recorder.AssertNumberOfCalls(t, "Record", 0)
}

// TestPurpose: Validates that an audit write failure on the failure branch surfaces to the caller.
// Scope: Unit Test
// Security: Audit durability is a hard requirement
// Expected: The audit error is returned instead of ErrInvalidCredentials.
// Test Case ID: ADM-04
func TestAdmin_Login_AuditFailurePropagates(t *testing.T) {
	repo := new(mockRepo)
	recorder := new(mockRecorder)
	hasher := testHasher()
	service := NewService(repo, hasher, recorder)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "root@example.com").Return(&SuperAdmin{
		ID:           "admin-1",
		Email:        "root@example.com",
		PasswordHash: hashed(t, hasher, "correct horse"),
	}, nil)
	auditErr := errors.New("audit write failed: down")
	recorder.On("Record", ctx, "admin-1", audit.ActionLoginFailure, mock.Anything).Return(auditErr)

	_, err := service.Login(ctx, "root@example.com", "wrong")

	assert.ErrorIs(t, err, auditErr)
}

// TestPurpose: Validates that a store fault during email lookup is not masked as a credential failure.
// Scope: Unit Test
// Security: A database outage must surface to the operator, not present as a 401
// Expected: The store error is returned wrapped; ErrInvalidCredentials is not, and no audit entry is written.
// Test Case ID: ADM-07
func TestAdmin_Login_StoreErrorSurfaces(t *testing.T) {
	repo := new(mockRepo)
	recorder := new(mockRecorder)
	service := NewService(repo, testHasher(), recorder)
	ctx := context.Background()

	storeErr := errors.New("connection refused")
	repo.On("GetByEmail", ctx, "root@example.com").Return(nil, storeErr)

	adminCtx, err := service.Login(ctx, "root@example.com", "correct horse")

	assert.Nil(t, adminCtx)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	recorder.AssertNumberOfCalls(t, "Record", 0)
}

// TestPurpose: Validates the stateless bearer token round trip.
// Scope: Unit Test
// Security: Token integrity (HS256, expiry)
// Expected: A token issued for an admin verifies back to the same context; garbage and
// tokens signed with a different secret are rejected.
// Test Case ID: ADM-05
func TestAdmin_TokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Issue(&Context{ID: "admin-1", Email: "root@example.com"})
	assert.NoError(t, err)

	got, err := m.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "admin-1", got.ID)
	assert.Equal(t, "root@example.com", got.Email)

	_, err = m.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenManager("different-secret", time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// TestPurpose: Validates seed idempotency and the no-op path without env configuration.
// Scope: Unit Test
// Expected: No env set → no repository calls; existing admin → no Create; fresh email → Create once.
// Test Case ID: ADM-06
func TestAdmin_Seed(t *testing.T) {
	ctx := context.Background()

	t.Run("no env is a no-op", func(t *testing.T) {
		t.Setenv(EnvSeedAdminEmail, "")
		repo := new(mockRepo)
		s := NewSeedService(repo, testHasher(), bcrypt.MinCost)
		assert.NoError(t, s.Seed(ctx))
		repo.AssertNumberOfCalls(t, "Create", 0)
	})

	t.Run("existing admin is not recreated", func(t *testing.T) {
		t.Setenv(EnvSeedAdminEmail, "root@example.com")
		t.Setenv(EnvSeedAdminPassword, "pw")
		repo := new(mockRepo)
		repo.On("GetByEmail", ctx, "root@example.com").Return(&SuperAdmin{ID: "admin-1"}, nil)
		s := NewSeedService(repo, testHasher(), bcrypt.MinCost)
		assert.NoError(t, s.Seed(ctx))
		repo.AssertNumberOfCalls(t, "Create", 0)
	})

	t.Run("fresh email creates the admin", func(t *testing.T) {
		t.Setenv(EnvSeedAdminEmail, "root@example.com")
		t.Setenv(EnvSeedAdminPassword, "pw")
		repo := new(mockRepo)
		repo.On("GetByEmail", ctx, "root@example.com").Return(nil, ErrAdminNotFound)
		repo.On("Create", ctx, mock.MatchedBy(func(a *SuperAdmin) bool {
			return a.Email == "root@example.com" && a.ID != "" && a.PasswordHash != "pw"
		})).Return(nil).Once()
		s := NewSeedService(repo, testHasher(), bcrypt.MinCost)
		assert.NoError(t, s.Seed(ctx))
		repo.AssertExpectations(t)
	})
}
