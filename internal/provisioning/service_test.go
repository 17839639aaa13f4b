package provisioning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/tenantgov/tenantgov/internal/audit"
	"github.com/tenantgov/tenantgov/internal/credential"
	"github.com/tenantgov/tenantgov/internal/tenant"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, user *AdminUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*AdminUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AdminUser), args.Error(1)
}

func (m *mockRepo) GetByTenantID(ctx context.Context, tenantID string) (*AdminUser, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AdminUser), args.Error(1)
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (*AdminUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AdminUser), args.Error(1)
}

func (m *mockRepo) RotateCredentials(ctx context.Context, id, passwordHash string, sentAt time.Time) (*AdminUser, error) {
	args := m.Called(ctx, id, passwordHash, sentAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AdminUser), args.Error(1)
}

func (m *mockRepo) GetByTenantIDs(ctx context.Context, tenantIDs []string) (map[string]*AdminUser, error) {
	args := m.Called(ctx, tenantIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*AdminUser), args.Error(1)
}

type mockTenants struct {
	mock.Mock
}

func (m *mockTenants) Get(ctx context.Context, tenantID string) (*tenant.Tenant, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenant.Tenant), args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, tenantName, adminEmail, temporaryPassword string) bool {
	args := m.Called(ctx, tenantName, adminEmail, temporaryPassword)
	return args.Bool(0)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, actorID string, action audit.Action, metadata map[string]any) error {
	args := m.Called(ctx, actorID, action, metadata)
	return args.Error(0)
}

type fixture struct {
	repo     *mockRepo
	tenants  *mockTenants
	sender   *mockSender
	recorder *mockRecorder
	service  *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(mockRepo),
		tenants:  new(mockTenants),
		sender:   new(mockSender),
		recorder: new(mockRecorder),
	}
	f.service = NewService(
		f.repo,
		f.tenants,
		credential.NewGenerator(credential.DefaultLength),
		credential.NewHasher(bcrypt.MinCost),
		f.sender,
		f.recorder,
	)
	return f
}

func activeTenant() *tenant.Tenant {
	return &tenant.Tenant{ID: "t1", Name: "Acme", Status: tenant.StatusActive}
}

func suspendedTenant() *tenant.Tenant {
	now := time.Now()
	return &tenant.Tenant{ID: "t1", Name: "Acme", Status: tenant.StatusSuspended, SuspendedAt: &now}
}

// TestPurpose: Validates the full issuance path of a tenant admin.
// Scope: Unit Test
// Security: One-time secret handling; the plaintext never reaches the audit metadata
// Expected: Row inserted with must_reset_password=true and invitation_count=1, mail
// attempted with the generated secret, one ISSUE_TENANT_ADMIN_ACCESS entry containing
// tenant_user_id and email_sent but no password field.
// Test Case ID: PRV-01
func TestProvisioning_IssueAccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.tenants.On("Get", ctx, "t1").Return(activeTenant(), nil)
	f.repo.On("GetByTenantID", ctx, "t1").Return(nil, ErrAdminNotFound)
	f.repo.On("GetByEmail", ctx, "a@acme.com").Return(nil, ErrAdminNotFound)
	f.repo.On("Create", ctx, mock.MatchedBy(func(u *AdminUser) bool {
		return u.TenantID == "t1" &&
			u.Email == "a@acme.com" &&
			u.MustResetPassword &&
			u.Status == StatusActive &&
			u.InvitationCount == 1 &&
			u.PasswordHash != ""
	})).Return(nil)
	f.sender.On("Send", ctx, "Acme", "a@acme.com", mock.MatchedBy(func(pw string) bool {
		return len(pw) == credential.DefaultLength
	})).Return(true)
	f.recorder.On("Record", ctx, "admin-1", audit.ActionIssueTenantAdminAccess, mock.MatchedBy(func(md map[string]any) bool {
		_, hasPlaintext := md["temporary_password"]
		_, hasPassword := md["password"]
		return md["tenant_name"] == "Acme" &&
			md["admin_email"] == "a@acme.com" &&
			md["tenant_user_id"] != "" &&
			md["email_sent"] == true &&
			!hasPlaintext && !hasPassword
	})).Return(nil).Once()

	res, err := f.service.IssueAccess(ctx, "admin-1", "t1", "a@acme.com")

	assert.NoError(t, err)
	assert.True(t, res.EmailSent)
	assert.True(t, res.User.MustResetPassword)
	f.repo.AssertExpectations(t)
	f.recorder.AssertExpectations(t)
}

// TestPurpose: Validates fail-fast ordering of issuance checks.
// Scope: Unit Test
// Expected: Malformed email fails before any tenant lookup; unknown tenant before status;
// suspension before admin checks.
// Test Case ID: PRV-02
func TestProvisioning_IssueAccess_CheckOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid email wins first", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.IssueAccess(ctx, "admin-1", "t1", "not-an-email")
		assert.ErrorIs(t, err, ErrInvalidEmail)
		f.tenants.AssertNumberOfCalls(t, "Get", 0)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		f := newFixture()
		f.tenants.On("Get", ctx, "missing").Return(nil, tenant.ErrTenantNotFound)
		_, err := f.service.IssueAccess(ctx, "admin-1", "missing", "a@acme.com")
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
		f.repo.AssertNumberOfCalls(t, "GetByTenantID", 0)
	})

	t.Run("existing admin", func(t *testing.T) {
		f := newFixture()
		f.tenants.On("Get", ctx, "t1").Return(activeTenant(), nil)
		f.repo.On("GetByTenantID", ctx, "t1").Return(&AdminUser{ID: "u1"}, nil)
		_, err := f.service.IssueAccess(ctx, "admin-1", "t1", "a@acme.com")
		assert.ErrorIs(t, err, ErrAdminExists)
		f.repo.AssertNumberOfCalls(t, "GetByEmail", 0)
	})

	t.Run("email already assigned", func(t *testing.T) {
		f := newFixture()
		f.tenants.On("Get", ctx, "t1").Return(activeTenant(), nil)
		f.repo.On("GetByTenantID", ctx, "t1").Return(nil, ErrAdminNotFound)
		f.repo.On("GetByEmail", ctx, "a@acme.com").Return(&AdminUser{ID: "u9", TenantID: "t9"}, nil)
		_, err := f.service.IssueAccess(ctx, "admin-1", "t1", "a@acme.com")
		assert.ErrorIs(t, err, ErrEmailAssigned)
		f.repo.AssertNumberOfCalls(t, "Create", 0)
	})
}

// TestPurpose: Validates the suspended-tenant lockout on issuance.
// Scope: Unit Test
// Security: Suspended tenants must not gain credentials
// Expected: ErrTenantSuspended with no insert and no audit entry.
// Test Case ID: PRV-03
func TestProvisioning_IssueAccess_SuspendedTenant(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.tenants.On("Get", ctx, "t1").Return(suspendedTenant(), nil)

	_, err := f.service.IssueAccess(ctx, "admin-1", "t1", "a@acme.com")

	assert.ErrorIs(t, err, tenant.ErrTenantSuspended)
	f.repo.AssertNumberOfCalls(t, "Create", 0)
	f.recorder.AssertNumberOfCalls(t, "Record", 0)
}

// TestPurpose: Validates that mail delivery failure does not fail provisioning.
// Scope: Unit Test
// Expected: The operation succeeds with EmailSent=false and the audit entry records email_sent=false.
// Test Case ID: PRV-04
func TestProvisioning_IssueAccess_MailFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.tenants.On("Get", ctx, "t1").Return(activeTenant(), nil)
	f.repo.On("GetByTenantID", ctx, "t1").Return(nil, ErrAdminNotFound)
	f.repo.On("GetByEmail", ctx, "a@acme.com").Return(nil, ErrAdminNotFound)
	f.repo.On("Create", ctx, mock.Anything).Return(nil)
	f.sender.On("Send", ctx, "Acme", "a@acme.com", mock.Anything).Return(false)
	f.recorder.On("Record", ctx, "admin-1", audit.ActionIssueTenantAdminAccess, mock.MatchedBy(func(md map[string]any) bool {
		return md["email_sent"] == false
	})).Return(nil)

	res, err := f.service.IssueAccess(ctx, "admin-1", "t1", "a@acme.com")

	assert.NoError(t, err)
	assert.False(t, res.EmailSent)
}

// TestPurpose: Validates invitation resend rotates the secret and audits the new count.
// Scope: Unit Test
// Security: The old plaintext must not verify against the replacement hash
// Expected: RotateCredentials called with a fresh bcrypt hash, invitation_count reported
// as incremented, plaintext returned to the caller only.
// Test Case ID: PRV-05
func TestProvisioning_ResendInvitation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	hasher := credential.NewHasher(bcrypt.MinCost)

	oldHash, _ := hasher.Hash("old-password!1A")
	existing := &AdminUser{
		ID: "u1", TenantID: "t1", Email: "a@acme.com",
		Status: StatusActive, PasswordHash: oldHash, InvitationCount: 1,
	}

	f.repo.On("GetByID", ctx, "u1").Return(existing, nil)
	f.tenants.On("Get", ctx, "t1").Return(activeTenant(), nil)

	var capturedPlaintext, capturedHash string
	f.repo.On("RotateCredentials", ctx, "u1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			capturedHash = args.String(2)
		}).
		Return(&AdminUser{
			ID: "u1", TenantID: "t1", Email: "a@acme.com",
			Status: StatusActive, MustResetPassword: true, InvitationCount: 2,
		}, nil)
	f.sender.On("Send", ctx, "Acme", "a@acme.com", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			capturedPlaintext = args.String(3)
		}).
		Return(true)
	f.recorder.On("Record", ctx, "admin-1", audit.ActionResendTenantAdminInvitation, mock.MatchedBy(func(md map[string]any) bool {
		return md["invitation_count"] == 2 && md["email_sent"] == true
	})).Return(nil).Once()

	res, err := f.service.ResendInvitation(ctx, "admin-1", "u1")

	assert.NoError(t, err)
	assert.Equal(t, 2, res.User.InvitationCount)
	assert.Equal(t, capturedPlaintext, res.TemporaryPassword)
	assert.True(t, hasher.Verify(capturedPlaintext, capturedHash))
	assert.False(t, hasher.Verify("old-password!1A", capturedHash))
	f.recorder.AssertExpectations(t)
}

// TestPurpose: Validates resend lockouts for suspended tenant and suspended admin.
// Scope: Unit Test
// Expected: The matching state error with no credential rotation.
// Test Case ID: PRV-06
func TestProvisioning_ResendInvitation_Lockouts(t *testing.T) {
	ctx := context.Background()

	t.Run("suspended tenant", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", ctx, "u1").Return(&AdminUser{ID: "u1", TenantID: "t1", Status: StatusActive}, nil)
		f.tenants.On("Get", ctx, "t1").Return(suspendedTenant(), nil)
		_, err := f.service.ResendInvitation(ctx, "admin-1", "u1")
		assert.ErrorIs(t, err, tenant.ErrTenantSuspended)
		f.repo.AssertNumberOfCalls(t, "RotateCredentials", 0)
	})

	t.Run("suspended admin", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", ctx, "u1").Return(&AdminUser{ID: "u1", TenantID: "t1", Status: StatusSuspended}, nil)
		f.tenants.On("Get", ctx, "t1").Return(activeTenant(), nil)
		_, err := f.service.ResendInvitation(ctx, "admin-1", "u1")
		assert.ErrorIs(t, err, ErrAdminSuspended)
		f.repo.AssertNumberOfCalls(t, "RotateCredentials", 0)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", ctx, "missing").Return(nil, ErrAdminNotFound)
		_, err := f.service.ResendInvitation(ctx, "admin-1", "missing")
		assert.ErrorIs(t, err, ErrAdminNotFound)
	})
}

// TestPurpose: Validates the batch status read, including the empty-input short circuit.
// Scope: Unit Test
// Expected: Empty input returns an empty map without a store query; mixed input marks
// unprovisioned tenants explicitly.
// Test Case ID: PRV-07
func TestProvisioning_GetBatchStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input skips the store", func(t *testing.T) {
		f := newFixture()
		out, err := f.service.GetBatchStatus(ctx, nil)
		assert.NoError(t, err)
		assert.Empty(t, out)
		f.repo.AssertNumberOfCalls(t, "GetByTenantIDs", 0)
	})

	t.Run("mixed provisioned and not", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByTenantIDs", ctx, []string{"t1", "t2"}).Return(map[string]*AdminUser{
			"t1": {ID: "u1", TenantID: "t1", Email: "a@acme.com", Status: StatusActive, InvitationCount: 3},
		}, nil)

		out, err := f.service.GetBatchStatus(ctx, []string{"t1", "t2"})

		assert.NoError(t, err)
		assert.True(t, out["t1"].Provisioned)
		assert.Equal(t, "a@acme.com", out["t1"].AdminEmail)
		assert.Equal(t, 3, out["t1"].InvitationCount)
		assert.False(t, out["t2"].Provisioned)
	})
}

// TestPurpose: Validates email syntax gating.
// Scope: Unit Test
// Expected: Obvious malformed addresses are rejected; plausible ones pass.
// Test Case ID: PRV-08
func TestProvisioning_ValidEmail(t *testing.T) {
	valid := []string{"a@acme.com", "first.last@sub.example.co", "x+tag@example.org"}
	invalid := []string{"", "plain", "@missing.local", "no-at.example.com", "spaces in@example.com", "trailing@dot"}

	for _, e := range valid {
		assert.True(t, validEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, validEmail(e), e)
	}
}
