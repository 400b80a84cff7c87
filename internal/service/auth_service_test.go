package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-records-api/internal/dto"
	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/internal/repository"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type mockAuthRepo struct {
	users            map[string]*models.User
	findErr          error
	auditLogs        []*models.AuditLog
	lastLoginUpdated bool
}

func newMockAuthRepo(users ...*models.User) *mockAuthRepo {
	repo := &mockAuthRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		repo.users[u.Username] = u
	}
	return repo
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type failingSessionStore struct {
	*repository.MemorySessionRepository
	err error
}

func (f failingSessionStore) FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	return nil, f.err
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestAuthService(t *testing.T) (*AuthService, *mockAuthRepo, *repository.MemorySessionRepository) {
	t.Helper()
	studentID := int64(1)
	repo := newMockAuthRepo(
		&models.User{ID: 1, Username: "guru", PasswordHash: hashPassword(t, "teach123"), FullName: "Bu Guru", Role: models.RoleTeacher},
		&models.User{ID: 2, Username: "ahmad", PasswordHash: hashPassword(t, "ahmad123"), FullName: "Ahmad", Role: models.RoleStudent, StudentID: &studentID},
	)
	sessions := repository.NewMemorySessionRepository()
	svc := NewAuthService(repo, sessions, nil, zap.NewNop(), nil, AuthConfig{SessionTTL: time.Hour})
	return svc, repo, sessions
}

func TestAuthServiceLoginAndResolve(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, dto.LoginRequest{Username: "guru", Password: "teach123", IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "guru", res.User.Username)
	assert.Equal(t, models.RoleTeacher, res.User.Role)
	assert.Equal(t, 3600, res.ExpiresIn)
	assert.True(t, repo.lastLoginUpdated)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)

	user, err := svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(1), user.ID)

	info, err := svc.Me(user)
	require.NoError(t, err)
	assert.Equal(t, res.User, *info)
}

func TestAuthServiceLoginInvalidCredentials(t *testing.T) {
	svc, _, sessions := newTestAuthService(t)
	ctx := context.Background()

	for _, req := range []dto.LoginRequest{
		{Username: "guru", Password: "wrong"},
		{Username: "nobody", Password: "teach123"},
	} {
		res, err := svc.Login(ctx, req)
		assert.Nil(t, res)
		assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	}

	removed, err := sessions.DeleteExpired(ctx, time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, removed, "no session may be created on failed login")
}

func TestAuthServiceLoginValidation(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "guru"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginStoreFailure(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)
	repo.findErr = errors.New("connection refused")

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "guru", Password: "teach123"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
	assert.NotContains(t, appErr.Message, "connection refused")
}

func TestAuthServiceResolveAnonymous(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Resolve(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, user)

	user, err = svc.Resolve(ctx, "not-a-real-token")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestAuthServiceResolveExpired(t *testing.T) {
	svc, _, sessions := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, dto.LoginRequest{Username: "ahmad", Password: "ahmad123"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	user, err := svc.Resolve(ctx, res.Token)
	assert.NoError(t, err)
	assert.Nil(t, user)

	_, err = sessions.FindByTokenHash(ctx, hashSessionToken(res.Token))
	assert.True(t, errors.Is(err, repository.ErrSessionNotFound), "expired session is removed")
}

func TestAuthServiceResolveStoreFailure(t *testing.T) {
	repo := newMockAuthRepo()
	store := failingSessionStore{MemorySessionRepository: repository.NewMemorySessionRepository(), err: errors.New("redis down")}
	svc := NewAuthService(repo, store, nil, nil, nil, AuthConfig{})

	user, err := svc.Resolve(context.Background(), "token")
	assert.Nil(t, user)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogout(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, dto.LoginRequest{Username: "guru", Password: "teach123"})
	require.NoError(t, err)
	actor, err := svc.Resolve(ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, actor, res.Token, "", ""))
	user, err := svc.Resolve(ctx, res.Token)
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.Equal(t, models.AuditActionLogout, repo.auditLogs[len(repo.auditLogs)-1].Action)

	assert.NoError(t, svc.Logout(ctx, nil, "", "", ""), "logout without a session is a no-op")
}

func TestAuthServiceMeAnonymous(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Me(nil)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceSweepExpired(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginRequest{Username: "guru", Password: "teach123"})
	require.NoError(t, err)

	removed, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	removed, err = svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
