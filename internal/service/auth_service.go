package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-records-api/internal/dto"
	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/internal/repository"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

const sessionTokenBytes = 32

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// dummyPasswordHash is compared against when the username is unknown so both
// branches of Login pay for one bcrypt comparison.
func dummyPasswordHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unknown-user"), bcrypt.DefaultCost)
	})
	return dummyHash
}

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SessionStore persists sessions keyed by the hash of their token.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	SessionTTL time.Duration
}

// AuthService provides login, logout and session resolution.
type AuthService struct {
	repo      authUserRepository
	sessions  SessionStore
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, sessions SessionStore, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		sessions:  sessions,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SessionTTL returns the configured session lifetime.
func (s *AuthService) SessionTTL() time.Duration {
	return s.config.SessionTTL
}

// Login verifies credentials and opens a session. The returned token is only
// ever handed to the client; the store keeps its hash.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "username and password are required")
	}

	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash(), []byte(req.Password))
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Internal(err, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create session")
	}

	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		TokenHash: hashSessionToken(token),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.config.SessionTTL),
		CreatedAt: now,
		IPAddress: req.IP,
		UserAgent: req.UserAgent,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Internal(err, "failed to create session")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to update last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	s.audit(ctx, &user.ID, models.AuditActionLogin, req.IP, req.UserAgent)

	return &dto.LoginResult{
		User:      user.Info(),
		Token:     token,
		ExpiresIn: int(s.config.SessionTTL.Seconds()),
	}, nil
}

// Logout destroys the session behind token. Without a session it is a no-op.
func (s *AuthService) Logout(ctx context.Context, actor *models.User, token, ip, userAgent string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, hashSessionToken(token)); err != nil {
		return appErrors.Internal(err, "failed to end session")
	}
	if actor != nil {
		s.audit(ctx, &actor.ID, models.AuditActionLogout, ip, userAgent)
	}
	return nil
}

// Resolve maps a session token to its user. Unknown, expired or orphaned
// sessions resolve to nil without an error; only store failures error.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		s.metrics.RecordSessionResolution(SessionResultMissing)
		return nil, nil
	}

	hash := hashSessionToken(token)
	session, err := s.sessions.FindByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			s.metrics.RecordSessionResolution(SessionResultMissing)
			return nil, nil
		}
		s.metrics.RecordSessionResolution(SessionResultError)
		return nil, appErrors.Internal(err, "failed to load session")
	}

	if session.Expired(s.now()) {
		s.metrics.RecordSessionResolution(SessionResultExpired)
		s.discard(ctx, hash)
		return nil, nil
	}

	user, err := s.repo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordSessionResolution(SessionResultMissing)
			s.discard(ctx, hash)
			return nil, nil
		}
		s.metrics.RecordSessionResolution(SessionResultError)
		return nil, appErrors.Internal(err, "failed to load session user")
	}

	s.metrics.RecordSessionResolution(SessionResultValid)
	return user, nil
}

// Me returns the public view of the authenticated user.
func (s *AuthService) Me(actor *models.User) (*models.UserInfo, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "not logged in")
	}
	info := actor.Info()
	return &info, nil
}

// SweepExpired removes every session past its expiry.
func (s *AuthService) SweepExpired(ctx context.Context) (int64, error) {
	removed, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	s.metrics.RecordSessionsSwept(removed)
	return removed, nil
}

func (s *AuthService) discard(ctx context.Context, hash string) {
	if err := s.sessions.Delete(ctx, hash); err != nil {
		s.logger.Warn("failed to delete stale session", zap.Error(err))
	}
}

func (s *AuthService) audit(ctx context.Context, userID *int64, action, ip, userAgent string) {
	var resourceID *string
	if userID != nil {
		id := strconv.FormatInt(*userID, 10)
		resourceID = &id
	}
	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   "session",
		ResourceID: resourceID,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func generateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
