package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/highroller/payroll-api/internal/models"
	"github.com/highroller/payroll-api/internal/repository"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/validation"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Create(ctx context.Context, user *models.User) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type sessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret     string
	SessionTTL time.Duration
	Issuer     string
}

// AuthService provides signup, login, logout and session resolution.
type AuthService struct {
	repo     authUserRepository
	sessions sessionStore
	metrics  *MetricsService
	logger   *zap.Logger
	config   AuthConfig
	now      func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, sessions sessionStore, metrics *MetricsService, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 8 * time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "payroll-api"
	}
	return &AuthService{
		repo:     repo,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
		config:   config,
		now:      time.Now,
	}
}

// SessionTTL is the lifetime of issued sessions.
func (s *AuthService) SessionTTL() time.Duration {
	return s.config.SessionTTL
}

// Signup creates an HR account.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	username := validation.Sanitize(req.Username)
	if username == "" || req.Password == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "username and password are required")
	}
	if !validation.IsValidLength(username, 50) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "username must be at most 50 characters")
	}
	if !validation.IsValidPassword(req.Password) {
		return nil, appErrors.Clone(appErrors.ErrValidation, validation.PasswordRequirements)
	}
	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.User{Username: username, PasswordHash: string(hash), Role: models.RoleHR}
	if err := s.repo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.audit(ctx, user.ID, models.AuditActionSignup, `{"role":"HR"}`, "", "")
	s.logger.Info("user signed up", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials, opens a session and returns a signed token that references it.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	username := validation.Sanitize(req.Username)
	if username == "" || req.Password == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "username and password are required")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordLogin(false)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordLogin(false)
		return nil, appErrors.ErrInvalidCredentials
	}

	issuedAt := s.now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		IP:        req.IP,
		UserAgent: req.UserAgent,
		CreatedAt: issuedAt,
		ExpiresAt: issuedAt.Add(s.config.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	token, err := s.signToken(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session token")
	}

	s.metrics.RecordLogin(true)
	s.audit(ctx, user.ID, models.AuditActionLogin, `{"status":"success"}`, req.IP, req.UserAgent)
	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.SessionTTL.Seconds()),
		User:      models.NewSessionInfo(session.Identity()),
		IssuedAt:  issuedAt,
	}, nil
}

// Logout ends the session referenced by the token. Unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID string, identity models.Identity, meta models.LoginRequest) error {
	if strings.TrimSpace(sessionID) == "" {
		return appErrors.ErrUnauthorized
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to end session")
	}
	s.audit(ctx, identity.UserID, models.AuditActionLogout, `{"status":"logout"}`, meta.IP, meta.UserAgent)
	return nil
}

// Authenticate validates the token and loads the live session it references.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.UserID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session does not match token")
	}
	return session, nil
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing session token")
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ListUsers returns accounts for admins.
func (s *AuthService) ListUsers(ctx context.Context, identity models.Identity, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	if !identity.IsAdmin() {
		return nil, nil, appErrors.ErrForbidden
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func (s *AuthService) signToken(session *models.Session) (string, error) {
	claims := &models.SessionClaims{
		SessionID: session.ID,
		UserID:    session.UserID,
		Username:  session.Username,
		Role:      session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   strconv.FormatInt(session.UserID, 10),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			NotBefore: jwt.NewNumericDate(session.CreatedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *AuthService) audit(ctx context.Context, userID int64, action, values, ip, userAgent string) {
	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:    &userID,
		Action:    action,
		Resource:  "auth",
		NewValues: []byte(values),
		IPAddress: ip,
		UserAgent: userAgent,
	}); err != nil {
		s.logger.Warn("failed to record auth audit log", zap.String("action", action), zap.Error(err))
	}
}
