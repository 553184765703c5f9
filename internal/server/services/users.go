package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/common"
	"github.com/dmitrijs2005/healthlog/internal/cryptox"
	"github.com/dmitrijs2005/healthlog/internal/logging"
	"github.com/dmitrijs2005/healthlog/internal/server/auth"
	"github.com/dmitrijs2005/healthlog/internal/server/config"
	"github.com/dmitrijs2005/healthlog/internal/server/models"
	"github.com/dmitrijs2005/healthlog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/healthlog/internal/server/repositories/users"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Session is what a successful SignIn hands back to the caller.
type Session struct {
	User        *models.User
	AccessToken string
	ExpiresAt   time.Time
}

// UserService registers accounts and issues, checks and revokes access tokens.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	logger                      logging.Logger
	now                         func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		logger:                      logger.With("module", "user_service"),
		now:                         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	return validation.Errors{
		"email": validation.Validate(email,
			validation.Required, validation.RuneLength(3, 254),
			validation.Match(emailPattern).Error("must be a valid email address")),
		"password": validation.Validate(password,
			validation.Required, validation.RuneLength(minPasswordLength, maxPasswordLength)),
	}.Filter()
}

// SignUp creates an account. The password is stored as an argon2id hash.
func (s *UserService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	const op = "sign up"

	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, common.E(common.KindValidationFailed, op, err)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// SignIn checks the password and mints an access token. Unknown emails and
// wrong passwords give the same NotAuthenticated error.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	const op = "sign in"

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Ef(common.KindNotAuthenticated, op, "invalid credentials")
		}
		return nil, err
	}
	if !cryptox.VerifyPassword(password, user.PasswordHash) {
		return nil, common.Ef(common.KindNotAuthenticated, op, "invalid credentials")
	}

	token, claims, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration, s.now())
	if err != nil {
		return nil, err
	}

	return &Session{User: user, AccessToken: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Authenticate verifies token and rejects tokens revoked by SignOut.
func (s *UserService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	const op = "authenticate"

	if token == "" {
		return nil, common.Ef(common.KindNotAuthenticated, op, "missing access token")
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.E(common.KindNotAuthenticated, op, err)
	}

	revoked, err := s.repomanager.Revocations(s.db).IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, common.Ef(common.KindNotAuthenticated, op, "token revoked")
	}

	return claims, nil
}

// SignOut revokes the token until it would expire and drops revocations
// that are no longer needed. An expired token is already unusable.
func (s *UserService) SignOut(ctx context.Context, token string) error {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil
		}
		return common.E(common.KindNotAuthenticated, "sign out", err)
	}

	repo := s.repomanager.Revocations(s.db)
	if err := repo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}

	if n, err := repo.Purge(ctx, s.now()); err != nil {
		s.logger.Warn(ctx, "purge revoked tokens", "error", err)
	} else if n > 0 {
		s.logger.Debug(ctx, "purged revoked tokens", "count", n)
	}

	s.logger.Info(ctx, "user signed out", "user_id", claims.UserID)
	return nil
}

// GetUser returns the account with the given id.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}
