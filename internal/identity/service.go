package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrinehub/vitrine-backend/internal/accounts"
	"github.com/vitrinehub/vitrine-backend/internal/ratelimit"
	"github.com/vitrinehub/vitrine-backend/pkg/auth"
	"github.com/vitrinehub/vitrine-backend/pkg/auth/session"
	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/db"
	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	redisclient "github.com/vitrinehub/vitrine-backend/pkg/redis"
	"github.com/vitrinehub/vitrine-backend/pkg/security"
)

const (
	passwordMinLen         = 8
	verificationTokenBytes = 32
)

type usersRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type accountProvisioner interface {
	Provision(ctx context.Context, userID uuid.UUID, email, name string) (*accounts.AccountDTO, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*accounts.AccountDTO, error)
}

type verificationStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	VerificationTokenKey(tokenHash string) string
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type captchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type verificationMailer interface {
	SendVerificationEmail(ctx context.Context, to, confirmURL string) error
}

type resendLimiter interface {
	CheckAndIncrement(ctx context.Context, ip, email string) ratelimit.Result
}

// Service exposes the authentication surface.
type Service interface {
	SignUp(ctx context.Context, input SignUpInput) (*UserDTO, error)
	VerifyEmail(ctx context.Context, token string) (*UserDTO, error)
	SignIn(ctx context.Context, input SignInInput) (*SessionDTO, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*SessionDTO, error)
	SignOut(ctx context.Context, accessToken string) error
	ResendConfirmation(ctx context.Context, input ResendConfirmationInput) error
}

type service struct {
	repo     usersRepository
	accounts accountProvisioner
	tokens   verificationStore
	sessions sessionManager
	captcha  captchaVerifier
	mail     verificationMailer
	limiter  resendLimiter
	logg     *logger.Logger

	jwtCfg    config.JWTConfig
	passCfg   config.PasswordConfig
	verifyCfg config.VerificationConfig
}

// Deps bundles the identity service collaborators.
type Deps struct {
	Repo     usersRepository
	Accounts accountProvisioner
	Tokens   verificationStore
	Sessions sessionManager
	Captcha  captchaVerifier
	Mail     verificationMailer
	Limiter  resendLimiter
	Logger   *logger.Logger

	JWT          config.JWTConfig
	Password     config.PasswordConfig
	Verification config.VerificationConfig
}

// NewService builds the identity service.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Repo == nil:
		return nil, fmt.Errorf("users repository required")
	case deps.Accounts == nil:
		return nil, fmt.Errorf("account provisioner required")
	case deps.Tokens == nil:
		return nil, fmt.Errorf("verification store required")
	case deps.Sessions == nil:
		return nil, fmt.Errorf("session manager required")
	case deps.Captcha == nil:
		return nil, fmt.Errorf("captcha verifier required")
	case deps.Mail == nil:
		return nil, fmt.Errorf("mailer required")
	case deps.Limiter == nil:
		return nil, fmt.Errorf("resend limiter required")
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      deps.Repo,
		accounts:  deps.Accounts,
		tokens:    deps.Tokens,
		sessions:  deps.Sessions,
		captcha:   deps.Captcha,
		mail:      deps.Mail,
		limiter:   deps.Limiter,
		logg:      deps.Logger,
		jwtCfg:    deps.JWT,
		passCfg:   deps.Password,
		verifyCfg: deps.Verification,
	}, nil
}

// SignUp registers a new user and dispatches the confirmation email. The
// response is identical whether or not the email was already taken.
func (s *service) SignUp(ctx context.Context, input SignUpInput) (*UserDTO, error) {
	if err := s.captcha.Verify(ctx, input.TurnstileToken, input.RemoteIP); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(input.Password) < passwordMinLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters").
			WithDetails(map[string]any{"min_length": passwordMinLen})
	}

	hash, err := security.HashPassword(input.Password, s.passCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{Email: email, PasswordHash: hash, Name: name}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			// Existing address: answer as if the sign-up worked so the
			// response does not reveal which emails are registered.
			s.logg.Warn(ctx, "sign-up for already registered email")
			return &UserDTO{Email: email, Name: name}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	if err := s.sendVerification(ctx, user); err != nil {
		s.logg.Error(ctx, "dispatch verification email", err)
	}
	return FromUserModel(user), nil
}

// VerifyEmail consumes a confirmation token, marks the user verified, and
// provisions the tenant account. Replayed or expired tokens fail alike.
func (s *service) VerifyEmail(ctx context.Context, token string) (*UserDTO, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verification token is required")
	}

	key := s.tokens.VerificationTokenKey(security.SHA256Hex(token))
	stored, err := s.tokens.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired verification token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification token")
	}
	userID, err := uuid.Parse(stored)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired verification token")
	}

	if err := s.tokens.Del(ctx, key); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume verification token")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired verification token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	if !user.EmailVerified() {
		now := time.Now().UTC()
		if err := s.repo.MarkEmailVerified(ctx, user.ID, now); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark email verified")
		}
		user.EmailVerifiedAt = &now
	}

	if _, err := s.accounts.Provision(ctx, user.ID, user.Email, user.Name); err != nil {
		return nil, err
	}
	return FromUserModel(user), nil
}

// SignIn checks the credential pair and issues an access/refresh pair. All
// credential failures share one answer.
func (s *service) SignIn(ctx context.Context, input SignInInput) (*SessionDTO, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, invalidCredentials()
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, invalidCredentials()
	}

	dto, err := s.mintSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "record last login failed")
	}
	return dto, nil
}

// Refresh rotates the refresh token and reissues the access token with a
// fresh view of the account.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*SessionDTO, error) {
	claims, err := auth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	access, err := s.mintAccessToken(ctx, user, newAccessID)
	if err != nil {
		return nil, err
	}
	return &SessionDTO{AccessToken: access, RefreshToken: newRefresh, User: *FromUserModel(user)}, nil
}

// SignOut revokes the refresh session tied to the presented access token.
// Absent or expired sessions sign out cleanly.
func (s *service) SignOut(ctx context.Context, accessToken string) error {
	claims, err := auth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		s.logg.Error(ctx, "revoke session", err)
	}
	return nil
}

// ResendConfirmation re-sends the confirmation email behind the captcha and
// the resend ceilings. The caller always gets the same answer; only the
// ceilings are allowed to say no.
func (s *service) ResendConfirmation(ctx context.Context, input ResendConfirmationInput) error {
	if err := s.captcha.Verify(ctx, input.TurnstileToken, input.RemoteIP); err != nil {
		return err
	}

	email := normalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return err
	}

	if result := s.limiter.CheckAndIncrement(ctx, input.RemoteIP, email); !result.Allowed {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many resend attempts, try again later").
			WithDetails(map[string]any{"denied_by": string(result.Denied)})
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Error(ctx, "load user for resend", err)
		}
		return nil
	}
	if user.EmailVerified() {
		return nil
	}

	if err := s.sendVerification(ctx, user); err != nil {
		s.logg.Error(ctx, "dispatch verification email", err)
	}
	return nil
}

func (s *service) mintSession(ctx context.Context, user *models.User) (*SessionDTO, error) {
	accessID := session.NewAccessID()
	access, err := s.mintAccessToken(ctx, user, accessID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}
	return &SessionDTO{AccessToken: access, RefreshToken: refresh, User: *FromUserModel(user)}, nil
}

func (s *service) mintAccessToken(ctx context.Context, user *models.User, accessID string) (string, error) {
	payload := auth.AccessTokenPayload{
		UserID:        user.ID,
		EmailVerified: user.EmailVerified(),
		JTI:           accessID,
	}

	account, err := s.accounts.GetByUserID(ctx, user.ID)
	switch {
	case err == nil:
		payload.AccountID = &account.ID
		payload.TenantID = &account.TenantID
		payload.AccountStatus = &account.Status
	case pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeNotFound:
		// verified-but-unprovisioned window: claims stay account-less
	default:
		return "", err
	}

	token, err := auth.MintAccessToken(s.jwtCfg, time.Now().UTC(), payload)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return token, nil
}

// sendVerification stores a single-use token and mails the confirmation
// link. Only the token digest touches Redis.
func (s *service) sendVerification(ctx context.Context, user *models.User) error {
	token, err := security.GenerateToken(verificationTokenBytes)
	if err != nil {
		return err
	}

	key := s.tokens.VerificationTokenKey(security.SHA256Hex(token))
	if _, err := s.tokens.SetNX(ctx, key, user.ID.String(), s.verifyCfg.TokenTTL); err != nil {
		return err
	}

	confirmURL := strings.TrimSuffix(s.verifyCfg.PublicBaseURL, "/") + s.verifyCfg.ConfirmPath + "?token=" + token
	return s.mail.SendVerificationEmail(ctx, user.Email, confirmURL)
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func validateEmail(email string) error {
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is invalid")
	}
	return nil
}
