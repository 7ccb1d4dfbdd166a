package identity

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/vitrinehub/vitrine-backend/internal/accounts"
	"github.com/vitrinehub/vitrine-backend/internal/ratelimit"
	"github.com/vitrinehub/vitrine-backend/pkg/auth"
	"github.com/vitrinehub/vitrine-backend/pkg/auth/session"
	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	redisclient "github.com/vitrinehub/vitrine-backend/pkg/redis"
	"github.com/vitrinehub/vitrine-backend/pkg/security"
)

type stubUsersRepo struct {
	byID      map[uuid.UUID]*models.User
	byEmail   map[string]*models.User
	createErr error
	created   []*models.User
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{
		byID:    map[uuid.UUID]*models.User{},
		byEmail: map[string]*models.User{},
	}
}

func (s *stubUsersRepo) add(user *models.User) {
	s.byID[user.ID] = user
	s.byEmail[strings.ToLower(user.Email)] = user
}

func (s *stubUsersRepo) Create(_ context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.add(user)
	s.created = append(s.created, user)
	return nil
}

func (s *stubUsersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[strings.ToLower(email)]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) MarkEmailVerified(_ context.Context, id uuid.UUID, at time.Time) error {
	if user, ok := s.byID[id]; ok && user.EmailVerifiedAt == nil {
		user.EmailVerifiedAt = &at
	}
	return nil
}

func (s *stubUsersRepo) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if user, ok := s.byID[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

type stubAccounts struct {
	byUserID    map[uuid.UUID]*accounts.AccountDTO
	provisioned []uuid.UUID
}

func newStubAccounts() *stubAccounts {
	return &stubAccounts{byUserID: map[uuid.UUID]*accounts.AccountDTO{}}
}

func (s *stubAccounts) Provision(_ context.Context, userID uuid.UUID, email, name string) (*accounts.AccountDTO, error) {
	s.provisioned = append(s.provisioned, userID)
	if existing, ok := s.byUserID[userID]; ok {
		return existing, nil
	}
	dto := &accounts.AccountDTO{
		ID:       uuid.New(),
		UserID:   userID,
		TenantID: uuid.New(),
		Email:    email,
		Name:     name,
		Status:   enums.AccountStatusActive,
	}
	s.byUserID[userID] = dto
	return dto, nil
}

func (s *stubAccounts) GetByUserID(_ context.Context, userID uuid.UUID) (*accounts.AccountDTO, error) {
	if dto, ok := s.byUserID[userID]; ok {
		return dto, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
}

type stubTokenStore struct {
	values map[string]string
	setErr error
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{values: map[string]string{}}
}

func (s *stubTokenStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if s.setErr != nil {
		return false, s.setErr
	}
	if _, exists := s.values[key]; exists {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *stubTokenStore) Get(_ context.Context, key string) (string, error) {
	if value, ok := s.values[key]; ok {
		return value, nil
	}
	return "", redisclient.Nil
}

func (s *stubTokenStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubTokenStore) VerificationTokenKey(tokenHash string) string {
	return "vitrine:verify:token:" + tokenHash
}

type stubSessions struct {
	generated map[string]string
	revoked   []string
	rotateErr error
}

func newStubSessions() *stubSessions {
	return &stubSessions{generated: map[string]string{}}
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.generated[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	stored, ok := s.generated[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.generated, oldAccessID)
	newID := uuid.NewString()
	token := "refresh-" + newID
	s.generated[newID] = token
	return newID, token, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.generated, accessID)
	return nil
}

type stubCaptcha struct {
	err   error
	calls int
}

func (s *stubCaptcha) Verify(context.Context, string, string) error {
	s.calls++
	return s.err
}

type stubMailer struct {
	sent []string
	urls []string
	err  error
}

func (s *stubMailer) SendVerificationEmail(_ context.Context, to, confirmURL string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	s.urls = append(s.urls, confirmURL)
	return nil
}

type stubLimiter struct {
	result ratelimit.Result
	calls  int
}

func (s *stubLimiter) CheckAndIncrement(context.Context, string, string) ratelimit.Result {
	s.calls++
	return s.result
}

type identityFixture struct {
	svc      Service
	repo     *stubUsersRepo
	accounts *stubAccounts
	tokens   *stubTokenStore
	sessions *stubSessions
	captcha  *stubCaptcha
	mail     *stubMailer
	limiter  *stubLimiter
}

func newIdentityFixture(t *testing.T) *identityFixture {
	t.Helper()
	f := &identityFixture{
		repo:     newStubUsersRepo(),
		accounts: newStubAccounts(),
		tokens:   newStubTokenStore(),
		sessions: newStubSessions(),
		captcha:  &stubCaptcha{},
		mail:     &stubMailer{},
		limiter:  &stubLimiter{result: ratelimit.Result{Allowed: true}},
	}
	svc, err := NewService(Deps{
		Repo:     f.repo,
		Accounts: f.accounts,
		Tokens:   f.tokens,
		Sessions: f.sessions,
		Captcha:  f.captcha,
		Mail:     f.mail,
		Limiter:  f.limiter,
		Logger:   logger.New(logger.Options{Output: io.Discard}),
		JWT:      testJWTConfig(),
		Password: config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
		Verification: config.VerificationConfig{
			PublicBaseURL: "https://vitrine.app",
			ConfirmPath:   "/api/v1/auth/verify-email",
			TokenTTL:      24 * time.Hour,
		},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "vitrine",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func (f *identityFixture) signUp(t *testing.T, email, password string) *UserDTO {
	t.Helper()
	user, err := f.svc.SignUp(context.Background(), SignUpInput{
		Name:           "Maria Silva",
		Email:          email,
		Password:       password,
		TurnstileToken: "ok-token",
		RemoteIP:       "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	return user
}

// extractToken pulls the raw token back out of the mailed confirm URL.
func extractToken(t *testing.T, confirmURL string) string {
	t.Helper()
	idx := strings.Index(confirmURL, "?token=")
	if idx < 0 {
		t.Fatalf("no token in %q", confirmURL)
	}
	return confirmURL[idx+len("?token="):]
}

func TestSignUpCreatesUserAndMailsConfirmation(t *testing.T) {
	f := newIdentityFixture(t)

	user := f.signUp(t, "Maria@Example.com", "sup3r-secret")

	if user.Email != "maria@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.EmailVerified {
		t.Fatal("new user must start unverified")
	}
	if len(f.mail.sent) != 1 || f.mail.sent[0] != "maria@example.com" {
		t.Fatalf("expected one confirmation email, got %+v", f.mail.sent)
	}
	if !strings.HasPrefix(f.mail.urls[0], "https://vitrine.app/api/v1/auth/verify-email?token=") {
		t.Fatalf("unexpected confirm URL %q", f.mail.urls[0])
	}
	if len(f.tokens.values) != 1 {
		t.Fatalf("expected stored token digest, got %d", len(f.tokens.values))
	}
	if ok, _ := security.VerifyPassword("sup3r-secret", f.repo.created[0].PasswordHash); !ok {
		t.Fatal("stored hash does not verify the password")
	}
}

func TestSignUpDuplicateEmailAnswersLikeSuccess(t *testing.T) {
	f := newIdentityFixture(t)
	f.signUp(t, "maria@example.com", "sup3r-secret")
	f.repo.createErr = uniqueViolation("users_email_key")
	f.mail.sent = nil

	user, err := f.svc.SignUp(context.Background(), SignUpInput{
		Name:           "Imposter",
		Email:          "maria@example.com",
		Password:       "other-secret",
		TurnstileToken: "ok-token",
		RemoteIP:       "203.0.113.8",
	})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if user.Email != "maria@example.com" {
		t.Fatalf("unexpected response %+v", user)
	}
	if len(f.mail.sent) != 0 {
		t.Fatal("duplicate sign-up must not mail anything")
	}
}

func TestSignUpRejectsFailedCaptcha(t *testing.T) {
	f := newIdentityFixture(t)
	f.captcha.err = pkgerrors.New(pkgerrors.CodeValidation, "captcha verification failed")

	_, err := f.svc.SignUp(context.Background(), SignUpInput{
		Name: "Maria", Email: "maria@example.com", Password: "sup3r-secret",
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.repo.created) != 0 {
		t.Fatal("captcha failure must not create a user")
	}
}

func TestSignUpValidatesInput(t *testing.T) {
	f := newIdentityFixture(t)
	cases := []SignUpInput{
		{Name: "", Email: "a@b.com", Password: "longenough"},
		{Name: "Maria", Email: "not-an-email", Password: "longenough"},
		{Name: "Maria", Email: "a@b.com", Password: "short"},
	}
	for i, input := range cases {
		if _, err := f.svc.SignUp(context.Background(), input); err == nil {
			t.Errorf("case %d: expected validation error", i)
		} else if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Errorf("case %d: expected VALIDATION_ERROR, got %v", i, err)
		}
	}
}

func TestVerifyEmailProvisionsAccountOnce(t *testing.T) {
	f := newIdentityFixture(t)
	f.signUp(t, "maria@example.com", "sup3r-secret")
	token := extractToken(t, f.mail.urls[0])

	user, err := f.svc.VerifyEmail(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if !user.EmailVerified {
		t.Fatal("user should be verified")
	}
	if len(f.accounts.provisioned) != 1 {
		t.Fatalf("expected one provision call, got %d", len(f.accounts.provisioned))
	}

	// the token is single-use
	if _, err := f.svc.VerifyEmail(context.Background(), token); err == nil {
		t.Fatal("replayed token must fail")
	} else if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR on replay, got %v", err)
	}
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	f := newIdentityFixture(t)
	_, err := f.svc.VerifyEmail(context.Background(), "never-issued")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestSignInIssuesSessionWithAccountClaims(t *testing.T) {
	f := newIdentityFixture(t)
	f.signUp(t, "maria@example.com", "sup3r-secret")
	token := extractToken(t, f.mail.urls[0])
	if _, err := f.svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	dto, err := f.svc.SignIn(context.Background(), SignInInput{Email: "maria@example.com", Password: "sup3r-secret"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if dto.AccessToken == "" || dto.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", dto)
	}

	claims, err := auth.ParseAccessToken(testJWTConfig(), dto.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if !claims.EmailVerified || claims.TenantID == nil || claims.AccountStatus == nil {
		t.Fatalf("expected account claims, got %+v", claims)
	}
	if *claims.AccountStatus != enums.AccountStatusActive {
		t.Fatalf("expected active status, got %s", *claims.AccountStatus)
	}
	if _, ok := f.sessions.generated[claims.ID]; !ok {
		t.Fatal("refresh session not keyed by jti")
	}
	if f.repo.created[0].LastLoginAt == nil {
		t.Fatal("last login not recorded")
	}
}

func TestSignInBeforeVerificationOmitsAccountClaims(t *testing.T) {
	f := newIdentityFixture(t)
	f.signUp(t, "maria@example.com", "sup3r-secret")

	dto, err := f.svc.SignIn(context.Background(), SignInInput{Email: "maria@example.com", Password: "sup3r-secret"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	claims, err := auth.ParseAccessToken(testJWTConfig(), dto.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.EmailVerified || claims.TenantID != nil || claims.AccountID != nil {
		t.Fatalf("expected account-less unverified claims, got %+v", claims)
	}
}

func TestSignInWrongCredentialsShareOneAnswer(t *testing.T) {
	f := newIdentityFixture(t)
	f.signUp(t, "maria@example.com", "sup3r-secret")

	_, errWrongPassword := f.svc.SignIn(context.Background(), SignInInput{Email: "maria@example.com", Password: "wrong"})
	_, errUnknownEmail := f.svc.SignIn(context.Background(), SignInInput{Email: "ghost@example.com", Password: "whatever"})

	for _, err := range []error{errWrongPassword, errUnknownEmail} {
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected UNAUTHORIZED, got %v", err)
		}
		if appErr.Message() != "invalid email or password" {
			t.Fatalf("responses must not distinguish causes, got %q", appErr.Message())
		}
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	f := newIdentityFixture(t)
	f.signUp(t, "maria@example.com", "sup3r-secret")
	dto, err := f.svc.SignIn(context.Background(), SignInInput{Email: "maria@example.com", Password: "sup3r-secret"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	renewed, err := f.svc.Refresh(context.Background(), dto.AccessToken, dto.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if renewed.RefreshToken == dto.RefreshToken {
		t.Fatal("refresh token must rotate")
	}

	// the old pair is dead
	if _, err := f.svc.Refresh(context.Background(), dto.AccessToken, dto.RefreshToken); err == nil {
		t.Fatal("expected old pair to be rejected")
	} else if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestSignOutRevokesSession(t *testing.T) {
	f := newIdentityFixture(t)
	f.signUp(t, "maria@example.com", "sup3r-secret")
	dto, err := f.svc.SignIn(context.Background(), SignInInput{Email: "maria@example.com", Password: "sup3r-secret"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if err := f.svc.SignOut(context.Background(), dto.AccessToken); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if len(f.sessions.revoked) != 1 {
		t.Fatalf("expected one revocation, got %d", len(f.sessions.revoked))
	}

	if err := f.svc.SignOut(context.Background(), "garbage-token"); err != nil {
		t.Fatalf("sign-out with bad token must be clean, got %v", err)
	}
}

func TestResendConfirmationGenericOnUnknownEmail(t *testing.T) {
	f := newIdentityFixture(t)

	err := f.svc.ResendConfirmation(context.Background(), ResendConfirmationInput{
		Email: "ghost@example.com", TurnstileToken: "ok", RemoteIP: "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("expected generic success, got %v", err)
	}
	if len(f.mail.sent) != 0 {
		t.Fatal("nothing should be mailed for unknown emails")
	}
	if f.limiter.calls != 1 {
		t.Fatal("limiter must run before the user lookup")
	}
}

func TestResendConfirmationDeniedByLimiter(t *testing.T) {
	f := newIdentityFixture(t)
	f.signUp(t, "maria@example.com", "sup3r-secret")
	f.limiter.result = ratelimit.Result{Denied: ratelimit.DimensionEmail}
	f.mail.sent = nil

	err := f.svc.ResendConfirmation(context.Background(), ResendConfirmationInput{
		Email: "maria@example.com", TurnstileToken: "ok", RemoteIP: "203.0.113.7",
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected RATE_LIMIT_EXCEEDED, got %v", err)
	}
	if len(f.mail.sent) != 0 {
		t.Fatal("denied resend must not mail")
	}
}

func TestResendConfirmationSkipsVerifiedUsers(t *testing.T) {
	f := newIdentityFixture(t)
	f.signUp(t, "maria@example.com", "sup3r-secret")
	token := extractToken(t, f.mail.urls[0])
	if _, err := f.svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	f.mail.sent = nil

	if err := f.svc.ResendConfirmation(context.Background(), ResendConfirmationInput{
		Email: "maria@example.com", TurnstileToken: "ok", RemoteIP: "203.0.113.7",
	}); err != nil {
		t.Fatalf("expected generic success, got %v", err)
	}
	if len(f.mail.sent) != 0 {
		t.Fatal("verified users get no confirmation mail")
	}
}

func TestResendConfirmationMailFailureStaysGeneric(t *testing.T) {
	f := newIdentityFixture(t)
	f.signUp(t, "maria@example.com", "sup3r-secret")
	f.mail.err = pkgerrors.New(pkgerrors.CodeDependency, "mail api down")

	if err := f.svc.ResendConfirmation(context.Background(), ResendConfirmationInput{
		Email: "maria@example.com", TurnstileToken: "ok", RemoteIP: "203.0.113.7",
	}); err != nil {
		t.Fatalf("mail failures must not surface, got %v", err)
	}
}
