package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/trusthire/trusthire/internal/domain"
	"github.com/trusthire/trusthire/internal/logger"
	"github.com/trusthire/trusthire/internal/token"
)

var tracer = otel.Tracer("auth")

// UserStore is the account persistence the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user domain.User, passwordHash []byte) (domain.User, error)
	GetByLogin(ctx context.Context, login string) (domain.User, []byte, error)
	Get(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// TokenManager issues and parses session tokens.
type TokenManager interface {
	Issue(userID uuid.UUID, role domain.Role) (string, error)
	Parse(tokenString string) (token.Session, error)
}

// RevocationStore remembers signed-out token IDs until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Notifier is the fire-and-forget notification sink.
type Notifier interface {
	Publish(ctx context.Context, userID string, event domain.Event) error
}

// AuthService owns the session lifecycle: anonymous, authenticating,
// authenticated. Auth operations for the same identity are serialized;
// a second call while one is in flight fails with ErrAuthInProgress
// instead of racing.
type AuthService struct {
	users    UserStore
	tokens   TokenManager
	revoked  RevocationStore
	notifier Notifier
	logger   *logger.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewAuthService(
	users UserStore,
	tokens TokenManager,
	revoked RevocationStore,
	notifier Notifier,
	logger *logger.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		revoked:  revoked,
		notifier: notifier,
		logger:   logger,
		inflight: map[string]struct{}{},
	}
}

// SignUpInput carries the sign-up form.
type SignUpInput struct {
	Username    string
	Password    string
	Email       string
	Role        domain.Role
	CompanyName string
}

// SignUp creates the account and its role in one write and returns an
// authenticated session. There is no second role write that can fail
// and leave a roleless account behind.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (domain.User, string, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.SignUp")
	defer span.End()

	if err := validateSignUp(input); err != nil {
		span.RecordError(err)
		return domain.User{}, "", err
	}

	identity := strings.ToLower(input.Username)
	if !s.begin(identity) {
		return domain.User{}, "", domain.ErrAuthInProgress
	}
	defer s.finish(identity)

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return domain.User{}, "", errors.Wrap(err, "failed to hash password")
	}

	user, err := s.users.Create(ctx, domain.User{
		ID:          uuid.New(),
		Username:    input.Username,
		Email:       input.Email,
		Role:        input.Role,
		CompanyName: input.CompanyName,
	}, hash)
	if err != nil {
		span.RecordError(err)
		return domain.User{}, "", err
	}

	signed, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		span.RecordError(err)
		return domain.User{}, "", errors.Wrap(err, "failed to issue token")
	}

	s.notify(ctx, user.ID.String(), domain.EventSessionSignedIn)

	s.logger.Info("user signed up",
		"user_id", user.ID.String(),
		"role", string(user.Role))

	return user, signed, nil
}

// SignIn authenticates by username or email. The returned profile
// carries the role the caller uses for its redirect decision.
func (s *AuthService) SignIn(ctx context.Context, login, password string) (domain.User, string, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.SignIn")
	defer span.End()

	if login == "" || password == "" {
		return domain.User{}, "", domain.ValidationError{Field: "login", Reason: "login and password are required"}
	}

	identity := strings.ToLower(login)
	if !s.begin(identity) {
		return domain.User{}, "", domain.ErrAuthInProgress
	}
	defer s.finish(identity)

	user, hash, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Same answer as a bad password: no account enumeration.
			return domain.User{}, "", domain.ErrUnauthenticated
		}
		span.RecordError(err)
		return domain.User{}, "", err
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return domain.User{}, "", domain.ErrUnauthenticated
	}

	signed, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		span.RecordError(err)
		return domain.User{}, "", errors.Wrap(err, "failed to issue token")
	}

	s.notify(ctx, user.ID.String(), domain.EventSessionSignedIn)

	return user, signed, nil
}

// SignOut revokes the token's JTI until its natural expiry. Calling it
// with an already-dead token is a no-op.
func (s *AuthService) SignOut(ctx context.Context, tokenString string) error {
	ctx, span := tracer.Start(ctx, "Auth.Service.SignOut")
	defer span.End()

	session, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil
	}

	if err := s.revoked.Revoke(ctx, session.JTI, session.ExpiresAt); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to revoke token")
	}

	s.notify(ctx, session.UserID.String(), domain.EventSessionSignedOut)
	return nil
}

// Validate parses a token and checks it against the revocation set.
func (s *AuthService) Validate(ctx context.Context, tokenString string) (token.Session, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Validate")
	defer span.End()

	session, err := s.tokens.Parse(tokenString)
	if err != nil {
		return token.Session{}, domain.ErrUnauthenticated
	}

	revoked, err := s.revoked.IsRevoked(ctx, session.JTI)
	if err != nil {
		span.RecordError(err)
		return token.Session{}, errors.Wrap(err, "failed to check revocation")
	}
	if revoked {
		return token.Session{}, domain.ErrUnauthenticated
	}

	return session, nil
}

// Me re-reads the caller's profile from the store. This is the
// explicit refresh: session consumers never hold an ambient mutable
// user object.
func (s *AuthService) Me(ctx context.Context, tokenString string) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Me")
	defer span.End()

	session, err := s.Validate(ctx, tokenString)
	if err != nil {
		return domain.User{}, err
	}

	return s.users.Get(ctx, session.UserID)
}

func (s *AuthService) begin(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[identity]; busy {
		return false
	}
	s.inflight[identity] = struct{}{}
	return true
}

func (s *AuthService) finish(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, identity)
}

func (s *AuthService) notify(ctx context.Context, userID, eventType string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Publish(ctx, userID, domain.Event{
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to publish session event",
			"event", eventType,
			"error", err.Error())
	}
}

func validateSignUp(input SignUpInput) error {
	switch {
	case strings.TrimSpace(input.Username) == "":
		return domain.ValidationError{Field: "username", Reason: "required"}
	case input.Password == "":
		return domain.ValidationError{Field: "password", Reason: "required"}
	case strings.TrimSpace(input.Email) == "":
		return domain.ValidationError{Field: "email", Reason: "required"}
	case !input.Role.Valid():
		return domain.ValidationError{Field: "role", Reason: "must be job_seeker or employer"}
	case input.Role == domain.RoleEmployer && strings.TrimSpace(input.CompanyName) == "":
		return domain.ValidationError{Field: "companyName", Reason: "required for employers"}
	}
	return nil
}
