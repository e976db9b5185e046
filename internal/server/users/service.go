package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

const (
	OpRegister     = "register"
	OpLogin        = "login"
	OpFindAll      = "find_all"
	OpFindUserByID = "find_user_by_id"
	OpRenewToken   = "renew_token"
	OpAuthenticate = "authenticate"
)

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// Metrics observes the outcome of every Service operation.
type Metrics interface {
	RecordOperation(operation string, kind Kind)
}

// Session is what a successful Register, Login or RenewToken returns.
type Session struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Roles    []string
}

type Option func(*Service)

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

type Service struct {
	repo      Repository
	hasher    auth.PasswordHasher
	tokens    TokenIssuer
	logger    logging.Logger
	metrics   Metrics
	now       func() time.Time
	newID     func() string
	dummyHash string
}

func NewService(repo Repository, hasher auth.PasswordHasher, tokens TokenIssuer, logger logging.Logger, opts ...Option) (*Service, error) {
	if repo == nil || hasher == nil || tokens == nil {
		return nil, errors.New("users service: repository, hasher and token issuer are required")
	}
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Service{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With("module", "users_service"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Unknown emails are verified against this hash so that both login
	// failure paths pay for one hash comparison.
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("users service: prepare dummy hash: %w", err)
	}
	s.dummyHash = dummy

	return s, nil
}

func (s *Service) record(op string, err error) {
	if s.metrics != nil {
		s.metrics.RecordOperation(op, KindOf(err))
	}
}

func (s *Service) internal(ctx context.Context, msg string, err error) error {
	logging.LogError(ctx, s.logger, msg, err)
	return ErrInternal
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (_ *Session, err error) {
	defer func() { s.record(OpRegister, err) }()

	email := NormalizeEmail(in.Email)

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.internal(ctx, "hash password", err)
	}

	roles := in.Roles
	if len(roles) == 0 {
		roles = []string{DefaultRole}
	}

	user, err := s.repo.Insert(ctx, &models.User{
		ID:           s.newID(),
		Email:        email,
		PasswordHash: hash,
		Name:         in.Name,
		IsActive:     true,
		Roles:        roles,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			s.logger.Info(ctx, "registration rejected", "reason", "duplicate email", "email", email)
			return nil, fmt.Errorf("%s %w", email, ErrDuplicateEmail)
		}
		return nil, s.internal(ctx, "insert user", err)
	}

	session, err := s.newSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return session, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (_ *Session, err error) {
	defer func() { s.record(OpLogin, err) }()

	email = NormalizeEmail(email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			s.logger.Warn(ctx, "login failed", "reason", "email not found", "email", email)
			return nil, ErrInvalidCredentials
		}
		return nil, s.internal(ctx, "find user by email", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Warn(ctx, "login failed", "reason", "password mismatch", "email", email)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Warn(ctx, "login failed", "reason", "user inactive", "email", email)
		return nil, ErrInvalidCredentials
	}

	return s.newSession(ctx, user)
}

func (s *Service) FindAll(ctx context.Context) (_ []PublicUser, err error) {
	defer func() { s.record(OpFindAll, err) }()

	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list users", err)
	}
	return NewPublicUsers(list), nil
}

func (s *Service) FindUserByID(ctx context.Context, id string) (_ *PublicUser, err error) {
	defer func() { s.record(OpFindUserByID, err) }()

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.internal(ctx, "find user by id", err)
	}

	pu := NewPublicUser(user)
	return &pu, nil
}

// RenewToken issues a fresh token for id. An identity that no longer
// resolves to an active user is ErrUnauthorized.
func (s *Service) RenewToken(ctx context.Context, id string) (_ *Session, err error) {
	defer func() { s.record(OpRenewToken, err) }()

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn(ctx, "token renewal rejected", "reason", "user not found", "user_id", id)
			return nil, ErrUnauthorized
		}
		return nil, s.internal(ctx, "find user by id", err)
	}

	if !user.IsActive {
		s.logger.Warn(ctx, "token renewal rejected", "reason", "user inactive", "user_id", id)
		return nil, ErrUnauthorized
	}

	return s.newSession(ctx, user)
}

// Authenticate verifies token and returns its subject.
func (s *Service) Authenticate(ctx context.Context, token string) (_ string, err error) {
	defer func() { s.record(OpAuthenticate, err) }()

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "error", err)
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}

func (s *Service) newSession(ctx context.Context, user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, s.internal(ctx, "issue token", err)
	}
	return &Session{User: NewPublicUser(user), Token: token}, nil
}
