package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/library-catalog/internal/core/domain"
	"github.com/99minutos/library-catalog/internal/core/ports"
	"github.com/99minutos/library-catalog/internal/core/validation"
	"github.com/99minutos/library-catalog/internal/metrics"
)

const sessionStore = "session"

// SessionService tracks the active identity and persists it across restarts.
type SessionService struct {
	directory ports.AccountDirectory
	verifier  ports.CredentialVerifier
	sessions  ports.SessionRepository
	notifier  ports.Notifier
	validate  *validation.Validator
	logger    zerolog.Logger
	cfg       settings

	mu      sync.Mutex
	current *domain.User
}

func NewSessionService(
	directory ports.AccountDirectory,
	verifier ports.CredentialVerifier,
	sessions ports.SessionRepository,
	notifier ports.Notifier,
	validate *validation.Validator,
	logger zerolog.Logger,
	opts ...Option,
) *SessionService {
	return &SessionService{
		directory: directory,
		verifier:  verifier,
		sessions:  sessions,
		notifier:  notifier,
		validate:  validate,
		logger:    logger,
		cfg:       applyOptions(opts),
	}
}

// Restore loads the persisted identity, if any. A malformed persisted copy is
// discarded and the session starts anonymous.
func (s *SessionService) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.sessions.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrMalformedPersistedState):
		s.logger.Warn().Err(err).Msg("discarding malformed persisted session")
		if err := s.sessions.Clear(ctx); err != nil {
			s.logger.Error().Err(err).Msg("failed to clear malformed session")
		}
		s.current = nil
		return nil
	case err != nil:
		return fmt.Errorf("restore session: %w", err)
	}

	s.current = user
	if user != nil {
		s.logger.Debug().Str("user_id", user.ID).Msg("session restored")
	}
	return nil
}

// Login authenticates email/password against the account directory and makes
// the matching identity active.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	start := time.Now()
	user, err := s.login(ctx, email, password)
	metrics.Observe(sessionStore, "login", start, err)
	if err != nil {
		s.logger.Info().Err(err).Str("email", email).Msg("login failed")
		s.notifier.Notify(ctx, failure("Login failed", err, "An unknown error occurred"))
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	s.notifier.Notify(ctx, info("Logged in successfully", fmt.Sprintf("Welcome back, %s!", user.Name)))
	return user, nil
}

func (s *SessionService) login(ctx context.Context, email, password string) (*domain.User, error) {
	if err := wait(ctx, s.cfg.mutationLatency); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if account == nil || !s.verifier.Verify(account.Secret, password) {
		return nil, domain.ErrInvalidCredentials
	}

	user := account.User
	if err := s.sessions.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s.current = &user
	return cloneUser(&user), nil
}

// Register creates a new user-role account, appends it to the directory and
// logs it in. The account is removed again when the session cannot be saved.
func (s *SessionService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	start := time.Now()
	user, err := s.register(ctx, input)
	metrics.Observe(sessionStore, "register", start, err)
	if err != nil {
		s.logger.Info().Err(err).Str("email", input.Email).Msg("registration failed")
		s.notifier.Notify(ctx, failure("Registration failed", err, "An unknown error occurred"))
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	s.notifier.Notify(ctx, info("Registration successful", fmt.Sprintf("Welcome, %s!", user.Name)))
	return user, nil
}

func (s *SessionService) register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}
	if err := wait(ctx, s.cfg.mutationLatency); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.directory.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyInUse
	}

	secret, err := s.verifier.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.cfg.now()
	user := domain.User{
		ID:        s.cfg.newID(),
		Email:     input.Email,
		Name:      input.Name,
		Role:      domain.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.directory.Create(ctx, domain.Account{User: user, Secret: secret}); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, user); err != nil {
		if rbErr := s.directory.Remove(ctx, user.Email); rbErr != nil {
			s.logger.Error().Err(rbErr).Str("email", user.Email).Msg("failed to roll back registered account")
		}
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s.current = &user
	return cloneUser(&user), nil
}

// Logout clears the active identity. Calling it while anonymous is a no-op.
func (s *SessionService) Logout(ctx context.Context) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	wasActive := s.current != nil
	if err := s.sessions.Clear(ctx); err != nil {
		metrics.Observe(sessionStore, "logout", start, err)
		return fmt.Errorf("clear session: %w", err)
	}
	s.current = nil
	metrics.Observe(sessionStore, "logout", start, nil)

	if wasActive {
		s.logger.Info().Msg("user logged out")
		s.notifier.Notify(ctx, info("Logged out", "You have been logged out successfully"))
	}
	return nil
}

// Current returns a copy of the active identity.
func (s *SessionService) Current() (*domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, false
	}
	return cloneUser(s.current), true
}

// CurrentIdentity implements ports.IdentitySource.
func (s *SessionService) CurrentIdentity() (*domain.User, bool) {
	return s.Current()
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
