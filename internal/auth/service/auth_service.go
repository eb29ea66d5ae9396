package service

import (
	"context"
	"errors"

	"github.com/vector-portal/backend/internal/auth/domain"
	authrepo "github.com/vector-portal/backend/internal/auth/repository"
	"github.com/vector-portal/backend/internal/common/clock"
	commoncrypto "github.com/vector-portal/backend/internal/common/crypto"
	commonerrors "github.com/vector-portal/backend/internal/common/errors"
	"github.com/vector-portal/backend/internal/common/logger"
)

type AuthService struct {
	repo        authrepo.UserRepository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

func NewAuthService(
	repo authrepo.UserRepository,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		hasher:      hasher,
		idGenerator: idGenerator,
		clock:       clk,
		log:         log,
	}
}

type RegisterInput struct {
	Username string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

// Register creates a user after the password policy passes. Both a pre-check
// hit and an insert-time uniqueness violation surface as ErrUsernameTaken:
// the store's constraint, not the pre-check, is authoritative under
// concurrent registrations. Registration never establishes a session.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.UserID, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	_, err := s.repo.FindByUsername(ctx, input.Username)
	if err == nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_username_exists",
		}).Warn("register failed: username already exists")
		incrementRegistrationsFailed("username_taken")
		return "", ErrUsernameTaken
	}
	if !errors.Is(err, authrepo.ErrUserNotFound) {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_precheck_failed",
		}).Errorf("register failed: %v", err)
		return "", commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := validatePassword(input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		incrementRegistrationsFailed("validation")
		return "", err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return "", commonerrors.ErrInternalError.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_id_generation_failed",
		}).Errorf("register failed: id generation error: %v", err)
		return "", commonerrors.ErrInternalError.WithCause(err)
	}

	user := domain.User{
		ID:           domain.UserID(id),
		Username:     input.Username,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, authrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: uniqueness constraint violated")
			incrementRegistrationsFailed("username_taken")
			return "", ErrUsernameTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return "", commonerrors.ErrDatabaseError.WithCause(err)
	}

	incrementRegistrations()
	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")

	return user.ID, nil
}

// Login verifies credentials and returns the user on success. A missing user
// and a wrong password yield the same ErrInvalidCredentials so the response
// does not reveal which usernames exist.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (domain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, authrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			incrementLoginsFailed()
			return domain.User{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		return domain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		incrementLoginsFailed()
		return domain.User{}, ErrInvalidCredentials
	}

	incrementLogins()
	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "login_success",
	}).Info("login success")

	return user, nil
}

// ResolveSubject resolves a session's subject reference back to the stored
// user. Callers treat ErrUserNotFound as an orphaned session.
func (s *AuthService) ResolveSubject(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, domain.UserID(userID))
	if err != nil {
		if errors.Is(err, authrepo.ErrUserNotFound) {
			return domain.User{}, err
		}
		return domain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return user, nil
}
