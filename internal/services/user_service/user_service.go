package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raventech75/suivi-clients-sub000/internal/domain/models"
	"github.com/raventech75/suivi-clients-sub000/internal/domain/rules"
	"github.com/raventech75/suivi-clients-sub000/internal/lib/logger/sl"
	"github.com/raventech75/suivi-clients-sub000/internal/repository"
	"github.com/raventech75/suivi-clients-sub000/internal/storage"
	"github.com/raventech75/suivi-clients-sub000/internal/transport/http/dto"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExist          = errors.New("user already exist")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("registration is restricted to super admins")
	ErrRateLimited        = errors.New("too many login attempts")
)

// Троттлинг входа: после maxLoginAttempts неудач email блокируется
// до истечения окна.
const (
	maxLoginAttempts = 5
	loginLockWindow  = 15 * time.Minute
)

type TokenIssuer interface {
	GenerateTokens(ctx context.Context, user models.User) (*models.TokenPair, error)
}

type UserService struct {
	log         *slog.Logger
	repo        repository.UserRepository
	tokens      TokenIssuer
	superAdmins []string
	attempts    *gocache.Cache
}

func NewUserService(log *slog.Logger, repo repository.UserRepository, tokens TokenIssuer, superAdmins []string) *UserService {
	return &UserService{
		log:         log,
		repo:        repo,
		tokens:      tokens,
		superAdmins: superAdmins,
		attempts:    gocache.New(loginLockWindow, loginLockWindow),
	}
}

func (s *UserService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	const op = "user_service.Login"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	log.Info("attempting to login user")

	key := strings.ToLower(strings.TrimSpace(email))
	if n, ok := s.attempts.Get(key); ok && n.(int) >= maxLoginAttempts {
		log.Warn("login throttled")

		return nil, fmt.Errorf("%s: %w", op, ErrRateLimited)
	}

	user, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))
			s.recordFailure(key)

			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get user", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		s.recordFailure(key)

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.tokens.GenerateTokens(ctx, user)
	if err != nil {
		log.Error("failed to generate tokens", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.attempts.Delete(key)

	log.Info("user logged in successfully")

	return pair, nil
}

func (s *UserService) recordFailure(key string) {
	if err := s.attempts.Add(key, 1, gocache.DefaultExpiration); err != nil {
		_, _ = s.attempts.IncrementInt(key, 1)
	}
}

// RegisterNewUser заводит учетку сотрудника. Право есть только у
// супер-админов.
func (s *UserService) RegisterNewUser(ctx context.Context, actor models.Actor, input dto.UserRegisterInput) (uuid.UUID, error) {
	const op = "user_service.RegisterNewUser"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", input.Email),
	)

	if actor.IsAnonymous || !rules.IsSuperAdmin(actor.Email, s.superAdmins) {
		log.Warn("registration rejected", slog.String("actor", actor.Email))

		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	log.Info("register user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.SaveUser(ctx, *input.ToDomain(passHash))
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exist", sl.Err(err))

			return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}

		log.Error("failed to save user", sl.Err(err))

		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered")

	return id, nil
}
