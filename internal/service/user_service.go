package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vbonduro/lostfound/internal/auth"
	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/university"
)

// userRepository is the subset of store.UserRepository that UserService requires.
type userRepository interface {
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	ListPendingUsers(ctx context.Context) ([]*domain.User, error)
	VerifyUser(ctx context.Context, id string) error
}

type UserService struct {
	repo             userRepository
	verifier         university.Verifier
	notifier         notifier
	autoVerifyDomain string
	logger           *slog.Logger
}

// NewUserService builds a UserService. Students registering with an e-mail
// address at autoVerifyDomain are verified immediately; an empty domain
// disables that.
func NewUserService(repo userRepository, verifier university.Verifier, notifier notifier, autoVerifyDomain string, logger *slog.Logger) *UserService {
	return &UserService{
		repo:             repo,
		verifier:         verifier,
		notifier:         notifier,
		autoVerifyDomain: strings.ToLower(strings.TrimPrefix(strings.TrimSpace(autoVerifyDomain), "@")),
		logger:           logger,
	}
}

// Register creates a student account after checking the university id.
func (s *UserService) Register(ctx context.Context, n domain.NewUser) (*domain.User, error) {
	n = n.Normalize()
	if err := n.Validate(); err != nil {
		return nil, err
	}

	ok, err := s.verifier.Verify(ctx, n.UniversityID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify university id: %w", err)
	}
	if !ok {
		return nil, &domain.ValidationError{Field: "university_id", Message: "is not an active university id"}
	}

	verified := s.autoVerifyDomain != "" && strings.HasSuffix(n.Email, "@"+s.autoVerifyDomain)
	user, err := s.create(ctx, n, domain.RoleStudent, verified)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "verified", user.Verified)
	return user, nil
}

// Provision creates an already verified account with the given role. It skips
// the university check and is meant for administrators and seed data.
func (s *UserService) Provision(ctx context.Context, n domain.NewUser, role domain.Role) (*domain.User, error) {
	n = n.Normalize()
	if err := n.Validate(); err != nil {
		return nil, err
	}
	user, err := s.create(ctx, n, role, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user provisioned", "user_id", user.ID, "role", role)
	return user, nil
}

func (s *UserService) create(ctx context.Context, n domain.NewUser, role domain.Role, verified bool) (*domain.User, error) {
	hash, err := auth.HashPassword(n.Password)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.CreateUser(ctx, &domain.User{
		Name:         n.Name,
		Email:        n.Email,
		UniversityID: n.UniversityID,
		PasswordHash: hash,
		Role:         role,
		Verified:     verified,
	})
	if err != nil {
		return nil, repoErr("create user", err)
	}
	return user, nil
}

// Authenticate checks credentials. Unknown e-mails and wrong passwords both
// yield ErrUnauthorized; unverified accounts yield ErrForbidden.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, repoErr("get user", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrMismatch) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !user.Verified {
		return nil, fmt.Errorf("account pending verification: %w", domain.ErrForbidden)
	}
	return user, nil
}

// Verify marks a user verified and notifies them.
func (s *UserService) Verify(ctx context.Context, id string) (*domain.User, error) {
	if err := s.repo.VerifyUser(ctx, id); err != nil {
		return nil, repoErr("verify user", err)
	}
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, repoErr("get user", err)
	}
	s.logger.Info("user verified", "user_id", id)
	s.notifier.AccountVerified(ctx, user)
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, repoErr("get user", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, repoErr("list users", err)
	}
	return users, nil
}

func (s *UserService) ListPending(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.ListPendingUsers(ctx)
	if err != nil {
		return nil, repoErr("list pending users", err)
	}
	return users, nil
}
