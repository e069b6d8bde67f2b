package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nebari-dev/quill/internal/auth"
	"github.com/nebari-dev/quill/internal/models"
	"github.com/nebari-dev/quill/internal/policy"
	"github.com/nebari-dev/quill/internal/store"
)

// UserStore is the persistence the account operations need.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error)
}

// Invalidator drops cached identity data after a user changes.
type Invalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// AccountService contains the business logic for registration, login and
// role administration.
type AccountService struct {
	users              UserStore
	tokens             *auth.Tokens
	policy             *policy.Engine
	invalidator        Invalidator
	allowRoleSelection bool
}

// AccountOption configures an AccountService.
type AccountOption func(*AccountService)

// WithInvalidator registers a cache that must forget a user whose role changes.
func WithInvalidator(inv Invalidator) AccountOption {
	return func(s *AccountService) { s.invalidator = inv }
}

// WithRoleSelection lets registrants choose their own role.
func WithRoleSelection(allow bool) AccountOption {
	return func(s *AccountService) { s.allowRoleSelection = allow }
}

// WithPolicy overrides the grant table used for administrative checks.
func WithPolicy(engine *policy.Engine) AccountOption {
	return func(s *AccountService) { s.policy = engine }
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserStore, tokens *auth.Tokens, opts ...AccountOption) *AccountService {
	s := &AccountService{users: users, tokens: tokens, policy: policy.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates and creates an account and returns it with a session token.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*models.User, string, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, "", err
	}

	role := models.RoleViewer
	if req.Role != "" && s.allowRoleSelection {
		role = req.Role
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, "", &ConflictError{Message: "User already exists"}
		}
		return nil, "", fmt.Errorf("register user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("User registered", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

// Login checks credentials and returns the user with a session token. An
// unknown email and a wrong password are indistinguishable.
func (s *AccountService) Login(ctx context.Context, req LoginRequest) (*models.User, string, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, "", err
	}

	user, err := s.users.FindUserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		slog.Debug("Login rejected", "user_id", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ListUsers returns every account. Requires the user management grant.
func (s *AccountService) ListUsers(ctx context.Context, caller *policy.Identity) ([]models.User, error) {
	if !s.policy.CanManageUsers(caller) {
		return nil, deny(caller, "You do not have permission to manage users")
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// SetRole changes a user's role. The change is effective on the target's next
// request: any cached identity is dropped.
func (s *AccountService) SetRole(ctx context.Context, caller *policy.Identity, userID uuid.UUID, req SetRoleRequest) (*models.User, error) {
	if !s.policy.CanManageUsers(caller) {
		return nil, deny(caller, "You do not have permission to manage users")
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateUserRole(ctx, userID, req.Role)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("set role for %s: %w", userID, err)
	}

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, userID); err != nil {
			slog.Warn("Failed to invalidate cached identity", "user_id", userID, "error", err)
		}
	}

	slog.Info("User role changed", "user_id", userID, "role", req.Role, "changed_by", caller.ID)
	return user, nil
}
