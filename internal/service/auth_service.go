package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pizza_service/internal/model"
	"pizza_service/internal/repository"
	"pizza_service/internal/utils"

	"go.uber.org/zap"
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*model.User, error)
	UpdateUser(ctx context.Context, caller *model.User, userID int, req model.UpdateUserRequest) (*model.User, error)
	EnsureAdmin(ctx context.Context, cfg model.RegisterRequest) error
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	jwtUtil     *utils.JWTUtil
	log         *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, jwtUtil *utils.JWTUtil, log *zap.Logger) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtUtil:     jwtUtil,
		log:         log.Named("auth"),
	}
}

// Register creates a diner account and signs it in.
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, "", newError(ErrInvalidInput, "name, email, and password are required")
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Roles:        []model.RoleAssignment{{Role: model.RoleDiner}},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", newError(ErrConflict, "email already registered")
		}
		return nil, "", fmt.Errorf("failed to create user in repository: %w", err)
	}

	token, err := s.issue(ctx, user)
	if err != nil {
		s.log.Error("user created but token issue failed", zap.Int("user_id", user.ID), zap.Error(err))
		return user, "", err
	}
	return user, token, nil
}

// Login never tells the caller whether the email exists.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", newError(ErrNotFound, "unknown user")
	}

	token, err := s.issue(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) issue(ctx context.Context, user *model.User) (string, error) {
	token, err := s.jwtUtil.GenerateToken(user)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.sessionRepo.Create(ctx, utils.TokenSignature(token), user.ID); err != nil {
		return "", fmt.Errorf("failed to record session: %w", err)
	}
	return token, nil
}

// Logout revokes the session behind token. Revoking twice is fine.
func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.sessionRepo.Delete(ctx, utils.TokenSignature(token)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Authenticate accepts a token only while its session row exists. Roles come from the
// token as issued; a role change takes effect at the next login.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	sig := utils.TokenSignature(token)
	if sig == "" {
		return nil, newError(ErrUnauthenticated, "unauthorized")
	}
	ok, err := s.sessionRepo.Exists(ctx, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !ok {
		return nil, newError(ErrUnauthenticated, "unauthorized")
	}

	claims, err := s.jwtUtil.ValidateToken(token)
	if err != nil {
		s.log.Debug("session token failed verification", zap.Error(err))
		return nil, newError(ErrUnauthenticated, "unauthorized")
	}
	return claims.User(), nil
}

// UpdateUser lets users change their own credentials; admins may change anyone's.
func (s *authService) UpdateUser(ctx context.Context, caller *model.User, userID int, req model.UpdateUserRequest) (*model.User, error) {
	if caller == nil {
		return nil, newError(ErrUnauthenticated, "unauthorized")
	}
	if caller.ID != userID && !caller.HasRole(model.RoleAdmin) {
		return nil, newError(ErrUnauthorized, "unauthorized")
	}

	var hash string
	if req.Password != "" {
		var err error
		if hash, err = utils.HashPassword(req.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	if err := s.userRepo.Update(ctx, userID, req.Email, hash); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, newError(ErrConflict, "email already registered")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	if user == nil {
		return nil, newError(ErrNotFound, "unknown user")
	}
	return user, nil
}

// EnsureAdmin seeds an admin account when the store has none.
func (s *authService) EnsureAdmin(ctx context.Context, admin model.RegisterRequest) error {
	n, err := s.userRepo.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := utils.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user := &model.User{
		Name:         admin.Name,
		Email:        admin.Email,
		PasswordHash: hash,
		Roles:        []model.RoleAssignment{{Role: model.RoleAdmin}},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	s.log.Info("seeded default admin", zap.String("email", admin.Email), zap.Int("user_id", user.ID))
	return nil
}
