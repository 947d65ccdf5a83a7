package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/agency/backoffice/internal/domain/identity"
	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/agency/backoffice/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService manages back-office accounts
type UserService struct {
	userRepo  identity.UserRepository
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewUserService creates a UserService
func NewUserService(userRepo identity.UserRepository, jwt *auth.JWTService, blacklist auth.TokenBlacklist, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, jwt: jwt, blacklist: blacklist, logger: logger}
}

// CreateUser adds an account. Usernames are unique per tenant.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, input.TenantID, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("USERNAME_TAKEN", "Username is already in use")
	}

	user, err := identity.NewUser(input.TenantID, input.Username, input.Password, identity.Role(input.Role))
	if err != nil {
		return nil, err
	}
	if input.Email != "" {
		user.SetEmail(input.Email)
	}
	if name := strings.TrimSpace(input.DisplayName); name != "" {
		user.DisplayName = name
	}
	if actor, ok := shared.ActorFromContext(ctx); ok {
		user.SetCreatedBy(actor)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()),
		zap.String("role", string(user.Role)))

	info := toUserInfo(user)
	return &info, nil
}

// Deactivate disables sign-in and revokes every token issued so far
func (s *UserService) Deactivate(ctx context.Context, tenantID, userID uuid.UUID) error {
	user, err := s.find(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	user.Deactivate()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	if err := s.blacklist.RevokeUser(ctx, userID.String(), s.jwt.RefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to revoke tokens of deactivated user", zap.String("user_id", userID.String()), zap.Error(err))
		return err
	}
	s.logger.Info("User deactivated", zap.String("user_id", userID.String()))
	return nil
}

func (s *UserService) find(ctx context.Context, tenantID, userID uuid.UUID) (*identity.User, error) {
	return findUser(ctx, s.userRepo, tenantID, userID)
}

// findUser hides users of other tenants behind the same not-found error
func findUser(ctx context.Context, repo identity.UserRepository, tenantID, userID uuid.UUID) (*identity.User, error) {
	user, err := repo.FindByID(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) || (err == nil && user.TenantID != tenantID) {
		return nil, errUserNotFound
	}
	return user, err
}
