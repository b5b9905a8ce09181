package roles

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the business logic interface for roles and permissions
type Service interface {
	RolesForUser(ctx context.Context, userID uuid.UUID) ([]Role, error)
	PermissionNamesForUser(ctx context.Context, userID uuid.UUID) ([]string, error)
	HasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error)
	ListRoles(ctx context.Context) ([]Role, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	AssignRole(ctx context.Context, userID, roleID uuid.UUID) error
	RevokeRole(ctx context.Context, userID, roleID uuid.UUID) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new roles service instance
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) RolesForUser(ctx context.Context, userID uuid.UUID) ([]Role, error) {
	return s.repo.GetRolesForUser(ctx, userID)
}

func (s *service) PermissionNamesForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	permissions, err := s.repo.GetPermissionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(permissions))
	for _, p := range permissions {
		names = append(names, p.Name)
	}
	return names, nil
}

func (s *service) HasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error) {
	names, err := s.PermissionNamesForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == permission {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

func (s *service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

func (s *service) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	if err := s.repo.AssignRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.logger.Info("role assigned",
		zap.String("user_id", userID.String()),
		zap.String("role_id", roleID.String()))
	return nil
}

func (s *service) RevokeRole(ctx context.Context, userID, roleID uuid.UUID) error {
	return s.repo.RevokeRole(ctx, userID, roleID)
}
