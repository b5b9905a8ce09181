package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const membershipCacheTTL = 5 * time.Minute

// Service defines the business logic interface for the user/department directory
type Service interface {
	// User operations
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	FindUser(ctx context.Context, id uuid.UUID) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, search string, page, pageSize int) ([]User, int64, error)

	// Department operations
	CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*Department, error)
	FindDepartment(ctx context.Context, id uuid.UUID) (*Department, error)
	UpdateDepartment(ctx context.Context, id uuid.UUID, req UpdateDepartmentRequest) (*Department, error)
	DeleteDepartment(ctx context.Context, id uuid.UUID) error
	ListDepartments(ctx context.Context) ([]Department, error)
	UsersInDepartment(ctx context.Context, id uuid.UUID) ([]User, error)
	DepartmentsExist(ctx context.Context, ids []uuid.UUID) (bool, error)
}

type service struct {
	repo   Repository
	redis  *cache.RedisClient
	logger *zap.Logger
}

// NewService creates a new directory service instance. The redis client is
// optional; without it membership lookups go straight to the database.
func NewService(repo Repository, redis *cache.RedisClient, logger *zap.Logger) Service {
	return &service{repo: repo, redis: redis, logger: logger}
}

func (s *service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if req.DepartmentID != nil {
		if _, err := s.repo.GetDepartmentByID(ctx, *req.DepartmentID); err != nil {
			return nil, fmt.Errorf("department lookup failed: %w", err)
		}
	}

	user := &User{
		Email:        req.Email,
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: string(hash),
		Status:       UserStatusActive,
		DepartmentID: req.DepartmentID,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.invalidateMembership(ctx, req.DepartmentID)
	s.logger.Info("user created", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *service) FindUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *service) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

func (s *service) UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	return s.repo.GetUsersByIDs(ctx, ids)
}

func (s *service) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldDepartment := user.DepartmentID

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.DepartmentID != nil {
		if _, err := s.repo.GetDepartmentByID(ctx, *req.DepartmentID); err != nil {
			return nil, fmt.Errorf("department lookup failed: %w", err)
		}
		user.DepartmentID = req.DepartmentID
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	s.invalidateMembership(ctx, oldDepartment)
	s.invalidateMembership(ctx, user.DepartmentID)
	return user, nil
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.invalidateMembership(ctx, user.DepartmentID)
	return nil
}

func (s *service) ListUsers(ctx context.Context, search string, page, pageSize int) ([]User, int64, error) {
	return s.repo.ListUsers(ctx, search, page, pageSize)
}

func (s *service) CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*Department, error) {
	department := &Department{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.CreateDepartment(ctx, department); err != nil {
		return nil, err
	}
	s.logger.Info("department created", zap.String("department_id", department.ID.String()))
	return department, nil
}

func (s *service) FindDepartment(ctx context.Context, id uuid.UUID) (*Department, error) {
	return s.repo.GetDepartmentByID(ctx, id)
}

func (s *service) UpdateDepartment(ctx context.Context, id uuid.UUID, req UpdateDepartmentRequest) (*Department, error) {
	department, err := s.repo.GetDepartmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		department.Name = *req.Name
	}
	if req.Description != nil {
		department.Description = *req.Description
	}
	if err := s.repo.UpdateDepartment(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

func (s *service) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteDepartment(ctx, id); err != nil {
		return err
	}
	s.invalidateMembership(ctx, &id)
	return nil
}

func (s *service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.repo.ListDepartments(ctx)
}

// UsersInDepartment returns the active members of a department, serving from
// the Redis cache when possible.
func (s *service) UsersInDepartment(ctx context.Context, id uuid.UUID) ([]User, error) {
	key := membershipKey(id)

	if s.redis != nil {
		var cached []User
		if err := s.redis.GetJSON(ctx, key, &cached); err == nil {
			return cached, nil
		} else if err != cache.ErrCacheNotFound {
			s.logger.Warn("membership cache read failed", zap.Error(err))
		}
	}

	users, err := s.repo.ListUsersByDepartment(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.SetJSON(ctx, key, users, membershipCacheTTL); err != nil {
			s.logger.Warn("membership cache write failed", zap.Error(err))
		}
	}
	return users, nil
}

// DepartmentsExist reports whether every id resolves to a stored department.
func (s *service) DepartmentsExist(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	found, err := s.repo.GetDepartmentsByIDs(ctx, ids)
	if err != nil {
		return false, err
	}
	return len(found) == len(seen), nil
}

func (s *service) invalidateMembership(ctx context.Context, departmentID *uuid.UUID) {
	if s.redis == nil || departmentID == nil {
		return
	}
	if err := s.redis.Delete(ctx, membershipKey(*departmentID)); err != nil {
		s.logger.Warn("membership cache invalidation failed", zap.Error(err))
	}
}

func membershipKey(id uuid.UUID) string {
	return "department:members:" + id.String()
}
