package location

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the business logic interface for locations
type Service interface {
	Create(ctx context.Context, req CreateLocationRequest) (*Location, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Location, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateLocationRequest) (*Location, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string, page, pageSize int) ([]Location, int64, error)
	ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new location service instance
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) Create(ctx context.Context, req CreateLocationRequest) (*Location, error) {
	location := &Location{
		Name:        req.Name,
		Address:     req.Address,
		Capacity:    req.Capacity,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, location); err != nil {
		return nil, err
	}
	s.logger.Info("location created", zap.String("location_id", location.ID.String()))
	return location, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateLocationRequest) (*Location, error) {
	location, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.Address != nil {
		location.Address = *req.Address
	}
	if req.Capacity != nil {
		location.Capacity = *req.Capacity
	}
	if req.Description != nil {
		location.Description = *req.Description
	}
	if err := s.repo.Update(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) List(ctx context.Context, search string, page, pageSize int) ([]Location, int64, error) {
	return s.repo.List(ctx, search, page, pageSize)
}

// ExistAll reports whether every id resolves to a stored location.
func (s *service) ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	found, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return false, err
	}
	return len(found) == len(dedupe(ids)), nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
