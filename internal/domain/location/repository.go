package location

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the data access methods for locations
type Repository interface {
	Create(ctx context.Context, location *Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*Location, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Location, error)
	Update(ctx context.Context, location *Location) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string, page, pageSize int) ([]Location, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new location repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, location *Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	var location Location
	if err := r.db.WithContext(ctx).First(&location, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Location, error) {
	var locations []Location
	if len(ids) == 0 {
		return locations, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&locations).Error
	return locations, err
}

func (r *repository) Update(ctx context.Context, location *Location) error {
	return r.db.WithContext(ctx).Save(location).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Location{}, id).Error
}

func (r *repository) List(ctx context.Context, search string, page, pageSize int) ([]Location, int64, error) {
	var locations []Location
	var total int64

	query := r.db.WithContext(ctx).Model(&Location{})
	if search != "" {
		query = query.Where("name ILIKE ? OR address ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	err := query.Order("name").Find(&locations).Error
	return locations, total, err
}
