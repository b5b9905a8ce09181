package attachment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the data access methods for attachments
type Repository interface {
	Create(ctx context.Context, attachment *Attachment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Attachment, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUploader(ctx context.Context, uploaderID uuid.UUID) ([]Attachment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new attachment repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, attachment *Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Attachment, error) {
	var attachment Attachment
	if err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Attachment, error) {
	var attachments []Attachment
	if len(ids) == 0 {
		return attachments, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&attachments).Error
	return attachments, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Attachment{}, id).Error
}

func (r *repository) ListByUploader(ctx context.Context, uploaderID uuid.UUID) ([]Attachment, error) {
	var attachments []Attachment
	err := r.db.WithContext(ctx).
		Where("uploader_id = ?", uploaderID).
		Order("created_at DESC").
		Find(&attachments).Error
	return attachments, err
}
