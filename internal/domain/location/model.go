package location

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Location represents a venue events can be held at
type Location struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_location_name,where:deleted_at is null"`
	Address     string         `json:"address" gorm:"type:varchar(255)"`
	Capacity    int            `json:"capacity" gorm:"not null;default:0"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null;default:current_timestamp"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"not null;default:current_timestamp"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (Location) TableName() string { return "locations" }

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type CreateLocationRequest struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description"`
}

type UpdateLocationRequest struct {
	Name        *string `json:"name,omitempty"`
	Address     *string `json:"address,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	Description *string `json:"description,omitempty"`
}
