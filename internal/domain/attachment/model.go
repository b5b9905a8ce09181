package attachment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment represents metadata of an uploaded file linked to events
type Attachment struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	FileName   string         `json:"file_name" gorm:"type:varchar(255);not null"`
	FilePath   string         `json:"file_path" gorm:"type:varchar(512);not null"`
	MimeType   string         `json:"mime_type" gorm:"type:varchar(100)"`
	SizeBytes  int64          `json:"size_bytes" gorm:"not null;default:0"`
	UploaderID uuid.UUID      `json:"uploader_id" gorm:"type:uuid;not null;index:idx_attachment_uploader"`
	CreatedAt  time.Time      `json:"created_at" gorm:"not null;default:current_timestamp"`
	UpdatedAt  time.Time      `json:"updated_at" gorm:"not null;default:current_timestamp"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (Attachment) TableName() string { return "attachments" }

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type CreateAttachmentRequest struct {
	FileName  string `json:"file_name" binding:"required"`
	FilePath  string `json:"file_path" binding:"required"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}
