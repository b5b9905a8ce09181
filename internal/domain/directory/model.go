package directory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User represents a member of the organization
type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	Email        string         `json:"email" gorm:"uniqueIndex:idx_user_email,where:deleted_at is null;not null"`
	FullName     string         `json:"full_name" gorm:"type:varchar(255);not null"`
	PhoneNumber  string         `json:"phone_number" gorm:"type:varchar(20)"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Status       UserStatus     `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	DepartmentID *uuid.UUID     `json:"department_id,omitempty" gorm:"type:uuid;index:idx_user_department"`
	CreatedAt    time.Time      `json:"created_at" gorm:"not null;default:current_timestamp"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"not null;default:current_timestamp"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	Department *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

// Department represents an organizational unit users belong to
type Department struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_department_name,where:deleted_at is null"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null;default:current_timestamp"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"not null;default:current_timestamp"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (User) TableName() string       { return "users" }
func (Department) TableName() string { return "departments" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Request DTOs
type CreateUserRequest struct {
	Email        string     `json:"email" binding:"required,email"`
	FullName     string     `json:"full_name" binding:"required"`
	Password     string     `json:"password" binding:"required,min=8"`
	PhoneNumber  string     `json:"phone_number"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
}

type UpdateUserRequest struct {
	Email        *string    `json:"email,omitempty"`
	FullName     *string    `json:"full_name,omitempty"`
	Password     *string    `json:"password,omitempty"`
	PhoneNumber  *string    `json:"phone_number,omitempty"`
	Status       *UserStatus `json:"status,omitempty"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
}

type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateDepartmentRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}
