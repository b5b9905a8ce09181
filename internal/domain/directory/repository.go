package directory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the data access methods for users and departments
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, search string, page, pageSize int) ([]User, int64, error)
	ListUsersByDepartment(ctx context.Context, departmentID uuid.UUID) ([]User, error)

	// Department operations
	CreateDepartment(ctx context.Context, department *Department) error
	GetDepartmentByID(ctx context.Context, id uuid.UUID) (*Department, error)
	GetDepartmentsByIDs(ctx context.Context, ids []uuid.UUID) ([]Department, error)
	UpdateDepartment(ctx context.Context, department *Department) error
	DeleteDepartment(ctx context.Context, id uuid.UUID) error
	ListDepartments(ctx context.Context) ([]Department, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new directory repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateUser(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).
		Preload("Department").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	var users []User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *repository) UpdateUser(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&User{}, id).Error
}

func (r *repository) ListUsers(ctx context.Context, search string, page, pageSize int) ([]User, int64, error) {
	var users []User
	var total int64

	query := r.db.WithContext(ctx).Model(&User{})
	if search != "" {
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	err := query.Preload("Department").Order("full_name").Find(&users).Error
	return users, total, err
}

func (r *repository) ListUsersByDepartment(ctx context.Context, departmentID uuid.UUID) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Where("department_id = ? AND status = ?", departmentID, UserStatusActive).
		Find(&users).Error
	return users, err
}

func (r *repository) CreateDepartment(ctx context.Context, department *Department) error {
	return r.db.WithContext(ctx).Create(department).Error
}

func (r *repository) GetDepartmentByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	var department Department
	if err := r.db.WithContext(ctx).First(&department, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *repository) GetDepartmentsByIDs(ctx context.Context, ids []uuid.UUID) ([]Department, error) {
	var departments []Department
	if len(ids) == 0 {
		return departments, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&departments).Error
	return departments, err
}

func (r *repository) UpdateDepartment(ctx context.Context, department *Department) error {
	return r.db.WithContext(ctx).Save(department).Error
}

func (r *repository) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Department{}, id).Error
}

func (r *repository) ListDepartments(ctx context.Context) ([]Department, error) {
	var departments []Department
	err := r.db.WithContext(ctx).Order("name").Find(&departments).Error
	return departments, err
}
