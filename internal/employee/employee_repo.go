package employee

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, e *EmployeeProfile) error
	FindAll(ctx context.Context) ([]EmployeeProfile, error)
	FindOptions(ctx context.Context) ([]EmployeeProfile, error)
	FindByID(ctx context.Context, id string) (*EmployeeProfile, error)
	FindByUser(ctx context.Context, userID string) (*EmployeeProfile, error)
	Update(ctx context.Context, e *EmployeeProfile) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, e *EmployeeProfile) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindAll(ctx context.Context) ([]EmployeeProfile, error) {
	var emps []EmployeeProfile
	err := r.db.WithContext(ctx).
		Order("employee_code ASC").
		Find(&emps).Error
	return emps, err
}

// FindOptions fetches only the columns pickers need.
func (r *repository) FindOptions(ctx context.Context) ([]EmployeeProfile, error) {
	var emps []EmployeeProfile
	err := r.db.WithContext(ctx).
		Select("id", "employee_code", "first_name", "last_name").
		Order("first_name ASC").
		Find(&emps).Error
	return emps, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*EmployeeProfile, error) {
	var e EmployeeProfile
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&e).Error
	return &e, err
}

func (r *repository) FindByUser(ctx context.Context, userID string) (*EmployeeProfile, error) {
	var e EmployeeProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&e).Error
	return &e, err
}

func (r *repository) Update(ctx context.Context, e *EmployeeProfile) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&EmployeeProfile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
