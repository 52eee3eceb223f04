package leave

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaveWithEmployee joins the display fields used by HR listings onto
// the request row.
type LeaveWithEmployee struct {
	LeaveRequest
	EmployeeCode string
	FullName     string
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	FindAllWithEmployee(ctx context.Context, status string) ([]LeaveWithEmployee, error)
	Update(ctx context.Context, l *LeaveRequest) error
	FindEmployeeByUser(ctx context.Context, userID string) (*EmployeeRef, error)
	FindEmployeeByID(ctx context.Context, employeeID string) (*EmployeeRef, error)
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&l).Error
	return &l, err
}

// FindByIDForUpdate locks the request row so a decision sees the
// status written by any concurrent decision, not a stale pending.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&l).Error
	return &l, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindAllWithEmployee(ctx context.Context, status string) ([]LeaveWithEmployee, error) {
	q := r.db.WithContext(ctx).
		Table("leave_requests AS lr").
		Select(`lr.*,
			ep.employee_code AS employee_code,
			CONCAT(ep.first_name, ' ', ep.last_name) AS full_name`).
		Joins("JOIN employee_profiles ep ON ep.id = lr.employee_id AND ep.deleted_at IS NULL").
		Order("lr.created_at DESC")
	if status != "" {
		q = q.Where("lr.status = ?", status)
	}

	var leaves []LeaveWithEmployee
	err := q.Scan(&leaves).Error
	return leaves, err
}

func (r *repository) Update(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *repository) FindEmployeeByUser(ctx context.Context, userID string) (*EmployeeRef, error) {
	var ref EmployeeRef
	err := r.db.WithContext(ctx).
		Table("employee_profiles").
		Select(`id, user_id, employee_code, CONCAT(first_name, ' ', last_name) AS full_name`).
		Where("user_id = ?", userID).
		Where("deleted_at IS NULL").
		First(&ref).Error
	return &ref, err
}

func (r *repository) FindEmployeeByID(ctx context.Context, employeeID string) (*EmployeeRef, error) {
	var ref EmployeeRef
	err := r.db.WithContext(ctx).
		Table("employee_profiles").
		Select(`id, user_id, employee_code, CONCAT(first_name, ' ', last_name) AS full_name`).
		Where("id = ?", employeeID).
		Where("deleted_at IS NULL").
		First(&ref).Error
	return &ref, err
}
