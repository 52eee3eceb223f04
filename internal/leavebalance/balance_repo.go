package leavebalance

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, b *LeaveBalance) error
	FindByTriple(ctx context.Context, employeeID, leaveType string, year int) (*LeaveBalance, error)
	FindByTripleForUpdate(ctx context.Context, employeeID, leaveType string, year int) (*LeaveBalance, error)
	FindAllByEmployeeAndYear(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error)
	Update(ctx context.Context, b *LeaveBalance) error
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	FindEmployeeIDByUser(ctx context.Context, userID string) (string, error)
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

func (r *repository) Create(ctx context.Context, b *LeaveBalance) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) FindByTriple(ctx context.Context, employeeID, leaveType string, year int) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("leave_type = ?", leaveType).
		Where("year = ?", year).
		First(&b).Error
	return &b, err
}

// FindByTripleForUpdate takes a row-level exclusive lock. Callers must
// run inside a transaction; the lock is what serializes concurrent
// check-then-debit sequences on the same balance row.
func (r *repository) FindByTripleForUpdate(ctx context.Context, employeeID, leaveType string, year int) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ?", employeeID).
		Where("leave_type = ?", leaveType).
		Where("year = ?", year).
		First(&b).Error
	return &b, err
}

func (r *repository) FindAllByEmployeeAndYear(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("year = ?", year).
		Order("leave_type ASC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) Update(ctx context.Context, b *LeaveBalance) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *repository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("employee_profiles").
		Where("id = ?", employeeID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindEmployeeIDByUser(ctx context.Context, userID string) (string, error) {
	var employeeID string
	err := r.db.WithContext(ctx).
		Table("employee_profiles").
		Select("id").
		Where("user_id = ?", userID).
		Where("deleted_at IS NULL").
		Scan(&employeeID).Error
	return employeeID, err
}
