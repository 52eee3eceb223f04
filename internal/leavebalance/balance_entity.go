package leavebalance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Leave types as they travel on the wire.
const (
	TypePaid   = "paid"
	TypeSick   = "sick"
	TypeUnpaid = "unpaid"
)

func IsValidType(s string) bool {
	switch s {
	case TypePaid, TypeSick, TypeUnpaid:
		return true
	default:
		return false
	}
}

// LeaveBalance is one ledger row. The (employee, leave_type, year)
// triple is unique and remaining_days is stored, not derived, so the
// check-and-debit can run against a single locked row. The invariant
// remaining_days == total_days - used_days holds after every mutation.
type LeaveBalance struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_triple"`
	LeaveType     string          `gorm:"type:varchar(20);not null;uniqueIndex:uq_leave_balances_triple"`
	Year          int             `gorm:"not null;uniqueIndex:uq_leave_balances_triple"`
	TotalDays     decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	UsedDays      decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`
	RemainingDays decimal.Decimal `gorm:"type:numeric(6,2);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

// DefaultAllotments is the onboarding policy for a new employee's
// joining year. Unpaid leave draws from no ledger, its row exists only
// so the triple lookup never misses.
func DefaultAllotments() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		TypePaid:   decimal.NewFromInt(24),
		TypeSick:   decimal.NewFromInt(10),
		TypeUnpaid: decimal.NewFromInt(0),
	}
}
