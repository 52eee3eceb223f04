package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request lifecycle. pending is the only state that accepts a
// transition; approved, rejected and cancelled are final.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

func IsTerminalStatus(status string) bool {
	switch status {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

type LeaveRequest struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LeaveType  string          `gorm:"type:varchar(20);not null"`
	StartDate  time.Time       `gorm:"type:date;not null"`
	EndDate    time.Time       `gorm:"type:date;not null"`
	TotalDays  decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	Reason     string          `gorm:"type:text"`
	Status     string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	ApproverID *uuid.UUID      `gorm:"type:uuid"`
	ApprovedAt *time.Time
	Comments   *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// EmployeeRef is the slice of the employee profile the leave flow
// needs: ownership resolution and display fields for listings.
type EmployeeRef struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	EmployeeCode string
	FullName     string
}
