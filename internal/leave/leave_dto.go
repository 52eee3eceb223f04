package leave

import "github.com/shopspring/decimal"

type SubmitLeaveRequest struct {
	LeaveType string           `json:"leave_type" binding:"required,oneof=paid sick unpaid"`
	StartDate string           `json:"start_date" binding:"required"`
	EndDate   string           `json:"end_date" binding:"required"`
	TotalDays *decimal.Decimal `json:"total_days,omitempty"`
	Reason    string           `json:"reason"`
}

type RejectLeaveRequest struct {
	Comments string `json:"comments"`
}

type LeaveResponse struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeCode string          `json:"employee_code,omitempty"`
	EmployeeName string          `json:"employee_name,omitempty"`
	LeaveType    string          `json:"leave_type"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	TotalDays    decimal.Decimal `json:"total_days"`
	Reason       string          `json:"reason"`
	Status       string          `json:"status"`
	ApproverID   *string         `json:"approver_id,omitempty"`
	ApprovedAt   *string         `json:"approved_at,omitempty"`
	Comments     *string         `json:"comments,omitempty"`
	CreatedAt    string          `json:"created_at"`
}
