package leavebalance

import "github.com/shopspring/decimal"

type BalanceResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	LeaveType     string          `json:"leave_type"`
	Year          int             `json:"year"`
	TotalDays     decimal.Decimal `json:"total_days"`
	UsedDays      decimal.Decimal `json:"used_days"`
	RemainingDays decimal.Decimal `json:"remaining_days"`
}
