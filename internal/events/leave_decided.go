package events

import "time"

const LeaveDecidedTopic = "hr.leave.decision.v1"

// LeaveDecidedEvent is written to the outbox in the same transaction
// as the status change, so subscribers only ever see committed
// decisions.
type LeaveDecidedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	LeaveID    string    `json:"leave_id"`
	EmployeeID string    `json:"employee_id"`
	LeaveType  string    `json:"leave_type"`
	TotalDays  string    `json:"total_days"`
	Status     string    `json:"status"`
	DecidedBy  string    `json:"decided_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
