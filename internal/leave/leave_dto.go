package leave

type CreateLeaveRequest struct {
	LeaveType   string   `json:"leave_type" binding:"required,oneof=ANNUAL SICK UNPAID"`
	LeaveFormat string   `json:"leave_format" binding:"required,oneof=FULL_DAY HALF_DAY_AM HALF_DAY_PM"`
	StartDate   string   `json:"start_date" binding:"required"`
	EndDate     string   `json:"end_date" binding:"required"`
	Reason      string   `json:"reason"`
	Attachments []string `json:"attachments"`
}

type UpdateLeaveRequest struct {
	LeaveType   string   `json:"leave_type" binding:"required,oneof=ANNUAL SICK UNPAID"`
	LeaveFormat string   `json:"leave_format" binding:"required,oneof=FULL_DAY HALF_DAY_AM HALF_DAY_PM"`
	StartDate   string   `json:"start_date" binding:"required"`
	EndDate     string   `json:"end_date" binding:"required"`
	Reason      string   `json:"reason"`
	Attachments []string `json:"attachments"`
}

type DecisionRequest struct {
	Comment string `json:"comment"`
}

type CancelLeaveRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type LeaveResponse struct {
	ID          string   `json:"id"`
	RequesterID string   `json:"requester_id"`
	LeaveType   string   `json:"leave_type"`
	LeaveFormat string   `json:"leave_format"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	TotalDays   string   `json:"total_days"`
	Reason      string   `json:"reason"`
	Attachments []string `json:"attachments,omitempty"`

	Status       string `json:"status"`
	CancelStatus string `json:"cancel_status"`
	IsCancelled  bool   `json:"is_cancelled"`

	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	ApprovalComment *string `json:"approval_comment,omitempty"`

	CancelRequestedBy *string `json:"cancel_requested_by,omitempty"`
	CancelRequestedAt *string `json:"cancel_requested_at,omitempty"`
	CancelReason      *string `json:"cancel_reason,omitempty"`

	CancelRespondedBy     *string `json:"cancel_responded_by,omitempty"`
	CancelRespondedAt     *string `json:"cancel_responded_at,omitempty"`
	CancelResponseComment *string `json:"cancel_response_comment,omitempty"`
}
