package overtime

type CreateOvertimeRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Reason    string `json:"reason"`
}

type UpdateOvertimeRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Reason    string `json:"reason"`
}

type DecisionRequest struct {
	Comment string `json:"comment"`
}

type CancelOvertimeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type OvertimeResponse struct {
	ID          string `json:"id"`
	RequesterID string `json:"requester_id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	TotalHours  string `json:"total_hours"`
	Reason      string `json:"reason"`

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
