package cancellation

type RequestCancellationRequest struct {
	Reason            string `json:"reason"`
	ReasonDescription string `json:"reason_description"`
}

type ApproveCancellationRequest struct {
	RefundAmount *int64 `json:"refund_amount"`
	AdminNotes   string `json:"admin_notes"`
}

type RejectCancellationRequest struct {
	AdminNotes string `json:"admin_notes" binding:"required"`
}
