package cancellation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Reason string

const (
	ReasonUserRequest      Reason = "user_request"
	ReasonChangeOfPlans    Reason = "change_of_plans"
	ReasonFoundAlternative Reason = "found_alternative"
	ReasonEmergency        Reason = "emergency"
	ReasonWorkspaceIssue   Reason = "workspace_issue"
	ReasonAdmin            Reason = "admin_cancellation"
	ReasonOther            Reason = "other"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonUserRequest, ReasonChangeOfPlans, ReasonFoundAlternative,
		ReasonEmergency, ReasonWorkspaceIssue, ReasonAdmin, ReasonOther:
		return true
	}
	return false
}

type RefundStatus string

// Approval settles in the same transaction, so there is no intermediate
// approved state: a decided cancellation is either completed or rejected.
const (
	RefundPending   RefundStatus = "pending"
	RefundRejected  RefundStatus = "rejected"
	RefundCompleted RefundStatus = "completed"
)

// BookingCancellation records one cancellation decision per booking.
// Amounts computed before an admin decision are advisory; rejected
// cancellations refund nothing regardless of what was computed.
type BookingCancellation struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	BookingID   uuid.UUID `json:"booking_id" gorm:"type:uuid;not null;uniqueIndex"`
	CancelledBy uuid.UUID `json:"cancelled_by" gorm:"type:uuid;not null;index"`

	Reason            Reason `json:"reason" gorm:"type:varchar(50);not null;default:'user_request'"`
	ReasonDescription string `json:"reason_description" gorm:"type:text"`

	OriginalAmount int64 `json:"original_amount" gorm:"not null"`
	RefundPercent  int64 `json:"refund_percent" gorm:"not null"`
	RefundAmount   int64 `json:"refund_amount" gorm:"not null"`
	PenaltyAmount  int64 `json:"penalty_amount" gorm:"not null"`

	RefundStatus          RefundStatus `json:"refund_status" gorm:"type:varchar(20);not null;default:'pending';index;check:refund_status IN ('pending','rejected','completed')"`
	RequiresAdminApproval bool         `json:"requires_admin_approval" gorm:"not null;default:false"`
	RefundReference       string       `json:"refund_reference,omitempty" gorm:"type:varchar(100)"`

	HoursUntilCheckIn float64 `json:"hours_until_checkin" gorm:"not null"`

	DecidedBy  *uuid.UUID `json:"decided_by,omitempty" gorm:"type:uuid"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	AdminNotes string     `json:"admin_notes,omitempty" gorm:"type:text"`

	CancelledAt time.Time `json:"cancelled_at" gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (BookingCancellation) TableName() string {
	return "booking_cancellations"
}

func (bc *BookingCancellation) BeforeCreate(_ *gorm.DB) error {
	if bc.ID == uuid.Nil {
		bc.ID = uuid.New()
	}
	return nil
}
