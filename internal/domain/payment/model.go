package payment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HoldingStatus string

const (
	HoldingHeld     HoldingStatus = "held"
	HoldingReleased HoldingStatus = "released"
	HoldingRefunded HoldingStatus = "refunded"
)

// PendingPayment is money captured for a booking but not yet credited to
// the workspace. At most one per booking; released exactly once on
// check-in, or refunded while still held.
type PendingPayment struct {
	ID         uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	BookingID  uuid.UUID     `json:"booking_id" gorm:"type:uuid;not null;uniqueIndex"`
	Amount     int64         `json:"amount" gorm:"not null"`
	Status     HoldingStatus `json:"status" gorm:"type:varchar(16);not null;default:'held';index;check:status IN ('held','released','refunded')"`
	CreatedAt  time.Time     `json:"created_at" gorm:"autoCreateTime"`
	ReleasedAt *time.Time    `json:"released_at,omitempty"`
	RefundedAt *time.Time    `json:"refunded_at,omitempty"`
}

func (PendingPayment) TableName() string {
	return "pending_payments"
}

func (p *PendingPayment) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
