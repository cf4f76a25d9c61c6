package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event string

const (
	EventCancellationSettled  Event = "cancellation_settled"
	EventCancellationPending  Event = "cancellation_pending_approval"
	EventCancellationRejected Event = "cancellation_rejected"
	EventBookingCheckedIn     Event = "booking_checked_in"
	EventBookingCompleted     Event = "booking_completed"
)

// Notification is a persisted in-app notice. Delivery to external
// channels (email, push) would hang off the same rows.
type Notification struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Event     Event      `json:"event" gorm:"type:varchar(40);not null"`
	Title     string     `json:"title" gorm:"type:varchar(255);not null"`
	Message   string     `json:"message" gorm:"type:text"`
	BookingID *uuid.UUID `json:"booking_id,omitempty" gorm:"type:uuid;index"`
	Amount    int64      `json:"amount"`
	IsRead    bool       `json:"is_read" gorm:"not null;default:false"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
