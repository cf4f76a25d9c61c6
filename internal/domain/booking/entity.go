package booking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanCancel reports whether a booking in this status may be cancelled.
func (s Status) CanCancel() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive:
		return true
	}
	return false
}

// Booking reserves a space for a time window. Never physically deleted;
// cancellation and completion are soft, status-only transitions.
type Booking struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	WorkspaceID uuid.UUID `json:"workspace_id" gorm:"type:uuid;not null;index"`
	SpaceID     uuid.UUID `json:"space_id" gorm:"type:uuid;not null;index"`
	CheckIn     time.Time `json:"check_in" gorm:"not null;index"`
	CheckOut    time.Time `json:"check_out" gorm:"not null;index"`

	// Minor currency units.
	TotalPrice int64 `json:"total_price" gorm:"not null"`

	Status       Status `json:"status" gorm:"type:varchar(20);not null;default:'pending';index;check:status IN ('pending','confirmed','active','completed','cancelled')"`
	IsCheckedIn  bool   `json:"is_checked_in" gorm:"not null;default:false"`
	IsCheckedOut bool   `json:"is_checked_out" gorm:"not null;default:false"`

	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
