package booking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"xbooking/internal/domain/wallet"
)

// PaymentReleaser releases a booking's held payment to the workspace
// wallet inside the caller's transaction.
type PaymentReleaser interface {
	ReleaseTx(tx *gorm.DB, bookingID, workspaceID uuid.UUID) (*wallet.Transaction, error)
}

// NotificationSender delivers booking lifecycle notices. Best-effort:
// failures are logged by the implementation and never affect the booking.
type NotificationSender interface {
	NotifyBookingCheckedIn(ctx context.Context, userID, bookingID uuid.UUID, releasedAmount int64) error
	NotifyBookingCompleted(ctx context.Context, userID, bookingID uuid.UUID) error
}
