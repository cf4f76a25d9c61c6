package cancellation

import (
	"context"

	"github.com/google/uuid"
)

// Notice is the payload handed to the notification gateway after a
// settlement commits.
type Notice struct {
	BookingID      uuid.UUID
	CancellationID uuid.UUID
	UserID         uuid.UUID
	AdminID        *uuid.UUID
	RefundAmount   int64
	WalletBalance  int64
	Reason         string
}

// NotificationSender receives settlement events. Called after the atomic
// commit; delivery is best-effort and at-least-once, failures never roll
// back the settlement.
type NotificationSender interface {
	NotifyCancellationSettled(ctx context.Context, n Notice) error
	NotifyCancellationPendingApproval(ctx context.Context, n Notice) error
	NotifyCancellationRejected(ctx context.Context, n Notice) error
}
