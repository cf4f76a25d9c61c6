package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"xbooking/internal/domain/cancellation"
)

var ErrNotFound = errors.New("notification not found")

// Service is the in-process notification gateway. It persists a row per
// event and logs it; callers treat delivery as best-effort.
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log}
}

func (s *Service) NotifyCancellationSettled(ctx context.Context, n cancellation.Notice) error {
	return s.deliver(ctx, &Notification{
		UserID:    n.UserID,
		Event:     EventCancellationSettled,
		Title:     "Booking cancelled",
		Message:   fmt.Sprintf("Your booking was cancelled. %s refunded to your wallet (new balance %s).", formatAmount(n.RefundAmount), formatAmount(n.WalletBalance)),
		BookingID: &n.BookingID,
		Amount:    n.RefundAmount,
	})
}

func (s *Service) NotifyCancellationPendingApproval(ctx context.Context, n cancellation.Notice) error {
	return s.deliver(ctx, &Notification{
		UserID:    n.UserID,
		Event:     EventCancellationPending,
		Title:     "Cancellation pending review",
		Message:   "Your cancellation request is close to check-in and needs a manual review. We will notify you once it is decided.",
		BookingID: &n.BookingID,
	})
}

func (s *Service) NotifyCancellationRejected(ctx context.Context, n cancellation.Notice) error {
	msg := "Your cancellation request was declined. The booking remains active."
	if n.Reason != "" {
		msg = fmt.Sprintf("Your cancellation request was declined: %s. The booking remains active.", n.Reason)
	}
	return s.deliver(ctx, &Notification{
		UserID:    n.UserID,
		Event:     EventCancellationRejected,
		Title:     "Cancellation declined",
		Message:   msg,
		BookingID: &n.BookingID,
	})
}

func (s *Service) NotifyBookingCheckedIn(ctx context.Context, userID, bookingID uuid.UUID, releasedAmount int64) error {
	return s.deliver(ctx, &Notification{
		UserID:    userID,
		Event:     EventBookingCheckedIn,
		Title:     "Checked in",
		Message:   "You have checked in. Enjoy your stay!",
		BookingID: &bookingID,
		Amount:    releasedAmount,
	})
}

func (s *Service) NotifyBookingCompleted(ctx context.Context, userID, bookingID uuid.UUID) error {
	return s.deliver(ctx, &Notification{
		UserID:    userID,
		Event:     EventBookingCompleted,
		Title:     "Booking completed",
		Message:   "Your booking is complete. Thanks for using Xbooking!",
		BookingID: &bookingID,
	})
}

func (s *Service) deliver(ctx context.Context, n *Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return err
	}
	s.log.Info("notification delivered",
		zap.String("event", string(n.Event)),
		zap.String("user_id", n.UserID.String()))
	return nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]Notification, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var out []Notification
	err := q.Order("created_at desc").Limit(100).Find(&out).Error
	return out, err
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func formatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
