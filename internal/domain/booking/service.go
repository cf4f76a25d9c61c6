package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"xbooking/internal/database"
	"xbooking/internal/domain/payment"
)

// CheckInResult reports what a check-in released to the workspace.
type CheckInResult struct {
	Booking        *Booking `json:"booking"`
	ReleasedAmount int64    `json:"released_amount"`
}

type Service struct {
	db       *gorm.DB
	bookings *Repository
	holdings PaymentReleaser
	notifs   NotificationSender
	log      *zap.Logger
	now      func() time.Time
}

func NewService(db *gorm.DB, bookings *Repository, holdings PaymentReleaser, notifs NotificationSender, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:       db,
		bookings: bookings,
		holdings: holdings,
		notifs:   notifs,
		log:      log,
		now:      time.Now,
	}
}

// SetClock overrides the clock, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Create(ctx context.Context, b *Booking) (*Booking, error) {
	if !b.CheckOut.After(b.CheckIn) {
		return nil, ErrValidation
	}
	if b.TotalPrice < 0 {
		return nil, ErrValidation
	}

	b.Status = StatusPending
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error) {
	return s.bookings.ListByUser(ctx, userID, limit, offset)
}

// Confirm moves a pending booking to confirmed.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var out *Booking
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		b, err := s.bookings.GetForUpdate(tx, id)
		if err != nil {
			return err
		}
		if b.Status != StatusPending {
			return ErrInvalidState
		}
		b.Status = StatusConfirmed
		if err := tx.Model(&Booking{}).Where("id = ?", b.ID).Update("status", b.Status).Error; err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// CheckIn activates a confirmed booking and releases its held payment to
// the workspace wallet, as one atomic unit. A booking without a holding
// checks in with released_amount 0; that case is logged, not failed.
func (s *Service) CheckIn(ctx context.Context, id uuid.UUID) (*CheckInResult, error) {
	var result CheckInResult
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		result = CheckInResult{}

		b, err := s.bookings.GetForUpdate(tx, id)
		if err != nil {
			return err
		}
		if b.IsCheckedIn {
			return ErrAlreadyCheckedIn
		}
		if b.Status != StatusConfirmed {
			return ErrInvalidState
		}

		b.Status = StatusActive
		b.IsCheckedIn = true
		if err := tx.Model(&Booking{}).Where("id = ?", b.ID).
			Updates(map[string]any{"status": b.Status, "is_checked_in": true}).Error; err != nil {
			return err
		}

		txn, err := s.holdings.ReleaseTx(tx, b.ID, b.WorkspaceID)
		switch {
		case err == nil:
			result.ReleasedAmount = txn.Amount
		case errors.Is(err, payment.ErrNoHolding):
			s.log.Warn("no pending payment to release on check-in", zap.String("booking_id", b.ID.String()))
		case errors.Is(err, payment.ErrAlreadyReleased):
			// Replayed settlement; money already with the workspace.
		default:
			return err
		}

		result.Booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyBookingCheckedIn(ctx, result.Booking.UserID, result.Booking.ID, result.ReleasedAmount)
	}
	return &result, nil
}

// CheckOut completes an active booking.
func (s *Service) CheckOut(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var out *Booking
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		b, err := s.bookings.GetForUpdate(tx, id)
		if err != nil {
			return err
		}
		if b.IsCheckedOut {
			return ErrAlreadyCheckedOut
		}
		if b.Status != StatusActive || !b.IsCheckedIn {
			return ErrInvalidState
		}

		b.Status = StatusCompleted
		b.IsCheckedOut = true
		if err := tx.Model(&Booking{}).Where("id = ?", b.ID).
			Updates(map[string]any{"status": b.Status, "is_checked_out": true}).Error; err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyBookingCompleted(ctx, out.UserID, out.ID)
	}
	return out, nil
}

// SweepOverdue completes checked-in bookings whose check-out time has
// passed. Each booking is handled in its own transaction, so one failure
// does not block the rest.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	overdue, err := s.bookings.ListOverdueActive(ctx, s.now(), 100)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, b := range overdue {
		if _, err := s.CheckOut(ctx, b.ID); err != nil {
			s.log.Error("overdue sweep: checkout failed",
				zap.String("booking_id", b.ID.String()), zap.Error(err))
			continue
		}
		completed++
	}
	return completed, nil
}
