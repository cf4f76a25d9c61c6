package cancellation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"xbooking/internal/database"
	"xbooking/internal/domain/booking"
	"xbooking/internal/domain/payment"
	"xbooking/internal/domain/wallet"
)

// Result is returned to the HTTP layer after a workflow operation.
type Result struct {
	CancellationID   uuid.UUID      `json:"cancellation_id"`
	RefundAmount     int64          `json:"refund_amount"`
	RequiresApproval bool           `json:"requires_approval"`
	NewStatus        booking.Status `json:"new_status"`
}

// Service orchestrates cancellation requests: policy evaluation,
// auto-approval vs. admin-approval branching, booking transitions and the
// settlement of held or released funds. Every state transition and its
// wallet mutation runs in one transaction; notifications fire after the
// commit and never roll it back.
type Service struct {
	db       *gorm.DB
	cfg      PolicyConfig
	bookings *booking.Repository
	holdings *payment.Service
	ledger   *wallet.Service
	notifs   NotificationSender
	log      *zap.Logger
	now      func() time.Time
}

func NewService(db *gorm.DB, cfg PolicyConfig, bookings *booking.Repository, holdings *payment.Service, ledger *wallet.Service, notifs NotificationSender, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:       db,
		cfg:      cfg,
		bookings: bookings,
		holdings: holdings,
		ledger:   ledger,
		notifs:   notifs,
		log:      log,
		now:      time.Now,
	}
}

// SetClock overrides the clock, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// RequestCancellation evaluates the refund policy for a booking and either
// settles immediately (early tiers) or parks the request for an admin
// decision (late tiers).
func (s *Service) RequestCancellation(ctx context.Context, bookingID, userID uuid.UUID, reason Reason, description string) (*Result, error) {
	if !reason.Valid() {
		reason = ReasonUserRequest
	}

	var (
		result Result
		notice Notice
		tier   Tier
	)
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		b, err := s.bookings.GetForUpdate(tx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != userID {
			return ErrForbidden
		}

		var existing BookingCancellation
		err = tx.Where("booking_id = ?", bookingID).First(&existing).Error
		if err == nil {
			return ErrAlreadyCancelled
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if !b.Status.CanCancel() {
			return ErrInvalidState
		}

		now := s.now()
		hours := b.CheckIn.Sub(now).Hours()

		var refund, penalty int64
		tier, refund, penalty, err = s.cfg.RefundBreakdown(hours, b.TotalPrice)
		if err != nil {
			return err
		}

		if description == "" {
			description = fmt.Sprintf("Booking cancelled %.1f hours before check-in", hours)
		}

		bc := &BookingCancellation{
			BookingID:             bookingID,
			CancelledBy:           userID,
			Reason:                reason,
			ReasonDescription:     description,
			OriginalAmount:        b.TotalPrice,
			RefundPercent:         tier.RefundPercent,
			RefundAmount:          refund,
			PenaltyAmount:         penalty,
			HoursUntilCheckIn:     hours,
			RequiresAdminApproval: tier.RequiresApproval,
			RefundStatus:          RefundPending,
		}

		if tier.RequiresApproval {
			// Booking stays as-is until an admin decides.
			if err := createCancellation(tx, bc); err != nil {
				return err
			}
			result = Result{CancellationID: bc.ID, RefundAmount: refund, RequiresApproval: true, NewStatus: b.Status}
			notice = Notice{BookingID: b.ID, CancellationID: bc.ID, UserID: b.UserID, RefundAmount: refund, Reason: string(reason)}
			return nil
		}

		if err := s.cancelBookingTx(tx, b, now); err != nil {
			return err
		}

		reference, err := s.settleRefundTx(tx, b, refund,
			fmt.Sprintf("Refund for cancelled booking (check-in %s, %d%%)", b.CheckIn.Format("2006-01-02 15:04"), tier.RefundPercent))
		if err != nil {
			return err
		}

		bc.RefundStatus = RefundCompleted
		bc.RefundReference = reference
		bc.DecidedAt = &now
		if err := createCancellation(tx, bc); err != nil {
			return err
		}

		result = Result{CancellationID: bc.ID, RefundAmount: refund, RequiresApproval: false, NewStatus: booking.StatusCancelled}
		notice = Notice{BookingID: b.ID, CancellationID: bc.ID, UserID: b.UserID, RefundAmount: refund, Reason: string(reason)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, result.RequiresApproval, notice)
	return &result, nil
}

// ApproveCancellation settles a pending cancellation. overrideAmount, when
// given, replaces the advisory refund and is clamped to [0, total_price].
func (s *Service) ApproveCancellation(ctx context.Context, cancellationID, adminID uuid.UUID, overrideAmount *int64, adminNotes string) (*Result, error) {
	var (
		result Result
		notice Notice
	)
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		bc, err := getCancellationForUpdate(tx, cancellationID)
		if err != nil {
			return err
		}
		if bc.RefundStatus != RefundPending {
			return ErrInvalidState
		}

		b, err := s.bookings.GetForUpdate(tx, bc.BookingID)
		if err != nil {
			return err
		}
		// A booking that completed while the request sat in the queue
		// stays completed; the request can only be rejected.
		if b.Status.IsTerminal() {
			return ErrInvalidState
		}

		refund := bc.RefundAmount
		if overrideAmount != nil {
			refund = clamp(*overrideAmount, 0, bc.OriginalAmount)
		}

		now := s.now()
		if err := s.cancelBookingTx(tx, b, now); err != nil {
			return err
		}

		reference, err := s.settleRefundTx(tx, b, refund,
			fmt.Sprintf("Admin-approved refund for cancelled booking %s", b.ID))
		if err != nil {
			return err
		}

		updates := map[string]any{
			"refund_status":    RefundCompleted,
			"refund_amount":    refund,
			"penalty_amount":   bc.OriginalAmount - refund,
			"refund_reference": reference,
			"decided_by":       adminID,
			"decided_at":       now,
			"admin_notes":      adminNotes,
		}
		if bc.OriginalAmount > 0 {
			updates["refund_percent"] = refund * 100 / bc.OriginalAmount
		}
		if err := tx.Model(&BookingCancellation{}).Where("id = ?", bc.ID).Updates(updates).Error; err != nil {
			return err
		}

		result = Result{CancellationID: bc.ID, RefundAmount: refund, RequiresApproval: false, NewStatus: booking.StatusCancelled}
		notice = Notice{BookingID: b.ID, CancellationID: bc.ID, UserID: b.UserID, AdminID: &adminID, RefundAmount: refund}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if balance, berr := s.ledger.Balance(ctx, wallet.OwnerUser, notice.UserID); berr == nil {
		notice.WalletBalance = balance
	}
	if s.notifs != nil {
		if err := s.notifs.NotifyCancellationSettled(ctx, notice); err != nil {
			s.log.Warn("settlement notification failed", zap.String("cancellation_id", notice.CancellationID.String()), zap.Error(err))
		}
	}
	return &result, nil
}

// RejectCancellation declines a pending cancellation. The booking keeps
// its status; the user is still expected to honor it. No money moves.
func (s *Service) RejectCancellation(ctx context.Context, cancellationID, adminID uuid.UUID, adminNotes string) (*Result, error) {
	var (
		result Result
		notice Notice
	)
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		bc, err := getCancellationForUpdate(tx, cancellationID)
		if err != nil {
			return err
		}
		if bc.RefundStatus != RefundPending {
			return ErrInvalidState
		}

		b, err := s.bookings.GetForUpdate(tx, bc.BookingID)
		if err != nil {
			return err
		}

		now := s.now()
		err = tx.Model(&BookingCancellation{}).Where("id = ?", bc.ID).Updates(map[string]any{
			"refund_status":  RefundRejected,
			"refund_amount":  0,
			"penalty_amount": bc.OriginalAmount,
			"decided_by":     adminID,
			"decided_at":     now,
			"admin_notes":    adminNotes,
		}).Error
		if err != nil {
			return err
		}

		result = Result{CancellationID: bc.ID, RefundAmount: 0, RequiresApproval: false, NewStatus: b.Status}
		notice = Notice{BookingID: b.ID, CancellationID: bc.ID, UserID: b.UserID, AdminID: &adminID, Reason: adminNotes}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifs != nil {
		if err := s.notifs.NotifyCancellationRejected(ctx, notice); err != nil {
			s.log.Warn("rejection notification failed", zap.String("cancellation_id", notice.CancellationID.String()), zap.Error(err))
		}
	}
	return &result, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*BookingCancellation, error) {
	var bc BookingCancellation
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&bc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bc, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]BookingCancellation, error) {
	var out []BookingCancellation
	err := s.db.WithContext(ctx).Where("cancelled_by = ?", userID).Order("cancelled_at desc").Find(&out).Error
	return out, err
}

// ListPending returns cancellations awaiting an admin decision.
func (s *Service) ListPending(ctx context.Context) ([]BookingCancellation, error) {
	var out []BookingCancellation
	err := s.db.WithContext(ctx).
		Where("refund_status = ? AND requires_admin_approval = ?", RefundPending, true).
		Order("cancelled_at asc").Find(&out).Error
	return out, err
}

// cancelBookingTx flips the booking to cancelled inside tx.
func (s *Service) cancelBookingTx(tx *gorm.DB, b *booking.Booking, now time.Time) error {
	return tx.Model(&booking.Booking{}).Where("id = ?", b.ID).Updates(map[string]any{
		"status":       booking.StatusCancelled,
		"cancelled_at": now,
	}).Error
}

// settleRefundTx moves the refund to the user. While the payment is still
// held, the holding is consumed; if it was already released to the
// workspace (user checked in), the workspace wallet is debited instead.
// The unrefunded remainder of a held payment is forfeited.
func (s *Service) settleRefundTx(tx *gorm.DB, b *booking.Booking, refund int64, description string) (string, error) {
	txn, err := s.holdings.RefundTx(tx, b.ID, b.UserID, refund, description)
	switch {
	case err == nil:
		if txn != nil {
			return txn.Reference, nil
		}
		return "", nil
	case errors.Is(err, payment.ErrNoHolding), errors.Is(err, payment.ErrNotHeld):
		// Funds already with the workspace (or never held); fall through.
	default:
		return "", err
	}

	if refund == 0 {
		return "", nil
	}

	wsRef := payment.RefundReference(b.ID) + "-WS"
	_, err = s.ledger.ApplyTx(tx, wallet.OwnerWorkspace, b.WorkspaceID, wallet.TransactionDebit, refund,
		wsRef, fmt.Sprintf("Refund for cancelled booking %s", b.ID))
	switch {
	case err == nil, errors.Is(err, wallet.ErrDuplicateReference):
	case errors.Is(err, wallet.ErrInsufficientFunds):
		// Workspace balance cannot cover the refund; the user is made
		// whole regardless and the shortfall is reconciled out of band.
		s.log.Warn("workspace wallet cannot cover refund",
			zap.String("booking_id", b.ID.String()), zap.Int64("refund", refund))
	default:
		return "", err
	}

	txn, err = s.ledger.ApplyTx(tx, wallet.OwnerUser, b.UserID, wallet.TransactionRefund, refund,
		payment.RefundReference(b.ID), description)
	if errors.Is(err, wallet.ErrDuplicateReference) {
		return txn.Reference, nil
	}
	if err != nil {
		return "", err
	}
	return txn.Reference, nil
}

func (s *Service) emit(ctx context.Context, pendingApproval bool, n Notice) {
	if s.notifs == nil {
		return
	}

	if balance, err := s.ledger.Balance(ctx, wallet.OwnerUser, n.UserID); err == nil {
		n.WalletBalance = balance
	}

	var err error
	if pendingApproval {
		err = s.notifs.NotifyCancellationPendingApproval(ctx, n)
	} else {
		err = s.notifs.NotifyCancellationSettled(ctx, n)
	}
	if err != nil {
		s.log.Warn("cancellation notification failed",
			zap.String("cancellation_id", n.CancellationID.String()), zap.Error(err))
	}
}

func createCancellation(tx *gorm.DB, bc *BookingCancellation) error {
	if err := tx.Create(bc).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrAlreadyCancelled
		}
		return err
	}
	return nil
}

func getCancellationForUpdate(tx *gorm.DB, id uuid.UUID) (*BookingCancellation, error) {
	var bc BookingCancellation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&bc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bc, nil
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
