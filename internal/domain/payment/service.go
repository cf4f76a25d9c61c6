package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"xbooking/internal/domain/wallet"
)

// ReleaseReference is the wallet idempotency key for releasing a booking's
// holding to the workspace; RefundReference for refunding it to the user.
// Deterministic per booking, so a retried settlement can never double-move
// money.
func ReleaseReference(bookingID uuid.UUID) string {
	return fmt.Sprintf("BOOKING-%s-RELEASE", bookingID)
}

func RefundReference(bookingID uuid.UUID) string {
	return fmt.Sprintf("BOOKING-%s-REFUND", bookingID)
}

// Service holds captured booking funds until check-in, then releases them
// to the workspace wallet, or refunds them to the user if the booking is
// cancelled first.
type Service struct {
	db     *gorm.DB
	ledger *wallet.Service
	now    func() time.Time
}

func NewService(db *gorm.DB, ledger *wallet.Service) *Service {
	return &Service{db: db, ledger: ledger, now: time.Now}
}

// SetClock overrides the clock, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Hold records captured funds for a booking.
func (s *Service) Hold(ctx context.Context, bookingID uuid.UUID, amount int64) (*PendingPayment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	p := &PendingPayment{BookingID: bookingID, Amount: amount, Status: HoldingHeld}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicateHolding
		}
		return nil, err
	}
	return p, nil
}

// Get returns the holding for a booking, if any.
func (s *Service) Get(ctx context.Context, bookingID uuid.UUID) (*PendingPayment, error) {
	var p PendingPayment
	err := s.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoHolding
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ReleaseOnCheckIn moves a held payment into the workspace wallet.
func (s *Service) ReleaseOnCheckIn(ctx context.Context, bookingID, workspaceID uuid.UUID) (*wallet.Transaction, error) {
	var txn *wallet.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = s.ReleaseTx(tx, bookingID, workspaceID)
		return err
	})
	return txn, err
}

// ReleaseTx is ReleaseOnCheckIn inside a caller-owned transaction, so
// check-in and the release commit or roll back together.
func (s *Service) ReleaseTx(tx *gorm.DB, bookingID, workspaceID uuid.UUID) (*wallet.Transaction, error) {
	p, err := getForUpdate(tx, bookingID)
	if err != nil {
		return nil, err
	}
	switch p.Status {
	case HoldingReleased:
		return nil, ErrAlreadyReleased
	case HoldingRefunded:
		return nil, ErrNotHeld
	}

	now := s.now()
	res := tx.Model(&PendingPayment{}).
		Where("id = ? AND status = ?", p.ID, HoldingHeld).
		Updates(map[string]any{"status": HoldingReleased, "released_at": now})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyReleased
	}

	txn, err := s.ledger.ApplyTx(tx, wallet.OwnerWorkspace, workspaceID, wallet.TransactionCredit, p.Amount,
		ReleaseReference(bookingID), "Booking payment released after check-in")
	if errors.Is(err, wallet.ErrDuplicateReference) {
		// Replay of a settled release: the money already moved.
		return txn, ErrAlreadyReleased
	}
	return txn, err
}

// RefundTx refunds refundAmount of a held payment to the user wallet
// inside a caller-owned transaction. The unrefunded remainder is
// forfeited, not credited to the workspace.
func (s *Service) RefundTx(tx *gorm.DB, bookingID, userID uuid.UUID, refundAmount int64, description string) (*wallet.Transaction, error) {
	p, err := getForUpdate(tx, bookingID)
	if err != nil {
		return nil, err
	}
	if p.Status != HoldingHeld {
		return nil, ErrNotHeld
	}
	if refundAmount < 0 || refundAmount > p.Amount {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	res := tx.Model(&PendingPayment{}).
		Where("id = ? AND status = ?", p.ID, HoldingHeld).
		Updates(map[string]any{"status": HoldingRefunded, "refunded_at": now})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotHeld
	}

	if refundAmount == 0 {
		// Holding consumed, nothing credited back.
		return nil, nil
	}

	txn, err := s.ledger.ApplyTx(tx, wallet.OwnerUser, userID, wallet.TransactionRefund, refundAmount,
		RefundReference(bookingID), description)
	if errors.Is(err, wallet.ErrDuplicateReference) {
		return txn, nil
	}
	return txn, err
}

func getForUpdate(tx *gorm.DB, bookingID uuid.UUID) (*PendingPayment, error) {
	var p PendingPayment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("booking_id = ?", bookingID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoHolding
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
