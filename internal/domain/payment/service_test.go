package payment

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"xbooking/internal/domain/wallet"
)

func setupTestService(t *testing.T) (*Service, *wallet.Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&wallet.Wallet{}, &wallet.Transaction{}, &PendingPayment{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}

	ledger := wallet.NewService(db, "NGN")
	return NewService(db, ledger), ledger, db
}

func TestHoldAndGet(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()
	bookingID := uuid.New()

	p, err := svc.Hold(ctx, bookingID, 5000)
	assert.NoError(t, err)
	assert.Equal(t, HoldingHeld, p.Status)
	assert.Equal(t, int64(5000), p.Amount)

	got, err := svc.Get(ctx, bookingID)
	assert.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestHoldRejectsDuplicateBooking(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()
	bookingID := uuid.New()

	_, err := svc.Hold(ctx, bookingID, 5000)
	assert.NoError(t, err)

	_, err = svc.Hold(ctx, bookingID, 5000)
	assert.ErrorIs(t, err, ErrDuplicateHolding)
}

func TestHoldRejectsNonPositiveAmount(t *testing.T) {
	svc, _, _ := setupTestService(t)

	_, err := svc.Hold(context.Background(), uuid.New(), 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestReleaseCreditsWorkspaceOnce(t *testing.T) {
	svc, ledger, _ := setupTestService(t)
	ctx := context.Background()
	bookingID := uuid.New()
	workspaceID := uuid.New()

	_, err := svc.Hold(ctx, bookingID, 5000)
	assert.NoError(t, err)

	txn, err := svc.ReleaseOnCheckIn(ctx, bookingID, workspaceID)
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), txn.Amount)

	balance, err := ledger.Balance(ctx, wallet.OwnerWorkspace, workspaceID)
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), balance)

	// A second release must not move money again.
	_, err = svc.ReleaseOnCheckIn(ctx, bookingID, workspaceID)
	assert.ErrorIs(t, err, ErrAlreadyReleased)

	balance, err = ledger.Balance(ctx, wallet.OwnerWorkspace, workspaceID)
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), balance)
}

func TestReleaseWithoutHolding(t *testing.T) {
	svc, _, _ := setupTestService(t)

	_, err := svc.ReleaseOnCheckIn(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNoHolding)
}

func TestRefundPartialAmount(t *testing.T) {
	svc, ledger, db := setupTestService(t)
	ctx := context.Background()
	bookingID := uuid.New()
	userID := uuid.New()

	_, err := svc.Hold(ctx, bookingID, 10000)
	assert.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		txn, err := svc.RefundTx(tx, bookingID, userID, 5000, "half refund")
		if err != nil {
			return err
		}
		assert.Equal(t, int64(5000), txn.Amount)
		return nil
	})
	assert.NoError(t, err)

	balance, err := ledger.Balance(ctx, wallet.OwnerUser, userID)
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), balance)

	p, err := svc.Get(ctx, bookingID)
	assert.NoError(t, err)
	assert.Equal(t, HoldingRefunded, p.Status)
	assert.NotNil(t, p.RefundedAt)
}

func TestRefundZeroConsumesHolding(t *testing.T) {
	svc, ledger, db := setupTestService(t)
	ctx := context.Background()
	bookingID := uuid.New()
	userID := uuid.New()

	_, err := svc.Hold(ctx, bookingID, 10000)
	assert.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		txn, err := svc.RefundTx(tx, bookingID, userID, 0, "late cancellation")
		assert.Nil(t, txn)
		return err
	})
	assert.NoError(t, err)

	balance, err := ledger.Balance(ctx, wallet.OwnerUser, userID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	p, err := svc.Get(ctx, bookingID)
	assert.NoError(t, err)
	assert.Equal(t, HoldingRefunded, p.Status)
}

func TestRefundAfterReleaseFails(t *testing.T) {
	svc, _, db := setupTestService(t)
	ctx := context.Background()
	bookingID := uuid.New()

	_, err := svc.Hold(ctx, bookingID, 10000)
	assert.NoError(t, err)

	_, err = svc.ReleaseOnCheckIn(ctx, bookingID, uuid.New())
	assert.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.RefundTx(tx, bookingID, uuid.New(), 10000, "too late")
		return err
	})
	assert.ErrorIs(t, err, ErrNotHeld)
}

func TestRefundRejectsAmountAboveHolding(t *testing.T) {
	svc, _, db := setupTestService(t)
	ctx := context.Background()
	bookingID := uuid.New()

	_, err := svc.Hold(ctx, bookingID, 1000)
	assert.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.RefundTx(tx, bookingID, uuid.New(), 2000, "over refund")
		return err
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
