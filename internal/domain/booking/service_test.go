package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"xbooking/internal/domain/payment"
	"xbooking/internal/domain/wallet"
)

type testEnv struct {
	svc      *Service
	holdings *payment.Service
	ledger   *wallet.Service
	db       *gorm.DB
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:booking_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&wallet.Wallet{}, &wallet.Transaction{}, &payment.PendingPayment{}, &Booking{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}

	ledger := wallet.NewService(db, "NGN")
	holdings := payment.NewService(db, ledger)
	svc := NewService(db, NewRepository(db), holdings, nil, zap.NewNop())
	return &testEnv{svc: svc, holdings: holdings, ledger: ledger, db: db}
}

func newTestBooking(checkIn time.Time, price int64) *Booking {
	return &Booking{
		UserID:      uuid.New(),
		WorkspaceID: uuid.New(),
		SpaceID:     uuid.New(),
		CheckIn:     checkIn,
		CheckOut:    checkIn.Add(4 * time.Hour),
		TotalPrice:  price,
	}
}

func TestCreateValidatesWindow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	b := newTestBooking(time.Now().Add(24*time.Hour), 5000)
	b.CheckOut = b.CheckIn.Add(-time.Hour)
	_, err := env.svc.Create(ctx, b)
	assert.ErrorIs(t, err, ErrValidation)

	b = newTestBooking(time.Now().Add(24*time.Hour), -1)
	_, err = env.svc.Create(ctx, b)
	assert.ErrorIs(t, err, ErrValidation)

	b = newTestBooking(time.Now().Add(24*time.Hour), 5000)
	created, err := env.svc.Create(ctx, b)
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, created.Status)
}

func TestConfirmOnlyFromPending(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	b, err := env.svc.Create(ctx, newTestBooking(time.Now().Add(24*time.Hour), 5000))
	assert.NoError(t, err)

	confirmed, err := env.svc.Confirm(ctx, b.ID)
	assert.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)

	_, err = env.svc.Confirm(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCheckInReleasesHolding(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	b, err := env.svc.Create(ctx, newTestBooking(time.Now().Add(24*time.Hour), 5000))
	assert.NoError(t, err)
	_, err = env.holdings.Hold(ctx, b.ID, 5000)
	assert.NoError(t, err)
	_, err = env.svc.Confirm(ctx, b.ID)
	assert.NoError(t, err)

	result, err := env.svc.CheckIn(ctx, b.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), result.ReleasedAmount)
	assert.Equal(t, StatusActive, result.Booking.Status)
	assert.True(t, result.Booking.IsCheckedIn)

	balance, err := env.ledger.Balance(ctx, wallet.OwnerWorkspace, b.WorkspaceID)
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), balance)

	_, err = env.svc.CheckIn(ctx, b.ID)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestCheckInWithoutHolding(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	b, err := env.svc.Create(ctx, newTestBooking(time.Now().Add(24*time.Hour), 5000))
	assert.NoError(t, err)
	_, err = env.svc.Confirm(ctx, b.ID)
	assert.NoError(t, err)

	// No captured payment: check-in still succeeds, nothing released.
	result, err := env.svc.CheckIn(ctx, b.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), result.ReleasedAmount)
}

func TestCheckInRequiresConfirmed(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	b, err := env.svc.Create(ctx, newTestBooking(time.Now().Add(24*time.Hour), 5000))
	assert.NoError(t, err)

	_, err = env.svc.CheckIn(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCheckOutCompletesActiveBooking(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	b, err := env.svc.Create(ctx, newTestBooking(time.Now().Add(time.Hour), 5000))
	assert.NoError(t, err)
	_, err = env.svc.Confirm(ctx, b.ID)
	assert.NoError(t, err)
	_, err = env.svc.CheckIn(ctx, b.ID)
	assert.NoError(t, err)

	out, err := env.svc.CheckOut(ctx, b.ID)
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, out.Status)
	assert.True(t, out.IsCheckedOut)

	_, err = env.svc.CheckOut(ctx, b.ID)
	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
}

func TestSweepOverdueCompletesPastBookings(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	start := time.Now().Add(-6 * time.Hour)
	b, err := env.svc.Create(ctx, newTestBooking(start, 5000))
	assert.NoError(t, err)
	_, err = env.svc.Confirm(ctx, b.ID)
	assert.NoError(t, err)
	_, err = env.svc.CheckIn(ctx, b.ID)
	assert.NoError(t, err)

	// Still-running booking must not be swept.
	current, err := env.svc.Create(ctx, newTestBooking(time.Now(), 3000))
	assert.NoError(t, err)
	_, err = env.svc.Confirm(ctx, current.ID)
	assert.NoError(t, err)
	_, err = env.svc.CheckIn(ctx, current.ID)
	assert.NoError(t, err)

	swept, err := env.svc.SweepOverdue(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, swept)

	got, err := env.svc.GetByID(ctx, b.ID)
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	stillActive, err := env.svc.GetByID(ctx, current.ID)
	assert.NoError(t, err)
	assert.Equal(t, StatusActive, stillActive.Status)
}
