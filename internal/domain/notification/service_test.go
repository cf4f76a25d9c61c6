package notification

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"xbooking/internal/domain/cancellation"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:notification_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&Notification{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return NewService(db, zap.NewNop())
}

func TestSettledNoticePersistsRow(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	bookingID := uuid.New()

	err := svc.NotifyCancellationSettled(ctx, cancellation.Notice{
		BookingID:      bookingID,
		CancellationID: uuid.New(),
		UserID:         userID,
		RefundAmount:   5000,
		WalletBalance:  5000,
	})
	assert.NoError(t, err)

	list, err := svc.ListByUser(ctx, userID, false)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, EventCancellationSettled, list[0].Event)
	assert.Equal(t, int64(5000), list[0].Amount)
	assert.Equal(t, bookingID, *list[0].BookingID)
	assert.False(t, list[0].IsRead)
	assert.Contains(t, list[0].Message, "50.00")
}

func TestMarkRead(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	err := svc.NotifyBookingCompleted(ctx, userID, uuid.New())
	assert.NoError(t, err)

	list, err := svc.ListByUser(ctx, userID, true)
	assert.NoError(t, err)
	assert.Len(t, list, 1)

	err = svc.MarkRead(ctx, userID, list[0].ID)
	assert.NoError(t, err)

	unread, err := svc.ListByUser(ctx, userID, true)
	assert.NoError(t, err)
	assert.Empty(t, unread)

	// Another user cannot touch the notification.
	err = svc.MarkRead(ctx, uuid.New(), list[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRejectedNoticeIncludesAdminReason(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	err := svc.NotifyCancellationRejected(ctx, cancellation.Notice{
		BookingID:      uuid.New(),
		CancellationID: uuid.New(),
		UserID:         userID,
		Reason:         "no-show policy applies",
	})
	assert.NoError(t, err)

	list, err := svc.ListByUser(ctx, userID, false)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Contains(t, list[0].Message, "no-show policy applies")
}
