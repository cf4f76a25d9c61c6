package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"xbooking/internal/config"
	"xbooking/internal/database"
	"xbooking/internal/domain/booking"
	"xbooking/internal/domain/notification"
	"xbooking/internal/domain/payment"
	"xbooking/internal/domain/wallet"
)

// Completes checked-in bookings whose check-out time has passed,
// releasing any payment still held. Run from cron.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	notifs := notification.NewService(db, logger)
	ledger := wallet.NewService(db, cfg.Currency)
	holdings := payment.NewService(db, ledger)
	repo := booking.NewRepository(db)
	svc := booking.NewService(db, repo, holdings, notifs, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	swept, err := svc.SweepOverdue(ctx)
	if err != nil {
		logger.Fatal("sweep failed", zap.Error(err))
	}
	logger.Info("sweep complete", zap.Int("completed", swept))
}
