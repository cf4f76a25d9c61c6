package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"xbooking/internal/config"
	"xbooking/internal/database"
	"xbooking/internal/domain/booking"
	"xbooking/internal/domain/cancellation"
	"xbooking/internal/domain/notification"
	"xbooking/internal/domain/payment"
	"xbooking/internal/domain/wallet"
	"xbooking/internal/middleware"
	jwtsvc "xbooking/internal/pkg/jwt"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.AppEnv)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	err = db.AutoMigrate(
		&wallet.Wallet{},
		&wallet.Transaction{},
		&payment.PendingPayment{},
		&booking.Booking{},
		&cancellation.BookingCancellation{},
		&notification.Notification{},
	)
	if err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	walletService := wallet.NewService(db, cfg.Currency)
	walletHandler := wallet.NewHandler(walletService)

	paymentService := payment.NewService(db, walletService)
	paymentHandler := payment.NewHandler(paymentService)

	notificationService := notification.NewService(db, logger)
	notificationHandler := notification.NewHandler(notificationService)

	bookingRepo := booking.NewRepository(db)
	bookingService := booking.NewService(db, bookingRepo, paymentService, notificationService, logger)
	bookingHandler := booking.NewHandler(bookingService)

	policy := cancellation.PolicyConfig{
		FullRefundHours: cfg.FullRefundHours,
		HalfRefundHours: cfg.HalfRefundHours,
	}
	cancellationService := cancellation.NewService(db, policy, bookingRepo, paymentService, walletService, notificationService, logger)
	cancellationHandler := cancellation.NewHandler(cancellationService)

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			bookingHandler.RegisterRoutes(protected)
			cancellationHandler.RegisterRoutes(protected)
			walletHandler.RegisterRoutes(protected)
			notificationHandler.RegisterRoutes(protected)

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				cancellationHandler.RegisterAdminRoutes(admin)
				paymentHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	logger.Info("listening", zap.String("addr", cfg.ListenAddr))
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(appEnv string) (*zap.Logger, error) {
	if appEnv == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
