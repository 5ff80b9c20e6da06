package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/engagement-backend/internal/config"
	"github.com/ignatzorin/engagement-backend/internal/db"
	"github.com/ignatzorin/engagement-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/engagement-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/engagement-backend/internal/http/router"
	"github.com/ignatzorin/engagement-backend/internal/logger"
	"github.com/ignatzorin/engagement-backend/internal/repository"
	"github.com/ignatzorin/engagement-backend/internal/service"
	"github.com/ignatzorin/engagement-backend/internal/storage"
	"github.com/ignatzorin/engagement-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.DefaultPoolOptions)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	uploads, err := storage.New(cfg.Upload)
	if err != nil {
		log.Fatalf("main: не удалось подготовить хранилище результатов: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	engagementRepo := repository.NewEngagementRepository(dbConn)
	deliverableRepo := repository.NewDeliverableRepository(dbConn)
	feedbackRepo := repository.NewFeedbackRepository(dbConn)
	escrowRepo := repository.NewEscrowRepository(dbConn)
	invoiceRepo := repository.NewInvoiceRepository(dbConn)
	portfolioRepo := repository.NewPortfolioRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, hub.Run)

	// Сервисы.
	notificationService := service.NewNotificationService(notificationRepo, hub, cfg.Notify)
	portfolioService := service.NewPortfolioService(portfolioRepo, notificationService)
	engagementService := service.NewEngagementService(engagementRepo, userRepo, portfolioService)
	deliverableService := service.NewDeliverableService(deliverableRepo, engagementRepo, uploads, notificationService, portfolioService)
	feedbackService := service.NewFeedbackService(feedbackRepo, deliverableRepo, engagementRepo)
	escrowService := service.NewEscrowService(escrowRepo, invoiceRepo, engagementRepo, notificationService, cfg.InvoiceDueDays)

	goroutine.Every(ctx, "invoice-overdue", cfg.OverdueInterval, func(ctx context.Context) error {
		return sweepOverdue(ctx, escrowService)
	})

	// HTTP хэндлеры.
	handlers := httpRouter.Handlers{
		Engagement:   httpHandlers.NewEngagementHandler(engagementService),
		Deliverable:  httpHandlers.NewDeliverableHandler(deliverableService),
		Feedback:     httpHandlers.NewFeedbackHandler(feedbackService),
		Escrow:       httpHandlers.NewEscrowHandler(escrowService),
		Portfolio:    httpHandlers.NewPortfolioHandler(portfolioService),
		Notification: httpHandlers.NewNotificationHandler(notificationService),
		Health:       httpHandlers.NewHealthHandler(dbConn),
		WS:           httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
	}

	engine := httpRouter.SetupRouter(cfg, handlers, tokenManager)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	logger.Log.WithField("port", cfg.HTTPPort).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// sweepOverdue переводит просроченные неоплаченные счета в overdue.
func sweepOverdue(ctx context.Context, escrow *service.EscrowService) error {
	marked, err := escrow.MarkOverdue(ctx)
	if err != nil {
		return fmt.Errorf("пометка просроченных счетов: %w", err)
	}
	if marked > 0 {
		logger.Entry(logrus.Fields{"count": marked}).Info("main: счета помечены как просроченные")
	}
	return nil
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
