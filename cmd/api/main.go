package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nivi1412/ticketing-platform/internal/admission"
	"github.com/nivi1412/ticketing-platform/internal/api"
	"github.com/nivi1412/ticketing-platform/internal/api/handler"
	custommw "github.com/nivi1412/ticketing-platform/internal/api/middleware"
	"github.com/nivi1412/ticketing-platform/internal/application"
	"github.com/nivi1412/ticketing-platform/internal/config"
	"github.com/nivi1412/ticketing-platform/internal/infrastructure/postgres"
	redisinfra "github.com/nivi1412/ticketing-platform/internal/infrastructure/redis"
	"github.com/nivi1412/ticketing-platform/internal/pkg/logger"
	"github.com/nivi1412/ticketing-platform/internal/pkg/metrics"
	"github.com/nivi1412/ticketing-platform/internal/worker"
)

func main() {
	cfg := config.Load()
	defer logger.Sync()

	// データベース接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行（MIGRATIONS_PATH設定時のみ）
	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		if err := postgres.RunMigrations(db.DB, path); err != nil {
			logger.Fatal("マイグレーションに失敗", zap.Error(err))
		}
	}

	// Redis接続（空席数キャッシュ用。接続できなくても予約処理は動作する）
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()

	var cache *redisinfra.AvailabilityCache
	if err := redisinfra.Ping(context.Background(), redisClient); err != nil {
		logger.Warn("Redis接続に失敗。空席数キャッシュなしで起動します", zap.Error(err))
	} else {
		cache = redisinfra.NewAvailabilityCache(redisClient)
	}

	// メトリクス
	m := metrics.Init()

	// リポジトリ・サービス初期化
	eventRepo := postgres.NewEventRepository(db)
	seatRepo := postgres.NewSeatRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	txManager := postgres.NewTxManager(db)

	limiter := admission.NewLimiter(
		cfg.Booking.MaxConcurrent,
		cfg.Booking.MaxWaiting,
		cfg.Booking.AcquireTimeout,
		m,
	)

	eventService := application.NewEventService(txManager, eventRepo, seatRepo, cache, cfg.Worker.CacheTTL)
	bookingService := application.NewBookingService(txManager, bookingRepo, seatRepo, eventRepo, limiter, cache, m)

	eventHandler := handler.NewEventHandler(eventService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	healthHandler := handler.NewHealthHandler(db)

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	api.ConfigureServer(e, &cfg.Server)
	custommw.SetupMiddleware(e)
	e.Use(custommw.PrometheusMiddleware(m))

	e.GET("/health", healthHandler.Check)
	e.GET("/health/ready", healthHandler.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsBasicAuth())

	v1 := e.Group("/api/v1")
	v1.POST("/events", eventHandler.Create)
	v1.GET("/events", eventHandler.List)
	v1.GET("/events/:id", eventHandler.GetByID)

	v1.POST("/bookings", bookingHandler.Create)
	v1.GET("/bookings", bookingHandler.GetUserBookings)
	v1.GET("/bookings/:id", bookingHandler.GetByID)
	v1.POST("/bookings/:id/cancel", bookingHandler.Cancel)

	// バックグラウンドワーカー
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var refresher *worker.AvailabilityCacheRefresher
	if cache != nil {
		refresher = worker.NewAvailabilityCacheRefresher(eventService, cfg.Worker.RefreshInterval)
		go refresher.Start(workerCtx)
	}

	// サーバー起動
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	if refresher != nil {
		refresher.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
