package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"baddelli/internal/adapter/api"
	"baddelli/internal/adapter/api/handler"
	apimiddleware "baddelli/internal/adapter/api/middleware"
	"baddelli/internal/adapter/api/router"
	"baddelli/internal/adapter/repository"
	"baddelli/internal/infrastructure/firebase"
	"baddelli/internal/infrastructure/imaging"
	"baddelli/internal/infrastructure/metrics"
	"baddelli/internal/infrastructure/ratelimit"
	"baddelli/internal/infrastructure/storage"
	"baddelli/internal/infrastructure/websocket"
	"baddelli/internal/usecase"
	"baddelli/pkg/config"
	"baddelli/pkg/logger"
	"baddelli/pkg/response"
)

const metricsNamespace = "baddelli"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger.Init(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt, err := credentials(cfg)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		logger.Error("Failed to initialize Firebase: %v", err)
		os.Exit(1)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		logger.Error("Failed to initialize Firebase Auth: %v", err)
		os.Exit(1)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		logger.Error("Failed to create Firestore client: %v", err)
		os.Exit(1)
	}
	defer firestoreClient.Close()

	firebaseAuthClient, err := firebase.NewFirebaseAuthClient(ctx, authClient, cfg.FirebaseApiKey)
	if err != nil {
		logger.Error("Failed to initialize Identity Toolkit: %v", err)
		os.Exit(1)
	}

	// Without a bucket, item images are embedded as data URLs.
	var imageStore usecase.ImageStore
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opt)
		if err != nil {
			logger.Error("Failed to initialize Cloud Storage: %v", err)
			os.Exit(1)
		}
		defer storageClient.Close()
		imageStore = storage.NewBreakerStore(storageClient, storage.BreakerSettings{
			MaxFailures: uint32(cfg.StorageMaxFailures),
			OpenTimeout: time.Duration(cfg.StorageBreakerTimeoutSec) * time.Second,
		})
	}

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	itemRepo := repository.NewFirestoreItemRepository(firestoreClient)
	tradeRepo := repository.NewFirestoreTradeRepository(firestoreClient)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)

	limiter := ratelimit.NewRateLimiter(map[string]ratelimit.Limit{
		usecase.ActionProposeTrade: {PerMinute: cfg.TradeRatePerMinute},
		usecase.ActionSendMessage:  {PerMinute: cfg.MessageRatePerMinute},
		router.ActionLogin:         {PerMinute: 10},
		router.ActionRegister:      {PerMinute: 5},
		router.ActionPasswordReset: {PerMinute: 3},
	}, ratelimit.Limit{PerMinute: 60})
	limiter.StartCleanup(ctx, 10*time.Minute, 30*time.Minute)

	names := usecase.NewCachedNameResolver(userRepo, firebaseAuthClient).
		WithTTL(time.Duration(cfg.NameCacheTTLSec) * time.Second)
	compressor := imaging.NewCompressor(cfg.ImageMaxDimension, cfg.ImageJPEGQuality)

	authUseCase := usecase.NewAuthUseCase(userRepo, firebaseAuthClient)
	userUseCase := usecase.NewUserUseCase(userRepo, firebaseAuthClient, names)
	itemUseCase := usecase.NewItemUseCase(itemRepo, compressor, imageStore)
	tradeUseCase := usecase.NewTradeUseCase(tradeRepo, itemRepo, limiter)
	chatUseCase := usecase.NewChatUseCase(tradeRepo, messageRepo, names, limiter, cfg.MarkReadConcurrency)
	badgeUseCase := usecase.NewBadgeUseCase(tradeRepo, messageRepo)

	handler.Setup(authUseCase, userUseCase, itemUseCase, tradeUseCase, chatUseCase, badgeUseCase, names)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	// Each connection gets its own name cache.
	newSession := func(userID string, sink usecase.Sink) *usecase.LiveSession {
		sessionNames := usecase.NewCachedNameResolver(userRepo, firebaseAuthClient)
		return usecase.NewLiveSession(userID, tradeUseCase, chatUseCase, badgeUseCase, sessionNames, sink)
	}
	wsHandler := handler.NewWebSocketHandler(ctx, wsManager, newSession, cfg.AllowedOrigins, cfg.WebSocketSendBuffer)

	appMetrics := metrics.NewMetrics(metricsNamespace)
	appMetrics.TrackConnections(metricsNamespace, wsManager.TotalConnections)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = response.HTTPErrorHandler

	e.Use(middleware.Logger())
	e.Use(apimiddleware.Metrics(appMetrics))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(cfg.AllowedOrigins, ","),
	}))

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(firebaseAuthClient)

	router.Setup(e, authMiddleware, limiter)
	router.SetupWebSocketRouter(e, wsHandler, authMiddleware)
	router.SetupMetricsRouter(e, appMetrics.Handler())

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

// credentials prefers the inline service account JSON over the file path.
func credentials(cfg *config.Config) (option.ClientOption, error) {
	if cfg.ServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)), nil
	}

	path := cfg.ServiceAccountPath
	if path == "" {
		path = "./serviceAccountKey.json"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("service account file does not exist: %s", path)
	}

	logger.Info("Using Firebase service account from file: %s", path)
	return option.WithCredentialsFile(path), nil
}
