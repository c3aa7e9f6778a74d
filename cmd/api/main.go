package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-courier-booking-backend/config"
	"go-courier-booking-backend/internal/auth"
	v1 "go-courier-booking-backend/internal/delivery/http/v1"
	"go-courier-booking-backend/internal/repository/postgres"
	"go-courier-booking-backend/internal/usecase"
	"go-courier-booking-backend/pkg/database"
	"go-courier-booking-backend/pkg/jwks"
	"go-courier-booking-backend/pkg/logger"
	"go-courier-booking-backend/pkg/redis"
	"go-courier-booking-backend/pkg/storage"
	"go-courier-booking-backend/pkg/supabase"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting courier booking backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	slotRepo := postgres.NewTimeSlotRepository(dbPool)
	bookingRepo := postgres.NewBookingRepository(dbPool)
	taskRepo := postgres.NewTaskRepository(dbPool)
	adminRepo := postgres.NewAdminRepository(dbPool)

	// 5. Setup Auth Collaborator
	gotrue := supabase.NewClient(cfg.SupabaseUrl, cfg.SupabaseKey, cfg.SupabaseServiceKey)

	jwksURL := cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json"
	jwksProvider := jwks.NewProvider(jwksURL)
	verifier := auth.NewTokenVerifier(cfg.SupabaseJWTSecret, jwksProvider)

	// 6. Setup Session Store (Redis, with in-memory fallback)
	var sessionStore auth.SessionStore
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL}); err != nil {
		logger.Log.Warn("Redis unavailable, sessions held in memory", "error", err)
		sessionStore = auth.NewMemorySessionStore(verifier, cfg.SessionTTL)
	} else {
		sessionStore = auth.NewRedisSessionStore(redis.Client(), verifier, cfg.SessionTTL)
		defer redis.Close()
	}

	// 7. Setup Auth Service
	resolver := auth.NewProfileResolver(userRepo)
	authSvc := auth.NewService(sessionStore, resolver, gotrue, userRepo, cfg.ResolveTimeout)

	// 8. Setup Avatar Storage (optional)
	var avatars *storage.AvatarStore
	s3cfg := storage.S3Config{
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		PublicURL:       cfg.S3PublicURL,
	}
	if s3cfg.Configured() {
		avatars, err = storage.NewAvatarStore(context.Background(), s3cfg)
		if err != nil {
			logger.Log.Warn("Avatar storage unavailable", "error", err)
			avatars = nil
		}
	} else {
		logger.Log.Warn("Avatar storage not configured - uploads will be rejected")
	}

	// 9. Setup UseCases
	profileUC := usecase.NewProfileUsecase(userRepo)
	slotUC := usecase.NewTimeSlotUsecase(slotRepo)
	bookingUC := usecase.NewBookingUsecase(bookingRepo, slotRepo)
	taskUC := usecase.NewTaskUsecase(taskRepo, userRepo)
	adminUC := usecase.NewAdminUsecase(adminRepo, userRepo, gotrue)

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthSvc:    authSvc,
		Guard:      auth.NewGuard(),
		Verifier:   verifier,
		UserRepo:   userRepo,
		ProfileUC:  profileUC,
		TimeSlotUC: slotUC,
		BookingUC:  bookingUC,
		TaskUC:     taskUC,
		AdminUC:    adminUC,
		Avatars:    avatars,
		Config:     cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
