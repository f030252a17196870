package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Ydzz18/photo-web-sub000/internal/config"
	"github.com/Ydzz18/photo-web-sub000/internal/db"
	"github.com/Ydzz18/photo-web-sub000/internal/email"
	apihttp "github.com/Ydzz18/photo-web-sub000/internal/http"
	"github.com/Ydzz18/photo-web-sub000/internal/repository"
	"github.com/Ydzz18/photo-web-sub000/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := db.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("migrations", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	accountRepo := repository.NewPgAccountRepository(pool)
	tokenRepo := repository.NewPgTokenRepository(pool)
	codeRepo := repository.NewPgCodeRepository(pool)
	photoRepo := repository.NewPgPhotoRepository(pool)
	followRepo := repository.NewPgFollowRepository(pool)
	notificationRepo := repository.NewPgNotificationRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		sessionStore     service.SessionStore
		twoFactorLimiter service.AttemptLimiter
		resendLimiter    service.AttemptLimiter
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			sessionStore = service.NewRedisSessionStore(redisClient)
			twoFactorLimiter = service.NewRedisAttemptLimiter(redisClient, "2fa:rl:", 10*time.Minute, 5)
			resendLimiter = service.NewRedisAttemptLimiter(redisClient, "resend:rl:", time.Hour, 3)
		}
		cancel()
	}

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	sessions := service.NewSessionService(sessionStore, sessionTTL)
	codec := service.NewSessionTokenCodec(cfg.SessionSecret)

	credSvc := service.NewCredentialService(logger, accountRepo)
	tokenSvc := service.NewTokenService(logger, tokenRepo)
	codeSvc := service.NewCodeService(logger, codeRepo)
	authSvc := service.NewAuthService(logger, accountRepo, credSvc, tokenSvc, codeSvc, sessions, emailSender, twoFactorLimiter, resendLimiter, cfg.BaseURL)
	photoSvc := service.NewPhotoService(logger, photoRepo, followRepo, notificationRepo, accountRepo)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, codec)
	profileHandler := apihttp.NewProfileHandler(logger, credSvc, authSvc)
	photoHandler := apihttp.NewPhotoHandler(logger, photoSvc)
	router := apihttp.NewRouter(logger, sessions, codec, authHandler, profileHandler, photoHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
