package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthoasis/config"
	"healthoasis/internal/cache"
	"healthoasis/internal/database"
	"healthoasis/internal/router"
	"healthoasis/internal/service"
	"healthoasis/pkg/cloudinary"
	"healthoasis/pkg/payment"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	// the portal reads balances and amounts as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("migrate")
	}
	if err := database.Seed(db); err != nil {
		log.WithError(err).Fatal("seed")
	}

	ctx := context.Background()
	deps := router.Deps{
		DB:       db,
		Cache:    newCache(ctx, cfg, log),
		Payments: newPaymentProvider(cfg, log),
		Log:      log,
	}

	if cfg.Cloudinary.CloudName != "" {
		images, err := cloudinary.NewFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.WithError(err).Fatal("cloudinary")
		}
		deps.Images = images
	} else {
		log.Warn("cloudinary disabled: doctor photo uploads will return 503")
	}

	mailer, err := service.NewSMTPMailer(cfg.SMTP, log)
	if err != nil {
		log.WithError(err).Fatal("smtp")
	}
	if mailer != nil {
		deps.Mailer = mailer
	} else {
		log.Warn("smtp disabled: set SMTP_HOST to email video call invites")
	}

	if fcm := service.NewFCMService(ctx, cfg.Firebase.ServiceAccountPath, log); fcm != nil {
		deps.Push = fcm
		log.Info("push notifications enabled")
	} else {
		log.Warn("push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(cfg, deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// newCache falls back to an in-process cache when Redis is unreachable at
// startup.
func newCache(ctx context.Context, cfg *config.Config, log *logrus.Logger) cache.Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).WithField("addr", cfg.Redis.Addr).Warn("redis unavailable, using in-memory catalog cache")
		_ = rdb.Close()
		return cache.NewMemoryStore()
	}
	log.WithField("addr", cfg.Redis.Addr).Info("redis connected")
	return cache.NewRedisStore(rdb)
}

func newPaymentProvider(cfg *config.Config, log *logrus.Logger) payment.Provider {
	if cfg.Stripe.SecretKey == "" {
		if cfg.IsProduction() {
			log.Fatal("STRIPE_SECRET_KEY is required in production")
		}
		log.Warn("stripe disabled: using stub payment provider")
		return payment.StubProvider{}
	}
	return payment.NewStripeProvider(cfg.Stripe.SecretKey)
}
