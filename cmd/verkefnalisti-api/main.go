package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/ManiEids/vef2hop2/api"
	"github.com/ManiEids/vef2hop2/auth"
	"github.com/ManiEids/vef2hop2/config"
	"github.com/ManiEids/vef2hop2/localstore"
	"github.com/ManiEids/vef2hop2/service"
	"github.com/ManiEids/vef2hop2/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := log.New()
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		logger.SetLevel(log.DebugLevel)
	}

	var rc *redis.Client
	if cfg.RedisConnectionString != "" {
		opts, err := config.RedisOptions(cfg.RedisConnectionString)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		rc = redis.NewClient(opts)
		defer rc.Close()
	}

	var store service.Store
	if cfg.StorageConnectionString != "" {
		azure, err := storage.New(cfg.StorageConnectionString, cfg.Tables)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		store = azure
		if rc != nil {
			store = storage.NewCache(store, rc, cfg.CacheTTL)
		}
		logger.WithField("tables", cfg.Tables).Info("using table storage")
	} else {
		kv, err := localstore.Open(cfg.LocalStore, rc)
		if err != nil {
			log.Fatalf("local store: %v", err)
		}
		store = localstore.NewStore(kv)
		logger.WithField("store", cfg.LocalStore).Info("using local store")
	}

	var notifier *storage.Notifier
	if cfg.ChangesQueue != "" {
		if cfg.StorageConnectionString == "" {
			log.Fatal("CHANGES_QUEUE requires STORAGE_CONNECTION_STRING")
		}
		q, err := storage.NewQueueClient(cfg.StorageConnectionString, cfg.ChangesQueue)
		if err != nil {
			log.Fatalf("queue: %v", err)
		}
		notifier = storage.NewNotifier(q, cfg.Notifier, logger)
		store = storage.NewNotifying(store, notifier)
	}

	tokens, err := newTokens(cfg)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	svc := service.New(store, tokens, service.Options{
		SoftDelete:   cfg.SoftDelete,
		PasswordCost: cfg.BcryptCost,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SeedData {
		if err := svc.Seed(ctx); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	var deduper api.Deduper
	if rc != nil {
		deduper = api.NewRedisDeduper(rc, cfg.DeduperTTL)
	}

	e := api.NewServer(api.ServerOptions{AllowOrigins: cfg.AllowOrigins, Debug: cfg.Debug})
	api.Register(e, svc, api.NewAuthenticator(tokens), deduper, logger)

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown")
	}
	if notifier != nil {
		notifier.Close()
	}
}

// newTokens verifies against a JWKS endpoint when AUTH_JWKS_URL is set and
// otherwise signs its own tokens with JWT_SECRET.
func newTokens(cfg config.Config) (*auth.Tokens, error) {
	if cfg.JWKSURL != "" {
		if cfg.AuthAudience == "" {
			return nil, errors.New("AUTH_AUDIENCE is required with AUTH_JWKS_URL")
		}
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{RefreshInterval: time.Hour})
		if err != nil {
			return nil, err
		}
		return auth.NewJWKSTokens(jwks, cfg.AuthAudience, cfg.AuthIssuer), nil
	}
	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn("JWT_SECRET not set, tokens will not survive a restart")
	}
	return auth.NewTokens([]byte(secret), cfg.JWTTTL, cfg.AuthAudience, cfg.AuthIssuer), nil
}
