// Package config reads the runtime settings of the Verkefnalisti binaries
// from the environment and an optional .env file.
package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/ManiEids/vef2hop2/storage"
)

var errNotPositive = errors.New("must be greater than zero")

// Config holds every setting read by the binaries.
type Config struct {
	Debug      bool
	ListenAddr string
	// AllowOrigins is the CORS allow list.
	AllowOrigins []string

	StorageConnectionString string
	Tables                  storage.Tables
	ChangesQueue            string
	Notifier                storage.NotifierConfig

	RedisConnectionString string
	CacheTTL              time.Duration
	DeduperTTL            time.Duration

	JWTSecret    string
	JWTTTL       time.Duration
	JWKSURL      string
	AuthAudience string
	AuthIssuer   string

	SoftDelete bool
	SeedData   bool
	BcryptCost int

	// APIURL is the base URL used by the CLI. Empty means local only.
	APIURL string
	// LocalStore selects the local backend: memory, file:<dir> or redis.
	LocalStore string
}

// Load reads files (default .env) into the environment, ignoring missing
// files, and then builds a Config from it.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment.
func FromEnv() (Config, error) {
	e := &env{}
	def := storage.DefaultNotifierConfig()
	cfg := Config{
		Debug:        e.envBool("DEBUG", false),
		ListenAddr:   listenAddr(),
		AllowOrigins: envList("CORS_ORIGINS", []string{"*"}),

		StorageConnectionString: envString("STORAGE_CONNECTION_STRING", ""),
		Tables: storage.Tables{
			Tasks:      envString("TASKS_TABLE", "tasks"),
			Categories: envString("CATEGORIES_TABLE", "categories"),
			Tags:       envString("TAGS_TABLE", "tags"),
			Users:      envString("USERS_TABLE", "users"),
		},
		ChangesQueue: envString("CHANGES_QUEUE", ""),
		Notifier: storage.NotifierConfig{
			Workers:        e.envInt("NOTIFY_WORKERS", def.Workers),
			Buffer:         e.envInt("NOTIFY_BUFFER", def.Buffer),
			SendTimeout:    e.envDur("NOTIFY_TIMEOUT", def.SendTimeout),
			HandoffTimeout: e.envDur("NOTIFY_HANDOFF_TIMEOUT", def.HandoffTimeout),
		},

		RedisConnectionString: envString("REDIS_CONNECTION_STRING", ""),
		CacheTTL:              e.envDur("CACHE_TTL", 5*time.Minute),
		DeduperTTL:            e.envDur("DEDUPER_TTL", 24*time.Hour),

		JWTSecret:    envString("JWT_SECRET", ""),
		JWTTTL:       e.envDur("JWT_TTL", 24*time.Hour),
		JWKSURL:      envString("AUTH_JWKS_URL", ""),
		AuthAudience: envString("AUTH_AUDIENCE", ""),
		AuthIssuer:   envString("AUTH_ISSUER", ""),

		SoftDelete: e.envBool("TASKS_SOFT_DELETE", false),
		SeedData:   e.envBool("SEED_DATA", true),
		BcryptCost: e.envInt("BCRYPT_COST", bcrypt.DefaultCost),

		APIURL:     envString("API_URL", ""),
		LocalStore: envString("LOCAL_STORE", "memory"),
	}
	if e.err != nil {
		return Config{}, e.err
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("invalid BCRYPT_COST %d: must be between %d and %d", cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return cfg, nil
}

func listenAddr() string {
	if v := envString("LISTEN_ADDR", ""); v != "" {
		return v
	}
	if v := envString("FUNCTIONS_CUSTOMHANDLER_PORT", ""); v != "" {
		return ":" + v
	}
	return ":" + envString("PORT", "8080")
}

// RedisOptions parses a redis:// URL or an Azure style
// "host:port,password=...,ssl=True" connection string.
func RedisOptions(conn string) (*redis.Options, error) {
	if conn == "" {
		return nil, errors.New("empty redis connection string")
	}
	if opts, err := redis.ParseURL(conn); err == nil {
		return opts, nil
	}
	parts := strings.Split(conn, ",")
	if strings.Contains(parts[0], "=") || strings.Contains(parts[0], "://") {
		return nil, fmt.Errorf("invalid redis connection string %q", conn)
	}
	opts := &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.EqualFold(kv[1], "true") {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts, nil
}
