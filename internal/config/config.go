package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName       = "Ordoo"
	defaultAppEnv        = "development"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultShutdownDelay = 10 * time.Second
	defaultSessionTTL    = 24 * time.Hour
	defaultOTPTTL        = 10 * time.Minute
	defaultResetTTL      = time.Hour
	defaultBcryptCost    = 12
	defaultChunkTTL      = time.Hour
	defaultFrontendURL   = "http://localhost:8100"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL string
	RedisURL    string

	// JWTSecret signs session tokens. A missing secret is a load error so a
	// misconfigured process never starts.
	JWTSecret     string
	SessionTTL    time.Duration
	OTPTTL        time.Duration
	ResetTokenTTL time.Duration
	BcryptCost    int

	// FrontendURL is the base for password-reset links in outbound mail.
	FrontendURL string

	UploadChunkTTL time.Duration

	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string

	ShutdownPeriod time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		SessionTTL:     defaultSessionTTL,
		OTPTTL:         defaultOTPTTL,
		ResetTokenTTL:  defaultResetTTL,
		BcryptCost:     defaultBcryptCost,
		FrontendURL:    getEnv("FRONTEND_URL", defaultFrontendURL),
		UploadChunkTTL: defaultChunkTTL,
		S3Bucket:       getEnv("S3_BUCKET", "ordoo-media"),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		ShutdownPeriod: defaultShutdownDelay,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", cfg.SessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.OTPTTL, err = getDuration("OTP_TTL", cfg.OTPTTL); err != nil {
		return Config{}, err
	}
	if cfg.ResetTokenTTL, err = getDuration("RESET_TOKEN_TTL", cfg.ResetTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.UploadChunkTTL, err = getDuration("UPLOAD_CHUNK_TTL", cfg.UploadChunkTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = getDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		cfg.BcryptCost = cost
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
