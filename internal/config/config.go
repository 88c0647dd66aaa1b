package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

// ConfigurationError reports a missing or malformed setting detected at startup.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

func missing(key string) error {
	return &ConfigurationError{Key: key, Reason: "missing required env var"}
}

type Config struct {
	//App
	Env string // dev / staging / prod
	//HTTP
	HTTPAddr      string
	PublicBaseURL string
	//Auth / Security
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Admin access. Parsed once; an empty list grants nothing by itself.
	AdminAllowList    domain.AdminAllowList
	AdminSeedEmail    string
	AdminSeedPassword string

	// Infrastructure
	DBAddr         string
	DBDebug        bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RabbitURL      string
	RabbitExchange string

	// Payment gateway
	MercadoPagoAccessToken string
	MercadoPagoPublicKey   string
	MercadoPagoBaseURL     string

	// Question images
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string
	S3UsePathStyle    bool
	S3PresignTTL      time.Duration

	// Requests per minute per IP across all routes, 0 disables.
	GlobalRateLimit int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

func (c *Config) IsDev() bool { return c.Env == "dev" }

// S3Enabled reports whether question images can be served.
func (c *Config) S3Enabled() bool { return c.S3Endpoint != "" || c.S3AccessKeyID != "" }

func Load() (*Config, error) {
	cfg := &Config{
		Env:            getEnv("ENV", "dev"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		PublicBaseURL:  strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		JWTIssuer:      getEnv("JWT_ISSUER", "simulado-service"),
		AdminAllowList: domain.ParseAdminAllowList(os.Getenv("ADMIN_ALLOWED_EMAILS")),

		AdminSeedEmail:    os.Getenv("ADMIN_SEED_EMAIL"),
		AdminSeedPassword: os.Getenv("ADMIN_SEED_PASSWORD"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		RabbitExchange: getEnv("RABBIT_EXCHANGE", "simulado.events"),

		MercadoPagoPublicKey: os.Getenv("MERCADOPAGO_PUBLIC_KEY"),
		MercadoPagoBaseURL:   strings.TrimRight(getEnv("MERCADOPAGO_BASE_URL", "https://api.mercadopago.com"), "/"),

		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3Bucket:          getEnv("S3_BUCKET", "questoes-images"),
	}

	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, missing("JWT_SECRET")
	}

	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" {
		return nil, missing("DB_ADDR")
	}
	if !strings.HasPrefix(cfg.DBAddr, "postgres://") && !strings.HasPrefix(cfg.DBAddr, "postgresql://") {
		return nil, &ConfigurationError{Key: "DB_ADDR", Reason: "must be a postgres:// URL"}
	}

	cfg.MercadoPagoAccessToken = os.Getenv("MERCADOPAGO_ACCESS_TOKEN")
	if cfg.MercadoPagoAccessToken == "" {
		return nil, missing("MERCADOPAGO_ACCESS_TOKEN")
	}

	var err error
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.S3PresignTTL, err = getDuration("S3_PRESIGN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DBDebug, err = getBool("DB_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.S3UsePathStyle, err = getBool("S3_USE_PATH_STYLE", true); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.GlobalRateLimit, err = getInt("RATE_LIMIT_GLOBAL", 300); err != nil {
		return nil, err
	}

	//Timeout values are optional and have a default value if not
	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &ConfigurationError{Key: key, Reason: fmt.Sprintf("invalid duration %q: %v", v, err)}
	}
	return d, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &ConfigurationError{Key: key, Reason: fmt.Sprintf("invalid bool %q", v)}
	}
	return b, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &ConfigurationError{Key: key, Reason: fmt.Sprintf("invalid non-negative int %q", v)}
	}
	return n, nil
}
