package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/simulado-cea/simulado-service/internal/application/admin"
	"github.com/simulado-cea/simulado-service/internal/application/auth"
	"github.com/simulado-cea/simulado-service/internal/application/exam"
	"github.com/simulado-cea/simulado-service/internal/application/payment"
	"github.com/simulado-cea/simulado-service/internal/audit"
	"github.com/simulado-cea/simulado-service/internal/config"
	"github.com/simulado-cea/simulado-service/internal/infrastructure/db/postgres"
	"github.com/simulado-cea/simulado-service/internal/infrastructure/memory"
	"github.com/simulado-cea/simulado-service/internal/infrastructure/mercadopago"
	rabbitmq_pub "github.com/simulado-cea/simulado-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/simulado-cea/simulado-service/internal/infrastructure/redis"
	"github.com/simulado-cea/simulado-service/internal/infrastructure/security"
	"github.com/simulado-cea/simulado-service/internal/infrastructure/storage"
	"github.com/simulado-cea/simulado-service/internal/logger"
	http_handlers "github.com/simulado-cea/simulado-service/internal/transport/http/handlers"
	"github.com/simulado-cea/simulado-service/internal/transport/http/middleware"
	"github.com/simulado-cea/simulado-service/internal/transport/http/response"
	"github.com/simulado-cea/simulado-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (DBCloser, error)

	// EnsureSchema is optional; nil skips migrations.
	EnsureSchema func(ctx context.Context, db *sql.DB) error

	NewRedis func(addr, password string, db int) RedisClient

	NewPublisher func(rabbitURL, exchange string) (Publisher, error)

	NewImageStore func(ctx context.Context, cfg storage.S3Config) (exam.ImageStore, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type DBCloser interface {
	Close() error
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

type Publisher interface {
	admin.EventPublisher
	payment.EventPublisher
}

// sessionStore is what both the auth service and the admin service need from sessions.
type sessionStore interface {
	auth.SessionStore
	admin.SessionRevoker
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) db
	db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	sqlDB, ok := db.(*sql.DB)
	if !ok {
		runCleanup(cleanupFns)
		return nil, nil, errors.New("bootstrap: NewDB did not return *sql.DB")
	}

	if deps.EnsureSchema != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := deps.EnsureSchema(ctx, sqlDB)
		cancel()
		if err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}

	// 2) repos
	authUsers := postgres.NewAuthUserRepo(sqlDB)
	directory := postgres.NewDirectoryRepo(sqlDB)
	payments := postgres.NewPaymentRepo(sqlDB)
	results := postgres.NewExamResultRepo(sqlDB)

	// 3) redis (best-effort)
	var redisCli RedisClient
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-memory sessions and rate limits")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 4) session store + rate limiter (nil limiter: per-instance httprate counters)
	var sessions sessionStore
	var limiter middleware.RateLimiter
	if rc, ok := redisCli.(*redis.Client); ok {
		sessions = redis.NewSessionStore(rc)
		limiter = redis.NewFixedWindowLimiter(rc)
	} else {
		sessions = memory.NewSessionStore()
	}

	// 5) publisher
	var pub Publisher
	if cfg.RabbitURL == "" || deps.NewPublisher == nil {
		logger.Logger.Info().Msg("RABBIT_URL not set; domain events are dropped")
		pub = memory.NewNoopPublisher()
	} else if p, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange); err != nil {
		if !cfg.IsDev() {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
		logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
		pub = memory.NewNoopPublisher()
	} else {
		pub = p
	}

	if c, ok := pub.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 6) object storage (optional)
	var images exam.ImageStore
	if cfg.S3Enabled() && deps.NewImageStore != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		store, err := deps.NewImageStore(ctx, storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    cfg.S3UsePathStyle,
		})
		cancel()
		if err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
		images = store
	} else {
		logger.Logger.Warn().Msg("object storage not configured; question images unavailable")
	}

	// 7) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt signer")
	hasher := security.NewBcryptHasher(12)
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)

	if cfg.AdminAllowList.Empty() {
		logger.Logger.Warn().Msg("ADMIN_ALLOWED_EMAILS is empty; admin access relies on metadata and directory roles only")
	}

	// seed (dev only)
	if cfg.IsDev() {
		postgres.SeedAdmin(context.Background(), authUsers, directory, hasher, cfg.AdminSeedEmail, cfg.AdminSeedPassword)
	}

	// 8) services
	auditLog := audit.New(logger.Logger)

	checker := admin.NewChecker(cfg.AdminAllowList, directory).WithRecorder(auditLog)

	authSvc := auth.NewService(authUsers, directory, hasher, signer, sessions, auth.Config{
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}).WithAudit(auditLog.Event)

	adminSvc := admin.NewService(directory, authUsers, sessions, pub).WithAudit(auditLog.Event)

	gateway, err := mercadopago.NewClient(mercadopago.ClientConfig{
		BaseURL:     cfg.MercadoPagoBaseURL,
		AccessToken: cfg.MercadoPagoAccessToken,
		Timeout:     10 * time.Second,
		MaxRetries:  3,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}
	paymentSvc := payment.NewService(gateway, payments, directory, pub, payment.Config{
		PublicKey: cfg.MercadoPagoPublicKey,
		BaseURL:   cfg.PublicBaseURL,
	}).WithAudit(auditLog.Event)

	examSvc := exam.NewService(results, images, cfg.S3PresignTTL)

	// 9) handlers + middleware
	secureCookies := !cfg.IsDev()
	sessionsMW := middleware.NewTokenSessions(signer)

	authH := http_handlers.NewAuthHandler(authSvc, auditLog, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, secureCookies)
	adminH := http_handlers.NewAdminHandler(adminSvc, checker, sessionsMW)
	paymentH := http_handlers.NewPaymentHandler(paymentSvc)
	examH := http_handlers.NewExamHandler(examSvc)
	healthH := http_handlers.NewHealthHandler(sqlDB)

	rl := func(class middleware.RateClass) router.Middleware {
		if limiter == nil {
			return middleware.LocalRateLimit(class, response.WriteError)
		}
		return middleware.RateLimit(limiter, class, response.WriteError)
	}

	var globalRL router.Middleware
	if cfg.GlobalRateLimit > 0 {
		globalRL = httprate.LimitByIP(cfg.GlobalRateLimit, time.Minute)
	}

	// 10) router
	mux, err := deps.NewRouter(router.Deps{
		Health:   healthH,
		Auth:     authH,
		Admin:    adminH,
		Payments: paymentH,
		Exams:    examH,
		Metrics:  promhttp.Handler(),

		RequestIDMW: middleware.RequestID,
		SecurityMW:  middleware.SecurityHeaders(secureCookies),
		AccessLogMW: middleware.AccessLog,
		MetricsMW:   middleware.Metrics,
		GlobalRLMW:  globalRL,

		JSONMW:         middleware.RequireJSON(response.WriteError),
		AuthMW:         middleware.RequireAuth(sessionsMW, response.WriteError),
		OptionalAuthMW: middleware.Authenticate(sessionsMW),
		AdminPageMW:    middleware.AdminPage(sessionsMW, checker, response.WriteError),
		AdminAPIMW:     middleware.AdminAPI(sessionsMW, checker, response.WriteError),

		RLAuth:    rl(middleware.ClassAuth),
		RLAPI:     rl(middleware.ClassAPI),
		RLPayment: rl(middleware.ClassPayment),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 11) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB: func(addr string, debug bool) (DBCloser, error) {
			return config.NewDB(addr, debug)
		},
		EnsureSchema: postgres.EnsureSchema,
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewPublisher: func(url, exchange string) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(url, exchange)
		},
		NewImageStore: func(ctx context.Context, cfg storage.S3Config) (exam.ImageStore, error) {
			return storage.NewS3Client(ctx, cfg)
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
