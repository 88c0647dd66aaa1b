package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	pkgctx "github.com/simulado-cea/simulado-service/internal/pkg/context"
)

const serviceName = "simulado-service"

var Logger zerolog.Logger

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter configures the package logger from LOG_LEVEL (default info)
// and LOG_FORMAT ("json" or "console", default console).
func InitWithWriter(w io.Writer) {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if os.Getenv("LOG_FORMAT") != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).With().Timestamp().Str("service", serviceName)
	if level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	Logger = ctx.Logger().Level(level)

	zlog.Logger = Logger
}

// WithCtx returns the package logger enriched with the request id and client
// address carried by ctx.
func WithCtx(ctx context.Context) *zerolog.Logger {
	l := Logger
	rid, ip := pkgctx.GetRequestID(ctx), pkgctx.GetClientIP(ctx)
	if rid == "" && ip == "" {
		return &l
	}

	c := l.With()
	if rid != "" {
		c = c.Str("request_id", rid)
	}
	if ip != "" {
		c = c.Str("client_ip", ip)
	}
	l = c.Logger()
	return &l
}

// Component returns a logger tagged with the subsystem name, for code that
// runs outside a request (startup, seeding, background retries).
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
