package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/simulado-cea/simulado-service/internal/logger"
)

const (
	dbPingTimeout  = 3 * time.Second
	dbStartupLimit = 15 * time.Second
)

var errEmptyDSN = errors.New("empty DB DSN")

// NewDB opens the pgx pool and waits for postgres to accept connections.
// Compose starts the database alongside the service, so the first pings
// are retried with exponential backoff until dbStartupLimit elapses.
func NewDB(dsn string, debug bool) (*sql.DB, error) {
	return openDB(dsn, debug, newStartupBackoff)
}

func newStartupBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = dbStartupLimit
	return b
}

func openDB(dsn string, debug bool, newBO func() backoff.BackOff) (*sql.DB, error) {
	if dsn == "" {
		return nil, errEmptyDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	configurePool(db)

	lg := logger.Component("db")
	attempt := 0
	ping := func() error {
		attempt++
		ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
		defer cancel()
		err := db.PingContext(ctx)
		if err != nil {
			lg.Warn().Err(err).Int("attempt", attempt).Msg("db not ready")
		}
		return err
	}
	if err := backoff.Retry(ping, newBO()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db after %d attempts: %w", attempt, err)
	}

	if debug {
		logServerInfo(db)
	}
	return db, nil
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(time.Hour)
}

func logServerInfo(db *sql.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	var who, dbname, ver string
	row := db.QueryRowContext(ctx, "SELECT current_user, current_database(), current_setting('server_version')")
	if err := row.Scan(&who, &dbname, &ver); err != nil {
		logger.Logger.Debug().Err(err).Msg("db info unavailable")
		return
	}
	logger.Logger.Debug().
		Str("user", who).
		Str("db", dbname).
		Str("version", ver).
		Msg("db connected")
}
