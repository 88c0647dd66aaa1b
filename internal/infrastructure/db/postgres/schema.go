package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the tables if they do not exist. Safe to run on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
