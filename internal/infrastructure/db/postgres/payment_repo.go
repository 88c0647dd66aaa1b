package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

func (r *PaymentRepo) Upsert(ctx context.Context, p domain.Payment) error {
	if p.PaymentID == "" {
		return domain.ErrMissingField("payment_id")
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}

	var valor sql.NullFloat64
	if p.Valor != 0 {
		valor = sql.NullFloat64{Float64: p.Valor, Valid: true}
	}
	var raw any
	if len(p.RawData) > 0 {
		raw = string(p.RawData)
	}

	const q = `
INSERT INTO pagamentos (payment_id, user_id, status, status_detail, valor, moeda, metodo, tipo, raw_data, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (payment_id) DO UPDATE SET
    user_id = EXCLUDED.user_id,
    status = EXCLUDED.status,
    status_detail = EXCLUDED.status_detail,
    valor = EXCLUDED.valor,
    moeda = EXCLUDED.moeda,
    metodo = EXCLUDED.metodo,
    tipo = EXCLUDED.tipo,
    raw_data = EXCLUDED.raw_data,
    updated_at = EXCLUDED.updated_at;
`
	_, err := r.db.ExecContext(ctx, q,
		p.PaymentID, p.UserID, p.Status, nullString(p.StatusDetail), valor,
		nullString(p.Moeda), nullString(p.Metodo), nullString(p.Tipo), raw, p.UpdatedAt,
	)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
