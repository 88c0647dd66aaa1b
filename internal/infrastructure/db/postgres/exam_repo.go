package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

type ExamResultRepo struct {
	db *sql.DB
}

func NewExamResultRepo(db *sql.DB) *ExamResultRepo {
	return &ExamResultRepo{db: db}
}

func (r *ExamResultRepo) Insert(ctx context.Context, res domain.ExamResult) error {
	respostas, err := marshalMeta(res.Respostas)
	if err != nil {
		return domain.ErrInvalidField("respostas", "not serializable")
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}

	const q = `
INSERT INTO simulados_respostas
    (user_id, simulado_numero, acertos, total_questoes, tempo_gasto_segundos, finalizado_automaticamente, respostas, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err = r.db.ExecContext(ctx, q,
		res.UserID, res.SimuladoNumero, res.Acertos, res.TotalQuestoes,
		res.TempoGastoSegundos, res.FinalizadoAutomaticamente, string(respostas), res.CreatedAt,
	)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
