package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

type usuarioRow struct {
	ID              string
	Nome            string
	Email           string
	Whatsapp        sql.NullString
	Perfil          sql.NullString
	Papel           sql.NullString
	Tipo            sql.NullString
	Status          string
	DataCadastro    time.Time
	DataAtualizacao time.Time
}

func (r usuarioRow) toDomain() domain.DirectoryRecord {
	return domain.DirectoryRecord{
		ID:              r.ID,
		Nome:            r.Nome,
		Email:           r.Email,
		Whatsapp:        r.Whatsapp.String,
		Perfil:          r.Perfil.String,
		Papel:           r.Papel.String,
		Tipo:            r.Tipo.String,
		Status:          r.Status,
		DataCadastro:    r.DataCadastro,
		DataAtualizacao: r.DataAtualizacao,
	}
}

const usuarioColumns = `id, nome, email, whatsapp, perfil, papel, tipo, status, data_cadastro, data_atualizacao`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUsuario(s rowScanner) (usuarioRow, error) {
	var ur usuarioRow
	err := s.Scan(&ur.ID, &ur.Nome, &ur.Email, &ur.Whatsapp, &ur.Perfil, &ur.Papel, &ur.Tipo,
		&ur.Status, &ur.DataCadastro, &ur.DataAtualizacao)
	return ur, err
}

// DirectoryRepo stores application user records (table usuarios).
type DirectoryRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewDirectoryRepo(db *sql.DB) *DirectoryRepo {
	return &DirectoryRepo{db: db, now: time.Now}
}

// FindByID returns found=false with a nil error when no row exists.
func (r *DirectoryRepo) FindByID(ctx context.Context, id string) (domain.DirectoryRecord, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.DirectoryRecord{}, false, nil
	}

	const q = `SELECT ` + usuarioColumns + ` FROM usuarios WHERE id = $1 LIMIT 1;`
	ur, err := scanUsuario(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DirectoryRecord{}, false, nil
		}
		return domain.DirectoryRecord{}, false, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain(), true, nil
}

func (r *DirectoryRepo) Insert(ctx context.Context, rec domain.DirectoryRecord) error {
	if strings.TrimSpace(rec.ID) == "" {
		return domain.ErrMissingField("id")
	}
	if rec.Status == "" {
		rec.Status = string(domain.StatusAtivo)
	}
	now := r.now().UTC()
	if rec.DataCadastro.IsZero() {
		rec.DataCadastro = now
	}
	if rec.DataAtualizacao.IsZero() {
		rec.DataAtualizacao = rec.DataCadastro
	}

	const q = `
INSERT INTO usuarios (id, nome, email, whatsapp, perfil, papel, tipo, status, data_cadastro, data_atualizacao)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.Nome, normalizeEmail(rec.Email), nullString(rec.Whatsapp),
		nullString(rec.Perfil), nullString(rec.Papel), nullString(rec.Tipo),
		rec.Status, rec.DataCadastro, rec.DataAtualizacao,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists()
		}
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

// UpsertRole creates the row or sets papel on an existing one.
func (r *DirectoryRepo) UpsertRole(ctx context.Context, rec domain.DirectoryRecord) error {
	now := r.now().UTC()
	const q = `
INSERT INTO usuarios (id, nome, email, papel, status, data_cadastro, data_atualizacao)
VALUES ($1, $2, $3, $4, 'ativo', $5, $5)
ON CONFLICT (id) DO UPDATE SET papel = EXCLUDED.papel, data_atualizacao = EXCLUDED.data_atualizacao;
`
	if _, err := r.db.ExecContext(ctx, q, rec.ID, rec.Nome, normalizeEmail(rec.Email), rec.Papel, now); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

// List returns all records, newest registration first.
func (r *DirectoryRepo) List(ctx context.Context) ([]domain.DirectoryRecord, error) {
	const q = `SELECT ` + usuarioColumns + ` FROM usuarios ORDER BY data_cadastro DESC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := make([]domain.DirectoryRecord, 0)
	for rows.Next() {
		ur, err := scanUsuario(rows)
		if err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		out = append(out, ur.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (r *DirectoryRepo) Stats(ctx context.Context) (domain.DirectoryStats, error) {
	const q = `
SELECT
    (SELECT count(*) FROM usuarios),
    (SELECT count(*) FROM usuarios WHERE lower(status) = 'ativo'),
    (SELECT count(*) FROM simulados_respostas);
`
	var st domain.DirectoryStats
	if err := r.db.QueryRowContext(ctx, q).Scan(&st.TotalUsuarios, &st.UsuariosAtivos, &st.TotalSimulados); err != nil {
		return domain.DirectoryStats{}, domain.ErrDBUnavailable(err)
	}
	return st, nil
}

func (r *DirectoryRepo) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) (domain.DirectoryRecord, error) {
	const q = `
UPDATE usuarios
SET status = $2, data_atualizacao = $3
WHERE id = $1
RETURNING ` + usuarioColumns + `;
`
	ur, err := scanUsuario(r.db.QueryRowContext(ctx, q, id, string(status), r.now().UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DirectoryRecord{}, domain.ErrUserNotFound()
		}
		return domain.DirectoryRecord{}, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain(), nil
}

// SetStatus updates the status without returning the row; a missing row is reported.
func (r *DirectoryRepo) SetStatus(ctx context.Context, id string, status domain.UserStatus) error {
	_, err := r.UpdateStatus(ctx, id, status)
	return err
}

func (r *DirectoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM usuarios WHERE id = $1;`, id)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}
