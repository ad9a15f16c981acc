package repository

import (
	"context"
	"database/sql"
	"errors"

	"ajuda-api/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type TipoAjudaRepository interface {
	ListTiposAjuda(ctx context.Context) ([]*models.TipoAjuda, error)
	GetTipoAjudaByID(ctx context.Context, id int64) (*models.TipoAjuda, error)
	CreateTipoAjuda(ctx context.Context, tipo *models.TipoAjuda) error
	UpdateTipoAjuda(ctx context.Context, tipo *models.TipoAjuda) (bool, error)
	DeleteTipoAjuda(ctx context.Context, id int64) (bool, error)
}

type tipoAjudaRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewTipoAjudaRepository(db *sqlx.DB, logger *zap.Logger) TipoAjudaRepository {
	return &tipoAjudaRepository{db: db, logger: logger}
}

func (r *tipoAjudaRepository) ListTiposAjuda(ctx context.Context) ([]*models.TipoAjuda, error) {
	var tipos []*models.TipoAjuda
	query := `SELECT id, nome, descricao FROM tipos_ajuda ORDER BY id`
	if err := r.db.SelectContext(ctx, &tipos, query); err != nil {
		return nil, err
	}
	return tipos, nil
}

func (r *tipoAjudaRepository) GetTipoAjudaByID(ctx context.Context, id int64) (*models.TipoAjuda, error) {
	var tipo models.TipoAjuda
	query := `SELECT id, nome, descricao FROM tipos_ajuda WHERE id = $1`
	err := r.db.GetContext(ctx, &tipo, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tipo, nil
}

func (r *tipoAjudaRepository) CreateTipoAjuda(ctx context.Context, tipo *models.TipoAjuda) error {
	query := `INSERT INTO tipos_ajuda (nome, descricao) VALUES ($1, $2) RETURNING id`
	return r.db.QueryRowxContext(ctx, query, tipo.Nome, tipo.Descricao).Scan(&tipo.ID)
}

func (r *tipoAjudaRepository) UpdateTipoAjuda(ctx context.Context, tipo *models.TipoAjuda) (bool, error) {
	query := `UPDATE tipos_ajuda SET nome = $1, descricao = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, tipo.Nome, tipo.Descricao, tipo.ID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *tipoAjudaRepository) DeleteTipoAjuda(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tipos_ajuda WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
