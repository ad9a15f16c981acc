package repository

import (
	"context"
	"database/sql"
	"errors"

	"ajuda-api/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type OperadorRepository interface {
	GetOperadorByUsername(ctx context.Context, username string) (*models.Operador, error)
	CreateOperador(ctx context.Context, operador *models.Operador) error
	CountOperadores(ctx context.Context) (int, error)
}

type operadorRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewOperadorRepository(db *sqlx.DB, logger *zap.Logger) OperadorRepository {
	return &operadorRepository{db: db, logger: logger}
}

func (r *operadorRepository) GetOperadorByUsername(ctx context.Context, username string) (*models.Operador, error) {
	var operador models.Operador
	query := `SELECT id, username, password_hash, created_at FROM operadores WHERE username = $1`
	err := r.db.GetContext(ctx, &operador, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &operador, nil
}

func (r *operadorRepository) CreateOperador(ctx context.Context, operador *models.Operador) error {
	query := `INSERT INTO operadores (username, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	return r.db.QueryRowxContext(ctx, query, operador.Username, operador.PasswordHash).
		Scan(&operador.ID, &operador.CreatedAt)
}

func (r *operadorRepository) CountOperadores(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM operadores`); err != nil {
		return 0, err
	}
	return count, nil
}
