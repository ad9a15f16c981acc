package repository

import (
	"context"
	"database/sql"
	"errors"

	"ajuda-api/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type UsuarioRepository interface {
	ListUsuarios(ctx context.Context) ([]*models.Usuario, error)
	GetUsuarioByID(ctx context.Context, id int64) (*models.Usuario, error)
	CreateUsuario(ctx context.Context, usuario *models.Usuario) error
	UpdateUsuario(ctx context.Context, usuario *models.Usuario) (bool, error)
	DeleteUsuario(ctx context.Context, id int64) (bool, error)
}

type usuarioRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewUsuarioRepository(db *sqlx.DB, logger *zap.Logger) UsuarioRepository {
	return &usuarioRepository{db: db, logger: logger}
}

func (r *usuarioRepository) ListUsuarios(ctx context.Context) ([]*models.Usuario, error) {
	var usuarios []*models.Usuario
	query := `SELECT id, nome, email, telefone, eh_voluntario, created_at FROM usuarios ORDER BY id`
	if err := r.db.SelectContext(ctx, &usuarios, query); err != nil {
		return nil, err
	}
	return usuarios, nil
}

func (r *usuarioRepository) GetUsuarioByID(ctx context.Context, id int64) (*models.Usuario, error) {
	var usuario models.Usuario
	query := `SELECT id, nome, email, telefone, eh_voluntario, created_at FROM usuarios WHERE id = $1`
	err := r.db.GetContext(ctx, &usuario, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &usuario, nil
}

func (r *usuarioRepository) CreateUsuario(ctx context.Context, usuario *models.Usuario) error {
	query := `INSERT INTO usuarios (nome, email, telefone, eh_voluntario)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.db.QueryRowxContext(ctx, query, usuario.Nome, usuario.Email, usuario.Telefone, usuario.EhVoluntario).
		Scan(&usuario.ID, &usuario.CreatedAt)
}

func (r *usuarioRepository) UpdateUsuario(ctx context.Context, usuario *models.Usuario) (bool, error) {
	query := `UPDATE usuarios SET nome = $1, email = $2, telefone = $3, eh_voluntario = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, usuario.Nome, usuario.Email, usuario.Telefone, usuario.EhVoluntario, usuario.ID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *usuarioRepository) DeleteUsuario(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM usuarios WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
