package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ajuda-api/internal/models"
	"ajuda-api/internal/triage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// PedidoFilter narrows ListPedidos. Zero values mean "no filter".
type PedidoFilter struct {
	TriageStatus string
	TipoAjudaID  int64
}

// PedidoRepository covers the pedido CRUD surface plus the narrow store
// facade the triage pipeline writes through (triage.Store, triage.PendingLister).
type PedidoRepository interface {
	ListPedidos(ctx context.Context, filter PedidoFilter) ([]*models.PedidoAjuda, error)
	GetPedidoByID(ctx context.Context, id int64) (*models.PedidoAjuda, error)
	CreatePedido(ctx context.Context, pedido *models.PedidoAjuda) error
	UpdatePedido(ctx context.Context, pedido *models.PedidoAjuda) (bool, error)
	DeletePedido(ctx context.Context, id int64) (bool, error)

	GetFeatures(ctx context.Context, pedidoID int64) (triage.FeatureVector, error)
	UpdateUrgency(ctx context.Context, pedidoID int64, result triage.UrgencyResult) error
	MarkTriageFailed(ctx context.Context, pedidoID int64) error
	ListPendingTriage(ctx context.Context, olderThan time.Time, limit int) ([]triage.PendingPedido, error)
}

type pedidoRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPedidoRepository(db *sqlx.DB, logger *zap.Logger) PedidoRepository {
	return &pedidoRepository{db: db, logger: logger}
}

var pedidoColumns = []string{
	"id", "usuario_id", "tipo_ajuda_id", "descricao",
	"criancas_no_local", "pessoas_no_local", "dias_sem_ajuda", "voluntarios_proximos",
	"nivel_urgencia", "urgencia_scores", "triage_status", "created_at",
}

func (r *pedidoRepository) ListPedidos(ctx context.Context, filter PedidoFilter) ([]*models.PedidoAjuda, error) {
	builder := sq.Select(pedidoColumns...).
		From("pedidos_ajuda").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.TriageStatus != "" {
		builder = builder.Where(sq.Eq{"triage_status": filter.TriageStatus})
	}
	if filter.TipoAjudaID > 0 {
		builder = builder.Where(sq.Eq{"tipo_ajuda_id": filter.TipoAjudaID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building pedido list query: %w", err)
	}

	var pedidos []*models.PedidoAjuda
	if err := r.db.SelectContext(ctx, &pedidos, query, args...); err != nil {
		return nil, err
	}
	return pedidos, nil
}

func (r *pedidoRepository) GetPedidoByID(ctx context.Context, id int64) (*models.PedidoAjuda, error) {
	var pedido models.PedidoAjuda
	query := `SELECT id, usuario_id, tipo_ajuda_id, descricao, criancas_no_local, pessoas_no_local,
	                 dias_sem_ajuda, voluntarios_proximos, nivel_urgencia, urgencia_scores,
	                 triage_status, created_at
	          FROM pedidos_ajuda WHERE id = $1`
	err := r.db.GetContext(ctx, &pedido, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pedido, nil
}

func (r *pedidoRepository) CreatePedido(ctx context.Context, pedido *models.PedidoAjuda) error {
	query := `INSERT INTO pedidos_ajuda
	            (usuario_id, tipo_ajuda_id, descricao, criancas_no_local, pessoas_no_local,
	             dias_sem_ajuda, voluntarios_proximos, triage_status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	return r.db.QueryRowxContext(ctx, query,
		pedido.UsuarioID, pedido.TipoAjudaID, pedido.Descricao,
		pedido.CriancasNoLocal, pedido.PessoasNoLocal, pedido.DiasSemAjuda,
		pedido.VoluntariosProximos, models.TriagePending).
		Scan(&pedido.ID, &pedido.CreatedAt)
}

// UpdatePedido rewrites the editable fields and resets triage to pending so
// the pedido is reclassified against its new features.
func (r *pedidoRepository) UpdatePedido(ctx context.Context, pedido *models.PedidoAjuda) (bool, error) {
	query := `UPDATE pedidos_ajuda
	          SET usuario_id = $1, tipo_ajuda_id = $2, descricao = $3, criancas_no_local = $4,
	              pessoas_no_local = $5, dias_sem_ajuda = $6, voluntarios_proximos = $7,
	              nivel_urgencia = NULL, urgencia_scores = NULL, triage_status = $8
	          WHERE id = $9`
	result, err := r.db.ExecContext(ctx, query,
		pedido.UsuarioID, pedido.TipoAjudaID, pedido.Descricao,
		pedido.CriancasNoLocal, pedido.PessoasNoLocal, pedido.DiasSemAjuda,
		pedido.VoluntariosProximos, models.TriagePending, pedido.ID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *pedidoRepository) DeletePedido(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pedidos_ajuda WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *pedidoRepository) GetFeatures(ctx context.Context, pedidoID int64) (triage.FeatureVector, error) {
	var features triage.FeatureVector
	query := `SELECT tipo_ajuda_id, criancas_no_local, pessoas_no_local, dias_sem_ajuda, voluntarios_proximos
	          FROM pedidos_ajuda WHERE id = $1`
	err := r.db.QueryRowxContext(ctx, query, pedidoID).Scan(
		&features.TipoAjudaID, &features.CriancasNoLocal, &features.PessoasNoLocal,
		&features.DiasSemAjuda, &features.VoluntariosProximos)
	if errors.Is(err, sql.ErrNoRows) {
		return triage.FeatureVector{}, triage.ErrNotFound
	}
	if err != nil {
		return triage.FeatureVector{}, err
	}
	return features, nil
}

// UpdateUrgency persists label, scores and the triaged status in a single
// statement, so the urgency update is all-or-nothing.
func (r *pedidoRepository) UpdateUrgency(ctx context.Context, pedidoID int64, result triage.UrgencyResult) error {
	scores, err := json.Marshal(result.Scores)
	if err != nil {
		return fmt.Errorf("encoding urgency scores: %w", err)
	}

	query := `UPDATE pedidos_ajuda
	          SET nivel_urgencia = $1, urgencia_scores = $2, triage_status = $3
	          WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, result.Label, string(scores), models.TriageTriaged, pedidoID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return triage.ErrNotFound
	}
	return nil
}

func (r *pedidoRepository) MarkTriageFailed(ctx context.Context, pedidoID int64) error {
	query := `UPDATE pedidos_ajuda SET triage_status = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, models.TriageFailed, pedidoID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return triage.ErrNotFound
	}
	return nil
}

func (r *pedidoRepository) ListPendingTriage(ctx context.Context, olderThan time.Time, limit int) ([]triage.PendingPedido, error) {
	query, args, err := sq.Select("id", "tipo_ajuda_id", "criancas_no_local", "pessoas_no_local",
		"dias_sem_ajuda", "voluntarios_proximos").
		From("pedidos_ajuda").
		Where(sq.Eq{"triage_status": models.TriagePending}).
		Where(sq.Lt{"created_at": olderThan}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building pending triage query: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []triage.PendingPedido
	for rows.Next() {
		var p triage.PendingPedido
		if err := rows.Scan(&p.ID, &p.Features.TipoAjudaID, &p.Features.CriancasNoLocal,
			&p.Features.PessoasNoLocal, &p.Features.DiasSemAjuda, &p.Features.VoluntariosProximos); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}
