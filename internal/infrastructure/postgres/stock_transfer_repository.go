package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

// StockTransferRepo implementación de traslados sobre PostgreSQL.
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador de traslados.
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

const transferColumns = `id, product_id, from_warehouse_id, to_warehouse_id, quantity, status,
	COALESCE(notes, ''), COALESCE(actor, ''), created_at, completed_at`

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var t entity.StockTransfer
	if err := row.Scan(&t.ID, &t.ProductID, &t.FromWarehouseID, &t.ToWarehouseID, &t.Quantity, &t.Status,
		&t.Notes, &t.Actor, &t.CreatedAt, &t.CompletedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create persiste el traslado con su estado inicial.
func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (id, product_id, from_warehouse_id, to_warehouse_id, quantity, status,
			notes, actor, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ProductID, t.FromWarehouseID, t.ToWarehouseID, t.Quantity, t.Status,
		t.Notes, t.Actor, t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return persistErr("insert transfer", err)
	}
	return nil
}

// GetByID obtiene un traslado. nil si no existe.
func (r *StockTransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea el traslado hasta el fin de la tx.
func (r *StockTransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockTransferRepo) get(ctx context.Context, query, id string) (*entity.StockTransfer, error) {
	if err := checkIDs("transfer_id", id); err != nil {
		return nil, err
	}
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistErr("get transfer", err)
	}
	return t, nil
}

// UpdateStatus cambia el estado (y la fecha de completado, si aplica) y registra quién lo hizo.
func (r *StockTransferRepo) UpdateStatus(ctx context.Context, id, status, actor string, completedAt *time.Time) error {
	if err := checkIDs("transfer_id", id); err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE stock_transfers
		 SET status = $2, completed_at = $3, actor = COALESCE(NULLIF($4, ''), actor)
		 WHERE id = $1`,
		id, status, completedAt, actor)
	if err != nil {
		return persistErr("update transfer status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFoundError("traslado", id)
	}
	return nil
}
