package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.StockLedgerRepository = (*StockLedgerRepo)(nil)

// StockLedgerRepo implementación del libro de stock sobre PostgreSQL. Solo inserta; nunca actualiza ni borra.
type StockLedgerRepo struct {
	q Querier
}

// NewStockLedgerRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewStockLedgerRepository(q Querier) *StockLedgerRepo {
	return &StockLedgerRepo{q: q}
}

// Append registra una entrada. warehouse_id NULL cuando la entrada es agregada.
func (r *StockLedgerRepo) Append(ctx context.Context, e *entity.StockLedgerEntry) error {
	if err := checkIDs("product_id", e.ProductID, "warehouse_id", e.WarehouseID); err != nil {
		return err
	}
	query := `
		INSERT INTO stock_ledger (id, product_id, warehouse_id, transaction_type, quantity_delta,
			previous_quantity, new_quantity, reference_id, reference_type, notes, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ProductID, nullableID(e.WarehouseID), e.TransactionType, e.QuantityDelta,
		e.PreviousQuantity, e.NewQuantity, e.ReferenceID, e.ReferenceType, e.Notes, e.Actor, e.CreatedAt,
	)
	if err != nil {
		return persistErr("append ledger entry", err)
	}
	return nil
}

const ledgerColumns = `id, product_id, warehouse_id::text, transaction_type, quantity_delta, previous_quantity,
	new_quantity, COALESCE(reference_id, ''), COALESCE(reference_type, ''), COALESCE(notes, ''),
	COALESCE(actor, ''), created_at`

// List historial del producto, más reciente primero. warehouseID vacío = todas las bodegas.
func (r *StockLedgerRepo) List(ctx context.Context, productID, warehouseID string, limit, offset int) ([]*entity.StockLedgerEntry, error) {
	if err := checkIDs("product_id", productID, "warehouse_id", warehouseID); err != nil {
		return nil, err
	}
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger
		WHERE product_id = $1 AND ($2::uuid IS NULL OR warehouse_id = $2::uuid)
		ORDER BY created_at DESC, seq DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, productID, nullableID(warehouseID), limit, offset)
	if err != nil {
		return nil, persistErr("list ledger", err)
	}
	defer rows.Close()
	var list []*entity.StockLedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, persistErr("scan ledger entry", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list ledger", err)
	}
	return list, nil
}

func scanLedgerEntry(row pgx.Row) (*entity.StockLedgerEntry, error) {
	var e entity.StockLedgerEntry
	var wh *string
	if err := row.Scan(&e.ID, &e.ProductID, &wh, &e.TransactionType, &e.QuantityDelta, &e.PreviousQuantity,
		&e.NewQuantity, &e.ReferenceID, &e.ReferenceType, &e.Notes, &e.Actor, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.WarehouseID = fromNullable(wh)
	return &e, nil
}

// Summarize agrega el libro del par exacto (producto, bodega) en orden de inserción.
func (r *StockLedgerRepo) Summarize(ctx context.Context, productID, warehouseID string) (*repository.LedgerSummary, error) {
	if err := checkIDs("product_id", productID, "warehouse_id", warehouseID); err != nil {
		return nil, err
	}
	query := `
		WITH l AS (
			SELECT previous_quantity, quantity_delta, new_quantity, seq
			FROM stock_ledger
			WHERE product_id = $1 AND warehouse_id IS NOT DISTINCT FROM $2::uuid
		)
		SELECT COUNT(*)::int,
		       COALESCE((SELECT previous_quantity FROM l ORDER BY seq ASC LIMIT 1), 0),
		       COALESCE(SUM(quantity_delta), 0)::int,
		       COALESCE((SELECT new_quantity FROM l ORDER BY seq DESC LIMIT 1), 0)
		FROM l`
	var s repository.LedgerSummary
	err := r.q.QueryRow(ctx, query, productID, nullableID(warehouseID)).Scan(
		&s.Entries, &s.FirstPrevious, &s.DeltaSum, &s.LastNew,
	)
	if err != nil {
		return nil, persistErr("summarize ledger", err)
	}
	return &s, nil
}
