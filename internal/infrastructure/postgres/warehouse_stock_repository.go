package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.WarehouseStockRepository = (*WarehouseStockRepo)(nil)

// WarehouseStockRepo implementación de WarehouseStockRepository sobre PostgreSQL (usable con pool o tx).
type WarehouseStockRepo struct {
	q Querier
}

// NewWarehouseStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewWarehouseStockRepository(q Querier) *WarehouseStockRepo {
	return &WarehouseStockRepo{q: q}
}

const stockColumns = `product_id, warehouse_id, quantity, COALESCE(note, ''), updated_at`

func scanStock(row pgx.Row) (*entity.WarehouseStock, error) {
	var s entity.WarehouseStock
	if err := row.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.Note, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get obtiene el stock actual de un producto en una bodega. nil si nunca tuvo movimientos.
func (r *WarehouseStockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.WarehouseStock, error) {
	if err := checkIDs("product_id", productID, "warehouse_id", warehouseID); err != nil {
		return nil, err
	}
	s, err := scanStock(r.q.QueryRow(ctx,
		`SELECT `+stockColumns+` FROM warehouse_stock WHERE product_id = $1 AND warehouse_id = $2`,
		productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistErr("get stock", err)
	}
	return s, nil
}

// LockForUpdate crea la fila en 0 si falta y la bloquea (SELECT FOR UPDATE).
// Dos escritores concurrentes sobre el par quedan serializados hasta el commit.
func (r *WarehouseStockRepo) LockForUpdate(ctx context.Context, productID, warehouseID string) (*entity.WarehouseStock, error) {
	if err := checkIDs("product_id", productID, "warehouse_id", warehouseID); err != nil {
		return nil, err
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO warehouse_stock (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`,
		productID, warehouseID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NewNotFoundError("producto/bodega", productID+"/"+warehouseID)
		}
		return nil, persistErr("ensure stock row", err)
	}
	s, err := scanStock(r.q.QueryRow(ctx,
		`SELECT `+stockColumns+` FROM warehouse_stock WHERE product_id = $1 AND warehouse_id = $2 FOR UPDATE`,
		productID, warehouseID))
	if err != nil {
		return nil, persistErr("get stock for update", err)
	}
	return s, nil
}

// Save persiste la cantidad de una fila previamente bloqueada.
func (r *WarehouseStockRepo) Save(ctx context.Context, stock *entity.WarehouseStock) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO warehouse_stock (product_id, warehouse_id, quantity, note, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity,
		              note = COALESCE(EXCLUDED.note, warehouse_stock.note),
		              updated_at = EXCLUDED.updated_at`,
		stock.ProductID, stock.WarehouseID, stock.Quantity, stock.Note, stock.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.NewInsufficientStockError(stock.ProductID, stock.WarehouseID, -stock.Quantity, 0)
		}
		return persistErr("save stock", err)
	}
	return nil
}

// SumByProduct stock agregado en todas las bodegas.
func (r *WarehouseStockRepo) SumByProduct(ctx context.Context, productID string) (int, error) {
	if err := checkIDs("product_id", productID); err != nil {
		return 0, err
	}
	var total int
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)::int FROM warehouse_stock WHERE product_id = $1`,
		productID).Scan(&total)
	if err != nil {
		return 0, persistErr("sum stock", err)
	}
	return total, nil
}

// ListByProduct filas del producto ordenadas por bodega.
func (r *WarehouseStockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.WarehouseStock, error) {
	if err := checkIDs("product_id", productID); err != nil {
		return nil, err
	}
	return r.list(ctx, `SELECT `+stockColumns+` FROM warehouse_stock WHERE product_id = $1 ORDER BY warehouse_id`, productID)
}

// ListByWarehouse filas de la bodega ordenadas por producto.
func (r *WarehouseStockRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.WarehouseStock, error) {
	if err := checkIDs("warehouse_id", warehouseID); err != nil {
		return nil, err
	}
	return r.list(ctx, `SELECT `+stockColumns+` FROM warehouse_stock WHERE warehouse_id = $1 ORDER BY product_id`, warehouseID)
}

func (r *WarehouseStockRepo) list(ctx context.Context, query, arg string) ([]*entity.WarehouseStock, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, persistErr("list stock", err)
	}
	defer rows.Close()
	var list []*entity.WarehouseStock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, persistErr("scan stock", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list stock", err)
	}
	return list, nil
}
