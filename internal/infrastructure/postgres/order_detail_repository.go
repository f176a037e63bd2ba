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

var _ repository.OrderDetailRepository = (*OrderDetailRepo)(nil)

// OrderDetailRepo líneas de orden sobre PostgreSQL (usable con pool o tx).
type OrderDetailRepo struct {
	q Querier
}

// NewOrderDetailRepository construye el adaptador de líneas de orden.
func NewOrderDetailRepository(q Querier) *OrderDetailRepo {
	return &OrderDetailRepo{q: q}
}

const detailColumns = `id, order_id, product_id, warehouse_id, quantity, unit_price, created_at, updated_at`

func scanDetail(row pgx.Row) (*entity.OrderDetail, error) {
	var d entity.OrderDetail
	if err := row.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.WarehouseID, &d.Quantity, &d.UnitPrice,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// LockOrder bloquea la cabecera; las altas concurrentes sobre la misma orden esperan su turno.
func (r *OrderDetailRepo) LockOrder(ctx context.Context, orderID string) error {
	if err := checkIDs("order_id", orderID); err != nil {
		return err
	}
	var id string
	err := r.q.QueryRow(ctx, `SELECT id FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewNotFoundError("orden", orderID)
		}
		return persistErr("lock order", err)
	}
	return nil
}

// GetByKeyForUpdate busca y bloquea la línea (orden, producto, bodega). nil si no existe.
func (r *OrderDetailRepo) GetByKeyForUpdate(ctx context.Context, orderID, productID, warehouseID string) (*entity.OrderDetail, error) {
	if err := checkIDs("order_id", orderID, "product_id", productID, "warehouse_id", warehouseID); err != nil {
		return nil, err
	}
	return r.get(ctx, `SELECT `+detailColumns+` FROM order_details
		WHERE order_id = $1 AND product_id = $2 AND warehouse_id = $3 FOR UPDATE`,
		orderID, productID, warehouseID)
}

// GetByID busca la línea por id sin bloquearla. nil si no existe.
func (r *OrderDetailRepo) GetByID(ctx context.Context, id string) (*entity.OrderDetail, error) {
	if err := checkIDs("order_detail_id", id); err != nil {
		return nil, err
	}
	return r.get(ctx, `SELECT `+detailColumns+` FROM order_details WHERE id = $1`, id)
}

// GetByIDForUpdate busca y bloquea la línea por id. nil si no existe.
func (r *OrderDetailRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.OrderDetail, error) {
	if err := checkIDs("order_detail_id", id); err != nil {
		return nil, err
	}
	return r.get(ctx, `SELECT `+detailColumns+` FROM order_details WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderDetailRepo) get(ctx context.Context, query string, args ...any) (*entity.OrderDetail, error) {
	d, err := scanDetail(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistErr("get order detail", err)
	}
	return d, nil
}

// Create inserta la línea. ErrConflict si otra tx creó la misma clave primero.
func (r *OrderDetailRepo) Create(ctx context.Context, d *entity.OrderDetail) error {
	query := `
		INSERT INTO order_details (id, order_id, product_id, warehouse_id, quantity, unit_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.OrderID, d.ProductID, d.WarehouseID, d.Quantity, d.UnitPrice, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return persistErr("insert order detail", err)
	}
	return nil
}

// UpdateQuantity fija la cantidad de una línea existente.
func (r *OrderDetailRepo) UpdateQuantity(ctx context.Context, id string, quantity int, at time.Time) error {
	if err := checkIDs("order_detail_id", id); err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE order_details SET quantity = $2, updated_at = $3 WHERE id = $1`, id, quantity, at)
	if err != nil {
		return persistErr("update order detail", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFoundError("línea de orden", id)
	}
	return nil
}

// Delete elimina la línea.
func (r *OrderDetailRepo) Delete(ctx context.Context, id string) error {
	if err := checkIDs("order_detail_id", id); err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM order_details WHERE id = $1`, id)
	if err != nil {
		return persistErr("delete order detail", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFoundError("línea de orden", id)
	}
	return nil
}

// ListByOrder líneas de la orden en orden de creación.
func (r *OrderDetailRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderDetail, error) {
	if err := checkIDs("order_id", orderID); err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+detailColumns+` FROM order_details WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, persistErr("list order details", err)
	}
	defer rows.Close()
	var list []*entity.OrderDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, persistErr("scan order detail", err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list order details", err)
	}
	return list, nil
}
