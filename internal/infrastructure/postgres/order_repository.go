package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo lectura de cabeceras de orden sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// GetByID obtiene la cabecera. nil si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	if err := checkIDs("order_id", id); err != nil {
		return nil, err
	}
	var o entity.Order
	var supplierID *string
	err := r.q.QueryRow(ctx,
		`SELECT id, order_type, supplier_id::text, status, created_at FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.Type, &supplierID, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistErr("get order", err)
	}
	o.SupplierID = fromNullable(supplierID)
	return &o, nil
}
