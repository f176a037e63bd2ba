package memory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.OrderDetailRepository = (*OrderDetailRepo)(nil)

// OrderDetailRepo líneas de orden en memoria, únicas por (orden, producto, bodega).
type OrderDetailRepo struct {
	b *binding
}

// LockOrder solo verifica que la orden exista; Run ya serializa las transacciones.
func (r *OrderDetailRepo) LockOrder(_ context.Context, orderID string) error {
	return r.b.read(func(st *state) error {
		if _, ok := st.orders[orderID]; !ok {
			return domain.NewNotFoundError("orden", orderID)
		}
		return nil
	})
}

func (r *OrderDetailRepo) GetByKeyForUpdate(_ context.Context, orderID, productID, warehouseID string) (*entity.OrderDetail, error) {
	return r.find(func(d *entity.OrderDetail) bool {
		return d.OrderID == orderID && d.ProductID == productID && d.WarehouseID == warehouseID
	}), nil
}

func (r *OrderDetailRepo) GetByID(_ context.Context, id string) (*entity.OrderDetail, error) {
	return r.find(func(d *entity.OrderDetail) bool { return d.ID == id }), nil
}

func (r *OrderDetailRepo) GetByIDForUpdate(_ context.Context, id string) (*entity.OrderDetail, error) {
	return r.find(func(d *entity.OrderDetail) bool { return d.ID == id }), nil
}

func (r *OrderDetailRepo) Create(_ context.Context, d *entity.OrderDetail) error {
	if err := r.b.s.fault("order_detail.create"); err != nil {
		return err
	}
	return r.b.write(func(st *state) error {
		for _, existing := range st.details {
			if existing.OrderID == d.OrderID && existing.ProductID == d.ProductID && existing.WarehouseID == d.WarehouseID {
				return domain.ErrConflict
			}
		}
		cp := *d
		st.details = append(st.details, &cp)
		return nil
	})
}

func (r *OrderDetailRepo) UpdateQuantity(_ context.Context, id string, quantity int, at time.Time) error {
	if err := r.b.s.fault("order_detail.update"); err != nil {
		return err
	}
	return r.b.write(func(st *state) error {
		for _, d := range st.details {
			if d.ID == id {
				d.Quantity = quantity
				d.UpdatedAt = at
				return nil
			}
		}
		return domain.NewNotFoundError("línea de orden", id)
	})
}

func (r *OrderDetailRepo) Delete(_ context.Context, id string) error {
	if err := r.b.s.fault("order_detail.delete"); err != nil {
		return err
	}
	return r.b.write(func(st *state) error {
		for i, d := range st.details {
			if d.ID == id {
				st.details = append(st.details[:i], st.details[i+1:]...)
				return nil
			}
		}
		return domain.NewNotFoundError("línea de orden", id)
	})
}

func (r *OrderDetailRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.OrderDetail, error) {
	var list []*entity.OrderDetail
	_ = r.b.read(func(st *state) error {
		for _, d := range st.details {
			if d.OrderID == orderID {
				cp := *d
				list = append(list, &cp)
			}
		}
		return nil
	})
	return list, nil
}

func (r *OrderDetailRepo) find(match func(*entity.OrderDetail) bool) *entity.OrderDetail {
	var out *entity.OrderDetail
	_ = r.b.read(func(st *state) error {
		for _, d := range st.details {
			if match(d) {
				cp := *d
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out
}
