package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.WarehouseStockRepository = (*StockRepo)(nil)

// StockRepo snapshot por bodega en memoria.
type StockRepo struct {
	b *binding
}

func (r *StockRepo) Get(_ context.Context, productID, warehouseID string) (*entity.WarehouseStock, error) {
	if err := r.b.s.fault("stock.get"); err != nil {
		return nil, err
	}
	var out *entity.WarehouseStock
	err := r.b.read(func(st *state) error {
		if row, ok := st.stock[stockKey{productID, warehouseID}]; ok {
			cp := *row
			out = &cp
		}
		return nil
	})
	return out, err
}

// LockForUpdate crea la fila en 0 si falta. Producto y bodega deben existir (como la FK en Postgres).
func (r *StockRepo) LockForUpdate(_ context.Context, productID, warehouseID string) (*entity.WarehouseStock, error) {
	if err := r.b.s.fault("stock.lock"); err != nil {
		return nil, err
	}
	var out *entity.WarehouseStock
	err := r.b.write(func(st *state) error {
		if _, ok := st.products[productID]; !ok {
			return domain.NewNotFoundError("producto", productID)
		}
		if _, ok := st.warehouses[warehouseID]; !ok {
			return domain.NewNotFoundError("bodega", warehouseID)
		}
		k := stockKey{productID, warehouseID}
		row, ok := st.stock[k]
		if !ok {
			row = &entity.WarehouseStock{ProductID: productID, WarehouseID: warehouseID}
			st.stock[k] = row
		}
		cp := *row
		out = &cp
		return nil
	})
	return out, err
}

func (r *StockRepo) Save(_ context.Context, stock *entity.WarehouseStock) error {
	if err := r.b.s.fault("stock.save"); err != nil {
		return err
	}
	if stock.Quantity < 0 {
		return domain.NewInsufficientStockError(stock.ProductID, stock.WarehouseID, -stock.Quantity, 0)
	}
	return r.b.write(func(st *state) error {
		k := stockKey{stock.ProductID, stock.WarehouseID}
		cp := *stock
		if cp.Note == "" {
			if prev, ok := st.stock[k]; ok {
				cp.Note = prev.Note
			}
		}
		st.stock[k] = &cp
		return nil
	})
}

func (r *StockRepo) SumByProduct(_ context.Context, productID string) (int, error) {
	if err := r.b.s.fault("stock.sum"); err != nil {
		return 0, err
	}
	total := 0
	err := r.b.read(func(st *state) error {
		for k, row := range st.stock {
			if k.product == productID {
				total += row.Quantity
			}
		}
		return nil
	})
	return total, err
}

func (r *StockRepo) ListByProduct(_ context.Context, productID string) ([]*entity.WarehouseStock, error) {
	if err := r.b.s.fault("stock.list"); err != nil {
		return nil, err
	}
	list := r.collect(func(k stockKey) bool { return k.product == productID })
	sort.Slice(list, func(i, j int) bool { return list[i].WarehouseID < list[j].WarehouseID })
	return list, nil
}

func (r *StockRepo) ListByWarehouse(_ context.Context, warehouseID string) ([]*entity.WarehouseStock, error) {
	if err := r.b.s.fault("stock.list"); err != nil {
		return nil, err
	}
	list := r.collect(func(k stockKey) bool { return k.warehouse == warehouseID })
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return list, nil
}

func (r *StockRepo) collect(match func(stockKey) bool) []*entity.WarehouseStock {
	var list []*entity.WarehouseStock
	_ = r.b.read(func(st *state) error {
		for k, row := range st.stock {
			if match(k) {
				cp := *row
				list = append(list, &cp)
			}
		}
		return nil
	})
	return list
}
