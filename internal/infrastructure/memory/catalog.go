package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.OrderRepository     = (*OrderRepo)(nil)
	_ repository.SupplierRepository  = (*SupplierRepo)(nil)
)

// ProductRepo catálogo en memoria.
type ProductRepo struct {
	b *binding
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	if err := r.b.s.fault("product.get"); err != nil {
		return nil, err
	}
	var out *entity.Product
	_ = r.b.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			cp := *p
			out = &cp
		}
		return nil
	})
	return out, nil
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	if err := r.b.s.fault("product.list"); err != nil {
		return nil, err
	}
	var list []*entity.Product
	_ = r.b.read(func(st *state) error {
		for _, p := range st.products {
			if p.IsActive {
				cp := *p
				list = append(list, &cp)
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return paginate(list, limit, offset), nil
}

func (r *ProductRepo) UpdateCost(_ context.Context, productID string, cost decimal.Decimal) error {
	if err := r.b.s.fault("product.update_cost"); err != nil {
		return err
	}
	return r.b.write(func(st *state) error {
		if p, ok := st.products[productID]; ok {
			p.Cost = cost
			p.UpdatedAt = time.Now()
		}
		return nil
	})
}

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct {
	b *binding
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	_ = r.b.read(func(st *state) error {
		if w, ok := st.warehouses[id]; ok {
			cp := *w
			out = &cp
		}
		return nil
	})
	return out, nil
}

// OrderRepo cabeceras de orden en memoria.
type OrderRepo struct {
	b *binding
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	_ = r.b.read(func(st *state) error {
		if o, ok := st.orders[id]; ok {
			cp := *o
			out = &cp
		}
		return nil
	})
	return out, nil
}

// SupplierRepo proveedores e historial de importaciones en memoria.
type SupplierRepo struct {
	b *binding
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	_ = r.b.read(func(st *state) error {
		if sp, ok := st.suppliers[id]; ok {
			cp := *sp
			out = &cp
		}
		return nil
	})
	return out, nil
}

func (r *SupplierRepo) RecordImport(_ context.Context, imp *entity.SupplierImport) error {
	if err := r.b.s.fault("supplier.record_import"); err != nil {
		return err
	}
	cp := *imp
	return r.b.write(func(st *state) error {
		st.imports = append(st.imports, &cp)
		return nil
	})
}
