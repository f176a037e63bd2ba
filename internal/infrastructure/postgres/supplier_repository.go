package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo proveedores e historial de importaciones sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador de proveedores.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// GetByID obtiene un proveedor. nil si no existe.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	if err := checkIDs("supplier_id", id); err != nil {
		return nil, err
	}
	var s entity.Supplier
	err := r.q.QueryRow(ctx, `SELECT id, name, is_active FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistErr("get supplier", err)
	}
	return &s, nil
}

// RecordImport agrega una fila al historial de entradas del proveedor.
func (r *SupplierRepo) RecordImport(ctx context.Context, imp *entity.SupplierImport) error {
	query := `
		INSERT INTO supplier_import_history (id, supplier_id, order_id, product_id, warehouse_id, quantity, unit_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		imp.ID, imp.SupplierID, imp.OrderID, imp.ProductID, imp.WarehouseID, imp.Quantity, imp.UnitCost, imp.CreatedAt,
	)
	if err != nil {
		return persistErr("insert supplier import", err)
	}
	return nil
}
