package repository

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// SupplierRepository lectura de proveedores e historial de importaciones.
type SupplierRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	RecordImport(ctx context.Context, imp *entity.SupplierImport) error
}
