package repository

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// WarehouseStockRepository define el puerto para consultar/actualizar el snapshot por bodega+producto.
// Usado dentro de transacciones para garantizar consistencia.
type WarehouseStockRepository interface {
	// Get devuelve nil (sin error) cuando no existe fila para el par.
	Get(ctx context.Context, productID, warehouseID string) (*entity.WarehouseStock, error)
	// LockForUpdate crea la fila en 0 si no existe y la bloquea (SELECT FOR UPDATE) hasta el fin de la tx.
	LockForUpdate(ctx context.Context, productID, warehouseID string) (*entity.WarehouseStock, error)
	Save(ctx context.Context, stock *entity.WarehouseStock) error
	// SumByProduct stock agregado del producto en todas las bodegas (0 si no hay filas).
	SumByProduct(ctx context.Context, productID string) (int, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.WarehouseStock, error)
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.WarehouseStock, error)
}
