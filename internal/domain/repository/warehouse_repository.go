package repository

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// WarehouseRepository puerto de lectura de bodegas (espacio de identificadores).
type WarehouseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
}
