package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// AlertFilter filtros para listar alertas. Resolved nil = todas.
type AlertFilter struct {
	ProductID   string
	WarehouseID string
	Resolved    *bool
	Limit       int
	Offset      int
}

// LowStockAlertRepository puerto de persistencia para alertas de stock bajo.
type LowStockAlertRepository interface {
	// Create retorna domain.ErrDuplicate si ya existe una alerta sin resolver para el par.
	Create(ctx context.Context, alert *entity.LowStockAlert) error
	GetByID(ctx context.Context, id string) (*entity.LowStockAlert, error)
	GetUnresolved(ctx context.Context, productID, warehouseID string) (*entity.LowStockAlert, error)
	ListUnresolved(ctx context.Context) ([]*entity.LowStockAlert, error)
	List(ctx context.Context, filter AlertFilter) ([]*entity.LowStockAlert, error)
	// MarkResolved devuelve false si la alerta ya estaba resuelta (o no existe).
	MarkResolved(ctx context.Context, id, resolvedBy string, at time.Time) (bool, error)
}
