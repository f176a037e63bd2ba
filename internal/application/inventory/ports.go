package inventory

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// LowStockChecker evalúa el umbral de un par después del commit (implementado por alert.Service).
type LowStockChecker interface {
	CheckLowStock(ctx context.Context, productID, warehouseID string) (*dto.LowStockCheck, error)
}

// AuditSink recibe eventos estructurados; sus fallos nunca afectan la operación.
type AuditSink interface {
	Publish(ctx context.Context, event entity.AuditEvent) error
}
