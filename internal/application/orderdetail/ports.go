package orderdetail

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con repos atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// StockMutator aplica un delta de stock usando los repos de la transacción del llamador.
// Si retorna error (ej: stock insuficiente), el llamador hace rollback de todo.
type StockMutator interface {
	ApplyStockChangeInTx(ctx context.Context, repos repository.TxRepos, m dto.StockMutation) (*entity.StockLedgerEntry, error)
}

// WarehouseFinder selección determinística de bodega para ventas sin bodega.
type WarehouseFinder interface {
	FindWarehouseWithStock(ctx context.Context, productID string, requested int) (*dto.WarehouseChoice, error)
}

// LowStockChecker evaluación de umbral posterior al commit.
type LowStockChecker interface {
	CheckLowStock(ctx context.Context, productID, warehouseID string) (*dto.LowStockCheck, error)
}

// AuditSink recibe eventos de auditoría (fire and forget).
type AuditSink interface {
	Publish(ctx context.Context, event entity.AuditEvent) error
}
