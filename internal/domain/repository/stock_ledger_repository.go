package repository

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// LedgerSummary agregado del libro para un par (producto, bodega), usado en la conciliación.
type LedgerSummary struct {
	Entries       int
	FirstPrevious int
	DeltaSum      int
	LastNew       int
}

// StockLedgerRepository puerto del libro de stock (solo inserción).
type StockLedgerRepository interface {
	Append(ctx context.Context, entry *entity.StockLedgerEntry) error
	// List ordena de la más reciente a la más antigua. warehouseID vacío = todas las bodegas.
	List(ctx context.Context, productID, warehouseID string, limit, offset int) ([]*entity.StockLedgerEntry, error)
	Summarize(ctx context.Context, productID, warehouseID string) (*LedgerSummary, error)
}
