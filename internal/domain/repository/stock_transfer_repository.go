package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// StockTransferRepository puerto de persistencia para traslados.
type StockTransferRepository interface {
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error)
	// UpdateStatus cambia el estado. actor vacío conserva el registrado.
	UpdateStatus(ctx context.Context, id, status, actor string, completedAt *time.Time) error
}
