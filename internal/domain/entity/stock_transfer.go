package entity

import "time"

// Estados de un traslado.
const (
	TransferStatusPending   = "pending"
	TransferStatusCompleted = "completed"
	TransferStatusCancelled = "cancelled"
)

// StockTransfer registro de flujo de un traslado entre dos bodegas.
// Un traslado completado produce exactamente un par TRANSFER_OUT / TRANSFER_IN en el libro.
type StockTransfer struct {
	ID              string
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int
	Status          string
	Notes           string
	Actor           string
	CreatedAt       time.Time
	CompletedAt     *time.Time
}
