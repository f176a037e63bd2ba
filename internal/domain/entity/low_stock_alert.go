package entity

import "time"

// Niveles de alerta de stock bajo.
const (
	AlertLevelWarning    = "warning"
	AlertLevelCritical   = "critical"
	AlertLevelOutOfStock = "out_of_stock"
)

// LowStockAlert alerta de stock bajo por (producto, bodega). WarehouseID vacío = alerta agregada.
// Threshold es una foto del umbral del producto al momento de crearla.
type LowStockAlert struct {
	ID              string
	ProductID       string
	WarehouseID     string
	CurrentQuantity int
	Threshold       int
	AlertLevel      string
	IsResolved      bool
	ResolvedAt      *time.Time
	ResolvedBy      string
	Actor           string
	CreatedAt       time.Time
}
