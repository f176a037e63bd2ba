package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold umbral usado cuando el producto no define uno.
const DefaultLowStockThreshold = 10

// Product representa un producto o SKU del catálogo (multi-bodega).
// Cost es promedio ponderado calculado desde las importaciones; el stock vive en WarehouseStock.
type Product struct {
	ID                string
	SKU               string
	Name              string
	LowStockThreshold *int
	Cost              decimal.Decimal
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ThresholdOr devuelve el umbral del producto o def si no está definido.
func (p *Product) ThresholdOr(def int) int {
	if p.LowStockThreshold != nil {
		return *p.LowStockThreshold
	}
	return def
}
