package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderDetail representa una línea de una orden. Única por (orden, producto, bodega).
type OrderDetail struct {
	ID          string
	OrderID     string
	ProductID   string
	WarehouseID string
	Quantity    int
	UnitPrice   decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
