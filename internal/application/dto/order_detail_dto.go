package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderDetailInput body para POST /api/inventory/orders/:order_id/details.
// WarehouseID vacío en una venta = selección automática de bodega.
type CreateOrderDetailInput struct {
	OrderID     string          `json:"-"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Actor       string          `json:"-"`
}

// OrderDetailResponse salida de una línea de orden.
type OrderDetailResponse struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderDetailResult resultado de crear o fusionar una línea.
type OrderDetailResult struct {
	Detail        OrderDetailResponse `json:"detail"`
	Merged        bool                `json:"merged"`          // true si se sumó a una línea existente
	AppliedDelta  int                 `json:"applied_delta"`   // cantidad movida en stock por esta llamada
	StockAfter    int                 `json:"stock_after"`     // snapshot de la bodega tras el cambio
	LedgerEntryID string              `json:"ledger_entry_id"` // entrada generada
}
