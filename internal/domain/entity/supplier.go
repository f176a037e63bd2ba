package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier proveedor de una orden de importación.
type Supplier struct {
	ID       string
	Name     string
	IsActive bool
}

// SupplierImport historial de entradas por proveedor (efecto secundario de una importación).
type SupplierImport struct {
	ID          string
	SupplierID  string
	OrderID     string
	ProductID   string
	WarehouseID string
	Quantity    int
	UnitCost    decimal.Decimal
	CreatedAt   time.Time
}
