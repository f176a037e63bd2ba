package entity

import "time"

// WarehouseStock representa el stock actual de un producto en una bodega (snapshot materializado).
// Una fila por par (producto, bodega); se crea en el primer evento de stock y nunca es negativa.
type WarehouseStock struct {
	ProductID   string
	WarehouseID string
	Quantity    int
	Note        string
	UpdatedAt   time.Time
}
