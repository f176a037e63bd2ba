package entity

import "time"

// Tipos de orden.
const (
	OrderTypeSale   = "sale"
	OrderTypeImport = "import"
)

// Order cabecera de una orden de venta o de importación (colaborador externo).
// SupplierID solo aplica a importaciones.
type Order struct {
	ID         string
	Type       string
	SupplierID string
	Status     string
	CreatedAt  time.Time
}
