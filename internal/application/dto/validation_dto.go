package dto

// SaleLine línea a validar. WarehouseID vacío en la validación por bodega = línea omitida.
type SaleLine struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id,omitempty"`
	Quantity    int    `json:"quantity"`
}

// ValidateStockRequest body para POST /api/inventory/validation/warehouse.
type ValidateStockRequest struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int    `json:"quantity"`
}

// ValidateSaleOrderRequest body para las validaciones de orden.
type ValidateSaleOrderRequest struct {
	Lines []SaleLine `json:"lines"`
}

// StockCheck resultado de una validación puntual.
type StockCheck struct {
	IsValid   bool `json:"is_valid"`
	Available int  `json:"available"`
	Requested int  `json:"requested"`
	Shortage  int  `json:"shortage"`
}

// StockShortage detalle de una línea que no alcanza. WarehouseID vacío = stock agregado.
type StockShortage struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id,omitempty"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
	Shortage    int    `json:"shortage"`
}

// SaleValidationReport reporte completo: todas las líneas fallidas, no solo la primera.
type SaleValidationReport struct {
	IsValid bool            `json:"is_valid"`
	Errors  []StockShortage `json:"errors"`
}

// WarehouseChoice bodega elegida para surtir una venta sin bodega.
type WarehouseChoice struct {
	WarehouseID string `json:"warehouse_id"`
	Available   int    `json:"available"`
}
