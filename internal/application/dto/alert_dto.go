package dto

import "time"

// LowStockCheck resultado de evaluar el umbral de un par.
type LowStockCheck struct {
	AlertCreated    bool   `json:"alert_created"`
	AlertID         string `json:"alert_id,omitempty"`
	CurrentQuantity int    `json:"current_quantity"`
	Threshold       int    `json:"threshold"`
	AlertLevel      string `json:"alert_level,omitempty"` // vacío si no está bajo el umbral
}

// CheckAlertsRequest body para POST /api/inventory/alerts/check y /alerts/sweep.
type CheckAlertsRequest struct {
	ProductID   string `json:"product_id,omitempty"`
	WarehouseID string `json:"warehouse_id,omitempty"`
}

// ResolveAlertRequest body opcional para POST /api/inventory/alerts/:id/resolve.
type ResolveAlertRequest struct {
	ResolvedBy string `json:"resolved_by,omitempty"`
}

// AutoResolveResult resultado del barrido de auto-resolución.
type AutoResolveResult struct {
	Scanned  int `json:"scanned"`
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
}

// SweepFailure fallo aislado de un producto durante el barrido.
type SweepFailure struct {
	ProductID string `json:"product_id"`
	Error     string `json:"error"`
}

// AlertSweepResult resultado de la evaluación masiva.
type AlertSweepResult struct {
	ProductsChecked int            `json:"products_checked"`
	AlertsCreated   int            `json:"alerts_created"`
	Failures        []SweepFailure `json:"failures,omitempty"`
}

// AlertFilter filtros de listado (query string).
type AlertFilter struct {
	ProductID   string `query:"product_id"`
	WarehouseID string `query:"warehouse_id"`
	Status      string `query:"status"` // open, resolved o vacío
	PageRequest
}

// AlertResponse salida de una alerta.
type AlertResponse struct {
	ID              string     `json:"id"`
	ProductID       string     `json:"product_id"`
	WarehouseID     string     `json:"warehouse_id,omitempty"`
	CurrentQuantity int        `json:"current_quantity"`
	Threshold       int        `json:"threshold"`
	AlertLevel      string     `json:"alert_level"`
	IsResolved      bool       `json:"is_resolved"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy      string     `json:"resolved_by,omitempty"`
	Actor           string     `json:"actor,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
