package entity

import "time"

// Acciones auditadas por el motor de inventario.
const (
	AuditActionStockAdjusted     = "stock.adjusted"
	AuditActionStockTransferred  = "stock.transferred"
	AuditActionTransferRequested = "transfer.requested"
	AuditActionTransferCancelled = "transfer.cancelled"
	AuditActionLedgerRecorded    = "ledger.recorded"
	AuditActionOrderLineBound    = "order_line.bound"
	AuditActionOrderLineRemoved  = "order_line.removed"
	AuditActionAlertCreated      = "alert.created"
	AuditActionAlertResolved     = "alert.resolved"
)

// AuditEvent evento estructurado para el sink de auditoría (fire and forget).
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID string         `json:"resource_id"`
	Actor      string         `json:"actor,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
