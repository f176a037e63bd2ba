package dto

import "time"

// WarehouseQuantity cantidad de un producto en una bodega.
type WarehouseQuantity struct {
	WarehouseID string `json:"warehouse_id"`
	Quantity    int    `json:"quantity"`
}

// StockSummary total del producto más el desglose por bodega (ordenado por bodega).
type StockSummary struct {
	ProductID  string              `json:"product_id"`
	TotalStock int                 `json:"total_stock"`
	Warehouses []WarehouseQuantity `json:"warehouses"`
}

// StockChangeInput entrada para POST /api/inventory/ledger (escritura directa al libro).
// QuantityDelta y PreviousQuantity son opcionales: faltando uno se deriva del otro y de NewQuantity.
type StockChangeInput struct {
	ProductID        string `json:"product_id"`
	WarehouseID      string `json:"warehouse_id,omitempty"`
	TransactionType  string `json:"transaction_type"`
	QuantityDelta    *int   `json:"quantity_delta,omitempty"`
	PreviousQuantity *int   `json:"previous_quantity,omitempty"`
	NewQuantity      *int   `json:"new_quantity"`
	ReferenceID      string `json:"reference_id,omitempty"`
	ReferenceType    string `json:"reference_type,omitempty"`
	Notes            string `json:"notes,omitempty"`
	Actor            string `json:"-"`
}

// StockMutation cambio relativo dentro de una transacción abierta (usado por el binder).
type StockMutation struct {
	ProductID       string
	WarehouseID     string
	TransactionType string
	Delta           int
	ReferenceID     string
	ReferenceType   string
	Notes           string
	Actor           string
}

// AdjustStockInput body para POST /api/inventory/adjustments.
type AdjustStockInput struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	NewQuantity int    `json:"new_quantity"`
	Notes       string `json:"notes,omitempty"`
	Actor       string `json:"-"`
}

// AdjustStockResult resultado del ajuste.
type AdjustStockResult struct {
	PreviousQuantity int    `json:"previous_quantity"`
	NewQuantity      int    `json:"new_quantity"`
	Adjustment       int    `json:"adjustment"`
	LedgerEntryID    string `json:"ledger_entry_id"`
}

// TransferStockInput body para POST /api/inventory/transfers.
type TransferStockInput struct {
	ProductID       string `json:"product_id"`
	FromWarehouseID string `json:"from_warehouse_id"`
	ToWarehouseID   string `json:"to_warehouse_id"`
	Quantity        int    `json:"quantity"`
	Notes           string `json:"notes,omitempty"`
	Actor           string `json:"-"`
}

// TransferStockResult cantidades antes y después en ambas bodegas.
type TransferStockResult struct {
	TransferID        string `json:"transfer_id"`
	SourceStockBefore int    `json:"source_stock_before"`
	SourceStockAfter  int    `json:"source_stock_after"`
	DestStockBefore   int    `json:"dest_stock_before"`
	DestStockAfter    int    `json:"dest_stock_after"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID              string     `json:"id"`
	ProductID       string     `json:"product_id"`
	FromWarehouseID string     `json:"from_warehouse_id"`
	ToWarehouseID   string     `json:"to_warehouse_id"`
	Quantity        int        `json:"quantity"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	Actor           string     `json:"actor,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// LedgerEntryResponse salida de una entrada del libro.
type LedgerEntryResponse struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	WarehouseID      string    `json:"warehouse_id,omitempty"`
	TransactionType  string    `json:"transaction_type"`
	QuantityDelta    int       `json:"quantity_delta"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	ReferenceID      string    `json:"reference_id,omitempty"`
	ReferenceType    string    `json:"reference_type,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	Actor            string    `json:"actor,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// LedgerHistoryResponse página del historial.
type LedgerHistoryResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// ReconcileReport comparación entre el libro y el snapshot para un par.
type ReconcileReport struct {
	ProductID        string `json:"product_id"`
	WarehouseID      string `json:"warehouse_id"`
	SnapshotQuantity int    `json:"snapshot_quantity"`
	LedgerEntries    int    `json:"ledger_entries"`
	LedgerQuantity   int    `json:"ledger_quantity"` // primer previous + Σdelta
	LastNewQuantity  int    `json:"last_new_quantity"`
	Drift            int    `json:"drift"` // snapshot - ledger
	Consistent       bool   `json:"consistent"`
}
