package entity

import "time"

// Tipos de transacción del libro de stock.
const (
	TransactionTypeIN          = "IN"           // entrada (importación, reverso de venta)
	TransactionTypeOUT         = "OUT"          // salida (venta, reverso de importación)
	TransactionTypeTransferIN  = "TRANSFER_IN"  // entrada por traslado
	TransactionTypeTransferOUT = "TRANSFER_OUT" // salida por traslado
	TransactionTypeADJUSTMENT  = "ADJUSTMENT"   // corrección administrativa
)

// Tipos de referencia que enlazan una entrada con la operación que la causó.
const (
	ReferenceTypeSaleOrder   = "sale_order"
	ReferenceTypeImportOrder = "import_order"
	ReferenceTypeTransfer    = "stock_transfer"
	ReferenceTypeAdjustment  = "manual_adjustment"
)

// StockLedgerEntry registro inmutable de un cambio de cantidad.
// NewQuantity = PreviousQuantity + QuantityDelta. WarehouseID vacío = evento agregado.
type StockLedgerEntry struct {
	ID               string
	ProductID        string
	WarehouseID      string
	TransactionType  string
	QuantityDelta    int
	PreviousQuantity int
	NewQuantity      int
	ReferenceID      string
	ReferenceType    string
	Notes            string
	Actor            string
	CreatedAt        time.Time
}

// IsValidTransactionType indica si t es uno de los tipos conocidos.
func IsValidTransactionType(t string) bool {
	switch t {
	case TransactionTypeIN, TransactionTypeOUT, TransactionTypeTransferIN,
		TransactionTypeTransferOUT, TransactionTypeADJUSTMENT:
		return true
	}
	return false
}
