package repository

// TxRepos agrupa los repositorios atados a una misma transacción.
type TxRepos struct {
	Stock        WarehouseStockRepository
	Ledger       StockLedgerRepository
	Transfers    StockTransferRepository
	OrderDetails OrderDetailRepository
	Products     ProductRepository
}
