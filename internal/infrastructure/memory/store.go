package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// Store almacenamiento en memoria con la misma semántica transaccional que Postgres:
// Run trabaja sobre una copia del estado y la publica solo si fn no devuelve error.
// Las transacciones se serializan (un solo escritor), equivalente a bloquear todas las filas.
type Store struct {
	mu sync.RWMutex
	st *state

	faultMu sync.Mutex
	faults  map[string]error
}

type stockKey struct{ product, warehouse string }

type state struct {
	products   map[string]*entity.Product
	warehouses map[string]*entity.Warehouse
	orders     map[string]*entity.Order
	suppliers  map[string]*entity.Supplier
	stock      map[stockKey]*entity.WarehouseStock
	ledger     []*entity.StockLedgerEntry
	alerts     []*entity.LowStockAlert
	transfers  map[string]*entity.StockTransfer
	details    []*entity.OrderDetail
	imports    []*entity.SupplierImport
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		st: &state{
			products:   map[string]*entity.Product{},
			warehouses: map[string]*entity.Warehouse{},
			orders:     map[string]*entity.Order{},
			suppliers:  map[string]*entity.Supplier{},
			stock:      map[stockKey]*entity.WarehouseStock{},
			transfers:  map[string]*entity.StockTransfer{},
		},
		faults: map[string]error{},
	}
}

func (s *state) clone() *state {
	c := &state{
		products:   make(map[string]*entity.Product, len(s.products)),
		warehouses: make(map[string]*entity.Warehouse, len(s.warehouses)),
		orders:     make(map[string]*entity.Order, len(s.orders)),
		suppliers:  make(map[string]*entity.Supplier, len(s.suppliers)),
		stock:      make(map[stockKey]*entity.WarehouseStock, len(s.stock)),
		ledger:     make([]*entity.StockLedgerEntry, len(s.ledger)),
		alerts:     make([]*entity.LowStockAlert, 0, len(s.alerts)),
		transfers:  make(map[string]*entity.StockTransfer, len(s.transfers)),
		details:    make([]*entity.OrderDetail, 0, len(s.details)),
		imports:    make([]*entity.SupplierImport, len(s.imports)),
	}
	for k, v := range s.products {
		cp := *v
		c.products[k] = &cp
	}
	for k, v := range s.warehouses {
		cp := *v
		c.warehouses[k] = &cp
	}
	for k, v := range s.orders {
		cp := *v
		c.orders[k] = &cp
	}
	for k, v := range s.suppliers {
		cp := *v
		c.suppliers[k] = &cp
	}
	for k, v := range s.stock {
		cp := *v
		c.stock[k] = &cp
	}
	// Entradas del libro e importaciones son inmutables: compartir punteros es seguro.
	copy(c.ledger, s.ledger)
	copy(c.imports, s.imports)
	for _, a := range s.alerts {
		cp := *a
		c.alerts = append(c.alerts, &cp)
	}
	for k, v := range s.transfers {
		cp := *v
		c.transfers[k] = &cp
	}
	for _, d := range s.details {
		cp := *d
		c.details = append(c.details, &cp)
	}
	return c
}

// binding ata un repositorio al estado publicado (pool) o a la copia de una transacción.
type binding struct {
	s    *Store
	tx   *state
	inTx bool
}

func (b *binding) read(fn func(st *state) error) error {
	if b.inTx {
		return fn(b.tx)
	}
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	return fn(b.s.st)
}

func (b *binding) write(fn func(st *state) error) error {
	if b.inTx {
		return fn(b.tx)
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	return fn(b.s.st)
}

// Run ejecuta fn con repos atados a una copia del estado; commit = reemplazar el estado publicado.
func (s *Store) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fault("tx.begin"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &binding{s: s, tx: s.st.clone(), inTx: true}
	if err := fn(repository.TxRepos{
		Stock:        &StockRepo{b: b},
		Ledger:       &LedgerRepo{b: b},
		Transfers:    &TransferRepo{b: b},
		OrderDetails: &OrderDetailRepo{b: b},
		Products:     &ProductRepo{b: b},
	}); err != nil {
		return err
	}
	if err := s.fault("tx.commit"); err != nil {
		return err
	}
	s.st = b.tx
	return nil
}

func (s *Store) pool() *binding { return &binding{s: s} }

// Repositorios fuera de transacción.
func (s *Store) Stock() *StockRepo              { return &StockRepo{b: s.pool()} }
func (s *Store) Ledger() *LedgerRepo            { return &LedgerRepo{b: s.pool()} }
func (s *Store) Alerts() *AlertRepo             { return &AlertRepo{b: s.pool()} }
func (s *Store) Transfers() *TransferRepo       { return &TransferRepo{b: s.pool()} }
func (s *Store) Products() *ProductRepo         { return &ProductRepo{b: s.pool()} }
func (s *Store) Warehouses() *WarehouseRepo     { return &WarehouseRepo{b: s.pool()} }
func (s *Store) Orders() *OrderRepo             { return &OrderRepo{b: s.pool()} }
func (s *Store) OrderDetails() *OrderDetailRepo { return &OrderDetailRepo{b: s.pool()} }
func (s *Store) Suppliers() *SupplierRepo       { return &SupplierRepo{b: s.pool()} }

// FailOn hace que la operación op (p. ej. "stock.save", "ledger.append", "tx.commit") devuelva err.
// err nil quita la falla.
func (s *Store) FailOn(op string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	return s.faults[op]
}

// ── Datos semilla (colaboradores) ───────────────────────────────────────────

// AddProduct registra un producto. threshold nil = umbral por defecto.
func (s *Store) AddProduct(p entity.Product) *entity.Product {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.SKU == "" {
		p.SKU = "SKU-" + p.ID
	}
	p.IsActive = true
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = &p
	cp := p
	return &cp
}

// AddWarehouse registra una bodega.
func (s *Store) AddWarehouse(id, name string) *entity.Warehouse {
	if id == "" {
		id = uuid.New().String()
	}
	w := &entity.Warehouse{ID: id, Name: name, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.warehouses[id] = w
	cp := *w
	return &cp
}

// AddSupplier registra un proveedor.
func (s *Store) AddSupplier(id, name string, active bool) *entity.Supplier {
	if id == "" {
		id = uuid.New().String()
	}
	sp := &entity.Supplier{ID: id, Name: name, IsActive: active}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.suppliers[id] = sp
	cp := *sp
	return &cp
}

// AddOrder registra una cabecera de orden.
func (s *Store) AddOrder(id, orderType, supplierID string) *entity.Order {
	if id == "" {
		id = uuid.New().String()
	}
	o := &entity.Order{ID: id, Type: orderType, SupplierID: supplierID, Status: "draft", CreatedAt: time.Now()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.orders[id] = o
	cp := *o
	return &cp
}

// SeedStock deja qty unidades en el par con su entrada IN correspondiente en el libro.
func (s *Store) SeedStock(productID, warehouseID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	k := stockKey{productID, warehouseID}
	prev := 0
	if row, ok := s.st.stock[k]; ok {
		prev = row.Quantity
	}
	s.st.stock[k] = &entity.WarehouseStock{ProductID: productID, WarehouseID: warehouseID, Quantity: qty, UpdatedAt: now}
	s.st.ledger = append(s.st.ledger, &entity.StockLedgerEntry{
		ID:               uuid.New().String(),
		ProductID:        productID,
		WarehouseID:      warehouseID,
		TransactionType:  entity.TransactionTypeIN,
		QuantityDelta:    qty - prev,
		PreviousQuantity: prev,
		NewQuantity:      qty,
		ReferenceType:    "seed",
		Actor:            "seed",
		CreatedAt:        now,
	})
}

// ── Inspección para pruebas ─────────────────────────────────────────────────

// LedgerEntries copia de todas las entradas en orden de inserción.
func (s *Store) LedgerEntries() []entity.StockLedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.StockLedgerEntry, 0, len(s.st.ledger))
	for _, e := range s.st.ledger {
		out = append(out, *e)
	}
	return out
}

// AllAlerts copia de todas las alertas.
func (s *Store) AllAlerts() []entity.LowStockAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.LowStockAlert, 0, len(s.st.alerts))
	for _, a := range s.st.alerts {
		out = append(out, *a)
	}
	return out
}

// AllOrderDetails copia de todas las líneas de orden.
func (s *Store) AllOrderDetails() []entity.OrderDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.OrderDetail, 0, len(s.st.details))
	for _, d := range s.st.details {
		out = append(out, *d)
	}
	return out
}

// SupplierImports copia del historial de importaciones.
func (s *Store) SupplierImports() []entity.SupplierImport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.SupplierImport, 0, len(s.st.imports))
	for _, i := range s.st.imports {
		out = append(out, *i)
	}
	return out
}
