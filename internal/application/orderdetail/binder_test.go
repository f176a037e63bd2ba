package orderdetail_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/application/alert"
	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/application/orderdetail"
	"github.com/jhoicas/stock-engine/internal/application/validation"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/internal/infrastructure/memory"
)

const (
	prodA    = "p-a"
	whA      = "w-a"
	whB      = "w-b"
	saleID   = "o-sale"
	importID = "o-import"
	supID    = "s-1"
)

type fixture struct {
	binder *orderdetail.Binder
	inv    *inventory.Service
	store  *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	threshold := 10
	st.AddProduct(entity.Product{ID: prodA, Name: "Café", LowStockThreshold: &threshold, Cost: decimal.NewFromInt(10)})
	st.AddWarehouse(whA, "Central")
	st.AddWarehouse(whB, "Norte")
	st.AddSupplier(supID, "Tostadores SA", true)
	st.AddOrder(saleID, entity.OrderTypeSale, "")
	st.AddOrder(importID, entity.OrderTypeImport, supID)

	alerts := alert.NewService(st.Alerts(), st.Stock(), st.Products(), nil, alert.Config{}, nil)
	inv := inventory.NewService(st, st.Stock(), st.Ledger(), st.Transfers(), st.Products(), st.Warehouses(), alerts, nil, nil)
	val := validation.NewService(st.Stock(), nil)
	b := orderdetail.NewBinder(st, inv, val, alerts, nil,
		st.Orders(), st.OrderDetails(), st.Products(), st.Warehouses(), st.Suppliers(), st.Stock(), nil)
	return &fixture{binder: b, inv: inv, store: st}
}

func (f *fixture) qty(t *testing.T, warehouseID string) int {
	t.Helper()
	q, err := f.inv.GetCurrentStock(context.Background(), prodA, warehouseID)
	require.NoError(t, err)
	return q
}

func saleLine(qty int, warehouseID string) dto.CreateOrderDetailInput {
	return dto.CreateOrderDetailInput{OrderID: saleID, ProductID: prodA, WarehouseID: warehouseID, Quantity: qty, UnitPrice: decimal.NewFromInt(25)}
}

func TestCreateOrderDetail_VentaDescuentaYRegistra(t *testing.T) {
	f := newFixture(t)
	f.store.SeedStock(prodA, whA, 20)

	res, err := f.binder.CreateOrderDetail(context.Background(), saleLine(5, whA))
	require.NoError(t, err)
	assert.False(t, res.Merged)
	assert.Equal(t, -5, res.AppliedDelta)
	assert.Equal(t, 15, res.StockAfter)
	assert.Equal(t, 15, f.qty(t, whA))

	entries := f.store.LedgerEntries()
	last := entries[len(entries)-1]
	assert.Equal(t, entity.TransactionTypeOUT, last.TransactionType)
	assert.Equal(t, saleID, last.ReferenceID)
	assert.Equal(t, entity.ReferenceTypeSaleOrder, last.ReferenceType)
	assert.Equal(t, res.LedgerEntryID, last.ID)
}

func TestCreateOrderDetail_FusionaLineaRepetida(t *testing.T) {
	f := newFixture(t)
	f.store.SeedStock(prodA, whA, 20)
	ctx := context.Background()

	first, err := f.binder.CreateOrderDetail(ctx, saleLine(5, whA))
	require.NoError(t, err)
	second, err := f.binder.CreateOrderDetail(ctx, saleLine(3, whA))
	require.NoError(t, err)

	assert.True(t, second.Merged)
	assert.Equal(t, first.Detail.ID, second.Detail.ID)
	assert.Equal(t, 8, second.Detail.Quantity)
	assert.Equal(t, -3, second.AppliedDelta)
	assert.Equal(t, 12, f.qty(t, whA))

	lines, err := f.binder.ListOrderDetails(ctx, saleID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 8, lines[0].Quantity)
}

func TestCreateOrderDetail_TotalCombinadoExcede(t *testing.T) {
	f := newFixture(t)
	f.store.SeedStock(prodA, whA, 10)
	ctx := context.Background()

	_, err := f.binder.CreateOrderDetail(ctx, saleLine(6, whA))
	require.NoError(t, err)
	_, err = f.binder.CreateOrderDetail(ctx, saleLine(6, whA))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 12, ise.Requested)
	assert.Equal(t, 10, ise.Available)
	assert.Equal(t, 2, ise.Shortage)

	assert.Equal(t, 4, f.qty(t, whA))
	details := f.store.AllOrderDetails()
	require.Len(t, details, 1)
	assert.Equal(t, 6, details[0].Quantity)
}

func TestCreateOrderDetail_SeleccionAutomaticaDeBodega(t *testing.T) {
	f := newFixture(t)
	f.store.SeedStock(prodA, whA, 8)
	f.store.SeedStock(prodA, whB, 30)
	ctx := context.Background()

	res, err := f.binder.CreateOrderDetail(ctx, saleLine(10, ""))
	require.NoError(t, err)
	assert.Equal(t, whB, res.Detail.WarehouseID)
	assert.Equal(t, 20, f.qty(t, whB))

	// 25 no cabe en una sola bodega (8 y 20) aunque el total sí.
	_, err = f.binder.CreateOrderDetail(ctx, saleLine(25, ""))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Empty(t, ise.WarehouseID)
	assert.Equal(t, 20, ise.Available)
}

func TestCreateOrderDetail_FallaDelLibroNoDejaLinea(t *testing.T) {
	f := newFixture(t)
	f.store.SeedStock(prodA, whA, 20)
	f.store.FailOn("ledger.append", errors.New("conexión perdida"))

	_, err := f.binder.CreateOrderDetail(context.Background(), saleLine(5, whA))
	require.Error(t, err)

	assert.Empty(t, f.store.AllOrderDetails())
	assert.Equal(t, 20, f.qty(t, whA))
}

func TestCreateOrderDetail_FallaAlGuardarLineaRevierteStock(t *testing.T) {
	f := newFixture(t)
	f.store.SeedStock(prodA, whA, 20)
	before := len(f.store.LedgerEntries())
	f.store.FailOn("order_detail.create", errors.New("timeout"))

	_, err := f.binder.CreateOrderDetail(context.Background(), saleLine(5, whA))
	require.Error(t, err)

	assert.Equal(t, 20, f.qty(t, whA))
	assert.Len(t, f.store.LedgerEntries(), before)
}

func TestCreateOrderDetail_VentaDisparaAlertaTrasCommit(t *testing.T) {
	f := newFixture(t)
	f.store.SeedStock(prodA, whA, 12)

	_, err := f.binder.CreateOrderDetail(context.Background(), saleLine(5, whA))
	require.NoError(t, err)

	alerts := f.store.AllAlerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, 7, alerts[0].CurrentQuantity)
	assert.Equal(t, whA, alerts[0].WarehouseID)
}

func TestCreateOrderDetail_ImportacionSumaYRecalculaCosto(t *testing.T) {
	f := newFixture(t)
	f.store.SeedStock(prodA, whA, 10)
	ctx := context.Background()

	res, err := f.binder.CreateOrderDetail(ctx, dto.CreateOrderDetailInput{
		OrderID: importID, ProductID: prodA, WarehouseID: whA, Quantity: 10, UnitPrice: decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, res.AppliedDelta)
	assert.Equal(t, 20, f.qty(t, whA))

	p, err := f.store.Products().GetByID(ctx, prodA)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15).Equal(p.Cost), "costo ponderado: got %s", p.Cost)

	imports := f.store.SupplierImports()
	require.Len(t, imports, 1)
	assert.Equal(t, supID, imports[0].SupplierID)
	assert.Equal(t, 10, imports[0].Quantity)
}

func TestCreateOrderDetail_HistorialDeProveedorEsBestEffort(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("supplier.record_import", errors.New("tabla bloqueada"))

	_, err := f.binder.CreateOrderDetail(context.Background(), dto.CreateOrderDetailInput{
		OrderID: importID, ProductID: prodA, WarehouseID: whA, Quantity: 4, UnitPrice: decimal.NewFromInt(8),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, f.qty(t, whA))
	assert.Empty(t, f.store.SupplierImports())
}

func TestCreateOrderDetail_ImportacionRequiereBodegaYProveedorActivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.binder.CreateOrderDetail(ctx, dto.CreateOrderDetailInput{OrderID: importID, ProductID: prodA, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.store.AddSupplier("s-off", "Inactivo", false)
	f.store.AddOrder("o-import-2", entity.OrderTypeImport, "s-off")
	_, err = f.binder.CreateOrderDetail(ctx, dto.CreateOrderDetailInput{OrderID: "o-import-2", ProductID: prodA, WarehouseID: whA, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.store.AddOrder("o-import-3", entity.OrderTypeImport, "")
	_, err = f.binder.CreateOrderDetail(ctx, dto.CreateOrderDetailInput{OrderID: "o-import-3", ProductID: prodA, WarehouseID: whA, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateOrderDetail_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.binder.CreateOrderDetail(ctx, saleLine(0, whA))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in := saleLine(1, whA)
	in.UnitPrice = decimal.NewFromInt(-1)
	_, err = f.binder.CreateOrderDetail(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = saleLine(1, whA)
	in.OrderID = "no-existe"
	_, err = f.binder.CreateOrderDetail(ctx, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	in = saleLine(1, "w-fantasma")
	_, err = f.binder.CreateOrderDetail(ctx, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveOrderDetail_RevierteVenta(t *testing.T) {
	f := newFixture(t)
	f.store.SeedStock(prodA, whA, 20)
	ctx := context.Background()

	res, err := f.binder.CreateOrderDetail(ctx, saleLine(7, whA))
	require.NoError(t, err)
	require.Equal(t, 13, f.qty(t, whA))

	require.NoError(t, f.binder.RemoveOrderDetail(ctx, res.Detail.ID, "u-1"))
	assert.Equal(t, 20, f.qty(t, whA))
	assert.Empty(t, f.store.AllOrderDetails())

	rep, err := f.inv.ReconcileLedger(ctx, prodA, whA)
	require.NoError(t, err)
	assert.True(t, rep.Consistent)

	err = f.binder.RemoveOrderDetail(ctx, res.Detail.ID, "u-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// countingDetails cuenta lecturas con bloqueo hechas fuera de una transacción.
type countingDetails struct {
	repository.OrderDetailRepository
	locking int
}

func (c *countingDetails) GetByIDForUpdate(ctx context.Context, id string) (*entity.OrderDetail, error) {
	c.locking++
	return c.OrderDetailRepository.GetByIDForUpdate(ctx, id)
}

func TestRemoveOrderDetail_LecturaPreviaSinBloqueo(t *testing.T) {
	f := newFixture(t)
	f.store.SeedStock(prodA, whA, 20)
	ctx := context.Background()

	details := &countingDetails{OrderDetailRepository: f.store.OrderDetails()}
	alerts := alert.NewService(f.store.Alerts(), f.store.Stock(), f.store.Products(), nil, alert.Config{}, nil)
	b := orderdetail.NewBinder(f.store, f.inv, validation.NewService(f.store.Stock(), nil), alerts, nil,
		f.store.Orders(), details, f.store.Products(), f.store.Warehouses(), f.store.Suppliers(), f.store.Stock(), nil)

	res, err := b.CreateOrderDetail(ctx, saleLine(4, whA))
	require.NoError(t, err)
	require.NoError(t, b.RemoveOrderDetail(ctx, res.Detail.ID, "u-1"))

	assert.Zero(t, details.locking)
	assert.Equal(t, 20, f.qty(t, whA))

	err = b.RemoveOrderDetail(ctx, res.Detail.ID, "u-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, details.locking)
}

func TestRemoveOrderDetail_ImportacionYaConsumida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.binder.CreateOrderDetail(ctx, dto.CreateOrderDetailInput{
		OrderID: importID, ProductID: prodA, WarehouseID: whA, Quantity: 10, UnitPrice: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	_, err = f.binder.CreateOrderDetail(ctx, saleLine(6, whA))
	require.NoError(t, err)

	err = f.binder.RemoveOrderDetail(ctx, res.Detail.ID, "")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 4, f.qty(t, whA))
	assert.Len(t, f.store.AllOrderDetails(), 2)
}

func TestListOrderDetails_UnaLineaPorBodega(t *testing.T) {
	f := newFixture(t)
	f.store.SeedStock(prodA, whA, 10)
	f.store.SeedStock(prodA, whB, 10)
	ctx := context.Background()

	_, err := f.binder.CreateOrderDetail(ctx, saleLine(2, whA))
	require.NoError(t, err)
	_, err = f.binder.CreateOrderDetail(ctx, saleLine(3, whB))
	require.NoError(t, err)
	_, err = f.binder.CreateOrderDetail(ctx, saleLine(1, whA))
	require.NoError(t, err)

	lines, err := f.binder.ListOrderDetails(ctx, saleID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	byWarehouse := map[string]int{}
	for _, l := range lines {
		byWarehouse[l.WarehouseID] = l.Quantity
	}
	assert.Equal(t, map[string]int{whA: 3, whB: 3}, byWarehouse)

	_, err = f.binder.ListOrderDetails(ctx, "o-nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
