package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	prodA = "p-a"
	whA   = "w-a"
	whB   = "w-b"
)

type recordingChecker struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingChecker) CheckLowStock(_ context.Context, productID, warehouseID string) (*dto.LowStockCheck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, productID+"/"+warehouseID)
	return &dto.LowStockCheck{}, r.err
}

type recordingSink struct {
	mu     sync.Mutex
	events []entity.AuditEvent
	err    error
}

func (r *recordingSink) Publish(_ context.Context, e entity.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func newFixture(t *testing.T) (*inventory.Service, *memory.Store, *recordingChecker, *recordingSink) {
	t.Helper()
	st := memory.NewStore()
	st.AddProduct(entity.Product{ID: prodA, Name: "Café"})
	st.AddWarehouse(whA, "Central")
	st.AddWarehouse(whB, "Norte")
	checker := &recordingChecker{}
	sink := &recordingSink{}
	svc := inventory.NewService(st, st.Stock(), st.Ledger(), st.Transfers(), st.Products(), st.Warehouses(), checker, sink, nil)
	return svc, st, checker, sink
}

func intPtr(v int) *int { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetCurrentStock_SinFilaEsCero(t *testing.T) {
	svc, _, _, _ := newFixture(t)
	qty, err := svc.GetCurrentStock(context.Background(), prodA, whA)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
}

func TestGetCurrentStock_AgregadoSumaBodegas(t *testing.T) {
	svc, st, _, _ := newFixture(t)
	st.SeedStock(prodA, whA, 30)
	st.SeedStock(prodA, whB, 12)

	total, err := svc.GetCurrentStock(context.Background(), prodA, "")
	require.NoError(t, err)
	assert.Equal(t, 42, total)

	sum, err := svc.GetStockSummary(context.Background(), prodA)
	require.NoError(t, err)
	assert.Equal(t, 42, sum.TotalStock)
	require.Len(t, sum.Warehouses, 2)
	assert.Equal(t, whA, sum.Warehouses[0].WarehouseID)
}

func TestGetCurrentStock_ProductoObligatorio(t *testing.T) {
	svc, _, _, _ := newFixture(t)
	_, err := svc.GetCurrentStock(context.Background(), "", whA)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustStock_RegistraDeltaYDisparaEfectos(t *testing.T) {
	svc, st, checker, sink := newFixture(t)
	st.SeedStock(prodA, whA, 20)

	res, err := svc.AdjustStock(context.Background(), dto.AdjustStockInput{
		ProductID: prodA, WarehouseID: whA, NewQuantity: 7, Notes: "conteo físico", Actor: "u-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 20, res.PreviousQuantity)
	assert.Equal(t, 7, res.NewQuantity)
	assert.Equal(t, -13, res.Adjustment)

	entries := st.LedgerEntries()
	last := entries[len(entries)-1]
	assert.Equal(t, entity.TransactionTypeADJUSTMENT, last.TransactionType)
	assert.Equal(t, -13, last.QuantityDelta)
	assert.Equal(t, "u-1", last.Actor)

	assert.Equal(t, []string{prodA + "/" + whA}, checker.calls)
	require.Len(t, sink.events, 1)
	assert.Equal(t, entity.AuditActionStockAdjusted, sink.events[0].Action)
}

func TestAdjustStock_ACeroEsValido(t *testing.T) {
	svc, st, _, _ := newFixture(t)
	st.SeedStock(prodA, whA, 5)
	res, err := svc.AdjustStock(context.Background(), dto.AdjustStockInput{ProductID: prodA, WarehouseID: whA, NewQuantity: 0})
	require.NoError(t, err)
	assert.Equal(t, -5, res.Adjustment)
}

func TestAdjustStock_Validaciones(t *testing.T) {
	svc, _, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.AdjustStock(ctx, dto.AdjustStockInput{ProductID: prodA, WarehouseID: whA, NewQuantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.AdjustStock(ctx, dto.AdjustStockInput{ProductID: "nope", WarehouseID: whA, NewQuantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.AdjustStock(ctx, dto.AdjustStockInput{ProductID: prodA, WarehouseID: "nope", NewQuantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStock_FallaDelLibroNoDejaRastro(t *testing.T) {
	svc, st, checker, sink := newFixture(t)
	st.SeedStock(prodA, whA, 20)
	before := len(st.LedgerEntries())
	st.FailOn("ledger.append", errors.New("disco lleno"))

	_, err := svc.AdjustStock(context.Background(), dto.AdjustStockInput{ProductID: prodA, WarehouseID: whA, NewQuantity: 3})
	require.Error(t, err)

	qty, err := svc.GetCurrentStock(context.Background(), prodA, whA)
	require.NoError(t, err)
	assert.Equal(t, 20, qty, "el snapshot no debe cambiar si el libro falla")
	assert.Len(t, st.LedgerEntries(), before)
	assert.Empty(t, checker.calls)
	assert.Empty(t, sink.events)
}

func TestAdjustStock_EfectosPosterioresNoFallanLaOperacion(t *testing.T) {
	svc, st, checker, sink := newFixture(t)
	st.SeedStock(prodA, whA, 20)
	checker.err = errors.New("alertas caídas")
	sink.err = errors.New("redis caído")

	res, err := svc.AdjustStock(context.Background(), dto.AdjustStockInput{ProductID: prodA, WarehouseID: whA, NewQuantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, res.NewQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestTransferStock_ConservaTotal(t *testing.T) {
	svc, st, checker, _ := newFixture(t)
	st.SeedStock(prodA, whA, 50)
	st.SeedStock(prodA, whB, 10)
	ctx := context.Background()

	res, err := svc.TransferStock(ctx, dto.TransferStockInput{ProductID: prodA, FromWarehouseID: whA, ToWarehouseID: whB, Quantity: 20})
	require.NoError(t, err)
	assert.Equal(t, 50, res.SourceStockBefore)
	assert.Equal(t, 30, res.SourceStockAfter)
	assert.Equal(t, 10, res.DestStockBefore)
	assert.Equal(t, 30, res.DestStockAfter)

	total, err := svc.GetCurrentStock(ctx, prodA, "")
	require.NoError(t, err)
	assert.Equal(t, 60, total)

	tr, err := svc.GetTransfer(ctx, res.TransferID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCompleted, tr.Status)
	assert.NotNil(t, tr.CompletedAt)

	var pair []entity.StockLedgerEntry
	for _, e := range st.LedgerEntries() {
		if e.ReferenceID == res.TransferID {
			pair = append(pair, e)
		}
	}
	require.Len(t, pair, 2)
	assert.Equal(t, 0, pair[0].QuantityDelta+pair[1].QuantityDelta)
	assert.ElementsMatch(t, []string{prodA + "/" + whA, prodA + "/" + whB}, checker.calls)
}

func TestTransferStock_InsuficienteNoEscribe(t *testing.T) {
	svc, st, _, _ := newFixture(t)
	st.SeedStock(prodA, whA, 5)
	before := len(st.LedgerEntries())

	_, err := svc.TransferStock(context.Background(), dto.TransferStockInput{ProductID: prodA, FromWarehouseID: whA, ToWarehouseID: whB, Quantity: 8})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 5, ise.Available)
	assert.Equal(t, 3, ise.Shortage)
	assert.Len(t, st.LedgerEntries(), before)
}

func TestTransferStock_MismaBodegaEsInvalido(t *testing.T) {
	svc, _, _, _ := newFixture(t)
	_, err := svc.TransferStock(context.Background(), dto.TransferStockInput{ProductID: prodA, FromWarehouseID: whA, ToWarehouseID: whA, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransferStock_FallaEnDestinoRevierteOrigen(t *testing.T) {
	svc, st, _, _ := newFixture(t)
	st.SeedStock(prodA, whA, 50)
	st.FailOn("transfer.create", errors.New("timeout"))

	_, err := svc.TransferStock(context.Background(), dto.TransferStockInput{ProductID: prodA, FromWarehouseID: whA, ToWarehouseID: whB, Quantity: 10})
	require.Error(t, err)

	qty, _ := svc.GetCurrentStock(context.Background(), prodA, whA)
	assert.Equal(t, 50, qty)
	qty, _ = svc.GetCurrentStock(context.Background(), prodA, whB)
	assert.Equal(t, 0, qty)
}

func TestTransferStock_ConcurrentesOpuestosConservanTotal(t *testing.T) {
	svc, st, _, _ := newFixture(t)
	st.SeedStock(prodA, whA, 100)
	st.SeedStock(prodA, whB, 100)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.TransferStock(ctx, dto.TransferStockInput{ProductID: prodA, FromWarehouseID: whA, ToWarehouseID: whB, Quantity: 3})
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.TransferStock(ctx, dto.TransferStockInput{ProductID: prodA, FromWarehouseID: whB, ToWarehouseID: whA, Quantity: 2})
		}()
	}
	wg.Wait()

	total, err := svc.GetCurrentStock(ctx, prodA, "")
	require.NoError(t, err)
	assert.Equal(t, 200, total)
	for _, wh := range []string{whA, whB} {
		rep, err := svc.ReconcileLedger(ctx, prodA, wh)
		require.NoError(t, err)
		assert.True(t, rep.Consistent, "bodega %s", wh)
	}
}

func TestPendingTransfer_CompletarYCancelar(t *testing.T) {
	svc, st, _, _ := newFixture(t)
	st.SeedStock(prodA, whA, 40)
	ctx := context.Background()

	tr, err := svc.RequestTransfer(ctx, dto.TransferStockInput{ProductID: prodA, FromWarehouseID: whA, ToWarehouseID: whB, Quantity: 15})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusPending, tr.Status)

	qty, _ := svc.GetCurrentStock(ctx, prodA, whA)
	assert.Equal(t, 40, qty, "un traslado pending no mueve stock")

	res, err := svc.CompleteTransfer(ctx, tr.ID, "bodeguero-1")
	require.NoError(t, err)
	assert.Equal(t, 25, res.SourceStockAfter)

	_, err = svc.CompleteTransfer(ctx, tr.ID, "")
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = svc.CancelTransfer(ctx, tr.ID, "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	tr2, err := svc.RequestTransfer(ctx, dto.TransferStockInput{ProductID: prodA, FromWarehouseID: whA, ToWarehouseID: whB, Quantity: 5})
	require.NoError(t, err)
	cancelled, err := svc.CancelTransfer(ctx, tr2.ID, "")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, cancelled.Status)

	_, err = svc.CompleteTransfer(ctx, "no-existe", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPendingTransfer_LibroAcreditaAQuienCompleta(t *testing.T) {
	svc, st, _, sink := newFixture(t)
	st.SeedStock(prodA, whA, 20)
	ctx := context.Background()

	tr, err := svc.RequestTransfer(ctx, dto.TransferStockInput{ProductID: prodA, FromWarehouseID: whA, ToWarehouseID: whB, Quantity: 6, Actor: "solicitante"})
	require.NoError(t, err)
	_, err = svc.CompleteTransfer(ctx, tr.ID, "bodeguero-2")
	require.NoError(t, err)

	var moves int
	for _, e := range st.LedgerEntries() {
		if e.ReferenceID != tr.ID {
			continue
		}
		moves++
		assert.Equal(t, "bodeguero-2", e.Actor, "entrada %s", e.TransactionType)
	}
	assert.Equal(t, 2, moves)

	stored, err := svc.GetTransfer(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "bodeguero-2", stored.Actor)
	assert.Equal(t, entity.TransferStatusCompleted, stored.Status)

	last := sink.events[len(sink.events)-1]
	assert.Equal(t, entity.AuditActionStockTransferred, last.Action)
	assert.Equal(t, "bodeguero-2", last.Actor)
}

func TestPendingTransfer_CompletarSinActorConservaSolicitante(t *testing.T) {
	svc, st, _, _ := newFixture(t)
	st.SeedStock(prodA, whA, 20)
	ctx := context.Background()

	tr, err := svc.RequestTransfer(ctx, dto.TransferStockInput{ProductID: prodA, FromWarehouseID: whA, ToWarehouseID: whB, Quantity: 6, Actor: "solicitante"})
	require.NoError(t, err)
	_, err = svc.CompleteTransfer(ctx, tr.ID, "")
	require.NoError(t, err)

	stored, err := svc.GetTransfer(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "solicitante", stored.Actor)
}

func TestPendingTransfer_OrigenSeVaciaAntesDeCompletar(t *testing.T) {
	svc, st, _, _ := newFixture(t)
	st.SeedStock(prodA, whA, 10)
	ctx := context.Background()

	tr, err := svc.RequestTransfer(ctx, dto.TransferStockInput{ProductID: prodA, FromWarehouseID: whA, ToWarehouseID: whB, Quantity: 10})
	require.NoError(t, err)
	_, err = svc.AdjustStock(ctx, dto.AdjustStockInput{ProductID: prodA, WarehouseID: whA, NewQuantity: 4})
	require.NoError(t, err)

	_, err = svc.CompleteTransfer(ctx, tr.ID, "")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := svc.GetTransfer(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusPending, got.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordStockChange_DerivaCamposFaltantes(t *testing.T) {
	svc, _, _, _ := newFixture(t)
	ctx := context.Background()

	e, err := svc.RecordStockChange(ctx, dto.StockChangeInput{
		ProductID: prodA, WarehouseID: whA, TransactionType: entity.TransactionTypeIN,
		QuantityDelta: intPtr(10), NewQuantity: intPtr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, e.PreviousQuantity)

	e, err = svc.RecordStockChange(ctx, dto.StockChangeInput{
		ProductID: prodA, WarehouseID: whA, TransactionType: entity.TransactionTypeOUT,
		PreviousQuantity: intPtr(10), NewQuantity: intPtr(6),
	})
	require.NoError(t, err)
	assert.Equal(t, -4, e.QuantityDelta)

	// Sin delta ni previous: parte del último new registrado para el par.
	e, err = svc.RecordStockChange(ctx, dto.StockChangeInput{
		ProductID: prodA, WarehouseID: whA, TransactionType: entity.TransactionTypeADJUSTMENT,
		NewQuantity: intPtr(9),
	})
	require.NoError(t, err)
	assert.Equal(t, 6, e.PreviousQuantity)
	assert.Equal(t, 3, e.QuantityDelta)
}

func TestRecordStockChange_Rechazos(t *testing.T) {
	svc, _, _, _ := newFixture(t)
	ctx := context.Background()
	cases := []struct {
		name string
		in   dto.StockChangeInput
	}{
		{"sin tipo", dto.StockChangeInput{ProductID: prodA, NewQuantity: intPtr(1)}},
		{"tipo desconocido", dto.StockChangeInput{ProductID: prodA, TransactionType: "GIFT", NewQuantity: intPtr(1)}},
		{"sin new", dto.StockChangeInput{ProductID: prodA, TransactionType: entity.TransactionTypeIN}},
		{"no cuadra", dto.StockChangeInput{
			ProductID: prodA, TransactionType: entity.TransactionTypeIN,
			PreviousQuantity: intPtr(2), QuantityDelta: intPtr(2), NewQuantity: intPtr(5),
		}},
		{"previous negativo", dto.StockChangeInput{
			ProductID: prodA, TransactionType: entity.TransactionTypeIN,
			QuantityDelta: intPtr(9), NewQuantity: intPtr(5),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordStockChange(ctx, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestGetStockHistory_MasRecientePrimero(t *testing.T) {
	svc, st, _, _ := newFixture(t)
	st.SeedStock(prodA, whA, 10)
	ctx := context.Background()
	_, err := svc.AdjustStock(ctx, dto.AdjustStockInput{ProductID: prodA, WarehouseID: whA, NewQuantity: 4})
	require.NoError(t, err)

	list, err := svc.GetStockHistory(ctx, prodA, whA, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, entity.TransactionTypeADJUSTMENT, list[0].TransactionType)

	page, err := svc.GetStockHistory(ctx, prodA, whA, dto.PageRequest{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, entity.TransactionTypeIN, page[0].TransactionType)
}

func TestReconcileLedger_DetectaDeriva(t *testing.T) {
	svc, st, _, _ := newFixture(t)
	st.SeedStock(prodA, whA, 10)
	ctx := context.Background()

	rep, err := svc.ReconcileLedger(ctx, prodA, whA)
	require.NoError(t, err)
	assert.True(t, rep.Consistent)

	// Una entrada directa al libro sin tocar el snapshot rompe el cuadre.
	_, err = svc.RecordStockChange(ctx, dto.StockChangeInput{
		ProductID: prodA, WarehouseID: whA, TransactionType: entity.TransactionTypeIN,
		QuantityDelta: intPtr(5), NewQuantity: intPtr(15),
	})
	require.NoError(t, err)

	rep, err = svc.ReconcileLedger(ctx, prodA, whA)
	require.NoError(t, err)
	assert.False(t, rep.Consistent)
	assert.Equal(t, -5, rep.Drift)
}
