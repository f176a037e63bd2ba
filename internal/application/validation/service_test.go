package validation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/application/validation"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/infrastructure/memory"
)

func newValidationFixture(t *testing.T) (*validation.Service, *memory.Store) {
	t.Helper()
	st := memory.NewStore()
	for _, id := range []string{"p-a", "p-b"} {
		st.AddProduct(entity.Product{ID: id})
	}
	for _, id := range []string{"w-a", "w-b", "w-c"} {
		st.AddWarehouse(id, id)
	}
	st.SeedStock("p-a", "w-a", 10)
	st.SeedStock("p-a", "w-b", 25)
	st.SeedStock("p-b", "w-a", 3)
	return validation.NewService(st.Stock(), nil), st
}

func TestValidateStockInWarehouse(t *testing.T) {
	svc, _ := newValidationFixture(t)
	ctx := context.Background()

	ok, err := svc.ValidateStockInWarehouse(ctx, "p-a", "w-a", 10)
	require.NoError(t, err)
	assert.True(t, ok.IsValid)
	assert.Equal(t, 0, ok.Shortage)

	short, err := svc.ValidateStockInWarehouse(ctx, "p-a", "w-a", 14)
	require.NoError(t, err)
	assert.False(t, short.IsValid)
	assert.Equal(t, 4, short.Shortage)

	none, err := svc.ValidateStockInWarehouse(ctx, "p-a", "w-c", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, none.Available)

	_, err = svc.ValidateStockInWarehouse(ctx, "p-a", "w-a", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidateSaleOrder_ReportaTodasLasLineas(t *testing.T) {
	svc, _ := newValidationFixture(t)
	rep, err := svc.ValidateSaleOrder(context.Background(), []dto.SaleLine{
		{ProductID: "p-a", WarehouseID: "w-a", Quantity: 6},
		{ProductID: "p-a", WarehouseID: "w-a", Quantity: 6}, // suma 12 > 10
		{ProductID: "p-b", WarehouseID: "w-a", Quantity: 5},
		{ProductID: "p-a", WarehouseID: "w-b", Quantity: 5},
		{ProductID: "p-b", Quantity: 999}, // sin bodega: se omite
	})
	require.NoError(t, err)
	assert.False(t, rep.IsValid)
	require.Len(t, rep.Errors, 2)
	assert.Equal(t, dto.StockShortage{ProductID: "p-a", WarehouseID: "w-a", Requested: 12, Available: 10, Shortage: 2}, rep.Errors[0])
	assert.Equal(t, "p-b", rep.Errors[1].ProductID)
}

func TestValidateSaleOrder_LineasInvalidas(t *testing.T) {
	svc, _ := newValidationFixture(t)
	_, err := svc.ValidateSaleOrder(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.ValidateSaleOrder(context.Background(), []dto.SaleLine{{ProductID: "p-a", Quantity: -1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidateSaleOrderTotalStock(t *testing.T) {
	svc, _ := newValidationFixture(t)
	rep, err := svc.ValidateSaleOrderTotalStock(context.Background(), []dto.SaleLine{
		{ProductID: "p-a", Quantity: 30},
		{ProductID: "p-a", WarehouseID: "w-a", Quantity: 5}, // la bodega se ignora: total 35 = 35
		{ProductID: "p-b", Quantity: 4},
	})
	require.NoError(t, err)
	assert.False(t, rep.IsValid)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "p-b", rep.Errors[0].ProductID)
	assert.Empty(t, rep.Errors[0].WarehouseID)
	assert.Equal(t, 1, rep.Errors[0].Shortage)
}

func TestFindWarehouseWithStock(t *testing.T) {
	svc, _ := newValidationFixture(t)
	ctx := context.Background()

	choice, err := svc.FindWarehouseWithStock(ctx, "p-a", 8)
	require.NoError(t, err)
	require.NotNil(t, choice)
	assert.Equal(t, "w-b", choice.WarehouseID)
	assert.Equal(t, 25, choice.Available)

	// 30 no cabe en ninguna bodega aunque el total (35) alcance: sin cumplimiento parcial.
	choice, err = svc.FindWarehouseWithStock(ctx, "p-a", 30)
	require.NoError(t, err)
	assert.Nil(t, choice)
}
