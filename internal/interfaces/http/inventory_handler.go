package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// InventoryHandler stock, ajustes, traslados y libro (protegido).
type InventoryHandler struct {
	svc *inventory.Service
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(svc *inventory.Service) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// GetStock godoc
// @Summary      Stock actual de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    path   string  true   "Producto"
// @Param        warehouse_id  query  string  false  "Bodega. Vacío = total de todas las bodegas."
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{product_id} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	warehouseID := c.Query("warehouse_id")
	qty, err := h.svc.GetCurrentStock(c.Context(), productID, warehouseID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": productID, "warehouse_id": warehouseID, "quantity": qty})
}

// GetSummary godoc
// @Summary      Total y desglose por bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "Producto"
// @Success      200  {object}  dto.StockSummary
// @Router       /api/inventory/stock/{product_id}/summary [get]
func (h *InventoryHandler) GetSummary(c *fiber.Ctx) error {
	sum, err := h.svc.GetStockSummary(c.Context(), c.Params("product_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sum)
}

// GetHistory godoc
// @Summary      Historial del libro de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    path   string  true   "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        limit         query  int     false  "Límite (máx 500)"
// @Param        offset        query  int     false  "Offset"
// @Success      200  {object}  dto.LedgerHistoryResponse
// @Router       /api/inventory/stock/{product_id}/history [get]
func (h *InventoryHandler) GetHistory(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	entries, err := h.svc.GetStockHistory(c.Context(), c.Params("product_id"), c.Query("warehouse_id"), page)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.LedgerHistoryResponse{
		Items: make([]dto.LedgerEntryResponse, 0, len(entries)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, e := range entries {
		out.Items = append(out.Items, toLedgerResponse(e))
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Cuadre libro vs snapshot
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    path   string  true  "Producto"
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {object}  dto.ReconcileReport
// @Router       /api/inventory/stock/{product_id}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	rep, err := h.svc.ReconcileLedger(c.Context(), c.Params("product_id"), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rep)
}

// Adjust godoc
// @Summary      Ajuste manual a cantidad absoluta (admin)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockInput  true  "product_id, warehouse_id, new_quantity, notes"
// @Success      201  {object}  dto.AdjustStockResult
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.Actor = GetUserID(c)
	res, err := h.svc.AdjustStock(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Transfer godoc
// @Summary      Traslado inmediato entre bodegas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferStockInput  true  "product_id, from_warehouse_id, to_warehouse_id, quantity"
// @Success      201  {object}  dto.TransferStockResult
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferStockInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.Actor = GetUserID(c)
	res, err := h.svc.TransferStock(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// RequestTransfer godoc
// @Summary      Registrar traslado pendiente
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferStockInput  true  "product_id, from_warehouse_id, to_warehouse_id, quantity"
// @Success      201  {object}  dto.TransferResponse
// @Router       /api/inventory/transfers/requests [post]
func (h *InventoryHandler) RequestTransfer(c *fiber.Ctx) error {
	var in dto.TransferStockInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.Actor = GetUserID(c)
	t, err := h.svc.RequestTransfer(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t))
}

// CompleteTransfer godoc
// @Summary      Completar traslado pendiente
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Traslado"
// @Success      200  {object}  dto.TransferStockResult
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers/{id}/complete [post]
func (h *InventoryHandler) CompleteTransfer(c *fiber.Ctx) error {
	res, err := h.svc.CompleteTransfer(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// CancelTransfer godoc
// @Summary      Cancelar traslado pendiente
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Traslado"
// @Success      200  {object}  dto.TransferResponse
// @Router       /api/inventory/transfers/{id}/cancel [post]
func (h *InventoryHandler) CancelTransfer(c *fiber.Ctx) error {
	t, err := h.svc.CancelTransfer(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// GetTransfer godoc
// @Summary      Obtener traslado
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Traslado"
// @Success      200  {object}  dto.TransferResponse
// @Router       /api/inventory/transfers/{id} [get]
func (h *InventoryHandler) GetTransfer(c *fiber.Ctx) error {
	t, err := h.svc.GetTransfer(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// RecordLedger godoc
// @Summary      Escritura directa al libro (admin)
// @Description  No modifica el snapshot. quantity_delta o previous_quantity pueden omitirse.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockChangeInput  true  "Entrada del libro"
// @Success      201  {object}  dto.LedgerEntryResponse
// @Router       /api/inventory/ledger [post]
func (h *InventoryHandler) RecordLedger(c *fiber.Ctx) error {
	var in dto.StockChangeInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.Actor = GetUserID(c)
	e, err := h.svc.RecordStockChange(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLedgerResponse(e))
}

func toLedgerResponse(e *entity.StockLedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:               e.ID,
		ProductID:        e.ProductID,
		WarehouseID:      e.WarehouseID,
		TransactionType:  e.TransactionType,
		QuantityDelta:    e.QuantityDelta,
		PreviousQuantity: e.PreviousQuantity,
		NewQuantity:      e.NewQuantity,
		ReferenceID:      e.ReferenceID,
		ReferenceType:    e.ReferenceType,
		Notes:            e.Notes,
		Actor:            e.Actor,
		CreatedAt:        e.CreatedAt,
	}
}

func toTransferResponse(t *entity.StockTransfer) dto.TransferResponse {
	return dto.TransferResponse{
		ID:              t.ID,
		ProductID:       t.ProductID,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Quantity:        t.Quantity,
		Status:          t.Status,
		Notes:           t.Notes,
		Actor:           t.Actor,
		CreatedAt:       t.CreatedAt,
		CompletedAt:     t.CompletedAt,
	}
}
