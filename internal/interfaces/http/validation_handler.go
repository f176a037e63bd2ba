package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/application/validation"
)

// ValidationHandler validaciones de stock de solo lectura.
type ValidationHandler struct {
	svc *validation.Service
}

// NewValidationHandler construye el handler.
func NewValidationHandler(svc *validation.Service) *ValidationHandler {
	return &ValidationHandler{svc: svc}
}

// ValidateWarehouse godoc
// @Summary      Validar cantidad en una bodega
// @Tags         validation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateStockRequest  true  "product_id, warehouse_id, quantity"
// @Success      200  {object}  dto.StockCheck
// @Router       /api/inventory/validation/warehouse [post]
func (h *ValidationHandler) ValidateWarehouse(c *fiber.Ctx) error {
	var in dto.ValidateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.svc.ValidateStockInWarehouse(c.Context(), in.ProductID, in.WarehouseID, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// ValidateSaleOrder godoc
// @Summary      Validar orden de venta por bodega
// @Tags         validation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateSaleOrderRequest  true  "lines"
// @Success      200  {object}  dto.SaleValidationReport
// @Router       /api/inventory/validation/sale-order [post]
func (h *ValidationHandler) ValidateSaleOrder(c *fiber.Ctx) error {
	var in dto.ValidateSaleOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rep, err := h.svc.ValidateSaleOrder(c.Context(), in.Lines)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rep)
}

// ValidateSaleOrderTotal godoc
// @Summary      Validar orden de venta contra stock agregado
// @Tags         validation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateSaleOrderRequest  true  "lines"
// @Success      200  {object}  dto.SaleValidationReport
// @Router       /api/inventory/validation/sale-order/total [post]
func (h *ValidationHandler) ValidateSaleOrderTotal(c *fiber.Ctx) error {
	var in dto.ValidateSaleOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rep, err := h.svc.ValidateSaleOrderTotalStock(c.Context(), in.Lines)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rep)
}

// FindWarehouse godoc
// @Summary      Bodega que cubre la cantidad completa
// @Tags         validation
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "Producto"
// @Param        quantity    query  int     true  "Cantidad"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/validation/warehouse-with-stock [get]
func (h *ValidationHandler) FindWarehouse(c *fiber.Ctx) error {
	choice, err := h.svc.FindWarehouseWithStock(c.Context(), c.Query("product_id"), c.QueryInt("quantity"))
	if err != nil {
		return writeError(c, err)
	}
	if choice == nil {
		return c.JSON(fiber.Map{"found": false})
	}
	return c.JSON(fiber.Map{"found": true, "warehouse": choice})
}
