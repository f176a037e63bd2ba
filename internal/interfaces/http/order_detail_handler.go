package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/application/orderdetail"
)

// OrderDetailHandler líneas de orden con efecto en stock.
type OrderDetailHandler struct {
	binder *orderdetail.Binder
}

// NewOrderDetailHandler construye el handler.
func NewOrderDetailHandler(binder *orderdetail.Binder) *OrderDetailHandler {
	return &OrderDetailHandler{binder: binder}
}

// Create godoc
// @Summary      Agregar línea a una orden
// @Description  Venta: descuenta stock (sin warehouse_id se elige bodega). Importación: suma stock.
// @Description  Una línea repetida para el mismo producto y bodega se fusiona.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        order_id  path  string                      true  "Orden"
// @Param        body      body  dto.CreateOrderDetailInput  true  "product_id, warehouse_id, quantity, unit_price"
// @Success      201  {object}  dto.OrderDetailResult
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/orders/{order_id}/details [post]
func (h *OrderDetailHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderDetailInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.OrderID = c.Params("order_id")
	in.Actor = GetUserID(c)
	res, err := h.binder.CreateOrderDetail(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusCreated
	if res.Merged {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(res)
}

// List godoc
// @Summary      Líneas de una orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        order_id  path  string  true  "Orden"
// @Success      200  {array}  dto.OrderDetailResponse
// @Router       /api/inventory/orders/{order_id}/details [get]
func (h *OrderDetailHandler) List(c *fiber.Ctx) error {
	list, err := h.binder.ListOrderDetails(c.Context(), c.Params("order_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// Delete godoc
// @Summary      Quitar línea y revertir su efecto en stock
// @Tags         orders
// @Security     Bearer
// @Param        id  path  string  true  "Línea"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/order-details/{id} [delete]
func (h *OrderDetailHandler) Delete(c *fiber.Ctx) error {
	if err := h.binder.RemoveOrderDetail(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
