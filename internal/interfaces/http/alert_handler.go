package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-engine/internal/application/alert"
	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// AlertHandler alertas de stock bajo.
type AlertHandler struct {
	svc *alert.Service
}

// NewAlertHandler construye el handler.
func NewAlertHandler(svc *alert.Service) *AlertHandler {
	return &AlertHandler{svc: svc}
}

// Check godoc
// @Summary      Evaluar umbral de un par
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckAlertsRequest  true  "product_id (obligatorio), warehouse_id"
// @Success      200  {object}  dto.LowStockCheck
// @Router       /api/inventory/alerts/check [post]
func (h *AlertHandler) Check(c *fiber.Ctx) error {
	var in dto.CheckAlertsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.svc.CheckLowStock(c.Context(), in.ProductID, in.WarehouseID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Sweep godoc
// @Summary      Evaluar producto, bodega o catálogo completo
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckAlertsRequest  false  "filtros opcionales"
// @Success      200  {object}  dto.AlertSweepResult
// @Router       /api/inventory/alerts/sweep [post]
func (h *AlertHandler) Sweep(c *fiber.Ctx) error {
	var in dto.CheckAlertsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	res, err := h.svc.CheckAndCreateAlerts(c.Context(), in.ProductID, in.WarehouseID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// AutoResolve godoc
// @Summary      Cerrar alertas que ya no aplican
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AutoResolveResult
// @Router       /api/inventory/alerts/auto-resolve [post]
func (h *AlertHandler) AutoResolve(c *fiber.Ctx) error {
	res, err := h.svc.AutoResolveAlerts(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Resolve godoc
// @Summary      Resolver alerta
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true   "Alerta"
// @Param        body  body  dto.ResolveAlertRequest  false  "resolved_by (por defecto el usuario del token)"
// @Success      200  {object}  dto.AlertResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/alerts/{id}/resolve [post]
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ResolveAlertRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	if in.ResolvedBy == "" {
		in.ResolvedBy = GetUserID(c)
	}
	a, err := h.svc.ResolveAlert(c.Context(), c.Params("id"), in.ResolvedBy)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAlertResponse(a))
}

// List godoc
// @Summary      Listar alertas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        status        query  string  false  "open | resolved"
// @Success      200  {array}  dto.AlertResponse
// @Router       /api/inventory/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	var f dto.AlertFilter
	if err := c.QueryParser(&f); err != nil {
		return badBody(c)
	}
	list, err := h.svc.ListAlerts(c.Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.AlertResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAlertResponse(a))
	}
	return c.JSON(fiber.Map{"total": len(out), "alerts": out})
}

// Get godoc
// @Summary      Obtener alerta
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Alerta"
// @Success      200  {object}  dto.AlertResponse
// @Router       /api/inventory/alerts/{id} [get]
func (h *AlertHandler) Get(c *fiber.Ctx) error {
	a, err := h.svc.GetAlert(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAlertResponse(a))
}

func toAlertResponse(a *entity.LowStockAlert) dto.AlertResponse {
	return dto.AlertResponse{
		ID:              a.ID,
		ProductID:       a.ProductID,
		WarehouseID:     a.WarehouseID,
		CurrentQuantity: a.CurrentQuantity,
		Threshold:       a.Threshold,
		AlertLevel:      a.AlertLevel,
		IsResolved:      a.IsResolved,
		ResolvedAt:      a.ResolvedAt,
		ResolvedBy:      a.ResolvedBy,
		Actor:           a.Actor,
		CreatedAt:       a.CreatedAt,
	}
}
