package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-engine/internal/application/alert"
	"github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/application/orderdetail"
	"github.com/jhoicas/stock-engine/internal/application/validation"
	"github.com/jhoicas/stock-engine/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Inventory  *inventory.Service
	Validation *validation.Service
	Alerts     *alert.Service
	Binder     *orderdetail.Binder
	JWTSecret  string
	JWTIssuer  string
}

// Router registra las rutas de la API bajo /api/inventory (todas protegidas).
func Router(app *fiber.App, deps RouterDeps) {
	inv := app.Group("/api/inventory", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	adminOnly := RequireRole(jwt.RoleAdmin)
	warehouseStaff := RequireRole(jwt.RoleAdmin, jwt.RoleWarehouse)
	orderStaff := RequireRole(jwt.RoleAdmin, jwt.RoleSalesAgent, jwt.RoleWarehouse)

	// Stock y libro
	invHandler := NewInventoryHandler(deps.Inventory)
	inv.Get("/stock/:product_id", invHandler.GetStock)
	inv.Get("/stock/:product_id/summary", invHandler.GetSummary)
	inv.Get("/stock/:product_id/history", invHandler.GetHistory)
	inv.Get("/stock/:product_id/reconcile", invHandler.Reconcile)
	inv.Post("/adjustments", adminOnly, invHandler.Adjust)
	inv.Post("/ledger", adminOnly, invHandler.RecordLedger)

	// Catálogo
	prodHandler := NewProductHandler(deps.Inventory)
	inv.Get("/products", prodHandler.List)
	inv.Get("/products/:id", prodHandler.GetByID)

	// Traslados
	inv.Post("/transfers", warehouseStaff, invHandler.Transfer)
	inv.Post("/transfers/requests", warehouseStaff, invHandler.RequestTransfer)
	inv.Post("/transfers/:id/complete", warehouseStaff, invHandler.CompleteTransfer)
	inv.Post("/transfers/:id/cancel", warehouseStaff, invHandler.CancelTransfer)
	inv.Get("/transfers/:id", invHandler.GetTransfer)

	// Validación (solo lectura)
	valHandler := NewValidationHandler(deps.Validation)
	inv.Post("/validation/warehouse", valHandler.ValidateWarehouse)
	inv.Post("/validation/sale-order", valHandler.ValidateSaleOrder)
	inv.Post("/validation/sale-order/total", valHandler.ValidateSaleOrderTotal)
	inv.Get("/validation/warehouse-with-stock", valHandler.FindWarehouse)

	// Alertas
	alertHandler := NewAlertHandler(deps.Alerts)
	inv.Post("/alerts/check", alertHandler.Check)
	inv.Post("/alerts/sweep", warehouseStaff, alertHandler.Sweep)
	inv.Post("/alerts/auto-resolve", warehouseStaff, alertHandler.AutoResolve)
	inv.Post("/alerts/:id/resolve", warehouseStaff, alertHandler.Resolve)
	inv.Get("/alerts", alertHandler.List)
	inv.Get("/alerts/:id", alertHandler.Get)

	// Órdenes
	odHandler := NewOrderDetailHandler(deps.Binder)
	inv.Post("/orders/:order_id/details", orderStaff, odHandler.Create)
	inv.Get("/orders/:order_id/details", odHandler.List)
	inv.Delete("/order-details/:id", orderStaff, odHandler.Delete)
}
