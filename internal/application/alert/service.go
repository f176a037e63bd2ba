package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// AutoResolveActor resolvedBy que deja el barrido automático.
const AutoResolveActor = "system:auto-resolve"

// AuditSink recibe eventos de auditoría (fire and forget).
type AuditSink interface {
	Publish(ctx context.Context, event entity.AuditEvent) error
}

// Config parámetros del servicio de alertas.
type Config struct {
	DefaultThreshold int // umbral si el producto no define uno
	CatalogPageSize  int // página al recorrer el catálogo completo
}

// Service dueño exclusivo de la creación y resolución de alertas de stock bajo.
// Corre fuera de la transacción de stock: evalúa contra el snapshot ya confirmado.
type Service struct {
	alerts   repository.LowStockAlertRepository
	stock    repository.WarehouseStockRepository
	products repository.ProductRepository
	audit    AuditSink
	cfg      Config
	log      *logger.Logger
	now      func() time.Time
}

// NewService construye el servicio. audit puede ser nil.
func NewService(
	alerts repository.LowStockAlertRepository,
	stock repository.WarehouseStockRepository,
	products repository.ProductRepository,
	audit AuditSink,
	cfg Config,
	log *logger.Logger,
) *Service {
	if cfg.DefaultThreshold <= 0 {
		cfg.DefaultThreshold = entity.DefaultLowStockThreshold
	}
	if cfg.CatalogPageSize <= 0 {
		cfg.CatalogPageSize = 200
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		alerts:   alerts,
		stock:    stock,
		products: products,
		audit:    audit,
		cfg:      cfg,
		log:      log.Component("alerts"),
		now:      time.Now,
	}
}

// CheckLowStock evalúa el par y abre una alerta si está bajo el umbral y no hay otra abierta.
// warehouseID vacío evalúa el stock agregado. Repetir la llamada no duplica alertas.
func (s *Service) CheckLowStock(ctx context.Context, productID, warehouseID string) (*dto.LowStockCheck, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	threshold, err := s.threshold(ctx, productID)
	if err != nil {
		return nil, err
	}
	qty, err := s.currentQuantity(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	res := &dto.LowStockCheck{CurrentQuantity: qty, Threshold: threshold}
	if !inventory.IsLowStock(qty, threshold) {
		return res, nil
	}
	res.AlertLevel = inventory.ClassifyAlertLevel(qty, threshold)

	open, err := s.alerts.GetUnresolved(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		res.AlertID = open.ID
		return res, nil
	}

	a := &entity.LowStockAlert{
		ID:              uuid.New().String(),
		ProductID:       productID,
		WarehouseID:     warehouseID,
		CurrentQuantity: qty,
		Threshold:       threshold,
		AlertLevel:      res.AlertLevel,
		Actor:           "system",
		CreatedAt:       s.now(),
	}
	if err := s.alerts.Create(ctx, a); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Otra evaluación concurrente la abrió primero.
			if open, _ := s.alerts.GetUnresolved(ctx, productID, warehouseID); open != nil {
				res.AlertID = open.ID
			}
			return res, nil
		}
		return nil, err
	}
	res.AlertCreated = true
	res.AlertID = a.ID

	s.log.Info().Str("alert_id", a.ID).Str("product_id", productID).Str("warehouse_id", warehouseID).
		Int("quantity", qty).Int("threshold", threshold).Str("level", a.AlertLevel).
		Msg("alerta de stock bajo creada")
	s.publish(ctx, entity.AuditEvent{
		Action:     entity.AuditActionAlertCreated,
		Resource:   "low_stock_alert",
		ResourceID: a.ID,
		Actor:      a.Actor,
		Data:       map[string]any{"product_id": productID, "warehouse_id": warehouseID, "level": a.AlertLevel, "quantity": qty},
		OccurredAt: a.CreatedAt,
	})
	return res, nil
}

// ResolveAlert cierra una alerta abierta. NotFound si no existe, AlreadyResolved si ya estaba cerrada.
func (s *Service) ResolveAlert(ctx context.Context, alertID, resolvedBy string) (*entity.LowStockAlert, error) {
	if alertID == "" {
		return nil, domain.NewValidationError("alert_id", "es obligatorio")
	}
	if resolvedBy == "" {
		resolvedBy = "system"
	}
	now := s.now()
	changed, err := s.alerts.MarkResolved(ctx, alertID, resolvedBy, now)
	if err != nil {
		return nil, err
	}
	a, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.NewNotFoundError("alerta", alertID)
	}
	if !changed {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyResolved, alertID)
	}
	s.log.Info().Str("alert_id", alertID).Str("resolved_by", resolvedBy).Msg("alerta resuelta")
	s.publish(ctx, entity.AuditEvent{
		Action:     entity.AuditActionAlertResolved,
		Resource:   "low_stock_alert",
		ResourceID: alertID,
		Actor:      resolvedBy,
		OccurredAt: now,
	})
	return a, nil
}

// AutoResolveAlerts relee stock y umbral vigentes de cada alerta abierta y cierra las que ya no aplican.
// Un fallo en una alerta se registra y el barrido sigue.
func (s *Service) AutoResolveAlerts(ctx context.Context) (*dto.AutoResolveResult, error) {
	open, err := s.alerts.ListUnresolved(ctx)
	if err != nil {
		return nil, err
	}
	res := &dto.AutoResolveResult{Scanned: len(open)}
	for _, a := range open {
		resolved, err := s.autoResolveOne(ctx, a)
		if err != nil {
			res.Failed++
			s.log.Warn().Err(err).Str("alert_id", a.ID).Msg("auto-resolución falló para la alerta")
			continue
		}
		if resolved {
			res.Resolved++
		}
	}
	if res.Resolved > 0 || res.Failed > 0 {
		s.log.Info().Int("scanned", res.Scanned).Int("resolved", res.Resolved).Int("failed", res.Failed).
			Msg("barrido de auto-resolución")
	}
	return res, nil
}

func (s *Service) autoResolveOne(ctx context.Context, a *entity.LowStockAlert) (bool, error) {
	threshold, err := s.threshold(ctx, a.ProductID)
	if err != nil {
		return false, err
	}
	qty, err := s.currentQuantity(ctx, a.ProductID, a.WarehouseID)
	if err != nil {
		return false, err
	}
	if inventory.IsLowStock(qty, threshold) {
		return false, nil
	}
	now := s.now()
	changed, err := s.alerts.MarkResolved(ctx, a.ID, AutoResolveActor, now)
	if err != nil || !changed {
		return false, err
	}
	s.publish(ctx, entity.AuditEvent{
		Action:     entity.AuditActionAlertResolved,
		Resource:   "low_stock_alert",
		ResourceID: a.ID,
		Actor:      AutoResolveActor,
		Data:       map[string]any{"quantity": qty, "threshold": threshold},
		OccurredAt: now,
	})
	return true, nil
}

// CheckAndCreateAlerts evalúa un producto, una bodega o el catálogo completo.
// Los fallos por producto quedan en Failures y no detienen el resto.
func (s *Service) CheckAndCreateAlerts(ctx context.Context, productID, warehouseID string) (*dto.AlertSweepResult, error) {
	res := &dto.AlertSweepResult{}
	switch {
	case productID != "":
		s.sweepProduct(ctx, res, productID, warehouseID)
	case warehouseID != "":
		rows, err := s.stock.ListByWarehouse(ctx, warehouseID)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			s.sweepProduct(ctx, res, row.ProductID, warehouseID)
		}
	default:
		for offset := 0; ; offset += s.cfg.CatalogPageSize {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			page, err := s.products.List(ctx, s.cfg.CatalogPageSize, offset)
			if err != nil {
				return res, err
			}
			for _, p := range page {
				s.sweepProduct(ctx, res, p.ID, "")
			}
			if len(page) < s.cfg.CatalogPageSize {
				break
			}
		}
	}
	return res, nil
}

// sweepProduct evalúa las bodegas donde el producto tiene fila; sin filas, evalúa el agregado.
func (s *Service) sweepProduct(ctx context.Context, res *dto.AlertSweepResult, productID, warehouseID string) {
	res.ProductsChecked++
	created, err := s.checkProduct(ctx, productID, warehouseID)
	res.AlertsCreated += created
	if err != nil {
		res.Failures = append(res.Failures, dto.SweepFailure{ProductID: productID, Error: err.Error()})
		s.log.Warn().Err(err).Str("product_id", productID).Msg("evaluación de stock bajo falló para el producto")
	}
}

func (s *Service) checkProduct(ctx context.Context, productID, warehouseID string) (int, error) {
	warehouses := []string{warehouseID}
	if warehouseID == "" {
		rows, err := s.stock.ListByProduct(ctx, productID)
		if err != nil {
			return 0, err
		}
		if len(rows) > 0 {
			warehouses = warehouses[:0]
			for _, r := range rows {
				warehouses = append(warehouses, r.WarehouseID)
			}
		}
	}
	created := 0
	for _, wh := range warehouses {
		chk, err := s.CheckLowStock(ctx, productID, wh)
		if err != nil {
			return created, err
		}
		if chk.AlertCreated {
			created++
		}
	}
	return created, nil
}

// ListAlerts filtra por producto, bodega y estado (open, resolved o vacío).
func (s *Service) ListAlerts(ctx context.Context, f dto.AlertFilter) ([]*entity.LowStockAlert, error) {
	filter := repository.AlertFilter{ProductID: f.ProductID, WarehouseID: f.WarehouseID}
	switch f.Status {
	case "":
	case "open":
		v := false
		filter.Resolved = &v
	case "resolved":
		v := true
		filter.Resolved = &v
	default:
		return nil, domain.NewValidationError("status", "debe ser open o resolved")
	}
	f.DefaultPage()
	filter.Limit, filter.Offset = f.Limit, f.Offset
	return s.alerts.List(ctx, filter)
}

// GetAlert obtiene una alerta por id.
func (s *Service) GetAlert(ctx context.Context, alertID string) (*entity.LowStockAlert, error) {
	a, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.NewNotFoundError("alerta", alertID)
	}
	return a, nil
}

func (s *Service) threshold(ctx context.Context, productID string) (int, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, domain.NewNotFoundError("producto", productID)
	}
	return p.ThresholdOr(s.cfg.DefaultThreshold), nil
}

func (s *Service) currentQuantity(ctx context.Context, productID, warehouseID string) (int, error) {
	if warehouseID == "" {
		return s.stock.SumByProduct(ctx, productID)
	}
	row, err := s.stock.Get(ctx, productID, warehouseID)
	if err != nil {
		return 0, err
	}
	if row == nil {
		return 0, nil
	}
	return row.Quantity, nil
}

func (s *Service) publish(ctx context.Context, event entity.AuditEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("action", event.Action).Msg("no se pudo publicar evento de auditoría")
	}
}
