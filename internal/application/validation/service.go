package validation

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// Service validaciones de disponibilidad previas a vender, importar o trasladar. Solo lectura.
type Service struct {
	stock repository.WarehouseStockRepository
	log   *logger.Logger
}

// NewService construye el servicio de validación.
func NewService(stock repository.WarehouseStockRepository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{stock: stock, log: log.Component("validation")}
}

// ValidateStockInWarehouse compara lo solicitado con el snapshot de la bodega (0 si no hay fila).
func (s *Service) ValidateStockInWarehouse(ctx context.Context, productID, warehouseID string, requested int) (*dto.StockCheck, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	if warehouseID == "" {
		return nil, domain.NewValidationError("warehouse_id", "es obligatorio")
	}
	if requested <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	available, err := s.quantityIn(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	return check(available, requested), nil
}

// ValidateSaleOrder valida en la bodega exacta cada línea que trae bodega.
// Líneas repetidas del mismo par se suman antes de validar. Reporta todas las que fallan.
func (s *Service) ValidateSaleOrder(ctx context.Context, lines []dto.SaleLine) (*dto.SaleValidationReport, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	type key struct{ product, warehouse string }
	var order []key
	totals := map[key]int{}
	for _, l := range lines {
		if l.WarehouseID == "" {
			continue
		}
		k := key{l.ProductID, l.WarehouseID}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] += l.Quantity
	}

	report := &dto.SaleValidationReport{IsValid: true, Errors: []dto.StockShortage{}}
	for _, k := range order {
		available, err := s.quantityIn(ctx, k.product, k.warehouse)
		if err != nil {
			return nil, err
		}
		if c := check(available, totals[k]); !c.IsValid {
			report.IsValid = false
			report.Errors = append(report.Errors, dto.StockShortage{
				ProductID:   k.product,
				WarehouseID: k.warehouse,
				Requested:   c.Requested,
				Available:   c.Available,
				Shortage:    c.Shortage,
			})
		}
	}
	return report, nil
}

// ValidateSaleOrderTotalStock igual que ValidateSaleOrder pero contra el stock agregado de cada producto.
func (s *Service) ValidateSaleOrderTotalStock(ctx context.Context, lines []dto.SaleLine) (*dto.SaleValidationReport, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	var order []string
	totals := map[string]int{}
	for _, l := range lines {
		if _, seen := totals[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		totals[l.ProductID] += l.Quantity
	}

	report := &dto.SaleValidationReport{IsValid: true, Errors: []dto.StockShortage{}}
	for _, productID := range order {
		available, err := s.stock.SumByProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if c := check(available, totals[productID]); !c.IsValid {
			report.IsValid = false
			report.Errors = append(report.Errors, dto.StockShortage{
				ProductID: productID,
				Requested: c.Requested,
				Available: c.Available,
				Shortage:  c.Shortage,
			})
		}
	}
	return report, nil
}

// FindWarehouseWithStock elige la bodega con más stock que cubra todo lo solicitado (empates por id).
// nil si ninguna bodega alcanza por sí sola.
func (s *Service) FindWarehouseWithStock(ctx context.Context, productID string, requested int) (*dto.WarehouseChoice, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	if requested <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	rows, err := s.stock.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	best := inventory.SelectWarehouse(rows, requested)
	if best == nil {
		s.log.Debug().Str("product_id", productID).Int("requested", requested).Msg("ninguna bodega cubre la cantidad")
		return nil, nil
	}
	return &dto.WarehouseChoice{WarehouseID: best.WarehouseID, Available: best.Quantity}, nil
}

func (s *Service) quantityIn(ctx context.Context, productID, warehouseID string) (int, error) {
	row, err := s.stock.Get(ctx, productID, warehouseID)
	if err != nil {
		return 0, err
	}
	if row == nil {
		return 0, nil
	}
	return row.Quantity, nil
}

func check(available, requested int) *dto.StockCheck {
	shortage := requested - available
	if shortage < 0 {
		shortage = 0
	}
	return &dto.StockCheck{
		IsValid:   shortage == 0,
		Available: available,
		Requested: requested,
		Shortage:  shortage,
	}
}

func validateLines(lines []dto.SaleLine) error {
	if len(lines) == 0 {
		return domain.NewValidationError("lines", "no puede estar vacío")
	}
	for i, l := range lines {
		if l.ProductID == "" {
			return domain.NewValidationError(fmt.Sprintf("lines[%d].product_id", i), "es obligatorio")
		}
		if l.Quantity <= 0 {
			return domain.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "debe ser mayor que cero")
		}
	}
	return nil
}
