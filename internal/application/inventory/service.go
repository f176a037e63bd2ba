package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// SystemActor actor usado cuando el llamador no se identifica.
const SystemActor = "system"

// Service dueño exclusivo de las escrituras al snapshot por bodega y al libro de stock.
// Toda lectura-escritura del snapshot ocurre dentro de TxRunner.Run con la fila bloqueada.
type Service struct {
	txRunner   TxRunner
	stock      repository.WarehouseStockRepository
	ledger     repository.StockLedgerRepository
	transfers  repository.StockTransferRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	alerts     LowStockChecker
	audit      AuditSink
	log        *logger.Logger
	now        func() time.Time
}

// NewService construye el servicio. alerts y audit pueden ser nil (sin efectos posteriores).
func NewService(
	txRunner TxRunner,
	stock repository.WarehouseStockRepository,
	ledger repository.StockLedgerRepository,
	transfers repository.StockTransferRepository,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	alerts LowStockChecker,
	audit AuditSink,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		txRunner:   txRunner,
		stock:      stock,
		ledger:     ledger,
		transfers:  transfers,
		products:   products,
		warehouses: warehouses,
		alerts:     alerts,
		audit:      audit,
		log:        log.Component("inventory"),
		now:        time.Now,
	}
}

// GetCurrentStock cantidad en la bodega, o la suma de todas las bodegas si warehouseID es vacío.
// Un par sin fila vale 0.
func (s *Service) GetCurrentStock(ctx context.Context, productID, warehouseID string) (int, error) {
	if productID == "" {
		return 0, domain.NewValidationError("product_id", "es obligatorio")
	}
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

// GetStockSummary total del producto y desglose por bodega.
func (s *Service) GetStockSummary(ctx context.Context, productID string) (*dto.StockSummary, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	rows, err := s.stock.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := &dto.StockSummary{ProductID: productID, Warehouses: make([]dto.WarehouseQuantity, 0, len(rows))}
	for _, r := range rows {
		out.TotalStock += r.Quantity
		out.Warehouses = append(out.Warehouses, dto.WarehouseQuantity{WarehouseID: r.WarehouseID, Quantity: r.Quantity})
	}
	return out, nil
}

// AdjustStock fija el snapshot en un valor absoluto y registra un ADJUSTMENT con el delta (positivo, negativo o cero).
// Solo para llamadores privilegiados; el control de rol vive en la capa HTTP.
func (s *Service) AdjustStock(ctx context.Context, in dto.AdjustStockInput) (*dto.AdjustStockResult, error) {
	if in.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	if in.WarehouseID == "" {
		return nil, domain.NewValidationError("warehouse_id", "es obligatorio")
	}
	if in.NewQuantity < 0 {
		return nil, domain.NewValidationError("new_quantity", "no puede ser negativa")
	}
	if err := s.ensureProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	if err := s.ensureWarehouse(ctx, in.WarehouseID); err != nil {
		return nil, err
	}

	actor := actorOr(in.Actor)
	now := s.now()
	var result dto.AdjustStockResult
	err := s.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		row, err := repos.Stock.LockForUpdate(ctx, in.ProductID, in.WarehouseID)
		if err != nil {
			return err
		}
		prev := row.Quantity
		row.Quantity = in.NewQuantity
		row.Note = in.Notes
		row.UpdatedAt = now
		if err := repos.Stock.Save(ctx, row); err != nil {
			return err
		}
		entry := &entity.StockLedgerEntry{
			ID:               uuid.New().String(),
			ProductID:        in.ProductID,
			WarehouseID:      in.WarehouseID,
			TransactionType:  entity.TransactionTypeADJUSTMENT,
			QuantityDelta:    in.NewQuantity - prev,
			PreviousQuantity: prev,
			NewQuantity:      in.NewQuantity,
			ReferenceType:    entity.ReferenceTypeAdjustment,
			Notes:            in.Notes,
			Actor:            actor,
			CreatedAt:        now,
		}
		entry.ReferenceID = entry.ID
		if err := repos.Ledger.Append(ctx, entry); err != nil {
			return err
		}
		result = dto.AdjustStockResult{
			PreviousQuantity: prev,
			NewQuantity:      in.NewQuantity,
			Adjustment:       entry.QuantityDelta,
			LedgerEntryID:    entry.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("product_id", in.ProductID).Str("warehouse_id", in.WarehouseID).
		Int("previous", result.PreviousQuantity).Int("new", result.NewQuantity).Str("actor", actor).
		Msg("ajuste de stock aplicado")
	s.CheckLowStockAfterCommit(ctx, in.ProductID, in.WarehouseID)
	s.Publish(ctx, entity.AuditEvent{
		Action:     entity.AuditActionStockAdjusted,
		Resource:   "warehouse_stock",
		ResourceID: in.ProductID + "/" + in.WarehouseID,
		Actor:      actor,
		Data: map[string]any{
			"previous_quantity": result.PreviousQuantity,
			"new_quantity":      result.NewQuantity,
			"adjustment":        result.Adjustment,
			"notes":             in.Notes,
		},
		OccurredAt: now,
	})
	return &result, nil
}

// ApplyStockChangeInTx aplica un delta dentro de una transacción ya abierta por el llamador:
// bloquea la fila, verifica que no quede negativa, escribe el snapshot y agrega la entrada del libro.
func (s *Service) ApplyStockChangeInTx(ctx context.Context, repos repository.TxRepos, m dto.StockMutation) (*entity.StockLedgerEntry, error) {
	if m.ProductID == "" || m.WarehouseID == "" {
		return nil, domain.NewValidationError("product_id/warehouse_id", "son obligatorios")
	}
	if !entity.IsValidTransactionType(m.TransactionType) {
		return nil, domain.NewValidationError("transaction_type", "desconocido: "+m.TransactionType)
	}
	row, err := repos.Stock.LockForUpdate(ctx, m.ProductID, m.WarehouseID)
	if err != nil {
		return nil, err
	}
	prev := row.Quantity
	next := prev + m.Delta
	if next < 0 {
		return nil, domain.NewInsufficientStockError(m.ProductID, m.WarehouseID, -m.Delta, prev)
	}
	now := s.now()
	row.Quantity = next
	row.UpdatedAt = now
	if err := repos.Stock.Save(ctx, row); err != nil {
		return nil, err
	}
	entry := &entity.StockLedgerEntry{
		ID:               uuid.New().String(),
		ProductID:        m.ProductID,
		WarehouseID:      m.WarehouseID,
		TransactionType:  m.TransactionType,
		QuantityDelta:    m.Delta,
		PreviousQuantity: prev,
		NewQuantity:      next,
		ReferenceID:      m.ReferenceID,
		ReferenceType:    m.ReferenceType,
		Notes:            m.Notes,
		Actor:            actorOr(m.Actor),
		CreatedAt:        now,
	}
	if err := repos.Ledger.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// CheckLowStockAfterCommit evalúa el umbral del par; los fallos solo se registran.
func (s *Service) CheckLowStockAfterCommit(ctx context.Context, productID, warehouseID string) {
	if s.alerts == nil {
		return
	}
	if _, err := s.alerts.CheckLowStock(ctx, productID, warehouseID); err != nil {
		s.log.Warn().Err(err).Str("product_id", productID).Str("warehouse_id", warehouseID).
			Msg("evaluación de stock bajo falló tras el commit")
	}
}

// Publish envía un evento al sink de auditoría sin propagar errores.
func (s *Service) Publish(ctx context.Context, event entity.AuditEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("action", event.Action).Msg("no se pudo publicar evento de auditoría")
	}
}

func (s *Service) ensureProduct(ctx context.Context, productID string) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.NewNotFoundError("producto", productID)
	}
	return nil
}

func (s *Service) ensureWarehouse(ctx context.Context, warehouseID string) error {
	w, err := s.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if w == nil {
		return domain.NewNotFoundError("bodega", warehouseID)
	}
	return nil
}

func actorOr(actor string) string {
	if actor == "" {
		return SystemActor
	}
	return actor
}
