package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// RecordStockChange agrega una entrada al libro sin tocar el snapshot.
// Requiere transaction_type y new_quantity; el delta o la cantidad previa faltante se derivan.
// Sin ninguno de los dos, la cantidad previa es la última registrada para el par (0 si no hay).
func (s *Service) RecordStockChange(ctx context.Context, in dto.StockChangeInput) (*entity.StockLedgerEntry, error) {
	if in.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	if in.TransactionType == "" {
		return nil, domain.NewValidationError("transaction_type", "es obligatorio")
	}
	if !entity.IsValidTransactionType(in.TransactionType) {
		return nil, domain.NewValidationError("transaction_type", "desconocido: "+in.TransactionType)
	}
	if in.NewQuantity == nil {
		return nil, domain.NewValidationError("new_quantity", "es obligatorio")
	}
	newQty := *in.NewQuantity
	if newQty < 0 {
		return nil, domain.NewValidationError("new_quantity", "no puede ser negativa")
	}

	var prev, delta int
	switch {
	case in.PreviousQuantity != nil && in.QuantityDelta != nil:
		prev, delta = *in.PreviousQuantity, *in.QuantityDelta
		if prev+delta != newQty {
			return nil, domain.NewValidationError("quantity_delta", "no cuadra: previous + delta != new")
		}
	case in.PreviousQuantity != nil:
		prev = *in.PreviousQuantity
		delta = newQty - prev
	case in.QuantityDelta != nil:
		delta = *in.QuantityDelta
		prev = newQty - delta
	default:
		sum, err := s.ledger.Summarize(ctx, in.ProductID, in.WarehouseID)
		if err != nil {
			return nil, err
		}
		prev = sum.LastNew
		delta = newQty - prev
	}
	if prev < 0 {
		return nil, domain.NewValidationError("previous_quantity", "no puede ser negativa")
	}

	entry := &entity.StockLedgerEntry{
		ID:               uuid.New().String(),
		ProductID:        in.ProductID,
		WarehouseID:      in.WarehouseID,
		TransactionType:  in.TransactionType,
		QuantityDelta:    delta,
		PreviousQuantity: prev,
		NewQuantity:      newQty,
		ReferenceID:      in.ReferenceID,
		ReferenceType:    in.ReferenceType,
		Notes:            in.Notes,
		Actor:            actorOr(in.Actor),
		CreatedAt:        s.now(),
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		return nil, err
	}
	s.Publish(ctx, entity.AuditEvent{
		Action:     entity.AuditActionLedgerRecorded,
		Resource:   "stock_ledger",
		ResourceID: entry.ID,
		Actor:      entry.Actor,
		Data:       map[string]any{"product_id": entry.ProductID, "warehouse_id": entry.WarehouseID, "delta": entry.QuantityDelta},
		OccurredAt: entry.CreatedAt,
	})
	return entry, nil
}

// GetStockHistory entradas del libro del producto, más recientes primero.
func (s *Service) GetStockHistory(ctx context.Context, productID, warehouseID string, page dto.PageRequest) ([]*entity.StockLedgerEntry, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	page.DefaultPage()
	return s.ledger.List(ctx, productID, warehouseID, page.Limit, page.Offset)
}

// ReconcileLedger compara el snapshot de un par con lo que reconstruye su libro:
// primer previous + Σdelta y el new de la última entrada deben coincidir con el snapshot.
func (s *Service) ReconcileLedger(ctx context.Context, productID, warehouseID string) (*dto.ReconcileReport, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	if warehouseID == "" {
		return nil, domain.NewValidationError("warehouse_id", "es obligatorio")
	}
	snapshot, err := s.GetCurrentStock(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	sum, err := s.ledger.Summarize(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	rep := &dto.ReconcileReport{
		ProductID:        productID,
		WarehouseID:      warehouseID,
		SnapshotQuantity: snapshot,
		LedgerEntries:    sum.Entries,
		LedgerQuantity:   sum.FirstPrevious + sum.DeltaSum,
		LastNewQuantity:  sum.LastNew,
	}
	rep.Drift = rep.SnapshotQuantity - rep.LedgerQuantity
	rep.Consistent = rep.Drift == 0 && (sum.Entries == 0 || sum.LastNew == snapshot)
	if !rep.Consistent {
		s.log.Warn().Str("product_id", productID).Str("warehouse_id", warehouseID).
			Int("snapshot", snapshot).Int("ledger", rep.LedgerQuantity).Int("last_new", sum.LastNew).
			Msg("libro y snapshot no cuadran")
	}
	return rep, nil
}
