package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// TransferStock mueve stock entre dos bodegas en una sola transacción y deja el traslado como completed.
// Falla con InsufficientStockError (sin escrituras) si el origen no alcanza.
func (s *Service) TransferStock(ctx context.Context, in dto.TransferStockInput) (*dto.TransferStockResult, error) {
	if err := s.validateTransfer(ctx, in); err != nil {
		return nil, err
	}
	actor := actorOr(in.Actor)
	now := s.now()
	t := &entity.StockTransfer{
		ID:              uuid.New().String(),
		ProductID:       in.ProductID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		Status:          entity.TransferStatusCompleted,
		Notes:           in.Notes,
		Actor:           actor,
		CreatedAt:       now,
		CompletedAt:     &now,
	}

	var result *dto.TransferStockResult
	err := s.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		res, err := s.moveStock(ctx, repos, t, now)
		if err != nil {
			return err
		}
		if err := repos.Transfers.Create(ctx, t); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.afterTransfer(ctx, t, result)
	return result, nil
}

// RequestTransfer registra un traslado pending tras verificar (solo lectura) que el origen alcanza hoy.
// El stock no se mueve hasta CompleteTransfer.
func (s *Service) RequestTransfer(ctx context.Context, in dto.TransferStockInput) (*entity.StockTransfer, error) {
	if err := s.validateTransfer(ctx, in); err != nil {
		return nil, err
	}
	available, err := s.GetCurrentStock(ctx, in.ProductID, in.FromWarehouseID)
	if err != nil {
		return nil, err
	}
	if available < in.Quantity {
		return nil, domain.NewInsufficientStockError(in.ProductID, in.FromWarehouseID, in.Quantity, available)
	}
	actor := actorOr(in.Actor)
	t := &entity.StockTransfer{
		ID:              uuid.New().String(),
		ProductID:       in.ProductID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		Status:          entity.TransferStatusPending,
		Notes:           in.Notes,
		Actor:           actor,
		CreatedAt:       s.now(),
	}
	if err := s.transfers.Create(ctx, t); err != nil {
		return nil, err
	}
	s.Publish(ctx, entity.AuditEvent{
		Action:     entity.AuditActionTransferRequested,
		Resource:   "stock_transfer",
		ResourceID: t.ID,
		Actor:      actor,
		Data:       map[string]any{"product_id": t.ProductID, "from": t.FromWarehouseID, "to": t.ToWarehouseID, "quantity": t.Quantity},
		OccurredAt: t.CreatedAt,
	})
	return t, nil
}

// CompleteTransfer ejecuta un traslado pending. Conflict si ya no está pending.
func (s *Service) CompleteTransfer(ctx context.Context, transferID, actor string) (*dto.TransferStockResult, error) {
	if transferID == "" {
		return nil, domain.NewValidationError("transfer_id", "es obligatorio")
	}
	now := s.now()
	var (
		t      *entity.StockTransfer
		result *dto.TransferStockResult
	)
	err := s.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		t, err = lockPendingTransfer(ctx, repos, transferID)
		if err != nil {
			return err
		}
		// El libro acredita a quien completa, no a quien solicitó.
		if actor != "" {
			t.Actor = actor
		}
		res, err := s.moveStock(ctx, repos, t, now)
		if err != nil {
			return err
		}
		if err := repos.Transfers.UpdateStatus(ctx, t.ID, entity.TransferStatusCompleted, actor, &now); err != nil {
			return err
		}
		t.Status = entity.TransferStatusCompleted
		t.CompletedAt = &now
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.afterTransfer(ctx, t, result)
	return result, nil
}

// CancelTransfer pasa un traslado de pending a cancelled. No toca stock.
func (s *Service) CancelTransfer(ctx context.Context, transferID, actor string) (*entity.StockTransfer, error) {
	if transferID == "" {
		return nil, domain.NewValidationError("transfer_id", "es obligatorio")
	}
	var t *entity.StockTransfer
	err := s.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		t, err = lockPendingTransfer(ctx, repos, transferID)
		if err != nil {
			return err
		}
		if err := repos.Transfers.UpdateStatus(ctx, t.ID, entity.TransferStatusCancelled, actor, nil); err != nil {
			return err
		}
		t.Status = entity.TransferStatusCancelled
		if actor != "" {
			t.Actor = actor
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Publish(ctx, entity.AuditEvent{
		Action:     entity.AuditActionTransferCancelled,
		Resource:   "stock_transfer",
		ResourceID: t.ID,
		Actor:      actorOr(actor),
		OccurredAt: s.now(),
	})
	return t, nil
}

// GetTransfer obtiene un traslado por id.
func (s *Service) GetTransfer(ctx context.Context, transferID string) (*entity.StockTransfer, error) {
	t, err := s.transfers.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NewNotFoundError("traslado", transferID)
	}
	return t, nil
}

func lockPendingTransfer(ctx context.Context, repos repository.TxRepos, id string) (*entity.StockTransfer, error) {
	t, err := repos.Transfers.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NewNotFoundError("traslado", id)
	}
	if t.Status != entity.TransferStatusPending {
		return nil, fmt.Errorf("%w: traslado %s en estado %s", domain.ErrConflict, id, t.Status)
	}
	return t, nil
}

// moveStock bloquea ambas filas en orden canónico, descuenta el origen, suma al destino
// y agrega el par TRANSFER_OUT / TRANSFER_IN con la referencia del traslado.
func (s *Service) moveStock(ctx context.Context, repos repository.TxRepos, t *entity.StockTransfer, now time.Time) (*dto.TransferStockResult, error) {
	first, second := inventory.LockOrder(t.FromWarehouseID, t.ToWarehouseID)
	locked := make(map[string]*entity.WarehouseStock, 2)
	for _, wh := range []string{first, second} {
		row, err := repos.Stock.LockForUpdate(ctx, t.ProductID, wh)
		if err != nil {
			return nil, err
		}
		locked[wh] = row
	}
	src, dst := locked[t.FromWarehouseID], locked[t.ToWarehouseID]
	if src.Quantity < t.Quantity {
		return nil, domain.NewInsufficientStockError(t.ProductID, t.FromWarehouseID, t.Quantity, src.Quantity)
	}

	res := &dto.TransferStockResult{
		TransferID:        t.ID,
		SourceStockBefore: src.Quantity,
		SourceStockAfter:  src.Quantity - t.Quantity,
		DestStockBefore:   dst.Quantity,
		DestStockAfter:    dst.Quantity + t.Quantity,
	}
	src.Quantity, src.UpdatedAt = res.SourceStockAfter, now
	dst.Quantity, dst.UpdatedAt = res.DestStockAfter, now
	if err := repos.Stock.Save(ctx, src); err != nil {
		return nil, err
	}
	if err := repos.Stock.Save(ctx, dst); err != nil {
		return nil, err
	}

	entries := []*entity.StockLedgerEntry{
		{
			ProductID:        t.ProductID,
			WarehouseID:      t.FromWarehouseID,
			TransactionType:  entity.TransactionTypeTransferOUT,
			QuantityDelta:    -t.Quantity,
			PreviousQuantity: res.SourceStockBefore,
			NewQuantity:      res.SourceStockAfter,
		},
		{
			ProductID:        t.ProductID,
			WarehouseID:      t.ToWarehouseID,
			TransactionType:  entity.TransactionTypeTransferIN,
			QuantityDelta:    t.Quantity,
			PreviousQuantity: res.DestStockBefore,
			NewQuantity:      res.DestStockAfter,
		},
	}
	for _, e := range entries {
		e.ID = uuid.New().String()
		e.ReferenceID = t.ID
		e.ReferenceType = entity.ReferenceTypeTransfer
		e.Notes = t.Notes
		e.Actor = t.Actor
		e.CreatedAt = now
		if err := repos.Ledger.Append(ctx, e); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *Service) afterTransfer(ctx context.Context, t *entity.StockTransfer, res *dto.TransferStockResult) {
	s.log.Info().Str("transfer_id", t.ID).Str("product_id", t.ProductID).
		Str("from", t.FromWarehouseID).Str("to", t.ToWarehouseID).Int("quantity", t.Quantity).
		Msg("traslado completado")
	s.CheckLowStockAfterCommit(ctx, t.ProductID, t.FromWarehouseID)
	s.CheckLowStockAfterCommit(ctx, t.ProductID, t.ToWarehouseID)
	s.Publish(ctx, entity.AuditEvent{
		Action:     entity.AuditActionStockTransferred,
		Resource:   "stock_transfer",
		ResourceID: t.ID,
		Actor:      t.Actor,
		Data: map[string]any{
			"product_id":          t.ProductID,
			"from":                t.FromWarehouseID,
			"to":                  t.ToWarehouseID,
			"quantity":            t.Quantity,
			"source_stock_before": res.SourceStockBefore,
			"dest_stock_before":   res.DestStockBefore,
		},
		OccurredAt: s.now(),
	})
}

func (s *Service) validateTransfer(ctx context.Context, in dto.TransferStockInput) error {
	switch {
	case in.ProductID == "":
		return domain.NewValidationError("product_id", "es obligatorio")
	case in.FromWarehouseID == "" || in.ToWarehouseID == "":
		return domain.NewValidationError("from_warehouse_id/to_warehouse_id", "son obligatorios")
	case in.FromWarehouseID == in.ToWarehouseID:
		return domain.NewValidationError("to_warehouse_id", "debe ser distinta de la bodega origen")
	case in.Quantity <= 0:
		return domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if err := s.ensureProduct(ctx, in.ProductID); err != nil {
		return err
	}
	if err := s.ensureWarehouse(ctx, in.FromWarehouseID); err != nil {
		return err
	}
	return s.ensureWarehouse(ctx, in.ToWarehouseID)
}
