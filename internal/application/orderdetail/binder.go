package orderdetail

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// Binder crea líneas de orden y aplica su efecto en stock como una sola unidad atómica.
// Venta descuenta (OUT), importación suma (IN). Una línea repetida para (orden, producto, bodega)
// se fusiona: se valida el total combinado y solo se mueve el delta.
type Binder struct {
	txRunner   TxRunner
	mutator    StockMutator
	finder     WarehouseFinder
	alerts     LowStockChecker
	audit      AuditSink
	orders     repository.OrderRepository
	details    repository.OrderDetailRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	suppliers  repository.SupplierRepository
	stock      repository.WarehouseStockRepository
	log        *logger.Logger
	now        func() time.Time
}

// NewBinder construye el binder. alerts y audit pueden ser nil.
func NewBinder(
	txRunner TxRunner,
	mutator StockMutator,
	finder WarehouseFinder,
	alerts LowStockChecker,
	audit AuditSink,
	orders repository.OrderRepository,
	details repository.OrderDetailRepository,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	suppliers repository.SupplierRepository,
	stock repository.WarehouseStockRepository,
	log *logger.Logger,
) *Binder {
	if log == nil {
		log = logger.Nop()
	}
	return &Binder{
		txRunner:   txRunner,
		mutator:    mutator,
		finder:     finder,
		alerts:     alerts,
		audit:      audit,
		orders:     orders,
		details:    details,
		products:   products,
		warehouses: warehouses,
		suppliers:  suppliers,
		stock:      stock,
		log:        log.Component("order_detail"),
		now:        time.Now,
	}
}

// CreateOrderDetail persiste (o fusiona) la línea y aplica el movimiento de stock en la misma transacción.
// Los efectos secundarios (alerta, historial del proveedor, auditoría) corren después del commit y no fallan la operación.
func (b *Binder) CreateOrderDetail(ctx context.Context, in dto.CreateOrderDetailInput) (*dto.OrderDetailResult, error) {
	switch {
	case in.OrderID == "":
		return nil, domain.NewValidationError("order_id", "es obligatorio")
	case in.ProductID == "":
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	case in.Quantity <= 0:
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	case in.UnitPrice.IsNegative():
		return nil, domain.NewValidationError("unit_price", "no puede ser negativo")
	}

	order, err := b.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewNotFoundError("orden", in.OrderID)
	}
	if order.Type != entity.OrderTypeSale && order.Type != entity.OrderTypeImport {
		return nil, domain.NewValidationError("order_type", "desconocido: "+order.Type)
	}
	product, err := b.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("producto", in.ProductID)
	}

	var supplier *entity.Supplier
	if order.Type == entity.OrderTypeImport {
		if in.WarehouseID == "" {
			return nil, domain.NewValidationError("warehouse_id", "es obligatorio en importaciones")
		}
		if supplier, err = b.resolveSupplier(ctx, order); err != nil {
			return nil, err
		}
	} else if in.WarehouseID == "" {
		choice, err := b.finder.FindWarehouseWithStock(ctx, in.ProductID, in.Quantity)
		if err != nil {
			return nil, err
		}
		if choice == nil {
			return nil, domain.NewInsufficientStockError(in.ProductID, "", in.Quantity, b.bestSingleWarehouse(ctx, in.ProductID))
		}
		in.WarehouseID = choice.WarehouseID
	}
	wh, err := b.warehouses.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.NewNotFoundError("bodega", in.WarehouseID)
	}

	actor := in.Actor
	if actor == "" {
		actor = "system"
	}
	now := b.now()
	var result dto.OrderDetailResult
	err = b.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.OrderDetails.LockOrder(ctx, order.ID); err != nil {
			return err
		}
		existing, err := repos.OrderDetails.GetByKeyForUpdate(ctx, order.ID, in.ProductID, in.WarehouseID)
		if err != nil {
			return err
		}
		already := 0
		if existing != nil {
			already = existing.Quantity
		}
		combined := already + in.Quantity

		mutation := dto.StockMutation{
			ProductID:   in.ProductID,
			WarehouseID: in.WarehouseID,
			ReferenceID: order.ID,
			Actor:       actor,
		}
		if order.Type == entity.OrderTypeSale {
			// El total combinado se valida contra lo que la línea ya tenía comprometido más el snapshot.
			row, err := repos.Stock.LockForUpdate(ctx, in.ProductID, in.WarehouseID)
			if err != nil {
				return err
			}
			// Equivale a row.Quantity < in.Quantity: solo el delta sale del snapshot.
			if row.Quantity+already < combined {
				return domain.NewInsufficientStockError(in.ProductID, in.WarehouseID, combined, row.Quantity+already)
			}
			mutation.TransactionType = entity.TransactionTypeOUT
			mutation.ReferenceType = entity.ReferenceTypeSaleOrder
			mutation.Delta = -in.Quantity
			mutation.Notes = "venta"
		} else {
			mutation.TransactionType = entity.TransactionTypeIN
			mutation.ReferenceType = entity.ReferenceTypeImportOrder
			mutation.Delta = in.Quantity
			mutation.Notes = "importación"
		}

		entry, err := b.mutator.ApplyStockChangeInTx(ctx, repos, mutation)
		if err != nil {
			return err
		}

		if order.Type == entity.OrderTypeImport {
			current, err := repos.Products.GetByID(ctx, in.ProductID)
			if err != nil {
				return err
			}
			cost := inventory.WeightedAverageCost(entry.PreviousQuantity, current.Cost, in.Quantity, in.UnitPrice)
			if err := repos.Products.UpdateCost(ctx, in.ProductID, cost); err != nil {
				return err
			}
		}

		var detail *entity.OrderDetail
		if existing != nil {
			if err := repos.OrderDetails.UpdateQuantity(ctx, existing.ID, combined, now); err != nil {
				return err
			}
			existing.Quantity = combined
			existing.UpdatedAt = now
			detail = existing
		} else {
			detail = &entity.OrderDetail{
				ID:          uuid.New().String(),
				OrderID:     order.ID,
				ProductID:   in.ProductID,
				WarehouseID: in.WarehouseID,
				Quantity:    in.Quantity,
				UnitPrice:   in.UnitPrice,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := repos.OrderDetails.Create(ctx, detail); err != nil {
				return err
			}
		}

		result = dto.OrderDetailResult{
			Detail:        ToResponse(detail),
			Merged:        existing != nil,
			AppliedDelta:  mutation.Delta,
			StockAfter:    entry.NewQuantity,
			LedgerEntryID: entry.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.log.Info().Str("order_id", order.ID).Str("detail_id", result.Detail.ID).Str("type", order.Type).
		Int("delta", result.AppliedDelta).Bool("merged", result.Merged).Msg("línea de orden aplicada")

	b.checkLowStock(ctx, in.ProductID, in.WarehouseID)
	if supplier != nil {
		b.recordImport(ctx, supplier, order, in, now)
	}
	b.publish(ctx, entity.AuditEvent{
		Action:     entity.AuditActionOrderLineBound,
		Resource:   "order_detail",
		ResourceID: result.Detail.ID,
		Actor:      actor,
		Data: map[string]any{
			"order_id":     order.ID,
			"order_type":   order.Type,
			"product_id":   in.ProductID,
			"warehouse_id": in.WarehouseID,
			"delta":        result.AppliedDelta,
			"merged":       result.Merged,
		},
		OccurredAt: now,
	})
	return &result, nil
}

// RemoveOrderDetail borra la línea y revierte su efecto en stock en la misma transacción.
// Revertir una importación cuyo stock ya salió falla con InsufficientStockError.
func (b *Binder) RemoveOrderDetail(ctx context.Context, detailID, actor string) error {
	if detailID == "" {
		return domain.NewValidationError("detail_id", "es obligatorio")
	}
	// Lectura previa solo para conocer la orden; el bloqueo real se toma dentro de la tx.
	current, err := b.details.GetByID(ctx, detailID)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.NewNotFoundError("línea de orden", detailID)
	}
	order, err := b.orders.GetByID(ctx, current.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.NewNotFoundError("orden", current.OrderID)
	}
	if actor == "" {
		actor = "system"
	}

	var removed *entity.OrderDetail
	err = b.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.OrderDetails.LockOrder(ctx, order.ID); err != nil {
			return err
		}
		d, err := repos.OrderDetails.GetByIDForUpdate(ctx, detailID)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.NewNotFoundError("línea de orden", detailID)
		}
		m := dto.StockMutation{
			ProductID:   d.ProductID,
			WarehouseID: d.WarehouseID,
			ReferenceID: order.ID,
			Notes:       "reverso de línea " + d.ID,
			Actor:       actor,
		}
		if order.Type == entity.OrderTypeSale {
			m.TransactionType, m.ReferenceType, m.Delta = entity.TransactionTypeIN, entity.ReferenceTypeSaleOrder, d.Quantity
		} else {
			m.TransactionType, m.ReferenceType, m.Delta = entity.TransactionTypeOUT, entity.ReferenceTypeImportOrder, -d.Quantity
		}
		if _, err := b.mutator.ApplyStockChangeInTx(ctx, repos, m); err != nil {
			return err
		}
		if err := repos.OrderDetails.Delete(ctx, d.ID); err != nil {
			return err
		}
		removed = d
		return nil
	})
	if err != nil {
		return err
	}

	b.checkLowStock(ctx, removed.ProductID, removed.WarehouseID)
	b.publish(ctx, entity.AuditEvent{
		Action:     entity.AuditActionOrderLineRemoved,
		Resource:   "order_detail",
		ResourceID: removed.ID,
		Actor:      actor,
		Data:       map[string]any{"order_id": order.ID, "quantity": removed.Quantity},
		OccurredAt: b.now(),
	})
	return nil
}

// ListOrderDetails líneas de una orden.
func (b *Binder) ListOrderDetails(ctx context.Context, orderID string) ([]dto.OrderDetailResponse, error) {
	order, err := b.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewNotFoundError("orden", orderID)
	}
	list, err := b.details.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderDetailResponse, 0, len(list))
	for _, d := range list {
		out = append(out, ToResponse(d))
	}
	return out, nil
}

// ToResponse convierte la entidad al DTO de salida.
func ToResponse(d *entity.OrderDetail) dto.OrderDetailResponse {
	return dto.OrderDetailResponse{
		ID:          d.ID,
		OrderID:     d.OrderID,
		ProductID:   d.ProductID,
		WarehouseID: d.WarehouseID,
		Quantity:    d.Quantity,
		UnitPrice:   d.UnitPrice,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (b *Binder) resolveSupplier(ctx context.Context, order *entity.Order) (*entity.Supplier, error) {
	if order.SupplierID == "" {
		return nil, domain.NewNotFoundError("proveedor", "(orden "+order.ID+" sin proveedor)")
	}
	sp, err := b.suppliers.GetByID(ctx, order.SupplierID)
	if err != nil {
		return nil, err
	}
	if sp == nil || !sp.IsActive {
		return nil, domain.NewNotFoundError("proveedor", order.SupplierID)
	}
	return sp, nil
}

// bestSingleWarehouse mayor cantidad disponible en una sola bodega (detalle del faltante).
func (b *Binder) bestSingleWarehouse(ctx context.Context, productID string) int {
	rows, err := b.stock.ListByProduct(ctx, productID)
	if err != nil {
		return 0
	}
	best := 0
	for _, r := range rows {
		if r.Quantity > best {
			best = r.Quantity
		}
	}
	return best
}

func (b *Binder) checkLowStock(ctx context.Context, productID, warehouseID string) {
	if b.alerts == nil {
		return
	}
	if _, err := b.alerts.CheckLowStock(ctx, productID, warehouseID); err != nil {
		b.log.Warn().Err(err).Str("product_id", productID).Str("warehouse_id", warehouseID).
			Msg("evaluación de stock bajo falló tras el commit")
	}
}

func (b *Binder) recordImport(ctx context.Context, sp *entity.Supplier, order *entity.Order, in dto.CreateOrderDetailInput, now time.Time) {
	imp := &entity.SupplierImport{
		ID:          uuid.New().String(),
		SupplierID:  sp.ID,
		OrderID:     order.ID,
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitPrice,
		CreatedAt:   now,
	}
	if err := b.suppliers.RecordImport(ctx, imp); err != nil {
		b.log.Warn().Err(err).Str("supplier_id", sp.ID).Str("order_id", order.ID).
			Msg("no se pudo registrar el historial de importación")
	}
}

func (b *Binder) publish(ctx context.Context, event entity.AuditEvent) {
	if b.audit == nil {
		return
	}
	if err := b.audit.Publish(ctx, event); err != nil {
		b.log.Warn().Err(err).Str("action", event.Action).Msg("no se pudo publicar evento de auditoría")
	}
}
