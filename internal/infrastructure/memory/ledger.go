package memory

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.StockLedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de stock en memoria (solo inserción).
type LedgerRepo struct {
	b *binding
}

func (r *LedgerRepo) Append(_ context.Context, e *entity.StockLedgerEntry) error {
	if err := r.b.s.fault("ledger.append"); err != nil {
		return err
	}
	cp := *e
	return r.b.write(func(st *state) error {
		st.ledger = append(st.ledger, &cp)
		return nil
	})
}

// List más reciente primero; warehouseID vacío = todas las bodegas.
func (r *LedgerRepo) List(_ context.Context, productID, warehouseID string, limit, offset int) ([]*entity.StockLedgerEntry, error) {
	if err := r.b.s.fault("ledger.list"); err != nil {
		return nil, err
	}
	var matched []*entity.StockLedgerEntry
	_ = r.b.read(func(st *state) error {
		for i := len(st.ledger) - 1; i >= 0; i-- {
			e := st.ledger[i]
			if e.ProductID != productID || (warehouseID != "" && e.WarehouseID != warehouseID) {
				continue
			}
			cp := *e
			matched = append(matched, &cp)
		}
		return nil
	})
	return paginate(matched, limit, offset), nil
}

// Summarize agrega el par exacto; warehouseID vacío = solo entradas agregadas.
func (r *LedgerRepo) Summarize(_ context.Context, productID, warehouseID string) (*repository.LedgerSummary, error) {
	if err := r.b.s.fault("ledger.summarize"); err != nil {
		return nil, err
	}
	sum := &repository.LedgerSummary{}
	_ = r.b.read(func(st *state) error {
		for _, e := range st.ledger {
			if e.ProductID != productID || e.WarehouseID != warehouseID {
				continue
			}
			if sum.Entries == 0 {
				sum.FirstPrevious = e.PreviousQuantity
			}
			sum.Entries++
			sum.DeltaSum += e.QuantityDelta
			sum.LastNew = e.NewQuantity
		}
		return nil
	})
	return sum, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
