package memory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados en memoria.
type TransferRepo struct {
	b *binding
}

func (r *TransferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	if err := r.b.s.fault("transfer.create"); err != nil {
		return err
	}
	return r.b.write(func(st *state) error {
		if _, ok := st.transfers[t.ID]; ok {
			return domain.ErrDuplicate
		}
		cp := *t
		st.transfers[t.ID] = &cp
		return nil
	})
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	_ = r.b.read(func(st *state) error {
		if t, ok := st.transfers[id]; ok {
			cp := *t
			out = &cp
		}
		return nil
	})
	return out, nil
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepo) UpdateStatus(_ context.Context, id, status, actor string, completedAt *time.Time) error {
	if err := r.b.s.fault("transfer.update"); err != nil {
		return err
	}
	return r.b.write(func(st *state) error {
		t, ok := st.transfers[id]
		if !ok {
			return domain.NewNotFoundError("traslado", id)
		}
		t.Status = status
		t.CompletedAt = completedAt
		if actor != "" {
			t.Actor = actor
		}
		return nil
	})
}
