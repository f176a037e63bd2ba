package memory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.LowStockAlertRepository = (*AlertRepo)(nil)

// AlertRepo alertas en memoria. Create respeta la unicidad de alerta abierta por par.
type AlertRepo struct {
	b *binding
}

func (r *AlertRepo) Create(_ context.Context, a *entity.LowStockAlert) error {
	if err := r.b.s.fault("alert.create"); err != nil {
		return err
	}
	return r.b.write(func(st *state) error {
		for _, existing := range st.alerts {
			if !existing.IsResolved && existing.ProductID == a.ProductID && existing.WarehouseID == a.WarehouseID {
				return domain.ErrDuplicate
			}
		}
		cp := *a
		st.alerts = append(st.alerts, &cp)
		return nil
	})
}

func (r *AlertRepo) GetByID(_ context.Context, id string) (*entity.LowStockAlert, error) {
	if err := r.b.s.fault("alert.get"); err != nil {
		return nil, err
	}
	return r.find(func(a *entity.LowStockAlert) bool { return a.ID == id }), nil
}

func (r *AlertRepo) GetUnresolved(_ context.Context, productID, warehouseID string) (*entity.LowStockAlert, error) {
	if err := r.b.s.fault("alert.get"); err != nil {
		return nil, err
	}
	return r.find(func(a *entity.LowStockAlert) bool {
		return !a.IsResolved && a.ProductID == productID && a.WarehouseID == warehouseID
	}), nil
}

func (r *AlertRepo) ListUnresolved(ctx context.Context) ([]*entity.LowStockAlert, error) {
	resolved := false
	return r.List(ctx, repository.AlertFilter{Resolved: &resolved})
}

func (r *AlertRepo) List(_ context.Context, f repository.AlertFilter) ([]*entity.LowStockAlert, error) {
	if err := r.b.s.fault("alert.list"); err != nil {
		return nil, err
	}
	var list []*entity.LowStockAlert
	_ = r.b.read(func(st *state) error {
		for _, a := range st.alerts {
			if f.ProductID != "" && a.ProductID != f.ProductID {
				continue
			}
			if f.WarehouseID != "" && a.WarehouseID != f.WarehouseID {
				continue
			}
			if f.Resolved != nil && a.IsResolved != *f.Resolved {
				continue
			}
			cp := *a
			list = append(list, &cp)
		}
		return nil
	})
	return paginate(list, f.Limit, f.Offset), nil
}

func (r *AlertRepo) MarkResolved(_ context.Context, id, resolvedBy string, at time.Time) (bool, error) {
	if err := r.b.s.fault("alert.resolve"); err != nil {
		return false, err
	}
	changed := false
	err := r.b.write(func(st *state) error {
		for _, a := range st.alerts {
			if a.ID == id && !a.IsResolved {
				a.IsResolved = true
				a.ResolvedBy = resolvedBy
				ts := at
				a.ResolvedAt = &ts
				changed = true
				return nil
			}
		}
		return nil
	})
	return changed, err
}

func (r *AlertRepo) find(match func(*entity.LowStockAlert) bool) *entity.LowStockAlert {
	var out *entity.LowStockAlert
	_ = r.b.read(func(st *state) error {
		for _, a := range st.alerts {
			if match(a) {
				cp := *a
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out
}
