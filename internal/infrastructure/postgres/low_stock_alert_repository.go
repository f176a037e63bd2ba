package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.LowStockAlertRepository = (*LowStockAlertRepo)(nil)

// LowStockAlertRepo implementación de alertas sobre PostgreSQL.
// El índice único parcial ux_low_stock_alerts_open garantiza una sola alerta abierta por par.
type LowStockAlertRepo struct {
	q Querier
}

// NewLowStockAlertRepository construye el adaptador de alertas.
func NewLowStockAlertRepository(q Querier) *LowStockAlertRepo {
	return &LowStockAlertRepo{q: q}
}

const alertColumns = `id, product_id, warehouse_id::text, current_quantity, threshold, alert_level,
	is_resolved, resolved_at, COALESCE(resolved_by, ''), COALESCE(actor, ''), created_at`

func scanAlert(row pgx.Row) (*entity.LowStockAlert, error) {
	var a entity.LowStockAlert
	var wh *string
	if err := row.Scan(&a.ID, &a.ProductID, &wh, &a.CurrentQuantity, &a.Threshold, &a.AlertLevel,
		&a.IsResolved, &a.ResolvedAt, &a.ResolvedBy, &a.Actor, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.WarehouseID = fromNullable(wh)
	return &a, nil
}

// Create inserta una alerta abierta. domain.ErrDuplicate si ya existe otra sin resolver.
func (r *LowStockAlertRepo) Create(ctx context.Context, a *entity.LowStockAlert) error {
	query := `
		INSERT INTO low_stock_alerts (id, product_id, warehouse_id, current_quantity, threshold, alert_level,
			is_resolved, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, NULLIF($7, ''), $8)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.ProductID, nullableID(a.WarehouseID), a.CurrentQuantity, a.Threshold, a.AlertLevel, a.Actor, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.NewNotFoundError("producto/bodega", a.ProductID+"/"+a.WarehouseID)
		}
		return persistErr("insert alert", err)
	}
	return nil
}

// GetByID obtiene una alerta por ID. nil si no existe.
func (r *LowStockAlertRepo) GetByID(ctx context.Context, id string) (*entity.LowStockAlert, error) {
	if err := checkIDs("alert_id", id); err != nil {
		return nil, err
	}
	a, err := scanAlert(r.q.QueryRow(ctx, `SELECT `+alertColumns+` FROM low_stock_alerts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistErr("get alert", err)
	}
	return a, nil
}

// GetUnresolved alerta abierta del par, o nil.
func (r *LowStockAlertRepo) GetUnresolved(ctx context.Context, productID, warehouseID string) (*entity.LowStockAlert, error) {
	if err := checkIDs("product_id", productID, "warehouse_id", warehouseID); err != nil {
		return nil, err
	}
	query := `SELECT ` + alertColumns + ` FROM low_stock_alerts
		WHERE product_id = $1 AND warehouse_id IS NOT DISTINCT FROM $2::uuid AND NOT is_resolved`
	a, err := scanAlert(r.q.QueryRow(ctx, query, productID, nullableID(warehouseID)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistErr("get unresolved alert", err)
	}
	return a, nil
}

// ListUnresolved todas las alertas abiertas, más antiguas primero.
func (r *LowStockAlertRepo) ListUnresolved(ctx context.Context) ([]*entity.LowStockAlert, error) {
	resolved := false
	return r.List(ctx, repository.AlertFilter{Resolved: &resolved})
}

// List filtra por producto, bodega y estado. Limit 0 = sin límite.
func (r *LowStockAlertRepo) List(ctx context.Context, f repository.AlertFilter) ([]*entity.LowStockAlert, error) {
	if err := checkIDs("product_id", f.ProductID, "warehouse_id", f.WarehouseID); err != nil {
		return nil, err
	}
	var (
		conds []string
		args  []any
	)
	if f.ProductID != "" {
		args = append(args, f.ProductID)
		conds = append(conds, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if f.WarehouseID != "" {
		args = append(args, f.WarehouseID)
		conds = append(conds, fmt.Sprintf("warehouse_id = $%d", len(args)))
	}
	if f.Resolved != nil {
		args = append(args, *f.Resolved)
		conds = append(conds, fmt.Sprintf("is_resolved = $%d", len(args)))
	}
	query := `SELECT ` + alertColumns + ` FROM low_stock_alerts`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at ASC, id ASC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, persistErr("list alerts", err)
	}
	defer rows.Close()
	var list []*entity.LowStockAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, persistErr("scan alert", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list alerts", err)
	}
	return list, nil
}

// MarkResolved cierra la alerta solo si sigue abierta; false si no cambió ninguna fila.
func (r *LowStockAlertRepo) MarkResolved(ctx context.Context, id, resolvedBy string, at time.Time) (bool, error) {
	if err := checkIDs("alert_id", id); err != nil {
		return false, err
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE low_stock_alerts
		SET is_resolved = true, resolved_at = $3, resolved_by = $2
		WHERE id = $1 AND NOT is_resolved`,
		id, resolvedBy, at)
	if err != nil {
		return false, persistErr("resolve alert", err)
	}
	return cmd.RowsAffected() == 1, nil
}
