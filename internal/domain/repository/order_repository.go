package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// OrderRepository lectura de cabeceras de orden (colaborador externo).
type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Order, error)
}

// OrderDetailRepository puerto de persistencia de líneas de orden.
type OrderDetailRepository interface {
	// LockOrder bloquea la cabecera de la orden; serializa escrituras concurrentes de líneas.
	LockOrder(ctx context.Context, orderID string) error
	// GetByKeyForUpdate busca y bloquea la línea (orden, producto, bodega); nil si no existe.
	GetByKeyForUpdate(ctx context.Context, orderID, productID, warehouseID string) (*entity.OrderDetail, error)
	// GetByID lectura sin bloqueo; nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.OrderDetail, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.OrderDetail, error)
	Create(ctx context.Context, detail *entity.OrderDetail) error
	UpdateQuantity(ctx context.Context, id string, quantity int, at time.Time) error
	Delete(ctx context.Context, id string) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderDetail, error)
}
