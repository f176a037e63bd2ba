package repository

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository puerto de lectura del catálogo (colaborador) más la actualización de costo.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
}
