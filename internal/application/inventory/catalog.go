package inventory

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// GetProduct producto del catálogo con su stock agregado.
func (s *Service) GetProduct(ctx context.Context, productID string) (*dto.ProductResponse, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "es requerido")
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NewNotFoundError("producto", productID)
	}
	total, err := s.stock.SumByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := toProductResponse(p, total)
	return &out, nil
}

// ListProducts catálogo activo paginado, ordenado por id.
func (s *Service) ListProducts(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := s.products.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductListResponse{
		Items: make([]dto.ProductResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, p := range list {
		total, err := s.stock.SumByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, toProductResponse(p, total))
	}
	return out, nil
}

func toProductResponse(p *entity.Product, total int) dto.ProductResponse {
	return dto.ProductResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		LowStockThreshold: p.LowStockThreshold,
		Cost:              p.Cost,
		IsActive:          p.IsActive,
		TotalStock:        total,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
