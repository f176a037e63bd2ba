package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductResponse salida de un producto del catálogo. Cost es el promedio ponderado de importaciones.
type ProductResponse struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	LowStockThreshold *int            `json:"low_stock_threshold,omitempty"`
	Cost              decimal.Decimal `json:"cost"`
	IsActive          bool            `json:"is_active"`
	TotalStock        int             `json:"total_stock"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
