package dto

import (
	"tokopos/internal/core/types"
)

// CreateProductRequest creates a product with an optional seed quantity.
type CreateProductRequest struct {
	BranchID     string         `json:"branchId" binding:"required"`
	Name         string         `json:"name" binding:"required"`
	SKU          *string        `json:"sku"`
	SeedQuantity types.Quantity `json:"seedQuantity"`
	CostPrice    string         `json:"costPrice"`
	Price        string         `json:"price"`
	CategoryID   *string        `json:"categoryId"`
}

// UpdateProductRequest updates catalog fields. Quantity moves only through
// adjustments and documents.
type UpdateProductRequest struct {
	Name       string  `json:"name" binding:"required"`
	SKU        *string `json:"sku"`
	CostPrice  string  `json:"costPrice"`
	Price      string  `json:"price"`
	CategoryID *string `json:"categoryId"`
	Version    int     `json:"version" binding:"required"`
}

// AdjustQuantityRequest applies a manual signed stock correction.
type AdjustQuantityRequest struct {
	Delta  types.Quantity `json:"delta" binding:"required"`
	Reason string         `json:"reason" binding:"required"`
}

// ListProductsQuery filters the product list.
type ListProductsQuery struct {
	ListQuery
	BranchID string `form:"branchId"`
	Search   string `form:"search"`
}
