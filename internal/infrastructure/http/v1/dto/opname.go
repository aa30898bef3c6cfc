package dto

import (
	"tokopos/internal/core/types"
)

// CreateOpnameRequest starts a new counting session.
type CreateOpnameRequest struct {
	BranchID string `json:"branchId" binding:"required"`
	Notes    string `json:"notes"`
}

// AddOpnameItemRequest records one physical count.
type AddOpnameItemRequest struct {
	ProductID       string         `json:"productId" binding:"required"`
	CountedQuantity types.Quantity `json:"countedQuantity"`
	Notes           string         `json:"notes"`
}

// RejectOpnameRequest rejects a submitted session.
type RejectOpnameRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ImportOpnameRow is one bulk-import count row.
type ImportOpnameRow struct {
	SKU             string         `json:"sku"`
	CountedQuantity types.Quantity `json:"countedQuantity"`
	Notes           string         `json:"notes"`
}

// ImportOpnameRequest imports counts in bulk.
type ImportOpnameRequest struct {
	Rows []ImportOpnameRow `json:"rows" binding:"required"`
}

// ListOpnameQuery filters the session list.
type ListOpnameQuery struct {
	ListQuery
	BranchID string `form:"branchId"`
	Status   string `form:"status"`
	DateFrom string `form:"dateFrom" time_format:"2006-01-02"`
	DateTo   string `form:"dateTo" time_format:"2006-01-02"`
}
