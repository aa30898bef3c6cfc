package dto

// StockMovementQuery requests the single-product movement report.
type StockMovementQuery struct {
	BranchID  string `form:"branchId" binding:"required"`
	ProductID string `form:"productId" binding:"required"`
	StartDate string `form:"startDate" binding:"required"` // YYYY-MM-DD
	EndDate   string `form:"endDate" binding:"required"`   // YYYY-MM-DD
	Refresh   bool   `form:"refresh"`
}

// StockMutationQuery requests the per-branch mutation summary.
type StockMutationQuery struct {
	BranchID  string `form:"branchId" binding:"required"`
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate" binding:"required"`
	Refresh   bool   `form:"refresh"`
}

// StockAtQuery asks for the reconstructed stock level at a point in time.
type StockAtQuery struct {
	BranchID  string `form:"branchId" binding:"required"`
	ProductID string `form:"productId" binding:"required"`
	At        string `form:"at" binding:"required"` // RFC3339
}

// StockHistoryQuery asks for the raw ledger entries of one product.
type StockHistoryQuery struct {
	BranchID  string `form:"branchId" binding:"required"`
	ProductID string `form:"productId" binding:"required"`
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate" binding:"required"`
}
