package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tokopos/internal/core/apperror"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/infrastructure/http/v1/dto"
)

// StockHandler exposes the stock ledger read side: point-in-time resolution
// and raw entry history.
type StockHandler struct {
	BaseHandler
	ledger *ledger.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(ledgerSvc *ledger.Service) *StockHandler {
	return &StockHandler{ledger: ledgerSvc}
}

// StockAt handles GET /api/v1/stock/at.
func (h *StockHandler) StockAt(c *gin.Context) {
	var query dto.StockAtQuery
	if !h.BindQuery(c, &query) {
		return
	}
	branchID, ok := h.ParseID(c, "branchId", query.BranchID)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "productId", query.ProductID)
	if !ok {
		return
	}
	at, err := time.Parse(time.RFC3339, query.At)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid timestamp, expected RFC3339").WithDetail("field", "at"))
		return
	}

	quantity, err := h.ledger.StockAt(c.Request.Context(), branchID, productID, at)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"branchId":  branchID,
		"productId": productID,
		"at":        at,
		"quantity":  quantity,
	})
}

// History handles GET /api/v1/stock/history.
func (h *StockHandler) History(c *gin.Context) {
	var query dto.StockHistoryQuery
	if !h.BindQuery(c, &query) {
		return
	}
	branchID, ok := h.ParseID(c, "branchId", query.BranchID)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "productId", query.ProductID)
	if !ok {
		return
	}
	from, ok := h.ParseDate(c, "startDate", query.StartDate)
	if !ok {
		return
	}
	to, ok := h.ParseDate(c, "endDate", query.EndDate)
	if !ok {
		return
	}
	to = to.Add(24*time.Hour - time.Nanosecond)

	entries, err := h.ledger.History(c.Request.Context(), branchID, productID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// ByReference handles GET /api/v1/stock/by-reference/:kind/:refId.
func (h *StockHandler) ByReference(c *gin.Context) {
	refID, ok := h.ParseID(c, "refId", c.Param("refId"))
	if !ok {
		return
	}

	kind := ledger.ReferenceKind(c.Param("kind"))
	switch kind {
	case ledger.RefSale, ledger.RefPurchaseOrder, ledger.RefStockOpname:
	default:
		h.Error(c, apperror.NewValidation("unknown reference kind").WithDetail("kind", string(kind)))
		return
	}

	entries, err := h.ledger.ByReference(c.Request.Context(), ledger.Reference{Kind: kind, ID: refID})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": entries})
}
