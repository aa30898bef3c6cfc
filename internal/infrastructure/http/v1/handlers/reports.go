package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tokopos/internal/domain/reports"
	"tokopos/internal/infrastructure/http/v1/dto"
)

// ReportsHandler provides report endpoints.
type ReportsHandler struct {
	BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(service *reports.Service) *ReportsHandler {
	return &ReportsHandler{service: service}
}

// StockMovement handles GET /api/v1/reports/stock-movement.
func (h *ReportsHandler) StockMovement(c *gin.Context) {
	var query dto.StockMovementQuery
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
	startDate, ok := h.ParseDate(c, "startDate", query.StartDate)
	if !ok {
		return
	}
	endDate, ok := h.ParseDate(c, "endDate", query.EndDate)
	if !ok {
		return
	}

	key := reports.MovementKey{
		BranchID:  branchID,
		ProductID: productID,
		StartDate: startDate,
		EndDate:   endDate,
	}
	report, err := h.service.StockMovement(c.Request.Context(), key, query.Refresh)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// StockMutation handles GET /api/v1/reports/stock-mutation.
func (h *ReportsHandler) StockMutation(c *gin.Context) {
	var query dto.StockMutationQuery
	if !h.BindQuery(c, &query) {
		return
	}
	branchID, ok := h.ParseID(c, "branchId", query.BranchID)
	if !ok {
		return
	}
	startDate, ok := h.ParseDate(c, "startDate", query.StartDate)
	if !ok {
		return
	}
	endDate, ok := h.ParseDate(c, "endDate", query.EndDate)
	if !ok {
		return
	}

	key := reports.MutationKey{
		BranchID:  branchID,
		StartDate: startDate,
		EndDate:   endDate,
	}
	report, err := h.service.StockMutation(c.Request.Context(), key, query.Refresh)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
