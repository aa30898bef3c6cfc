package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tokopos/internal/core/apperror"
	appctx "tokopos/internal/core/context"
	"tokopos/internal/core/id"
	"tokopos/internal/domain/opname"
	"tokopos/internal/infrastructure/http/v1/dto"
)

// OpnameHandler provides stock opname session endpoints.
type OpnameHandler struct {
	BaseHandler
	service *opname.Service
}

// NewOpnameHandler creates a new opname handler.
func NewOpnameHandler(service *opname.Service) *OpnameHandler {
	return &OpnameHandler{service: service}
}

func opnameActor(user *appctx.UserContext) opname.Actor {
	return opname.Actor{UserID: user.UserID, UserName: user.UserName}
}

// Create handles POST /api/v1/opname-sessions.
func (h *OpnameHandler) Create(c *gin.Context) {
	var req dto.CreateOpnameRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, ok := h.User(c)
	if !ok {
		return
	}
	branchID, ok := h.ParseID(c, "branchId", req.BranchID)
	if !ok {
		return
	}

	sess, err := h.service.Create(c.Request.Context(), branchID, req.Notes, opnameActor(user))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, sess)
}

// Get handles GET /api/v1/opname-sessions/:id.
func (h *OpnameHandler) Get(c *gin.Context) {
	sessionID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	sess, err := h.service.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}

// List handles GET /api/v1/opname-sessions.
func (h *OpnameHandler) List(c *gin.Context) {
	var query dto.ListOpnameQuery
	if !h.BindQuery(c, &query) {
		return
	}
	query.Clamp()

	filter := opname.ListFilter{
		Status: opname.Status(query.Status),
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if query.BranchID != "" {
		branchID, ok := h.ParseID(c, "branchId", query.BranchID)
		if !ok {
			return
		}
		filter.BranchID = branchID
	}
	if query.DateFrom != "" {
		from, ok := h.ParseDate(c, "dateFrom", query.DateFrom)
		if !ok {
			return
		}
		filter.DateFrom = &from
	}
	if query.DateTo != "" {
		to, ok := h.ParseDate(c, "dateTo", query.DateTo)
		if !ok {
			return
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &end
	}

	sessions, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": sessions})
}

// AddItem handles PUT /api/v1/opname-sessions/:id/items.
func (h *OpnameHandler) AddItem(c *gin.Context) {
	sessionID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.AddOpnameItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	productID, ok := h.ParseID(c, "productId", req.ProductID)
	if !ok {
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), sessionID, productID, req.CountedQuantity, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// RemoveItem handles DELETE /api/v1/opname-sessions/:id/items/:itemId.
func (h *OpnameHandler) RemoveItem(c *gin.Context) {
	sessionID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.PathID(c, "itemId")
	if !ok {
		return
	}

	if err := h.service.RemoveItem(c.Request.Context(), sessionID, itemID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Submit handles POST /api/v1/opname-sessions/:id/submit.
func (h *OpnameHandler) Submit(c *gin.Context) {
	h.transition(c, h.service.Submit)
}

// Approve handles POST /api/v1/opname-sessions/:id/approve.
func (h *OpnameHandler) Approve(c *gin.Context) {
	h.transition(c, h.service.Approve)
}

// Reject handles POST /api/v1/opname-sessions/:id/reject.
func (h *OpnameHandler) Reject(c *gin.Context) {
	sessionID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.RejectOpnameRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, ok := h.User(c)
	if !ok {
		return
	}

	sess, err := h.service.Reject(c.Request.Context(), sessionID, req.Reason, opnameActor(user))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}

// Import handles POST /api/v1/opname-sessions/:id/import with a JSON body of
// count rows. Returns a per-row result list; skipped rows carry a reason.
func (h *OpnameHandler) Import(c *gin.Context) {
	sessionID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.ImportOpnameRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rows := make([]opname.CountRow, 0, len(req.Rows))
	for i, row := range req.Rows {
		r := opname.CountRow{
			Line:    i + 1,
			SKU:     row.SKU,
			Counted: row.CountedQuantity,
			Notes:   row.Notes,
		}
		if row.SKU == "" {
			r.Invalid = true
			r.Reason = "missing sku"
		} else if row.CountedQuantity < 0 {
			r.Invalid = true
			r.Reason = "negative counted quantity"
		}
		rows = append(rows, r)
	}

	results, err := h.service.ImportBulk(c.Request.Context(), sessionID, rows)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ImportCSV handles POST /api/v1/opname-sessions/:id/import-csv with a
// multipart file upload.
func (h *OpnameHandler) ImportCSV(c *gin.Context) {
	sessionID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("missing file upload").WithDetail("field", "file"))
		return
	}
	src, err := file.Open()
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	defer src.Close()

	results, err := h.service.ImportCSV(c.Request.Context(), sessionID, src)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ExportCSV handles GET /api/v1/opname-sessions/:id/export-csv.
func (h *OpnameHandler) ExportCSV(c *gin.Context) {
	sessionID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=opname-%s.csv", sessionID))

	if err := h.service.ExportCSV(c.Request.Context(), sessionID, c.Writer); err != nil {
		h.Error(c, err)
		return
	}
}

func (h *OpnameHandler) transition(c *gin.Context, fn func(ctx context.Context, sessionID id.ID, actor opname.Actor) (*opname.Session, error)) {
	sessionID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	user, ok := h.User(c)
	if !ok {
		return
	}

	sess, err := fn(c.Request.Context(), sessionID, opnameActor(user))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}
