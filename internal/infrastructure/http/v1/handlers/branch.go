package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tokopos/internal/domain/catalogs/branch"
)

// BranchHandler provides branch catalog endpoints.
type BranchHandler struct {
	BaseHandler
	service *branch.Service
}

// NewBranchHandler creates a new branch handler.
func NewBranchHandler(service *branch.Service) *BranchHandler {
	return &BranchHandler{service: service}
}

type createBranchRequest struct {
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

// Create handles POST /api/v1/branches. The branch is created under the
// caller's tenant.
func (h *BranchHandler) Create(c *gin.Context) {
	var req createBranchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, ok := h.User(c)
	if !ok {
		return
	}

	b := branch.New(user.TenantID, req.Name)
	b.Address = req.Address
	b.Phone = req.Phone

	if err := h.service.Create(c.Request.Context(), b); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// Get handles GET /api/v1/branches/:id.
func (h *BranchHandler) Get(c *gin.Context) {
	branchID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), branchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// List handles GET /api/v1/branches, scoped to the caller's tenant.
func (h *BranchHandler) List(c *gin.Context) {
	user, ok := h.User(c)
	if !ok {
		return
	}

	branches, err := h.service.ListByTenant(c.Request.Context(), user.TenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": branches})
}
