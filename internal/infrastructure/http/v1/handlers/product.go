package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/catalogs/product"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/infrastructure/http/v1/dto"
)

// ProductHandler provides product catalog endpoints.
type ProductHandler struct {
	BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service *product.Service) *ProductHandler {
	return &ProductHandler{service: service}
}

// Create handles POST /api/v1/products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
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

	p := product.New(branchID, req.Name, req.SeedQuantity)
	p.SKU = req.SKU
	if !h.applyPrices(c, p, req.CostPrice, req.Price) {
		return
	}
	if req.CategoryID != nil {
		categoryID, ok := h.ParseID(c, "categoryId", *req.CategoryID)
		if !ok {
			return
		}
		p.CategoryID = &categoryID
	}

	actor := ledger.Actor{UserID: user.UserID, UserName: user.UserName}
	if err := h.service.Create(c.Request.Context(), p, actor); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// Get handles GET /api/v1/products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Update handles PUT /api/v1/products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if p.Version != req.Version {
		h.Error(c, apperror.NewConcurrentModification("product", productID))
		return
	}

	p.Name = req.Name
	p.SKU = req.SKU
	if !h.applyPrices(c, p, req.CostPrice, req.Price) {
		return
	}
	p.CategoryID = nil
	if req.CategoryID != nil {
		categoryID, ok := h.ParseID(c, "categoryId", *req.CategoryID)
		if !ok {
			return
		}
		p.CategoryID = &categoryID
	}

	if err := h.service.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /api/v1/products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// List handles GET /api/v1/products.
func (h *ProductHandler) List(c *gin.Context) {
	var query dto.ListProductsQuery
	if !h.BindQuery(c, &query) {
		return
	}
	query.Clamp()

	filter := product.ListFilter{
		Search: query.Search,
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

	products, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": products})
}

// AdjustQuantity handles POST /api/v1/products/:id/adjust.
func (h *ProductHandler) AdjustQuantity(c *gin.Context) {
	productID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, ok := h.User(c)
	if !ok {
		return
	}

	actor := ledger.Actor{UserID: user.UserID, UserName: user.UserName}
	entry, err := h.service.AdjustQuantity(c.Request.Context(), productID, req.Delta, req.Reason, actor)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *ProductHandler) applyPrices(c *gin.Context, p *product.Product, costPrice, price string) bool {
	if costPrice != "" {
		v, err := types.NewMoneyFromString(costPrice)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid cost price").WithDetail("field", "costPrice"))
			return false
		}
		p.CostPrice = v
	}
	if price != "" {
		v, err := types.NewMoneyFromString(price)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid price").WithDetail("field", "price"))
			return false
		}
		p.Price = v
	}
	return true
}
