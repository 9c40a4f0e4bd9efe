package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/internal/application"
	"shopkart/internal/domain/repository"
	"shopkart/pkg/response"
	"shopkart/pkg/validation"
)

type BrandHandler struct {
	Brands *application.BrandService
	Logger *logrus.Logger
}

func NewBrandHandler(brands *application.BrandService, logger *logrus.Logger) *BrandHandler {
	return &BrandHandler{Brands: brands, Logger: logger}
}

type brandRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
	Logo        string `json:"logo" binding:"omitempty,url"`
	Website     string `json:"website" binding:"omitempty,url"`
	IsActive    *bool  `json:"is_active"`
}

type brandUpdateRequest struct {
	Name        string `json:"name" binding:"omitempty,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
	Logo        string `json:"logo" binding:"omitempty,url"`
	Website     string `json:"website" binding:"omitempty,url"`
	IsActive    *bool  `json:"is_active"`
}

// writeCatalogError maps catalog-layer application errors onto HTTP statuses.
func writeCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, application.ErrDuplicate):
		response.Error[any](c, http.StatusConflict, "already exists", nil)
	case errors.Is(err, application.ErrInvalidName):
		response.Error[any](c, http.StatusBadRequest, "name must contain letters or digits", nil)
	case errors.Is(err, application.ErrInvalidParent):
		response.Error[any](c, http.StatusBadRequest, "invalid parent category", nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error[any](c, http.StatusForbidden, "insufficient permissions", nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}

func pageQuery(c *gin.Context) (page, limit int64) {
	page, _ = strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ = strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

// pagingMeta builds the list envelope metadata.
func pagingMeta(page, limit, total int64) gin.H {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return gin.H{
		"current_page":  page,
		"total_pages":   pages,
		"total":         total,
		"has_next_page": page < pages,
		"has_prev_page": page > 1,
	}
}

func boolQuery(c *gin.Context, name string) *bool {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

func pathID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid id", nil)
		return primitive.NilObjectID, false
	}
	return id, true
}

// Create POST /api/brands (admin)
func (h *BrandHandler) Create(c *gin.Context) {
	var req brandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	b, err := h.Brands.Create(c.Request.Context(), application.BrandInput{
		Name:        req.Name,
		Description: req.Description,
		Logo:        req.Logo,
		Website:     req.Website,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b, "brand created", nil)
}

// List GET /api/brands
func (h *BrandHandler) List(c *gin.Context) {
	page, limit := pageQuery(c)
	items, total, err := h.Brands.List(c.Request.Context(), repository.BrandFilter{
		Search:   c.Query("search"),
		IsActive: boolQuery(c, "is_active"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items, "brands", pagingMeta(page, limit, total))
}

// Get GET /api/brands/:id (hex id or slug)
func (h *BrandHandler) Get(c *gin.Context) {
	b, err := h.Brands.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b, "brand", nil)
}

// Update PUT /api/brands/:id (admin)
func (h *BrandHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req brandUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	b, err := h.Brands.Update(c.Request.Context(), id, application.BrandInput{
		Name:        req.Name,
		Description: req.Description,
		Logo:        req.Logo,
		Website:     req.Website,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b, "brand updated", nil)
}

// Delete DELETE /api/brands/:id (admin)
func (h *BrandHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Brands.Delete(c.Request.Context(), id); err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "brand deleted", nil)
}
