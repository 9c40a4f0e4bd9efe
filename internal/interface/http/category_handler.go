package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/internal/application"
	"shopkart/internal/domain/repository"
	"shopkart/pkg/response"
	"shopkart/pkg/validation"
)

type CategoryHandler struct {
	Categories *application.CategoryService
	Logger     *logrus.Logger
}

func NewCategoryHandler(categories *application.CategoryService, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{Categories: categories, Logger: logger}
}

type categoryRequest struct {
	Name           string `json:"name" binding:"required,min=2,max=100"`
	Description    string `json:"description" binding:"omitempty,max=500"`
	Image          string `json:"image" binding:"omitempty,url"`
	ParentCategory string `json:"parent_category" binding:"omitempty,len=24,hexadecimal"`
	IsActive       *bool  `json:"is_active"`
}

type categoryUpdateRequest struct {
	Name           string `json:"name" binding:"omitempty,min=2,max=100"`
	Description    string `json:"description" binding:"omitempty,max=500"`
	Image          string `json:"image" binding:"omitempty,url"`
	ParentCategory string `json:"parent_category" binding:"omitempty,len=24,hexadecimal"`
	IsActive       *bool  `json:"is_active"`
}

func parentID(raw string) (*primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Create POST /api/categories (admin)
func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	parent, err := parentID(req.ParentCategory)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid parent category id", nil)
		return
	}
	cat, err := h.Categories.Create(c.Request.Context(), application.CategoryInput{
		Name:           req.Name,
		Description:    req.Description,
		Image:          req.Image,
		ParentCategory: parent,
		IsActive:       req.IsActive,
	})
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, cat, "category created", nil)
}

// List GET /api/categories
// ?parent=<hex id> filters children of that category; ?parent=root lists
// root categories only.
func (h *CategoryHandler) List(c *gin.Context) {
	page, limit := pageQuery(c)
	f := repository.CategoryFilter{
		Search:   c.Query("search"),
		IsActive: boolQuery(c, "is_active"),
		Page:     page,
		Limit:    limit,
	}
	switch parent := c.Query("parent"); parent {
	case "":
	case "root":
		root := primitive.NilObjectID
		f.Parent = &root
	default:
		id, err := primitive.ObjectIDFromHex(parent)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid parent id", nil)
			return
		}
		f.Parent = &id
	}
	items, total, err := h.Categories.List(c.Request.Context(), f)
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items, "categories", pagingMeta(page, limit, total))
}

// Tree GET /api/categories/tree
func (h *CategoryHandler) Tree(c *gin.Context) {
	nodes, err := h.Categories.Tree(c.Request.Context())
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, nodes, "category tree", nil)
}

// Get GET /api/categories/:id (hex id or slug)
func (h *CategoryHandler) Get(c *gin.Context) {
	cat, err := h.Categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cat, "category", nil)
}

// Update PUT /api/categories/:id (admin)
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req categoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	parent, err := parentID(req.ParentCategory)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid parent category id", nil)
		return
	}
	cat, err := h.Categories.Update(c.Request.Context(), id, application.CategoryInput{
		Name:           req.Name,
		Description:    req.Description,
		Image:          req.Image,
		ParentCategory: parent,
		IsActive:       req.IsActive,
	})
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cat, "category updated", nil)
}

// Delete DELETE /api/categories/:id (admin)
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Categories.Delete(c.Request.Context(), id); err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "category deleted", nil)
}
