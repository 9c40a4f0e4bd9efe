package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/internal/application"
	"shopkart/internal/domain/entity"
	"shopkart/internal/domain/repository"
	"shopkart/pkg/response"
	"shopkart/pkg/validation"
)

type ProductHandler struct {
	Products *application.ProductService
	Logger   *logrus.Logger
}

func NewProductHandler(products *application.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Products: products, Logger: logger}
}

type productRequest struct {
	Title        string   `json:"title" binding:"required,min=3,max=200"`
	Description  string   `json:"description" binding:"required,min=10"`
	BrandID      string   `json:"brand_id" binding:"required,len=24,hexadecimal"`
	CategoryID   string   `json:"category_id" binding:"required,len=24,hexadecimal"`
	BasePrice    float64  `json:"base_price" binding:"required,gt=0"`
	DiscountType string   `json:"discount_type" binding:"omitempty,oneof=percentage fixed"`
	Discount     float64  `json:"discount" binding:"omitempty,gte=0"`
	StockTotal   *int     `json:"stock_total" binding:"omitempty,gte=0"`
	Images       []string `json:"images" binding:"omitempty,dive,url"`
	Tags         []string `json:"tags"`
	Highlights   []string `json:"highlights"`
	IsFeatured   *bool    `json:"is_featured"`
	IsActive     *bool    `json:"is_active"`
}

type productUpdateRequest struct {
	Title        string   `json:"title" binding:"omitempty,min=3,max=200"`
	Description  string   `json:"description" binding:"omitempty,min=10"`
	BrandID      string   `json:"brand_id" binding:"omitempty,len=24,hexadecimal"`
	CategoryID   string   `json:"category_id" binding:"omitempty,len=24,hexadecimal"`
	BasePrice    float64  `json:"base_price" binding:"omitempty,gt=0"`
	DiscountType string   `json:"discount_type" binding:"omitempty,oneof=percentage fixed"`
	Discount     float64  `json:"discount" binding:"omitempty,gte=0"`
	StockTotal   *int     `json:"stock_total" binding:"omitempty,gte=0"`
	Images       []string `json:"images" binding:"omitempty,dive,url"`
	Tags         []string `json:"tags"`
	Highlights   []string `json:"highlights"`
	IsFeatured   *bool    `json:"is_featured"`
	IsActive     *bool    `json:"is_active"`
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"omitempty,max=100"`
	Comment string `json:"comment" binding:"omitempty,max=1000"`
}

func actor(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return primitive.NilObjectID, false
	}
	return id, true
}

func isAdmin(c *gin.Context) bool {
	return c.GetString("userRole") == entity.RoleAdmin
}

func hexField(raw string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(raw)
	return id
}

func floatQuery(c *gin.Context, name string) *float64 {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func idQuery(c *gin.Context, name string) *primitive.ObjectID {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(v)
	if err != nil {
		return nil
	}
	return &id
}

func toInput(req productRequest) application.ProductInput {
	return application.ProductInput{
		Title:        req.Title,
		Description:  req.Description,
		BrandID:      hexField(req.BrandID),
		CategoryID:   hexField(req.CategoryID),
		BasePrice:    req.BasePrice,
		DiscountType: req.DiscountType,
		Discount:     req.Discount,
		StockTotal:   req.StockTotal,
		Images:       req.Images,
		Tags:         req.Tags,
		Highlights:   req.Highlights,
		IsFeatured:   req.IsFeatured,
		IsActive:     req.IsActive,
	}
}

// Create POST /api/products (auth required)
func (h *ProductHandler) Create(c *gin.Context) {
	seller, ok := actor(c)
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Products.Create(c.Request.Context(), seller, toInput(req))
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "product created", nil)
}

// List GET /api/products
func (h *ProductHandler) List(c *gin.Context) {
	page, limit := pageQuery(c)
	f := repository.ProductFilter{
		Brand:        idQuery(c, "brand"),
		Category:     idQuery(c, "category"),
		Seller:       idQuery(c, "seller"),
		Availability: c.Query("availability"),
		FeaturedOnly: c.Query("featured") == "true",
		MinPrice:     floatQuery(c, "min_price"),
		MaxPrice:     floatQuery(c, "max_price"),
		MinRating:    floatQuery(c, "min_rating"),
		Search:       c.Query("search"),
		SortBy:       c.Query("sort_by"),
		SortDesc:     c.Query("order") == "desc",
		Page:         page,
		Limit:        limit,
	}
	items, total, err := h.Products.List(c.Request.Context(), f)
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items, "products", pagingMeta(page, limit, total))
}

// Get GET /api/products/:id (hex id or slug)
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "product", nil)
}

// Update PUT /api/products/:id (owner or admin)
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actorID, ok := actor(c)
	if !ok {
		return
	}
	var req productUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Products.Update(c.Request.Context(), id, actorID, isAdmin(c), toInput(productRequest(req)))
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "product updated", nil)
}

// Delete DELETE /api/products/:id (owner or admin)
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actorID, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Products.Delete(c.Request.Context(), id, actorID, isAdmin(c)); err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "product deleted", nil)
}

// AddReview POST /api/products/:id/reviews (auth required)
func (h *ProductHandler) AddReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	userID, ok := actor(c)
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Products.AddReview(c.Request.Context(), id, userID, application.ReviewInput{
		Rating:  req.Rating,
		Title:   req.Title,
		Comment: req.Comment,
	})
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p.Ratings, "review added", nil)
}

// Reviews GET /api/products/:id/reviews
func (h *ProductHandler) Reviews(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	reviews, err := h.Products.Reviews(c.Request.Context(), id)
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, reviews, "reviews", nil)
}

// Search GET /api/products/search?q=...
func (h *ProductHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Products.Search(c.Request.Context(), q, size)
	if err != nil {
		response.Error[any](c, http.StatusBadGateway, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", nil)
}

// UploadImage POST /api/products/:id/images (owner or admin, multipart)
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actorID, ok := actor(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing image file", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable image file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Products.UploadImage(c.Request.Context(), id, actorID, isAdmin(c), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"url": url}, "image uploaded", nil)
}
