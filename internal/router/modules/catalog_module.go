package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"shopkart/internal/container"
	"shopkart/internal/domain/entity"
	handlers "shopkart/internal/interface/http"
	"shopkart/internal/interface/middleware"
	"shopkart/pkg/helpers"
)

// CatalogModule registers the brand and category routes. Reads are public;
// writes require an admin session.
type CatalogModule struct {
	Brands     *handlers.BrandHandler
	Categories *handlers.CategoryHandler
	JWT        *helpers.JWTManager
}

func NewCatalogModule(brands *handlers.BrandHandler, categories *handlers.CategoryHandler, jwt *helpers.JWTManager) *CatalogModule {
	return &CatalogModule{Brands: brands, Categories: categories, JWT: jwt}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	readLimiter := middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	rg.GET("/brands", readLimiter, m.Brands.List)
	rg.GET("/brands/:id", readLimiter, m.Brands.Get)

	// /categories/tree must be registered before /categories/:id
	rg.GET("/categories/tree", readLimiter, m.Categories.Tree)
	rg.GET("/categories", readLimiter, m.Categories.List)
	rg.GET("/categories/:id", readLimiter, m.Categories.Get)

	admin := rg.Group("/")
	admin.Use(middleware.Auth(rdb, m.JWT))
	admin.Use(middleware.RequireRole(entity.RoleAdmin))
	admin.Use(middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		admin.POST("/brands", m.Brands.Create)
		admin.PUT("/brands/:id", m.Brands.Update)
		admin.DELETE("/brands/:id", m.Brands.Delete)

		admin.POST("/categories", m.Categories.Create)
		admin.PUT("/categories/:id", m.Categories.Update)
		admin.DELETE("/categories/:id", m.Categories.Delete)
	}
}
