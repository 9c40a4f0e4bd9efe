package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"shopkart/internal/container"
	handlers "shopkart/internal/interface/http"
	"shopkart/internal/interface/middleware"
	"shopkart/pkg/helpers"
)

// ProductModule registers the product routes. Listing, detail, reviews, and
// search are public; mutations require an authenticated session and are
// further restricted to the owning seller or an admin inside the service.
type ProductModule struct {
	Handler *handlers.ProductHandler
	JWT     *helpers.JWTManager
}

func NewProductModule(h *handlers.ProductHandler, jwt *helpers.JWTManager) *ProductModule {
	return &ProductModule{Handler: h, JWT: jwt}
}

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	readLimiter := middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	// /products/search must be registered before /products/:id
	rg.GET("/products/search", readLimiter, m.Handler.Search)
	rg.GET("/products", readLimiter, m.Handler.List)
	rg.GET("/products/:id", readLimiter, m.Handler.Get)
	rg.GET("/products/:id/reviews", readLimiter, m.Handler.Reviews)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/products", m.Handler.Create)
		auth.PUT("/products/:id", m.Handler.Update)
		auth.DELETE("/products/:id", m.Handler.Delete)
		auth.POST("/products/:id/reviews", m.Handler.AddReview)
		auth.POST("/products/:id/images", m.Handler.UploadImage)
	}
}
