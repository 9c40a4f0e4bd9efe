package router

import (
	"shopkart/internal/application"
	"shopkart/internal/container"
	"shopkart/internal/infrastructure/mongodb"
	handlers "shopkart/internal/interface/http"
	"shopkart/internal/router/modules"
	"shopkart/pkg/helpers"
	"shopkart/pkg/mailer"
)

// InitModules wires repositories, services, and handlers from the container
// singletons and registers every feature module with the registry. Called
// once during application startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	db := container.GetMongo()

	users := mongodb.NewUserRepository(db)
	brands := mongodb.NewBrandRepository(db)
	categories := mongodb.NewCategoryRepository(db)
	products := mongodb.NewProductRepository(db)

	codeMailer := mailer.NewCodeMailer(container.GetRabbitPub(), logger, cfg.AppName, cfg.MailSendEnabled)

	authSvc := application.NewAuthService(users, codeMailer, container.GetJWT(), container.GetRedis(), logger)
	authSvc.OTPTTL = cfg.OTPTTL

	brandSvc := application.NewBrandService(brands, products, logger)
	categorySvc := application.NewCategoryService(categories, products, logger)
	productSvc := application.NewProductService(
		products, brands, categories, users, logger,
		container.GetGCS(), cfg.GCSBucket,
		container.GetES(), cfg.ESProductsIndex,
	)

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	authHandler := handlers.NewAuthHandler(authSvc, cookies, logger)
	oauthHandler := handlers.NewOAuthHandler(authSvc, cookies, container.GetRedis(), logger, cfg)
	brandHandler := handlers.NewBrandHandler(brandSvc, logger)
	categoryHandler := handlers.NewCategoryHandler(categorySvc, logger)
	productHandler := handlers.NewProductHandler(productSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, oauthHandler, container.GetJWT()))
	r.Add(modules.NewCatalogModule(brandHandler, categoryHandler, container.GetJWT()))
	r.Add(modules.NewProductModule(productHandler, container.GetJWT()))
	r.Add(modules.NewDebugModule())
}
