package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"shopkart/internal/container"
	handlers "shopkart/internal/interface/http"
	"shopkart/internal/interface/middleware"
	"shopkart/pkg/helpers"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	OAuth   *handlers.OAuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, oauth *handlers.OAuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, OAuth: oauth, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	// Public endpoints with IP-based rate limits. Code issuance is limited
	// harder than code verification.
	issueLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	verifyLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", issueLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/refresh", loginLimiter, m.Handler.Refresh)
	rg.POST("/auth/verify-otp", verifyLimiter, m.Handler.VerifyOTP)
	rg.POST("/auth/resend-otp", issueLimiter, m.Handler.ResendOTP)
	rg.POST("/auth/forgot-password", issueLimiter, m.Handler.ForgotPassword)
	rg.POST("/auth/verify-forgot-password-otp", verifyLimiter, m.Handler.VerifyForgotPasswordOTP)
	rg.POST("/auth/reset-password", verifyLimiter, m.Handler.ResetPassword)

	rg.GET("/auth/google", loginLimiter, m.OAuth.Begin)
	rg.GET("/auth/google/callback", loginLimiter, m.OAuth.Callback)

	// Protected endpoints with user-based rate limit
	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/auth/profile", m.Handler.Profile)
		auth.POST("/auth/logout", m.Handler.Logout)
	}
}
