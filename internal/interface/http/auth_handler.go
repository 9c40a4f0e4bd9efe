package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shopkart/internal/application"
	"shopkart/internal/domain/entity"
	"shopkart/pkg/helpers"
	"shopkart/pkg/response"
	"shopkart/pkg/validation"
)

type AuthHandler struct {
	Auth    *application.AuthService
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Cookies: cookies, Logger: logger}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type codeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type resetRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"code" binding:"required,len=6"`
	Password string `json:"password" binding:"required,pwd"`
}

// userView is the public shape of a user document.
type userView struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
	Provider   string `json:"auth_provider"`
}

func toUserView(u *entity.User) userView {
	return userView{
		ID:         u.ID.Hex(),
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		Provider:   u.AuthProvider,
	}
}

// writeAuthError maps application errors onto HTTP statuses. Shared by the
// auth endpoints so the taxonomy stays consistent across the surface.
func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "account not found", nil)
	case errors.Is(err, application.ErrDuplicate):
		response.Error[any](c, http.StatusConflict, "email already registered", nil)
	case errors.Is(err, application.ErrAlreadyVerified):
		response.Error[any](c, http.StatusBadRequest, "email is already verified", nil)
	case errors.Is(err, application.ErrNotVerified):
		response.Error[any](c, http.StatusForbidden, "email is not verified", nil)
	case errors.Is(err, application.ErrInvalidCode):
		response.Error[any](c, http.StatusBadRequest, "invalid code", nil)
	case errors.Is(err, application.ErrCodeExpired):
		response.Error[any](c, http.StatusBadRequest, "code has expired", nil)
	case errors.Is(err, application.ErrResetNotVerified):
		response.Error[any](c, http.StatusBadRequest, "reset code has not been verified", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, application.ErrExternalAccount):
		response.Error[any](c, http.StatusBadRequest, "account uses google sign-in", nil)
	case errors.Is(err, application.ErrDeliveryFailed):
		response.Error[any](c, http.StatusInternalServerError, "failed to send email; use resend to retry", nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Auth.Register(c.Request.Context(), application.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeAuthError(c, err)
		return
	}
	msg := "registered; verification code sent"
	if res.Resent {
		msg = "account pending verification; new code sent"
	}
	response.Success(c, http.StatusCreated, gin.H{"user_id": res.UserID, "resent": res.Resent}, msg, nil)
}

// VerifyOTP POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Auth.ConsumeVerificationCode(c.Request.Context(), req.Email, req.Code); err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "email verified", nil)
}

// ResendOTP POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Auth.IssueVerificationCode(c.Request.Context(), req.Email); err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "verification code sent", nil)
}

// ForgotPassword POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Auth.IssueResetCode(c.Request.Context(), req.Email); err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "reset code sent", nil)
}

// VerifyForgotPasswordOTP POST /api/auth/verify-forgot-password-otp
func (h *AuthHandler) VerifyForgotPasswordOTP(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Auth.VerifyResetCode(c.Request.Context(), req.Email, req.Code); err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "reset code verified", nil)
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Auth.CompleteReset(c.Request.Context(), req.Email, req.Code, req.Password); err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password updated", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, pair, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, toUserView(u), "login successful", nil)
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie("refresh_token")
	if err != nil || token == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, err := h.Auth.Refresh(c.Request.Context(), token)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, nil, "token refreshed", nil)
}

// Logout POST /api/auth/logout (auth required)
func (h *AuthHandler) Logout(c *gin.Context) {
	if uid := c.GetString("userID"); uid != "" && h.Auth.Redis != nil {
		_ = h.Auth.Redis.Del(c.Request.Context(), "user:session:"+uid).Err()
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "logged out", nil)
}

// Profile GET /api/auth/profile (auth required)
func (h *AuthHandler) Profile(c *gin.Context) {
	u, err := h.Auth.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "profile", nil)
}
