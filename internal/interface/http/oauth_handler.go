package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"shopkart/config"
	"shopkart/internal/application"
	"shopkart/pkg/helpers"
	"shopkart/pkg/response"
)

// OAuthHandler implements the Google sign-in flow. The state parameter is
// stored in Redis for ten minutes and checked on callback to block CSRF.
type OAuthHandler struct {
	Auth    *application.AuthService
	Cookies *helpers.Manager
	RDB     *redis.Client
	Logger  *logrus.Logger
	Cfg     *config.Config

	oauth *oauth2.Config
}

func NewOAuthHandler(auth *application.AuthService, cookies *helpers.Manager, rdb *redis.Client, logger *logrus.Logger, cfg *config.Config) *OAuthHandler {
	return &OAuthHandler{
		Auth:    auth,
		Cookies: cookies,
		RDB:     rdb,
		Logger:  logger,
		Cfg:     cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func keyOAuthState(state string) string { return "oauth:state:" + state }

// Begin GET /api/auth/google
func (h *OAuthHandler) Begin(c *gin.Context) {
	state := uuid.NewString()
	if h.RDB != nil {
		if err := h.RDB.Set(c.Request.Context(), keyOAuthState(state), "1", 10*time.Minute).Err(); err != nil {
			response.Error[any](c, http.StatusInternalServerError, "failed to start oauth flow", nil)
			return
		}
	}
	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(state))
}

// Callback GET /api/auth/google/callback
func (h *OAuthHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		response.Error[any](c, http.StatusBadRequest, "missing state or code", nil)
		return
	}
	if h.RDB != nil {
		n, err := h.RDB.Del(c.Request.Context(), keyOAuthState(state)).Result()
		if err != nil || n == 0 {
			response.Error[any](c, http.StatusBadRequest, "invalid oauth state", nil)
			return
		}
	}

	tok, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("google code exchange failed")
		}
		response.Error[any](c, http.StatusBadGateway, "google exchange failed", nil)
		return
	}

	profile, err := h.fetchProfile(c, tok)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("google userinfo fetch failed")
		}
		response.Error[any](c, http.StatusBadGateway, "failed to fetch google profile", nil)
		return
	}

	u, pair, err := h.Auth.LoginWithGoogle(c.Request.Context(), *profile)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	if h.Logger != nil {
		h.Logger.WithField("user_id", u.ID.Hex()).Info("google login")
	}
	c.Redirect(http.StatusTemporaryRedirect, h.Cfg.ClientURL)
}

func (h *OAuthHandler) fetchProfile(c *gin.Context, tok *oauth2.Token) (*application.GoogleProfile, error) {
	client := h.oauth.Client(c.Request.Context(), tok)
	res, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var info struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &application.GoogleProfile{
		ID:        info.ID,
		Email:     info.Email,
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
	}, nil
}
