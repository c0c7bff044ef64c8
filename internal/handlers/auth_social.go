package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/pawhaven/pawhaven/internal/auth"
	"github.com/pawhaven/pawhaven/internal/auth/providers"
	"github.com/pawhaven/pawhaven/internal/models"
	"github.com/pawhaven/pawhaven/pkg/crypto"
	appErrors "github.com/pawhaven/pawhaven/pkg/errors"
	"github.com/pawhaven/pawhaven/pkg/metrics"
	"github.com/pawhaven/pawhaven/pkg/response"
)

const (
	oidcStateCookie = "oidc_state"
	oidcNonceCookie = "oidc_nonce"
	oidcCookieTTL   = 600
)

// SocialAuthHandler implements OIDC-based social sign-in. It is only mounted
// when an OIDC issuer is configured.
type SocialAuthHandler struct {
	db       *gorm.DB
	provider *providers.OIDCProvider
	sessions *iauth.SessionService
}

func NewSocialAuthHandler(db *gorm.DB, provider *providers.OIDCProvider, sessions *iauth.SessionService) *SocialAuthHandler {
	return &SocialAuthHandler{db: db, provider: provider, sessions: sessions}
}

// GET /api/auth/oidc
func (h *SocialAuthHandler) Begin(c *gin.Context) {
	state, err := crypto.GenerateToken(16)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}
	nonce, err := crypto.GenerateToken(16)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oidcStateCookie, state, oidcCookieTTL, "/", "", false, true)
	c.SetCookie(oidcNonceCookie, nonce, oidcCookieTTL, "/", "", false, true)

	response.Success(c, http.StatusOK, gin.H{
		"authorization_url": h.provider.AuthCodeURL(state, nonce),
	})
}

// GET /api/auth/oidc/callback
func (h *SocialAuthHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		response.Error(c, appErrors.NewBadRequest("state and code are required"))
		return
	}

	storedState, err := c.Cookie(oidcStateCookie)
	if err != nil || storedState != state {
		response.Error(c, appErrors.NewBadRequest("state mismatch"))
		return
	}
	nonce, err := c.Cookie(oidcNonceCookie)
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("missing nonce"))
		return
	}

	c.SetCookie(oidcStateCookie, "", -1, "/", "", false, true)
	c.SetCookie(oidcNonceCookie, "", -1, "/", "", false, true)

	identity, err := h.provider.Exchange(requestContext(c), code, nonce)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.findOrCreateUser(c, identity)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}
	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, appErrors.ErrInvalidCredentials)
		return
	}

	pair, _, err := h.sessions.CreateSession(user.ID, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()

	response.Success(c, http.StatusOK, gin.H{
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"user":   userPayload(user),
	})
}

func (h *SocialAuthHandler) findOrCreateUser(c *gin.Context, identity *providers.Identity) (*models.User, error) {
	db := h.db.WithContext(requestContext(c))

	var user models.User
	err := db.Where("LOWER(email) = ?", identity.Email).Take(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Email:        identity.Email,
			Name:         identity.Name,
			Avatar:       identity.Picture,
			Role:         models.PlatformRoleUser,
			AuthProvider: "oidc",
			IsActive:     true,
		}
		if user.Name == "" {
			user.Name = identity.Email
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	default:
		return nil, err
	}
}
