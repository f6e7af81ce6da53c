package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/identity-service/internal/apperror"
	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/metrics"
	"github.com/tazhibayda/identity-service/internal/queue"
	"github.com/tazhibayda/identity-service/internal/repo"
	"github.com/tazhibayda/identity-service/internal/service"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Identity        *service.Identity
	JWTSecret       string
	DB              Pinger
	Redis           *repo.Redis
	RateLimitPerMin int
	Events          queue.Publisher
	Exchange        string
}

func NewHandler(idn *service.Identity, jwtSecret string, db Pinger, rds *repo.Redis, rlPerMin int, pub queue.Publisher, exchange string) *Handler {
	return &Handler{
		Identity:        idn,
		JWTSecret:       jwtSecret,
		DB:              db,
		Redis:           rds,
		RateLimitPerMin: rlPerMin,
		Events:          pub,
		Exchange:        exchange,
	}
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type oauthReq struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

type updateReq struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Picture     string `json:"picture"`
	Bio         string `json:"bio"`
	PhoneNumber string `json:"phoneNumber"`
}

func respondErr(c *gin.Context, err error) {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		c.JSON(ae.Code, gin.H{"success": false, "message": ae.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
}

func tokenResp(c *gin.Context, code int, message, token string) {
	c.JSON(code, gin.H{
		"success": true,
		"message": message,
		"data":    gin.H{"accessToken": token},
	})
}

// Register godoc
// @Summary Register a local account
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body credentialsReq true "email, password"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in credentialsReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}
	res, err := h.Identity.Register(c.Request.Context(), service.Credentials{
		Email: in.Email, Password: in.Password,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "fail").Inc()
		respondErr(c, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues("register", "ok").Inc()

	reqID := c.GetString(requestIDKey)
	go h.Events.Publish(c.Request.Context(), h.Exchange, "user.registered",
		queue.UserRegistered{ExternalID: res.User.ExternalID, Email: res.User.Email, TrustSource: res.User.TrustSource},
		reqID)

	tokenResp(c, http.StatusCreated, "Register success", res.Token)
}

// Login godoc
// @Summary Login with a local credential pair
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body credentialsReq true "email, password"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in credentialsReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}
	res, err := h.Identity.Login(c.Request.Context(), service.Credentials{
		Email: in.Email, Password: in.Password,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "fail").Inc()
		respondErr(c, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues("login", "ok").Inc()

	reqID := c.GetString(requestIDKey)
	go h.Events.Publish(c.Request.Context(), h.Exchange, "user.loggedin",
		queue.UserLoggedIn{ExternalID: res.User.ExternalID, Email: res.User.Email},
		reqID)

	tokenResp(c, http.StatusOK, "Login success", res.Token)
}

// GitHub godoc
// @Summary Authenticate with a GitHub authorization code
// @Tags auth
// @Produce json
// @Param code path string true "authorization code"
// @Success 200 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/auth/gh/{code} [get]
func (h *Handler) GitHub(c *gin.Context) {
	res, err := h.Identity.AuthenticateGitHub(c.Request.Context(), c.Param("code"))
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("github", "fail").Inc()
		respondErr(c, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues("github", "ok").Inc()
	tokenResp(c, http.StatusOK, "Authenticate success", res.Token)
}

// Google godoc
// @Summary Authenticate with a verified Google profile
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body oauthReq true "email, name, imageUrl"
// @Success 200 {object} map[string]any
// @Router /api/auth/google [post]
func (h *Handler) Google(c *gin.Context) {
	h.oauth(c, domain.TrustGoogle)
}

// Facebook godoc
// @Summary Authenticate with a verified Facebook profile
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body oauthReq true "email, name, imageUrl"
// @Success 200 {object} map[string]any
// @Router /api/auth/facebook [post]
func (h *Handler) Facebook(c *gin.Context) {
	h.oauth(c, domain.TrustFacebook)
}

func (h *Handler) oauth(c *gin.Context, provider string) {
	var in oauthReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}
	res, err := h.Identity.AuthenticateOAuth(c.Request.Context(), provider, service.OAuthProfile{
		Email: in.Email, Name: in.Name, ImageURL: in.ImageURL,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(provider, "fail").Inc()
		respondErr(c, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues(provider, "ok").Inc()
	tokenResp(c, http.StatusOK, "Authenticate success", res.Token)
}

// Profile godoc
// @Summary Current user's profile
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/profile [get]
func (h *Handler) Profile(c *gin.Context) {
	p, err := h.Identity.GetProfile(c.Request.Context(), c.GetString(externalIDKey))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Get profile success", "data": p})
}

// Update godoc
// @Summary Update the current user's profile
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body updateReq true "profile patch"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/update [put]
func (h *Handler) Update(c *gin.Context) {
	var in updateReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}
	err := h.Identity.UpdateProfile(c.Request.Context(), c.GetString(externalIDKey), service.ProfilePatch{
		Name:        in.Name,
		Email:       in.Email,
		Password:    in.Password,
		Picture:     in.Picture,
		Bio:         in.Bio,
		PhoneNumber: in.PhoneNumber,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Update success"})
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.DB != nil {
		if err := h.DB.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
