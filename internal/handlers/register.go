package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/dashboard/internal/backend"
	"github.com/jonesrussell/north-cloud/dashboard/internal/logger"
	"github.com/jonesrussell/north-cloud/dashboard/internal/register"
	"github.com/jonesrussell/north-cloud/dashboard/internal/session"
)

// Registrar is the backend slice for the registration page.
type Registrar interface {
	CheckUsernameAvailable(ctx context.Context, name string) (bool, error)
	CheckEmailAvailable(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, req backend.RegisterRequest) (*backend.RegisterResponse, error)
}

const availabilityKeyPrefix = "dashboard:availability:"

// RegisterHandler serves the registration page: availability checks,
// account creation and session setup.
type RegisterHandler struct {
	registrar Registrar
	store     session.Store
	cache     *redis.Client
	cacheTTL  time.Duration
	cookie    session.CookieConfig
	log       logger.Logger
}

// NewRegisterHandler creates a register handler. cache may be nil to
// disable availability caching.
func NewRegisterHandler(
	registrar Registrar,
	store session.Store,
	cache *redis.Client,
	cacheTTL time.Duration,
	cookie session.CookieConfig,
	log logger.Logger,
) *RegisterHandler {
	return &RegisterHandler{
		registrar: registrar,
		store:     store,
		cache:     cache,
		cacheTTL:  cacheTTL,
		cookie:    cookie,
		log:       log,
	}
}

// CheckAvailability handles GET /api/v1/register/check?field=&value=.
//
// The browser debounces; this side enforces the same minimum-length gate
// and caches recent answers briefly so a chatty client cannot hammer the
// backend with identical lookups.
func (h *RegisterHandler) CheckAvailability(c *gin.Context) {
	field := c.Query("field")
	value := c.Query("value")

	if field != "username" && field != "email" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field must be username or email"})
		return
	}
	if len(value) < register.DefaultMinLength {
		c.JSON(http.StatusOK, gin.H{"field": field, "checked": false})
		return
	}

	ctx := c.Request.Context()
	cacheKey := availabilityKeyPrefix + field + ":" + value

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, cacheKey).Result(); err == nil {
			c.JSON(http.StatusOK, gin.H{"field": field, "checked": true, "available": cached == "1"})
			return
		}
	}

	var (
		available bool
		err       error
	)
	if field == "username" {
		available, err = h.registrar.CheckUsernameAvailable(ctx, value)
	} else {
		available, err = h.registrar.CheckEmailAvailable(ctx, value)
	}
	if err != nil {
		writeBackendError(c, h.log, err)
		return
	}

	if h.cache != nil {
		flag := "0"
		if available {
			flag = "1"
		}
		if cacheErr := h.cache.Set(ctx, cacheKey, flag, h.cacheTTL).Err(); cacheErr != nil {
			h.log.Warn("Availability cache write failed", logger.Error(cacheErr))
		}
	}

	c.JSON(http.StatusOK, gin.H{"field": field, "checked": true, "available": available})
}

type registerRequest struct {
	Username string `binding:"required,min=3"  json:"username"`
	Email    string `binding:"required,email"  json:"email"`
	Password string `binding:"required,min=8"  json:"password"`
}

// Register handles POST /api/v1/register: creates the account, stores the
// session server-side and mirrors the session id into the cookie.
func (h *RegisterHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": string(backend.KindValidation)})
		return
	}

	ctx := c.Request.Context()

	resp, err := h.registrar.Register(ctx, backend.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeBackendError(c, h.log, err)
		return
	}

	sess, err := session.New(resp.AccessToken)
	if err != nil {
		h.log.Error("Session creation failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration succeeded but session setup failed"})
		return
	}

	if err := h.store.Save(ctx, sess); err != nil {
		h.log.Error("Session store failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration succeeded but session setup failed"})
		return
	}

	http.SetCookie(c.Writer, session.Cookie(h.cookie, sess.ID))
	h.log.Info("User registered", logger.String("username", req.Username))

	c.JSON(http.StatusCreated, gin.H{
		"subject":    sess.Subject,
		"expires_at": sess.ExpiresAt,
	})
}

// Logout handles POST /api/v1/logout: session teardown.
func (h *RegisterHandler) Logout(c *gin.Context) {
	id, err := session.FromRequest(c.Request, h.cookie.Name)
	if err == nil {
		if delErr := h.store.Delete(c.Request.Context(), id); delErr != nil && !errors.Is(delErr, session.ErrNotFound) {
			h.log.Warn("Session delete failed", logger.Error(delErr))
		}
	}

	http.SetCookie(c.Writer, session.ExpireCookie(h.cookie))
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}
