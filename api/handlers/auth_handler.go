// api/handlers/auth_handler.go
package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/astro-datacenter/rundb/api/middleware"
	"github.com/astro-datacenter/rundb/api/models"
	"github.com/astro-datacenter/rundb/config"
	"github.com/astro-datacenter/rundb/internal/auth"
	"github.com/astro-datacenter/rundb/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	DB  *sql.DB
	Cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler with dependencies.
func NewAuthHandler(db *sql.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		DB:  db,
		Cfg: cfg,
	}
}

// Login checks user name and password and issues a JWT on success.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("Login binding error: %v", err)
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	user, err := auth.Authenticate(c.Request.Context(), h.DB, req.UserName, req.Password)
	if err != nil {
		customLog.Warnf("Login failed for user %s: %v", req.UserName, err)
		_ = c.Error(err)
		return
	}

	tokenString, err := auth.GenerateJWT(user.Name, h.Cfg.JWTSecret, h.Cfg.JWTExpiration)
	if err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("User %s logged in", user.Name)
	c.JSON(http.StatusOK, models.LoginResponse{Message: "Logged in successfully", Token: tokenString})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id":   c.GetInt64(middleware.UserIDKey),
		"user_name": c.GetString(middleware.UserNameKey),
	})
}

// clock is the time source of the handlers; tests pin it.
type clock func() time.Time

func (f clock) now() time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}
